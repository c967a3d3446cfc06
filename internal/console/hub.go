package console

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 32
)

// hub fans console states out to every connected page.
type hub struct {
	mutex   sync.Mutex
	clients map[*client]struct{}
	logger  zerolog.Logger
}

func newHub(logger zerolog.Logger) *hub {
	return &hub{
		clients: make(map[*client]struct{}),
		logger:  logger,
	}
}

type client struct {
	hub  *hub
	conn *websocket.Conn

	mutex  sync.Mutex
	send   chan wsMessage
	closed bool
}

func (h *hub) register(conn *websocket.Conn) *client {
	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan wsMessage, sendBufferSize),
	}

	h.mutex.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mutex.Unlock()

	h.logger.Debug().Int("clients", count).Msg("Websocket client connected")
	return c
}

func (h *hub) unregister(c *client) {
	h.mutex.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mutex.Unlock()

	if ok {
		c.close()
	}
}

// broadcast never blocks; a client whose buffer is full is dropped so it reloads
// a fresh state on reconnect.
func (h *hub) broadcast(msg wsMessage) {
	h.mutex.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mutex.Unlock()

	for _, c := range clients {
		if !c.enqueue(msg) {
			h.logger.Warn().Msg("Websocket client too slow, disconnecting")
			h.unregister(c)
		}
	}
}

func (h *hub) closeAll() {
	h.mutex.Lock()
	clients := h.clients
	h.clients = make(map[*client]struct{})
	h.mutex.Unlock()

	for c := range clients {
		c.close()
	}
}

func (h *hub) count() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

func (c *client) enqueue(msg wsMessage) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.hub.unregister(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.hub.unregister(c)
				return
			}
		}
	}
}

// readPump discards client frames; it exists to process control frames and to
// notice disconnects.
func (c *client) readPump() {
	defer c.hub.unregister(c)

	c.conn.SetReadLimit(1024)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			return
		}
	}
}
