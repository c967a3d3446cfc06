package lifecycle

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/aleister1102/scanconsole/internal/models"
	"github.com/aleister1102/scanconsole/internal/progress"
	"github.com/aleister1102/scanconsole/internal/urlhandler"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Scanner issues one scan request. Implementations must honour ctx.
type Scanner interface {
	Scan(ctx context.Context, req models.ScanRequest) (*models.ScanResult, error)
}

// ControllerConfig bounds each attempt and supplies the fallback prompt.
type ControllerConfig struct {
	Timeout       time.Duration
	DefaultPrompt string
}

// Snapshot is everything the console needs to draw the lifecycle area.
type Snapshot struct {
	Version   uint64                `json:"version"`
	AttemptID string                `json:"attempt_id,omitempty"`
	State     models.LifecycleState `json:"state"`
	Message   string                `json:"message,omitempty"`
	Request   *models.ScanRequest   `json:"request,omitempty"`
	Progress  progress.Snapshot     `json:"progress"`
}

// SubscriberFunc receives snapshots in version order.
type SubscriberFunc func(Snapshot)

// Controller owns the lifecycle of scan attempts for one console session. At most
// one attempt is in flight; transitions per attempt run Idle/terminal -> Pending ->
// Succeeded|Failed.
type Controller struct {
	mutex sync.Mutex

	scanner   Scanner
	indicator *progress.Indicator
	config    ControllerConfig
	logger    zerolog.Logger

	state       models.LifecycleState
	message     string
	attemptID   string
	request     *models.ScanRequest
	attemptDone chan struct{}
	version     uint64
	closed      bool

	baseCtx    context.Context
	baseCancel context.CancelFunc

	subsMutex   sync.RWMutex
	subscribers map[int]SubscriberFunc
	nextSubID   int

	publishMutex  sync.Mutex
	lastPublished uint64
}

// NewController wires a controller to a scanner and an indicator. The controller
// takes over the indicator's advance callback.
func NewController(scanner Scanner, indicator *progress.Indicator, config ControllerConfig, logger zerolog.Logger) *Controller {
	baseCtx, baseCancel := context.WithCancel(context.Background())

	c := &Controller{
		scanner:     scanner,
		indicator:   indicator,
		config:      config,
		logger:      logger.With().Str("component", "ScanController").Logger(),
		state:       models.IdleState(),
		baseCtx:     baseCtx,
		baseCancel:  baseCancel,
		subscribers: make(map[int]SubscriberFunc),
	}
	indicator.SetOnAdvance(c.onProgressAdvance)
	return c
}

// Submit runs gating validation and, for a valid URL, starts an attempt in the
// background. The attempt outlives ctx cancellation but keeps its values; it is
// bounded by the configured timeout and by Close.
func (c *Controller) Submit(ctx context.Context, input models.ScanInput) error {
	c.mutex.Lock()

	if c.closed {
		c.mutex.Unlock()
		return ErrControllerClosed
	}

	if c.state.IsPending() {
		attemptID := c.attemptID
		c.mutex.Unlock()
		c.logger.Debug().Str("scan_id", attemptID).Msg("Submit ignored, scan already in progress")
		return ErrScanInProgress
	}

	outcome := urlhandler.Validate(input.URL)
	if !outcome.Valid {
		c.message = gatingMessage(outcome.Reason)
		snap := c.snapshotLocked()
		c.mutex.Unlock()

		c.logger.Debug().Str("reason", string(outcome.Reason)).Msg("Submit rejected by validation")
		c.publish(snap)
		return outcome.Err()
	}

	req := models.ScanRequest{
		URL:    urlhandler.StripScheme(outcome.NormalizedURL),
		Prompt: input.Prompt,
	}
	if strings.TrimSpace(req.Prompt) == "" {
		req.Prompt = c.config.DefaultPrompt
	}

	attemptID := uuid.NewString()
	attemptCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.config.Timeout)
	stopAfter := context.AfterFunc(c.baseCtx, cancel)
	done := make(chan struct{})

	c.message = ""
	c.state = models.PendingState()
	c.attemptID = attemptID
	c.request = &req
	c.attemptDone = done
	c.mutex.Unlock()

	// started before the attempt goroutine so its Stop cannot run first
	c.indicator.Start()

	attemptLogger := c.logger.With().Str("scan_id", attemptID).Logger()
	attemptLogger.Info().
		Str("target", req.URL).
		Dur("timeout", c.config.Timeout).
		Msg("Scan attempt started")

	c.publishCurrent()

	go func() {
		defer close(done)
		defer stopAfter()
		defer cancel()
		c.runAttempt(attemptCtx, attemptID, req, attemptLogger)
	}()

	return nil
}

type scanOutcome struct {
	result *models.ScanResult
	err    error
}

func (c *Controller) runAttempt(ctx context.Context, attemptID string, req models.ScanRequest, logger zerolog.Logger) {
	started := time.Now()
	outcomes := make(chan scanOutcome, 1)
	go func() {
		result, err := c.scanner.Scan(ctx, req)
		outcomes <- scanOutcome{result: result, err: err}
	}()

	var outcome scanOutcome
	select {
	case outcome = <-outcomes:
	case <-ctx.Done():
		// a scanner that ignores ctx must not wedge the session
		outcome = scanOutcome{err: ctx.Err()}
	}
	if outcome.err != nil && ctx.Err() != nil {
		outcome.err = ctx.Err()
	}

	var next models.LifecycleState
	if outcome.err != nil {
		classified := Classify(outcome.err)
		logger.Warn().
			Err(outcome.err).
			Str("kind", string(classified.Kind)).
			Dur("elapsed", time.Since(started)).
			Msg("Scan attempt failed")
		next = models.FailedState(classified)
	} else {
		result := outcome.result
		if result == nil {
			result = &models.ScanResult{}
		}
		logger.Info().
			Int("checks", len(result.Results)).
			Dur("elapsed", time.Since(started)).
			Msg("Scan attempt succeeded")
		next = models.SucceededState(result)
	}

	// the tick goroutine may be waiting on c.mutex, so stop it first
	c.indicator.Stop()

	c.mutex.Lock()
	if c.attemptID != attemptID {
		c.mutex.Unlock()
		return
	}
	c.state = next
	snap := c.snapshotLocked()
	c.mutex.Unlock()

	c.publish(snap)
}

// Snapshot returns the current lifecycle view.
func (c *Controller) Snapshot() Snapshot {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.snapshotLocked()
}

// State returns the current lifecycle state.
func (c *Controller) State() models.LifecycleState {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.state
}

// Message returns the current gating message, "" when none.
func (c *Controller) Message() string {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.message
}

// Subscribe registers fn for every published snapshot and returns a function that
// removes it. fn runs on the publishing goroutine and must not block for long.
func (c *Controller) Subscribe(fn SubscriberFunc) func() {
	c.subsMutex.Lock()
	defer c.subsMutex.Unlock()

	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn

	return func() {
		c.subsMutex.Lock()
		defer c.subsMutex.Unlock()
		delete(c.subscribers, id)
	}
}

// Wait blocks until no attempt is in flight.
func (c *Controller) Wait() {
	c.mutex.Lock()
	done := c.attemptDone
	c.mutex.Unlock()

	if done != nil {
		<-done
	}
}

// Close aborts any in-flight attempt, waits for it to resolve and rejects further
// submissions.
func (c *Controller) Close() {
	c.mutex.Lock()
	if c.closed {
		c.mutex.Unlock()
		return
	}
	c.closed = true
	c.mutex.Unlock()

	c.baseCancel()
	c.Wait()
	c.indicator.Stop()
	c.logger.Debug().Msg("Scan controller closed")
}

func (c *Controller) onProgressAdvance(progress.Snapshot) {
	c.mutex.Lock()
	if !c.state.IsPending() {
		c.mutex.Unlock()
		return
	}
	snap := c.snapshotLocked()
	c.mutex.Unlock()

	c.publish(snap)
}

func (c *Controller) publishCurrent() {
	c.publish(c.Snapshot())
}

// publish delivers snap unless a newer snapshot already went out.
func (c *Controller) publish(snap Snapshot) {
	c.publishMutex.Lock()
	defer c.publishMutex.Unlock()

	if snap.Version <= c.lastPublished {
		return
	}
	c.lastPublished = snap.Version

	c.subsMutex.RLock()
	subs := make([]SubscriberFunc, 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	c.subsMutex.RUnlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	c.version++

	snap := Snapshot{
		Version:   c.version,
		AttemptID: c.attemptID,
		State:     c.state,
		Message:   c.message,
		Progress:  c.indicator.Snapshot(),
	}
	if c.request != nil {
		req := *c.request
		snap.Request = &req
	}
	return snap
}

func gatingMessage(reason urlhandler.InvalidReason) string {
	if reason == urlhandler.ReasonEmpty {
		return MessageEmptyURL
	}
	return MessageMalformedURL
}
