package console

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aleister1102/scanconsole/internal/config"
	"github.com/aleister1102/scanconsole/internal/lifecycle"
	"github.com/aleister1102/scanconsole/internal/models"
	"github.com/aleister1102/scanconsole/internal/progress"
	"github.com/aleister1102/scanconsole/internal/reporter"
	"github.com/aleister1102/scanconsole/internal/scanapi"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scanFunc func(ctx context.Context, req models.ScanRequest) (*models.ScanResult, error)

func (f scanFunc) Scan(ctx context.Context, req models.ScanRequest) (*models.ScanResult, error) {
	return f(ctx, req)
}

type fakeHealth struct {
	status *scanapi.HealthStatus
	err    error
}

func (f fakeHealth) Health(context.Context) (*scanapi.HealthStatus, error) {
	return f.status, f.err
}

type testConsole struct {
	server     *Server
	http       *httptest.Server
	controller *lifecycle.Controller
}

func newTestConsole(t *testing.T, scanner lifecycle.Scanner, health HealthChecker) *testConsole {
	t.Helper()

	indicator := progress.NewIndicator(zerolog.Nop(), &progress.IndicatorConfig{StepInterval: time.Hour})
	controller := lifecycle.NewController(scanner, indicator, lifecycle.ControllerConfig{
		Timeout:       time.Second,
		DefaultPrompt: config.DefaultScanPrompt,
	}, zerolog.Nop())
	renderer, err := reporter.NewHTMLRenderer(zerolog.Nop())
	require.NoError(t, err)

	s, err := NewServer(config.NewDefaultConsoleConfig(), Dependencies{
		Controller: controller,
		Input:      lifecycle.NewInputStage(config.DefaultScanPrompt),
		Renderer:   renderer,
		Health:     health,
	}, zerolog.Nop())
	require.NoError(t, err)

	ts := httptest.NewServer(s)
	t.Cleanup(func() {
		ts.Close()
		s.Close()
		controller.Close()
	})
	return &testConsole{server: s, http: ts, controller: controller}
}

func (tc *testConsole) post(t *testing.T, path, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(tc.http.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func (tc *testConsole) get(t *testing.T, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(tc.http.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func succeed(summary string) scanFunc {
	return func(context.Context, models.ScanRequest) (*models.ScanResult, error) {
		return models.ParseScanResult([]byte(`{"results":{"ssl":{"valid":true,"domain":"example.com"}},"summary":"` + summary + `"}`))
	}
}

func TestServer_NewServerRequiresDependencies(t *testing.T) {
	_, err := NewServer(config.NewDefaultConsoleConfig(), Dependencies{}, zerolog.Nop())
	assert.Error(t, err)
}

func TestServer_Index(t *testing.T) {
	tc := newTestConsole(t, succeed("ok"), nil)

	resp, body := tc.get(t, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(body), "Security Scan Console")

	resp, _ = tc.get(t, "/static/console.js")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_InitialState(t *testing.T) {
	tc := newTestConsole(t, succeed("ok"), nil)

	resp, body := tc.get(t, "/api/state")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var state ConsoleState
	require.NoError(t, json.Unmarshal(body, &state))
	assert.Equal(t, config.DefaultScanPrompt, state.Input.Prompt)
	assert.Equal(t, lifecycle.IndicatorNone, state.Input.Indicator)
	assert.Equal(t, models.LifecycleIdle, state.Lifecycle.State.Status)
	assert.Empty(t, state.ResultHTML)
}

func TestServer_UpdateInput(t *testing.T) {
	tc := newTestConsole(t, succeed("ok"), nil)

	resp, body := tc.post(t, "/api/input", `{"url":"example.com"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view lifecycle.InputView
	require.NoError(t, json.Unmarshal(body, &view))
	assert.Equal(t, lifecycle.IndicatorInvalid, view.Indicator)
	assert.Equal(t, config.DefaultScanPrompt, view.Prompt)

	_, body = tc.post(t, "/api/input", `{"url":"https://example.com","prompt":"custom"}`)
	require.NoError(t, json.Unmarshal(body, &view))
	assert.Equal(t, lifecycle.IndicatorValid, view.Indicator)
	assert.Equal(t, "custom", view.Prompt)

	resp, _ = tc.post(t, "/api/input", `{"bogus":1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_SubmitValidationMessages(t *testing.T) {
	tc := newTestConsole(t, succeed("ok"), nil)

	resp, body := tc.post(t, "/api/scan", `{"url":""}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var state ConsoleState
	require.NoError(t, json.Unmarshal(body, &state))
	assert.Equal(t, lifecycle.MessageEmptyURL, state.Lifecycle.Message)
	assert.Equal(t, models.LifecycleIdle, state.Lifecycle.State.Status)

	resp, body = tc.post(t, "/api/scan", `{"url":"example.com"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &state))
	assert.Equal(t, lifecycle.MessageMalformedURL, state.Lifecycle.Message)
}

func TestServer_SubmitAndFetchResult(t *testing.T) {
	tc := newTestConsole(t, succeed("**done**"), nil)

	resp, _ := tc.get(t, "/api/result")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = tc.post(t, "/api/scan", `{"url":"https://example.com"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	tc.controller.Wait()

	resp, body := tc.get(t, "/api/result")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "finding-ssl")
	assert.Contains(t, string(body), "<strong>done</strong>")

	_, body = tc.get(t, "/api/state")
	var state ConsoleState
	require.NoError(t, json.Unmarshal(body, &state))
	assert.Equal(t, models.LifecycleSucceeded, state.Lifecycle.State.Status)
	assert.Contains(t, state.ResultHTML, "finding-ssl")
	require.NotNil(t, state.Lifecycle.Request)
	assert.Equal(t, "example.com", state.Lifecycle.Request.URL)
	assert.Equal(t, config.DefaultScanPrompt, state.Lifecycle.Request.Prompt)
}

func TestServer_SubmitWhilePending(t *testing.T) {
	release := make(chan struct{})
	tc := newTestConsole(t, scanFunc(func(ctx context.Context, req models.ScanRequest) (*models.ScanResult, error) {
		<-release
		return &models.ScanResult{}, nil
	}), nil)

	resp, _ := tc.post(t, "/api/scan", `{"url":"https://example.com"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp, body := tc.post(t, "/api/scan", `{"url":"https://example.com"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var state ConsoleState
	require.NoError(t, json.Unmarshal(body, &state))
	assert.Equal(t, models.LifecyclePending, state.Lifecycle.State.Status)

	close(release)
	tc.controller.Wait()
}

func TestServer_FailedScanShowsClassifiedMessage(t *testing.T) {
	tc := newTestConsole(t, scanFunc(func(context.Context, models.ScanRequest) (*models.ScanResult, error) {
		return nil, &scanapi.TransportError{StatusCode: http.StatusInternalServerError}
	}), nil)

	tc.post(t, "/api/scan", `{"url":"https://example.com"}`)
	tc.controller.Wait()

	resp, body := tc.get(t, "/api/result")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `data-kind="SERVER_ERROR"`)
	assert.Contains(t, string(body), lifecycle.MessageServerError)
}

func TestServer_Health(t *testing.T) {
	healthy := newTestConsole(t, succeed("ok"), fakeHealth{status: &scanapi.HealthStatus{Status: "healthy", Service: "security-scanner"}})
	resp, body := healthy.get(t, "/api/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"healthy","service":"security-scanner"}`, string(body))

	down := newTestConsole(t, succeed("ok"), fakeHealth{err: errors.New("refused")})
	resp, _ = down.get(t, "/api/health")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	missing := newTestConsole(t, succeed("ok"), nil)
	resp, _ = missing.get(t, "/api/health")
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestServer_WebSocketStream(t *testing.T) {
	release := make(chan struct{})
	tc := newTestConsole(t, scanFunc(func(ctx context.Context, req models.ScanRequest) (*models.ScanResult, error) {
		<-release
		return models.ParseScanResult([]byte(`{"results":{},"summary":"all clear"}`))
	}), nil)

	wsURL := "ws" + strings.TrimPrefix(tc.http.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	readState := func() ConsoleState {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var msg wsMessage
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, "state", msg.Type)
		return msg.State
	}

	initial := readState()
	assert.Equal(t, models.LifecycleIdle, initial.Lifecycle.State.Status)
	require.Eventually(t, func() bool { return tc.server.hub.count() == 1 }, time.Second, 5*time.Millisecond)

	tc.post(t, "/api/scan", `{"url":"www.example.com"}`)
	pending := readState()
	assert.Equal(t, models.LifecyclePending, pending.Lifecycle.State.Status)
	assert.True(t, pending.Lifecycle.Progress.Running)
	assert.Equal(t, 0, pending.Lifecycle.Progress.Cursor)

	close(release)
	final := readState()
	assert.Equal(t, models.LifecycleSucceeded, final.Lifecycle.State.Status)
	assert.Contains(t, final.ResultHTML, "all clear")
	assert.Greater(t, final.Lifecycle.Version, pending.Lifecycle.Version)
}

func TestServer_CheckOrigin(t *testing.T) {
	cfg := config.NewDefaultConsoleConfig()
	cfg.AllowedOrigins = []string{"https://console.example.org/"}
	s := &Server{cfg: cfg, logger: zerolog.Nop()}

	req := httptest.NewRequest(http.MethodGet, "http://127.0.0.1:3000/ws", nil)
	assert.True(t, s.checkOrigin(req))

	req.Header.Set("Origin", "http://127.0.0.1:3000")
	assert.True(t, s.checkOrigin(req))

	req.Header.Set("Origin", "https://console.example.org")
	assert.True(t, s.checkOrigin(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, s.checkOrigin(req))
}
