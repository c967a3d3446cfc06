package scanapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aleister1102/scanconsole/internal/common/errorwrapper"
	"github.com/aleister1102/scanconsole/internal/config"
	"github.com/aleister1102/scanconsole/internal/httpclient"
	"github.com/aleister1102/scanconsole/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.NewDefaultScanAPIConfig()
	cfg.BaseURL = server.URL + "/"
	client, err := NewClient(cfg, zerolog.Nop())
	require.NoError(t, err)
	return client
}

func TestClient_Scan_Success(t *testing.T) {
	body := `{"results":{"ssl":{"valid":true,"issuer":"R3"},"vulnerabilities":null},"summary":"# All good","extra":1}`
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/scan", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, config.DefaultScanAPIUserAgent, r.Header.Get("User-Agent"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req models.ScanRequest
		require.NoError(t, json.Unmarshal(raw, &req))
		assert.Equal(t, "example.com", req.URL)
		assert.Equal(t, "check it", req.Prompt)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})

	result, err := client.Scan(context.Background(), models.ScanRequest{URL: "example.com", Prompt: "check it"})
	require.NoError(t, err)

	assert.Equal(t, "# All good", result.Summary)
	assert.JSONEq(t, body, string(result.Raw))
	_, ok := result.Finding(models.CheckSSL)
	assert.True(t, ok)
	_, ok = result.Finding(models.CheckVulnerabilities)
	assert.False(t, ok)
}

func TestClient_Scan_StatusFailures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
	}{
		{name: "server error with detail", status: http.StatusInternalServerError, body: `{"detail":"Scan failed: dns"}`, wantDetail: "Scan failed: dns"},
		{name: "unprocessable", status: http.StatusUnprocessableEntity, body: `{"detail":[{"msg":"field required"}]}`, wantDetail: "field required"},
		{name: "bad gateway plain", status: http.StatusBadGateway, body: `bad gateway`, wantDetail: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			result, err := client.Scan(context.Background(), models.ScanRequest{URL: "example.com"})
			assert.Nil(t, result)

			var te *TransportError
			require.True(t, errors.As(err, &te))
			assert.False(t, te.Aborted)
			assert.Equal(t, tt.status, te.StatusCode)
			assert.Equal(t, tt.wantDetail, te.Detail)
			assert.Equal(t, tt.body, string(te.Body))

			var httpErr *errorwrapper.HTTPError
			assert.True(t, errors.As(err, &httpErr))
		})
	}
}

func TestClient_Scan_DeadlineIsAbort(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := client.Scan(ctx, models.ScanRequest{URL: "example.com"})

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.True(t, te.Aborted)
	assert.Zero(t, te.StatusCode)
	assert.ErrorIs(t, err, errorwrapper.ErrTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_Scan_CancelIsAbort(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := client.Scan(ctx, models.ScanRequest{URL: "example.com"})

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.True(t, te.Aborted)
}

func TestClient_Scan_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	cfg := config.NewDefaultScanAPIConfig()
	cfg.BaseURL = server.URL
	server.Close()

	client, err := NewClient(cfg, zerolog.Nop())
	require.NoError(t, err)

	_, err = client.Scan(context.Background(), models.ScanRequest{URL: "example.com"})

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.False(t, te.Aborted)
	assert.Zero(t, te.StatusCode)
	assert.Empty(t, te.Detail)
	assert.ErrorIs(t, err, errorwrapper.ErrNetworkFailure)
}

func TestClient_Scan_UndecodableSuccessBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := client.Scan(context.Background(), models.ScanRequest{URL: "example.com"})

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.False(t, te.Aborted)
	assert.Zero(t, te.StatusCode)
	assert.Equal(t, "not json", string(te.Body))
}

func TestClient_Health(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"healthy","service":"security-scanner"}`))
	})

	status, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Healthy())
	assert.Equal(t, "security-scanner", status.Service)
}

func TestClient_Health_Unavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.Health(context.Background())

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusServiceUnavailable, te.StatusCode)
}

func TestTransportError_Error(t *testing.T) {
	assert.Equal(t, "scan service returned status 500: boom", (&TransportError{StatusCode: 500, Detail: "boom"}).Error())
	assert.Equal(t, "scan service returned status 422", (&TransportError{StatusCode: 422}).Error())
	assert.Contains(t, (&TransportError{Aborted: true, Err: context.DeadlineExceeded}).Error(), "aborted")
}

func TestIsAbort(t *testing.T) {
	assert.False(t, IsAbort(context.Background(), nil))
	assert.True(t, IsAbort(context.Background(), context.Canceled))
	assert.False(t, IsAbort(context.Background(), errors.New("connection refused")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.True(t, IsAbort(ctx, errors.New("read: connection reset")))
}

func TestClient_CheckHealth(t *testing.T) {
	healthy := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"healthy","service":"security-scanner"}`))
	})
	status, err := healthy.CheckHealth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", status.Status)

	degraded := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"degraded","service":"security-scanner"}`))
	})
	status, err = degraded.CheckHealth(context.Background())
	assert.ErrorIs(t, err, errorwrapper.ErrServiceUnavailable)
	require.NotNil(t, status)
	assert.Equal(t, "degraded", status.Status)

	down := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err = down.CheckHealth(context.Background())
	assert.ErrorIs(t, err, errorwrapper.ErrServiceUnavailable)
	var te *TransportError
	assert.True(t, errors.As(err, &te))
}

func TestNewClient_RoutesThroughProxy(t *testing.T) {
	var proxied atomic.Bool
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		proxied.Store(true)
		assert.Equal(t, "scanner.invalid", r.URL.Host)
		assert.Equal(t, "/scan", r.URL.Path)
		_, _ = w.Write([]byte(`{"results":{},"summary":"ok"}`))
	}))
	defer proxy.Close()

	cfg := config.NewDefaultScanAPIConfig()
	cfg.BaseURL = "http://scanner.invalid"
	cfg.Proxy = proxy.URL
	client, err := NewClient(cfg, zerolog.Nop())
	require.NoError(t, err)

	result, err := client.Scan(context.Background(), models.ScanRequest{URL: "example.com"})
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Summary)
	assert.True(t, proxied.Load())
}

func TestNewClient_RedirectPolicy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/scan" {
			http.Redirect(w, r, "/v2/scan", http.StatusTemporaryRedirect)
			return
		}
		_, _ = io.Copy(io.Discard, r.Body)
		_, _ = w.Write([]byte(`{"results":{},"summary":"moved"}`))
	}))
	defer server.Close()

	cfg := config.NewDefaultScanAPIConfig()
	cfg.BaseURL = server.URL
	following, err := NewClient(cfg, zerolog.Nop())
	require.NoError(t, err)
	result, err := following.Scan(context.Background(), models.ScanRequest{URL: "example.com"})
	require.NoError(t, err)
	assert.Equal(t, "moved", result.Summary)

	cfg.FollowRedirects = false
	pinned, err := NewClient(cfg, zerolog.Nop())
	require.NoError(t, err)
	_, err = pinned.Scan(context.Background(), models.ScanRequest{URL: "example.com"})
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusTemporaryRedirect, te.StatusCode)
}

func TestNewClient_MaxResponseBytes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":{},"summary":"` + strings.Repeat("x", 4096) + `"}`))
	}))
	defer server.Close()

	cfg := config.NewDefaultScanAPIConfig()
	cfg.BaseURL = server.URL
	cfg.MaxResponseBytes = 1024
	client, err := NewClient(cfg, zerolog.Nop())
	require.NoError(t, err)

	_, err = client.Scan(context.Background(), models.ScanRequest{URL: "example.com"})
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.False(t, te.Aborted)
	assert.ErrorIs(t, err, httpclient.ErrContentTooLarge)
}

func TestNewClient_InsecureSkipVerify(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"healthy","service":"security-scanner"}`))
	}))
	defer server.Close()

	cfg := config.NewDefaultScanAPIConfig()
	cfg.BaseURL = server.URL
	strict, err := NewClient(cfg, zerolog.Nop())
	require.NoError(t, err)
	_, err = strict.Health(context.Background())
	assert.ErrorIs(t, err, errorwrapper.ErrNetworkFailure)

	cfg.InsecureSkipVerify = true
	lenient, err := NewClient(cfg, zerolog.Nop())
	require.NoError(t, err)
	status, err := lenient.Health(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Healthy())
}
