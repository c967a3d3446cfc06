package scanapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aleister1102/scanconsole/internal/common/errorwrapper"
	"github.com/aleister1102/scanconsole/internal/config"
	"github.com/aleister1102/scanconsole/internal/httpclient"
	"github.com/aleister1102/scanconsole/internal/models"
	"github.com/rs/zerolog"
)

const (
	scanPath   = "/scan"
	healthPath = "/health"
)

// HealthStatus is the scanning service's GET /health payload.
type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Healthy reports whether the service described itself as healthy.
func (h HealthStatus) Healthy() bool {
	return h.Status == "healthy"
}

// Client talks to the remote scanning service. It never retries and never applies
// its own deadline; callers bound each attempt through the context.
type Client struct {
	httpClient *httpclient.HTTPClient
	baseURL    string
	logger     zerolog.Logger
}

// NewClient builds a Client from the scan API configuration.
func NewClient(cfg config.ScanAPIConfig, logger zerolog.Logger) (*Client, error) {
	clientLogger := logger.With().Str("component", "ScanAPIClient").Logger()

	httpClient, err := httpclient.NewHTTPClientBuilder(clientLogger).
		WithUserAgent(cfg.UserAgent).
		WithCustomHeaders(cfg.CustomHeaders).
		WithHTTP2(cfg.EnableHTTP2).
		WithProxy(cfg.Proxy).
		WithInsecureSkipVerify(cfg.InsecureSkipVerify).
		WithFollowRedirects(cfg.FollowRedirects).
		WithMaxRedirects(cfg.MaxRedirects).
		WithMaxContentSize(cfg.MaxResponseBytes).
		Build()
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to create scan API HTTP client")
	}

	return NewClientWithHTTP(httpClient, cfg.GetBaseURL(), clientLogger), nil
}

// NewClientWithHTTP builds a Client over an existing HTTP client.
func NewClientWithHTTP(httpClient *httpclient.HTTPClient, baseURL string, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     logger,
	}
}

// BaseURL returns the service root the client posts to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Scan submits one scan request. Every failure is a *TransportError.
func (c *Client) Scan(ctx context.Context, req models.ScanRequest) (*models.ScanResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, &TransportError{Err: errorwrapper.WrapError(err, "failed to encode scan request")}
	}

	endpoint := c.baseURL + scanPath
	c.logger.Debug().Str("endpoint", endpoint).Str("target", req.URL).Msg("Submitting scan request")

	resp, err := c.httpClient.Do(&httpclient.HTTPRequest{
		URL:     endpoint,
		Method:  http.MethodPost,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    bytes.NewReader(payload),
		Context: ctx,
	})
	if err != nil {
		return nil, c.transportFailure(ctx, endpoint, err)
	}

	if !resp.IsSuccess() {
		return nil, c.statusFailure(endpoint, resp)
	}

	result, err := models.ParseScanResult(resp.Body)
	if err != nil {
		c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Scan service returned an undecodable body")
		return nil, &TransportError{
			Body: resp.Body,
			Err:  errorwrapper.WrapError(err, "failed to decode scan result"),
		}
	}

	c.logger.Debug().
		Str("target", req.URL).
		Int("checks", len(result.Results)).
		Msg("Scan request succeeded")
	return result, nil
}

// Health queries GET /health.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	endpoint := c.baseURL + healthPath

	resp, err := c.httpClient.Do(&httpclient.HTTPRequest{
		URL:     endpoint,
		Method:  http.MethodGet,
		Context: ctx,
	})
	if err != nil {
		return nil, c.transportFailure(ctx, endpoint, err)
	}

	if !resp.IsSuccess() {
		return nil, c.statusFailure(endpoint, resp)
	}

	var status HealthStatus
	if err := json.Unmarshal(resp.Body, &status); err != nil {
		return nil, &TransportError{
			Body: resp.Body,
			Err:  errorwrapper.WrapError(err, "failed to decode health status"),
		}
	}
	return &status, nil
}

// CheckHealth is Health for callers that only need a verdict: an unreachable or
// unhealthy service comes back as an error matching errorwrapper.ErrServiceUnavailable.
func (c *Client) CheckHealth(ctx context.Context) (*HealthStatus, error) {
	status, err := c.Health(ctx)
	if err != nil {
		return nil, errors.Join(errorwrapper.ErrServiceUnavailable, err)
	}
	if !status.Healthy() {
		return status, errorwrapper.NewError("%w: %q reports status %q", errorwrapper.ErrServiceUnavailable, status.Service, status.Status)
	}
	return status, nil
}

func (c *Client) transportFailure(ctx context.Context, endpoint string, err error) error {
	if IsAbort(ctx, err) {
		c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Scan service request aborted")
		return &TransportError{Aborted: true, Err: errors.Join(errorwrapper.ErrTimeout, err)}
	}
	c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("Scan service request failed")
	if errors.Is(err, httpclient.ErrContentTooLarge) {
		return &TransportError{Err: err}
	}
	return &TransportError{Err: errors.Join(errorwrapper.ErrNetworkFailure, err)}
}

func (c *Client) statusFailure(endpoint string, resp *httpclient.HTTPResponse) error {
	detail := ExtractDetail(resp.Body)
	c.logger.Warn().
		Str("endpoint", endpoint).
		Int("status_code", resp.StatusCode).
		Str("detail", detail).
		Msg("Scan service returned non-success status")

	return &TransportError{
		StatusCode: resp.StatusCode,
		Detail:     detail,
		Body:       resp.Body,
		Err:        errorwrapper.NewHTTPErrorWithURL(resp.StatusCode, detail, endpoint),
	}
}
