package httpclient

import (
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/aleister1102/scanconsole/internal/common/bufferpool"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
)

// HTTPClient wraps net/http.Client with pooled body buffers and default headers.
// It performs exactly one attempt per Do call.
type HTTPClient struct {
	client     *http.Client
	config     HTTPClientConfig
	logger     zerolog.Logger
	bufferPool *bufferpool.Pool
}

// NewHTTPClient creates a new HTTP client with the given configuration using net/http
func NewHTTPClient(config HTTPClientConfig, logger zerolog.Logger) (*HTTPClient, error) {
	transport := &http.Transport{
		MaxIdleConns:          config.MaxIdleConns,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		MaxConnsPerHost:       config.MaxConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		TLSHandshakeTimeout:   config.TLSHandshakeTimeout,
		ExpectContinueTimeout: config.ExpectContinueTimeout,
		DialContext: (&net.Dialer{
			Timeout:   config.DialTimeout,
			KeepAlive: config.KeepAlive,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: config.InsecureSkipVerify,
		},
	}

	if config.EnableHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			logger.Warn().Err(err).Msg("Failed to configure HTTP/2, falling back to HTTP/1.1")
		} else {
			logger.Debug().Msg("HTTP/2 support enabled")
		}
	}

	if config.Proxy != "" {
		proxyURL, err := url.Parse(config.Proxy)
		if err != nil {
			return nil, WrapError(err, "failed to parse proxy URL")
		}
		transport.Proxy = http.ProxyURL(proxyURL)
		logger.Info().Str("proxy", config.Proxy).Msg("HTTP client configured with proxy")
	}

	// deadlines come from the request context
	client := &http.Client{
		Transport: transport,
	}

	if !config.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	} else if config.MaxRedirects > 0 {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= config.MaxRedirects {
				return fmt.Errorf("stopped after %d redirects", config.MaxRedirects)
			}
			return nil
		}
	}

	logger.Debug().
		Bool("insecure_skip_verify", config.InsecureSkipVerify).
		Bool("follow_redirects", config.FollowRedirects).
		Int("max_redirects", config.MaxRedirects).
		Bool("http2_enabled", config.EnableHTTP2).
		Msg("HTTP client created")

	return &HTTPClient{
		client:     client,
		config:     config,
		logger:     logger,
		bufferPool: bufferpool.New(32*1024, 4*1024*1024),
	}, nil
}

// Do performs a single HTTP request. Failures before a response arrives come back
// as *NetworkError wrapping the transport error, so context cancellation and
// deadlines stay visible to errors.Is. Any response, whatever its status, is
// returned without error.
func (c *HTTPClient) Do(req *HTTPRequest) (*HTTPResponse, error) {
	var body io.Reader
	if req.Body != nil {
		body = req.Body
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequest(method, req.URL, body)
	if err != nil {
		return nil, WrapError(err, "failed to create HTTP request")
	}

	if req.Context != nil {
		httpReq = httpReq.WithContext(req.Context)
	}

	for key, value := range c.config.CustomHeaders {
		httpReq.Header.Set(key, value)
	}

	// request-specific headers override defaults
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if c.config.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.config.UserAgent)
	}

	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "*/*")
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, NewNetworkError(req.URL, "HTTP request failed", err)
	}
	defer resp.Body.Close()

	buf := c.bufferPool.Get()
	defer c.bufferPool.Put(buf)

	var reader io.Reader = resp.Body
	if c.config.MaxContentSize > 0 {
		reader = io.LimitReader(resp.Body, int64(c.config.MaxContentSize)+1)
	}

	if _, err = io.Copy(buf, reader); err != nil {
		return nil, NewNetworkError(req.URL, "failed to read response body", err)
	}

	if c.config.MaxContentSize > 0 && buf.Len() > c.config.MaxContentSize {
		c.logger.Warn().
			Str("url", req.URL).
			Int("max_content_size", c.config.MaxContentSize).
			Msg("Response body exceeds limit")
		return nil, ErrContentTooLarge
	}

	// copy out so the pooled buffer can be reused
	bodyBytes := make([]byte, buf.Len())
	copy(bodyBytes, buf.Bytes())

	httpResp := &HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    make(map[string]string),
		Body:       bodyBytes,
	}

	for key, values := range resp.Header {
		if len(values) > 0 {
			httpResp.Headers[key] = values[0]
		}
	}

	c.logger.Debug().
		Str("method", method).
		Str("url", req.URL).
		Int("status_code", resp.StatusCode).
		Int("content_size", len(bodyBytes)).
		Msg("HTTP request completed")

	return httpResp, nil
}
