package httpclient

import (
	"time"
)

// HTTPClientConfig holds configuration for HTTP clients
type HTTPClientConfig struct {
	InsecureSkipVerify    bool              // Skip TLS verification
	FollowRedirects       bool              // Whether to follow redirects
	MaxRedirects          int               // Maximum number of redirects to follow
	Proxy                 string            // Proxy URL (HTTP/SOCKS)
	UserAgent             string            // User-Agent sent on every request
	CustomHeaders         map[string]string // Custom headers to add to all requests
	MaxContentSize        int               // Maximum response body size in bytes (0 for no limit)
	MaxIdleConns          int               // Maximum idle connections
	MaxIdleConnsPerHost   int               // Maximum idle connections per host
	MaxConnsPerHost       int               // Maximum connections per host
	IdleConnTimeout       time.Duration     // Idle connection timeout
	TLSHandshakeTimeout   time.Duration     // TLS handshake timeout
	ExpectContinueTimeout time.Duration     // Expect 100-continue timeout
	DialTimeout           time.Duration     // Connection dial timeout
	KeepAlive             time.Duration     // Keep-alive duration
	EnableHTTP2           bool              // Enable HTTP/2 support
}

// DefaultHTTPClientConfig returns the default HTTP client configuration.
// The scanning service is a plain JSON API so browser-like headers are not sent.
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		InsecureSkipVerify:    false,
		FollowRedirects:       true,
		MaxRedirects:          5,
		MaxContentSize:        10 * 1024 * 1024,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		MaxConnsPerHost:       0, // 0 means no limit
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		DialTimeout:           10 * time.Second,
		KeepAlive:             30 * time.Second,
		EnableHTTP2:           false,
		CustomHeaders: map[string]string{
			"Accept": "application/json",
		},
	}
}
