package config

import (
	"strings"
	"time"
)

// ScanAPIConfig defines how the console reaches the remote scanning service
type ScanAPIConfig struct {
	// BaseURL is the scanning service root; the console POSTs to BaseURL + "/scan"
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"required,httpurl"`
	// TimeoutSecs bounds a single scan attempt
	TimeoutSecs int `json:"timeout_secs,omitempty" yaml:"timeout_secs,omitempty" validate:"min=60,max=120"`
	// DefaultPrompt is the instruction used until the user edits it
	DefaultPrompt string            `json:"default_prompt,omitempty" yaml:"default_prompt,omitempty" validate:"required"`
	UserAgent     string            `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	CustomHeaders map[string]string `json:"custom_headers,omitempty" yaml:"custom_headers,omitempty"`
	EnableHTTP2   bool              `json:"enable_http2" yaml:"enable_http2"`
	// Proxy routes scan API traffic through an HTTP(S) or SOCKS5 proxy
	Proxy              string `json:"proxy,omitempty" yaml:"proxy,omitempty" validate:"omitempty,proxyurl"`
	InsecureSkipVerify bool   `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
	FollowRedirects    bool   `json:"follow_redirects" yaml:"follow_redirects"`
	MaxRedirects       int    `json:"max_redirects,omitempty" yaml:"max_redirects,omitempty" validate:"min=0,max=20"`
	// MaxResponseBytes caps the scan response body; larger bodies fail the attempt
	MaxResponseBytes int `json:"max_response_bytes,omitempty" yaml:"max_response_bytes,omitempty" validate:"min=1024"`
}

// NewDefaultScanAPIConfig creates default scan API configuration
func NewDefaultScanAPIConfig() ScanAPIConfig {
	return ScanAPIConfig{
		BaseURL:       DefaultScanAPIBaseURL,
		TimeoutSecs:   DefaultScanAPITimeoutSecs,
		DefaultPrompt: DefaultScanPrompt,
		UserAgent:     DefaultScanAPIUserAgent,
		CustomHeaders: make(map[string]string),
		EnableHTTP2:   DefaultScanAPIHTTP2,

		FollowRedirects:  DefaultScanAPIFollowRedirects,
		MaxRedirects:     DefaultScanAPIMaxRedirects,
		MaxResponseBytes: DefaultScanAPIMaxResponseBytes,
	}
}

// GetTimeoutDuration returns the attempt timeout as time.Duration
func (sc *ScanAPIConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(sc.TimeoutSecs) * time.Second
}

// GetBaseURL returns the base URL without a trailing slash
func (sc *ScanAPIConfig) GetBaseURL() string {
	return strings.TrimRight(sc.BaseURL, "/")
}
