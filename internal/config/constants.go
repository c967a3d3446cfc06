package config

const (
	// Scan API Defaults
	DefaultScanAPIBaseURL     = "http://localhost:8000"
	DefaultScanAPITimeoutSecs = 120
	MinScanAPITimeoutSecs     = 60
	MaxScanAPITimeoutSecs     = 120
	DefaultScanPrompt         = "Check for security breaches and vulnerabilities"
	DefaultScanAPIUserAgent   = "scanconsole/0.1"
	DefaultScanAPIHTTP2       = false

	DefaultScanAPIFollowRedirects  = true
	DefaultScanAPIMaxRedirects     = 5
	DefaultScanAPIMaxResponseBytes = 10 * 1024 * 1024

	// Progress Defaults
	DefaultProgressStepIntervalSecs = 2
	DefaultProgressEnabled          = true

	// Console Defaults
	DefaultConsoleListenAddr = "127.0.0.1:3000"

	// Log Defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFile       = ""
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3

	// Environment variables
	EnvConfigPath  = "SCANCONSOLE_CONFIG_PATH"
	EnvAPIURL      = "SCANCONSOLE_API_URL"
	EnvLegacyAPI   = "NEXT_PUBLIC_API_URL"
	EnvTimeoutSecs = "SCANCONSOLE_TIMEOUT_SECS"
	EnvLogLevel    = "SCANCONSOLE_LOG_LEVEL"
)
