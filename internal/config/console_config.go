package config

// ConsoleConfig configures the web console server
type ConsoleConfig struct {
	ListenAddr string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty" validate:"required,hostname_port"`
	// AllowedOrigins limits WebSocket upgrades; empty means same-origin only
	AllowedOrigins []string `json:"allowed_origins,omitempty" yaml:"allowed_origins,omitempty" validate:"omitempty,dive,httpurl"`
}

// NewDefaultConsoleConfig creates default console configuration
func NewDefaultConsoleConfig() ConsoleConfig {
	return ConsoleConfig{
		ListenAddr: DefaultConsoleListenAddr,
	}
}
