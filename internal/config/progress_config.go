package config

import "time"

// ProgressConfig contains configuration for the cosmetic progress steps shown while a scan is pending
type ProgressConfig struct {
	// StepIntervalSecs is how often the cursor advances to the next step (in seconds)
	StepIntervalSecs int `json:"step_interval_secs,omitempty" yaml:"step_interval_secs,omitempty" validate:"min=1,max=60"`

	// EnableProgress enables or disables printing step changes in terminal mode
	EnableProgress bool `json:"enable_progress" yaml:"enable_progress"`
}

// NewDefaultProgressConfig creates a new ProgressConfig with default values
func NewDefaultProgressConfig() ProgressConfig {
	return ProgressConfig{
		StepIntervalSecs: DefaultProgressStepIntervalSecs,
		EnableProgress:   DefaultProgressEnabled,
	}
}

// GetStepIntervalDuration returns the step interval as time.Duration
func (pc *ProgressConfig) GetStepIntervalDuration() time.Duration {
	return time.Duration(pc.StepIntervalSecs) * time.Second
}
