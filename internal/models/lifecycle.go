package models

// LifecycleStatus is the phase of the current scan attempt.
type LifecycleStatus string

const (
	LifecycleIdle      LifecycleStatus = "IDLE"
	LifecyclePending   LifecycleStatus = "PENDING"
	LifecycleSucceeded LifecycleStatus = "SUCCEEDED"
	LifecycleFailed    LifecycleStatus = "FAILED"
)

// LifecycleState holds the status plus the payload of a terminal status.
// Result is set only when Succeeded, Error only when Failed.
type LifecycleState struct {
	Status LifecycleStatus  `json:"status"`
	Result *ScanResult      `json:"result,omitempty"`
	Error  *ClassifiedError `json:"error,omitempty"`
}

func IdleState() LifecycleState {
	return LifecycleState{Status: LifecycleIdle}
}

func PendingState() LifecycleState {
	return LifecycleState{Status: LifecyclePending}
}

func SucceededState(result *ScanResult) LifecycleState {
	return LifecycleState{Status: LifecycleSucceeded, Result: result}
}

func FailedState(err ClassifiedError) LifecycleState {
	return LifecycleState{Status: LifecycleFailed, Error: &err}
}

// IsPending reports whether an attempt is in flight.
func (s LifecycleState) IsPending() bool {
	return s.Status == LifecyclePending
}

// IsTerminal reports whether the attempt has resolved.
func (s LifecycleState) IsTerminal() bool {
	return s.Status == LifecycleSucceeded || s.Status == LifecycleFailed
}
