package scanapi

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// TransportError describes a failed call to the scanning service. Exactly one of
// Aborted or StatusCode != 0 holds for deadline/cancel and HTTP failures; other
// failures (connection refused, undecodable body) carry only Err.
type TransportError struct {
	Aborted    bool
	StatusCode int
	Detail     string
	Body       []byte
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Aborted:
		return fmt.Sprintf("scan request aborted: %v", e.Err)
	case e.StatusCode != 0 && e.Detail != "":
		return fmt.Sprintf("scan service returned status %d: %s", e.StatusCode, e.Detail)
	case e.StatusCode != 0:
		return fmt.Sprintf("scan service returned status %d", e.StatusCode)
	default:
		return fmt.Sprintf("scan request failed: %v", e.Err)
	}
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsAbort reports whether err stems from the attempt being cut short: the
// context deadline fired, the context was cancelled, or the transport timed out.
func IsAbort(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return ctx != nil && ctx.Err() != nil
}
