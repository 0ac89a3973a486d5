package vision

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	ErrMissingPayload       = errors.New("missing payload")
	ErrBackendNotConfigured = errors.New("backend not configured")
	ErrBackendTimeout       = errors.New("backend timeout")
	ErrMalformedResponse    = errors.New("malformed backend response")
	ErrBackendUnreachable   = errors.New("backend unreachable")
)

// BackendError is a non-success reply from the annotation backend.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend error: status %d: %s", e.StatusCode, e.Message)
}

// Transient reports whether another attempt could plausibly succeed.
func (e *BackendError) Transient() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// IsTransient classifies err for the retry loop.
func IsTransient(err error) bool {
	if errors.Is(err, ErrBackendTimeout) || errors.Is(err, ErrBackendUnreachable) {
		return true
	}
	var be *BackendError
	if errors.As(err, &be) {
		return be.Transient()
	}
	return false
}

// TransportError maps a failed outbound call to the error taxonomy.
// Deadline hits become ErrBackendTimeout; caller cancellation is passed through.
func TransportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrBackendTimeout, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %v", ErrBackendTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("request cancelled: %w", err)
	}
	return fmt.Errorf("%w: %v", ErrBackendUnreachable, err)
}
