package bucket

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors.  To test these errors, use `errors.Is`.
var (
	ErrNotFound           = errors.New("not found")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrTimeout            = errors.New("timeout")
)

// classify decides which sentinel describes err.
// It returns nil for cancellation, which is the caller's own doing.
func classify(err error, isNotFound func(error) bool) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	case errors.Is(err, context.Canceled):
		return nil
	case isNotFound(err):
		return ErrNotFound
	}
	return ErrBackendUnavailable
}

// wrapError annotates err with a message and its sentinel kind.
func wrapError(err error, isNotFound func(error) bool, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	kind := classify(err, isNotFound)
	if kind == nil {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return fmt.Errorf("%s: %w: %w", msg, kind, err)
}
