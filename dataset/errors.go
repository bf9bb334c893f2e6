package dataset

import (
	"fmt"
	"strings"

	"github.com/cybozu-go/bucket-sampler/pkg/bucket"
	"github.com/cybozu-go/bucket-sampler/pkg/sample"
)

// Sentinel errors.  To test these errors, use `errors.Is`.
var (
	ErrNotFound           = bucket.ErrNotFound
	ErrBackendUnavailable = bucket.ErrBackendUnavailable
	ErrTimeout            = bucket.ErrTimeout
	ErrInvalidArgument    = sample.ErrInvalidArgument
)

// KeyFailure records why a single key could not be fetched.
type KeyFailure struct {
	Key string
	Err error
}

// PartialFetchError is returned by Fetch when some keys failed.
// The other keys were still fetched.
type PartialFetchError struct {
	Failures []KeyFailure
}

// Error implements error interface.
func (e *PartialFetchError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "failed to fetch %d object(s)", len(e.Failures))
	for i, f := range e.Failures {
		if i == 0 {
			buf.WriteString(": ")
		} else {
			buf.WriteString("; ")
		}
		fmt.Fprintf(&buf, "%s: %v", f.Key, f.Err)
	}
	return buf.String()
}

// Unwrap returns the underlying errors so that errors.Is can see them.
func (e *PartialFetchError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}

// FailedKeys returns the keys to retry.
func (e *PartialFetchError) FailedKeys() []string {
	keys := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		keys[i] = f.Key
	}
	return keys
}
