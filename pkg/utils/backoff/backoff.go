package backoff

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// Policy controls in-call retries of transient backend failures
type Policy struct {
	MaxRetries uint64
	Base       time.Duration
}

// Default retries three times starting at 200ms
var Default = Policy{MaxRetries: 3, Base: 200 * time.Millisecond}

// Do runs fn and retries it while transient reports true for the returned error.
// The last error is returned as is once retries are exhausted.
func Do(ctx context.Context, p Policy, transient func(error) bool, fn func(ctx context.Context) error) error {
	base := p.Base
	if base <= 0 {
		base = Default.Base
	}
	b := retry.WithMaxRetries(p.MaxRetries, retry.NewExponential(base))

	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := fn(ctx)
		if err != nil && transient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}
