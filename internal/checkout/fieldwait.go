package checkout

import (
	"context"
	"errors"
	"time"
)

// ErrNotPopulated is returned when a field source never produced a
// value within the retry budget.
var ErrNotPopulated = errors.New("checkout: field not populated")

// Waiter awaits a lazily populated field value, such as product data
// the page templating system fills in after load. It replaces the
// per-page "check again in a moment" loops with one bounded utility.
type Waiter struct {
	// Interval between reads. Defaults to 500ms.
	Interval time.Duration

	// MaxAttempts bounds the number of reads. Defaults to 10.
	MaxAttempts int
}

// Await calls read until it returns a non-empty value or the budget is
// exhausted. The first read happens immediately; each retry waits
// Interval. Exhaustion returns ErrNotPopulated, cancellation ctx.Err().
func (w Waiter) Await(ctx context.Context, read func() string) (string, error) {
	interval := w.Interval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	attempts := w.MaxAttempts
	if attempts <= 0 {
		attempts = 10
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		if value := read(); value != "" {
			return value, nil
		}
		if attempt == attempts {
			break
		}
		if err := waitOrCancel(ctx, interval); err != nil {
			return "", err
		}
	}
	return "", ErrNotPopulated
}
