package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaiter_ValueAlreadyPresent(t *testing.T) {
	w := Waiter{Interval: time.Millisecond, MaxAttempts: 10}

	got, err := w.Await(context.Background(), func() string { return "1oz Gold Bar" })
	require.NoError(t, err)
	assert.Equal(t, "1oz Gold Bar", got)
}

func TestWaiter_ValuePopulatedAfterRetries(t *testing.T) {
	reads := 0
	w := Waiter{Interval: time.Millisecond, MaxAttempts: 10}

	got, err := w.Await(context.Background(), func() string {
		reads++
		if reads < 4 {
			return ""
		}
		return "3200.00"
	})
	require.NoError(t, err)
	assert.Equal(t, "3200.00", got)
	assert.Equal(t, 4, reads)
}

func TestWaiter_BudgetExhausted(t *testing.T) {
	reads := 0
	w := Waiter{Interval: time.Millisecond, MaxAttempts: 10}

	_, err := w.Await(context.Background(), func() string {
		reads++
		return ""
	})
	require.ErrorIs(t, err, ErrNotPopulated)
	assert.Equal(t, 10, reads, "budget is the number of reads, not retries")
}

func TestWaiter_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := Waiter{Interval: time.Minute, MaxAttempts: 10}

	_, err := w.Await(ctx, func() string { return "" })
	require.ErrorIs(t, err, context.Canceled)
}
