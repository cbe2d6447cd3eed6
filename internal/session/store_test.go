package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	current time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.current
}

func newTestStore(t *testing.T) (*Memory, *fixedClock) {
	t.Helper()

	clock := &fixedClock{current: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	return NewMemory(WithClock(clock.Now)), clock
}

func TestMemory_RoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, KeyToken, "abc123", 30*time.Minute))

	got, ok, err := store.Get(ctx, KeyToken)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "abc123", got)
}

func TestMemory_ExpiredEntryIsEvictedOnRead(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, KeyOrderData, `{"quantity":"2"}`, 30*time.Minute))

	clock.current = clock.current.Add(31 * time.Minute)

	_, ok, err := store.Get(ctx, KeyOrderData)
	require.NoError(t, err)
	require.False(t, ok, "read past expiry must report absent")
	require.Zero(t, store.Len(), "expired entry must be deleted, not just hidden")
}

func TestMemory_ExactExpiryBoundaryStillLive(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, KeyToken, "abc123", 30*time.Minute))

	// now == expiry is not yet past it
	clock.current = clock.current.Add(30 * time.Minute)

	got, ok, err := store.Get(ctx, KeyToken)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "abc123", got)
}

func TestMemory_CorruptEnvelopeIsEvicted(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	store.mu.Lock()
	store.entries[KeyTradeOrder] = "not json at all"
	store.mu.Unlock()

	_, ok, err := store.Get(ctx, KeyTradeOrder)
	require.NoError(t, err)
	require.False(t, ok)
	require.Zero(t, store.Len())
}

func TestMemory_TakeConsumesTheEntry(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, KeyTradeOrder, "TO-1042", 30*time.Minute))

	got, ok, err := store.Take(ctx, KeyTradeOrder)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "TO-1042", got)

	_, ok, err = store.Get(ctx, KeyTradeOrder)
	require.NoError(t, err)
	require.False(t, ok, "a second read after Take must see nothing")
}

func TestMemory_PutAfterExpiryStartsClean(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, KeyToken, "old", time.Minute))
	clock.current = clock.current.Add(2 * time.Minute)

	_, ok, _ := store.Get(ctx, KeyToken)
	require.False(t, ok)

	require.NoError(t, store.Put(ctx, KeyToken, "new", time.Minute))
	got, ok, err := store.Get(ctx, KeyToken)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "new", got)
}

func TestEnvelope_SealOpen(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	sealed, err := sealEnvelope("hello", now, 5*time.Minute)
	require.NoError(t, err)

	got, ok := openEnvelope(sealed, now.Add(4*time.Minute))
	require.True(t, ok)
	require.Equal(t, "hello", got)

	_, ok = openEnvelope(sealed, now.Add(6*time.Minute))
	require.False(t, ok)
}
