// Package session implements the expiring hand-off store used to pass
// order data, the auth token, and trade-order identifiers between
// pipeline stages.
//
// Every value is wrapped in an envelope carrying an absolute expiry.
// A read past the expiry reports the entry as absent AND deletes it:
// eviction-on-read is part of the contract, so a later Put under the
// same key always starts clean.
package session

import (
	"context"
	"encoding/json"
	"time"
)

// Well-known keys shared by the pipeline stages.
const (
	KeyOrderData         = "orderData"
	KeyQuoteData         = "quoteData"
	KeyToken             = "token"
	KeyTradeOrder        = "trade_order"
	KeyOrderCreationTime = "order_creation_time"
	KeyProductURL        = "product_url"
)

// DefaultTTL is the hand-off time-to-live applied by the submitter.
const DefaultTTL = 30 * time.Minute

// Store is the port both stage hand-off backends implement.
type Store interface {
	// Put stores value under key with the given time-to-live.
	Put(ctx context.Context, key, value string, ttl time.Duration) error

	// Get returns the live value for key. Expired or unparsable
	// entries are deleted and reported as absent (ok == false).
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Take returns the live value for key and deletes it, so a stale
	// replay on a later page load sees nothing.
	Take(ctx context.Context, key string) (value string, ok bool, err error)

	// Delete removes key unconditionally.
	Delete(ctx context.Context, key string) error
}

// envelope is the stored wire form: the value plus an absolute expiry
// in epoch milliseconds.
type envelope struct {
	Value  string `json:"value"`
	Expiry int64  `json:"expiry"`
}

func sealEnvelope(value string, now time.Time, ttl time.Duration) (string, error) {
	raw, err := json.Marshal(envelope{
		Value:  value,
		Expiry: now.Add(ttl).UnixMilli(),
	})
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// openEnvelope parses raw and checks the expiry. ok is false when the
// envelope is corrupt or past its expiry; such entries must be evicted
// by the caller.
func openEnvelope(raw string, now time.Time) (string, bool) {
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return "", false
	}
	if now.UnixMilli() > env.Expiry {
		return "", false
	}
	return env.Value, true
}
