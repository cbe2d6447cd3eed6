package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Provider identifies a payment method offered on the complete-order
// stage.
type Provider string

const (
	ProviderPOLi     Provider = "POLi"
	ProviderBlink    Provider = "BLINK"
	ProviderStripe   Provider = "STRIPE"
	ProviderAlipay   Provider = "ALIPAY"
	ProviderWindcave Provider = "WINDCAVE"
)

// DefaultProviders is the provider set configured when nothing else is.
var DefaultProviders = []Provider{ProviderPOLi, ProviderBlink, ProviderStripe, ProviderAlipay}

// MethodState is the per-provider payment-button state. A provider
// starts processing and ends ready or error; there is no transition
// out of either terminal state within one poll run.
type MethodState string

const (
	MethodProcessing MethodState = "processing"
	MethodReady      MethodState = "ready"
	MethodError      MethodState = "error"
)

// Outcome is the aggregate terminal state of one poll run.
type Outcome string

const (
	// OutcomeAllReady: every configured provider has a payment link.
	OutcomeAllReady Outcome = "all_ready"
	// OutcomePartialReady: some links arrived, the rest are shown as
	// unavailable.
	OutcomePartialReady Outcome = "partial_ready"
	// OutcomeAllFailed: no link ever arrived; the whole control set is
	// shown in a single terminal error state.
	OutcomeAllFailed Outcome = "all_failed"
)

// Method is the final per-provider result.
type Method struct {
	State      MethodState
	PaymentURL string
}

// PollResult is the terminal snapshot of one poll run.
type PollResult struct {
	Outcome Outcome
	Methods map[Provider]Method

	// Attempts counts status requests actually made.
	Attempts int
}

// MethodListener observes per-provider transitions so the UI can move
// each payment button between processing, ready, and error.
type MethodListener interface {
	MethodChanged(provider Provider, state MethodState, paymentURL string)
}

// statusResponse is the wire shape of the payment-status endpoint.
type statusResponse struct {
	Payments map[string]struct {
		PaymentURL string `json:"payment_url"`
	} `json:"payments"`
}

// Poller runs the bounded payment-status polling loop against
// {base}/api/payment-status/{token}.
type Poller struct {
	baseURL     string
	client      *http.Client
	providers   []Provider
	warmup      time.Duration
	interval    time.Duration
	maxAttempts int
	listener    MethodListener // nil-safe
}

// PollerOption configures optional poller behaviour.
type PollerOption func(*Poller)

// WithProviders overrides the configured provider set.
func WithProviders(providers []Provider) PollerOption {
	return func(p *Poller) {
		if len(providers) > 0 {
			p.providers = providers
		}
	}
}

// WithTiming overrides the warm-up delay and retry interval. Tests set
// both to zero.
func WithTiming(warmup, interval time.Duration) PollerOption {
	return func(p *Poller) {
		p.warmup = warmup
		p.interval = interval
	}
}

// WithMaxAttempts overrides the retry budget (default 5).
func WithMaxAttempts(n int) PollerOption {
	return func(p *Poller) {
		if n > 0 {
			p.maxAttempts = n
		}
	}
}

// WithMethodListener registers a per-provider transition observer.
func WithMethodListener(l MethodListener) PollerOption {
	return func(p *Poller) { p.listener = l }
}

// NewPoller builds a Poller talking to baseURL. client may be nil, in
// which case http.DefaultClient is used.
func NewPoller(baseURL string, client *http.Client, opts ...PollerOption) *Poller {
	if client == nil {
		client = http.DefaultClient
	}
	p := &Poller{
		baseURL:     baseURL,
		client:      client,
		providers:   DefaultProviders,
		warmup:      5 * time.Second,
		interval:    2 * time.Second,
		maxAttempts: 5,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Poll runs the status loop for one order token and always terminates
// with a coherent snapshot: every provider ends ready or error.
//
// The loop deliberately polls exactly one extra time when some but not
// all providers became ready, then stops regardless of further
// progress: slow providers get one extra chance, nothing more. An
// empty token short-circuits to the all-failed state with no requests.
func (p *Poller) Poll(ctx context.Context, token string) PollResult {
	states := make(map[Provider]Method, len(p.providers))
	for _, provider := range p.providers {
		states[provider] = Method{State: MethodProcessing}
		p.notify(provider, MethodProcessing, "")
	}

	result := PollResult{Methods: states}

	if token == "" {
		slog.WarnContext(ctx, "no order token, skipping payment-status polling")
		return p.terminate(result)
	}

	// Give the backend time to initialise payment links before asking.
	if err := waitOrCancel(ctx, p.warmup); err != nil {
		return p.terminate(result)
	}

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		payments, err := p.fetchStatus(ctx, token)
		result.Attempts++

		if err != nil {
			slog.WarnContext(ctx, "payment-status request failed",
				"attempt", attempt, "error", err)
			if attempt < p.maxAttempts {
				if werr := waitOrCancel(ctx, p.interval); werr != nil {
					break
				}
				continue
			}
			break
		}

		newlyReady := p.applyPayments(states, payments)

		if p.allReady(states) {
			break
		}

		if newlyReady > 0 {
			// Partial progress: one extra poll for the stragglers,
			// then stop no matter what it returns.
			if werr := waitOrCancel(ctx, p.interval); werr != nil {
				break
			}
			payments, err := p.fetchStatus(ctx, token)
			result.Attempts++
			if err == nil {
				p.applyPayments(states, payments)
			}
			break
		}

		if attempt < p.maxAttempts {
			if werr := waitOrCancel(ctx, p.interval); werr != nil {
				break
			}
		}
	}

	return p.terminate(result)
}

// fetchStatus performs one GET against the payment-status endpoint.
func (p *Poller) fetchStatus(ctx context.Context, token string) (map[string]string, error) {
	url := fmt.Sprintf("%s/api/payment-status/%s", p.baseURL, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	res, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("payment-status returned HTTP %d", res.StatusCode)
	}

	var body statusResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode payment-status response: %w", err)
	}

	urls := make(map[string]string, len(body.Payments))
	for name, payment := range body.Payments {
		if payment.PaymentURL != "" {
			urls[name] = payment.PaymentURL
		}
	}
	return urls, nil
}

// applyPayments transitions providers with a payment URL from
// processing to ready. Returns how many became ready this round.
func (p *Poller) applyPayments(states map[Provider]Method, urls map[string]string) int {
	ready := 0
	for _, provider := range p.providers {
		m := states[provider]
		if m.State != MethodProcessing {
			continue
		}
		url, ok := urls[string(provider)]
		if !ok {
			continue
		}
		states[provider] = Method{State: MethodReady, PaymentURL: url}
		p.notify(provider, MethodReady, url)
		ready++
	}
	return ready
}

func (p *Poller) allReady(states map[Provider]Method) bool {
	for _, m := range states {
		if m.State != MethodReady {
			return false
		}
	}
	return true
}

// terminate marks any provider still processing as unavailable and
// computes the aggregate outcome.
func (p *Poller) terminate(result PollResult) PollResult {
	readyCount := 0
	for _, provider := range p.providers {
		m := result.Methods[provider]
		switch m.State {
		case MethodReady:
			readyCount++
		case MethodProcessing:
			result.Methods[provider] = Method{State: MethodError}
			p.notify(provider, MethodError, "")
		}
	}

	switch {
	case readyCount == len(p.providers):
		result.Outcome = OutcomeAllReady
	case readyCount > 0:
		result.Outcome = OutcomePartialReady
	default:
		result.Outcome = OutcomeAllFailed
	}
	return result
}

func (p *Poller) notify(provider Provider, state MethodState, url string) {
	if p.listener != nil {
		p.listener.MethodChanged(provider, state, url)
	}
}

// waitOrCancel blocks for d or until ctx is done. Returns nil if the
// duration elapses, or ctx.Err() if the context is done first.
func waitOrCancel(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
