package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nzmint/bullion-checkout/internal/checkout/journal"
	"github.com/nzmint/bullion-checkout/internal/session"
)

// State is the submitter's lifecycle state. The listener receives every
// transition so the surrounding UI can disable the trigger control,
// swap in a processing label, or show the terminal error indicator.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSubmitted  State = "submitted"
	StateErrored    State = "errored"
)

// Listener observes submitter state transitions. Implementations must
// be fast: they run inline on the submission path.
type Listener interface {
	StateChanged(state State)
}

// ErrServerError is the uniform failure for anything the backend did
// wrong: network failure, a non-JSON body, or a response missing the
// token or trade-order ID. There is no partial-success state and no
// automatic retry; the customer has to re-trigger the submission.
var ErrServerError = errors.New("checkout: server error")

// ValidationError carries a failed validation Result. It is returned
// instead of submitting, and the submitter drops back to idle.
type ValidationError struct {
	Result Result
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("checkout: validation failed (%d field errors, no_product=%t, supplier_unconfirmed=%t)",
		len(e.Result.FieldErrors), e.Result.NoProduct, e.Result.SupplierUnconfirmed)
}

// Receipt is what a successful submission yields: everything the
// complete-order stage needs to poll payment status and display the
// order summary.
type Receipt struct {
	SubmissionID string
	Token        string
	TradeOrderID string
	CreationTime string
}

// createResponse is the backend's answer to /create and /create-quote.
type createResponse struct {
	Token             string `json:"token"`
	TradeOrder        string `json:"trade_order"`
	OrderCreationTime string `json:"order_creation_time"`
}

// Submitter drives one order or quote submission through
// validating → submitting → submitted|errored.
type Submitter struct {
	baseURL     string
	client      *http.Client
	store       session.Store
	journalRepo journal.Repository // nil-safe: journaling skipped if nil
	listener    Listener           // nil-safe
	ttl         time.Duration
	newID       func() string
}

// SubmitterOption configures optional submitter behaviour.
type SubmitterOption func(*Submitter)

// WithJournal persists every state transition to the given repository.
func WithJournal(repo journal.Repository) SubmitterOption {
	return func(s *Submitter) { s.journalRepo = repo }
}

// WithListener registers a state-transition observer.
func WithListener(l Listener) SubmitterOption {
	return func(s *Submitter) { s.listener = l }
}

// WithTTL overrides the hand-off time-to-live (default 30 minutes).
func WithTTL(ttl time.Duration) SubmitterOption {
	return func(s *Submitter) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// NewSubmitter builds a Submitter talking to baseURL. client may be
// nil, in which case http.DefaultClient is used.
func NewSubmitter(baseURL string, client *http.Client, store session.Store, opts ...SubmitterOption) *Submitter {
	if client == nil {
		client = http.DefaultClient
	}
	s := &Submitter{
		baseURL: baseURL,
		client:  client,
		store:   store,
		ttl:     session.DefaultTTL,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitOrder validates the form, POSTs the order payload to
// {base}/create, and on success persists the hand-off state. This is
// an at-most-once fire: a failure is terminal for this attempt.
func (s *Submitter) SubmitOrder(ctx context.Context, form Form) (*Receipt, error) {
	if err := s.beginValidation(ctx, form); err != nil {
		return nil, err
	}

	payload := BuildOrderPayload(form)
	receipt, err := s.send(ctx, "/create", "create-order", session.KeyOrderData, payload)
	if err == nil && form.ProductURL != "" {
		// The complete-order stage links back to the product page.
		if perr := s.store.Put(ctx, session.KeyProductURL, form.ProductURL, s.ttl); perr != nil {
			slog.WarnContext(ctx, "failed to persist hand-off entry", "key", session.KeyProductURL, "error", perr)
		}
	}
	return receipt, err
}

// SubmitQuote validates the contact fields and POSTs the quote payload
// to {base}/create-quote. The supplier-confirmation rule does not apply
// to quotes, so the form's checkbox state is ignored here.
func (s *Submitter) SubmitQuote(ctx context.Context, form Form, items []QuoteItem) (*Receipt, error) {
	quoteForm := form
	quoteForm.SupplierStatus = "" // cross-field rule is order-only

	if err := s.beginValidation(ctx, quoteForm); err != nil {
		return nil, err
	}

	payload := BuildQuotePayload(form, items)
	return s.send(ctx, "/create-quote", "create-quote", session.KeyQuoteData, payload)
}

// beginValidation runs the validating stage. A non-nil return is the
// error to hand back to the caller; the submitter is back at idle.
func (s *Submitter) beginValidation(ctx context.Context, form Form) error {
	s.setState(StateValidating)

	res := Validate(form)
	if !res.OK() {
		s.journal(ctx, journal.NewEntry(ctx, "", journal.StatusRejected, "validate", "", validationMessages(res)))
		s.setState(StateIdle)
		return &ValidationError{Result: res}
	}
	return nil
}

// send runs the submitting stage: one POST, strict response check,
// hand-off persistence.
func (s *Submitter) send(ctx context.Context, path, stage, dataKey string, payload any) (*Receipt, error) {
	submissionID := s.newID()
	s.journal(ctx, journal.NewEntry(ctx, submissionID, journal.StatusStarted, stage, "", nil))

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, s.fail(ctx, submissionID, stage, fmt.Errorf("encode payload: %w", err))
	}

	s.setState(StateSubmitting)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, s.fail(ctx, submissionID, stage, err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpRes, err := s.client.Do(req)
	if err != nil {
		return nil, s.fail(ctx, submissionID, stage, fmt.Errorf("%w: %v", ErrServerError, err))
	}
	defer httpRes.Body.Close()

	var created createResponse
	if err := json.NewDecoder(httpRes.Body).Decode(&created); err != nil {
		return nil, s.fail(ctx, submissionID, stage, fmt.Errorf("%w: non-JSON response: %v", ErrServerError, err))
	}
	if created.Token == "" || created.TradeOrder == "" {
		return nil, s.fail(ctx, submissionID, stage,
			fmt.Errorf("%w: response missing token or trade_order", ErrServerError))
	}

	s.persistHandoff(ctx, dataKey, string(body), created)

	s.journal(ctx, journal.NewEntry(ctx, submissionID, journal.StatusSubmitted, stage, string(body), nil))
	s.setState(StateSubmitted)

	slog.InfoContext(ctx, "submission accepted",
		"submission_id", submissionID,
		"trade_order", created.TradeOrder,
	)

	return &Receipt{
		SubmissionID: submissionID,
		Token:        created.Token,
		TradeOrderID: created.TradeOrder,
		CreationTime: created.OrderCreationTime,
	}, nil
}

// persistHandoff stores everything the next stage needs, each entry
// with the same TTL. A store failure degrades the hand-off but does
// not undo an already-created order, so it is logged, not returned.
func (s *Submitter) persistHandoff(ctx context.Context, dataKey, payloadJSON string, created createResponse) {
	puts := []struct{ key, value string }{
		{dataKey, payloadJSON},
		{session.KeyToken, created.Token},
		{session.KeyTradeOrder, created.TradeOrder},
		{session.KeyOrderCreationTime, created.OrderCreationTime},
	}
	for _, p := range puts {
		if err := s.store.Put(ctx, p.key, p.value, s.ttl); err != nil {
			slog.WarnContext(ctx, "failed to persist hand-off entry", "key", p.key, "error", err)
		}
	}
}

// fail records the terminal error state for this attempt.
func (s *Submitter) fail(ctx context.Context, submissionID, stage string, err error) error {
	s.journal(ctx, journal.NewEntry(ctx, submissionID, journal.StatusFailed, stage, "", []string{err.Error()}))
	s.setState(StateErrored)
	slog.ErrorContext(ctx, "submission failed", "submission_id", submissionID, "stage", stage, "error", err)
	return err
}

func (s *Submitter) setState(state State) {
	if s.listener != nil {
		s.listener.StateChanged(state)
	}
}

func (s *Submitter) journal(ctx context.Context, entry *journal.Entry) {
	if s.journalRepo == nil {
		return
	}
	if err := s.journalRepo.Save(ctx, entry); err != nil {
		slog.WarnContext(ctx, "failed to save journal entry", "error", err)
	}
}

func validationMessages(res Result) []string {
	var msgs []string
	for _, fe := range res.FieldErrors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	if res.NoProduct {
		msgs = append(msgs, "no product selected")
	}
	if res.SupplierUnconfirmed {
		msgs = append(msgs, "supplier confirmation checkbox unchecked")
	}
	return msgs
}
