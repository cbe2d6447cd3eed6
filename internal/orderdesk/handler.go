// Package orderdesk is a stub implementation of the order-management
// backend the checkout pipeline talks to. It exists for local
// development and end-to-end tests: orders live in memory, and payment
// links "become ready" after a configurable number of status polls so
// the poller's slow-provider handling can be exercised for real.
package orderdesk

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// orderRecord tracks one created order or quote.
type orderRecord struct {
	tradeOrder   string
	creationTime string
	statusPolls  int
}

// Handler serves the order-desk HTTP contract.
type Handler struct {
	mu     sync.Mutex
	orders map[string]*orderRecord
	seq    int

	// readyAfter maps a provider name to the number of status polls
	// after which its payment link appears. Providers absent from the
	// map are ready on the first poll.
	readyAfter map[string]int
	providers  []string

	now func() time.Time
}

// NewHandler builds the stub handler. providers is the set of payment
// methods reported on the status endpoint; readyAfter may be nil.
func NewHandler(providers []string, readyAfter map[string]int) *Handler {
	if len(providers) == 0 {
		providers = []string{"POLi", "BLINK", "STRIPE", "ALIPAY"}
	}
	return &Handler{
		orders:     make(map[string]*orderRecord),
		readyAfter: readyAfter,
		providers:  providers,
		now:        time.Now,
	}
}

// Health answers the dev-tunnel liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// CreateOrder accepts an order payload and mints a token + trade-order ID.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	if req.FirstName == "" || req.ProductName == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "first_name_order and product_name_full are required")
		return
	}

	res := h.register()
	slog.InfoContext(r.Context(), "order created",
		"trade_order", res.TradeOrder, "product", req.ProductName, "quantity", req.Quantity)
	writeJSON(w, http.StatusCreated, res)
}

// CreateQuote accepts a quote payload with nested product lines.
func (h *Handler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var req createQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	if req.FirstName == "" || len(req.Products) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "first_name_order and at least one product are required")
		return
	}

	res := h.register()
	slog.InfoContext(r.Context(), "quote created",
		"trade_order", res.TradeOrder, "products", len(req.Products))
	writeJSON(w, http.StatusCreated, res)
}

// GetOrder returns the recorded identifiers for a token, mainly for
// debugging a dev session.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	h.mu.Lock()
	record, ok := h.orders[token]
	h.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "order_not_found", "")
		return
	}

	writeJSON(w, http.StatusOK, createResponse{
		Token:             token,
		TradeOrder:        record.tradeOrder,
		OrderCreationTime: record.creationTime,
	})
}

// PaymentStatus reports which providers have a payment link yet. Each
// call counts as one poll against the readiness schedule.
func (h *Handler) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	h.mu.Lock()
	record, ok := h.orders[token]
	if !ok {
		h.mu.Unlock()
		writeError(w, http.StatusNotFound, "order_not_found", "")
		return
	}
	record.statusPolls++
	polls := record.statusPolls
	h.mu.Unlock()

	res := paymentStatusResponse{Payments: make(map[string]paymentLink, len(h.providers))}
	for _, provider := range h.providers {
		if polls >= h.pollsUntilReady(provider) {
			res.Payments[provider] = paymentLink{
				PaymentURL: fmt.Sprintf("https://pay.orderdesk.test/%s/%s", provider, token),
			}
		}
	}

	writeJSON(w, http.StatusOK, res)
}

// register mints a token and trade-order ID under the lock.
func (h *Handler) register() createResponse {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.seq++
	res := createResponse{
		Token:             uuid.NewString(),
		TradeOrder:        fmt.Sprintf("TO-%04d", h.seq),
		OrderCreationTime: h.now().UTC().Format(time.RFC3339),
	}
	h.orders[res.Token] = &orderRecord{
		tradeOrder:   res.TradeOrder,
		creationTime: res.OrderCreationTime,
	}
	return res
}

func (h *Handler) pollsUntilReady(provider string) int {
	if n, ok := h.readyAfter[provider]; ok && n > 0 {
		return n
	}
	return 1
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{
		Error:   code,
		Message: msg,
	})
}
