package orderdesk

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nzmint/bullion-checkout/internal/checkout"
	"github.com/nzmint/bullion-checkout/internal/session"
)

func orderBody(t *testing.T) *bytes.Reader {
	t.Helper()
	raw, err := json.Marshal(map[string]string{
		"first_name_order":  "Aroha",
		"last_name_order":   "Ngata",
		"email_order":       "aroha@example.co.nz",
		"product_name_full": "1oz Gold Bar",
		"quantity":          "1",
		"total_price":       "3200.00",
	})
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(NewRouter(NewHandler(nil, nil)))
	defer srv.Close()

	res, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
}

func TestCreateOrder_MintsTokenAndTradeOrder(t *testing.T) {
	srv := httptest.NewServer(NewRouter(NewHandler(nil, nil)))
	defer srv.Close()

	res, err := http.Post(srv.URL+"/create", "application/json", orderBody(t))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusCreated, res.StatusCode)

	var created createResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&created))
	assert.NotEmpty(t, created.Token)
	assert.Equal(t, "TO-0001", created.TradeOrder)
	assert.NotEmpty(t, created.OrderCreationTime)
}

func TestCreateOrder_RejectsIncompletePayload(t *testing.T) {
	srv := httptest.NewServer(NewRouter(NewHandler(nil, nil)))
	defer srv.Close()

	res, err := http.Post(srv.URL+"/create", "application/json",
		bytes.NewReader([]byte(`{"first_name_order":"Aroha"}`)))
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestGetOrder_RoundTrip(t *testing.T) {
	srv := httptest.NewServer(NewRouter(NewHandler(nil, nil)))
	defer srv.Close()

	res, err := http.Post(srv.URL+"/create", "application/json", orderBody(t))
	require.NoError(t, err)
	var created createResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&created))
	res.Body.Close()

	res, err = http.Get(srv.URL + "/api/order/" + created.Token)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var got createResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
	assert.Equal(t, created, got)

	res, err = http.Get(srv.URL + "/api/order/nope")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestPaymentStatus_UnknownToken(t *testing.T) {
	srv := httptest.NewServer(NewRouter(NewHandler(nil, nil)))
	defer srv.Close()

	res, err := http.Get(srv.URL + "/api/payment-status/nope")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestPaymentStatus_ReadinessSchedule(t *testing.T) {
	handler := NewHandler([]string{"POLi", "BLINK"}, map[string]int{"BLINK": 3})
	srv := httptest.NewServer(NewRouter(handler))
	defer srv.Close()

	res, err := http.Post(srv.URL+"/create", "application/json", orderBody(t))
	require.NoError(t, err)
	var created createResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&created))
	res.Body.Close()

	poll := func() paymentStatusResponse {
		res, err := http.Get(srv.URL + "/api/payment-status/" + created.Token)
		require.NoError(t, err)
		defer res.Body.Close()
		require.Equal(t, http.StatusOK, res.StatusCode)

		var status paymentStatusResponse
		require.NoError(t, json.NewDecoder(res.Body).Decode(&status))
		return status
	}

	first := poll()
	assert.Contains(t, first.Payments, "POLi")
	assert.NotContains(t, first.Payments, "BLINK", "BLINK is not ready until the third poll")

	poll()
	third := poll()
	assert.Contains(t, third.Payments, "BLINK")
}

// TestPipelineEndToEnd drives the real submitter and poller against the
// stub: submit an order, then poll until the slow provider's link shows
// up via the extra-poll rule.
func TestPipelineEndToEnd(t *testing.T) {
	handler := NewHandler([]string{"POLi", "BLINK"}, map[string]int{"BLINK": 2})
	srv := httptest.NewServer(NewRouter(handler))
	defer srv.Close()

	ctx := context.Background()
	store := session.NewMemory()

	sub := checkout.NewSubmitter(srv.URL, srv.Client(), store)
	receipt, err := sub.SubmitOrder(ctx, checkout.Form{
		FirstName:   "Aroha",
		LastName:    "Ngata",
		Email:       "aroha@example.co.nz",
		Phone:       "+64 21 555 0199",
		ProductName: "1oz Gold Bar",
		Quantity:    "1",
		TotalPrice:  "3200.00",
	})
	require.NoError(t, err)
	require.NotEmpty(t, receipt.Token)

	// The complete-order stage reads the token back out of the store.
	token, ok, err := store.Get(ctx, session.KeyToken)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, receipt.Token, token)

	poller := checkout.NewPoller(srv.URL, srv.Client(),
		checkout.WithProviders([]checkout.Provider{checkout.ProviderPOLi, checkout.ProviderBlink}),
		checkout.WithTiming(0, 0),
	)
	result := poller.Poll(ctx, token)

	assert.Equal(t, checkout.OutcomeAllReady, result.Outcome)
	assert.Equal(t, 2, result.Attempts)
	assert.Contains(t, result.Methods[checkout.ProviderBlink].PaymentURL, receipt.Token)
}
