package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, NewClient(srv.URL)
}

func TestGetCartAttachesBearerToken(t *testing.T) {
	var gotAuth string
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/orders/cart/", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]any{
			"id":           "c1",
			"items":        []map[string]any{{"id": "i1", "quantity": 2, "unit_price": "10.00", "total_price": "20.00"}},
			"subtotal":     "20.00",
			"delivery_fee": "15.00",
			"total":        "35.00",
		})
	})

	ctx := WithToken(context.Background(), "tok-123")
	cart, err := client.GetCart(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.False(t, cart.Empty())
	assert.Equal(t, "35", cart.Total.String())
}

func TestCheckoutDecodesOrderAndIdempotencyKey(t *testing.T) {
	var gotKey string
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/orders/checkout/", r.URL.Path)
		gotKey = r.Header.Get("Idempotency-Key")

		var req CheckoutRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Accra", req.DeliveryCity)
		assert.Equal(t, "DEPOSIT", req.PaymentType)

		writeJSON(t, w, http.StatusOK, map[string]any{
			"order": map[string]any{
				"order_number":   "LI-1001",
				"state":          "PENDING_PAYMENT",
				"total":          "1000.00",
				"deposit_amount": "300.00",
			},
		})
	})

	order, err := client.Checkout(context.Background(), CheckoutRequest{
		DeliveryAddress: "12 High St",
		DeliveryCity:    "Accra",
		DeliveryRegion:  "Greater Accra",
		PaymentType:     "DEPOSIT",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, gotKey, "idempotency key must be sent")
	assert.Equal(t, "LI-1001", order.OrderNumber)
	assert.True(t, order.AwaitingPayment())
}

func TestCheckoutReplaysIdempotencyKeyFromContext(t *testing.T) {
	var keys []string
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get("Idempotency-Key"))
		writeJSON(t, w, http.StatusOK, map[string]any{
			"order": map[string]any{"order_number": "LI-1001", "state": "PENDING_PAYMENT"},
		})
	})

	ctx := WithIdempotencyKey(context.Background(), "attempt-abc")
	_, err := client.Checkout(ctx, CheckoutRequest{})
	require.NoError(t, err)
	_, err = client.Checkout(ctx, CheckoutRequest{})
	require.NoError(t, err)

	require.Len(t, keys, 2)
	assert.Equal(t, "attempt-abc", keys[0])
	assert.Equal(t, keys[0], keys[1], "retries of one attempt must replay the same key")

	// without a pinned key every call stands alone
	_, err = client.Checkout(context.Background(), CheckoutRequest{})
	require.NoError(t, err)
	_, err = client.Checkout(context.Background(), CheckoutRequest{})
	require.NoError(t, err)
	require.Len(t, keys, 4)
	assert.NotEmpty(t, keys[2])
	assert.NotEqual(t, keys[2], keys[3])
}

func TestBackendErrorMessageSurfacesVerbatim(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusBadRequest, map[string]string{"error": "Cart is empty"})
	})

	_, err := client.Checkout(context.Background(), CheckoutRequest{})
	require.Error(t, err)
	assert.Equal(t, "Cart is empty", UserMessage(err, "Checkout failed. Please try again."))
}

func TestUserMessageFallsBackWhenBodyIsOpaque(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("<html>nope</html>"))
	})

	_, err := client.GetCart(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Checkout failed. Please try again.", UserMessage(err, "Checkout failed. Please try again."))
}

func TestGetOrderNotFound(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusNotFound, map[string]string{"error": "Order not found"})
	})

	_, err := client.GetOrder(context.Background(), "LI-9999")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestInitiatePaymentRequiresReference(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payments/initiate/", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "LI-1001", body["order_number"])
		assert.Equal(t, "FULL", body["payment_type"])
		writeJSON(t, w, http.StatusOK, map[string]string{}) // no reference
	})

	_, err := client.InitiatePayment(context.Background(), "LI-1001", "FULL", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no reference")
}

func TestVerifyPayment(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payments/verify/", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "LI-1001-abc123", body["reference"])
		writeJSON(t, w, http.StatusOK, map[string]any{
			"success":      true,
			"message":      "Payment successful",
			"order_number": "LI-1001",
		})
	})

	res, err := client.VerifyPayment(context.Background(), "LI-1001-abc123")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "LI-1001", res.OrderNumber)
}

func TestListProductsPagination(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "shoes", r.URL.Query().Get("search"))
		writeJSON(t, w, http.StatusOK, map[string]any{
			"count":   1,
			"results": []map[string]any{{"slug": "runner-x", "name": "Runner X", "price": "450.00"}},
		})
	})

	page, err := client.ListProducts(context.Background(), map[string]string{"search": "shoes"})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "runner-x", page.Results[0].Slug)
}
