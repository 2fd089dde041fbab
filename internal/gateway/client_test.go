package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitPayment_CardReturnsRedirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/charges", r.URL.Path)
		require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))

		var body SubmitRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "CARD", body.Method)
		assert.Equal(t, int64(2500), body.AmountCents)

		_ = json.NewEncoder(w).Encode(SubmitResponse{
			RedirectURL: "https://pay.example/checkout/" + body.Reference,
		})
	}))
	defer srv.Close()

	g := NewClient(srv.URL, "tok-123")
	resp, err := g.SubmitPayment(context.Background(), SubmitRequest{
		Reference:   "ref-1",
		AmountCents: 2500,
		Currency:    "USD",
		Method:      "CARD",
		ReturnURL:   "https://api.example/v1/payments/ref-1/return",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/checkout/ref-1", resp.RedirectURL)
}

func TestSubmitPayment_MobileMoneyHasNoRedirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	g := NewClient(srv.URL, "tok-123")
	resp, err := g.SubmitPayment(context.Background(), SubmitRequest{
		Reference: "ref-2", AmountCents: 5000, Currency: "USD",
		Method: "MOBILE_MONEY", Phone: "243810000001",
	})
	require.NoError(t, err)
	assert.Empty(t, resp.RedirectURL)
}

func TestSubmitPayment_ProviderErrorIsGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"insufficient funds"}`, http.StatusPaymentRequired)
	}))
	defer srv.Close()

	g := NewClient(srv.URL, "tok-123")
	_, err := g.SubmitPayment(context.Background(), SubmitRequest{Reference: "ref-3", Method: "CARD"})
	assert.ErrorIs(t, err, ErrGateway)
}

func TestSubmitPayment_TransportFailureIsGatewayError(t *testing.T) {
	g := NewClient("http://127.0.0.1:1", "tok-123") // nothing listens here
	_, err := g.SubmitPayment(context.Background(), SubmitRequest{Reference: "ref-4", Method: "CARD"})
	assert.ErrorIs(t, err, ErrGateway)
}
