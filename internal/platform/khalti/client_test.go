package khalti

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClient_Initiate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v2/epayment/initiate/", r.URL.Path)
		require.Equal(t, "Key secret", r.Header.Get("Authorization"))

		var body InitiateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, int64(50000), body.Amount)
		require.Equal(t, "TXN1", body.PurchaseOrderID)

		_ = json.NewEncoder(w).Encode(InitiateResponse{Pidx: "pidx-1", PaymentURL: "https://pay.khalti.com/?pidx=pidx-1"})
	}))
	defer srv.Close()

	c := New(srv.URL+"/api/v2/", "secret", srv.Client())
	res, err := c.Initiate(context.Background(), &InitiateRequest{Amount: 50000, PurchaseOrderID: "TXN1"})
	require.NoError(t, err)
	require.Equal(t, "pidx-1", res.Pidx)
}

func TestClient_Lookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/epayment/lookup/", r.URL.Path)
		_, _ = w.Write([]byte(`{"pidx":"pidx-1","total_amount":50000,"status":"Completed","transaction_id":"K1","fee":0,"refunded":false}`))
	}))
	defer srv.Close()

	res, err := New(srv.URL, "secret", nil).Lookup(context.Background(), "pidx-1")
	require.NoError(t, err)
	require.True(t, res.Completed())
	require.Equal(t, int64(50000), res.TotalAmount)
}

func TestClient_Non2xxIsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Invalid token."}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "bad", nil).Lookup(context.Background(), "pidx-1")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestClient_MissingSecret(t *testing.T) {
	_, err := New("http://127.0.0.1:0", "", nil).Initiate(context.Background(), &InitiateRequest{})
	require.ErrorIs(t, err, ErrNotConfigured)
}
