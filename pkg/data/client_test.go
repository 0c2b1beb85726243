package data

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoPolymarket/polymarket-go-sdk/pkg/apierror"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL)
}

func TestPositionsQueryParams(t *testing.T) {
	var captured string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /positions", func(w http.ResponseWriter, r *http.Request) {
		captured = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode([]Position{{
			ProxyWallet: "0xabc",
			ConditionID: "0xcond",
			Outcome:     "Yes",
		}}))
	})

	client := newTestClient(t, mux)
	redeemable := true
	positions, err := client.Positions(context.Background(), &PositionsRequest{
		User:       "0xabc",
		Market:     "0xcond",
		Redeemable: &redeemable,
		Limit:      10,
	})
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, "Yes", positions[0].Outcome)

	assert.Contains(t, captured, "user=0xabc")
	assert.Contains(t, captured, "market=0xcond")
	assert.Contains(t, captured, "redeemable=true")
	assert.Contains(t, captured, "limit=10")
}

func TestTradesDecoding(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /trades", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"proxyWallet":"0xabc","side":"BUY","size":"10.5","price":"0.42","timestamp":1700000000}]`))
	})

	client := newTestClient(t, mux)
	trades, err := client.Trades(context.Background(), &TradesRequest{User: "0xabc"})
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "10.5", trades[0].Size.String())
	assert.Equal(t, "0.42", trades[0].Price.String())
	assert.Equal(t, int64(1700000000), trades[0].Timestamp)
}

func TestStatusErrorPropagation(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /oi", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	})

	client := newTestClient(t, mux)
	_, err := client.OpenInterest(context.Background())
	require.Error(t, err)
	require.True(t, apierror.IsStatus(err))

	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "oi", apiErr.Path)
}

func TestHealth(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})

	client := newTestClient(t, mux)
	assert.NoError(t, client.Health(context.Background()))
}
