package clob

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoPolymarket/polymarket-go-sdk/pkg/apierror"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/auth"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/clob/clobtypes"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/types"
)

const testPrivateKey = "0x0000000000000000000000000000000000000000000000000000000000000001"

func testCreds() *auth.APIKey {
	return &auth.APIKey{
		Key:        "test-key",
		Secret:     base64.URLEncoding.EncodeToString([]byte("test-secret")),
		Passphrase: "test-pass",
	}
}

func testSigner(t *testing.T, chainID int64) *auth.PrivateKeySigner {
	t.Helper()
	signer, err := auth.NewPrivateKeySigner(testPrivateKey, chainID)
	require.NoError(t, err)
	return signer
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL, WithConfig(Config{UseServerTime: false, HeartbeatInterval: 0}))
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestAuthenticateRejectsUnsupportedChain(t *testing.T) {
	client := newTestClient(t, http.NewServeMux())
	signer := testSigner(t, 1)

	_, err := client.Authenticate(context.Background(), signer, AuthenticateOptions{Credentials: testCreds()})
	require.Error(t, err)
	assert.True(t, apierror.IsValidation(err))
}

func TestAuthenticateRejectsCredentialsWithNonce(t *testing.T) {
	client := newTestClient(t, http.NewServeMux())
	signer := testSigner(t, auth.PolygonChainID)
	nonce := uint64(1)

	_, err := client.Authenticate(context.Background(), signer, AuthenticateOptions{
		Credentials: testCreds(),
		Nonce:       &nonce,
	})
	require.Error(t, err)
	assert.True(t, apierror.IsValidation(err))
}

func TestAuthenticateRejectsFunderForEOA(t *testing.T) {
	client := newTestClient(t, http.NewServeMux())
	signer := testSigner(t, auth.PolygonChainID)
	other := testSigner(t, auth.PolygonChainID).Address()
	other[0] ^= 0xff

	_, err := client.Authenticate(context.Background(), signer, AuthenticateOptions{
		Credentials: testCreds(),
		Funder:      &other,
	})
	require.Error(t, err)
	assert.True(t, apierror.IsValidation(err))
}

func TestAuthenticateRequiresExclusiveOwnership(t *testing.T) {
	client := newTestClient(t, http.NewServeMux())
	clone := client.Clone()
	signer := testSigner(t, auth.PolygonChainID)

	_, err := client.Authenticate(context.Background(), signer, AuthenticateOptions{Credentials: testCreds()})
	require.Error(t, err)
	assert.True(t, apierror.IsSynchronization(err))

	// Dropping the clone restores exclusivity.
	clone.Close()
	authed, err := client.Authenticate(context.Background(), signer, AuthenticateOptions{Credentials: testCreds()})
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), authed.Address())
}

func TestAuthenticateDerivesProxyFunder(t *testing.T) {
	client := newTestClient(t, http.NewServeMux())
	signer := testSigner(t, auth.PolygonChainID)
	sigType := auth.SignatureProxy

	authed, err := client.Authenticate(context.Background(), signer, AuthenticateOptions{
		Credentials:   testCreds(),
		SignatureType: &sigType,
	})
	require.NoError(t, err)

	expected, err := auth.DeriveProxyWallet(signer.Address())
	require.NoError(t, err)
	assert.Equal(t, expected, authed.Funder())
}

func TestAuthenticateProxyOnAmoyRequiresFunder(t *testing.T) {
	client := newTestClient(t, http.NewServeMux())
	signer := testSigner(t, auth.AmoyChainID)
	sigType := auth.SignatureProxy

	_, err := client.Authenticate(context.Background(), signer, AuthenticateOptions{
		Credentials:   testCreds(),
		SignatureType: &sigType,
	})
	require.Error(t, err)
	assert.True(t, apierror.IsValidation(err))
	assert.Contains(t, err.Error(), "funder")
}

func TestCreateOrDeriveFallsBackToDerive(t *testing.T) {
	var createCalls, deriveCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/api-key", func(w http.ResponseWriter, r *http.Request) {
		createCalls.Add(1)
		http.Error(w, `{"error":"address already has a key"}`, http.StatusBadRequest)
	})
	mux.HandleFunc("GET /auth/derive-api-key", func(w http.ResponseWriter, r *http.Request) {
		deriveCalls.Add(1)
		assert.NotEmpty(t, r.Header.Get("POLY_SIGNATURE"))
		writeJSON(t, w, testCreds())
	})

	client := newTestClient(t, mux)
	signer := testSigner(t, auth.PolygonChainID)

	authed, err := client.Authenticate(context.Background(), signer, AuthenticateOptions{})
	require.NoError(t, err)
	assert.Equal(t, int32(1), createCalls.Load())
	assert.Equal(t, int32(1), deriveCalls.Load())
	assert.Equal(t, signer.Address(), authed.Address())
}

func TestCreateOrDeriveSurfacesDeriveError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/api-key", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "create rejected", http.StatusBadRequest)
	})
	mux.HandleFunc("GET /auth/derive-api-key", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no key for address", http.StatusNotFound)
	})

	client := newTestClient(t, mux)
	signer := testSigner(t, auth.PolygonChainID)

	_, err := client.Authenticate(context.Background(), signer, AuthenticateOptions{})
	require.Error(t, err)
	require.True(t, apierror.IsStatus(err))
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "auth/derive-api-key", apiErr.Path)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestDeauthenticateReturnsUsableClient(t *testing.T) {
	client := newTestClient(t, http.NewServeMux())
	signer := testSigner(t, auth.PolygonChainID)

	authed, err := client.Authenticate(context.Background(), signer, AuthenticateOptions{Credentials: testCreds()})
	require.NoError(t, err)

	fresh, err := authed.Deauthenticate()
	require.NoError(t, err)

	// The fresh handle is unauthenticated and exclusively owned.
	_, err = fresh.APIKeys(context.Background())
	require.Error(t, err)
	assert.True(t, apierror.IsValidation(err))

	_, err = fresh.Authenticate(context.Background(), signer, AuthenticateOptions{Credentials: testCreds()})
	assert.NoError(t, err)
}

func TestDeauthenticateWithCloneFails(t *testing.T) {
	client := newTestClient(t, http.NewServeMux())
	signer := testSigner(t, auth.PolygonChainID)

	authed, err := client.Authenticate(context.Background(), signer, AuthenticateOptions{Credentials: testCreds()})
	require.NoError(t, err)

	clone := authed.Clone()
	_, err = authed.Deauthenticate()
	require.Error(t, err)
	assert.True(t, apierror.IsSynchronization(err))
	clone.Close()
}

func TestPromoteToBuilder(t *testing.T) {
	client := newTestClient(t, http.NewServeMux())
	signer := testSigner(t, auth.PolygonChainID)

	authed, err := client.Authenticate(context.Background(), signer, AuthenticateOptions{Credentials: testCreds()})
	require.NoError(t, err)
	assert.False(t, authed.Delegated())

	_, err = authed.PromoteToBuilder(BuilderConfig{Key: "only-key"})
	require.Error(t, err)
	assert.True(t, apierror.IsValidation(err))

	promoted, err := authed.PromoteToBuilder(BuilderConfig{
		Key:        "builder-key",
		Secret:     base64.URLEncoding.EncodeToString([]byte("builder-secret")),
		Passphrase: "builder-pass",
	})
	require.NoError(t, err)
	assert.True(t, promoted.Delegated())
	assert.Equal(t, signer.Address(), promoted.Address())
}

func TestHeartbeatLoopAndDoubleStart(t *testing.T) {
	var beats atomic.Int32
	heartbeatID := "0e4bbbbe-e6a1-4c65-9d2e-d3b7569d1b44"
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/heartbeats", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			HeartbeatID *string `json:"heartbeat_id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if beats.Add(1) > 1 {
			// Every beat after the first must echo the server's id.
			require.NotNil(t, req.HeartbeatID)
			assert.Equal(t, heartbeatID, *req.HeartbeatID)
		} else {
			assert.Nil(t, req.HeartbeatID)
		}
		fmt.Fprintf(w, `{"heartbeat_id":%q}`, heartbeatID)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	client := New(server.URL, WithConfig(Config{HeartbeatInterval: 20 * time.Millisecond}))
	signer := testSigner(t, auth.PolygonChainID)

	authed, err := client.Authenticate(context.Background(), signer, AuthenticateOptions{Credentials: testCreds()})
	require.NoError(t, err)

	err = authed.StartHeartbeats()
	require.Error(t, err)
	assert.True(t, apierror.IsValidation(err))

	require.Eventually(t, func() bool { return beats.Load() >= 3 }, 2*time.Second, 10*time.Millisecond)

	_, err = authed.Deauthenticate()
	require.NoError(t, err)
}

func TestCloseStopsHeartbeats(t *testing.T) {
	var beats atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/heartbeats", func(w http.ResponseWriter, r *http.Request) {
		beats.Add(1)
		fmt.Fprint(w, `{"heartbeat_id":"0e4bbbbe-e6a1-4c65-9d2e-d3b7569d1b44"}`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	client := New(server.URL, WithConfig(Config{HeartbeatInterval: 10 * time.Millisecond}))
	signer := testSigner(t, auth.PolygonChainID)

	authed, err := client.Authenticate(context.Background(), signer, AuthenticateOptions{Credentials: testCreds()})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return beats.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)

	authed.Close()

	// Close awaits the loop's exit, so the count is final here.
	settled := beats.Load()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, settled, beats.Load())
}

func TestFailedDeauthenticateKeepsHeartbeats(t *testing.T) {
	var beats atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/heartbeats", func(w http.ResponseWriter, r *http.Request) {
		beats.Add(1)
		fmt.Fprint(w, `{"heartbeat_id":"0e4bbbbe-e6a1-4c65-9d2e-d3b7569d1b44"}`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	client := New(server.URL, WithConfig(Config{HeartbeatInterval: 10 * time.Millisecond}))
	signer := testSigner(t, auth.PolygonChainID)

	authed, err := client.Authenticate(context.Background(), signer, AuthenticateOptions{Credentials: testCreds()})
	require.NoError(t, err)

	clone := authed.Clone()
	_, err = authed.Deauthenticate()
	require.Error(t, err)
	assert.True(t, apierror.IsSynchronization(err))

	// The surviving session keeps its keep-alive.
	before := beats.Load()
	require.Eventually(t, func() bool { return beats.Load() > before }, 2*time.Second, 5*time.Millisecond)

	clone.Close()
	_, err = authed.Deauthenticate()
	require.NoError(t, err)
}

func TestCachedTickSizeSingleFlight(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /tick-size", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		time.Sleep(50 * time.Millisecond)
		writeJSON(t, w, map[string]any{"minimum_tick_size": "0.01"})
	})

	client := newTestClient(t, mux)

	var wg sync.WaitGroup
	results := make([]string, 4)
	for i := range results {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			tick, err := client.CachedTickSize(context.Background(), "token-1")
			require.NoError(t, err)
			results[n] = tick.String()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), hits.Load())
	for _, r := range results {
		assert.Equal(t, "0.01", r)
	}
}

func TestInvalidateCachesForcesRefetch(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /neg-risk", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(t, w, map[string]any{"neg_risk": true})
	})

	client := newTestClient(t, mux)
	ctx := context.Background()

	negRisk, err := client.CachedNegRisk(ctx, "token-1")
	require.NoError(t, err)
	assert.True(t, negRisk)

	_, err = client.CachedNegRisk(ctx, "token-1")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	require.NoError(t, client.InvalidateCaches(ctx))

	_, err = client.CachedNegRisk(ctx, "token-1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestStatusErrorCarriesDiagnostics(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /book", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no orderbook exists", http.StatusNotFound)
	})

	client := newTestClient(t, mux)
	_, err := client.OrderBook(context.Background(), &clobtypes.BookRequest{TokenID: "missing"})
	require.Error(t, err)

	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierror.KindStatus, apiErr.Kind)
	assert.Equal(t, http.MethodGet, apiErr.Method)
	assert.Equal(t, "book", apiErr.Path)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "no orderbook exists")
}

func TestStreamPages(t *testing.T) {
	pages := map[string]types.Page[int]{
		"":   {Data: []int{1, 2}, NextCursor: "c1"},
		"c1": {Data: []int{3}, NextCursor: types.TerminalCursor},
	}
	var fetched []string

	var got []int
	for item, err := range StreamPages(context.Background(), func(_ context.Context, cursor string) (types.Page[int], error) {
		fetched = append(fetched, cursor)
		return pages[cursor], nil
	}) {
		require.NoError(t, err)
		got = append(got, item)
	}

	assert.Equal(t, []int{1, 2, 3}, got)
	// The terminal cursor is never requested.
	assert.Equal(t, []string{"", "c1"}, fetched)
}

func TestStreamPagesStopsEarly(t *testing.T) {
	calls := 0
	seq := StreamPages(context.Background(), func(_ context.Context, cursor string) (types.Page[int], error) {
		calls++
		return types.Page[int]{Data: []int{1, 2, 3}, NextCursor: "next"}, nil
	})

	for range seq {
		break
	}
	assert.Equal(t, 1, calls)
}
