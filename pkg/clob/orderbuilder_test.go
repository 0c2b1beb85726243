package clob

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoPolymarket/polymarket-go-sdk/pkg/apierror"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/auth"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/clob/clobtypes"
)

// Token id large enough to exceed uint64.
const testTokenID = "71321045679252212594626385532706912750332728571942532289631379312455583992563"

func metadataMux(t *testing.T, tickSize string, negRisk bool) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /tick-size", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"minimum_tick_size": tickSize})
	})
	mux.HandleFunc("GET /neg-risk", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"neg_risk": negRisk})
	})
	mux.HandleFunc("GET /fee-rate", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"base_fee": "0"})
	})
	return mux
}

func TestOrderBuilderRequiresTokenAndSide(t *testing.T) {
	client := newTestClient(t, http.NewServeMux())
	signer := testSigner(t, auth.PolygonChainID)

	_, err := NewOrderBuilder(client, signer).Price(0.5).Size(100).Side("BUY").BuildSignable()
	require.Error(t, err)
	assert.True(t, apierror.IsValidation(err))

	_, err = NewOrderBuilder(client, signer).TokenID(testTokenID).Price(0.5).Size(100).Side("HOLD").BuildSignable()
	require.Error(t, err)
	assert.True(t, apierror.IsValidation(err))
}

func TestOrderBuilderLimitRequiresPriceAndSize(t *testing.T) {
	client := newTestClient(t, http.NewServeMux())
	signer := testSigner(t, auth.PolygonChainID)

	_, err := NewOrderBuilder(client, signer).TokenID(testTokenID).Side("BUY").Size(100).BuildSignable()
	require.Error(t, err)
	assert.True(t, apierror.IsValidation(err))
}

func TestOrderBuilderMarketRequiresAmountAndPrice(t *testing.T) {
	client := newTestClient(t, http.NewServeMux())
	signer := testSigner(t, auth.PolygonChainID)

	_, err := NewOrderBuilder(client, signer).
		TokenID(testTokenID).
		Side("BUY").
		OrderType(clobtypes.OrderTypeFOK).
		BuildSignable()
	require.Error(t, err)
	assert.True(t, apierror.IsValidation(err))

	_, err = NewOrderBuilder(client, signer).
		TokenID(testTokenID).
		Side("BUY").
		OrderType(clobtypes.OrderTypeFOK).
		Amount(100).
		BuildSignable()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "price")
}

func TestOrderBuilderGTDRequiresExpiration(t *testing.T) {
	client := newTestClient(t, http.NewServeMux())
	signer := testSigner(t, auth.PolygonChainID)

	_, err := NewOrderBuilder(client, signer).
		TokenID(testTokenID).
		Side("BUY").
		Price(0.5).
		Size(100).
		OrderType(clobtypes.OrderTypeGTD).
		BuildSignable()
	require.Error(t, err)
	assert.True(t, apierror.IsValidation(err))
}

func TestOrderBuilderRejectsMisalignedPrice(t *testing.T) {
	client := newTestClient(t, metadataMux(t, "0.01", false))
	signer := testSigner(t, auth.PolygonChainID)

	_, err := NewOrderBuilder(client, signer).
		TokenID(testTokenID).
		Side("BUY").
		Price(0.015).
		Size(100).
		BuildSignable()
	require.Error(t, err)
	assert.True(t, apierror.IsValidation(err))
	assert.Contains(t, err.Error(), "tick size")
}

func TestOrderBuilderFailsWhenFeeRateUnavailable(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /tick-size", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"minimum_tick_size": "0.01"})
	})
	mux.HandleFunc("GET /fee-rate", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
	})

	client := newTestClient(t, mux)
	signer := testSigner(t, auth.PolygonChainID)

	_, err := NewOrderBuilder(client, signer).
		TokenID(testTokenID).
		Side("BUY").
		Price(0.5).
		Size(100).
		BuildSignable()
	require.Error(t, err)
	assert.Equal(t, apierror.KindStatus, apierror.KindOf(err))
	assert.Contains(t, err.Error(), "fee-rate")

	// An explicit override skips the lookup entirely.
	signable, err := NewOrderBuilder(client, signer).
		TokenID(testTokenID).
		Side("BUY").
		Price(0.5).
		Size(100).
		FeeRateBps(100).
		BuildSignable()
	require.NoError(t, err)
	assert.Equal(t, "100", signable.Order.FeeRateBps.String())
}

func TestOrderBuilderBuyAmounts(t *testing.T) {
	client := newTestClient(t, metadataMux(t, "0.01", false))
	signer := testSigner(t, auth.PolygonChainID)

	signable, err := NewOrderBuilder(client, signer).
		TokenID(testTokenID).
		Side("BUY").
		Price(0.5).
		Size(100).
		BuildSignable()
	require.NoError(t, err)

	// BUY: maker gives collateral (price*size), taker gives shares.
	assert.Equal(t, "50000000", signable.Order.MakerAmount.String())
	assert.Equal(t, "100000000", signable.Order.TakerAmount.String())
	assert.Equal(t, "BUY", signable.Order.Side)
	assert.Equal(t, signer.Address(), signable.Order.Maker)
	assert.Equal(t, signer.Address(), signable.Order.Signer)
	assert.Equal(t, clobtypes.OrderTypeGTC, signable.OrderType)
	assert.True(t, signable.Order.Expiration.IsZero())
}

func TestOrderBuilderSellAmounts(t *testing.T) {
	client := newTestClient(t, metadataMux(t, "0.01", false))
	signer := testSigner(t, auth.PolygonChainID)

	signable, err := NewOrderBuilder(client, signer).
		TokenID(testTokenID).
		Side("sell").
		Price(0.25).
		Size(40).
		BuildSignable()
	require.NoError(t, err)

	// SELL: maker gives shares, taker gives collateral (price*size).
	assert.Equal(t, "40000000", signable.Order.MakerAmount.String())
	assert.Equal(t, "10000000", signable.Order.TakerAmount.String())
	assert.Equal(t, "SELL", signable.Order.Side)
}

func TestOrderBuilderMarketBuyDerivesSize(t *testing.T) {
	client := newTestClient(t, metadataMux(t, "0.01", false))
	signer := testSigner(t, auth.PolygonChainID)

	signable, err := NewOrderBuilder(client, signer).
		TokenID(testTokenID).
		Side("BUY").
		OrderType(clobtypes.OrderTypeFAK).
		Amount(50).
		Price(0.5).
		BuildSignable()
	require.NoError(t, err)

	// Spending 50 collateral at 0.5 buys 100 shares.
	assert.Equal(t, "50000000", signable.Order.MakerAmount.String())
	assert.Equal(t, "100000000", signable.Order.TakerAmount.String())
	assert.Equal(t, clobtypes.OrderTypeFAK, signable.OrderType)
}

func TestOrderBuilderUsesSessionFunder(t *testing.T) {
	client := newTestClient(t, metadataMux(t, "0.01", false))
	signer := testSigner(t, auth.PolygonChainID)
	sigType := auth.SignatureProxy

	authed, err := client.Authenticate(context.Background(), signer, AuthenticateOptions{
		Credentials:   testCreds(),
		SignatureType: &sigType,
	})
	require.NoError(t, err)

	signable, err := NewOrderBuilder(authed.Client, signer).
		TokenID(testTokenID).
		Side("BUY").
		Price(0.5).
		Size(10).
		BuildSignable()
	require.NoError(t, err)

	proxy, err := auth.DeriveProxyWallet(signer.Address())
	require.NoError(t, err)
	assert.Equal(t, proxy, signable.Order.Maker)
	assert.Equal(t, signer.Address(), signable.Order.Signer)
	require.NotNil(t, signable.Order.SignatureType)
	assert.Equal(t, int(auth.SignatureProxy), *signable.Order.SignatureType)
}

func TestSignRecoversSignerAddress(t *testing.T) {
	client := newTestClient(t, metadataMux(t, "0.01", false))
	signer := testSigner(t, auth.PolygonChainID)

	authed, err := client.Authenticate(context.Background(), signer, AuthenticateOptions{Credentials: testCreds()})
	require.NoError(t, err)

	signable, err := NewOrderBuilder(authed.Client, signer).
		TokenID(testTokenID).
		Side("BUY").
		Price(0.5).
		Size(100).
		BuildSignable()
	require.NoError(t, err)

	signed, err := authed.Sign(context.Background(), signable)
	require.NoError(t, err)
	assert.Equal(t, testCreds().Key, signed.Owner)
	assert.Equal(t, clobtypes.OrderTypeGTC, signed.OrderType)

	contracts, err := auth.ContractConfig(auth.PolygonChainID, false)
	require.NoError(t, err)
	domain := auth.OrderDomain(auth.PolygonChainID, contracts.Exchange)
	hash, err := auth.OrderTypedDataHash(domain, orderMessage(&signed.Order))
	require.NoError(t, err)

	recovered, err := auth.RecoverOrderSigner(hash, signed.Signature)
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), recovered)
}

func TestSignUsesNegRiskExchange(t *testing.T) {
	client := newTestClient(t, metadataMux(t, "0.01", true))
	signer := testSigner(t, auth.PolygonChainID)

	authed, err := client.Authenticate(context.Background(), signer, AuthenticateOptions{Credentials: testCreds()})
	require.NoError(t, err)

	signable, err := NewOrderBuilder(authed.Client, signer).
		TokenID(testTokenID).
		Side("BUY").
		Price(0.5).
		Size(100).
		BuildSignable()
	require.NoError(t, err)

	signed, err := authed.Sign(context.Background(), signable)
	require.NoError(t, err)

	// The signature verifies against the neg-risk exchange domain, not the
	// standard one.
	negRisk, err := auth.ContractConfig(auth.PolygonChainID, true)
	require.NoError(t, err)
	domain := auth.OrderDomain(auth.PolygonChainID, negRisk.Exchange)
	hash, err := auth.OrderTypedDataHash(domain, orderMessage(&signed.Order))
	require.NoError(t, err)
	recovered, err := auth.RecoverOrderSigner(hash, signed.Signature)
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), recovered)

	standard, err := auth.ContractConfig(auth.PolygonChainID, false)
	require.NoError(t, err)
	wrongDomain := auth.OrderDomain(auth.PolygonChainID, standard.Exchange)
	wrongHash, err := auth.OrderTypedDataHash(wrongDomain, orderMessage(&signed.Order))
	require.NoError(t, err)
	mismatch, err := auth.RecoverOrderSigner(wrongHash, signed.Signature)
	require.NoError(t, err)
	assert.NotEqual(t, signer.Address(), mismatch)
}

func TestPostOrderWireFormatAndHeaders(t *testing.T) {
	var captured []byte
	var headers http.Header
	mux := metadataMux(t, "0.01", false)
	mux.HandleFunc("POST /order", func(w http.ResponseWriter, r *http.Request) {
		var err error
		captured, err = io.ReadAll(r.Body)
		require.NoError(t, err)
		headers = r.Header.Clone()
		writeJSON(t, w, clobtypes.OrderResponse{Success: true, OrderID: "0xabc", Status: "live"})
	})

	client := newTestClient(t, mux)
	signer := testSigner(t, auth.PolygonChainID)
	authed, err := client.Authenticate(context.Background(), signer, AuthenticateOptions{Credentials: testCreds()})
	require.NoError(t, err)

	signable, err := NewOrderBuilder(authed.Client, signer).
		TokenID(testTokenID).
		Side("BUY").
		Price(0.5).
		Size(100).
		BuildSignable()
	require.NoError(t, err)

	resp, err := authed.SignAndPost(context.Background(), signable)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "0xabc", resp.OrderID)

	var wire struct {
		Order map[string]any `json:"order"`
		Owner string         `json:"owner"`
		Type  string         `json:"orderType"`
	}
	require.NoError(t, json.Unmarshal(captured, &wire))
	assert.Equal(t, testCreds().Key, wire.Owner)
	assert.Equal(t, "GTC", wire.Type)
	assert.Equal(t, testTokenID, wire.Order["tokenId"])
	assert.Equal(t, "50000000", wire.Order["makerAmount"])
	assert.Equal(t, "BUY", wire.Order["side"])
	assert.NotEmpty(t, wire.Order["signature"])

	assert.Equal(t, signer.Address().Hex(), headers.Get("POLY_ADDRESS"))
	assert.Equal(t, testCreds().Key, headers.Get("POLY_API_KEY"))
	assert.Equal(t, testCreds().Passphrase, headers.Get("POLY_PASSPHRASE"))
	assert.NotEmpty(t, headers.Get("POLY_SIGNATURE"))
	assert.NotEmpty(t, headers.Get("POLY_TIMESTAMP"))
}
