package clob

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/GoPolymarket/polymarket-go-sdk/pkg/auth"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/clob/clobtypes"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/ratelimit"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/types"
)

// Published CLOB quotas. Every endpoint additionally draws from the shared
// clob_api bucket.
var (
	clobAPIQuota = ratelimit.MustParseQuota("9000/10s")

	specOK      = endpointSpec("clob_ok", "100/10s")
	specTime    = endpointSpec("clob_time", "100/10s")
	specBooks   = endpointSpec("clob_books", "1500/10s")
	specMarkets = endpointSpec("clob_markets", "500/10s")
	specAuth    = endpointSpec("clob_auth", "100/10s")
	specReads   = endpointSpec("clob_reads", "500/10s")
	specTrades  = endpointSpec("clob_trades", "200/10s")
	specCancel  = endpointSpec("clob_cancel", "3000/10s")

	specPostOrder = &ratelimit.Spec{
		Key: "clob_post_order",
		Quota: ratelimit.MultiWindow(
			ratelimit.MustParseQuota("3500/10s"),
			ratelimit.MustParseQuota("36000/10m"),
		),
		APIQuota: &clobAPIQuota,
	}

	specHeartbeat = endpointSpec("clob_heartbeat", "100/10s")
)

func endpointSpec(key, quota string) *ratelimit.Spec {
	return &ratelimit.Spec{
		Key:      key,
		Quota:    ratelimit.Single(ratelimit.MustParseQuota(quota)),
		APIQuota: &clobAPIQuota,
	}
}

func tokenQuery(tokenID string) url.Values {
	return url.Values{"token_id": []string{tokenID}}
}

// Ok checks API health.
func (c *Client) Ok(ctx context.Context) error {
	var body string
	return c.do(ctx, request{method: http.MethodGet, path: "", spec: specOK}, &body)
}

// ServerTime returns the CLOB's clock in unix seconds.
func (c *Client) ServerTime(ctx context.Context) (int64, error) {
	var ts clobtypes.ServerTimeResponse
	if err := c.do(ctx, request{method: http.MethodGet, path: "time", spec: specTime}, &ts); err != nil {
		return 0, err
	}
	return int64(ts), nil
}

// Midpoint returns the book midpoint for a token.
func (c *Client) Midpoint(ctx context.Context, tokenID string) (clobtypes.MidpointResponse, error) {
	var resp clobtypes.MidpointResponse
	err := c.do(ctx, request{method: http.MethodGet, path: "midpoint", query: tokenQuery(tokenID), spec: specBooks}, &resp)
	return resp, err
}

// Midpoints returns book midpoints for a batch of tokens, keyed by token id.
func (c *Client) Midpoints(ctx context.Context, params []clobtypes.BookParams) (map[string]string, error) {
	var resp map[string]string
	err := c.do(ctx, request{method: http.MethodPost, path: "midpoints", body: params, spec: specBooks}, &resp)
	return resp, err
}

// Price returns the best price on one side of a token's book.
func (c *Client) Price(ctx context.Context, tokenID, side string) (clobtypes.PriceResponse, error) {
	query := tokenQuery(tokenID)
	query.Set("side", side)
	var resp clobtypes.PriceResponse
	err := c.do(ctx, request{method: http.MethodGet, path: "price", query: query, spec: specBooks}, &resp)
	return resp, err
}

// Prices returns best prices for a batch of token/side pairs, keyed by token
// id then side.
func (c *Client) Prices(ctx context.Context, params []clobtypes.BookParams) (map[string]map[string]string, error) {
	var resp map[string]map[string]string
	err := c.do(ctx, request{method: http.MethodPost, path: "prices", body: params, spec: specBooks}, &resp)
	return resp, err
}

// PricesHistory returns a price series for a market token.
func (c *Client) PricesHistory(ctx context.Context, req clobtypes.PricesHistoryRequest) (clobtypes.PricesHistoryResponse, error) {
	query := url.Values{"market": []string{req.Market}}
	if req.StartTs > 0 {
		query.Set("startTs", strconv.FormatInt(req.StartTs, 10))
	}
	if req.EndTs > 0 {
		query.Set("endTs", strconv.FormatInt(req.EndTs, 10))
	}
	if req.Interval != "" {
		query.Set("interval", req.Interval)
	}
	if req.Fidelity > 0 {
		query.Set("fidelity", strconv.FormatInt(req.Fidelity, 10))
	}
	var resp clobtypes.PricesHistoryResponse
	err := c.do(ctx, request{method: http.MethodGet, path: "prices-history", query: query, spec: specBooks}, &resp)
	return resp, err
}

// Spread returns the bid/ask spread for a token.
func (c *Client) Spread(ctx context.Context, tokenID string) (clobtypes.SpreadResponse, error) {
	var resp clobtypes.SpreadResponse
	err := c.do(ctx, request{method: http.MethodGet, path: "spread", query: tokenQuery(tokenID), spec: specBooks}, &resp)
	return resp, err
}

// Spreads returns spreads for a batch of tokens, keyed by token id.
func (c *Client) Spreads(ctx context.Context, params []clobtypes.BookParams) (map[string]string, error) {
	var resp map[string]string
	err := c.do(ctx, request{method: http.MethodPost, path: "spreads", body: params, spec: specBooks}, &resp)
	return resp, err
}

// TickSize returns the minimum price increment for a token. Most callers
// want CachedTickSize.
func (c *Client) TickSize(ctx context.Context, tokenID string) (clobtypes.TickSizeResponse, error) {
	var resp clobtypes.TickSizeResponse
	err := c.do(ctx, request{method: http.MethodGet, path: "tick-size", query: tokenQuery(tokenID), spec: specReads}, &resp)
	return resp, err
}

// NegRisk reports whether a token trades on the negative-risk exchange. Most
// callers want CachedNegRisk.
func (c *Client) NegRisk(ctx context.Context, tokenID string) (clobtypes.NegRiskResponse, error) {
	var resp clobtypes.NegRiskResponse
	err := c.do(ctx, request{method: http.MethodGet, path: "neg-risk", query: tokenQuery(tokenID), spec: specReads}, &resp)
	return resp, err
}

// FeeRateBps returns the base fee for a token. Most callers want
// CachedFeeRateBps.
func (c *Client) FeeRateBps(ctx context.Context, tokenID string) (clobtypes.FeeRateResponse, error) {
	var resp clobtypes.FeeRateResponse
	err := c.do(ctx, request{method: http.MethodGet, path: "fee-rate", query: tokenQuery(tokenID), spec: specReads}, &resp)
	return resp, err
}

// OrderBook returns the book snapshot for a token.
func (c *Client) OrderBook(ctx context.Context, req *clobtypes.BookRequest) (*clobtypes.Book, error) {
	var resp clobtypes.Book
	if err := c.do(ctx, request{method: http.MethodGet, path: "book", query: tokenQuery(req.TokenID), spec: specBooks}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// OrderBooks returns book snapshots for a batch of tokens.
func (c *Client) OrderBooks(ctx context.Context, params []clobtypes.BookParams) ([]clobtypes.Book, error) {
	var resp []clobtypes.Book
	err := c.do(ctx, request{method: http.MethodPost, path: "books", body: params, spec: specBooks}, &resp)
	return resp, err
}

// LastTradePrice returns the most recent trade for a token.
func (c *Client) LastTradePrice(ctx context.Context, tokenID string) (clobtypes.LastTradePriceResponse, error) {
	var resp clobtypes.LastTradePriceResponse
	err := c.do(ctx, request{method: http.MethodGet, path: "last-trade-price", query: tokenQuery(tokenID), spec: specBooks}, &resp)
	return resp, err
}

// LastTradesPrices returns the most recent trades for a batch of tokens.
func (c *Client) LastTradesPrices(ctx context.Context, params []clobtypes.BookParams) ([]clobtypes.LastTradePriceResponse, error) {
	var resp []clobtypes.LastTradePriceResponse
	err := c.do(ctx, request{method: http.MethodPost, path: "last-trades-prices", body: params, spec: specBooks}, &resp)
	return resp, err
}

// Market returns one market by condition id.
func (c *Client) Market(ctx context.Context, conditionID string) (clobtypes.Market, error) {
	var resp clobtypes.Market
	err := c.do(ctx, request{method: http.MethodGet, path: "markets/" + conditionID, spec: specMarkets}, &resp)
	return resp, err
}

func (c *Client) marketsPage(ctx context.Context, path, cursor string) (types.Page[clobtypes.Market], error) {
	query := url.Values{}
	if cursor != "" {
		query.Set("next_cursor", cursor)
	}
	var resp types.Page[clobtypes.Market]
	err := c.do(ctx, request{method: http.MethodGet, path: path, query: query, spec: specMarkets}, &resp)
	return resp, err
}

// Markets returns one page of markets starting at cursor.
func (c *Client) Markets(ctx context.Context, cursor string) (types.Page[clobtypes.Market], error) {
	return c.marketsPage(ctx, "markets", cursor)
}

// SamplingMarkets returns one page of markets with active rewards programs.
func (c *Client) SamplingMarkets(ctx context.Context, cursor string) (types.Page[clobtypes.Market], error) {
	return c.marketsPage(ctx, "sampling-markets", cursor)
}

func (c *Client) simplifiedPage(ctx context.Context, path, cursor string) (types.Page[clobtypes.SimplifiedMarket], error) {
	query := url.Values{}
	if cursor != "" {
		query.Set("next_cursor", cursor)
	}
	var resp types.Page[clobtypes.SimplifiedMarket]
	err := c.do(ctx, request{method: http.MethodGet, path: path, query: query, spec: specMarkets}, &resp)
	return resp, err
}

// SimplifiedMarkets returns one page of markets in the reduced shape.
func (c *Client) SimplifiedMarkets(ctx context.Context, cursor string) (types.Page[clobtypes.SimplifiedMarket], error) {
	return c.simplifiedPage(ctx, "simplified-markets", cursor)
}

// SamplingSimplifiedMarkets returns one page of rewarded markets in the
// reduced shape.
func (c *Client) SamplingSimplifiedMarkets(ctx context.Context, cursor string) (types.Page[clobtypes.SimplifiedMarket], error) {
	return c.simplifiedPage(ctx, "sampling-simplified-markets", cursor)
}

// CreateAPIKey mints fresh L2 credentials for the signer.
func (c *Client) CreateAPIKey(ctx context.Context, signer auth.Signer, nonce uint64) (*auth.APIKey, error) {
	var creds auth.APIKey
	if err := c.doL1(ctx, http.MethodPost, "auth/api-key", signer, nonce, specAuth, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// DeriveAPIKey recovers the L2 credentials previously minted for the signer.
func (c *Client) DeriveAPIKey(ctx context.Context, signer auth.Signer, nonce uint64) (*auth.APIKey, error) {
	var creds auth.APIKey
	if err := c.doL1(ctx, http.MethodGet, "auth/derive-api-key", signer, nonce, specAuth, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// APIKeys lists the API key ids minted for the session's address.
func (c *Client) APIKeys(ctx context.Context) (clobtypes.APIKeysResponse, error) {
	var resp clobtypes.APIKeysResponse
	err := c.do(ctx, request{method: http.MethodGet, path: "auth/api-keys", spec: specAuth, authenticated: true}, &resp)
	return resp, err
}

// DeleteAPIKey revokes the session's current API key.
func (c *Client) DeleteAPIKey(ctx context.Context) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "auth/api-key", spec: specAuth, authenticated: true}, nil)
}

// BanStatus reports trading restrictions on the session's account.
func (c *Client) BanStatus(ctx context.Context) (clobtypes.BanStatusResponse, error) {
	var resp clobtypes.BanStatusResponse
	err := c.do(ctx, request{method: http.MethodGet, path: "auth/ban-status/closed-only", spec: specAuth, authenticated: true}, &resp)
	return resp, err
}

// PostOrder submits a signed order.
func (c *Client) PostOrder(ctx context.Context, order *clobtypes.SignedOrder) (clobtypes.OrderResponse, error) {
	var resp clobtypes.OrderResponse
	err := c.do(ctx, request{
		method:        http.MethodPost,
		path:          "order",
		body:          order,
		spec:          specPostOrder,
		authenticated: true,
		attributed:    true,
	}, &resp)
	return resp, err
}

// PostOrders submits a batch of signed orders.
func (c *Client) PostOrders(ctx context.Context, orders []*clobtypes.SignedOrder) (clobtypes.PostOrdersResponse, error) {
	var resp clobtypes.PostOrdersResponse
	err := c.do(ctx, request{
		method:        http.MethodPost,
		path:          "orders",
		body:          orders,
		spec:          specPostOrder,
		authenticated: true,
		attributed:    true,
	}, &resp)
	return resp, err
}

// CancelOrder cancels a single order by id.
func (c *Client) CancelOrder(ctx context.Context, req *clobtypes.CancelOrderRequest) (clobtypes.CancelResponse, error) {
	var resp clobtypes.CancelResponse
	err := c.do(ctx, request{method: http.MethodDelete, path: "order", body: req, spec: specCancel, authenticated: true}, &resp)
	return resp, err
}

// CancelOrders cancels a batch of orders by id.
func (c *Client) CancelOrders(ctx context.Context, orderIDs []string) (clobtypes.CancelResponse, error) {
	var resp clobtypes.CancelResponse
	err := c.do(ctx, request{method: http.MethodDelete, path: "orders", body: orderIDs, spec: specCancel, authenticated: true}, &resp)
	return resp, err
}

// CancelAll cancels every open order owned by the session.
func (c *Client) CancelAll(ctx context.Context) (clobtypes.CancelAllResponse, error) {
	var resp clobtypes.CancelAllResponse
	err := c.do(ctx, request{method: http.MethodDelete, path: "cancel-all", spec: specCancel, authenticated: true}, &resp)
	return resp, err
}

// CancelMarketOrders cancels every open order in one market.
func (c *Client) CancelMarketOrders(ctx context.Context, req *clobtypes.CancelMarketOrdersRequest) (clobtypes.CancelResponse, error) {
	var resp clobtypes.CancelResponse
	err := c.do(ctx, request{method: http.MethodDelete, path: "cancel-market-orders", body: req, spec: specCancel, authenticated: true}, &resp)
	return resp, err
}

// Order returns one of the session's orders by id.
func (c *Client) Order(ctx context.Context, orderID string) (clobtypes.OpenOrder, error) {
	var resp clobtypes.OpenOrder
	err := c.do(ctx, request{method: http.MethodGet, path: "data/order/" + orderID, spec: specReads, authenticated: true}, &resp)
	return resp, err
}

// Orders returns one page of the session's open orders.
func (c *Client) Orders(ctx context.Context, req *clobtypes.OpenOrdersRequest, cursor string) (types.Page[clobtypes.OpenOrder], error) {
	query := url.Values{}
	if cursor != "" {
		query.Set("next_cursor", cursor)
	}
	if req != nil {
		if req.ID != "" {
			query.Set("id", req.ID)
		}
		if req.Market != "" {
			query.Set("market", req.Market)
		}
		if req.AssetID != "" {
			query.Set("asset_id", req.AssetID)
		}
	}
	var resp types.Page[clobtypes.OpenOrder]
	err := c.do(ctx, request{method: http.MethodGet, path: "data/orders", query: query, spec: specReads, authenticated: true}, &resp)
	return resp, err
}

// Trades returns one page of the session's fills.
func (c *Client) Trades(ctx context.Context, req *clobtypes.TradesRequest, cursor string) (types.Page[clobtypes.Trade], error) {
	query := url.Values{}
	if cursor != "" {
		query.Set("next_cursor", cursor)
	}
	if req != nil {
		if req.ID != "" {
			query.Set("id", req.ID)
		}
		if req.Market != "" {
			query.Set("market", req.Market)
		}
		if req.AssetID != "" {
			query.Set("asset_id", req.AssetID)
		}
		if req.MakerAddress != "" {
			query.Set("maker_address", req.MakerAddress)
		}
		if req.Before > 0 {
			query.Set("before", strconv.FormatInt(req.Before, 10))
		}
		if req.After > 0 {
			query.Set("after", strconv.FormatInt(req.After, 10))
		}
	}
	var resp types.Page[clobtypes.Trade]
	err := c.do(ctx, request{method: http.MethodGet, path: "data/trades", query: query, spec: specTrades, authenticated: true}, &resp)
	return resp, err
}

// Notifications returns pending notifications for the session's account.
func (c *Client) Notifications(ctx context.Context) ([]clobtypes.Notification, error) {
	sess, err := c.requireSession()
	if err != nil {
		return nil, err
	}
	query := url.Values{"signature_type": []string{strconv.Itoa(int(sess.sigType))}}
	var resp []clobtypes.Notification
	err = c.do(ctx, request{method: http.MethodGet, path: "notifications", query: query, spec: specReads, authenticated: true}, &resp)
	return resp, err
}

// DropNotifications acknowledges notifications by id.
func (c *Client) DropNotifications(ctx context.Context, ids []string) error {
	query := url.Values{}
	for _, id := range ids {
		query.Add("ids", id)
	}
	return c.do(ctx, request{method: http.MethodDelete, path: "notifications", query: query, spec: specReads, authenticated: true}, nil)
}

// BalanceAllowance returns the session account's balance and exchange
// allowance for one asset.
func (c *Client) BalanceAllowance(ctx context.Context, req *clobtypes.BalanceAllowanceRequest) (clobtypes.BalanceAllowanceResponse, error) {
	query := url.Values{
		"asset_type":     []string{string(req.AssetType)},
		"signature_type": []string{strconv.Itoa(req.SignatureType)},
	}
	if req.TokenID != "" {
		query.Set("token_id", req.TokenID)
	}
	var resp clobtypes.BalanceAllowanceResponse
	err := c.do(ctx, request{method: http.MethodGet, path: "balance-allowance", query: query, spec: specReads, authenticated: true}, &resp)
	return resp, err
}

// UpdateBalanceAllowance refreshes the server's view of the account's
// balance and allowance for one asset.
func (c *Client) UpdateBalanceAllowance(ctx context.Context, req *clobtypes.BalanceAllowanceRequest) error {
	query := url.Values{
		"asset_type":     []string{string(req.AssetType)},
		"signature_type": []string{strconv.Itoa(req.SignatureType)},
	}
	if req.TokenID != "" {
		query.Set("token_id", req.TokenID)
	}
	return c.do(ctx, request{method: http.MethodGet, path: "balance-allowance/update", query: query, spec: specReads, authenticated: true}, nil)
}

// IsOrderScoring reports whether one order currently earns rewards.
func (c *Client) IsOrderScoring(ctx context.Context, orderID string) (clobtypes.OrderScoringResponse, error) {
	query := url.Values{"order_id": []string{orderID}}
	var resp clobtypes.OrderScoringResponse
	err := c.do(ctx, request{method: http.MethodGet, path: "order-scoring", query: query, spec: specReads, authenticated: true}, &resp)
	return resp, err
}

// AreOrdersScoring reports reward status for a batch of orders.
func (c *Client) AreOrdersScoring(ctx context.Context, req *clobtypes.OrdersScoringRequest) (clobtypes.OrdersScoringResponse, error) {
	var resp clobtypes.OrdersScoringResponse
	err := c.do(ctx, request{method: http.MethodPost, path: "orders-scoring", body: req, spec: specReads, authenticated: true}, &resp)
	return resp, err
}

// UserEarnings returns one page of per-market reward accruals for a day.
func (c *Client) UserEarnings(ctx context.Context, date string, cursor string) (types.Page[clobtypes.Earning], error) {
	query := url.Values{"date": []string{date}}
	if cursor != "" {
		query.Set("next_cursor", cursor)
	}
	var resp types.Page[clobtypes.Earning]
	err := c.do(ctx, request{method: http.MethodGet, path: "rewards/user", query: query, spec: specReads, authenticated: true}, &resp)
	return resp, err
}

// TotalUserEarnings returns the account's aggregate rewards for a day.
func (c *Client) TotalUserEarnings(ctx context.Context, date string) ([]clobtypes.TotalEarning, error) {
	query := url.Values{"date": []string{date}}
	var resp []clobtypes.TotalEarning
	err := c.do(ctx, request{method: http.MethodGet, path: "rewards/user/total", query: query, spec: specReads, authenticated: true}, &resp)
	return resp, err
}

// UserRewardPercentages returns the account's share of each market's daily
// rewards.
func (c *Client) UserRewardPercentages(ctx context.Context, date string) (clobtypes.RewardsPercentages, error) {
	query := url.Values{"date": []string{date}}
	var resp clobtypes.RewardsPercentages
	err := c.do(ctx, request{method: http.MethodGet, path: "rewards/user/percentages", query: query, spec: specReads, authenticated: true}, &resp)
	return resp, err
}

// CurrentRewardMarkets returns one page of markets with active rewards.
func (c *Client) CurrentRewardMarkets(ctx context.Context, cursor string) (types.Page[clobtypes.MarketReward], error) {
	query := url.Values{}
	if cursor != "" {
		query.Set("next_cursor", cursor)
	}
	var resp types.Page[clobtypes.MarketReward]
	err := c.do(ctx, request{method: http.MethodGet, path: "rewards/markets/current", query: query, spec: specReads, authenticated: true}, &resp)
	return resp, err
}

// RewardMarket returns the rewards program for one market.
func (c *Client) RewardMarket(ctx context.Context, conditionID string) (types.Page[clobtypes.MarketReward], error) {
	var resp types.Page[clobtypes.MarketReward]
	err := c.do(ctx, request{method: http.MethodGet, path: "rewards/markets/" + conditionID, spec: specReads, authenticated: true}, &resp)
	return resp, err
}

// CreateBuilderAPIKey mints builder credentials for the session's address.
func (c *Client) CreateBuilderAPIKey(ctx context.Context) (clobtypes.BuilderAPIKeyResponse, error) {
	var resp clobtypes.BuilderAPIKeyResponse
	err := c.do(ctx, request{method: http.MethodPost, path: "auth/builder-api-key", spec: specAuth, authenticated: true}, &resp)
	return resp, err
}

// BuilderAPIKeys lists the builder credentials minted for the session.
func (c *Client) BuilderAPIKeys(ctx context.Context) (clobtypes.APIKeysResponse, error) {
	var resp clobtypes.APIKeysResponse
	err := c.do(ctx, request{method: http.MethodGet, path: "auth/builder-api-key", spec: specAuth, authenticated: true}, &resp)
	return resp, err
}

// DeleteBuilderAPIKey revokes the session's builder credentials.
func (c *Client) DeleteBuilderAPIKey(ctx context.Context) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "auth/builder-api-key", spec: specAuth, authenticated: true}, nil)
}

// BuilderTrades returns one page of fills attributed to the builder.
func (c *Client) BuilderTrades(ctx context.Context, cursor string) (types.Page[clobtypes.BuilderTrade], error) {
	query := url.Values{}
	if cursor != "" {
		query.Set("next_cursor", cursor)
	}
	var resp types.Page[clobtypes.BuilderTrade]
	err := c.do(ctx, request{method: http.MethodGet, path: "builder/trades", query: query, spec: specTrades, authenticated: true}, &resp)
	return resp, err
}

type heartbeatRequest struct {
	HeartbeatID *uuid.UUID `json:"heartbeat_id"`
}

// postHeartbeat sends one keep-alive, returning the id the next one must
// carry.
func (c *Client) postHeartbeat(ctx context.Context, id *uuid.UUID) (clobtypes.HeartbeatResponse, error) {
	var resp clobtypes.HeartbeatResponse
	err := c.do(ctx, request{
		method:        http.MethodPost,
		path:          "v1/heartbeats",
		body:          heartbeatRequest{HeartbeatID: id},
		spec:          specHeartbeat,
		authenticated: true,
	}, &resp)
	return resp, err
}
