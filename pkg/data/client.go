// Package data implements the client for the Polymarket Data API: read-only
// portfolio, trade-feed and leaderboard queries.
package data

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/GoPolymarket/polymarket-go-sdk/pkg/apierror"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/metrics"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/ratelimit"
)

// DefaultHost is the production Data API endpoint.
const DefaultHost = "https://data-api.polymarket.com"

// Published Data API quotas. Every endpoint additionally draws from the
// shared data_api bucket.
var (
	dataAPIQuota = ratelimit.MustParseQuota("1000/10s")

	specOK              = endpointSpec("data_ok", "100/10s")
	specPositions       = endpointSpec("data_positions", "150/10s")
	specTrades          = endpointSpec("data_trades", "200/10s")
	specClosedPositions = endpointSpec("data_closed_positions", "150/10s")
	specReads           = endpointSpec("data_reads", "300/10s")
)

func endpointSpec(key, quota string) *ratelimit.Spec {
	return &ratelimit.Spec{
		Key:      key,
		Quota:    ratelimit.Single(ratelimit.MustParseQuota(quota)),
		APIQuota: &dataAPIQuota,
	}
}

// Client is a Data API client. All operations are unauthenticated reads.
type Client struct {
	host       string
	httpClient *http.Client
	limiters   *ratelimit.Limiters
}

// Option configures a Client at construction.
type Option func(*Client)

// WithHTTPClient replaces the default transport.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLimiters shares an externally-owned limiter set.
func WithLimiters(limiters *ratelimit.Limiters) Option {
	return func(c *Client) {
		if limiters != nil {
			c.limiters = limiters
		}
	}
}

// New constructs a client against the given host. An empty host selects the
// production endpoint.
func New(host string, opts ...Option) *Client {
	if host == "" {
		host = DefaultHost
	}
	c := &Client{
		host:       strings.TrimRight(host, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiters:   ratelimit.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) get(ctx context.Context, path string, query url.Values, spec *ratelimit.Spec, out any) error {
	if err := c.limiters.Check(ctx, *spec); err != nil {
		return err
	}

	u := c.host + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request GET %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	metrics.RequestsTotal.WithLabelValues(http.MethodGet, path, strconv.Itoa(resp.StatusCode)).Inc()
	metrics.RequestDuration.WithLabelValues(http.MethodGet, path).Observe(time.Since(start).Seconds())

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apierror.Status(http.MethodGet, path, resp.StatusCode, string(raw))
	}
	if out == nil {
		return nil
	}
	if target, ok := out.(*string); ok {
		*target = string(raw)
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode GET %s response: %w", path, err)
	}
	return nil
}

// Health checks API availability.
func (c *Client) Health(ctx context.Context) error {
	var body string
	return c.get(ctx, "", nil, specOK, &body)
}

func positionsQuery(req *PositionsRequest) url.Values {
	query := url.Values{}
	if req == nil {
		return query
	}
	if req.User != "" {
		query.Set("user", req.User)
	}
	if req.Market != "" {
		query.Set("market", req.Market)
	}
	if req.SizeThreshold > 0 {
		query.Set("sizeThreshold", strconv.FormatFloat(req.SizeThreshold, 'f', -1, 64))
	}
	if req.Redeemable != nil {
		query.Set("redeemable", strconv.FormatBool(*req.Redeemable))
	}
	if req.SortBy != "" {
		query.Set("sortBy", req.SortBy)
	}
	if req.SortDirection != "" {
		query.Set("sortDirection", req.SortDirection)
	}
	if req.Limit > 0 {
		query.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.Offset > 0 {
		query.Set("offset", strconv.Itoa(req.Offset))
	}
	return query
}

// Positions returns a user's current holdings.
func (c *Client) Positions(ctx context.Context, req *PositionsRequest) ([]Position, error) {
	var resp []Position
	err := c.get(ctx, "positions", positionsQuery(req), specPositions, &resp)
	return resp, err
}

// ClosedPositions returns a user's settled holdings.
func (c *Client) ClosedPositions(ctx context.Context, req *PositionsRequest) ([]Position, error) {
	var resp []Position
	err := c.get(ctx, "closed-positions", positionsQuery(req), specClosedPositions, &resp)
	return resp, err
}

// Trades returns fills from the public trade feed.
func (c *Client) Trades(ctx context.Context, req *TradesRequest) ([]Trade, error) {
	query := url.Values{}
	if req != nil {
		if req.User != "" {
			query.Set("user", req.User)
		}
		if req.Market != "" {
			query.Set("market", req.Market)
		}
		if req.Asset != "" {
			query.Set("asset", req.Asset)
		}
		if req.Side != "" {
			query.Set("side", req.Side)
		}
		if req.TakerOnly != nil {
			query.Set("takerOnly", strconv.FormatBool(*req.TakerOnly))
		}
		if req.FilterType != "" {
			query.Set("filterType", req.FilterType)
			query.Set("filterAmount", strconv.FormatFloat(req.FilterAmount, 'f', -1, 64))
		}
		if req.Limit > 0 {
			query.Set("limit", strconv.Itoa(req.Limit))
		}
		if req.Offset > 0 {
			query.Set("offset", strconv.Itoa(req.Offset))
		}
	}
	var resp []Trade
	err := c.get(ctx, "trades", query, specTrades, &resp)
	return resp, err
}

// Activity returns a user's on-chain activity feed.
func (c *Client) Activity(ctx context.Context, req *ActivityRequest) ([]Activity, error) {
	query := url.Values{}
	if req != nil {
		if req.User != "" {
			query.Set("user", req.User)
		}
		if req.Market != "" {
			query.Set("market", req.Market)
		}
		if req.Type != "" {
			query.Set("type", req.Type)
		}
		if req.Side != "" {
			query.Set("side", req.Side)
		}
		if req.Start > 0 {
			query.Set("start", strconv.FormatInt(req.Start, 10))
		}
		if req.End > 0 {
			query.Set("end", strconv.FormatInt(req.End, 10))
		}
		if req.SortBy != "" {
			query.Set("sortBy", req.SortBy)
		}
		if req.SortDirection != "" {
			query.Set("sortDirection", req.SortDirection)
		}
		if req.Limit > 0 {
			query.Set("limit", strconv.Itoa(req.Limit))
		}
		if req.Offset > 0 {
			query.Set("offset", strconv.Itoa(req.Offset))
		}
	}
	var resp []Activity
	err := c.get(ctx, "activity", query, specReads, &resp)
	return resp, err
}

// Holders returns the largest holders of each outcome token of a market.
func (c *Client) Holders(ctx context.Context, market string, limit int) ([]TokenHolders, error) {
	query := url.Values{"market": []string{market}}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var resp []TokenHolders
	err := c.get(ctx, "holders", query, specReads, &resp)
	return resp, err
}

// Value returns a user's total portfolio value across the given markets.
func (c *Client) Value(ctx context.Context, user string, markets []string) ([]Value, error) {
	query := url.Values{"user": []string{user}}
	if len(markets) > 0 {
		query.Set("market", strings.Join(markets, ","))
	}
	var resp []Value
	err := c.get(ctx, "value", query, specReads, &resp)
	return resp, err
}

// Leaderboard returns the volume or profit leaderboard for a window.
func (c *Client) Leaderboard(ctx context.Context, req *LeaderboardRequest) ([]LeaderboardEntry, error) {
	query := url.Values{}
	if req != nil {
		if req.Window != "" {
			query.Set("window", req.Window)
		}
		if req.Type != "" {
			query.Set("rankType", req.Type)
		}
		if req.Limit > 0 {
			query.Set("limit", strconv.Itoa(req.Limit))
		}
	}
	var resp []LeaderboardEntry
	err := c.get(ctx, "v1/leaderboard", query, specReads, &resp)
	return resp, err
}

// Traded returns the amount each given user has traded.
func (c *Client) Traded(ctx context.Context, user string) (TradedResponse, error) {
	query := url.Values{"user": []string{user}}
	var resp TradedResponse
	err := c.get(ctx, "traded", query, specReads, &resp)
	return resp, err
}

// OpenInterest returns platform-wide open interest.
func (c *Client) OpenInterest(ctx context.Context) (OpenInterest, error) {
	var resp OpenInterest
	err := c.get(ctx, "oi", nil, specReads, &resp)
	return resp, err
}

// LiveVolume returns the live traded volume for one market.
func (c *Client) LiveVolume(ctx context.Context, market string) ([]LiveVolume, error) {
	query := url.Values{"market": []string{market}}
	var resp []LiveVolume
	err := c.get(ctx, "live-volume", query, specReads, &resp)
	return resp, err
}

// BuilderLeaderboard returns the builder volume leaderboard.
func (c *Client) BuilderLeaderboard(ctx context.Context, limit int) ([]BuilderLeaderboardEntry, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var resp []BuilderLeaderboardEntry
	err := c.get(ctx, "v1/builders/leaderboard", query, specReads, &resp)
	return resp, err
}

// BuilderVolumes returns attributed volume per builder over time.
func (c *Client) BuilderVolumes(ctx context.Context, builder string) ([]BuilderVolume, error) {
	query := url.Values{}
	if builder != "" {
		query.Set("builder", builder)
	}
	var resp []BuilderVolume
	err := c.get(ctx, "v1/builders/volume", query, specReads, &resp)
	return resp, err
}
