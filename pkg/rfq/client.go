// Package rfq implements the client for the Polymarket request-for-quote
// system. RFQ trades settle through the same exchange contracts as CLOB
// orders but negotiate size and price directly between requester and maker.
package rfq

import (
	"bytes"
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
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/auth"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/metrics"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/ratelimit"
)

// DefaultHost is the production endpoint; RFQ is served by the CLOB host.
const DefaultHost = "https://clob.polymarket.com"

var (
	rfqAPIQuota = ratelimit.MustParseQuota("1000/10s")

	specRequests = &ratelimit.Spec{
		Key:      "rfq_requests",
		Quota:    ratelimit.Single(ratelimit.MustParseQuota("200/10s")),
		APIQuota: &rfqAPIQuota,
	}
	specQuotes = &ratelimit.Spec{
		Key:      "rfq_quotes",
		Quota:    ratelimit.Single(ratelimit.MustParseQuota("200/10s")),
		APIQuota: &rfqAPIQuota,
	}
)

// Client is an RFQ client. All operations require credentials: the RFQ
// surface has no public endpoints.
type Client struct {
	host       string
	httpClient *http.Client
	limiters   *ratelimit.Limiters
	signer     auth.Signer
	creds      *auth.APIKey
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

// New constructs an RFQ client. An empty host selects the production
// endpoint.
func New(host string, signer auth.Signer, creds *auth.APIKey, opts ...Option) *Client {
	if host == "" {
		host = DefaultHost
	}
	c := &Client{
		host:       strings.TrimRight(host, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiters:   ratelimit.New(),
		signer:     signer,
		creds:      creds,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, spec *ratelimit.Spec, out any) error {
	if c.signer == nil || c.creds == nil {
		return apierror.Validation("rfq operations require a signer and api credentials")
	}
	if err := c.limiters.Check(ctx, *spec); err != nil {
		return err
	}

	var bodyBytes []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return apierror.Validationf("failed to encode request body: %v", err)
		}
		bodyBytes = encoded
	}

	u := c.host + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	headers, err := auth.CreateL2Headers(c.signer.Address(), c.creds, time.Now().Unix(), method, req.URL.Path, string(bodyBytes))
	if err != nil {
		return err
	}
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	metrics.RequestsTotal.WithLabelValues(method, path, strconv.Itoa(resp.StatusCode)).Inc()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apierror.Status(method, path, resp.StatusCode, string(raw))
	}
	switch target := out.(type) {
	case nil:
		return nil
	case *string:
		*target = string(raw)
		return nil
	default:
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
		}
		return nil
	}
}

// CreateRequest opens a request-for-quote.
func (c *Client) CreateRequest(ctx context.Context, args CreateRequestArgs) (CreateRequestResponse, error) {
	var resp CreateRequestResponse
	err := c.do(ctx, http.MethodPost, "rfq/request", nil, args, specRequests, &resp)
	return resp, err
}

// CancelRequest withdraws an open request.
func (c *Client) CancelRequest(ctx context.Context, requestID string) error {
	query := url.Values{"requestId": []string{requestID}}
	return c.do(ctx, http.MethodDelete, "rfq/request", query, nil, specRequests, nil)
}

// Requests returns one page of the user's requests.
func (c *Client) Requests(ctx context.Context, filter *RequestsFilter, cursor string) (Page[Request], error) {
	query := url.Values{}
	if cursor != "" {
		query.Set("next_cursor", cursor)
	}
	if filter != nil {
		if filter.Market != "" {
			query.Set("market", filter.Market)
		}
		if filter.State != "" {
			query.Set("state", filter.State)
		}
	}
	var resp Page[Request]
	err := c.do(ctx, http.MethodGet, "rfq/requests", query, nil, specRequests, &resp)
	return resp, err
}

// CreateQuote answers a request with a quote.
func (c *Client) CreateQuote(ctx context.Context, args CreateQuoteArgs) (CreateQuoteResponse, error) {
	var resp CreateQuoteResponse
	err := c.do(ctx, http.MethodPost, "rfq/quote", nil, args, specQuotes, &resp)
	return resp, err
}

// CancelQuote withdraws an open quote.
func (c *Client) CancelQuote(ctx context.Context, quoteID string) error {
	query := url.Values{"quoteId": []string{quoteID}}
	return c.do(ctx, http.MethodDelete, "rfq/quote", query, nil, specQuotes, nil)
}

// Quotes returns one page of the user's quotes.
func (c *Client) Quotes(ctx context.Context, filter *QuotesFilter, cursor string) (Page[Quote], error) {
	query := url.Values{}
	if cursor != "" {
		query.Set("next_cursor", cursor)
	}
	if filter != nil {
		if filter.RequestID != "" {
			query.Set("requestId", filter.RequestID)
		}
		if filter.State != "" {
			query.Set("state", filter.State)
		}
	}
	var resp Page[Quote]
	err := c.do(ctx, http.MethodGet, "rfq/quotes", query, nil, specQuotes, &resp)
	return resp, err
}

// AcceptQuote commits the requester to a quote. The endpoint answers with a
// plain "OK".
func (c *Client) AcceptQuote(ctx context.Context, args AcceptQuoteArgs) error {
	var body string
	if err := c.do(ctx, http.MethodPost, "rfq/request/accept", nil, args, specRequests, &body); err != nil {
		return err
	}
	if strings.TrimSpace(body) != "OK" {
		return apierror.Validationf("unexpected accept response %q", body)
	}
	return nil
}

// ApproveOrder is the maker's last-look approval of an accepted quote. It
// returns the ids of the trades created by the fill.
func (c *Client) ApproveOrder(ctx context.Context, args ApproveOrderArgs) (ApproveOrderResponse, error) {
	var resp ApproveOrderResponse
	err := c.do(ctx, http.MethodPost, "rfq/quote/approve", nil, args, specQuotes, &resp)
	return resp, err
}
