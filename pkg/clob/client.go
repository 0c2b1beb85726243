// Package clob implements the client for the Polymarket central limit order
// book API: public market data, the two-level authentication flow, order
// construction and signing, and the authenticated trading surface.
package clob

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
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/GoPolymarket/polymarket-go-sdk/internal/logger"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/apierror"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/auth"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/cache"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/metrics"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/ratelimit"
)

// DefaultHost is the production CLOB endpoint.
const DefaultHost = "https://clob.polymarket.com"

// Config tunes client-wide behavior.
type Config struct {
	// UseServerTime stamps L1/L2 signatures with the CLOB's clock instead
	// of the local one, avoiding rejections from clock drift.
	UseServerTime bool
	// HeartbeatInterval is the keep-alive cadence for authenticated
	// sessions. Zero disables heartbeats.
	HeartbeatInterval time.Duration
}

// DefaultConfig returns the settings used when none are provided.
func DefaultConfig() Config {
	return Config{
		UseServerTime:     false,
		HeartbeatInterval: 5 * time.Second,
	}
}

// core is the state shared by every handle cloned from one client: the
// transport, the rate limiters, the metadata caches and the reference count
// that guards authentication transitions.
type core struct {
	host       string
	httpClient *http.Client
	cfg        Config
	limiters   *ratelimit.Limiters
	builder    *auth.APIKey

	store  cache.Store
	flight singleflight.Group

	// refs counts live handles sharing this core. Authentication
	// transitions require exclusive ownership: exactly one handle.
	refs atomic.Int32
}

// session carries the identity of an authenticated handle.
type session struct {
	signer  auth.Signer
	creds   *auth.APIKey
	funder  string
	sigType auth.SignatureType
	nonce   uint64
	saltGen func() int64
	// delegated marks a session promoted to builder attribution.
	delegated bool
}

// Client is a CLOB handle. A freshly constructed client is unauthenticated:
// public market-data operations work, privileged operations return a
// Validation error until Authenticate (or WithAuth) provides a session.
type Client struct {
	core    *core
	session *session
}

// Option configures a Client at construction.
type Option func(*core)

// WithHTTPClient replaces the default transport.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *core) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithConfig replaces the default Config.
func WithConfig(cfg Config) Option {
	return func(c *core) {
		c.cfg = cfg
	}
}

// WithLimiters shares an externally-owned limiter set, letting several
// clients draw from the same buckets.
func WithLimiters(limiters *ratelimit.Limiters) Option {
	return func(c *core) {
		if limiters != nil {
			c.limiters = limiters
		}
	}
}

// WithCacheStore replaces the in-process metadata cache, e.g. with the Redis
// store when a fleet shares market metadata.
func WithCacheStore(store cache.Store) Option {
	return func(c *core) {
		if store != nil {
			c.store = store
		}
	}
}

// WithBuilderAttribution attaches builder credentials. Order submissions
// carry the builder headers in addition to the user's own.
func WithBuilderAttribution(key, secret, passphrase string) Option {
	return func(c *core) {
		c.builder = &auth.APIKey{Key: key, Secret: secret, Passphrase: passphrase}
	}
}

// New constructs an unauthenticated client against the given host. An empty
// host selects the production endpoint.
func New(host string, opts ...Option) *Client {
	if host == "" {
		host = DefaultHost
	}
	c := &core{
		host:       strings.TrimRight(host, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cfg:        DefaultConfig(),
		limiters:   ratelimit.New(),
		store:      cache.NewMemory(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.refs.Store(1)
	return &Client{core: c}
}

// WithAuth returns a handle carrying an explicit session. No network calls
// are made and no heartbeats are started: the caller owns the credential
// lifecycle. The handle shares the receiver's core.
func (c *Client) WithAuth(signer auth.Signer, creds *auth.APIKey) *Client {
	c.core.refs.Add(1)
	return &Client{
		core: c.core,
		session: &session{
			signer:  signer,
			creds:   creds,
			saltGen: defaultSaltGenerator,
		},
	}
}

// Clone returns a new handle sharing the core. Each clone must be Closed.
func (c *Client) Clone() *Client {
	c.core.refs.Add(1)
	return &Client{core: c.core, session: c.session}
}

// Close releases the handle's reference on the shared core.
func (c *Client) Close() {
	c.core.refs.Add(-1)
}

// takeExclusive claims sole ownership of the core for a state transition.
// It succeeds only when the receiver is the last live handle.
func (c *Client) takeExclusive() error {
	if !c.core.refs.CompareAndSwap(1, 0) {
		return apierror.Synchronization()
	}
	return nil
}

// releaseExclusive hands ownership to a single successor handle.
func (c *Client) releaseExclusive() {
	c.core.refs.Store(1)
}

func (c *Client) requireSession() (*session, error) {
	if c.session == nil {
		return nil, apierror.Validation("operation requires an authenticated client")
	}
	return c.session, nil
}

// timestamp returns the unix-seconds timestamp used for request signatures,
// from the server clock when configured.
func (c *Client) timestamp(ctx context.Context) int64 {
	if c.core.cfg.UseServerTime {
		if ts, err := c.ServerTime(ctx); err == nil {
			return ts
		}
		logger.Warn("failed to fetch server time, falling back to local clock")
	}
	return time.Now().Unix()
}

// request describes one HTTP exchange with the CLOB.
type request struct {
	method string
	path   string
	query  url.Values
	body   any
	spec   *ratelimit.Spec
	// authenticated attaches L2 headers from the handle's session.
	authenticated bool
	// attributed additionally attaches builder headers when configured.
	attributed bool
}

// do executes a request and decodes a JSON response into out (which may be
// nil for fire-and-forget calls, or a *string for plain-text endpoints).
func (c *Client) do(ctx context.Context, req request, out any) error {
	if req.spec != nil {
		if err := c.core.limiters.Check(ctx, *req.spec); err != nil {
			return err
		}
	}

	var bodyBytes []byte
	if req.body != nil {
		encoded, err := json.Marshal(req.body)
		if err != nil {
			return apierror.Validationf("failed to encode request body: %v", err)
		}
		bodyBytes = encoded
	}

	u := c.core.host + "/" + strings.TrimLeft(req.path, "/")
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	if req.authenticated {
		sess, err := c.requireSession()
		if err != nil {
			return err
		}
		ts := c.timestamp(ctx)
		headers, err := auth.CreateL2Headers(sess.signer.Address(), sess.creds, ts, req.method, httpReq.URL.Path, string(bodyBytes))
		if err != nil {
			return err
		}
		for name, value := range headers {
			httpReq.Header.Set(name, value)
		}
		if req.attributed && c.core.builder != nil {
			builderHeaders, err := auth.BuilderHeaders(c.core.builder, ts, req.method, httpReq.URL.Path, string(bodyBytes))
			if err != nil {
				return err
			}
			for name, value := range builderHeaders {
				httpReq.Header.Set(name, value)
			}
		}
	}

	start := time.Now()
	resp, err := c.core.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	metrics.RequestsTotal.WithLabelValues(req.method, req.path, strconv.Itoa(resp.StatusCode)).Inc()
	metrics.RequestDuration.WithLabelValues(req.method, req.path).Observe(time.Since(start).Seconds())

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apierror.Status(req.method, req.path, resp.StatusCode, string(raw))
	}

	switch target := out.(type) {
	case nil:
		return nil
	case *string:
		*target = string(raw)
		return nil
	default:
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode %s %s response: %w", req.method, req.path, err)
		}
		return nil
	}
}

// doL1 executes a request carrying the one-time L1 handshake headers.
func (c *Client) doL1(ctx context.Context, method, path string, signer auth.Signer, nonce uint64, spec *ratelimit.Spec, out any) error {
	if spec != nil {
		if err := c.core.limiters.Check(ctx, *spec); err != nil {
			return err
		}
	}

	u := c.core.host + "/" + strings.TrimLeft(path, "/")
	httpReq, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	headers, err := auth.CreateL1Headers(signer, c.timestamp(ctx), nonce)
	if err != nil {
		return err
	}
	for name, value := range headers {
		httpReq.Header.Set(name, value)
	}

	resp, err := c.core.httpClient.Do(httpReq)
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
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}
