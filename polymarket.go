// Package polymarket is the entry point of the SDK. It bundles the CLOB,
// Data API and RFQ clients behind a single constructor; each sub-client is
// also usable on its own through its package.
package polymarket

import (
	"log/slog"
	"net/http"

	"github.com/GoPolymarket/polymarket-go-sdk/internal/logger"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/auth"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/cache"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/clob"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/data"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/rfq"
)

// SetLogger routes the SDK's internal logging into the given slog logger.
// The default sink logs JSON to stderr at warn level.
func SetLogger(l *slog.Logger) {
	logger.SetLogger(l)
}

// Client aggregates the SDK's API surfaces.
type Client struct {
	CLOB *clob.Client
	Data *data.Client
	RFQ  *rfq.Client

	settings settings
}

// settings records what NewClient was configured with, so WithAuth can
// rebuild the credentialed sub-clients.
type settings struct {
	clobHost   string
	dataHost   string
	rfqHost    string
	httpClient *http.Client
	clobOpts   []clob.Option
}

// Option configures the aggregate client.
type Option func(*settings)

// WithCLOBHost points the CLOB and RFQ clients at a non-production host.
func WithCLOBHost(host string) Option {
	return func(s *settings) {
		s.clobHost = host
		s.rfqHost = host
	}
}

// WithDataHost points the Data API client at a non-production host.
func WithDataHost(host string) Option {
	return func(s *settings) { s.dataHost = host }
}

// WithHTTPClient replaces the default transport for every sub-client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(s *settings) { s.httpClient = httpClient }
}

// WithUseServerTime stamps request signatures with the CLOB's clock instead
// of the local one.
func WithUseServerTime(useServerTime bool) Option {
	return func(s *settings) {
		cfg := clob.DefaultConfig()
		cfg.UseServerTime = useServerTime
		s.clobOpts = append(s.clobOpts, clob.WithConfig(cfg))
	}
}

// WithConfig replaces the CLOB client's Config.
func WithConfig(cfg clob.Config) Option {
	return func(s *settings) {
		s.clobOpts = append(s.clobOpts, clob.WithConfig(cfg))
	}
}

// WithBuilderAttribution attaches builder credentials to order submissions.
func WithBuilderAttribution(key, secret, passphrase string) Option {
	return func(s *settings) {
		s.clobOpts = append(s.clobOpts, clob.WithBuilderAttribution(key, secret, passphrase))
	}
}

// WithCacheStore replaces the CLOB client's metadata cache.
func WithCacheStore(store cache.Store) Option {
	return func(s *settings) {
		s.clobOpts = append(s.clobOpts, clob.WithCacheStore(store))
	}
}

// NewClient constructs an unauthenticated aggregate client against the
// production endpoints.
func NewClient(opts ...Option) *Client {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	clobOpts := s.clobOpts
	var dataOpts []data.Option
	if s.httpClient != nil {
		clobOpts = append(clobOpts, clob.WithHTTPClient(s.httpClient))
		dataOpts = append(dataOpts, data.WithHTTPClient(s.httpClient))
	}

	return &Client{
		CLOB:     clob.New(s.clobHost, clobOpts...),
		Data:     data.New(s.dataHost, dataOpts...),
		settings: s,
	}
}

// WithAuth returns a client whose CLOB handle carries the given session and
// whose RFQ client is ready to sign. No network calls are made; use
// CLOB.Authenticate for the full onboarding flow.
func (c *Client) WithAuth(signer auth.Signer, apiKey *auth.APIKey) *Client {
	var rfqOpts []rfq.Option
	if c.settings.httpClient != nil {
		rfqOpts = append(rfqOpts, rfq.WithHTTPClient(c.settings.httpClient))
	}
	return &Client{
		CLOB:     c.CLOB.WithAuth(signer, apiKey),
		Data:     c.Data,
		RFQ:      rfq.New(c.settings.rfqHost, signer, apiKey, rfqOpts...),
		settings: c.settings,
	}
}
