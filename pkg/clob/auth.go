package clob

import (
	"context"
	"math/rand"

	"github.com/ethereum/go-ethereum/common"

	"github.com/GoPolymarket/polymarket-go-sdk/internal/logger"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/apierror"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/auth"
)

// AuthenticateOptions tunes the transition from an unauthenticated client to
// an authenticated one. The zero value works for an EOA on Polygon.
type AuthenticateOptions struct {
	// Credentials skips the create-or-derive handshake. Mutually exclusive
	// with Nonce.
	Credentials *auth.APIKey
	// Nonce selects which credential set the handshake mints or derives.
	Nonce *uint64
	// Funder is the address holding collateral. Required for proxy or safe
	// sessions off Polygon; derived on Polygon when omitted.
	Funder *common.Address
	// SignatureType selects the order verification scheme. Defaults to EOA.
	SignatureType *auth.SignatureType
	// SaltGenerator overrides the order salt source.
	SaltGenerator func() int64
}

// BuilderConfig carries the credentials a delegated (builder) session
// attaches to attributed submissions.
type BuilderConfig struct {
	Key        string
	Secret     string
	Passphrase string
}

// AuthenticatedClient is a client holding a live session. It adds the
// session lifecycle operations on top of the full trading surface.
type AuthenticatedClient struct {
	*Client
	hb *heartbeat
}

func defaultSaltGenerator() int64 {
	return rand.Int63()
}

// Authenticate performs the transition to an authenticated session. The
// receiver must be the only live handle on its core; on success it is
// consumed and the returned handle owns the core. On failure the receiver
// remains usable.
func (c *Client) Authenticate(ctx context.Context, signer auth.Signer, opts AuthenticateOptions) (*AuthenticatedClient, error) {
	if c.session != nil {
		return nil, apierror.Validation("client is already authenticated")
	}

	chainID := signer.ChainID()
	if chainID == nil || !auth.SupportedChain(chainID.Int64()) {
		return nil, apierror.Validationf("unsupported chain id %v: supported chains are %d and %d",
			chainID, auth.PolygonChainID, auth.AmoyChainID)
	}

	if opts.Credentials != nil && opts.Nonce != nil {
		return nil, apierror.Validation("credentials and nonce are mutually exclusive")
	}

	sigType := auth.SignatureEOA
	if opts.SignatureType != nil {
		sigType = *opts.SignatureType
	}

	funder, err := resolveFunder(signer, sigType, opts.Funder)
	if err != nil {
		return nil, err
	}

	var nonce uint64
	if opts.Nonce != nil {
		nonce = *opts.Nonce
	}

	creds := opts.Credentials
	if creds == nil {
		creds, err = c.createOrDeriveAPIKey(ctx, signer, nonce)
		if err != nil {
			return nil, err
		}
	}

	if err := c.takeExclusive(); err != nil {
		return nil, err
	}

	saltGen := opts.SaltGenerator
	if saltGen == nil {
		saltGen = defaultSaltGenerator
	}

	authed := &AuthenticatedClient{
		Client: &Client{
			core: c.core,
			session: &session{
				signer:  signer,
				creds:   creds,
				funder:  funder.Hex(),
				sigType: sigType,
				nonce:   nonce,
				saltGen: saltGen,
			},
		},
	}
	authed.releaseExclusive()

	if c.core.cfg.HeartbeatInterval > 0 {
		authed.hb = authed.startHeartbeat(c.core.cfg.HeartbeatInterval)
	}

	logger.Info("authenticated session established",
		"address", signer.Address().Hex(),
		"signature_type", sigType.String(),
	)
	return authed, nil
}

// resolveFunder validates the funder against the signature scheme and
// derives one when the scheme implies a wallet contract.
func resolveFunder(signer auth.Signer, sigType auth.SignatureType, funder *common.Address) (common.Address, error) {
	switch sigType {
	case auth.SignatureEOA:
		if funder != nil && *funder != signer.Address() {
			return common.Address{}, apierror.Validation("an EOA session funds itself: funder must be omitted")
		}
		return signer.Address(), nil
	case auth.SignatureProxy:
		if funder != nil {
			if *funder == (common.Address{}) {
				return common.Address{}, apierror.Validation("funder must not be the zero address")
			}
			return *funder, nil
		}
		return auth.DeriveProxyWalletForChain(signer.Address(), signer.ChainID().Int64())
	case auth.SignatureGnosisSafe:
		if funder != nil {
			if *funder == (common.Address{}) {
				return common.Address{}, apierror.Validation("funder must not be the zero address")
			}
			return *funder, nil
		}
		return auth.DeriveSafeWalletForChain(signer.Address(), signer.ChainID().Int64())
	default:
		return common.Address{}, apierror.Validationf("unknown signature type %d", sigType)
	}
}

// createOrDeriveAPIKey mints credentials, falling back to deriving an
// existing set when the mint is rejected. When both fail the derive error is
// surfaced: it is the one that matters for an address that already has keys.
func (c *Client) createOrDeriveAPIKey(ctx context.Context, signer auth.Signer, nonce uint64) (*auth.APIKey, error) {
	creds, createErr := c.CreateAPIKey(ctx, signer, nonce)
	if createErr == nil {
		return creds, nil
	}

	creds, deriveErr := c.DeriveAPIKey(ctx, signer, nonce)
	if deriveErr == nil {
		return creds, nil
	}

	logger.Error("failed to create or derive api key", "create_error", createErr, "derive_error", deriveErr)
	return nil, deriveErr
}

// Clone returns a new authenticated handle sharing the core and session.
func (a *AuthenticatedClient) Clone() *AuthenticatedClient {
	a.core.refs.Add(1)
	return &AuthenticatedClient{Client: &Client{core: a.core, session: a.session}, hb: nil}
}

// Close stops the handle's heartbeat loop, awaits its exit and releases the
// reference on the shared core. The session's credentials stay valid; use
// Deauthenticate to tear the session down.
func (a *AuthenticatedClient) Close() {
	a.StopHeartbeats()
	a.Client.Close()
}

// StopHeartbeats stops the keep-alive loop and waits for it to exit. No-op
// when none is running.
func (a *AuthenticatedClient) StopHeartbeats() {
	if a.hb != nil {
		a.hb.stop()
		a.hb = nil
	}
}

// StartHeartbeats begins the keep-alive loop for a session created without
// one. A second loop on the same handle is rejected.
func (a *AuthenticatedClient) StartHeartbeats() error {
	if err := ensureNoHeartbeat(a.hb); err != nil {
		return err
	}
	interval := a.core.cfg.HeartbeatInterval
	if interval <= 0 {
		return apierror.Validation("heartbeat interval is not configured")
	}
	a.hb = a.startHeartbeat(interval)
	return nil
}

// Deauthenticate tears the session down: heartbeats are stopped and awaited,
// exclusive ownership is required, and a fresh unauthenticated handle over
// the same core is returned.
func (a *AuthenticatedClient) Deauthenticate() (*Client, error) {
	hadBeats := a.hb != nil
	a.StopHeartbeats()

	if err := a.takeExclusive(); err != nil {
		// The session survives a failed transition; restore its keep-alive.
		if hadBeats {
			a.hb = a.startHeartbeat(a.core.cfg.HeartbeatInterval)
		}
		return nil, err
	}

	fresh := &Client{core: a.core}
	fresh.releaseExclusive()
	return fresh, nil
}

// PromoteToBuilder rewraps the session as a delegated (builder) one. The
// identity and credentials carry over; submissions additionally carry the
// builder's attribution headers. Heartbeats are restarted.
func (a *AuthenticatedClient) PromoteToBuilder(cfg BuilderConfig) (*AuthenticatedClient, error) {
	if cfg.Key == "" || cfg.Secret == "" || cfg.Passphrase == "" {
		return nil, apierror.Validation("builder credentials require key, secret and passphrase")
	}

	hadBeats := a.hb != nil
	a.StopHeartbeats()

	if err := a.takeExclusive(); err != nil {
		if hadBeats {
			a.hb = a.startHeartbeat(a.core.cfg.HeartbeatInterval)
		}
		return nil, err
	}

	delegated := *a.session
	delegated.delegated = true
	a.core.builder = &auth.APIKey{Key: cfg.Key, Secret: cfg.Secret, Passphrase: cfg.Passphrase}

	promoted := &AuthenticatedClient{
		Client: &Client{core: a.core, session: &delegated},
	}
	promoted.releaseExclusive()

	if a.core.cfg.HeartbeatInterval > 0 {
		promoted.hb = promoted.startHeartbeat(a.core.cfg.HeartbeatInterval)
	}
	return promoted, nil
}

// Delegated reports whether the session carries builder attribution.
func (a *AuthenticatedClient) Delegated() bool {
	return a.session != nil && a.session.delegated
}

// Address returns the session's signing address.
func (a *AuthenticatedClient) Address() common.Address {
	return a.session.signer.Address()
}

// Funder returns the address funding the session's orders.
func (a *AuthenticatedClient) Funder() common.Address {
	return common.HexToAddress(a.session.funder)
}
