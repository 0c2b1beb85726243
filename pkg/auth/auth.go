// Package auth holds the identity primitives used against the Polymarket
// CLOB: signing keys, L1/L2 request headers, API credentials, deterministic
// wallet derivation and the exchange contract registry.
package auth

import "math/big"

// Supported chain IDs.
const (
	PolygonChainID = 137
	AmoyChainID    = 80002
)

// SupportedChain reports whether the CLOB operates on the given chain.
func SupportedChain(chainID int64) bool {
	return chainID == PolygonChainID || chainID == AmoyChainID
}

// SignatureType selects how the exchange verifies an order signature.
type SignatureType int

const (
	// SignatureEOA is a plain externally-owned account signature.
	SignatureEOA SignatureType = iota
	// SignatureProxy is an order placed through a Polymarket proxy wallet.
	SignatureProxy
	// SignatureGnosisSafe is an order placed through a Gnosis Safe.
	SignatureGnosisSafe
)

func (s SignatureType) String() string {
	switch s {
	case SignatureEOA:
		return "EOA"
	case SignatureProxy:
		return "POLY_PROXY"
	case SignatureGnosisSafe:
		return "POLY_GNOSIS_SAFE"
	default:
		return "UNKNOWN"
	}
}

// APIKey is a set of L2 credentials minted by the CLOB for a signing address.
// The secret is used to HMAC-sign every authenticated request.
type APIKey struct {
	Key        string `json:"apiKey"`
	Secret     string `json:"secret"`
	Passphrase string `json:"passphrase"`
}

func chainIDOrZero(id *big.Int) int64 {
	if id == nil {
		return 0
	}
	return id.Int64()
}
