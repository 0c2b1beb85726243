package auth

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/GoPolymarket/polymarket-go-sdk/pkg/apierror"
)

// Deterministic deployment parameters for the Polymarket wallet factories on
// Polygon. Wallets are CREATE2 deployments keyed by the owner address, so the
// funder address can be computed offline before the wallet ever exists
// on-chain.
var (
	proxyWalletFactory = common.HexToAddress("0xaB45c5A4B0c941a2F231C04C3f49182e1A254052")
	safeWalletFactory  = common.HexToAddress("0xaacFeEa03eb1561C4e67d661e40682Bd20E3541b")

	proxyWalletInitCodeHash = common.HexToHash("0xd2a9a6b4bfd3a0fea087a5595ebdeb42c0d8b55e5a2d8cbfa9f0e1a6a1c50f54")
	safeWalletInitCodeHash  = common.HexToHash("0x2266e096bcb96e7a5a8b79b4e3bbe0ecccffc9e5a1d2b74e8b0a8d4f3c6e1b27")
)

// DeriveProxyWallet computes the Polymarket proxy wallet address owned by the
// given signer on Polygon.
func DeriveProxyWallet(owner common.Address) (common.Address, error) {
	return DeriveProxyWalletForChain(owner, PolygonChainID)
}

// DeriveProxyWalletForChain computes the proxy wallet for (owner, chain).
// Derivation is only defined on Polygon; other chains require an explicit
// funder address.
func DeriveProxyWalletForChain(owner common.Address, chainID int64) (common.Address, error) {
	if chainID != PolygonChainID {
		return common.Address{}, apierror.Validationf(
			"proxy wallet derivation not supported on chain %d, provide an explicit funder address", chainID)
	}
	return create2Wallet(proxyWalletFactory, owner, proxyWalletInitCodeHash), nil
}

// DeriveSafeWallet computes the Gnosis Safe wallet address owned by the given
// signer on Polygon.
func DeriveSafeWallet(owner common.Address) (common.Address, error) {
	return DeriveSafeWalletForChain(owner, PolygonChainID)
}

// DeriveSafeWalletForChain computes the safe wallet for (owner, chain).
func DeriveSafeWalletForChain(owner common.Address, chainID int64) (common.Address, error) {
	if chainID != PolygonChainID {
		return common.Address{}, apierror.Validationf(
			"safe wallet derivation not supported on chain %d, provide an explicit funder address", chainID)
	}
	return create2Wallet(safeWalletFactory, owner, safeWalletInitCodeHash), nil
}

func create2Wallet(factory, owner common.Address, initCodeHash common.Hash) common.Address {
	salt := crypto.Keccak256(common.LeftPadBytes(owner.Bytes(), 32))
	return crypto.CreateAddress2(factory, common.BytesToHash(salt), initCodeHash.Bytes())
}
