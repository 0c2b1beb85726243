package auth

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

const (
	orderDomainName    = "Polymarket CTF Exchange"
	orderDomainVersion = "1"

	authDomainName    = "ClobAuthDomain"
	authDomainVersion = "1"

	// The attestation the CLOB expects inside the ClobAuth payload.
	authMessage = "This message attests that I control the given wallet"
)

// OrderPrimaryType is the EIP-712 primary type the exchange verifies.
const OrderPrimaryType = "Order"

// OrderTypes returns the EIP-712 type definitions for an exchange order.
func OrderTypes() apitypes.Types {
	return apitypes.Types{
		"EIP712Domain": {
			{Name: "name", Type: "string"},
			{Name: "version", Type: "string"},
			{Name: "chainId", Type: "uint256"},
			{Name: "verifyingContract", Type: "address"},
		},
		OrderPrimaryType: {
			{Name: "salt", Type: "uint256"},
			{Name: "maker", Type: "address"},
			{Name: "signer", Type: "address"},
			{Name: "taker", Type: "address"},
			{Name: "tokenId", Type: "uint256"},
			{Name: "makerAmount", Type: "uint256"},
			{Name: "takerAmount", Type: "uint256"},
			{Name: "expiration", Type: "uint256"},
			{Name: "nonce", Type: "uint256"},
			{Name: "feeRateBps", Type: "uint256"},
			{Name: "side", Type: "uint8"},
			{Name: "signatureType", Type: "uint8"},
		},
	}
}

// OrderDomain returns the signing domain for (chainID, exchange contract).
// The contract differs between normal and negative-risk markets, so the
// domain must be looked up per order.
func OrderDomain(chainID int64, verifyingContract common.Address) *apitypes.TypedDataDomain {
	return &apitypes.TypedDataDomain{
		Name:              orderDomainName,
		Version:           orderDomainVersion,
		ChainId:           (*math.HexOrDecimal256)(big.NewInt(chainID)),
		VerifyingContract: verifyingContract.Hex(),
	}
}

// OrderTypedDataHash computes the EIP-712 digest an order signature commits to.
func OrderTypedDataHash(domain *apitypes.TypedDataDomain, message apitypes.TypedDataMessage) ([]byte, error) {
	typedData := apitypes.TypedData{
		Types:       OrderTypes(),
		PrimaryType: OrderPrimaryType,
		Domain:      *domain,
		Message:     message,
	}
	hash, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return nil, fmt.Errorf("failed to hash typed data: %w", err)
	}
	return hash, nil
}

func authTypes() apitypes.Types {
	return apitypes.Types{
		"EIP712Domain": {
			{Name: "name", Type: "string"},
			{Name: "version", Type: "string"},
			{Name: "chainId", Type: "uint256"},
		},
		"ClobAuth": {
			{Name: "address", Type: "address"},
			{Name: "timestamp", Type: "string"},
			{Name: "nonce", Type: "uint256"},
			{Name: "message", Type: "string"},
		},
	}
}

func signClobAuth(signer Signer, chainID int64, timestamp int64, nonce uint64) (string, error) {
	domain := &apitypes.TypedDataDomain{
		Name:    authDomainName,
		Version: authDomainVersion,
		ChainId: math.NewHexOrDecimal256(chainID),
	}
	message := apitypes.TypedDataMessage{
		"address":   signer.Address().Hex(),
		"timestamp": fmt.Sprintf("%d", timestamp),
		"nonce":     (*math.HexOrDecimal256)(new(big.Int).SetUint64(nonce)),
		"message":   authMessage,
	}

	signature, err := signer.SignTypedData(domain, authTypes(), message, "ClobAuth")
	if err != nil {
		return "", fmt.Errorf("failed to sign auth payload: %w", err)
	}
	return hexutil.Encode(signature), nil
}

// RecoverOrderSigner recovers the address that produced an order signature
// over the given typed-data digest.
func RecoverOrderSigner(hash []byte, signature string) (common.Address, error) {
	raw, err := hexutil.Decode(signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid signature encoding: %w", err)
	}
	if len(raw) != 65 {
		return common.Address{}, fmt.Errorf("invalid signature length %d", len(raw))
	}
	// Normalize V to 0/1 for recovery.
	if raw[64] >= 27 {
		raw[64] -= 27
	}
	pub, err := crypto.SigToPub(hash, raw)
	if err != nil {
		return common.Address{}, fmt.Errorf("signature recovery failed: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// SideValue maps a BUY/SELL literal to the uint8 the order struct encodes.
func SideValue(side string) int64 {
	if strings.EqualFold(side, "SELL") {
		return 1
	}
	return 0
}
