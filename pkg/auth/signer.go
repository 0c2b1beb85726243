package auth

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// Signer is the capability the SDK needs from a key: an address, a chain id
// and the ability to sign EIP-712 typed data. Remote signers (KMS, hardware,
// browser wallets relayed through a backend) implement this without exposing
// key material.
type Signer interface {
	Address() common.Address
	ChainID() *big.Int
	SignTypedData(domain *apitypes.TypedDataDomain, types apitypes.Types, message apitypes.TypedDataMessage, primaryType string) ([]byte, error)
}

// PrivateKeySigner signs with a local secp256k1 key.
type PrivateKeySigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
	chainID *big.Int
}

func NewPrivateKeySigner(privateKeyHex string, chainID int64) (*PrivateKeySigner, error) {
	privateKeyHex = strings.TrimPrefix(privateKeyHex, "0x")
	if privateKeyHex == "" {
		return nil, fmt.Errorf("private key is required")
	}
	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	publicKey, ok := key.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("error casting public key to ECDSA")
	}

	return &PrivateKeySigner{
		key:     key,
		address: crypto.PubkeyToAddress(*publicKey),
		chainID: big.NewInt(chainID),
	}, nil
}

func (s *PrivateKeySigner) Address() common.Address {
	return s.address
}

func (s *PrivateKeySigner) ChainID() *big.Int {
	return new(big.Int).Set(s.chainID)
}

// SignHash signs a 32-byte digest, returning a 65-byte [R || S || V]
// signature with V normalized to 27/28 as the exchange expects.
func (s *PrivateKeySigner) SignHash(hash []byte) ([]byte, error) {
	if len(hash) != 32 {
		return nil, fmt.Errorf("digest must be 32 bytes, got %d", len(hash))
	}
	signature, err := crypto.Sign(hash, s.key)
	if err != nil {
		return nil, err
	}
	if signature[64] < 27 {
		signature[64] += 27
	}
	return signature, nil
}

func (s *PrivateKeySigner) SignTypedData(domain *apitypes.TypedDataDomain, types apitypes.Types, message apitypes.TypedDataMessage, primaryType string) ([]byte, error) {
	typedData := apitypes.TypedData{
		Types:       types,
		PrimaryType: primaryType,
		Domain:      *domain,
		Message:     message,
	}
	hash, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return nil, fmt.Errorf("failed to hash typed data: %w", err)
	}
	return s.SignHash(hash)
}
