package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
)

// Header names for the two authentication tiers.
const (
	HeaderAddress    = "POLY_ADDRESS"
	HeaderSignature  = "POLY_SIGNATURE"
	HeaderTimestamp  = "POLY_TIMESTAMP"
	HeaderNonce      = "POLY_NONCE"
	HeaderAPIKey     = "POLY_API_KEY"
	HeaderPassphrase = "POLY_PASSPHRASE"

	// Builder attribution headers, same shape as the L2 set.
	HeaderBuilderAPIKey     = "POLY_BUILDER_API_KEY"
	HeaderBuilderSignature  = "POLY_BUILDER_SIGNATURE"
	HeaderBuilderTimestamp  = "POLY_BUILDER_TIMESTAMP"
	HeaderBuilderPassphrase = "POLY_BUILDER_PASSPHRASE"
)

// CreateL1Headers builds the one-time handshake headers used to mint or
// derive API credentials. The signature is an EIP-712 ClobAuth attestation.
func CreateL1Headers(signer Signer, timestamp int64, nonce uint64) (map[string]string, error) {
	chainID := chainIDOrZero(signer.ChainID())
	signature, err := signClobAuth(signer, chainID, timestamp, nonce)
	if err != nil {
		return nil, err
	}

	return map[string]string{
		HeaderAddress:   signer.Address().Hex(),
		HeaderSignature: signature,
		HeaderTimestamp: strconv.FormatInt(timestamp, 10),
		HeaderNonce:     strconv.FormatUint(nonce, 10),
	}, nil
}

// CreateL2Headers builds the per-request headers carried by every
// authenticated call. The signature is an HMAC over
// timestamp + method + path + body using the credential secret.
func CreateL2Headers(address common.Address, creds *APIKey, timestamp int64, method, requestPath, body string) (map[string]string, error) {
	signature, err := SignL2(creds.Secret, timestamp, method, requestPath, body)
	if err != nil {
		return nil, err
	}

	return map[string]string{
		HeaderAddress:    address.Hex(),
		HeaderSignature:  signature,
		HeaderTimestamp:  strconv.FormatInt(timestamp, 10),
		HeaderAPIKey:     creds.Key,
		HeaderPassphrase: creds.Passphrase,
	}, nil
}

// BuilderHeaders builds the attribution headers a builder attaches on top of
// the user's L2 set, signed with the builder's own credentials.
func BuilderHeaders(creds *APIKey, timestamp int64, method, requestPath, body string) (map[string]string, error) {
	signature, err := SignL2(creds.Secret, timestamp, method, requestPath, body)
	if err != nil {
		return nil, err
	}

	return map[string]string{
		HeaderBuilderAPIKey:     creds.Key,
		HeaderBuilderSignature:  signature,
		HeaderBuilderTimestamp:  strconv.FormatInt(timestamp, 10),
		HeaderBuilderPassphrase: creds.Passphrase,
	}, nil
}

// SignL2 computes the base64url HMAC-SHA256 the CLOB expects. The secret is
// itself base64url-encoded.
func SignL2(secret string, timestamp int64, method, requestPath, body string) (string, error) {
	key, err := base64.URLEncoding.DecodeString(secret)
	if err != nil {
		return "", fmt.Errorf("invalid api secret: %w", err)
	}

	message := strconv.FormatInt(timestamp, 10) + method + requestPath + body

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(message))

	return base64.URLEncoding.EncodeToString(mac.Sum(nil)), nil
}
