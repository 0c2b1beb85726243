package clob

import (
	"context"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/GoPolymarket/polymarket-go-sdk/pkg/apierror"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/auth"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/clob/clobtypes"
)

// orderMessage lays an order out as EIP-712 message fields.
func orderMessage(order *clobtypes.Order) apitypes.TypedDataMessage {
	sigType := int64(auth.SignatureEOA)
	if order.SignatureType != nil {
		sigType = int64(*order.SignatureType)
	}
	return apitypes.TypedDataMessage{
		"salt":          order.Salt.String(),
		"maker":         order.Maker.Hex(),
		"signer":        order.Signer.Hex(),
		"taker":         order.Taker.Hex(),
		"tokenId":       order.TokenID.String(),
		"makerAmount":   order.MakerAmount.String(),
		"takerAmount":   order.TakerAmount.String(),
		"expiration":    order.Expiration.String(),
		"nonce":         order.Nonce.String(),
		"feeRateBps":    order.FeeRateBps.String(),
		"side":          math.NewHexOrDecimal256(auth.SideValue(order.Side)),
		"signatureType": math.NewHexOrDecimal256(sigType),
	}
}

// Sign produces a submittable order from a signable one. The signing domain
// depends on whether the token trades on the negative-risk exchange, which
// is resolved through the metadata cache.
func (c *Client) Sign(ctx context.Context, signable *clobtypes.SignableOrder) (*clobtypes.SignedOrder, error) {
	sess, err := c.requireSession()
	if err != nil {
		return nil, err
	}
	if signable == nil || signable.Order == nil {
		return nil, apierror.Validation("signable order is required")
	}

	negRisk, err := c.CachedNegRisk(ctx, signable.Order.TokenID.String())
	if err != nil {
		return nil, err
	}

	chainID := sess.signer.ChainID().Int64()
	contracts, err := auth.ContractConfig(chainID, negRisk)
	if err != nil {
		return nil, err
	}

	domain := auth.OrderDomain(chainID, contracts.Exchange)
	signature, err := sess.signer.SignTypedData(domain, auth.OrderTypes(), orderMessage(signable.Order), auth.OrderPrimaryType)
	if err != nil {
		return nil, err
	}

	return &clobtypes.SignedOrder{
		Order:     *signable.Order,
		Signature: hexutil.Encode(signature),
		Owner:     sess.creds.Key,
		OrderType: signable.OrderType,
		PostOnly:  signable.PostOnly,
	}, nil
}

// SignAndPost signs an already-built order and submits it.
func (c *Client) SignAndPost(ctx context.Context, signable *clobtypes.SignableOrder) (clobtypes.OrderResponse, error) {
	signed, err := c.Sign(ctx, signable)
	if err != nil {
		return clobtypes.OrderResponse{}, err
	}
	return c.PostOrder(ctx, signed)
}
