package clob

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/GoPolymarket/polymarket-go-sdk/pkg/apierror"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/auth"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/clob/clobtypes"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/types"
)

// collateralScale converts human-readable amounts to 1e6 base units (USDC
// has six decimals).
var collateralScale = decimal.NewFromInt(1_000_000)

// OrderBuilder assembles a signable order, resolving per-market metadata
// (tick size, fee rate) through the client's caches.
//
// Limit kinds (GTC, GTD) require Price and Size. Market kinds (FAK, FOK)
// require Amount and a marketable Price: the CLOB has no true market orders,
// a marketable limit is submitted instead.
type OrderBuilder struct {
	client *Client
	signer auth.Signer

	tokenID    string
	price      decimal.Decimal
	size       decimal.Decimal
	amount     decimal.Decimal
	side       string
	orderType  clobtypes.OrderType
	postOnly   bool
	expiration int64
	nonce      *uint64
	feeRateBps *decimal.Decimal
	taker      common.Address
}

// NewOrderBuilder starts a builder against the given client and signer.
func NewOrderBuilder(client *Client, signer auth.Signer) *OrderBuilder {
	return &OrderBuilder{
		client:    client,
		signer:    signer,
		orderType: clobtypes.OrderTypeGTC,
	}
}

// TokenID sets the outcome token the order trades.
func (b *OrderBuilder) TokenID(tokenID string) *OrderBuilder {
	b.tokenID = tokenID
	return b
}

// Price sets the limit price in collateral per share.
func (b *OrderBuilder) Price(price float64) *OrderBuilder {
	b.price = decimal.NewFromFloat(price)
	return b
}

// Size sets the order size in shares (limit kinds).
func (b *OrderBuilder) Size(size float64) *OrderBuilder {
	b.size = decimal.NewFromFloat(size)
	return b
}

// Amount sets the order amount for market kinds: collateral to spend for a
// BUY, shares to sell for a SELL.
func (b *OrderBuilder) Amount(amount float64) *OrderBuilder {
	b.amount = decimal.NewFromFloat(amount)
	return b
}

// Side sets BUY or SELL.
func (b *OrderBuilder) Side(side string) *OrderBuilder {
	b.side = strings.ToUpper(strings.TrimSpace(side))
	return b
}

// OrderType sets the time-in-force.
func (b *OrderBuilder) OrderType(orderType clobtypes.OrderType) *OrderBuilder {
	b.orderType = orderType
	return b
}

// PostOnly rejects the order instead of crossing the book.
func (b *OrderBuilder) PostOnly(postOnly bool) *OrderBuilder {
	b.postOnly = postOnly
	return b
}

// ExpirationUnix sets the GTD expiration in unix seconds.
func (b *OrderBuilder) ExpirationUnix(expiration int64) *OrderBuilder {
	b.expiration = expiration
	return b
}

// Nonce overrides the exchange nonce.
func (b *OrderBuilder) Nonce(nonce uint64) *OrderBuilder {
	b.nonce = &nonce
	return b
}

// FeeRateBps overrides the cached fee rate.
func (b *OrderBuilder) FeeRateBps(feeRateBps float64) *OrderBuilder {
	fee := decimal.NewFromFloat(feeRateBps)
	b.feeRateBps = &fee
	return b
}

// Taker restricts the order to a specific counterparty. The zero address
// (default) leaves it open.
func (b *OrderBuilder) Taker(taker common.Address) *OrderBuilder {
	b.taker = taker
	return b
}

// BuildSignable validates the builder and produces a signable order.
func (b *OrderBuilder) BuildSignable() (*clobtypes.SignableOrder, error) {
	return b.BuildSignableWithContext(context.Background())
}

// BuildSignableWithContext validates the builder, resolves market metadata
// and produces a signable order.
func (b *OrderBuilder) BuildSignableWithContext(ctx context.Context) (*clobtypes.SignableOrder, error) {
	if b.tokenID == "" {
		return nil, apierror.Validation("token id is required")
	}
	if b.side != "BUY" && b.side != "SELL" {
		return nil, apierror.Validation("side must be BUY or SELL")
	}

	tokenID, err := types.U256FromString(b.tokenID)
	if err != nil {
		return nil, apierror.Validationf("invalid token id %q: %v", b.tokenID, err)
	}

	marketKind := b.orderType == clobtypes.OrderTypeFAK || b.orderType == clobtypes.OrderTypeFOK
	price := b.price
	size := b.size

	if marketKind {
		if !b.amount.IsPositive() {
			return nil, apierror.Validationf("%s orders require a positive amount", b.orderType)
		}
		if !price.IsPositive() {
			return nil, apierror.Validationf("%s orders require a marketable price", b.orderType)
		}
		// A BUY amount is collateral, a SELL amount is shares.
		if b.side == "BUY" {
			size = b.amount.Div(price)
		} else {
			size = b.amount
		}
	} else {
		if !price.IsPositive() || !size.IsPositive() {
			return nil, apierror.Validationf("%s orders require a positive price and size", b.orderType)
		}
	}

	if b.orderType == clobtypes.OrderTypeGTD && b.expiration <= 0 {
		return nil, apierror.Validation("GTD orders require an expiration")
	}

	tick, err := b.client.CachedTickSize(ctx, b.tokenID)
	if err != nil {
		return nil, err
	}
	if tick.IsPositive() && !price.Mod(tick).IsZero() {
		return nil, apierror.Validationf("price %s does not align to tick size %s", price, tick)
	}

	feeRate := decimal.Zero
	if b.feeRateBps != nil {
		feeRate = *b.feeRateBps
	} else {
		cached, err := b.client.CachedFeeRateBps(ctx, b.tokenID)
		if err != nil {
			return nil, err
		}
		feeRate = cached
	}

	var makerAmount, takerAmount decimal.Decimal
	if b.side == "BUY" {
		makerAmount = price.Mul(size).Mul(collateralScale).Round(0)
		takerAmount = size.Mul(collateralScale).Round(0)
	} else {
		makerAmount = size.Mul(collateralScale).Round(0)
		takerAmount = price.Mul(size).Mul(collateralScale).Round(0)
	}
	if !makerAmount.IsPositive() || !takerAmount.IsPositive() {
		return nil, apierror.Validation("order amounts round to zero")
	}

	maker := b.signer.Address()
	sigType := int(auth.SignatureEOA)
	saltGen := defaultSaltGenerator
	var nonce uint64
	if sess := b.client.session; sess != nil {
		maker = common.HexToAddress(sess.funder)
		if maker == (common.Address{}) {
			maker = b.signer.Address()
		}
		sigType = int(sess.sigType)
		nonce = sess.nonce
		if sess.saltGen != nil {
			saltGen = sess.saltGen
		}
	}
	if b.nonce != nil {
		nonce = *b.nonce
	}

	var expiration types.U256
	if b.orderType == clobtypes.OrderTypeGTD {
		expiration = types.NewU256(b.expiration)
	} else {
		expiration = types.NewU256(0)
	}

	order := &clobtypes.Order{
		Salt:          types.NewU256(saltGen()),
		Maker:         maker,
		Signer:        b.signer.Address(),
		Taker:         b.taker,
		TokenID:       tokenID,
		MakerAmount:   makerAmount,
		TakerAmount:   takerAmount,
		Expiration:    expiration,
		Nonce:         types.U256{Int: new(big.Int).SetUint64(nonce)},
		FeeRateBps:    feeRate,
		Side:          b.side,
		SignatureType: &sigType,
	}

	return &clobtypes.SignableOrder{
		Order:     order,
		OrderType: b.orderType,
		PostOnly:  b.postOnly,
	}, nil
}
