// Package clobtypes defines the request and response types exchanged with
// the CLOB REST API.
package clobtypes

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/GoPolymarket/polymarket-go-sdk/pkg/types"
)

// OrderType controls how the matching engine treats an order.
type OrderType string

const (
	// OrderTypeGTC rests on the book until cancelled.
	OrderTypeGTC OrderType = "GTC"
	// OrderTypeGTD rests on the book until its expiration.
	OrderTypeGTD OrderType = "GTD"
	// OrderTypeFAK fills what it can immediately and cancels the rest.
	OrderTypeFAK OrderType = "FAK"
	// OrderTypeFOK fills entirely and immediately or not at all.
	OrderTypeFOK OrderType = "FOK"
)

// Order is the exchange order payload that gets hashed and signed. Amounts
// are in 1e6 collateral base units.
type Order struct {
	Salt          types.U256      `json:"salt"`
	Maker         common.Address  `json:"maker"`
	Signer        common.Address  `json:"signer"`
	Taker         common.Address  `json:"taker"`
	TokenID       types.U256      `json:"tokenId"`
	MakerAmount   decimal.Decimal `json:"makerAmount"`
	TakerAmount   decimal.Decimal `json:"takerAmount"`
	Expiration    types.U256      `json:"expiration"`
	Nonce         types.U256      `json:"nonce"`
	FeeRateBps    decimal.Decimal `json:"feeRateBps"`
	Side          string          `json:"side"`
	SignatureType *int            `json:"signatureType,omitempty"`
}

// SignableOrder is a fully-built order awaiting a signature, carried together
// with the execution parameters that are not part of the signed payload.
type SignableOrder struct {
	Order     *Order    `json:"order"`
	OrderType OrderType `json:"order_type"`
	PostOnly  bool      `json:"post_only"`
}

// SignedOrder is a signable order plus its signature, ready to submit.
// Owner is the API key id of the submitting account.
type SignedOrder struct {
	Order     Order
	Signature string
	Owner     string
	OrderType OrderType
	PostOnly  bool
}

// orderWire is the submission shape the CLOB expects: the signed fields plus
// the signature inside one object, with signatureType always present.
type orderWire struct {
	Salt          string `json:"salt"`
	Maker         string `json:"maker"`
	Signer        string `json:"signer"`
	Taker         string `json:"taker"`
	TokenID       string `json:"tokenId"`
	MakerAmount   string `json:"makerAmount"`
	TakerAmount   string `json:"takerAmount"`
	Expiration    string `json:"expiration"`
	Nonce         string `json:"nonce"`
	FeeRateBps    string `json:"feeRateBps"`
	Side          string `json:"side"`
	SignatureType int    `json:"signatureType"`
	Signature     string `json:"signature"`
}

func (s SignedOrder) MarshalJSON() ([]byte, error) {
	sigType := 0
	if s.Order.SignatureType != nil {
		sigType = *s.Order.SignatureType
	}
	wire := orderWire{
		Salt:          s.Order.Salt.String(),
		Maker:         s.Order.Maker.Hex(),
		Signer:        s.Order.Signer.Hex(),
		Taker:         s.Order.Taker.Hex(),
		TokenID:       s.Order.TokenID.String(),
		MakerAmount:   s.Order.MakerAmount.String(),
		TakerAmount:   s.Order.TakerAmount.String(),
		Expiration:    s.Order.Expiration.String(),
		Nonce:         s.Order.Nonce.String(),
		FeeRateBps:    s.Order.FeeRateBps.String(),
		Side:          s.Order.Side,
		SignatureType: sigType,
		Signature:     s.Signature,
	}
	return json.Marshal(struct {
		Order     orderWire `json:"order"`
		Owner     string    `json:"owner"`
		OrderType OrderType `json:"orderType"`
		PostOnly  bool      `json:"postOnly,omitempty"`
	}{wire, s.Owner, s.OrderType, s.PostOnly})
}

// OrderResponse is the matching engine's answer to a submission.
type OrderResponse struct {
	Success         bool     `json:"success"`
	ErrorMsg        string   `json:"errorMsg"`
	OrderID         string   `json:"orderID"`
	TransactionHash string   `json:"transactionHash,omitempty"`
	Status          string   `json:"status"`
	OrderHashes     []string `json:"orderHashes,omitempty"`
	TakingAmount    string   `json:"takingAmount,omitempty"`
	MakingAmount    string   `json:"makingAmount,omitempty"`
}

// PostOrdersResponse is the per-order result list for a batch submission.
type PostOrdersResponse []OrderResponse

// CancelOrderRequest identifies a single order to cancel.
type CancelOrderRequest struct {
	OrderID string `json:"orderID"`
}

// CancelOrdersRequest identifies a batch of orders to cancel.
type CancelOrdersRequest struct {
	OrderIDs []string `json:"orderIDs"`
}

// CancelMarketOrdersRequest cancels all open orders in one market, by market
// (condition id) or by asset id.
type CancelMarketOrdersRequest struct {
	Market  string `json:"market,omitempty"`
	AssetID string `json:"asset_id,omitempty"`
}

// CancelResponse reports which orders were cancelled and which were not,
// keyed by order id with a reason.
type CancelResponse struct {
	Canceled    []string          `json:"canceled"`
	NotCanceled map[string]string `json:"not_canceled"`
}

// CancelAllResponse mirrors CancelResponse for the cancel-all operation.
type CancelAllResponse = CancelResponse

// BookRequest identifies the order book for one token.
type BookRequest struct {
	TokenID string `json:"token_id"`
}

// Level is one price level of an order book side.
type Level struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// Book is an order book snapshot.
type Book struct {
	Market    string  `json:"market"`
	AssetID   string  `json:"asset_id"`
	Timestamp string  `json:"timestamp"`
	Hash      string  `json:"hash"`
	Bids      []Level `json:"bids"`
	Asks      []Level `json:"asks"`
}

// TickSizeResponse carries the minimum price increment for a token.
type TickSizeResponse struct {
	MinimumTickSize decimal.Decimal `json:"minimum_tick_size"`
}

// NegRiskResponse flags whether a token trades on the negative-risk exchange.
type NegRiskResponse struct {
	NegRisk bool `json:"neg_risk"`
}

// FeeRateResponse carries the base fee in basis points for a token.
type FeeRateResponse struct {
	BaseFee decimal.Decimal `json:"base_fee"`
}

// MidpointResponse is the book midpoint for a token.
type MidpointResponse struct {
	Mid decimal.Decimal `json:"mid"`
}

// PriceResponse is the best price on one side of a book.
type PriceResponse struct {
	Price decimal.Decimal `json:"price"`
}

// SpreadResponse is the bid/ask spread for a token.
type SpreadResponse struct {
	Spread decimal.Decimal `json:"spread"`
}

// LastTradePriceResponse is the most recent trade for a token.
type LastTradePriceResponse struct {
	Market string          `json:"market"`
	Price  decimal.Decimal `json:"price"`
	Side   string          `json:"side"`
	Size   decimal.Decimal `json:"size"`
}

// BookParams addresses one token and optionally a side, used by the batch
// midpoint/price/spread/book endpoints.
type BookParams struct {
	TokenID string `json:"token_id"`
	Side    string `json:"side,omitempty"`
}

// PricesHistoryRequest selects a price series for a market token.
type PricesHistoryRequest struct {
	Market   string `json:"market"`
	StartTs  int64  `json:"startTs,omitempty"`
	EndTs    int64  `json:"endTs,omitempty"`
	Interval string `json:"interval,omitempty"`
	Fidelity int64  `json:"fidelity,omitempty"`
}

// PricePoint is one sample of a price history series.
type PricePoint struct {
	Timestamp int64           `json:"t"`
	Price     decimal.Decimal `json:"p"`
}

// PricesHistoryResponse is a price series.
type PricesHistoryResponse struct {
	History []PricePoint `json:"history"`
}

// MarketToken is one outcome token of a market.
type MarketToken struct {
	TokenID string          `json:"token_id"`
	Outcome string          `json:"outcome"`
	Price   decimal.Decimal `json:"price"`
	Winner  bool            `json:"winner"`
}

// Market is the CLOB's view of one market.
type Market struct {
	ConditionID      string          `json:"condition_id"`
	QuestionID       string          `json:"question_id"`
	Question         string          `json:"question"`
	Description      string          `json:"description"`
	MarketSlug       string          `json:"market_slug"`
	Active           bool            `json:"active"`
	Closed           bool            `json:"closed"`
	Archived         bool            `json:"archived"`
	AcceptingOrders  bool            `json:"accepting_orders"`
	EnableOrderBook  bool            `json:"enable_order_book"`
	MinimumTickSize  decimal.Decimal `json:"minimum_tick_size"`
	MinimumOrderSize decimal.Decimal `json:"minimum_order_size"`
	NegRisk          bool            `json:"neg_risk"`
	EndDateISO       string          `json:"end_date_iso"`
	Tokens           []MarketToken   `json:"tokens"`
}

// SimplifiedMarket is the reduced market shape from the simplified endpoints.
type SimplifiedMarket struct {
	ConditionID     string          `json:"condition_id"`
	Active          bool            `json:"active"`
	Closed          bool            `json:"closed"`
	AcceptingOrders bool            `json:"accepting_orders"`
	Rewards         json.RawMessage `json:"rewards,omitempty"`
	Tokens          []MarketToken   `json:"tokens"`
}

// OpenOrder is an order resting on the book, as returned by the data/orders
// endpoints.
type OpenOrder struct {
	ID              string          `json:"id"`
	Status          string          `json:"status"`
	Owner           string          `json:"owner"`
	Maker           string          `json:"maker_address"`
	Market          string          `json:"market"`
	AssetID         string          `json:"asset_id"`
	Side            string          `json:"side"`
	OriginalSize    decimal.Decimal `json:"original_size"`
	SizeMatched     decimal.Decimal `json:"size_matched"`
	Price           decimal.Decimal `json:"price"`
	Expiration      string          `json:"expiration"`
	OrderType       OrderType       `json:"order_type"`
	AssociateTrades []string        `json:"associate_trades,omitempty"`
	CreatedAt       int64           `json:"created_at"`
}

// OpenOrdersRequest filters the open-orders listing.
type OpenOrdersRequest struct {
	ID      string `json:"id,omitempty"`
	Market  string `json:"market,omitempty"`
	AssetID string `json:"asset_id,omitempty"`
}

// MakerOrder is the maker half of a trade fill.
type MakerOrder struct {
	OrderID       string          `json:"order_id"`
	Owner         string          `json:"owner"`
	MakerAddress  string          `json:"maker_address"`
	MatchedAmount decimal.Decimal `json:"matched_amount"`
	Price         decimal.Decimal `json:"price"`
	FeeRateBps    string          `json:"fee_rate_bps"`
	AssetID       string          `json:"asset_id"`
	Outcome       string          `json:"outcome"`
	Side          string          `json:"side"`
}

// Trade is one fill as reported by the trades endpoint.
type Trade struct {
	ID              string          `json:"id"`
	TakerOrderID    string          `json:"taker_order_id"`
	Market          string          `json:"market"`
	AssetID         string          `json:"asset_id"`
	Side            string          `json:"side"`
	Size            decimal.Decimal `json:"size"`
	Price           decimal.Decimal `json:"price"`
	Status          string          `json:"status"`
	MatchTime       string          `json:"match_time"`
	LastUpdate      string          `json:"last_update"`
	Outcome         string          `json:"outcome"`
	Owner           string          `json:"owner"`
	MakerAddress    string          `json:"maker_address"`
	TransactionHash string          `json:"transaction_hash"`
	TraderSide      string          `json:"trader_side"`
	MakerOrders     []MakerOrder    `json:"maker_orders,omitempty"`
}

// TradesRequest filters the trades listing.
type TradesRequest struct {
	ID           string `json:"id,omitempty"`
	Market       string `json:"market,omitempty"`
	AssetID      string `json:"asset_id,omitempty"`
	MakerAddress string `json:"maker_address,omitempty"`
	Before       int64  `json:"before,omitempty"`
	After        int64  `json:"after,omitempty"`
}

// HeartbeatResponse acknowledges a keep-alive, returning the id the next
// heartbeat must carry.
type HeartbeatResponse struct {
	HeartbeatID *uuid.UUID `json:"heartbeat_id"`
}

// APIKeysResponse lists the API key ids minted for an address.
type APIKeysResponse struct {
	APIKeys []string `json:"apiKeys"`
}

// BanStatusResponse reports trading restrictions on the account.
type BanStatusResponse struct {
	ClosedOnly bool `json:"closed_only"`
}

// ServerTimeResponse is the CLOB's clock in unix seconds.
type ServerTimeResponse int64

// AssetType selects which balance/allowance to query.
type AssetType string

const (
	AssetTypeCollateral  AssetType = "COLLATERAL"
	AssetTypeConditional AssetType = "CONDITIONAL"
)

// BalanceAllowanceRequest addresses one asset for the balance query.
type BalanceAllowanceRequest struct {
	AssetType     AssetType `json:"asset_type"`
	TokenID       string    `json:"token_id,omitempty"`
	SignatureType int       `json:"signature_type"`
}

// BalanceAllowanceResponse carries on-chain balance and exchange allowance in
// base units.
type BalanceAllowanceResponse struct {
	Balance   string `json:"balance"`
	Allowance string `json:"allowance"`
}

// Notification is one user notification.
type Notification struct {
	ID      string          `json:"id"`
	Owner   string          `json:"owner"`
	Type    int             `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// OrderScoringResponse reports whether an order currently earns rewards.
type OrderScoringResponse struct {
	Scoring bool `json:"scoring"`
}

// OrdersScoringRequest asks for the scoring status of a batch of orders.
type OrdersScoringRequest struct {
	OrderIDs []string `json:"orderIds"`
}

// OrdersScoringResponse maps order id to scoring status.
type OrdersScoringResponse map[string]bool

// Earning is one market's reward accrual for a user on a given day.
type Earning struct {
	Date         string          `json:"date"`
	Market       string          `json:"market"`
	AssetAddress string          `json:"asset_address"`
	MakerAddress string          `json:"maker_address"`
	Earnings     decimal.Decimal `json:"earnings"`
	AssetRate    decimal.Decimal `json:"asset_rate"`
}

// TotalEarning aggregates a user's rewards across markets for one day.
type TotalEarning struct {
	Date         string          `json:"date"`
	AssetAddress string          `json:"asset_address"`
	MakerAddress string          `json:"maker_address"`
	Earnings     decimal.Decimal `json:"earnings"`
	AssetRate    decimal.Decimal `json:"asset_rate"`
}

// RewardsPercentages maps market condition id to the user's share of that
// market's daily rewards.
type RewardsPercentages map[string]decimal.Decimal

// MarketReward describes the rewards program attached to one market.
type MarketReward struct {
	ConditionID      string          `json:"condition_id"`
	Question         string          `json:"question"`
	MarketSlug       string          `json:"market_slug"`
	EventSlug        string          `json:"event_slug"`
	RewardsMaxSpread decimal.Decimal `json:"rewards_max_spread"`
	RewardsMinSize   decimal.Decimal `json:"rewards_min_size"`
	Tokens           []MarketToken   `json:"tokens"`
}

// BuilderAPIKeyResponse is the credential set minted for a builder.
type BuilderAPIKeyResponse struct {
	Key        string `json:"apiKey"`
	Secret     string `json:"secret"`
	Passphrase string `json:"passphrase"`
}

// BuilderTrade is one attributed fill from the builder trades listing.
type BuilderTrade struct {
	ID        string          `json:"id"`
	Market    string          `json:"market"`
	AssetID   string          `json:"asset_id"`
	Side      string          `json:"side"`
	Size      decimal.Decimal `json:"size"`
	Price     decimal.Decimal `json:"price"`
	MatchTime string          `json:"match_time"`
}
