package rfq

import (
	"github.com/shopspring/decimal"

	"github.com/GoPolymarket/polymarket-go-sdk/pkg/types"
)

// UserType tells the RFQ system how the user's wallet verifies signatures.
type UserType int

const (
	UserEOA UserType = iota
	UserPolyProxy
	UserPolyGnosisSafe
)

// Request is an open request-for-quote.
type Request struct {
	RequestID    string          `json:"requestId"`
	ProxyAddress string          `json:"proxyAddress"`
	Market       string          `json:"market"`
	Token        string          `json:"token"`
	Complement   string          `json:"complement"`
	State        string          `json:"state"`
	Side         string          `json:"side"`
	SizeIn       decimal.Decimal `json:"sizeIn"`
	SizeOut      decimal.Decimal `json:"sizeOut"`
	Price        decimal.Decimal `json:"price"`
	Expiry       int64           `json:"expiry"`
	CreatedAt    int64           `json:"createdAt"`
}

// Quote is a market maker's answer to a request.
type Quote struct {
	QuoteID      string          `json:"quoteId"`
	RequestID    string          `json:"requestId"`
	ProxyAddress string          `json:"proxyAddress"`
	Token        string          `json:"token"`
	State        string          `json:"state"`
	Side         string          `json:"side"`
	SizeIn       decimal.Decimal `json:"sizeIn"`
	SizeOut      decimal.Decimal `json:"sizeOut"`
	Condition    string          `json:"condition"`
	Expiry       int64           `json:"expiry"`
	CreatedAt    int64           `json:"createdAt"`
}

// Page is one page of a cursor-paginated RFQ listing.
type Page[T any] = types.Page[T]

// CreateRequestArgs are the parameters for opening a request.
type CreateRequestArgs struct {
	Market   string          `json:"market"`
	Token    string          `json:"token"`
	Side     string          `json:"side"`
	SizeIn   decimal.Decimal `json:"sizeIn"`
	SizeOut  decimal.Decimal `json:"sizeOut"`
	UserType UserType        `json:"userType"`
	Expiry   int64           `json:"expiry,omitempty"`
}

// CreateRequestResponse identifies the opened request.
type CreateRequestResponse struct {
	RequestID string `json:"requestId"`
}

// CreateQuoteArgs are the parameters for quoting a request.
type CreateQuoteArgs struct {
	RequestID string          `json:"requestId"`
	Token     string          `json:"token"`
	Side      string          `json:"side"`
	SizeIn    decimal.Decimal `json:"sizeIn"`
	SizeOut   decimal.Decimal `json:"sizeOut"`
	UserType  UserType        `json:"userType"`
	Expiry    int64           `json:"expiry,omitempty"`
}

// CreateQuoteResponse identifies the submitted quote.
type CreateQuoteResponse struct {
	QuoteID string `json:"quoteId"`
}

// AcceptQuoteArgs selects which quote fills a request.
type AcceptQuoteArgs struct {
	RequestID string `json:"requestId"`
	QuoteID   string `json:"quoteId"`
}

// ApproveOrderArgs is the maker's last-look approval of an accepted quote.
type ApproveOrderArgs struct {
	QuoteID string `json:"quoteId"`
}

// ApproveOrderResponse lists the trades created by an approval.
type ApproveOrderResponse struct {
	TradeIDs []string `json:"tradeIds"`
}

// RequestsFilter narrows the requests listing.
type RequestsFilter struct {
	Market string
	State  string
}

// QuotesFilter narrows the quotes listing.
type QuotesFilter struct {
	RequestID string
	State     string
}
