package data

import "github.com/shopspring/decimal"

// Position is one user's holding in one market outcome.
type Position struct {
	ProxyWallet  string          `json:"proxyWallet"`
	Asset        string          `json:"asset"`
	ConditionID  string          `json:"conditionId"`
	Size         decimal.Decimal `json:"size"`
	AvgPrice     decimal.Decimal `json:"avgPrice"`
	InitialValue decimal.Decimal `json:"initialValue"`
	CurrentValue decimal.Decimal `json:"currentValue"`
	CashPnL      decimal.Decimal `json:"cashPnl"`
	PercentPnL   decimal.Decimal `json:"percentPnl"`
	TotalBought  decimal.Decimal `json:"totalBought"`
	RealizedPnL  decimal.Decimal `json:"realizedPnl"`
	CurPrice     decimal.Decimal `json:"curPrice"`
	Redeemable   bool            `json:"redeemable"`
	Title        string          `json:"title"`
	Slug         string          `json:"slug"`
	Outcome      string          `json:"outcome"`
	OutcomeIndex int             `json:"outcomeIndex"`
	EndDate      string          `json:"endDate"`
	NegativeRisk bool            `json:"negativeRisk"`
}

// Trade is one fill from the public trade feed.
type Trade struct {
	ProxyWallet     string          `json:"proxyWallet"`
	Side            string          `json:"side"`
	Asset           string          `json:"asset"`
	ConditionID     string          `json:"conditionId"`
	Size            decimal.Decimal `json:"size"`
	Price           decimal.Decimal `json:"price"`
	Timestamp       int64           `json:"timestamp"`
	Title           string          `json:"title"`
	Slug            string          `json:"slug"`
	Outcome         string          `json:"outcome"`
	OutcomeIndex    int             `json:"outcomeIndex"`
	TransactionHash string          `json:"transactionHash"`
}

// Activity is one on-chain action (trade, split, merge, redeem, reward).
type Activity struct {
	ProxyWallet     string          `json:"proxyWallet"`
	Timestamp       int64           `json:"timestamp"`
	ConditionID     string          `json:"conditionId"`
	Type            string          `json:"type"`
	Size            decimal.Decimal `json:"size"`
	USDCSize        decimal.Decimal `json:"usdcSize"`
	TransactionHash string          `json:"transactionHash"`
	Price           decimal.Decimal `json:"price"`
	Asset           string          `json:"asset"`
	Side            string          `json:"side"`
	Outcome         string          `json:"outcome"`
	Title           string          `json:"title"`
	Slug            string          `json:"slug"`
}

// Holder is one of the largest holders of a market outcome token.
type Holder struct {
	ProxyWallet  string          `json:"proxyWallet"`
	Bio          string          `json:"bio"`
	Asset        string          `json:"asset"`
	Pseudonym    string          `json:"pseudonym"`
	Amount       decimal.Decimal `json:"amount"`
	OutcomeIndex int             `json:"outcomeIndex"`
	Name         string          `json:"name"`
	ProfileImage string          `json:"profileImage"`
}

// TokenHolders groups holders by outcome token.
type TokenHolders struct {
	Token   string   `json:"token"`
	Holders []Holder `json:"holders"`
}

// Value is a user's total portfolio value across the given markets.
type Value struct {
	User  string          `json:"user"`
	Value decimal.Decimal `json:"value"`
}

// LeaderboardEntry is one row of the volume/profit leaderboard.
type LeaderboardEntry struct {
	ProxyWallet  string          `json:"proxyWallet"`
	Amount       decimal.Decimal `json:"amount"`
	Pseudonym    string          `json:"pseudonym"`
	Name         string          `json:"name"`
	Bio          string          `json:"bio"`
	ProfileImage string          `json:"profileImage"`
	Rank         string          `json:"rank"`
}

// TradedResponse maps user address to the amount they traded.
type TradedResponse map[string]decimal.Decimal

// OpenInterest is platform-wide open interest in collateral units.
type OpenInterest struct {
	Amount decimal.Decimal `json:"amount"`
}

// LiveVolume is the live traded volume for one market.
type LiveVolume struct {
	Market string          `json:"market"`
	Value  decimal.Decimal `json:"value"`
}

// BuilderLeaderboardEntry is one row of the builder volume leaderboard.
type BuilderLeaderboardEntry struct {
	Builder string          `json:"builder"`
	Volume  decimal.Decimal `json:"volume"`
	Trades  int64           `json:"trades"`
	Rank    int64           `json:"rank"`
}

// BuilderVolume is one builder's attributed volume over a period.
type BuilderVolume struct {
	Builder string          `json:"builder"`
	Date    string          `json:"date"`
	Volume  decimal.Decimal `json:"volume"`
	Trades  int64           `json:"trades"`
}

// PositionsRequest filters the positions listing.
type PositionsRequest struct {
	User          string
	Market        string
	SizeThreshold float64
	Redeemable    *bool
	SortBy        string
	SortDirection string
	Limit         int
	Offset        int
}

// TradesRequest filters the public trade feed.
type TradesRequest struct {
	User         string
	Market       string
	Asset        string
	Side         string
	TakerOnly    *bool
	FilterType   string
	FilterAmount float64
	Limit        int
	Offset       int
}

// ActivityRequest filters the activity feed.
type ActivityRequest struct {
	User          string
	Market        string
	Type          string
	Side          string
	Start         int64
	End           int64
	SortBy        string
	SortDirection string
	Limit         int
	Offset        int
}

// LeaderboardRequest selects a leaderboard window.
type LeaderboardRequest struct {
	Window string
	Type   string
	Limit  int
}
