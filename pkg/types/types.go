// Package types holds wire primitives shared by the CLOB, Data and RFQ clients.
package types

import (
	"bytes"
	"fmt"
	"math/big"
)

// TerminalCursor is the sentinel next_cursor value marking the end of a
// paginated stream. It is base64("-1").
const TerminalCursor = "LTE="

// U256 is an arbitrary-precision unsigned integer. Token IDs and salts exceed
// uint64, and the API emits them both as JSON numbers and as decimal strings,
// so we marshal through big.Int.
type U256 struct {
	Int *big.Int
}

func NewU256(v int64) U256 {
	return U256{Int: big.NewInt(v)}
}

func U256FromString(s string) (U256, error) {
	i, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return U256{}, fmt.Errorf("invalid uint256 literal: %q", s)
	}
	if i.Sign() < 0 {
		return U256{}, fmt.Errorf("uint256 cannot be negative: %q", s)
	}
	return U256{Int: i}, nil
}

func (u U256) String() string {
	if u.Int == nil {
		return "0"
	}
	return u.Int.String()
}

func (u U256) IsZero() bool {
	return u.Int == nil || u.Int.Sign() == 0
}

// BigInt returns the underlying integer, never nil.
func (u U256) BigInt() *big.Int {
	if u.Int == nil {
		return new(big.Int)
	}
	return u.Int
}

func (u U256) MarshalJSON() ([]byte, error) {
	return []byte(`"` + u.String() + `"`), nil
}

func (u *U256) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(bytes.TrimSpace(data), `"`)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		u.Int = new(big.Int)
		return nil
	}
	parsed, err := U256FromString(string(data))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// Side of an order or trade.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Page is one page of a cursor-paginated response.
type Page[T any] struct {
	Data       []T    `json:"data"`
	NextCursor string `json:"next_cursor"`
	Limit      int64  `json:"limit"`
	Count      int64  `json:"count"`
}

// Last reports whether this page is the final one.
func (p Page[T]) Last() bool {
	return p.NextCursor == TerminalCursor
}
