package stream

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func level(price, size string) Level {
	return Level{
		Price: decimal.RequireFromString(price),
		Size:  decimal.RequireFromString(size),
	}
}

func TestOrderbookSnapshotOrdering(t *testing.T) {
	ob := newOrderbook("token-1")
	ob.snapshot(
		[]Level{level("0.55", "100"), level("0.54", "50")},
		[]Level{level("0.56", "80"), level("0.60", "10")},
	)

	bid, ok := ob.BestBid()
	require.True(t, ok)
	assert.Equal(t, "0.55", bid.Price.String())

	ask, ok := ob.BestAsk()
	require.True(t, ok)
	assert.Equal(t, "0.56", ask.Price.String())
}

func TestOrderbookUpdateInsertsSorted(t *testing.T) {
	ob := newOrderbook("token-1")
	ob.snapshot([]Level{level("0.50", "10")}, nil)

	require.NoError(t, ob.update("BUY", "0.52", "5"))
	require.NoError(t, ob.update("BUY", "0.48", "7"))

	bids, _ := ob.Levels()
	require.Len(t, bids, 3)
	assert.Equal(t, "0.52", bids[0].Price.String())
	assert.Equal(t, "0.5", bids[1].Price.String())
	assert.Equal(t, "0.48", bids[2].Price.String())
}

func TestOrderbookUpdateReplacesAndRemoves(t *testing.T) {
	ob := newOrderbook("token-1")
	ob.snapshot(nil, []Level{level("0.60", "10"), level("0.62", "20")})

	require.NoError(t, ob.update("SELL", "0.60", "15"))
	_, asks := ob.Levels()
	assert.Equal(t, "15", asks[0].Size.String())

	require.NoError(t, ob.update("SELL", "0.60", "0"))
	_, asks = ob.Levels()
	require.Len(t, asks, 1)
	assert.Equal(t, "0.62", asks[0].Price.String())
}

func TestOrderbookEmptySides(t *testing.T) {
	ob := newOrderbook("token-1")
	_, ok := ob.BestBid()
	assert.False(t, ok)
	_, ok = ob.BestAsk()
	assert.False(t, ok)
}

func TestOrderbookRejectsMalformedLevel(t *testing.T) {
	ob := newOrderbook("token-1")
	assert.Error(t, ob.update("BUY", "not-a-price", "1"))
	assert.Error(t, ob.update("BUY", "0.5", "not-a-size"))
}
