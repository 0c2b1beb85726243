package stream

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Level is one price level of a live book.
type Level struct {
	Price decimal.Decimal
	Size  decimal.Decimal
}

// Orderbook is the in-memory state of one token's book, maintained from
// snapshot and delta events. Levels are kept in sorted slices: Polymarket
// books are sparse, so linear scans beat tree structures in practice.
type Orderbook struct {
	TokenID     string
	bids        []Level // high to low
	asks        []Level // low to high
	lastUpdated time.Time
	mu          sync.RWMutex
}

func newOrderbook(tokenID string) *Orderbook {
	return &Orderbook{TokenID: tokenID}
}

// snapshot replaces the whole book.
func (ob *Orderbook) snapshot(bids, asks []Level) {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	ob.bids = bids
	ob.asks = asks
	ob.lastUpdated = time.Now()
}

// update applies one price/size delta. Size zero removes the level.
func (ob *Orderbook) update(side string, priceStr, sizeStr string) error {
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return err
	}
	size, err := decimal.NewFromString(sizeStr)
	if err != nil {
		return err
	}

	ob.mu.Lock()
	defer ob.mu.Unlock()
	if side == "BUY" {
		updateLevel(&ob.bids, price, size, true)
	} else {
		updateLevel(&ob.asks, price, size, false)
	}
	ob.lastUpdated = time.Now()
	return nil
}

func updateLevel(levels *[]Level, price, size decimal.Decimal, descending bool) {
	idx := -1
	for i, l := range *levels {
		if l.Price.Equal(price) {
			idx = i
			break
		}
	}

	if size.IsZero() {
		if idx != -1 {
			*levels = append((*levels)[:idx], (*levels)[idx+1:]...)
		}
		return
	}

	if idx != -1 {
		(*levels)[idx].Size = size
		return
	}

	*levels = append(*levels, Level{Price: price, Size: size})
	if descending {
		sort.Slice(*levels, func(i, j int) bool {
			return (*levels)[i].Price.GreaterThan((*levels)[j].Price)
		})
	} else {
		sort.Slice(*levels, func(i, j int) bool {
			return (*levels)[i].Price.LessThan((*levels)[j].Price)
		})
	}
}

// Levels returns a copy of the current book state.
func (ob *Orderbook) Levels() (bids, asks []Level) {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	bids = make([]Level, len(ob.bids))
	copy(bids, ob.bids)
	asks = make([]Level, len(ob.asks))
	copy(asks, ob.asks)
	return bids, asks
}

// BestBid returns the highest bid, or false when the side is empty.
func (ob *Orderbook) BestBid() (Level, bool) {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	if len(ob.bids) == 0 {
		return Level{}, false
	}
	return ob.bids[0], true
}

// BestAsk returns the lowest ask, or false when the side is empty.
func (ob *Orderbook) BestAsk() (Level, bool) {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	if len(ob.asks) == 0 {
		return Level{}, false
	}
	return ob.asks[0], true
}

func parseLevel(raw rawLevel) (Level, error) {
	price, err := decimal.NewFromString(raw.Price)
	if err != nil {
		return Level{}, err
	}
	size, err := decimal.NewFromString(raw.Size)
	if err != nil {
		return Level{}, err
	}
	return Level{Price: price, Size: size}, nil
}

func sortLevels(levels []Level, descending bool) {
	sort.Slice(levels, func(i, j int) bool {
		if descending {
			return levels[i].Price.GreaterThan(levels[j].Price)
		}
		return levels[i].Price.LessThan(levels[j].Price)
	})
}

// LastUpdated reports when the book last changed.
func (ob *Orderbook) LastUpdated() time.Time {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	return ob.lastUpdated
}
