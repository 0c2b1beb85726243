package clob

import (
	"context"
	"strconv"

	"github.com/shopspring/decimal"
)

// Cache key prefixes for per-market metadata.
const (
	cacheKeyTickSize = "tick_size:"
	cacheKeyNegRisk  = "neg_risk:"
	cacheKeyFeeRate  = "fee_rate:"
)

// cachedString reads a metadata value through the cache, deduplicating
// concurrent fills per key: at most one fetch is in flight for a given key
// and every waiter observes its result.
func (c *Client) cachedString(ctx context.Context, key string, fetch func(context.Context) (string, error)) (string, error) {
	if value, ok, err := c.core.store.Get(ctx, key); err == nil && ok {
		return value, nil
	}

	result, err, _ := c.core.flight.Do(key, func() (any, error) {
		// A concurrent fill may have landed between the miss and the
		// singleflight admission.
		if value, ok, err := c.core.store.Get(ctx, key); err == nil && ok {
			return value, nil
		}
		value, err := fetch(ctx)
		if err != nil {
			return "", err
		}
		if err := c.core.store.Set(ctx, key, value); err != nil {
			return "", err
		}
		return value, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// CachedTickSize returns the minimum price increment for a token, fetching
// and caching it on first use.
func (c *Client) CachedTickSize(ctx context.Context, tokenID string) (decimal.Decimal, error) {
	value, err := c.cachedString(ctx, cacheKeyTickSize+tokenID, func(ctx context.Context) (string, error) {
		resp, err := c.TickSize(ctx, tokenID)
		if err != nil {
			return "", err
		}
		return resp.MinimumTickSize.String(), nil
	})
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(value)
}

// CachedNegRisk returns whether a token trades on the negative-risk
// exchange, fetching and caching it on first use.
func (c *Client) CachedNegRisk(ctx context.Context, tokenID string) (bool, error) {
	value, err := c.cachedString(ctx, cacheKeyNegRisk+tokenID, func(ctx context.Context) (string, error) {
		resp, err := c.NegRisk(ctx, tokenID)
		if err != nil {
			return "", err
		}
		return strconv.FormatBool(resp.NegRisk), nil
	})
	if err != nil {
		return false, err
	}
	return strconv.ParseBool(value)
}

// CachedFeeRateBps returns the base fee in basis points for a token,
// fetching and caching it on first use.
func (c *Client) CachedFeeRateBps(ctx context.Context, tokenID string) (decimal.Decimal, error) {
	value, err := c.cachedString(ctx, cacheKeyFeeRate+tokenID, func(ctx context.Context) (string, error) {
		resp, err := c.FeeRateBps(ctx, tokenID)
		if err != nil {
			return "", err
		}
		return resp.BaseFee.String(), nil
	})
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(value)
}

// InvalidateCaches drops all cached market metadata. Subsequent reads fetch
// fresh values.
func (c *Client) InvalidateCaches(ctx context.Context) error {
	return c.core.store.Clear(ctx)
}
