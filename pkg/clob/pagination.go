package clob

import (
	"context"
	"iter"

	"github.com/GoPolymarket/polymarket-go-sdk/pkg/types"
)

// StreamPages turns a page fetcher into a sequence of items, following
// cursors until the terminal sentinel. The terminal cursor is never passed
// back to fetch.
func StreamPages[T any](ctx context.Context, fetch func(ctx context.Context, cursor string) (types.Page[T], error)) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		cursor := ""
		for {
			page, err := fetch(ctx, cursor)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			for _, item := range page.Data {
				if !yield(item, nil) {
					return
				}
			}
			if page.Last() || page.NextCursor == "" || page.NextCursor == cursor {
				return
			}
			cursor = page.NextCursor
		}
	}
}
