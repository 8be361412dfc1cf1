package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/ytdash/internal/shared"
)

// PageSize is the number of items requested per page.
const PageSize int64 = 50

// PageFunc fetches the page at cursor ("" for the first page) and returns its items
// together with the cursor of the next page ("" when this was the last one).
type PageFunc[T any] func(ctx context.Context, cursor string) (items []T, next string, err error)

// Paginate calls fetch until a page is returned without a next cursor and returns every item in API order.
//
// On failure the items accumulated before the failing page are returned along with the error.
func Paginate[T any](ctx context.Context, fetch PageFunc[T]) ([]T, error) {
	var (
		all    []T
		cursor string
	)

	for {
		if err := ctx.Err(); err != nil {
			return all, err
		}

		items, next, err := fetch(ctx, cursor)
		all = append(all, items...)
		if err != nil {
			return all, err
		}
		if next == "" {
			return all, nil
		}
		if next == cursor {
			return all, fmt.Errorf("%w: page cursor %q did not advance", shared.ErrAPIRequest, next)
		}
		cursor = next
	}
}
