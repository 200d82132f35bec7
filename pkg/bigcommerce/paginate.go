package bigcommerce

import (
	"context"
	"iter"
)

// Pager is a search value that can be advanced to the page after p.
type Pager[S any] interface {
	Next(p Pagination) S
}

// Pages walks a paged listing lazily. Each page is fetched only when the
// range loop asks for it. Iteration ends after the last page, after a failed
// result (which is still yielded), on a transport error, or when the loop breaks.
//
//	for page, err := range bigcommerce.Pages(ctx, search, client.SearchOrders) {
//		...
//	}
func Pages[T any, S Pager[S]](ctx context.Context, first S, fetch func(context.Context, S) (PagedResult[T], error)) iter.Seq2[PagedResult[T], error] {
	return func(yield func(PagedResult[T], error) bool) {
		s := first
		for {
			if err := ctx.Err(); err != nil {
				yield(PagedResult[T]{}, err)
				return
			}
			page, err := fetch(ctx, s)
			if err != nil {
				yield(PagedResult[T]{}, err)
				return
			}
			if !yield(page, nil) {
				return
			}
			if !page.Success() || !page.HasNextPage() {
				return
			}
			s = s.Next(page.Pagination)
		}
	}
}
