package services

import (
	"context"

	"github.com/stripe/stripe-go/v80"

	"github.com/yashrajoria/stripe-bridge/models"
)

const defaultPageSize = 10

// Page is one page of a Stripe list.
type Page[T any] struct {
	Data       []T    `json:"data"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// listIterator is satisfied by every stripe-go resource iterator.
type listIterator interface {
	Next() bool
	Current() interface{}
	Err() error
	Meta() *stripe.ListMeta
}

// pageParams fills stripe list params for a single page.
func pageParams(ctx context.Context, lp *stripe.ListParams, req models.ListRequest) {
	lp.Context = ctx
	lp.Single = true
	limit := req.Limit
	if limit == 0 {
		limit = defaultPageSize
	}
	lp.Limit = stripe.Int64(limit)
	if req.StartingAfter != "" {
		lp.StartingAfter = stripe.String(req.StartingAfter)
	}
	if req.EndingBefore != "" {
		lp.EndingBefore = stripe.String(req.EndingBefore)
	}
}

// allParams fills stripe list params for walking every page.
func allParams(ctx context.Context, lp *stripe.ListParams) {
	lp.Context = ctx
	lp.Limit = stripe.Int64(100)
}

// collectPage drains a single-page iterator. id extracts the cursor.
func collectPage[T any](op string, it listIterator, id func(T) string) (*Page[T], error) {
	page := &Page[T]{Data: []T{}}
	for it.Next() {
		if v, ok := it.Current().(T); ok {
			page.Data = append(page.Data, v)
		}
	}
	if err := it.Err(); err != nil {
		return nil, wrapError(op, err)
	}
	if meta := it.Meta(); meta != nil {
		page.HasMore = meta.HasMore
	}
	if page.HasMore && len(page.Data) > 0 {
		page.NextCursor = id(page.Data[len(page.Data)-1])
	}
	return page, nil
}

// collectAll walks pages until has_more is false or maxItems items have been
// read. maxItems 0 means no cap.
func collectAll[T any](op string, it listIterator, maxItems int) ([]T, error) {
	out := []T{}
	for it.Next() {
		if v, ok := it.Current().(T); ok {
			out = append(out, v)
		}
		if maxItems > 0 && len(out) >= maxItems {
			return out, nil
		}
	}
	if err := it.Err(); err != nil {
		return nil, wrapError(op, err)
	}
	return out, nil
}
