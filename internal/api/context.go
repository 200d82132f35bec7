package api

import (
	"context"

	"bigcommerce-sdk/internal/store"
)

type ctxKey string

const ctxKeyStore ctxKey = "store"

func WithStore(ctx context.Context, s *store.Store) context.Context {
	return context.WithValue(ctx, ctxKeyStore, s)
}

func StoreFromContext(ctx context.Context) *store.Store {
	v := ctx.Value(ctxKeyStore)
	if v == nil {
		return nil
	}
	s, _ := v.(*store.Store)
	return s
}
