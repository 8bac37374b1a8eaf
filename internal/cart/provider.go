package cart

import "context"

type storeCtxKey struct{}

// WithStore scopes a store to ctx for downstream handlers.
func WithStore(ctx context.Context, store *Store) context.Context {
	return context.WithValue(ctx, storeCtxKey{}, store)
}

// StoreFrom returns the scoped store, if any.
func StoreFrom(ctx context.Context) (*Store, bool) {
	if ctx == nil {
		return nil, false
	}
	store, ok := ctx.Value(storeCtxKey{}).(*Store)
	return store, ok && store != nil
}

// FromContext returns the scoped store and panics when called outside a cart session
// scope; reaching it without one is a wiring bug.
func FromContext(ctx context.Context) *Store {
	store, ok := StoreFrom(ctx)
	if !ok {
		panic("cart: FromContext called outside a cart session scope")
	}
	return store
}
