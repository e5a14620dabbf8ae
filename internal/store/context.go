package store

import "context"

type contextKey int

const storeKey contextKey = iota

// WithContext attaches s to ctx so every consumer in a process shares one
// store.
func WithContext(ctx context.Context, s *Store) context.Context {
	if ctx == nil || s == nil {
		return ctx
	}
	return context.WithValue(ctx, storeKey, s)
}

// FromContext returns the store attached by WithContext, or nil.
func FromContext(ctx context.Context) *Store {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(storeKey).(*Store)
	return s
}
