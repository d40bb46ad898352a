package llmselector

import "context"

// selectorKey is the context key for the selector.
type selectorKey struct{}

// NewContext returns a new context with the selector attached.
func NewContext(ctx context.Context, s *Selector) context.Context {
	return context.WithValue(ctx, selectorKey{}, s)
}

// FromContext retrieves the selector attached by NewContext.
func FromContext(ctx context.Context) (*Selector, bool) {
	s, ok := ctx.Value(selectorKey{}).(*Selector)
	return s, ok && s != nil
}
