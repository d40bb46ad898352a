package llmselector_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	sel "github.com/ineyio/llmselector"
)

func TestContext(t *testing.T) {
	s := sel.NewSelector()
	ctx := sel.NewContext(context.Background(), s)

	got, ok := sel.FromContext(ctx)
	assert.True(t, ok)
	assert.Same(t, s, got)

	_, ok = sel.FromContext(context.Background())
	assert.False(t, ok)

	_, ok = sel.FromContext(sel.NewContext(context.Background(), nil))
	assert.False(t, ok)
}
