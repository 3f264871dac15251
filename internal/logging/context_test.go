package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextFields(t *testing.T) {
	t.Run("empty context", func(t *testing.T) {
		fields := ContextFields(context.Background())
		assert.Empty(t, fields)
	})

	t.Run("org and file", func(t *testing.T) {
		ctx := ContextWithOrgID(context.Background(), 42)
		ctx = ContextWithFileID(ctx, "doc-1")

		fields := ContextFields(ctx)
		assert.Len(t, fields, 2)
	})

	t.Run("request id", func(t *testing.T) {
		ctx := ContextWithRequestID(context.Background(), "req-abc")
		fields := ContextFields(ctx)
		assert.Len(t, fields, 1)
	})
}

func TestOrgIDRoundTrip(t *testing.T) {
	ctx := ContextWithOrgID(context.Background(), 7)
	orgID, ok := OrgIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(7), orgID)

	_, ok = OrgIDFromContext(context.Background())
	assert.False(t, ok)
}

func TestFileIDRoundTrip(t *testing.T) {
	ctx := ContextWithFileID(context.Background(), "file-9")
	assert.Equal(t, "file-9", FileIDFromContext(ctx))
	assert.Equal(t, "", FileIDFromContext(context.Background()))
}
