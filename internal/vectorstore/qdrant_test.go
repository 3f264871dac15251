package vectorstore

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	grpccodes "google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/fyrsmithlabs/docsearchd/internal/chunker"
)

func TestQdrantConfigValidate(t *testing.T) {
	valid := QdrantConfig{
		Host:           "localhost",
		Port:           6334,
		CollectionName: "documents",
		VectorSize:     384,
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		modify func(*QdrantConfig)
	}{
		{"missing host", func(c *QdrantConfig) { c.Host = "" }},
		{"zero port", func(c *QdrantConfig) { c.Port = 0 }},
		{"port out of range", func(c *QdrantConfig) { c.Port = 70000 }},
		{"missing collection", func(c *QdrantConfig) { c.CollectionName = "" }},
		{"zero vector size", func(c *QdrantConfig) { c.VectorSize = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.modify(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestQdrantConfigApplyDefaults(t *testing.T) {
	cfg := QdrantConfig{CollectionName: "documents", VectorSize: 384}
	cfg.ApplyDefaults()

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 6334, cfg.Port)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.RetryBackoff)
	assert.Equal(t, 50*1024*1024, cfg.MaxMessageSize)
	assert.Equal(t, 5, cfg.CircuitBreakerThreshold)
}

func TestValidateCollectionName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid lowercase", "documents", false},
		{"valid with underscore", "org_documents", false},
		{"valid with numbers", "docs_v2", false},
		{"empty", "", true},
		{"uppercase", "Documents", true},
		{"path traversal", "../etc", true},
		{"spaces", "my docs", true},
		{"too long", strings.Repeat("a", 65), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCollectionName(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCollectionName)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsTransientError(t *testing.T) {
	assert.False(t, IsTransientError(nil))
	assert.True(t, IsTransientError(status.Error(grpccodes.Unavailable, "down")))
	assert.True(t, IsTransientError(status.Error(grpccodes.DeadlineExceeded, "slow")))
	assert.True(t, IsTransientError(status.Error(grpccodes.ResourceExhausted, "busy")))
	assert.False(t, IsTransientError(status.Error(grpccodes.InvalidArgument, "bad")))
	assert.False(t, IsTransientError(status.Error(grpccodes.NotFound, "missing")))
	assert.False(t, IsTransientError(status.Error(grpccodes.PermissionDenied, "no")))
}

func TestTenantFilter(t *testing.T) {
	t.Run("always scopes tenant and status", func(t *testing.T) {
		filter := tenantFilter(QueryParams{OrgID: 42, Limit: 10})
		require.Len(t, filter.Must, 2)

		org := filter.Must[0].GetField()
		require.NotNil(t, org)
		assert.Equal(t, fieldOrgID, org.Key)
		assert.Equal(t, int64(42), org.Match.GetInteger())

		st := filter.Must[1].GetField()
		require.NotNil(t, st)
		assert.Equal(t, fieldStatus, st.Key)
		assert.Equal(t, string(chunker.StatusActive), st.Match.GetKeyword())
	})

	t.Run("optional file and content type", func(t *testing.T) {
		filter := tenantFilter(QueryParams{OrgID: 1, Limit: 10, FileID: "f1", ContentType: "page"})
		require.Len(t, filter.Must, 4)
		assert.Equal(t, "f1", filter.Must[2].GetField().Match.GetKeyword())
		assert.Equal(t, "page", filter.Must[3].GetField().Match.GetKeyword())
	})
}

func TestChunkPayloadRoundTrip(t *testing.T) {
	original := chunker.Chunk{
		ChunkID:          "c1",
		FileID:           "f1",
		PageNumber:       3,
		ChunkIndex:       7,
		Content:          "Encryption at rest uses AES-256.",
		ContentType:      chunker.ContentTypePage,
		WordCount:        5,
		CharCount:        32,
		SentenceCount:    1,
		HasTables:        true,
		HasCode:          false,
		Headings:         []string{"Security", "Storage"},
		Keywords:         []string{"AES"},
		Status:           chunker.StatusActive,
		OrgID:            42,
		DocURL:           "https://example.com/security.pdf",
		OriginalFilename: "security.pdf",
	}

	got := chunkFromPayload(chunkPayload(original))
	assert.Equal(t, original, got)
}

func TestChunkPayloadOmitsEmptyOptionals(t *testing.T) {
	payload := chunkPayload(chunker.Chunk{ChunkID: "c1", FileID: "f1", OrgID: 1, Status: chunker.StatusActive})
	assert.NotContains(t, payload, fieldHeadings)
	assert.NotContains(t, payload, fieldKeywords)
	assert.NotContains(t, payload, fieldDocURL)
	assert.NotContains(t, payload, fieldOriginalFilename)
}
