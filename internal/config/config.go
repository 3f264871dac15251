// Package config provides configuration loading for docsearchd.
package config

import (
	"fmt"
	"time"

	"github.com/fyrsmithlabs/docsearchd/internal/embeddings"
	"github.com/fyrsmithlabs/docsearchd/internal/ingest"
	"github.com/fyrsmithlabs/docsearchd/internal/logging"
	"github.com/fyrsmithlabs/docsearchd/internal/search"
	"github.com/fyrsmithlabs/docsearchd/internal/telemetry"
	"github.com/fyrsmithlabs/docsearchd/internal/vectorstore"
)

// Config is the root configuration, one section per component.
type Config struct {
	Server     ServerConfig             `koanf:"server"`
	Logging    logging.Config           `koanf:"logging"`
	Chunker    ChunkerConfig            `koanf:"chunker"`
	Embeddings EmbeddingsConfig         `koanf:"embeddings"`
	Qdrant     vectorstore.QdrantConfig `koanf:"qdrant"`
	Search     search.Options           `koanf:"search"`
	Ingest     ingest.Options           `koanf:"ingest"`
	Telemetry  telemetry.Config         `koanf:"telemetry"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	// Host is the listen address. Default: "0.0.0.0".
	Host string `koanf:"host"`

	// Port is the HTTP port. Default: 8080.
	Port int `koanf:"port"`

	// ShutdownTimeout bounds graceful shutdown. Default: 10s.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// MaxUploadSize bounds multipart document uploads in bytes.
	// Default: 64MB.
	MaxUploadSize int64 `koanf:"max_upload_size"`
}

// ChunkerConfig holds chunking configuration.
type ChunkerConfig struct {
	// MaxChunkSize is the chunk content budget in bytes. Default:
	// 3000.
	MaxChunkSize int `koanf:"max_chunk_size"`

	// Overlap is carried between adjacent pieces of a split chunk.
	// Default: 200.
	Overlap int `koanf:"overlap"`
}

// EmbeddingsConfig holds embedding provider configuration.
type EmbeddingsConfig struct {
	// FastEmbed configures the local ONNX dense embedder.
	FastEmbed embeddings.FastEmbedConfig `koanf:"fastembed"`

	// SparseIndexSpace bounds sparse hash indexes. Default: 1<<20.
	SparseIndexSpace uint32 `koanf:"sparse_index_space"`

	// Retry bounds embedding calls and retries transient failures.
	Retry embeddings.RetryConfig `koanf:"retry"`
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.MaxUploadSize == 0 {
		cfg.Server.MaxUploadSize = 64 * 1024 * 1024
	}

	if cfg.Chunker.MaxChunkSize == 0 {
		cfg.Chunker.MaxChunkSize = 3000
	}
	if cfg.Chunker.Overlap == 0 {
		cfg.Chunker.Overlap = 200
	}

	if cfg.Embeddings.FastEmbed.Model == "" {
		cfg.Embeddings.FastEmbed.Model = "BAAI/bge-small-en-v1.5"
	}
	if cfg.Embeddings.SparseIndexSpace == 0 {
		cfg.Embeddings.SparseIndexSpace = embeddings.DefaultSparseIndexSpace
	}
	cfg.Embeddings.Retry.ApplyDefaults()

	if cfg.Qdrant.CollectionName == "" {
		cfg.Qdrant.CollectionName = "documents"
	}
	if cfg.Qdrant.VectorSize == 0 {
		// bge-small-en-v1.5 dimensions.
		cfg.Qdrant.VectorSize = 384
	}
	cfg.Qdrant.ApplyDefaults()

	cfg.Search.ApplyDefaults()
	cfg.Ingest.ApplyDefaults()
	cfg.Telemetry.ApplyDefaults()
}

// Validate validates the full configuration.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if c.Chunker.MaxChunkSize < 100 {
		return fmt.Errorf("chunker: max chunk size must be at least 100, got %d", c.Chunker.MaxChunkSize)
	}
	if c.Chunker.Overlap < 0 || c.Chunker.Overlap >= c.Chunker.MaxChunkSize/2 {
		return fmt.Errorf("chunker: overlap must be in [0, max/2), got %d", c.Chunker.Overlap)
	}
	if err := c.Qdrant.Validate(); err != nil {
		return fmt.Errorf("qdrant: %w", err)
	}
	if err := vectorstore.ValidateCollectionName(c.Qdrant.CollectionName); err != nil {
		return fmt.Errorf("qdrant: %w", err)
	}
	if err := c.Search.Validate(); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if err := c.Ingest.Validate(); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	return nil
}
