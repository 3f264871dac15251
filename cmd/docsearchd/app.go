package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/docsearchd/internal/chunker"
	"github.com/fyrsmithlabs/docsearchd/internal/config"
	"github.com/fyrsmithlabs/docsearchd/internal/embeddings"
	"github.com/fyrsmithlabs/docsearchd/internal/extraction"
	"github.com/fyrsmithlabs/docsearchd/internal/ingest"
	"github.com/fyrsmithlabs/docsearchd/internal/logging"
	"github.com/fyrsmithlabs/docsearchd/internal/search"
	"github.com/fyrsmithlabs/docsearchd/internal/telemetry"
	"github.com/fyrsmithlabs/docsearchd/internal/vectorstore"
)

// app wires the full component stack from configuration.
type app struct {
	cfg       *config.Config
	logger    *logging.Logger
	telemetry *telemetry.Telemetry
	store     vectorstore.Store
	providers *embeddings.Registry
	engine    *search.Engine
	ingest    *ingest.Service
}

// newApp builds the stack shared by serve, ingest and search.
func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	tel, err := telemetry.New(context.Background(), &cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating embedding provider: %w", err)
	}
	providers, err := embeddings.NewRegistry(provider)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating vector store: %w", err)
	}

	ch, err := chunker.New(chunker.Options{
		MaxChunkSize: cfg.Chunker.MaxChunkSize,
		Overlap:      cfg.Chunker.Overlap,
	}, logger)
	if err != nil {
		return nil, err
	}

	ingestSvc, err := ingest.NewService(extraction.NewDefaultRegistry(logger), ch, providers, store, cfg.Ingest, logger)
	if err != nil {
		return nil, err
	}

	engine, err := search.NewEngine(store, providers, cfg.Search, logger)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		telemetry: tel,
		store:     store,
		providers: providers,
		engine:    engine,
		ingest:    ingestSvc,
	}, nil
}

// buildProvider assembles the hybrid embedding provider: local ONNX
// dense embeddings, hashed sparse embeddings, retry on transient
// failures. Memory mode substitutes the deterministic dense embedder
// so local development needs no model download.
func buildProvider(cfg *config.Config) (embeddings.Provider, error) {
	var (
		dense embeddings.DenseEmbedder
		name  = "fastembed"
		err   error
	)
	if useMemoryStore {
		dense = embeddings.NewDeterministicDenseEmbedder(int(cfg.Qdrant.VectorSize))
		name = "deterministic"
	} else {
		dense, err = embeddings.NewFastEmbedDense(cfg.Embeddings.FastEmbed)
		if err != nil {
			return nil, err
		}
	}
	sparse := embeddings.NewHashedSparseEmbedder(cfg.Embeddings.SparseIndexSpace)

	hybrid, err := embeddings.NewHybridProvider(name, dense, sparse, nil)
	if err != nil {
		return nil, err
	}
	if uint64(hybrid.Dimension()) != cfg.Qdrant.VectorSize {
		return nil, fmt.Errorf("embedding dimension %d does not match configured vector size %d",
			hybrid.Dimension(), cfg.Qdrant.VectorSize)
	}
	return embeddings.NewRetryingProvider(hybrid, cfg.Embeddings.Retry)
}

func buildStore(cfg *config.Config, logger *logging.Logger) (vectorstore.Store, error) {
	if useMemoryStore {
		return vectorstore.NewMemoryStore(), nil
	}
	return vectorstore.NewQdrantStore(cfg.Qdrant, logger)
}

// Close releases the app's resources.
func (a *app) Close() {
	ctx := context.Background()
	if err := a.providers.Close(); err != nil {
		a.logger.Warn(ctx, "closing embedding providers", zap.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn(ctx, "closing vector store", zap.Error(err))
	}
	if err := a.telemetry.Shutdown(ctx); err != nil {
		a.logger.Warn(ctx, "telemetry shutdown", zap.Error(err))
	}
	_ = a.logger.Sync()
}
