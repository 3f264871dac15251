package embeddings

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RetryConfig bounds the per-call timeout and retry behavior for
// embedding generation.
type RetryConfig struct {
	// Timeout bounds each embedding call. Default: 30s.
	Timeout time.Duration `koanf:"timeout"`

	// MaxRetries is the number of retry attempts after the first
	// failure. Default: 3.
	MaxRetries int `koanf:"max_retries"`

	// Backoff is the initial backoff duration, doubling per retry.
	// Default: 500ms.
	Backoff time.Duration `koanf:"backoff"`
}

// ApplyDefaults sets default values for unset fields.
func (c *RetryConfig) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.Backoff == 0 {
		c.Backoff = 500 * time.Millisecond
	}
}

// IsRetryable reports whether an embedding error is worth retrying.
// Malformed-input and configuration errors are deterministic; transient
// provider/network failures and timeouts are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrEmptyInput) || errors.Is(err, ErrInvalidConfig) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return true
}

// RetryingProvider wraps a Provider with per-call timeouts and bounded
// exponential-backoff retries for transient failures.
type RetryingProvider struct {
	inner Provider
	cfg   RetryConfig
}

// NewRetryingProvider wraps a provider with retry behavior.
func NewRetryingProvider(inner Provider, cfg RetryConfig) (*RetryingProvider, error) {
	if inner == nil {
		return nil, fmt.Errorf("%w: inner provider required", ErrInvalidConfig)
	}
	cfg.ApplyDefaults()
	return &RetryingProvider{inner: inner, cfg: cfg}, nil
}

// retry runs op under the configured timeout/backoff policy.
func (p *RetryingProvider) retry(ctx context.Context, op func(ctx context.Context) error) error {
	backoff := p.cfg.Backoff

	var err error
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
		err = op(callCtx)
		cancel()
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		if attempt == p.cfg.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
			backoff *= 2
		}
	}
	return fmt.Errorf("embedding failed after %d retries: %w", p.cfg.MaxRetries, err)
}

// EmbedDocuments generates pairs with retry on transient failure.
func (p *RetryingProvider) EmbedDocuments(ctx context.Context, texts []string) ([]Pair, error) {
	var pairs []Pair
	err := p.retry(ctx, func(ctx context.Context) error {
		var opErr error
		pairs, opErr = p.inner.EmbedDocuments(ctx, texts)
		return opErr
	})
	if err != nil {
		return nil, err
	}
	return pairs, nil
}

// EmbedQuery generates the query pair with retry on transient failure.
func (p *RetryingProvider) EmbedQuery(ctx context.Context, text string) (Pair, error) {
	var pair Pair
	err := p.retry(ctx, func(ctx context.Context) error {
		var opErr error
		pair, opErr = p.inner.EmbedQuery(ctx, text)
		return opErr
	})
	if err != nil {
		return Pair{}, err
	}
	return pair, nil
}

// Dimension returns the dense embedding dimension.
func (p *RetryingProvider) Dimension() int { return p.inner.Dimension() }

// Name identifies the wrapped provider.
func (p *RetryingProvider) Name() string { return p.inner.Name() }

// Close releases resources held by the wrapped provider.
func (p *RetryingProvider) Close() error { return p.inner.Close() }

var _ Provider = (*RetryingProvider)(nil)
