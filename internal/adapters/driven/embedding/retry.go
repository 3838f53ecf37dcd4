// Package embedding provides decorators over the embedding service port.
package embedding

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/sluglab/slugline/internal/core/ports/driven"
	"github.com/sluglab/slugline/internal/logger"
)

// Ensure Resilient implements the interface.
var _ driven.EmbeddingService = (*Resilient)(nil)

// Default retry and throttle settings. Bulk imports embed one scene at a
// time; throttling keeps a large import from saturating a local Ollama.
const (
	DefaultMaxRetries      = 3
	DefaultInitialInterval = 500 * time.Millisecond
	DefaultRequestsPerSec  = 10
)

// ResilientConfig tunes the retry and rate-limit behaviour.
type ResilientConfig struct {
	// MaxRetries bounds retry attempts per call (default 3).
	MaxRetries uint64

	// InitialInterval is the first backoff delay (default 500ms).
	InitialInterval time.Duration

	// RequestsPerSecond throttles Embed calls (default 10, 0 = default).
	RequestsPerSecond float64
}

// Resilient wraps an EmbeddingService with exponential-backoff retries
// and request throttling. Embedding failures are recoverable for the
// caller either way (scenes degrade to lexical-only search), so retries
// here are about riding out transient service hiccups, not correctness.
type Resilient struct {
	inner       driven.EmbeddingService
	limiter     *rate.Limiter
	maxRetries  uint64
	initialWait time.Duration
}

// NewResilient creates a resilient decorator around the given service.
func NewResilient(inner driven.EmbeddingService, cfg ResilientConfig) *Resilient {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = DefaultInitialInterval
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSec
	}

	return &Resilient{
		inner:       inner,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		maxRetries:  cfg.MaxRetries,
		initialWait: cfg.InitialInterval,
	}
}

// Embed waits for a rate-limit slot, then calls the inner service with
// exponential backoff on failure.
func (r *Resilient) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(r.newBackoff(), r.maxRetries), ctx)

	var vector []float32
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		v, err := r.inner.Embed(ctx, text)
		if err != nil {
			logger.Debug("embed attempt %d failed: %v", attempt, err)
			return err
		}
		vector = v
		return nil
	}, policy)
	if err != nil {
		return nil, err
	}

	return vector, nil
}

// Dimensions returns the inner service's vector size.
func (r *Resilient) Dimensions() int {
	return r.inner.Dimensions()
}

// ModelName returns the inner service's model identifier.
func (r *Resilient) ModelName() string {
	return r.inner.ModelName()
}

// Ping checks the inner service once, without retries. A health check
// should report current state, not eventually succeed.
func (r *Resilient) Ping(ctx context.Context) error {
	return r.inner.Ping(ctx)
}

// Close releases the inner service's resources.
func (r *Resilient) Close() error {
	return r.inner.Close()
}

func (r *Resilient) newBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialWait
	return b
}
