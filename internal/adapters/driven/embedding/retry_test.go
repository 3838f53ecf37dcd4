package embedding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyService fails a fixed number of times before succeeding.
type flakyService struct {
	failures int
	calls    int
	pings    int
}

func (f *flakyService) Embed(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("connection refused")
	}
	return []float32{0.5}, nil
}

func (f *flakyService) Dimensions() int      { return 1 }
func (f *flakyService) ModelName() string    { return "flaky-model" }
func (f *flakyService) Close() error         { return nil }
func (f *flakyService) Ping(_ context.Context) error {
	f.pings++
	return errors.New("still down")
}

func TestEmbedRetriesTransientFailures(t *testing.T) {
	inner := &flakyService{failures: 2}
	svc := NewResilient(inner, ResilientConfig{
		MaxRetries:        3,
		InitialInterval:   time.Millisecond,
		RequestsPerSecond: 1000,
	})

	vector, err := svc.Embed(context.Background(), "some scene text")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5}, vector)
	assert.Equal(t, 3, inner.calls)
}

func TestEmbedGivesUpAfterMaxRetries(t *testing.T) {
	inner := &flakyService{failures: 100}
	svc := NewResilient(inner, ResilientConfig{
		MaxRetries:        2,
		InitialInterval:   time.Millisecond,
		RequestsPerSecond: 1000,
	})

	_, err := svc.Embed(context.Background(), "text")
	require.Error(t, err)
	assert.Equal(t, 3, inner.calls) // initial attempt + 2 retries
}

func TestEmbedHonoursCancellation(t *testing.T) {
	inner := &flakyService{failures: 100}
	svc := NewResilient(inner, ResilientConfig{
		MaxRetries:        10,
		InitialInterval:   50 * time.Millisecond,
		RequestsPerSecond: 1000,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	_, err := svc.Embed(ctx, "text")
	require.Error(t, err)
	assert.Less(t, inner.calls, 10)
}

func TestPingDoesNotRetry(t *testing.T) {
	inner := &flakyService{}
	svc := NewResilient(inner, ResilientConfig{})

	err := svc.Ping(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, inner.pings)
}

func TestPassthroughMetadata(t *testing.T) {
	svc := NewResilient(&flakyService{}, ResilientConfig{})
	assert.Equal(t, "flaky-model", svc.ModelName())
	assert.Equal(t, 1, svc.Dimensions())
	assert.NoError(t, svc.Close())
}
