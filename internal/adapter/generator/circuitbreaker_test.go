package generator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textgen/internal/domain"
	"textgen/internal/infra/config"
)

type generatorFunc func(ctx context.Context, params domain.GenerationParams) (string, error)

func (f generatorFunc) Generate(ctx context.Context, params domain.GenerationParams) (string, error) {
	return f(ctx, params)
}

func TestCircuitBreakerPassesThrough(t *testing.T) {
	inner := generatorFunc(func(_ context.Context, p domain.GenerationParams) (string, error) {
		return p.Prefix + " رات", nil
	})

	cb := NewCircuitBreakerGenerator(inner, config.CircuitBreakerConfig{}, newTestLogger())
	text, err := cb.Generate(context.Background(), domain.GenerationParams{Prefix: "روز"})

	require.NoError(t, err)
	assert.Equal(t, "روز رات", text)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	callCount := 0
	inner := generatorFunc(func(context.Context, domain.GenerationParams) (string, error) {
		callCount++
		return "", domain.NewRequestError(domain.KindUnreachable, errors.New("connection refused"))
	})

	cfg := config.CircuitBreakerConfig{
		MaxFailures: 3,
		Timeout:     5 * time.Second,
		Interval:    60 * time.Second,
	}
	cb := NewCircuitBreakerGenerator(inner, cfg, newTestLogger())

	for i := 0; i < 3; i++ {
		_, err := cb.Generate(context.Background(), domain.GenerationParams{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	}
	assert.Equal(t, 3, callCount)
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	// Fails fast as Unreachable without reaching the endpoint.
	_, err := cb.Generate(context.Background(), domain.GenerationParams{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnreachable)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, callCount, "endpoint should not be called when circuit is open")
}

func TestCircuitBreakerClosesAfterSuccess(t *testing.T) {
	shouldFail := true
	inner := generatorFunc(func(context.Context, domain.GenerationParams) (string, error) {
		if shouldFail {
			return "", domain.NewRequestError(domain.KindMalformed, nil)
		}
		return "ok", nil
	})

	cfg := config.CircuitBreakerConfig{MaxFailures: 2, Timeout: 50 * time.Millisecond}
	cb := NewCircuitBreakerGenerator(inner, cfg, newTestLogger())

	for i := 0; i < 2; i++ {
		_, _ = cb.Generate(context.Background(), domain.GenerationParams{})
	}
	require.Equal(t, gobreaker.StateOpen, cb.State())

	time.Sleep(100 * time.Millisecond)
	shouldFail = false

	text, err := cb.Generate(context.Background(), domain.GenerationParams{})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreakerIgnoresCancellationAndClientErrors(t *testing.T) {
	errs := []error{
		domain.NewRequestError(domain.KindCancelled, context.Canceled),
		&domain.RequestError{Kind: domain.KindServerRejected, Status: 400, Detail: "prefix too long"},
		&domain.RequestError{Kind: domain.KindServerRejected, Status: 429, Detail: "rate limited"},
	}
	i := 0
	inner := generatorFunc(func(context.Context, domain.GenerationParams) (string, error) {
		err := errs[i%len(errs)]
		i++
		return "", err
	})

	cb := NewCircuitBreakerGenerator(inner, config.CircuitBreakerConfig{MaxFailures: 1}, newTestLogger())
	for range 6 {
		_, err := cb.Generate(context.Background(), domain.GenerationParams{})
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
	assert.Zero(t, cb.Counts().TotalFailures)
}

func TestCountsAsSuccess(t *testing.T) {
	assert.True(t, countsAsSuccess(nil))
	assert.True(t, countsAsSuccess(domain.NewRequestError(domain.KindCancelled, nil)))
	assert.True(t, countsAsSuccess(&domain.RequestError{Kind: domain.KindServerRejected, Status: 404}))
	assert.False(t, countsAsSuccess(&domain.RequestError{Kind: domain.KindServerRejected, Status: 500}))
	assert.False(t, countsAsSuccess(domain.NewRequestError(domain.KindUnreachable, nil)))
	assert.False(t, countsAsSuccess(errors.New("unclassified")))
}

func TestNewPooledTransportDefaults(t *testing.T) {
	tr := NewPooledTransport(0, 0, config.PoolConfig{})
	assert.Equal(t, defaultMaxIdleConns, tr.MaxIdleConns)
	assert.Equal(t, defaultMaxIdleConnsPerHost, tr.MaxIdleConnsPerHost)
	assert.Equal(t, defaultMaxConnsPerHost, tr.MaxConnsPerHost)
	assert.Equal(t, defaultIdleConnTimeout, tr.IdleConnTimeout)
	assert.Zero(t, tr.ResponseHeaderTimeout, "header wait must stay unbounded by default")
}

func TestNewPooledTransportCustom(t *testing.T) {
	tr := NewPooledTransport(time.Second, 2*time.Second, config.PoolConfig{
		MaxIdleConns:        8,
		MaxIdleConnsPerHost: 3,
		MaxConnsPerHost:     6,
		IdleConnTimeout:     time.Minute,
	})
	assert.Equal(t, 8, tr.MaxIdleConns)
	assert.Equal(t, 3, tr.MaxIdleConnsPerHost)
	assert.Equal(t, 6, tr.MaxConnsPerHost)
	assert.Equal(t, time.Minute, tr.IdleConnTimeout)
	assert.Equal(t, 2*time.Second, tr.ResponseHeaderTimeout)
}

func TestNewHTTPClientHasNoOverallTimeout(t *testing.T) {
	c := NewHTTPClient(config.GeneratorConfig{ConnTimeout: time.Second})
	assert.Zero(t, c.Timeout)
}
