package generator

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"textgen/internal/domain"
	"textgen/internal/infra/config"
)

// Default circuit breaker settings.
const (
	defaultCBMaxFailures uint32        = 5
	defaultCBTimeout     time.Duration = 30 * time.Second
	defaultCBInterval    time.Duration = 60 * time.Second
)

// CircuitBreakerGenerator wraps a Generator with circuit breaker protection.
// When the endpoint keeps failing, the circuit opens and subsequent calls fail
// fast as Unreachable without opening a connection.
type CircuitBreakerGenerator struct {
	inner   domain.Generator
	breaker *gobreaker.CircuitBreaker[string]
	logger  *slog.Logger
}

// NewCircuitBreakerGenerator wraps inner with a circuit breaker.
// Zero-valued settings fall back to defaults.
func NewCircuitBreakerGenerator(inner domain.Generator, cfg config.CircuitBreakerConfig, logger *slog.Logger) *CircuitBreakerGenerator {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultCBMaxFailures
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultCBTimeout
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultCBInterval
	}

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "generator",
		MaxRequests: 1, // allow 1 probe in half-open state
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		IsSuccessful: countsAsSuccess,
	})

	return &CircuitBreakerGenerator{
		inner:   inner,
		breaker: cb,
		logger:  logger,
	}
}

// countsAsSuccess reports whether err says nothing about endpoint health.
// User cancellations and client-side rejections (4xx) do not trip the breaker.
func countsAsSuccess(err error) bool {
	if err == nil || errors.Is(err, domain.ErrCancelled) {
		return true
	}
	var re *domain.RequestError
	if errors.As(err, &re) && re.Kind == domain.KindServerRejected {
		return re.Status < 500
	}
	return false
}

// Generate implements domain.Generator. Calls are routed through the circuit breaker.
func (g *CircuitBreakerGenerator) Generate(ctx context.Context, params domain.GenerationParams) (string, error) {
	text, err := g.breaker.Execute(func() (string, error) {
		return g.inner.Generate(ctx, params)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			g.logger.Debug("generation short-circuited", "state", g.breaker.State().String())
			return "", domain.NewRequestError(domain.KindUnreachable, err)
		}
		return "", err
	}
	return text, nil
}

// State returns the current circuit breaker state for monitoring.
func (g *CircuitBreakerGenerator) State() gobreaker.State {
	return g.breaker.State()
}

// Counts returns the current circuit breaker failure/success counts.
func (g *CircuitBreakerGenerator) Counts() gobreaker.Counts {
	return g.breaker.Counts()
}

var _ domain.Generator = (*CircuitBreakerGenerator)(nil)

// --- Connection Pooling ---

// Default connection pool settings. The client talks to a single host.
const (
	defaultMaxIdleConns        = 4
	defaultMaxIdleConnsPerHost = 2
	defaultMaxConnsPerHost     = 4
	defaultIdleConnTimeout     = 90 * time.Second
	defaultConnTimeout         = 30 * time.Second
)

// NewPooledTransport creates an http.Transport with connection pooling.
// A zero respTimeout leaves the wait for response headers unbounded.
func NewPooledTransport(connTimeout, respTimeout time.Duration, pool config.PoolConfig) *http.Transport {
	if connTimeout == 0 {
		connTimeout = defaultConnTimeout
	}

	maxIdle := pool.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = defaultMaxIdleConns
	}
	maxIdlePerHost := pool.MaxIdleConnsPerHost
	if maxIdlePerHost <= 0 {
		maxIdlePerHost = defaultMaxIdleConnsPerHost
	}
	maxConnsPerHost := pool.MaxConnsPerHost
	if maxConnsPerHost <= 0 {
		maxConnsPerHost = defaultMaxConnsPerHost
	}
	idleTimeout := pool.IdleConnTimeout
	if idleTimeout <= 0 {
		idleTimeout = defaultIdleConnTimeout
	}

	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: respTimeout,
		MaxIdleConns:          maxIdle,
		MaxIdleConnsPerHost:   maxIdlePerHost,
		MaxConnsPerHost:       maxConnsPerHost,
		IdleConnTimeout:       idleTimeout,
		ForceAttemptHTTP2:     true,
	}
}

// NewHTTPClient creates an *http.Client over a pooled transport. The client
// has no overall Timeout: a pending generation ends only when the server
// answers or the caller cancels its context.
func NewHTTPClient(cfg config.GeneratorConfig) *http.Client {
	return &http.Client{
		Transport: NewPooledTransport(cfg.ConnTimeout, cfg.RespTimeout, cfg.Pool),
	}
}
