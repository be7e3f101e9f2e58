package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"textgen/internal/domain"
	"textgen/internal/infra/config"
	"textgen/internal/infra/tracer"
)

// Compile-time interface assertions.
var (
	_ domain.Generator     = (*Client)(nil)
	_ domain.HealthChecker = (*Client)(nil)
)

type generateRequest struct {
	Prefix      string  `json:"prefix"`
	MaxLength   int     `json:"max_length"`
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	GeneratedText string `json:"generated_text"`
}

// Client talks to the remote trigram generation service.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	schemas *responseSchemas
	logger  *slog.Logger
}

// NewClient creates a Client from cfg. A zero RequestsPerMinute disables the
// local rate limit.
func NewClient(cfg config.GeneratorConfig, logger *slog.Logger) (*Client, error) {
	schemas, err := compileSchemas()
	if err != nil {
		return nil, err
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = strings.TrimRight(config.DefaultBaseURL, "/")
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerMinute)/60.0, burst)
	}

	return &Client{
		baseURL: baseURL,
		client:  NewHTTPClient(cfg),
		limiter: limiter,
		schemas: schemas,
		logger:  logger,
	}, nil
}

// BaseURL returns the endpoint root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Generate implements domain.Generator. Parameters are forwarded as given.
// The returned text is exactly what the server produced.
func (c *Client) Generate(ctx context.Context, params domain.GenerationParams) (string, error) {
	ctx, span := tracer.StartSpan(ctx, "generator.generate")
	defer span.End()
	span.SetAttributes(
		tracer.IntAttr("generator.prefix_len", len(params.Prefix)),
		tracer.IntAttr("generator.max_length", params.MaxLength),
		tracer.FloatAttr("generator.temperature", params.Temperature),
	)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", c.fail(span, classifyTransportError(ctx, err))
		}
	}

	body, err := json.Marshal(generateRequest{
		Prefix:      params.Prefix,
		MaxLength:   params.MaxLength,
		Temperature: params.Temperature,
	})
	if err != nil {
		// Only reachable with a non-finite temperature.
		return "", c.fail(span, domain.NewRequestError(domain.KindMalformed, fmt.Errorf("encode request: %w", err)))
	}

	status, respBody, err := doJSONRequest(ctx, c.client, http.MethodPost, c.baseURL+"/generate", body)
	if status != 0 {
		span.SetAttributes(tracer.IntAttr("http.status_code", status))
	}
	if err != nil {
		return "", c.fail(span, classifyExchangeError(ctx, status, err))
	}
	if !isSuccess(status) {
		return "", c.fail(span, mapHTTPError(status, respBody))
	}

	if err := validateBody(c.schemas.generate, respBody); err != nil {
		return "", c.fail(span, &domain.RequestError{Kind: domain.KindMalformed, Status: status, Err: err})
	}
	var resp generateResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", c.fail(span, &domain.RequestError{Kind: domain.KindMalformed, Status: status, Err: err})
	}

	c.logger.Debug("generation completed",
		"status", status,
		"chars", len(resp.GeneratedText),
	)
	tracer.SetOK(span)
	return resp.GeneratedText, nil
}

// Health implements domain.HealthChecker by probing GET /health.
// Health probes bypass the local rate limit.
func (c *Client) Health(ctx context.Context) (*domain.HealthStatus, error) {
	status, body, err := doJSONRequest(ctx, c.client, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrHealthCheck, classifyExchangeError(ctx, status, err))
	}
	if !isSuccess(status) {
		return nil, fmt.Errorf("%w: %w", domain.ErrHealthCheck, mapHTTPError(status, body))
	}
	if err := validateBody(c.schemas.health, body); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrHealthCheck, domain.NewRequestError(domain.KindMalformed, err))
	}

	var hs domain.HealthStatus
	if err := json.Unmarshal(body, &hs); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrHealthCheck, domain.NewRequestError(domain.KindMalformed, err))
	}
	return &hs, nil
}

// fail records err on the span and logs it at debug. The session logs the
// user-visible failure.
func (c *Client) fail(span trace.Span, err *domain.RequestError) error {
	span.SetAttributes(tracer.StringAttr("generator.error_kind", string(err.Kind)))
	if errors.Is(err, domain.ErrCancelled) {
		c.logger.Debug("generation cancelled")
		return err
	}
	tracer.RecordError(span, err)
	c.logger.Debug("generation request failed",
		"kind", err.Kind,
		"status", err.Status,
		"detail", err.Detail,
		"error", err.Err,
	)
	return err
}
