package domain

import (
	"context"
	"fmt"
	"math"
)

// Bounds for GenerationParams.
const (
	MinMaxLength   = 50
	MaxMaxLength   = 500
	MinTemperature = 0.1
	MaxTemperature = 2.0
)

// GenerationParams are supplied by the caller per request.
type GenerationParams struct {
	Prefix      string  `json:"prefix"`
	MaxLength   int     `json:"max_length"`
	Temperature float64 `json:"temperature"`
}

// Validate checks MaxLength and Temperature against their bounds.
func (p GenerationParams) Validate() error {
	if p.MaxLength < MinMaxLength || p.MaxLength > MaxMaxLength {
		return NewDomainError("GenerationParams.Validate", ErrInvalidInput,
			fmt.Sprintf("max_length %d outside [%d, %d]", p.MaxLength, MinMaxLength, MaxMaxLength))
	}
	if math.IsNaN(p.Temperature) || p.Temperature < MinTemperature || p.Temperature > MaxTemperature {
		return NewDomainError("GenerationParams.Validate", ErrInvalidInput,
			fmt.Sprintf("temperature %g outside [%g, %g]", p.Temperature, MinTemperature, MaxTemperature))
	}
	return nil
}

// Clamp returns a copy of p with MaxLength and Temperature forced into bounds.
// A NaN temperature becomes 1.0.
func (p GenerationParams) Clamp() GenerationParams {
	p.MaxLength = min(max(p.MaxLength, MinMaxLength), MaxMaxLength)
	if math.IsNaN(p.Temperature) {
		p.Temperature = 1.0
	}
	p.Temperature = min(max(p.Temperature, MinTemperature), MaxTemperature)
	return p
}

// Generator submits a single generation request and returns the raw text.
// Errors are *RequestError values.
type Generator interface {
	Generate(ctx context.Context, params GenerationParams) (string, error)
}

// HealthStatus is the state reported by the generation service.
type HealthStatus struct {
	Status    string     `json:"status"`
	VocabSize int        `json:"vocab_size"`
	Model     ModelStats `json:"model_stats"`
}

// ModelStats holds n-gram table sizes of the remote model.
type ModelStats struct {
	Unigrams    int `json:"unigrams"`
	Bigrams     int `json:"bigrams"`
	Trigrams    int `json:"trigrams"`
	TotalTokens int `json:"total_tokens"`
}

// Healthy reports whether the service declared itself healthy.
func (h HealthStatus) Healthy() bool { return h.Status == "healthy" }

// HealthChecker probes the generation service.
type HealthChecker interface {
	Health(ctx context.Context) (*HealthStatus, error)
}
