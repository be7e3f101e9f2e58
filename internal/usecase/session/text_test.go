package session

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"textgen/internal/domain"
)

func TestTextFor(t *testing.T) {
	assert.Equal(t, EnglishText, TextFor("en"))
	assert.Equal(t, UrduText, TextFor("ur"))
	assert.Equal(t, UrduText, TextFor("fr"))
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind domain.ErrorKind
		wantMsg  string
	}{
		{"cancelled", domain.NewRequestError(domain.KindCancelled, nil), domain.KindCancelled, "تخلیق منسوخ کر دی گئی"},
		{"rejected with detail",
			fmt.Errorf("generate: %w", &domain.RequestError{Kind: domain.KindServerRejected, Status: 429, Detail: "rate limited"}),
			domain.KindServerRejected, "خرابی: rate limited"},
		{"rejected sentinel only", domain.ErrServerRejected, domain.KindServerRejected, "خرابی: request rejected by server"},
		{"unreachable", domain.NewRequestError(domain.KindUnreachable, errors.New("refused")), domain.KindUnreachable, UrduText.Unreachable},
		{"malformed", domain.NewRequestError(domain.KindMalformed, nil), domain.KindMalformed, UrduText.Malformed},
		{"empty", domain.NewRequestError(domain.KindEmptyResult, nil), domain.KindEmptyResult, UrduText.EmptyResult},
		{"unknown", errors.New("boom"), domain.KindUnreachable, UrduText.Unreachable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, msg := UrduText.Describe(tt.err)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}
