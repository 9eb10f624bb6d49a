package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCandidateNotFound signals a missing candidate record.
	ErrCandidateNotFound = errors.New("candidate not found")
	// ErrCandidateExists signals a create with an ID already in use.
	ErrCandidateExists = errors.New("candidate already exists")
	// ErrValidation signals malformed input rejected before any side effect.
	ErrValidation = errors.New("validation failed")
	// ErrEmbeddingNotConfigured signals a missing embedding provider credential.
	ErrEmbeddingNotConfigured = errors.New("embedding provider not configured")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrRateLimited signals a rate limit hit at the provider.
	ErrRateLimited = errors.New("rate limited")
)

// ProviderError carries the HTTP status returned by the embedding provider.
// Wraps ErrEmbeddingProviderError, and ErrRateLimited for 429 responses.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %s returned status %d", ErrEmbeddingProviderError.Error(), e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s returned status %d: %s",
		ErrEmbeddingProviderError.Error(), e.Provider, e.StatusCode, e.Message)
}

// Unwrap exposes the sentinels matched by errors.Is.
func (e *ProviderError) Unwrap() []error {
	if e.StatusCode == 429 {
		return []error{ErrEmbeddingProviderError, ErrRateLimited}
	}
	return []error{ErrEmbeddingProviderError}
}

// NewProviderError creates a provider error for the given status.
func NewProviderError(provider string, status int, message string) error {
	return &ProviderError{Provider: provider, StatusCode: status, Message: message}
}

// Validationf wraps a formatted message with ErrValidation.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
