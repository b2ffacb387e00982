// Package image defines the uniform contract over heterogeneous generative
// image backends plus one implementation per provider family.
package image

import (
	"context"
	"fmt"
)

// Payload is one generated image in whatever form the provider returned it:
// raw bytes, a base64-encoded string, or a URL the caller must fetch.
type Payload struct {
	Data []byte
	B64  string
	URL  string
}

// GenerateRequest describes a normalized request passed to any provider.
type GenerateRequest struct {
	Prompt          string
	ReferenceImages [][]byte
	AspectRatio     string
	Width           int
	Height          int
	Variants        int
	JobID           string
}

// Generator is the contract implemented by all image providers.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) ([]Payload, error)
}

// ProviderError carries which backend failed alongside the cause.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func providerErr(provider string, format string, args ...any) error {
	return &ProviderError{Provider: provider, Err: fmt.Errorf(format, args...)}
}
