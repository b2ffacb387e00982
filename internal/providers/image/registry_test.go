package image

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"mugshot/internal/modelreg"
)

type stubGenerator struct {
	calls int
}

func (s *stubGenerator) Generate(ctx context.Context, req GenerateRequest) ([]Payload, error) {
	s.calls++
	return []Payload{{Data: []byte("img")}}, nil
}

func TestRegistryResolvesAllModels(t *testing.T) {
	client := &http.Client{}
	r := NewRegistry(RegistryOptions{
		Gemini:    NewGeminiProvider("key", "", client),
		ByteDance: NewByteDanceProvider("key", "", client),
		Fal:       NewFalProvider("key", "", client),
	})
	for _, m := range modelreg.All() {
		if _, ok := r.Resolve(m); !ok {
			t.Errorf("Resolve(%q) has no backend", m)
		}
	}
}

func TestRegistryUnconfiguredModel(t *testing.T) {
	r := NewRegistry(RegistryOptions{
		Gemini: NewGeminiProvider("key", "", &http.Client{}),
	})
	if _, ok := r.Resolve(modelreg.Seedream); ok {
		t.Fatal("Resolve() returned a backend for an unconfigured model")
	}
	_, err := r.Dispatch(context.Background(), modelreg.Seedream, GenerateRequest{})
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("Dispatch() error = %v, want ProviderError", err)
	}
}

func TestRegistryDispatchInvokesGenerator(t *testing.T) {
	stub := &stubGenerator{}
	r := &Registry{
		generators: map[modelreg.Model]Generator{modelreg.NanoBanana: stub},
	}
	payloads, err := r.Dispatch(context.Background(), modelreg.NanoBanana, GenerateRequest{Variants: 1})
	if err != nil {
		t.Fatalf("Dispatch() error: %v", err)
	}
	if len(payloads) != 1 || stub.calls != 1 {
		t.Fatalf("Dispatch() payloads=%d calls=%d", len(payloads), stub.calls)
	}
}
