package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mugshot/internal/modelreg"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiProvider serves the Gemini model family, including the Nano Banana
// aliases. It talks to the generateContent REST endpoint directly.
type GeminiProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewGeminiProvider builds a Gemini-backed generator. A nil client gets a
// reusable one with a bounded timeout.
func NewGeminiProvider(apiKey, baseURL string, client *http.Client) *GeminiProvider {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	return &GeminiProvider{apiKey: strings.TrimSpace(apiKey), baseURL: baseURL, httpClient: client}
}

// upstreamModel maps registry identifiers onto Gemini API model names.
func upstreamModel(m modelreg.Model) string {
	switch m {
	case modelreg.NanoBananaPro, modelreg.GeminiPro:
		return "gemini-2.0-pro"
	default:
		return "gemini-2.0-flash"
	}
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiGenerationConfig struct {
	CandidateCount   int    `json:"candidateCount,omitempty"`
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason,omitempty"`
	} `json:"candidates"`
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// The provider is model-agnostic within the Gemini family; geminiForModel
// pins one upstream model so the registry can hand out per-model generators
// that share a client and rate limiter.
type geminiForModel struct {
	provider *GeminiProvider
	model    modelreg.Model
}

// ForModel pins the provider to one registry model.
func (g *GeminiProvider) ForModel(m modelreg.Model) Generator {
	return &geminiForModel{provider: g, model: m}
}

func (g *geminiForModel) Generate(ctx context.Context, req GenerateRequest) ([]Payload, error) {
	return g.provider.generate(ctx, g.model, req)
}

func (g *GeminiProvider) generate(ctx context.Context, model modelreg.Model, req GenerateRequest) ([]Payload, error) {
	name := upstreamModel(model)
	if g.apiKey == "" {
		return nil, providerErr(name, "api key not configured")
	}

	parts := []geminiPart{{Text: req.Prompt}}
	for _, ref := range req.ReferenceImages {
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{
			MimeType: "image/jpeg",
			Data:     base64.StdEncoding.EncodeToString(ref),
		}})
	}

	variants := req.Variants
	if variants <= 0 {
		variants = 1
	}
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
		GenerationConfig: &geminiGenerationConfig{
			CandidateCount:   variants,
			ResponseMimeType: "image/png",
		},
	})
	if err != nil {
		return nil, providerErr(name, "encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, name, g.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, providerErr(name, "build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, providerErr(name, "call api: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, providerErr(name, "read response: %w", err)
	}

	var decoded geminiResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, providerErr(name, "decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := decoded.Error.Message
		if msg == "" {
			msg = resp.Status
		}
		return nil, providerErr(name, "api status %d: %s", resp.StatusCode, msg)
	}

	var out []Payload
	for _, cand := range decoded.Candidates {
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				out = append(out, Payload{B64: part.InlineData.Data})
			}
		}
	}
	return out, nil
}
