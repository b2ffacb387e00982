package image

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	falName          = "fal_flux"
	defaultFalURL    = "https://fal.run"
	defaultFalModel  = "fal-ai/flux/dev"
	falRequestBudget = 120 * time.Second
)

// aspect ratio to fal image_size presets.
var falImageSizes = map[string]string{
	"1:1":  "square_hd",
	"16:9": "landscape_16_9",
	"9:16": "portrait_16_9",
	"3:2":  "landscape_4_3",
	"2:3":  "portrait_4_3",
}

// FalProvider serves Flux via fal.ai's synchronous run endpoint.
type FalProvider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewFalProvider builds a fal.ai-backed generator.
func NewFalProvider(apiKey, baseURL string, client *http.Client) *FalProvider {
	if client == nil {
		client = &http.Client{Timeout: falRequestBudget}
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultFalURL
	}
	return &FalProvider{apiKey: strings.TrimSpace(apiKey), baseURL: baseURL, model: defaultFalModel, httpClient: client}
}

type falRequest struct {
	Prompt              string `json:"prompt"`
	ImageSize           string `json:"image_size"`
	NumInferenceSteps   int    `json:"num_inference_steps"`
	GuidanceScale       float64 `json:"guidance_scale"`
	NumImages           int    `json:"num_images"`
	EnableSafetyChecker bool   `json:"enable_safety_checker"`
}

type falResponse struct {
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
	Detail string `json:"detail,omitempty"`
}

func (p *FalProvider) Generate(ctx context.Context, req GenerateRequest) ([]Payload, error) {
	if p.apiKey == "" {
		return nil, providerErr(falName, "api key not configured")
	}

	size, ok := falImageSizes[req.AspectRatio]
	if !ok {
		size = "landscape_16_9"
	}
	variants := req.Variants
	if variants <= 0 {
		variants = 1
	}

	body, err := json.Marshal(falRequest{
		Prompt:              req.Prompt,
		ImageSize:           size,
		NumInferenceSteps:   28,
		GuidanceScale:       3.5,
		NumImages:           variants,
		EnableSafetyChecker: true,
	})
	if err != nil {
		return nil, providerErr(falName, "encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/"+p.model, bytes.NewReader(body))
	if err != nil {
		return nil, providerErr(falName, "build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Key "+p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, providerErr(falName, "call api: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, providerErr(falName, "read response: %w", err)
	}

	var decoded falResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, providerErr(falName, "decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := decoded.Detail
		if msg == "" {
			msg = resp.Status
		}
		return nil, providerErr(falName, "api status %d: %s", resp.StatusCode, msg)
	}

	var out []Payload
	for _, img := range decoded.Images {
		if img.URL != "" {
			out = append(out, Payload{URL: img.URL})
		}
	}
	return out, nil
}

var _ Generator = (*FalProvider)(nil)
