package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	seedreamName           = "seedream"
	defaultByteDanceURL    = "https://ark.cn-beijing.volces.com/api/v3/images/generations"
	defaultByteDanceModel  = "seedream-4.0"
	byteDanceRequestBudget = 90 * time.Second
)

// ByteDanceProvider serves the Seedream family over the Ark images API.
type ByteDanceProvider struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewByteDanceProvider builds a Seedream-backed generator.
func NewByteDanceProvider(apiKey, endpoint string, client *http.Client) *ByteDanceProvider {
	if client == nil {
		client = &http.Client{Timeout: byteDanceRequestBudget}
	}
	if strings.TrimSpace(endpoint) == "" {
		endpoint = defaultByteDanceURL
	}
	return &ByteDanceProvider{apiKey: strings.TrimSpace(apiKey), endpoint: endpoint, httpClient: client}
}

type byteDanceRequest struct {
	Model          string   `json:"model"`
	Prompt         string   `json:"prompt"`
	Size           string   `json:"size,omitempty"`
	N              int      `json:"n,omitempty"`
	ResponseFormat string   `json:"response_format,omitempty"`
	Images         []string `json:"image,omitempty"`
}

type byteDanceResponse struct {
	Data []struct {
		URL     string `json:"url,omitempty"`
		B64JSON string `json:"b64_json,omitempty"`
	} `json:"data"`
	Error struct {
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

func (p *ByteDanceProvider) Generate(ctx context.Context, req GenerateRequest) ([]Payload, error) {
	if p.apiKey == "" {
		return nil, providerErr(seedreamName, "api key not configured")
	}

	variants := req.Variants
	if variants <= 0 {
		variants = 1
	}
	width, height := req.Width, req.Height
	if width <= 0 || height <= 0 {
		width, height = 1024, 1024
	}

	var refs []string
	for _, ref := range req.ReferenceImages {
		refs = append(refs, "data:image/jpeg;base64,"+base64.StdEncoding.EncodeToString(ref))
	}

	body, err := json.Marshal(byteDanceRequest{
		Model:          defaultByteDanceModel,
		Prompt:         req.Prompt,
		Size:           sizeString(width, height),
		N:              variants,
		ResponseFormat: "url",
		Images:         refs,
	})
	if err != nil {
		return nil, providerErr(seedreamName, "encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, providerErr(seedreamName, "build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, providerErr(seedreamName, "call api: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, providerErr(seedreamName, "read response: %w", err)
	}

	var decoded byteDanceResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, providerErr(seedreamName, "decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := decoded.Error.Message
		if msg == "" {
			msg = resp.Status
		}
		return nil, providerErr(seedreamName, "api status %d: %s", resp.StatusCode, msg)
	}

	var out []Payload
	for _, item := range decoded.Data {
		switch {
		case item.URL != "":
			out = append(out, Payload{URL: item.URL})
		case item.B64JSON != "":
			out = append(out, Payload{B64: item.B64JSON})
		}
	}
	return out, nil
}

func sizeString(width, height int) string {
	return strconv.Itoa(width) + "x" + strconv.Itoa(height)
}

var _ Generator = (*ByteDanceProvider)(nil)
