package pipeline

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"mugshot/internal/domain"
	"mugshot/internal/providers/image"
	"mugshot/internal/storage"
)

const fetchTimeout = 30 * time.Second

// Persister writes generated image payloads to the renders bucket and
// records a render row per saved variant. Per-image failures are isolated:
// one bad payload never aborts the rest.
type Persister struct {
	blob       storage.BlobStore
	renders    domain.RenderRepository
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewPersister builds a Persister. A nil client gets one with the bounded
// fetch timeout applied.
func NewPersister(blob storage.BlobStore, renders domain.RenderRepository, client *http.Client, logger zerolog.Logger) *Persister {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	return &Persister{blob: blob, renders: renders, httpClient: client, logger: logger}
}

// Persist stores each payload under a job-scoped key with a zero-based
// variant index and returns how many variants were saved.
func (p *Persister) Persist(ctx context.Context, jobID string, payloads []image.Payload) int {
	saved := 0
	for i, payload := range payloads {
		if err := p.persistOne(ctx, jobID, i, payload); err != nil {
			p.logger.Error().Err(err).Str("job_id", jobID).Int("variant", i).Msg("persister: save render failed")
			continue
		}
		saved++
	}
	return saved
}

func (p *Persister) persistOne(ctx context.Context, jobID string, variant int, payload image.Payload) error {
	data, err := p.resolve(ctx, payload)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("%s_%d.png", jobID, variant)
	storedKey, err := p.blob.Upload(ctx, storage.BucketRenders, key, data, "image/png")
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	render := &domain.Render{
		JobID:       jobID,
		Variant:     variant,
		StoragePath: storedKey,
	}
	if err := p.renders.Create(ctx, render); err != nil {
		return fmt.Errorf("record render: %w", err)
	}
	return nil
}

// resolve materializes a payload into raw bytes: remote URLs are fetched
// with a bounded timeout, base64 text is decoded, raw bytes pass through.
func (p *Persister) resolve(ctx context.Context, payload image.Payload) ([]byte, error) {
	switch {
	case payload.URL != "":
		return p.fetch(ctx, payload.URL)
	case payload.B64 != "":
		data, err := base64.StdEncoding.DecodeString(payload.B64)
		if err != nil {
			return nil, fmt.Errorf("decode base64: %w", err)
		}
		return data, nil
	case len(payload.Data) > 0:
		return payload.Data, nil
	default:
		return nil, fmt.Errorf("empty payload")
	}
}

func (p *Persister) fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}
