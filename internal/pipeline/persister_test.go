package pipeline

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"mugshot/internal/domain"
	"mugshot/internal/providers/image"
	"mugshot/internal/storage"
)

type memRenders struct {
	rows []domain.Render
}

func (m *memRenders) Create(ctx context.Context, r *domain.Render) error {
	m.rows = append(m.rows, *r)
	return nil
}
func (m *memRenders) ListByJobID(ctx context.Context, jobID string) ([]domain.Render, error) {
	return m.rows, nil
}
func (m *memRenders) IncrementViews(ctx context.Context, renderID string) error { return nil }
func (m *memRenders) IncrementLikes(ctx context.Context, renderID string, delta int) error {
	return nil
}

func newTestStore(t *testing.T) *storage.FileStore {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir(), "http://localhost/static")
	require.NoError(t, err)
	return store
}

func TestPersistByteIdentity(t *testing.T) {
	pngBytes := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 1, 2, 3}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(pngBytes)
	}))
	defer srv.Close()

	store := newTestStore(t)
	renders := &memRenders{}
	p := NewPersister(store, renders, srv.Client(), zerolog.Nop())

	payloads := []image.Payload{
		{Data: pngBytes},
		{B64: base64.StdEncoding.EncodeToString(pngBytes)},
		{URL: srv.URL + "/out.png"},
	}
	saved := p.Persist(context.Background(), "job-42", payloads)
	require.Equal(t, 3, saved)
	require.Len(t, renders.rows, 3)

	for _, row := range renders.rows {
		data, err := store.Download(context.Background(), storage.BucketRenders, row.StoragePath)
		require.NoError(t, err)
		require.True(t, bytes.Equal(pngBytes, data), "stored bytes differ for variant %d", row.Variant)
	}
}

func TestPersistIsolatesFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	store := newTestStore(t)
	renders := &memRenders{}
	p := NewPersister(store, renders, srv.Client(), zerolog.Nop())

	payloads := []image.Payload{
		{URL: srv.URL + "/gone.png"},
		{B64: "!!not-base64!!"},
		{Data: []byte("good")},
		{},
	}
	saved := p.Persist(context.Background(), "job-43", payloads)
	require.Equal(t, 1, saved)
	require.Len(t, renders.rows, 1)
	require.Equal(t, 2, renders.rows[0].Variant, "only the raw payload survives")
}
