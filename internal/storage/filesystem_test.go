package storage

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestUploadDownloadRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "http://localhost:8080/static")
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	data := []byte{0x89, 'P', 'N', 'G', 0, 1, 2, 3}

	key, err := store.Upload(context.Background(), BucketRenders, "job-1_0.png", data, "image/png")
	if err != nil {
		t.Fatalf("Upload() error: %v", err)
	}
	got, err := store.Download(context.Background(), BucketRenders, key)
	if err != nil {
		t.Fatalf("Download() error: %v", err)
	}
	if !bytes.Equal(data, got) {
		t.Fatalf("round trip mismatch: wrote %v, read %v", data, got)
	}
}

func TestDownloadMissing(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	if _, err := store.Download(context.Background(), BucketRenders, "nope.png"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Download() error = %v, want ErrNotFound", err)
	}
}

func TestSanitizeKeyRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	bad := []string{"../secret", "a/../../etc/passwd", "..", "   "}
	for _, key := range bad {
		if _, err := store.Upload(context.Background(), BucketRenders, key, []byte("x"), ""); err == nil {
			t.Errorf("Upload(%q) accepted a traversal key", key)
		}
	}
}

func TestPublicURL(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "http://cdn.example.com/static/")
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	got := store.PublicURL(BucketRenders, "job-1_0.png")
	want := "http://cdn.example.com/static/" + BucketRenders + "/job-1_0.png"
	if got != want {
		t.Fatalf("PublicURL() = %q, want %q", got, want)
	}
}
