package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"mugshot/internal/domain"
	"mugshot/internal/storage"
)

const maxAssetBytes = 10 << 20

// UploadAsset stores a reference image for later use in generation requests.
func (a *App) UploadAsset(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	if err := r.ParseMultipartForm(maxAssetBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "file required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAssetBytes+1))
	if err != nil {
		a.domainError(w, err)
		return
	}
	if len(data) > maxAssetBytes {
		a.error(w, http.StatusRequestEntityTooLarge, "too_large", "asset exceeds 10MB")
		return
	}
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		a.error(w, http.StatusBadRequest, "bad_request", "asset must be an image")
		return
	}

	key := fmt.Sprintf("%s/%s", userID, uuid.NewString())
	path, err := a.Blob.Upload(r.Context(), storage.BucketUserAssets, key, data, contentType)
	if err != nil {
		a.domainError(w, err)
		return
	}

	asset := &domain.Asset{
		UserID: userID,
		Path:   path,
		MIME:   contentType,
		Bytes:  int64(len(data)),
	}
	if err := a.Assets.Create(r.Context(), asset); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, map[string]any{
		"id":    asset.ID,
		"mime":  asset.MIME,
		"bytes": asset.Bytes,
	})
}

func (a *App) ListAssets(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	assets, err := a.Assets.ListByUser(r.Context(), userID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(assets))
	for _, asset := range assets {
		out = append(out, map[string]any{
			"id":         asset.ID,
			"mime":       asset.MIME,
			"bytes":      asset.Bytes,
			"created_at": asset.CreatedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"assets": out})
}

func (a *App) DownloadAsset(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	asset, err := a.Assets.GetOwned(r.Context(), chi.URLParam(r, "asset_id"), userID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	data, err := a.Blob.Download(r.Context(), storage.BucketUserAssets, asset.Path)
	if err != nil {
		a.domainError(w, err)
		return
	}
	w.Header().Set("Content-Type", asset.MIME)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
