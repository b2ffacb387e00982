package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mugshot/internal/storage"
	"mugshot/pkg/zip"
)

func (a *App) ListRenders(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	job, err := a.ownedJob(r, userID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	renders, err := a.Renders.ListByJobID(r.Context(), job.ID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(renders))
	for _, rd := range renders {
		out = append(out, map[string]any{
			"id":          rd.ID,
			"variant":     rd.Variant,
			"url":         a.Blob.PublicURL(storage.BucketRenders, rd.StoragePath),
			"likes_count": rd.LikesCount,
			"views_count": rd.ViewsCount,
			"created_at":  rd.CreatedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"renders": out})
}

// DownloadRenders streams every render of a job as one zip archive.
func (a *App) DownloadRenders(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	job, err := a.ownedJob(r, userID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	renders, err := a.Renders.ListByJobID(r.Context(), job.ID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	if len(renders) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "no renders for job")
		return
	}

	files := make([]zip.File, 0, len(renders))
	for _, rd := range renders {
		data, err := a.Blob.Download(r.Context(), storage.BucketRenders, rd.StoragePath)
		if err != nil {
			a.Logger.Warn().Err(err).Str("render_id", rd.ID).Msg("bundle download skipped render")
			continue
		}
		files = append(files, zip.File{
			Name: fmt.Sprintf("thumbnail_%d.png", rd.Variant),
			Data: data,
		})
	}
	archive := zip.Archive(files)
	if len(archive) == 0 {
		a.error(w, http.StatusInternalServerError, "internal", "failed to build archive")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", job.ID+".zip"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

// ViewRender bumps the view counter. Any authenticated user may view.
func (a *App) ViewRender(w http.ResponseWriter, r *http.Request) {
	if a.currentUserID(r) == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	if err := a.Renders.IncrementViews(r.Context(), chi.URLParam(r, "render_id")); err != nil {
		a.domainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) LikeRender(w http.ResponseWriter, r *http.Request) {
	a.likeAction(w, r, 1)
}

func (a *App) UnlikeRender(w http.ResponseWriter, r *http.Request) {
	a.likeAction(w, r, -1)
}

func (a *App) likeAction(w http.ResponseWriter, r *http.Request, delta int) {
	if a.currentUserID(r) == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	if err := a.Renders.IncrementLikes(r.Context(), chi.URLParam(r, "render_id"), delta); err != nil {
		a.domainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
