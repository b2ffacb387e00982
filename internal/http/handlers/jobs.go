package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"mugshot/internal/domain"
	"mugshot/internal/modelreg"
	"mugshot/internal/storage"
)

func (a *App) jobDTO(job *domain.Job) map[string]any {
	return map[string]any{
		"id":            job.ID,
		"project_id":    job.ProjectID,
		"model":         job.Model,
		"quality":       job.Quality,
		"status":        job.Status,
		"cost_credits":  job.CostCredits,
		"variants":      job.Variants,
		"error_message": job.ErrorMessage,
		"created_at":    job.CreatedAt,
		"started_at":    job.StartedAt,
		"finished_at":   job.FinishedAt,
	}
}

// ownedJob loads the job named in the route and verifies it belongs to the
// caller through its project.
func (a *App) ownedJob(r *http.Request, userID string) (*domain.Job, error) {
	job, err := a.Jobs.GetByID(r.Context(), chi.URLParam(r, "job_id"))
	if err != nil {
		return nil, err
	}
	if _, err := a.Projects.GetOwned(r.Context(), job.ProjectID, userID); err != nil {
		return nil, domain.ErrNotFound
	}
	return job, nil
}

// JobStatus returns the state of one job plus any renders produced so far.
// Ownership is checked through the project the job belongs to.
func (a *App) JobStatus(w http.ResponseWriter, r *http.Request) {
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

	dto := a.jobDTO(job)
	if job.Status == domain.JobStatusSucceeded {
		renders, err := a.Renders.ListByJobID(r.Context(), job.ID)
		if err == nil {
			urls := make([]map[string]any, 0, len(renders))
			for _, rd := range renders {
				urls = append(urls, map[string]any{
					"id":      rd.ID,
					"variant": rd.Variant,
					"url":     a.Blob.PublicURL(storage.BucketRenders, rd.StoragePath),
				})
			}
			dto["renders"] = urls
		}
	}
	a.json(w, http.StatusOK, dto)
}

// ListModels describes the models clients may request.
func (a *App) ListModels(w http.ResponseWriter, r *http.Request) {
	models := make([]modelreg.Info, 0, len(modelreg.All()))
	for _, m := range modelreg.All() {
		models = append(models, modelreg.Describe(m))
	}
	a.json(w, http.StatusOK, map[string]any{
		"models":  models,
		"default": modelreg.Default,
	})
}
