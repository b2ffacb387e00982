package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mugshot/internal/credits"
	"mugshot/internal/domain"
	"mugshot/internal/modelreg"
)

type createProjectRequest struct {
	Mode     string          `json:"mode"`
	Platform string          `json:"platform"`
	Width    int             `json:"width"`
	Height   int             `json:"height"`
	Prompt   json.RawMessage `json:"prompt"`
	Model    string          `json:"model"`
}

type projectDTO struct {
	ID        string          `json:"id"`
	Mode      string          `json:"mode"`
	Platform  string          `json:"platform"`
	Width     int             `json:"width"`
	Height    int             `json:"height"`
	Status    string          `json:"status"`
	Prompt    json.RawMessage `json:"prompt,omitempty"`
	ModelPref string          `json:"model,omitempty"`
}

func (a *App) CreateProject(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Width <= 0 {
		req.Width = 1280
	}
	if req.Height <= 0 {
		req.Height = 720
	}

	project := &domain.Project{
		UserID:   userID,
		Mode:     domain.NormalizeProjectMode(req.Mode),
		Platform: req.Platform,
		Width:    req.Width,
		Height:   req.Height,
		Status:   "draft",
	}
	if err := a.Projects.Create(r.Context(), project); err != nil {
		a.domainError(w, err)
		return
	}

	prompt := &domain.Prompt{
		ProjectID: project.ID,
		Raw:       req.Prompt,
		ModelPref: string(modelreg.Parse(req.Model)),
	}
	if err := a.Prompts.Create(r.Context(), prompt); err != nil {
		a.domainError(w, err)
		return
	}

	a.json(w, http.StatusCreated, projectDTO{
		ID:        project.ID,
		Mode:      string(project.Mode),
		Platform:  project.Platform,
		Width:     project.Width,
		Height:    project.Height,
		Status:    project.Status,
		Prompt:    prompt.Raw,
		ModelPref: prompt.ModelPref,
	})
}

func (a *App) GetProject(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	project, err := a.Projects.GetOwned(r.Context(), chi.URLParam(r, "project_id"), userID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	dto := projectDTO{
		ID:       project.ID,
		Mode:     string(project.Mode),
		Platform: project.Platform,
		Width:    project.Width,
		Height:   project.Height,
		Status:   project.Status,
	}
	if prompt, err := a.Prompts.GetByProjectID(r.Context(), project.ID); err == nil {
		dto.Prompt = prompt.Raw
		dto.ModelPref = prompt.ModelPref
	}
	a.json(w, http.StatusOK, dto)
}

type updateProjectRequest struct {
	Platform *string         `json:"platform"`
	Width    *int            `json:"width"`
	Height   *int            `json:"height"`
	Status   *string         `json:"status"`
	Prompt   json.RawMessage `json:"prompt"`
	Model    *string         `json:"model"`
}

func (a *App) UpdateProject(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	project, err := a.Projects.GetOwned(r.Context(), chi.URLParam(r, "project_id"), userID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	var req updateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Platform != nil {
		project.Platform = *req.Platform
	}
	if req.Width != nil && *req.Width > 0 {
		project.Width = *req.Width
	}
	if req.Height != nil && *req.Height > 0 {
		project.Height = *req.Height
	}
	if req.Status != nil {
		project.Status = *req.Status
	}
	if err := a.Projects.Update(r.Context(), project); err != nil {
		a.domainError(w, err)
		return
	}

	if req.Prompt != nil || req.Model != nil {
		prompt, err := a.Prompts.GetByProjectID(r.Context(), project.ID)
		if err != nil {
			a.domainError(w, err)
			return
		}
		raw := prompt.Raw
		if req.Prompt != nil {
			raw = req.Prompt
		}
		modelPref := prompt.ModelPref
		if req.Model != nil {
			modelPref = string(modelreg.Parse(*req.Model))
		}
		if err := a.Prompts.UpdateRaw(r.Context(), prompt.ID, raw, modelPref); err != nil {
			a.domainError(w, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

type queueRequest struct {
	Model    string `json:"model"`
	Quality  string `json:"quality"`
	Variants int    `json:"variants"`
}

type queueResponse struct {
	JobID       string `json:"job_id"`
	Status      string `json:"status"`
	CostCredits int    `json:"cost_credits"`
}

// QueueGeneration enqueues a generation job for a project. The job row is the
// durable queue entry; credits are deducted by the worker when it picks the
// job up, so the cost returned here is an estimate of what will be charged.
func (a *App) QueueGeneration(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	project, err := a.Projects.GetOwned(r.Context(), chi.URLParam(r, "project_id"), userID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	var req queueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	modelName := req.Model
	if modelName == "" {
		if prompt, err := a.Prompts.GetByProjectID(r.Context(), project.ID); err == nil && prompt.ModelPref != "" {
			modelName = prompt.ModelPref
		}
	}
	if modelName == "" {
		if prefs, err := a.Preferences.Get(r.Context(), userID); err == nil {
			modelName = prefs.DefaultAIModel
		}
	}
	model := modelreg.Parse(modelName)
	quality := domain.NormalizeQuality(req.Quality)
	variants := req.Variants
	if variants < 1 || variants > 8 {
		variants = 4
	}
	cost := credits.Cost(quality, project.Mode, model)

	if balance, err := a.Users.Credits(r.Context(), userID); err == nil && balance < cost {
		a.error(w, http.StatusPaymentRequired, "insufficient_credits", "not enough credits")
		return
	}

	job := &domain.Job{
		ProjectID:   project.ID,
		Model:       string(model),
		Quality:     quality,
		Status:      domain.JobStatusQueued,
		CostCredits: cost,
		Variants:    variants,
	}
	if err := a.Jobs.Create(r.Context(), job); err != nil {
		a.domainError(w, err)
		return
	}

	if err := a.Audit.Append(r.Context(), &domain.AuditEntry{
		UserID: userID,
		Action: domain.AuditActionJobQueued,
		Meta: domain.AuditMeta(map[string]any{
			"job_id":     job.ID,
			"project_id": project.ID,
			"model":      job.Model,
			"cost":       cost,
		}),
	}); err != nil {
		a.Logger.Warn().Err(err).Str("job_id", job.ID).Msg("queue audit failed")
	}

	a.json(w, http.StatusAccepted, queueResponse{
		JobID:       job.ID,
		Status:      string(job.Status),
		CostCredits: cost,
	})
}

func (a *App) ListProjectJobs(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	project, err := a.Projects.GetOwned(r.Context(), chi.URLParam(r, "project_id"), userID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	jobs, err := a.Jobs.ListByProject(r.Context(), project.ID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(jobs))
	for i := range jobs {
		out = append(out, a.jobDTO(&jobs[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"jobs": out})
}
