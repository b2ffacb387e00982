package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"mugshot/internal/domain"
	"mugshot/internal/middleware"
)

type stubProjects struct {
	project *domain.Project
}

func (s *stubProjects) Create(ctx context.Context, p *domain.Project) error { return nil }
func (s *stubProjects) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	return s.GetOwned(ctx, id, "")
}
func (s *stubProjects) GetOwned(ctx context.Context, id, userID string) (*domain.Project, error) {
	if s.project == nil || s.project.ID != id {
		return nil, domain.ErrNotFound
	}
	return s.project, nil
}
func (s *stubProjects) Update(ctx context.Context, p *domain.Project) error { return nil }

type stubPrompts struct{}

func (stubPrompts) Create(ctx context.Context, p *domain.Prompt) error { return nil }
func (stubPrompts) GetByProjectID(ctx context.Context, projectID string) (*domain.Prompt, error) {
	return nil, domain.ErrNotFound
}
func (stubPrompts) UpdateRaw(ctx context.Context, promptID string, raw []byte, modelPref string) error {
	return nil
}

type stubPrefs struct{}

func (stubPrefs) Get(ctx context.Context, userID string) (*domain.Preferences, error) {
	prefs := domain.DefaultPreferences()
	return &prefs, nil
}
func (stubPrefs) Put(ctx context.Context, userID string, prefs *domain.Preferences) error {
	return nil
}

type stubJobs struct {
	created []*domain.Job
}

func (s *stubJobs) Create(ctx context.Context, job *domain.Job) error {
	job.ID = "job-created"
	s.created = append(s.created, job)
	return nil
}
func (s *stubJobs) GetByID(ctx context.Context, jobID string) (*domain.Job, error) {
	return nil, domain.ErrNotFound
}
func (s *stubJobs) ClaimQueued(ctx context.Context) (*domain.Job, error) {
	return nil, domain.ErrNotFound
}
func (s *stubJobs) MarkSucceeded(ctx context.Context, jobID string, costCredits int) error {
	return nil
}
func (s *stubJobs) MarkFailed(ctx context.Context, jobID string, errMsg string) error { return nil }
func (s *stubJobs) FailStuckRunning(ctx context.Context, maxAgeSeconds int) ([]domain.Job, error) {
	return nil, nil
}
func (s *stubJobs) ListByProject(ctx context.Context, projectID string) ([]domain.Job, error) {
	return nil, nil
}

type stubBalance struct {
	credits int
}

func (s *stubBalance) Credits(ctx context.Context, userID string) (int, error) {
	return s.credits, nil
}
func (s *stubBalance) DebitCredits(ctx context.Context, userID string, amount int) error { return nil }
func (s *stubBalance) CreditCredits(ctx context.Context, userID string, amount int) error {
	return nil
}
func (s *stubBalance) Create(ctx context.Context, u *domain.User) error { return nil }
func (s *stubBalance) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return nil, domain.ErrNotFound
}
func (s *stubBalance) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, domain.ErrNotFound
}
func (s *stubBalance) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return nil, domain.ErrNotFound
}
func (s *stubBalance) UpdateProfile(ctx context.Context, u *domain.User) error { return nil }
func (s *stubBalance) SetVerified(ctx context.Context, id string) error        { return nil }
func (s *stubBalance) Delete(ctx context.Context, id string) error             { return nil }

type stubAudit struct {
	entries []domain.AuditEntry
}

func (s *stubAudit) Append(ctx context.Context, e *domain.AuditEntry) error {
	s.entries = append(s.entries, *e)
	return nil
}
func (s *stubAudit) ListByUser(ctx context.Context, userID string, limit int) ([]domain.AuditEntry, error) {
	return nil, nil
}
func (s *stubAudit) SumDeltas(ctx context.Context, userID string) (int, error) { return 0, nil }
func (s *stubAudit) CountByJobAction(ctx context.Context, jobID, action string) (int, error) {
	return 0, nil
}
func (s *stubAudit) ActiveUserIDs(ctx context.Context, sinceHours int) ([]string, error) {
	return nil, nil
}

func queueTestApp(balance int) (*App, *stubJobs, *stubAudit) {
	jobs := &stubJobs{}
	audit := &stubAudit{}
	app := &App{
		Users: &stubBalance{credits: balance},
		Jobs:  jobs,
		Projects: &stubProjects{project: &domain.Project{
			ID:     "proj-1",
			UserID: "user-1",
			Mode:   domain.ProjectModeDesign,
			Width:  1280,
			Height: 720,
		}},
		Prompts:     stubPrompts{},
		Preferences: stubPrefs{},
		Audit:       audit,
		Logger:      zerolog.Nop(),
	}
	return app, jobs, audit
}

func queueRequestFor(t *testing.T, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/projects/proj-1/queue", bytes.NewBufferString(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("project_id", "proj-1")
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = middleware.ContextWithUserID(ctx, "user-1")
	return req.WithContext(ctx)
}

func TestQueueGeneration(t *testing.T) {
	app, jobs, audit := queueTestApp(50)

	rec := httptest.NewRecorder()
	app.QueueGeneration(rec, queueRequestFor(t, `{"model":"nano_banana","quality":"std","variants":2}`))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202 (%s)", rec.Code, rec.Body.String())
	}
	var resp queueResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.JobID == "" || resp.Status != "queued" || resp.CostCredits != 10 {
		t.Fatalf("response = %+v", resp)
	}
	if len(jobs.created) != 1 {
		t.Fatalf("created %d jobs, want 1", len(jobs.created))
	}
	job := jobs.created[0]
	if job.Status != domain.JobStatusQueued || job.Model != "nano_banana" || job.Variants != 2 {
		t.Fatalf("job = %+v", job)
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != domain.AuditActionJobQueued {
		t.Fatalf("audit = %+v", audit.entries)
	}
}

func TestQueueGenerationInsufficientCredits(t *testing.T) {
	app, jobs, _ := queueTestApp(5)

	rec := httptest.NewRecorder()
	app.QueueGeneration(rec, queueRequestFor(t, `{"model":"nano_banana","quality":"std"}`))

	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("status = %d, want 402 (%s)", rec.Code, rec.Body.String())
	}
	if len(jobs.created) != 0 {
		t.Fatalf("job created despite insufficient balance")
	}
}

func TestQueueGenerationUnknownModelFallsBack(t *testing.T) {
	app, jobs, _ := queueTestApp(50)

	rec := httptest.NewRecorder()
	app.QueueGeneration(rec, queueRequestFor(t, `{"model":"dall-e-3"}`))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202 (%s)", rec.Code, rec.Body.String())
	}
	if jobs.created[0].Model != "nano_banana" {
		t.Fatalf("model = %q, want fallback nano_banana", jobs.created[0].Model)
	}
}

func TestQueueGenerationRequiresAuth(t *testing.T) {
	app, _, _ := queueTestApp(50)

	req := httptest.NewRequest(http.MethodPost, "/v1/projects/proj-1/queue", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	app.QueueGeneration(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
