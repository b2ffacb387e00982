package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"mugshot/internal/credits"
	"mugshot/internal/domain"
	"mugshot/internal/modelreg"
	"mugshot/internal/providers/image"
)

type fakeJobs struct {
	succeeded map[string]int
	failed    map[string]string
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{succeeded: map[string]int{}, failed: map[string]string{}}
}

func (f *fakeJobs) Create(ctx context.Context, job *domain.Job) error { return nil }
func (f *fakeJobs) GetByID(ctx context.Context, jobID string) (*domain.Job, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeJobs) ClaimQueued(ctx context.Context) (*domain.Job, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeJobs) MarkSucceeded(ctx context.Context, jobID string, costCredits int) error {
	f.succeeded[jobID] = costCredits
	return nil
}
func (f *fakeJobs) MarkFailed(ctx context.Context, jobID string, errMsg string) error {
	f.failed[jobID] = errMsg
	return nil
}
func (f *fakeJobs) FailStuckRunning(ctx context.Context, maxAgeSeconds int) ([]domain.Job, error) {
	return nil, nil
}
func (f *fakeJobs) ListByProject(ctx context.Context, projectID string) ([]domain.Job, error) {
	return nil, nil
}

type fakeProjects struct {
	project *domain.Project
}

func (f *fakeProjects) Create(ctx context.Context, p *domain.Project) error { return nil }
func (f *fakeProjects) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	if f.project == nil || f.project.ID != id {
		return nil, domain.ErrNotFound
	}
	return f.project, nil
}
func (f *fakeProjects) GetOwned(ctx context.Context, id, userID string) (*domain.Project, error) {
	return f.GetByID(ctx, id)
}
func (f *fakeProjects) Update(ctx context.Context, p *domain.Project) error { return nil }

type fakePrompts struct {
	prompt *domain.Prompt
}

func (f *fakePrompts) Create(ctx context.Context, p *domain.Prompt) error { return nil }
func (f *fakePrompts) GetByProjectID(ctx context.Context, projectID string) (*domain.Prompt, error) {
	if f.prompt == nil {
		return nil, domain.ErrNotFound
	}
	return f.prompt, nil
}
func (f *fakePrompts) UpdateRaw(ctx context.Context, promptID string, raw []byte, modelPref string) error {
	return nil
}

type fakeAssets struct{}

func (fakeAssets) Create(ctx context.Context, a *domain.Asset) error { return nil }
func (fakeAssets) Get(ctx context.Context, id string) (*domain.Asset, error) {
	return nil, domain.ErrNotFound
}
func (fakeAssets) GetOwned(ctx context.Context, id, userID string) (*domain.Asset, error) {
	return nil, domain.ErrNotFound
}
func (fakeAssets) ListByUser(ctx context.Context, userID string) ([]domain.Asset, error) {
	return nil, nil
}

type fakeUsers struct {
	balances map[string]int
}

func (f *fakeUsers) DebitCredits(ctx context.Context, userID string, amount int) error {
	if f.balances[userID] < amount {
		return domain.ErrInsufficientCredits
	}
	f.balances[userID] -= amount
	return nil
}
func (f *fakeUsers) CreditCredits(ctx context.Context, userID string, amount int) error {
	f.balances[userID] += amount
	return nil
}
func (f *fakeUsers) Credits(ctx context.Context, userID string) (int, error) {
	return f.balances[userID], nil
}
func (f *fakeUsers) Create(ctx context.Context, u *domain.User) error { return nil }
func (f *fakeUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeUsers) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeUsers) UpdateProfile(ctx context.Context, u *domain.User) error { return nil }
func (f *fakeUsers) SetVerified(ctx context.Context, id string) error        { return nil }
func (f *fakeUsers) Delete(ctx context.Context, id string) error             { return nil }

type fakeAudit struct {
	entries []domain.AuditEntry
}

func (f *fakeAudit) Append(ctx context.Context, e *domain.AuditEntry) error {
	f.entries = append(f.entries, *e)
	return nil
}
func (f *fakeAudit) ListByUser(ctx context.Context, userID string, limit int) ([]domain.AuditEntry, error) {
	return nil, nil
}
func (f *fakeAudit) SumDeltas(ctx context.Context, userID string) (int, error) {
	sum := 0
	for _, e := range f.entries {
		if e.UserID == userID {
			sum += e.DeltaCredits
		}
	}
	return sum, nil
}
func (f *fakeAudit) CountByJobAction(ctx context.Context, jobID, action string) (int, error) {
	return 0, nil
}
func (f *fakeAudit) ActiveUserIDs(ctx context.Context, sinceHours int) ([]string, error) {
	return nil, nil
}

type fakeDispatcher struct {
	payloads []image.Payload
	err      error
	calls    int
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, m modelreg.Model, req image.GenerateRequest) ([]image.Payload, error) {
	f.calls++
	return f.payloads, f.err
}

type fakePersister struct {
	saved int
	calls int
}

func (f *fakePersister) Persist(ctx context.Context, jobID string, payloads []image.Payload) int {
	f.calls++
	if f.saved < 0 {
		return len(payloads)
	}
	return f.saved
}

type fixture struct {
	orch      *Orchestrator
	jobs      *fakeJobs
	users     *fakeUsers
	audit     *fakeAudit
	dispatch  *fakeDispatcher
	persister *fakePersister
}

func newFixture(balance int, dispatch *fakeDispatcher, persister *fakePersister) *fixture {
	jobs := newFakeJobs()
	users := &fakeUsers{balances: map[string]int{"user-1": balance}}
	audit := &fakeAudit{}
	projects := &fakeProjects{project: &domain.Project{
		ID:     "proj-1",
		UserID: "user-1",
		Mode:   domain.ProjectModeDesign,
		Width:  1280,
		Height: 720,
	}}
	prompts := &fakePrompts{prompt: &domain.Prompt{
		ID:        "prompt-1",
		ProjectID: "proj-1",
		Raw:       []byte(`{"headline":"Epic Battle","vibe":"neon"}`),
	}}
	ledger := credits.NewLedger(users, audit, zerolog.Nop())
	orch := NewOrchestrator(jobs, projects, prompts, fakeAssets{}, ledger, dispatch, persister, nil, zerolog.Nop())
	return &fixture{orch: orch, jobs: jobs, users: users, audit: audit, dispatch: dispatch, persister: persister}
}

func runningJob(cost int) *domain.Job {
	return &domain.Job{
		ID:          "job-1",
		ProjectID:   "proj-1",
		Model:       "nano_banana",
		Quality:     domain.QualityStandard,
		Status:      domain.JobStatusRunning,
		CostCredits: cost,
		Variants:    2,
	}
}

func TestProcessSuccess(t *testing.T) {
	dispatch := &fakeDispatcher{payloads: []image.Payload{{Data: []byte("a")}, {Data: []byte("b")}}}
	persister := &fakePersister{saved: -1}
	f := newFixture(50, dispatch, persister)

	res := f.orch.Process(context.Background(), runningJob(10))

	require.NoError(t, res.Err)
	require.Equal(t, domain.JobStatusSucceeded, res.Status)
	require.Equal(t, 2, res.ImagesSaved)
	require.Equal(t, 10, res.Cost)

	balance, _ := f.users.Credits(context.Background(), "user-1")
	require.Equal(t, 40, balance)
	require.Equal(t, 10, f.jobs.succeeded["job-1"])
	require.Empty(t, f.jobs.failed)
	require.Len(t, f.audit.entries, 1)
	require.Equal(t, domain.AuditActionDeductCredits, f.audit.entries[0].Action)
}

func TestProcessInsufficientCredits(t *testing.T) {
	dispatch := &fakeDispatcher{}
	f := newFixture(5, dispatch, &fakePersister{saved: -1})

	res := f.orch.Process(context.Background(), runningJob(10))

	require.ErrorIs(t, res.Err, domain.ErrInsufficientCredits)
	require.Equal(t, domain.JobStatusFailed, res.Status)
	require.Zero(t, dispatch.calls, "provider must not be called without a paid debit")

	balance, _ := f.users.Credits(context.Background(), "user-1")
	require.Equal(t, 5, balance, "failed debit must not touch the balance")
	require.Contains(t, f.jobs.failed, "job-1")
	require.Empty(t, f.audit.entries, "no ledger rows for a rejected debit")
}

func TestProcessProviderFailureRefunds(t *testing.T) {
	dispatch := &fakeDispatcher{err: errors.New("upstream 500")}
	f := newFixture(50, dispatch, &fakePersister{saved: -1})

	res := f.orch.Process(context.Background(), runningJob(10))

	require.ErrorIs(t, res.Err, domain.ErrProviderFailure)
	require.Equal(t, domain.JobStatusFailed, res.Status)

	balance, _ := f.users.Credits(context.Background(), "user-1")
	require.Equal(t, 50, balance, "provider failure must refund the debit")
	require.Len(t, f.audit.entries, 2)
	require.Equal(t, domain.AuditActionDeductCredits, f.audit.entries[0].Action)
	require.Equal(t, domain.AuditActionRefundCredits, f.audit.entries[1].Action)

	sum, _ := f.audit.SumDeltas(context.Background(), "user-1")
	require.Zero(t, sum)
}

func TestProcessNoImagesRefunds(t *testing.T) {
	dispatch := &fakeDispatcher{payloads: nil}
	f := newFixture(50, dispatch, &fakePersister{saved: -1})

	res := f.orch.Process(context.Background(), runningJob(10))

	require.ErrorIs(t, res.Err, domain.ErrNoImages)
	balance, _ := f.users.Credits(context.Background(), "user-1")
	require.Equal(t, 50, balance)
}

func TestProcessNothingPersistedRefunds(t *testing.T) {
	dispatch := &fakeDispatcher{payloads: []image.Payload{{Data: []byte("a")}}}
	persister := &fakePersister{saved: 0}
	f := newFixture(50, dispatch, persister)

	res := f.orch.Process(context.Background(), runningJob(10))

	require.ErrorIs(t, res.Err, domain.ErrNothingPersisted)
	require.Equal(t, 1, persister.calls)
	balance, _ := f.users.Credits(context.Background(), "user-1")
	require.Equal(t, 50, balance)
}

func TestProcessRejectsNonRunningJob(t *testing.T) {
	dispatch := &fakeDispatcher{}
	f := newFixture(50, dispatch, &fakePersister{saved: -1})

	job := runningJob(10)
	job.Status = domain.JobStatusQueued
	res := f.orch.Process(context.Background(), job)

	require.ErrorIs(t, res.Err, domain.ErrInvalidTransition)
	require.Zero(t, dispatch.calls)
	balance, _ := f.users.Credits(context.Background(), "user-1")
	require.Equal(t, 50, balance)
}
