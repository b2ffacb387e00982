package domain

import "context"

// UserRepository defines access methods for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	UpdateProfile(ctx context.Context, user *User) error
	SetVerified(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	// DebitCredits performs the balance check and deduction as one atomic
	// conditional update. It returns ErrInsufficientCredits when the balance
	// is below amount; no partial state is left behind.
	DebitCredits(ctx context.Context, userID string, amount int) error
	// CreditCredits adds amount back to the balance unconditionally.
	CreditCredits(ctx context.Context, userID string, amount int) error
	Credits(ctx context.Context, userID string) (int, error)
}

// JobRepository defines persistence for job entities.
type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, jobID string) (*Job, error)
	// ClaimQueued atomically flips the oldest queued job to running and
	// returns it. ErrNotFound means no queued work is available. The flip is
	// the idempotency acquire: a job can only ever be claimed once.
	ClaimQueued(ctx context.Context) (*Job, error)
	// MarkSucceeded and MarkFailed only apply while the job is running, which
	// keeps terminal states final.
	MarkSucceeded(ctx context.Context, jobID string, costCredits int) error
	MarkFailed(ctx context.Context, jobID string, errMsg string) error
	// FailStuckRunning fails jobs that have been running longer than
	// maxAgeSeconds and returns them so credits can be compensated.
	FailStuckRunning(ctx context.Context, maxAgeSeconds int) ([]Job, error)
	ListByProject(ctx context.Context, projectID string) ([]Job, error)
}

// ProjectRepository defines persistence for projects and their prompts.
type ProjectRepository interface {
	Create(ctx context.Context, project *Project) error
	GetByID(ctx context.Context, id string) (*Project, error)
	GetOwned(ctx context.Context, id, userID string) (*Project, error)
	Update(ctx context.Context, project *Project) error
}

// PromptRepository stores the raw generation config for a project.
type PromptRepository interface {
	Create(ctx context.Context, prompt *Prompt) error
	GetByProjectID(ctx context.Context, projectID string) (*Prompt, error)
	UpdateRaw(ctx context.Context, promptID string, raw []byte, modelPref string) error
}

// RenderRepository persists generated output pointers.
type RenderRepository interface {
	Create(ctx context.Context, render *Render) error
	ListByJobID(ctx context.Context, jobID string) ([]Render, error)
	IncrementViews(ctx context.Context, renderID string) error
	IncrementLikes(ctx context.Context, renderID string, delta int) error
}

// AssetRepository stores uploaded reference images.
type AssetRepository interface {
	Create(ctx context.Context, asset *Asset) error
	Get(ctx context.Context, id string) (*Asset, error)
	GetOwned(ctx context.Context, id, userID string) (*Asset, error)
	ListByUser(ctx context.Context, userID string) ([]Asset, error)
}

// AuditRepository is the append-only credit ledger log.
type AuditRepository interface {
	Append(ctx context.Context, entry *AuditEntry) error
	ListByUser(ctx context.Context, userID string, limit int) ([]AuditEntry, error)
	// SumDeltas returns the signed sum of all deltas for a user, used by the
	// reconciliation sweep.
	SumDeltas(ctx context.Context, userID string) (int, error)
	CountByJobAction(ctx context.Context, jobID, action string) (int, error)
	// ActiveUserIDs lists users with ledger activity in the last sinceHours,
	// bounding the reconciliation sweep to accounts that could have drifted.
	ActiveUserIDs(ctx context.Context, sinceHours int) ([]string, error)
}

// BillingRepository covers plans, subscriptions and history bookkeeping.
type BillingRepository interface {
	ListPlans(ctx context.Context) ([]Plan, error)
	GetSubscription(ctx context.Context, userID string) (*Subscription, error)
	ListHistory(ctx context.Context, userID string, limit, offset int) ([]BillingEvent, int, error)
}

// ReferralRepository manages invite codes and rewards.
type ReferralRepository interface {
	GetCodeByUser(ctx context.Context, userID string) (*ReferralCode, error)
	GetCode(ctx context.Context, code string) (*ReferralCode, error)
	CreateCode(ctx context.Context, code *ReferralCode) error
	IncrementUses(ctx context.Context, code string) error
	CreateReward(ctx context.Context, reward *ReferralReward) error
	ListRewards(ctx context.Context, referrerID string) ([]ReferralReward, error)
}

// SupportRepository stores support tickets.
type SupportRepository interface {
	Create(ctx context.Context, ticket *SupportTicket) error
	ListByUser(ctx context.Context, userID string) ([]SupportTicket, error)
}

// PreferencesRepository stores the per-user settings blob.
type PreferencesRepository interface {
	Get(ctx context.Context, userID string) (*Preferences, error)
	Put(ctx context.Context, userID string, prefs *Preferences) error
}

// SocialRepository covers the follow graph and public profile counters.
type SocialRepository interface {
	Follow(ctx context.Context, followerID, followeeID string) error
	Unfollow(ctx context.Context, followerID, followeeID string) error
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)
	PublicProfile(ctx context.Context, username string) (*PublicProfile, error)
}
