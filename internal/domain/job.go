package domain

import (
	"encoding/json"
	"time"
)

// JobStatus enumerates job lifecycle states.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether the status is an end state.
func (s JobStatus) Terminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed
}

// CanTransition reports whether moving from s to next is legal. Transitions
// are one-directional: queued -> running -> {succeeded, failed}.
func (s JobStatus) CanTransition(next JobStatus) bool {
	switch s {
	case JobStatusQueued:
		return next == JobStatusRunning
	case JobStatusRunning:
		return next == JobStatusSucceeded || next == JobStatusFailed
	default:
		return false
	}
}

// Quality enumerates supported output quality tiers.
type Quality string

const (
	QualityDraft    Quality = "draft"
	QualityStandard Quality = "std"
	Quality4K       Quality = "4k"
)

// NormalizeQuality maps free-form input onto a supported tier.
func NormalizeQuality(q string) Quality {
	switch Quality(q) {
	case QualityDraft, Quality4K:
		return Quality(q)
	default:
		return QualityStandard
	}
}

// Job is one unit of generation work. Rows are created at enqueue time and
// mutated exclusively by the worker pipeline; they are never deleted.
type Job struct {
	ID           string
	ProjectID    string
	Model        string
	Quality      Quality
	Status       JobStatus
	CostCredits  int
	Variants     int
	ProviderMeta json.RawMessage
	ErrorMessage string
	CreatedAt    time.Time
	StartedAt    *time.Time
	FinishedAt   *time.Time
}
