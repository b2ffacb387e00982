package domain

import (
	"encoding/json"
	"time"
)

// ProjectMode enumerates how a project drives generation.
type ProjectMode string

const (
	ProjectModeDesign ProjectMode = "design"
	ProjectModeCopy   ProjectMode = "copy"
)

// NormalizeProjectMode maps free-form input onto a supported mode.
func NormalizeProjectMode(m string) ProjectMode {
	if ProjectMode(m) == ProjectModeCopy {
		return ProjectModeCopy
	}
	return ProjectModeDesign
}

// Project describes a generation target: platform, geometry and the user who
// owns it. Projects are read-only inputs to the job pipeline.
type Project struct {
	ID        string
	UserID    string
	Mode      ProjectMode
	Platform  string
	Width     int
	Height    int
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PromptConfig is the structured portion of a prompt's raw config payload.
type PromptConfig struct {
	Headline   string   `json:"headline,omitempty"`
	Subtext    string   `json:"subtext,omitempty"`
	Vibe       string   `json:"vibe,omitempty"`
	Refs       []string `json:"refs,omitempty"`
	CopyTarget string   `json:"copy_target,omitempty"`
}

// Prompt stores the free-form generation config for a project. Raw keeps the
// original payload so prompt edits merge instead of clobbering unknown keys.
type Prompt struct {
	ID        string
	ProjectID string
	Raw       json.RawMessage
	ModelPref string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Config decodes the structured fields out of Raw. Unknown keys are ignored.
func (p *Prompt) Config() (PromptConfig, error) {
	var cfg PromptConfig
	if len(p.Raw) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(p.Raw, &cfg); err != nil {
		return PromptConfig{}, err
	}
	return cfg, nil
}
