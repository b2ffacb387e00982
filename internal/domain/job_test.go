package domain

import "testing"

func TestJobStatusTransitions(t *testing.T) {
	tests := []struct {
		from JobStatus
		to   JobStatus
		ok   bool
	}{
		{JobStatusQueued, JobStatusRunning, true},
		{JobStatusRunning, JobStatusSucceeded, true},
		{JobStatusRunning, JobStatusFailed, true},
		{JobStatusQueued, JobStatusSucceeded, false},
		{JobStatusQueued, JobStatusFailed, false},
		{JobStatusSucceeded, JobStatusRunning, false},
		{JobStatusSucceeded, JobStatusFailed, false},
		{JobStatusFailed, JobStatusRunning, false},
		{JobStatusFailed, JobStatusQueued, false},
		{JobStatusRunning, JobStatusQueued, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.ok {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.ok)
		}
	}
}

func TestTerminal(t *testing.T) {
	if JobStatusQueued.Terminal() || JobStatusRunning.Terminal() {
		t.Error("non-terminal status reported terminal")
	}
	if !JobStatusSucceeded.Terminal() || !JobStatusFailed.Terminal() {
		t.Error("terminal status not reported terminal")
	}
}

func TestNormalizeQuality(t *testing.T) {
	tests := []struct {
		in   string
		want Quality
	}{
		{"draft", QualityDraft},
		{"std", QualityStandard},
		{"4k", Quality4K},
		{"", QualityStandard},
		{"8k", QualityStandard},
	}
	for _, tt := range tests {
		if got := NormalizeQuality(tt.in); got != tt.want {
			t.Errorf("NormalizeQuality(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
