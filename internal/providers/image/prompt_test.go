package image

import (
	"strings"
	"testing"

	"mugshot/internal/domain"
)

func TestBuildPrompt(t *testing.T) {
	project := &domain.Project{Platform: "youtube", Mode: domain.ProjectModeDesign}
	cfg := domain.PromptConfig{Headline: "Top 10 Builds", Subtext: "ranked", Vibe: "neon"}

	got := BuildPrompt(project, cfg)
	for _, want := range []string{"Create a Youtube thumbnail.", "Title: Top 10 Builds", "Subtext: ranked", "Vibe: neon"} {
		if !strings.Contains(got, want) {
			t.Errorf("BuildPrompt() missing %q in %q", want, got)
		}
	}
}

func TestBuildPromptDefaults(t *testing.T) {
	got := BuildPrompt(&domain.Project{}, domain.PromptConfig{})
	if got != "Create a Web thumbnail." {
		t.Fatalf("BuildPrompt() = %q", got)
	}
}

func TestBuildPromptCopyMode(t *testing.T) {
	project := &domain.Project{Platform: "youtube", Mode: domain.ProjectModeCopy}
	cfg := domain.PromptConfig{Headline: "Remake", CopyTarget: "https://example.com/ref.png"}

	got := BuildPrompt(project, cfg)
	if !strings.Contains(got, "Recreate the composition and style of: https://example.com/ref.png") {
		t.Errorf("BuildPrompt() missing copy target in %q", got)
	}

	project.Mode = domain.ProjectModeDesign
	if strings.Contains(BuildPrompt(project, cfg), "Recreate") {
		t.Error("BuildPrompt() applied copy target outside copy mode")
	}
}

func TestAspectRatio(t *testing.T) {
	tests := []struct {
		w, h int
		want string
	}{
		{1280, 720, "16:9"},
		{1920, 1080, "16:9"},
		{1080, 1080, "1:1"},
		{1080, 1920, "9:16"},
		{0, 720, "16:9"},
	}
	for _, tt := range tests {
		if got := AspectRatio(tt.w, tt.h); got != tt.want {
			t.Errorf("AspectRatio(%d, %d) = %q, want %q", tt.w, tt.h, got, tt.want)
		}
	}
}
