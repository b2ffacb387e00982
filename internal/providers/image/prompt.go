package image

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"mugshot/internal/domain"
)

var titleCaser = cases.Title(language.English)

// BuildPrompt renders the final text prompt handed to a provider from the
// project geometry and the structured prompt config.
func BuildPrompt(project *domain.Project, cfg domain.PromptConfig) string {
	var b strings.Builder
	platform := titleCaser.String(strings.TrimSpace(project.Platform))
	if platform == "" {
		platform = "Web"
	}
	fmt.Fprintf(&b, "Create a %s thumbnail.", platform)
	if cfg.Headline != "" {
		fmt.Fprintf(&b, "\nTitle: %s", cfg.Headline)
	}
	if cfg.Subtext != "" {
		fmt.Fprintf(&b, "\nSubtext: %s", cfg.Subtext)
	}
	if cfg.Vibe != "" {
		fmt.Fprintf(&b, "\nVibe: %s", cfg.Vibe)
	}
	if project.Mode == domain.ProjectModeCopy && cfg.CopyTarget != "" {
		fmt.Fprintf(&b, "\nRecreate the composition and style of: %s", cfg.CopyTarget)
	}
	return b.String()
}

// AspectRatio reduces width x height to the closest simple ratio string.
func AspectRatio(width, height int) string {
	if width <= 0 || height <= 0 {
		return "16:9"
	}
	d := gcd(width, height)
	return fmt.Sprintf("%d:%d", width/d, height/d)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
