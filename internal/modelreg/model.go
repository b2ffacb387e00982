// Package modelreg is the single source of truth for generation model
// identifiers. Every validation point (project create, job create, queue)
// resolves user input through Parse so the allow-list cannot drift between
// call sites.
package modelreg

import "strings"

// Model is a closed enum of supported generation models.
type Model string

const (
	NanoBanana    Model = "nano_banana"
	NanoBananaPro Model = "nano_banana_pro"
	Seedream      Model = "seedream"
	GeminiFlash   Model = "gemini_flash"
	GeminiPro     Model = "gemini_pro"
	FalFlux       Model = "fal_flux"
)

// Default is the baseline model substituted for unknown or empty input.
const Default = NanoBanana

// All lists every supported model in display order.
func All() []Model {
	return []Model{NanoBanana, NanoBananaPro, Seedream, GeminiFlash, GeminiPro, FalFlux}
}

// Parse resolves free-form input to a supported model. Unknown or empty
// identifiers fall back to Default instead of failing: a stale client must
// still be able to queue work.
func Parse(s string) Model {
	m := Model(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range All() {
		if m == known {
			return m
		}
	}
	return Default
}

// Known reports whether s names a supported model without applying the
// fallback.
func Known(s string) bool {
	m := Model(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range All() {
		if m == known {
			return true
		}
	}
	return false
}

// Info describes a model for the public model listing.
type Info struct {
	Name        string `json:"name"`
	Family      string `json:"family"`
	Description string `json:"description"`
	BaseCost    int    `json:"base_cost"`
}

// Describe returns display metadata for a model.
func Describe(m Model) Info {
	switch m {
	case NanoBananaPro:
		return Info{Name: string(m), Family: "gemini", Description: "Nano Banana Pro, highest fidelity", BaseCost: 20}
	case Seedream:
		return Info{Name: string(m), Family: "bytedance", Description: "Seedream 4.0 by ByteDance", BaseCost: 15}
	case GeminiFlash:
		return Info{Name: string(m), Family: "gemini", Description: "Gemini Flash, fast drafts", BaseCost: 10}
	case GeminiPro:
		return Info{Name: string(m), Family: "gemini", Description: "Gemini Pro", BaseCost: 20}
	case FalFlux:
		return Info{Name: string(m), Family: "fal", Description: "Flux dev hosted on fal.ai", BaseCost: 15}
	default:
		return Info{Name: string(NanoBanana), Family: "gemini", Description: "Nano Banana, balanced default", BaseCost: 10}
	}
}
