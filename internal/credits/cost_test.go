package credits

import (
	"testing"

	"mugshot/internal/domain"
	"mugshot/internal/modelreg"
)

func TestCost(t *testing.T) {
	tests := []struct {
		name    string
		quality domain.Quality
		mode    domain.ProjectMode
		model   modelreg.Model
		want    int
	}{
		{"standard design default model", domain.QualityStandard, domain.ProjectModeDesign, modelreg.NanoBanana, 10},
		{"draft halves rounded up", domain.QualityDraft, domain.ProjectModeDesign, modelreg.NanoBanana, 5},
		{"4k doubles", domain.Quality4K, domain.ProjectModeDesign, modelreg.NanoBanana, 20},
		{"copy mode surcharge", domain.QualityStandard, domain.ProjectModeCopy, modelreg.NanoBanana, 15},
		{"seedream base", domain.QualityStandard, domain.ProjectModeDesign, modelreg.Seedream, 15},
		{"seedream draft rounds up", domain.QualityDraft, domain.ProjectModeDesign, modelreg.Seedream, 8},
		{"pro 4k", domain.Quality4K, domain.ProjectModeDesign, modelreg.NanoBananaPro, 40},
		{"pro 4k copy", domain.Quality4K, domain.ProjectModeCopy, modelreg.NanoBananaPro, 45},
		{"fal flux copy draft", domain.QualityDraft, domain.ProjectModeCopy, modelreg.FalFlux, 13},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cost(tt.quality, tt.mode, tt.model); got != tt.want {
				t.Fatalf("Cost(%s, %s, %s) = %d, want %d", tt.quality, tt.mode, tt.model, got, tt.want)
			}
		})
	}
}

func TestCostIsPure(t *testing.T) {
	first := Cost(domain.Quality4K, domain.ProjectModeCopy, modelreg.GeminiPro)
	for i := 0; i < 100; i++ {
		if got := Cost(domain.Quality4K, domain.ProjectModeCopy, modelreg.GeminiPro); got != first {
			t.Fatalf("Cost() changed between calls: %d vs %d", got, first)
		}
	}
}
