// Package credits implements the credit ledger: pure cost computation plus
// atomic balance mutation paired with audit rows.
package credits

import (
	"mugshot/internal/domain"
	"mugshot/internal/modelreg"
)

// Base costs per model in credits. The quality tier scales the base; copy
// mode carries a flat surcharge for the extra conditioning pass.
var baseCost = map[modelreg.Model]int{
	modelreg.NanoBanana:    10,
	modelreg.NanoBananaPro: 20,
	modelreg.Seedream:      15,
	modelreg.GeminiFlash:   10,
	modelreg.GeminiPro:     20,
	modelreg.FalFlux:       15,
}

const copyModeSurcharge = 5

// Cost computes the credit price of one job. It is a pure function: same
// inputs, same result, no side effects.
func Cost(quality domain.Quality, mode domain.ProjectMode, model modelreg.Model) int {
	cost, ok := baseCost[model]
	if !ok {
		cost = baseCost[modelreg.Default]
	}

	switch quality {
	case domain.QualityDraft:
		cost = (cost + 1) / 2
	case domain.Quality4K:
		cost *= 2
	}

	if mode == domain.ProjectModeCopy {
		cost += copyModeSurcharge
	}
	if cost < 1 {
		cost = 1
	}
	return cost
}
