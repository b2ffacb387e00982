package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"mugshot/internal/domain"
)

// MyReferralCode returns the caller's invite code, creating one on first use.
func (a *App) MyReferralCode(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	code, err := a.Referrals.GetCodeByUser(r.Context(), userID)
	if errors.Is(err, domain.ErrNotFound) {
		code = &domain.ReferralCode{
			Code:          newReferralCode(),
			UserID:        userID,
			RewardCredits: domain.DefaultReferralReward,
		}
		err = a.Referrals.CreateCode(r.Context(), code)
	}
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"code":           code.Code,
		"uses_count":     code.UsesCount,
		"max_uses":       code.MaxUses,
		"reward_credits": code.RewardCredits,
	})
}

func (a *App) ListReferralRewards(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	rewards, err := a.Referrals.ListRewards(r.Context(), userID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	total := 0
	out := make([]map[string]any, 0, len(rewards))
	for _, rw := range rewards {
		total += rw.CreditsEarned
		out = append(out, map[string]any{
			"code":           rw.Code,
			"credits_earned": rw.CreditsEarned,
			"created_at":     rw.CreatedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"rewards": out, "total_earned": total})
}

func newReferralCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
