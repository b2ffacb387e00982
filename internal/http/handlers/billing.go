package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"mugshot/internal/domain"
)

func (a *App) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := a.Billing.ListPlans(r.Context())
	if err != nil {
		a.domainError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(plans))
	for _, p := range plans {
		out = append(out, map[string]any{
			"id":                p.ID,
			"name":              p.Name,
			"description":       p.Description,
			"price_monthly":     p.PriceMonthly,
			"price_yearly":      p.PriceYearly,
			"credits_per_month": p.CreditsPerMonth,
			"features":          p.Features,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"plans": out})
}

func (a *App) GetSubscription(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	sub, err := a.Billing.GetSubscription(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.json(w, http.StatusOK, map[string]any{"plan_id": "free", "status": "none"})
			return
		}
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"plan_id":              sub.PlanID,
		"status":               sub.Status,
		"period_start":         sub.PeriodStart,
		"period_end":           sub.PeriodEnd,
		"cancel_at_period_end": sub.CancelAtPeriodEnd,
	})
}

func (a *App) BillingHistory(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	events, total, err := a.Billing.ListHistory(r.Context(), userID, limit, offset)
	if err != nil {
		a.domainError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(events))
	for _, e := range events {
		out = append(out, map[string]any{
			"id":          e.ID,
			"amount":      e.Amount,
			"currency":    e.Currency,
			"description": e.Description,
			"invoice_url": e.InvoiceURL,
			"status":      e.Status,
			"created_at":  e.CreatedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"events": out, "total": total})
}
