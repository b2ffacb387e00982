package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"mugshot/internal/domain"
)

type supportTicketRequest struct {
	Subject      string `json:"subject"`
	Category     string `json:"category"`
	Message      string `json:"message"`
	Priority     string `json:"priority"`
	ContactEmail string `json:"contact_email"`
}

func (a *App) CreateSupportTicket(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req supportTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)
	if req.Subject == "" || req.Message == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "subject and message required")
		return
	}
	if req.Category == "" {
		req.Category = "general"
	}
	if !domain.ValidTicketCategory(req.Category) {
		a.error(w, http.StatusBadRequest, "bad_request", "unknown category")
		return
	}

	ticket := &domain.SupportTicket{
		UserID:       userID,
		Subject:      req.Subject,
		Category:     strings.ToLower(req.Category),
		Message:      req.Message,
		Priority:     domain.NormalizeTicketPriority(req.Priority),
		ContactEmail: strings.TrimSpace(req.ContactEmail),
	}
	if err := a.Support.Create(r.Context(), ticket); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, map[string]any{
		"id":         ticket.ID,
		"status":     ticket.Status,
		"priority":   ticket.Priority,
		"created_at": ticket.CreatedAt,
	})
}

func (a *App) ListSupportTickets(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	tickets, err := a.Support.ListByUser(r.Context(), userID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, map[string]any{
			"id":         t.ID,
			"subject":    t.Subject,
			"category":   t.Category,
			"priority":   t.Priority,
			"status":     t.Status,
			"created_at": t.CreatedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"tickets": out})
}
