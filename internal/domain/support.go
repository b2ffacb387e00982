package domain

import (
	"strings"
	"time"
)

// Ticket categories and priorities accepted from clients.
var (
	TicketCategories = []string{"general", "billing", "technical", "account", "feature_request", "other"}
	TicketPriorities = []string{"low", "normal", "high", "urgent"}
)

// SupportTicket is a user-filed support request.
type SupportTicket struct {
	ID           string
	UserID       string
	Subject      string
	Category     string
	Message      string
	Priority     string
	Status       string
	ContactEmail string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidTicketCategory reports whether c is an accepted category.
func ValidTicketCategory(c string) bool {
	return contains(TicketCategories, c)
}

// NormalizeTicketPriority maps unknown priorities to "normal".
func NormalizeTicketPriority(p string) string {
	if contains(TicketPriorities, p) {
		return p
	}
	return "normal"
}

func contains(set []string, v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
