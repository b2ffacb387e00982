package domain

import (
	"encoding/json"
	"time"
)

// Plan is a subscription tier. Plans are seed data; no payment-provider
// integration lives in this service, only bookkeeping.
type Plan struct {
	ID              string
	Name            string
	Description     string
	PriceMonthly    float64
	PriceYearly     float64
	CreditsPerMonth int
	Features        json.RawMessage
	IsActive        bool
	DisplayOrder    int
}

// SubscriptionStatus enumerates subscription lifecycle states.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionCanceled SubscriptionStatus = "canceled"
	SubscriptionExpired  SubscriptionStatus = "expired"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
)

// Subscription links a user to their current plan.
type Subscription struct {
	ID                string
	UserID            string
	PlanID            string
	Status            SubscriptionStatus
	PeriodStart       *time.Time
	PeriodEnd         *time.Time
	CancelAtPeriodEnd bool
	CreatedAt         time.Time
}

// BillingEvent is one line of billing history.
type BillingEvent struct {
	ID          string
	UserID      string
	Amount      float64
	Currency    string
	Description string
	InvoiceURL  string
	Status      string
	CreatedAt   time.Time
}
