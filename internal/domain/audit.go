package domain

import (
	"encoding/json"
	"time"
)

// Audit action tags. The set is open-ended; these are the ones the ledger
// and handlers write today.
const (
	AuditActionSignupGrant    = "signup_grant"
	AuditActionJobQueued      = "job_queued"
	AuditActionDeductCredits  = "deduct_credits"
	AuditActionRefundCredits  = "refund_credits"
	AuditActionReferralReward = "referral_reward"
	AuditActionSignin         = "signin"
)

// AuditEntry is an immutable append-only ledger row. The sum of DeltaCredits
// for a user plus their initial grant reconciles to the current balance.
type AuditEntry struct {
	ID           int64
	UserID       string
	Action       string
	DeltaCredits int
	Meta         json.RawMessage
	CreatedAt    time.Time
}

// AuditMeta builds the free-form context blob attached to a ledger row.
func AuditMeta(kv map[string]any) json.RawMessage {
	if len(kv) == 0 {
		return nil
	}
	b, err := json.Marshal(kv)
	if err != nil {
		return nil
	}
	return b
}
