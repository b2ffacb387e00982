package domain

import "time"

// DefaultReferralReward is the credit grant for each side of a referral.
const DefaultReferralReward = 50

// ReferralCode is a user's shareable invite code.
type ReferralCode struct {
	Code          string
	UserID        string
	UsesCount     int
	MaxUses       *int
	RewardCredits int
	CreatedAt     time.Time
}

// Exhausted reports whether the code has hit its usage cap.
func (c *ReferralCode) Exhausted() bool {
	return c.MaxUses != nil && c.UsesCount >= *c.MaxUses
}

// ReferralReward records one applied referral.
type ReferralReward struct {
	ID            string
	Code          string
	ReferrerID    string
	ReferredID    string
	CreditsEarned int
	CreatedAt     time.Time
}
