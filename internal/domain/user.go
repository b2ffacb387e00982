package domain

import "time"

// User is an account holder. Credits is the usage-metering balance consumed
// by generation jobs; mutations go through the credit ledger so every change
// leaves an audit row.
type User struct {
	ID             string
	Email          string
	Username       string
	FullName       string
	PasswordHash   string
	Bio            string
	AvatarPath     string
	Credits        int
	Plan           string
	IsVerified     bool
	Country        string
	FollowersCount int
	FollowingCount int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PublicProfile is the subset of a user visible to other users.
type PublicProfile struct {
	ID              string
	Username        string
	FullName        string
	AvatarPath      string
	Bio             string
	IsVerified      bool
	FollowersCount  int
	FollowingCount  int
	ThumbnailsCount int
}
