package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrConflict            = errors.New("conflict")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrAlreadyClaimed      = errors.New("job already claimed")
	ErrProviderFailure     = errors.New("provider failure")
	ErrNoImages            = errors.New("no images generated")
	ErrNothingPersisted    = errors.New("no images persisted")
	ErrCodeExhausted       = errors.New("referral code exhausted")
)
