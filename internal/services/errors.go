package services

import "errors"

// Engine failure taxonomy. Callers branch on these with errors.Is; anything
// else coming out of a service is a storage failure, already rolled back,
// and safe to retry.
var (
	ErrNotFound                = errors.New("not found")
	ErrConflict                = errors.New("conflict")
	ErrUnknownReferralCode     = errors.New("unknown referral code")
	ErrSelfReferral            = errors.New("cannot use your own referral code")
	ErrDailyLimitExceeded      = errors.New("referral link already issued today")
	ErrInsufficientPoints      = errors.New("insufficient points")
	ErrRewardUnavailable       = errors.New("reward unavailable")
	ErrCodeGenerationExhausted = errors.New("referral code generation attempts exhausted")
)
