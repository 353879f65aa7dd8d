package repositories

import "errors"

// Sentinel errors returned by the repositories. Controllers map these onto
// HTTP status codes; anything else is treated as an internal error.
var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateIdentity = errors.New("email or phone already registered")
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
	ErrInvalidState      = errors.New("withdrawal already decided")
	ErrAlreadyAttributed = errors.New("commission already attributed for order")
	ErrAlreadyCredited   = errors.New("referral bonus already credited")
	ErrAlreadyCaptured   = errors.New("plan payment already captured for transaction")
)
