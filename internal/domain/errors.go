package domain

import "errors"

// Validation errors returned by Validate methods. Callers compare with
// errors.Is; the returned error may carry extra context.
var (
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrMissingTitle       = errors.New("title is required")
	ErrInvalidType        = errors.New("unknown transaction type")
	ErrMissingAccount     = errors.New("account is required")
	ErrMissingDestination = errors.New("transfer requires a destination account")
	ErrSameAccount        = errors.New("transfer source and destination must differ")
	ErrInvalidFrequency   = errors.New("unknown frequency")
	ErrMissingName        = errors.New("name is required")
)
