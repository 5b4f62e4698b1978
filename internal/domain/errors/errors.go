package errors

import "errors"

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrInvalidOrder       = errors.New("invalid order")
	ErrInvalidTimeEntry   = errors.New("invalid time entry")
	ErrNotBillable        = errors.New("order not billable")
	ErrAmountMismatch     = errors.New("captured amount mismatch")
	ErrForbidden          = errors.New("forbidden")
)
