package history

import "errors"

var (
	ErrInvalidMode          = errors.New("history: unknown view mode")
	ErrNotAdminMode         = errors.New("history: not in admin mode")
	ErrBranchRequired       = errors.New("history: branch not selected")
	ErrPasswordRequired     = errors.New("history: password is empty")
	ErrPasswordMismatch     = errors.New("history: password mismatch")
	ErrPasswordTooShort     = errors.New("history: new password too short")
	ErrPasswordTooLong      = errors.New("history: new password too long")
	ErrRegistrationNotOpen  = errors.New("history: password registration not open")
	ErrRegistrationInFlight = errors.New("history: password registration in flight")
)
