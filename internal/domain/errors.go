package domain

import "errors"

var (
	ErrNoAccountsAvailable = errors.New("no accounts available")
	ErrIdentityNotKnown    = errors.New("identity not known")
	ErrLoginFailed         = errors.New("login failed")
	ErrTimedOut            = errors.New("operation timed out")
	ErrAccessDenied        = errors.New("access denied by platform")
	ErrNotFound            = errors.New("not found")
	ErrCacheMiss           = errors.New("cache miss")
	ErrAnalysisFailed      = errors.New("analysis failed")
)
