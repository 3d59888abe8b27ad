package apperrors

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrNoActiveSession = errors.New("no active session")
	ErrSessionActive   = errors.New("session already running")
)
