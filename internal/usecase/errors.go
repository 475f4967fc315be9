package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrSessionExists         = errors.New("poll session already running")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
