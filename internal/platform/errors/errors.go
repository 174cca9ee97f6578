package apperrors

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrUnknownDuration = errors.New("unknown duration")
	ErrNoGoal          = errors.New("no learning goal configured")
)
