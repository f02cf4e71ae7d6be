package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrMissingCredentials = errors.New("api keys are required")
	ErrNoVideosSelected   = errors.New("at least one video must be selected")
	ErrEmptyTranscript    = errors.New("no transcript text available")
)
