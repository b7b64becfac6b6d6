package model

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAction          = errors.New("invalid action")
	ErrAlreadySubmitted       = errors.New("rating already submitted")
	ErrGenerationFailed       = errors.New("generation failed")
	ErrPersistenceUnavailable = errors.New("persistence unavailable")

	// ErrTimeUp rejects an answer that arrived after the limit; the round moves on to exploding.
	ErrTimeUp = fmt.Errorf("%w: time is up", ErrInvalidAction)
)
