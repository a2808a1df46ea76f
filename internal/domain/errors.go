package domain

import "errors"

var (
	ErrProgressNotFound       = errors.New("progress not found")
	ErrInvalidXPAmount        = errors.New("invalid xp amount")
	ErrInvalidIdentifier      = errors.New("invalid identifier")
	ErrChapterNotFound        = errors.New("chapter not found")
	ErrChoiceNotFound         = errors.New("choice not found")
	ErrStaleChoice            = errors.New("choice does not belong to the current chapter")
	ErrTransitionInProgress   = errors.New("story transition already in progress")
	ErrMissingCredential      = errors.New("missing credential")
	ErrResetNotConfirmed      = errors.New("reset not confirmed")
	ErrTemporarilyUnavailable = errors.New("temporarily unavailable")
)
