package domain

import "errors"

// Sentinel errors returned by stores and services. Callers wrap them with
// context; the HTTP layer maps them to response codes.
var (
	ErrNotFound               = errors.New("not found")
	ErrInvalidInput           = errors.New("invalid input")
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrEmailTaken             = errors.New("email already registered")
	ErrAlreadyMinted          = errors.New("identity token already minted")
	ErrDuplicateIdentity      = errors.New("identity already registered")
	ErrRegistryNotInitialized = errors.New("registry not initialized")
	ErrIdentityStillActive    = errors.New("identity still active")
	ErrVotingNotStarted       = errors.New("voting has not started")
	ErrVotingEnded            = errors.New("voting has ended")
	ErrAlreadyVoted           = errors.New("already voted in poll")
	ErrIdentityRequired       = errors.New("active identity required")
)
