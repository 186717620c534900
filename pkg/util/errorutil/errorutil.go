package errorutil

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/identity-registry/internal/domain"
	"github.com/spec-kit/identity-registry/internal/token"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewInternalError(err error) *DomainError {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// sentinelMapping binds a domain sentinel to its response code.
type sentinelMapping struct {
	target error
	code   string
	status int
}

var sentinelMappings = []sentinelMapping{
	{domain.ErrAlreadyMinted, "ALREADY_MINTED", http.StatusConflict},
	{domain.ErrDuplicateIdentity, "DUPLICATE_IDENTITY", http.StatusConflict},
	{domain.ErrRegistryNotInitialized, "REGISTRY_NOT_INITIALIZED", http.StatusConflict},
	{domain.ErrIdentityStillActive, "IDENTITY_STILL_ACTIVE", http.StatusConflict},
	{domain.ErrVotingNotStarted, "VOTING_NOT_STARTED", http.StatusUnprocessableEntity},
	{domain.ErrVotingEnded, "VOTING_ENDED", http.StatusUnprocessableEntity},
	{domain.ErrAlreadyVoted, "ALREADY_VOTED", http.StatusConflict},
	{domain.ErrIdentityRequired, "IDENTITY_REQUIRED", http.StatusForbidden},
	{domain.ErrEmailTaken, "CONFLICT", http.StatusConflict},
	{domain.ErrInvalidInput, "VALIDATION_FAILED", http.StatusBadRequest},
	{domain.ErrInvalidCredentials, "UNAUTHORIZED", http.StatusUnauthorized},
	{domain.ErrForbidden, "FORBIDDEN", http.StatusForbidden},
	{domain.ErrNotFound, "NOT_FOUND", http.StatusNotFound},
	{pgx.ErrNoRows, "NOT_FOUND", http.StatusNotFound},
	{sql.ErrNoRows, "NOT_FOUND", http.StatusNotFound},
	{token.ErrTokenService, "TOKEN_SERVICE_FAILED", http.StatusBadGateway},
	{context.DeadlineExceeded, "TIMEOUT", http.StatusGatewayTimeout},
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	for _, m := range sentinelMappings {
		if errors.Is(err, m.target) {
			return &DomainError{Code: m.code, Message: err.Error(), HTTPStatus: m.status, Err: err}
		}
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return &DomainError{Code: codeForStatus(fiberErr.Code), Message: fiberErr.Message, HTTPStatus: fiberErr.Code}
	}
	return NewInternalError(err)
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "VALIDATION_FAILED"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusRequestTimeout:
		return "TIMEOUT"
	}
	if status >= http.StatusInternalServerError {
		return "INTERNAL_ERROR"
	}
	return "REQUEST_FAILED"
}

// MapError converts err to a DomainError.
func MapError(err error) error {
	return ToDomainError(err)
}
