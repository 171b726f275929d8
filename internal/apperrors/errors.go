// Package apperrors holds the error taxonomy shared by the registry and
// the wallet ledger. Callers wrap these sentinels with fmt.Errorf("%w")
// and test for them with errors.Is.
package apperrors

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound is returned when an id does not reference an existing record.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when the caller lacks the role an operation needs.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidState is returned when an operation targets a record in a
	// terminal or otherwise wrong status.
	ErrInvalidState = errors.New("invalid state")

	// ErrDuplicateSignature is returned when an identity signs an open group twice.
	ErrDuplicateSignature = errors.New("duplicate signature")

	// ErrQuorumNotMet is returned when executing a withdrawal whose approval
	// group has not completed.
	ErrQuorumNotMet = errors.New("quorum not met")

	// ErrInsufficientBalance is returned when a wallet cannot cover a withdrawal.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInput is returned for malformed requests (negative amounts, zero quorum).
	ErrInput = errors.New("invalid input")
)

// HTTPStatus maps an error to the status code the API answers with.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidState), errors.Is(err, ErrDuplicateSignature):
		return http.StatusConflict
	case errors.Is(err, ErrQuorumNotMet):
		return http.StatusPreconditionFailed
	case errors.Is(err, ErrInsufficientBalance):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Code returns a short machine readable name for err, used in API bodies
// and metric labels.
func Code(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrDuplicateSignature):
		return "duplicate_signature"
	case errors.Is(err, ErrQuorumNotMet):
		return "quorum_not_met"
	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, ErrInput):
		return "invalid_input"
	default:
		return "internal"
	}
}
