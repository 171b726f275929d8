package apperrors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPStatusFollowsWrapping(t *testing.T) {
	cases := map[error]int{
		ErrNotFound:            http.StatusNotFound,
		ErrUnauthorized:        http.StatusForbidden,
		ErrInvalidState:        http.StatusConflict,
		ErrDuplicateSignature:  http.StatusConflict,
		ErrQuorumNotMet:        http.StatusPreconditionFailed,
		ErrInsufficientBalance: http.StatusUnprocessableEntity,
		ErrInput:               http.StatusBadRequest,
		fmt.Errorf("boom"):     http.StatusInternalServerError,
	}
	for err, want := range cases {
		wrapped := fmt.Errorf("withdrawal 7: %w", err)
		require.Equal(t, want, HTTPStatus(wrapped), err.Error())
	}
}

func TestCode(t *testing.T) {
	require.Equal(t, "ok", Code(nil))
	require.Equal(t, "quorum_not_met", Code(fmt.Errorf("x: %w", ErrQuorumNotMet)))
	require.Equal(t, "internal", Code(fmt.Errorf("x")))
}
