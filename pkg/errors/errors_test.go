package errors

import (
	"database/sql"
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("submit: %w", ErrDuplicateRequest)
	got := FromError(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, "DUPLICATE_REQUEST", got.Code)
	assert.Equal(t, http.StatusConflict, got.Status)
}

func TestFromErrorHidesUntypedCause(t *testing.T) {
	got := FromError(sql.ErrConnDone)
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.Equal(t, ErrInternal.Message, got.Message)
	assert.ErrorIs(t, got, sql.ErrConnDone)
}

func TestIsMatchesClonesByCode(t *testing.T) {
	clone := Clone(ErrMentorUnavailable, "mentor paused requests")
	assert.True(t, stdErrors.Is(clone, ErrMentorUnavailable))
	assert.False(t, stdErrors.Is(clone, ErrDuplicateRequest))
	assert.True(t, stdErrors.Is(ErrRequestNotFound, ErrNotFound))
}

func TestInternalWrapsCause(t *testing.T) {
	cause := stdErrors.New("connection reset")
	err := Internal(cause, "failed to accept mentorship")
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Equal(t, "failed to accept mentorship: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
}
