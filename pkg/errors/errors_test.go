package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredefinedConstructors(t *testing.T) {
	t.Run("AuthDenied", func(t *testing.T) {
		err := ErrAuthDenied()
		assert.Equal(t, ErrCodeAuthDenied, err.Code())
		assert.Equal(t, http.StatusForbidden, err.HTTPStatus())
		assert.NotEmpty(t, err.Description())
	})

	t.Run("AuthExpired", func(t *testing.T) {
		err := ErrAuthExpired()
		assert.Equal(t, ErrCodeAuthExpired, err.Code())
		assert.Equal(t, http.StatusGone, err.HTTPStatus())
	})

	t.Run("Validation", func(t *testing.T) {
		err := ErrValidation("count must be between 1 and 100")
		assert.Equal(t, ErrCodeValidation, err.Code())
		assert.Equal(t, http.StatusBadRequest, err.HTTPStatus())
		assert.Equal(t, "count must be between 1 and 100", err.Error())
	})

	t.Run("RegistrationItem_carries_index_and_cause", func(t *testing.T) {
		cause := fmt.Errorf("imap timeout")
		err := ErrRegistrationItem(3, cause)
		assert.Equal(t, ErrCodeRegistrationItem, err.Code())
		assert.Equal(t, cause, err.Unwrap())
		assert.Equal(t, 3, err.Metadata()["index"])
		assert.Contains(t, err.Error(), "imap timeout")
	})
}

func TestWithCauseAndMetadata(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := ErrPersistence("redis write failed").
		WithCause(cause).
		WithMetadata("key", "authurl:current")

	assert.Equal(t, cause, err.Unwrap())
	assert.Equal(t, "authurl:current", err.Metadata()["key"])
	assert.Equal(t, "redis write failed", err.Error())
}

func TestHasCode(t *testing.T) {
	assert.True(t, HasCode(ErrAlreadyRunning(), ErrCodeAlreadyRunning))
	assert.False(t, HasCode(ErrAlreadyRunning(), ErrCodeNotRunning))
	assert.False(t, HasCode(fmt.Errorf("plain"), ErrCodeServer))
}

func TestWrapError(t *testing.T) {
	wrapped := WrapError(fmt.Errorf("boom"), ErrCodeValidation, "bad input")
	assert.Equal(t, http.StatusBadRequest, wrapped.HTTPStatus())
	assert.Equal(t, "bad input", wrapped.Error())
	assert.EqualError(t, wrapped.Unwrap(), "boom")
}

func TestIsTerminalAuthError(t *testing.T) {
	assert.True(t, IsTerminalAuthError(ErrAuthExpired()))
	assert.True(t, IsTerminalAuthError(ErrAuthDenied()))
	assert.True(t, IsTerminalAuthError(ErrAuthTransport("dns failure")))
	assert.False(t, IsTerminalAuthError(ErrValidation("nope")))
	assert.False(t, IsTerminalAuthError(fmt.Errorf("plain")))
}

func TestToGenericErrorResponse(t *testing.T) {
	t.Run("kam_error", func(t *testing.T) {
		resp := ToGenericErrorResponse(ErrNotFound("session"))
		assert.Equal(t, string(ErrCodeNotFound), resp.Error)
	})

	t.Run("plain_error", func(t *testing.T) {
		resp := ToGenericErrorResponse(fmt.Errorf("plain"))
		assert.Equal(t, string(ErrCodeServer), resp.Error)
	})
}
