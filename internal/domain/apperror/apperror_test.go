package apperror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:     http.StatusBadRequest,
		KindAuthentication: http.StatusUnauthorized,
		KindAuthorization:  http.StatusForbidden,
		KindNotFound:       http.StatusNotFound,
		KindConflict:       http.StatusConflict,
		KindDependency:     http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, HTTPStatus(New(kind, "x")), "kind %d", kind)
	}
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("untyped")))
}

func TestWrapPreservesCauseAndHidesIt(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindDependency, "user lookup failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "user lookup failed: connection refused", err.Error())

	// Clients only ever see the message, not the cause.
	assert.Equal(t, "user lookup failed", Message(err))
	assert.Equal(t, KindDependency, KindOf(err))
	assert.True(t, Is(err, KindDependency))
	assert.False(t, Is(err, KindNotFound))
}

func TestUntypedErrorDefaults(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, KindDependency, KindOf(err))
	assert.Equal(t, "internal error", Message(err))
}
