package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind_HTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:     http.StatusBadRequest,
		KindAuthentication: http.StatusUnauthorized,
		KindAuthorization:  http.StatusForbidden,
		KindNotFound:       http.StatusNotFound,
		KindConflict:       http.StatusConflict,
		KindInternal:       http.StatusInternalServerError,
	}

	for kind, want := range cases {
		assert.Equal(t, want, kind.HTTPStatus(), kind.String())
	}
}

func TestAs_WrappedError(t *testing.T) {
	base := Conflict("email_taken", "Email already registered")
	wrapped := fmt.Errorf("register: %w", base)

	got := As(wrapped)
	assert.Same(t, base, got)
	assert.Equal(t, KindConflict, KindOf(wrapped))
}

func TestAs_UnclassifiedIsInternal(t *testing.T) {
	cause := errors.New("connection reset")
	got := As(cause)

	assert.Equal(t, KindInternal, got.Kind)
	assert.Equal(t, "internal_error", got.Code)
	assert.ErrorIs(t, got, cause)
	assert.NotContains(t, got.Message, "connection reset")
}

func TestAs_Nil(t *testing.T) {
	assert.Nil(t, As(nil))
}
