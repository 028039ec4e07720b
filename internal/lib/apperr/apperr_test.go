package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, Code(""), CodeOf(nil))
	assert.Equal(t, Internal, CodeOf(errors.New("boom")))

	wrapped := fmt.Errorf("service.Op: %w", NotFoundf("product %s not found", "p1"))
	assert.Equal(t, NotFound, CodeOf(wrapped))
	assert.Equal(t, "product p1 not found", MessageOf(wrapped))
}

func TestMessageOfHidesCause(t *testing.T) {
	err := Internalw(errors.New("dial tcp: refused"), "")
	assert.Equal(t, "internal server error", MessageOf(err))
	assert.ErrorContains(t, err, "dial tcp: refused")
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("wrap: %w", BadRequestf("product already in cart"))
	assert.True(t, errors.Is(err, E(BadRequest, "")))
	assert.True(t, errors.Is(err, E(BadRequest, "product already in cart")))
	assert.False(t, errors.Is(err, E(NotFound, "")))
}

func TestHTTPStatusRoundTrip(t *testing.T) {
	for _, code := range []Code{NotFound, Unauthorized, BadRequest, Internal} {
		assert.Equal(t, code, CodeFromStatus(HTTPStatus(code)))
	}
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus("WHATEVER"))
}
