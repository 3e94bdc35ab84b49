package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	base := NotFound("post not found")
	wrapped := fmt.Errorf("load post: %w", base)

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, errors.Is(wrapped, base))
	assert.True(t, IsNotFound(wrapped))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindInternal, KindOf(nil))
}

func TestUnavailableMessage(t *testing.T) {
	err := Unavailable("mongo", errors.New("connection refused"))
	assert.Equal(t, "mongo: connection refused", err.Error())
	assert.True(t, IsUnavailable(err))
	assert.Equal(t, http.StatusServiceUnavailable, err.Kind.HTTPStatus())
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, KindNotFound.HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, KindValidation.HTTPStatus())
	assert.Equal(t, http.StatusConflict, KindConflict.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, KindInternal.HTTPStatus())
	assert.Equal(t, "validation", KindValidation.String())
}
