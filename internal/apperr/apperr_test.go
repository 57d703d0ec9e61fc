package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, NotFound, KindOf(New(NotFound, "gone")))
	assert.Equal(t, InvalidState, KindOf(New(InvalidState, "nope")))
	assert.Equal(t, TransientIO, KindOf(errors.New("plain")))
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := New(ScopeMismatch, "wrong estate")
	outer := fmt.Errorf("handling request: %w", inner)
	assert.Equal(t, ScopeMismatch, KindOf(outer))
	assert.True(t, Is(outer, ScopeMismatch))
	assert.False(t, Is(outer, NotFound))
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "gone", MessageOf(New(NotFound, "gone")))
	assert.Equal(t, "something went wrong, please try again", MessageOf(errors.New("db: broken pipe")))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(TransientIO, "db down", cause)
	assert.True(t, errors.Is(err, cause))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(New(NotFound, "")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(New(InvalidState, "")))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(New(ScopeMismatch, "")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(New(TransientIO, "")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}
