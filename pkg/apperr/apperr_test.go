package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("start session: %w", Conflict("session already open"))

	assert.True(t, Is(err, KindConflict))
	assert.False(t, Is(err, KindNotFound))
	assert.Equal(t, http.StatusConflict, HTTPStatus(err))
	assert.Equal(t, "session already open", Message(err))
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad platform %q", "bolt"), http.StatusBadRequest},
		{NotFound("no session"), http.StatusNotFound},
		{Unavailable("99 has no public API"), http.StatusNotImplemented},
		{Upstream(errors.New("eof"), "uber history"), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, HTTPStatus(c.err), c.err.Error())
	}
}

func TestUpstreamUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := Upstream(cause, "uber history")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "uber history: connection reset", err.Error())
	assert.Equal(t, "internal error", Message(cause))
	assert.False(t, Is(nil, KindUpstream))
}
