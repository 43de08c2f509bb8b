package domain

import (
	stderrors "errors"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestRenderError_MatchesSentinel(t *testing.T) {
	cause := errors.New("chrome crashed")
	err := error(&RenderError{Stage: "rasterize", Err: cause})

	assert.True(t, stderrors.Is(err, ErrRenderFailed))
	assert.True(t, errors.Is(err, ErrRenderFailed))
	assert.True(t, stderrors.Is(err, cause))
	assert.False(t, stderrors.Is(err, ErrNoData))
	assert.Equal(t, "rendering failed: rasterize: chrome crashed", err.Error())

	wrapped := errors.Wrap(err, "export")
	assert.True(t, stderrors.Is(wrapped, ErrRenderFailed))
}

func TestFetchError_Text(t *testing.T) {
	assert.Equal(t, "HTTP 500", (&FetchError{Status: 500}).Error())
	assert.Equal(t, "request timed out", (&FetchError{Message: "request timed out"}).Error())
	assert.Equal(t, "failed to fetch", (&FetchError{}).Error())

	fe, ok := AsFetchError(errors.Wrap(&FetchError{Status: 404}, "latest"))
	assert.True(t, ok)
	assert.Equal(t, 404, fe.Status)
}
