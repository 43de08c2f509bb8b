package domain

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// FetchError reports a failed /latest cycle. Status is set for non-2xx
// responses; Message carries network, timeout and parse failures.
type FetchError struct {
	Status  int
	Message string
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	if e.Message == "" {
		return "failed to fetch"
	}
	return e.Message
}

var (
	// ErrNoData is returned by export when no snapshot has been loaded or the
	// loaded snapshot has nothing to render.
	ErrNoData = errors.New("no resume data to export")
	// ErrRenderFailed wraps rasterization and PDF composition failures.
	ErrRenderFailed = errors.New("rendering failed")

	ErrSessionActive = errors.New("a voice session is already active")
	ErrNoSession     = errors.New("no active voice session")
)

// RenderError is a failed export stage. It matches ErrRenderFailed and
// unwraps to the stage's cause.
type RenderError struct {
	Stage string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrRenderFailed, e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

func (e *RenderError) Is(target error) bool { return target == ErrRenderFailed }

// AsFetchError extracts a *FetchError from err, if any.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
