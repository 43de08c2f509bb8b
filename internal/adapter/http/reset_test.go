package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"linguacv/internal/domain"
	"linguacv/internal/usecase"
	"linguacv/pkg/backend"
)

// resumeBackend serves a stored résumé until /reset, then answers /latest
// with 404 like a backend that has nothing stored.
func resumeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	var cleared atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/latest":
			if cleared.Load() {
				http.Error(w, `{"error":"no resume yet"}`, http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"personal":{"name":"Ana Ruiz"},"summary":"Backend engineer."}`))
		case "/reset":
			cleared.Store(true)
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHandler_ResetClearsPreviewWhenBackendIsEmpty(t *testing.T) {
	srv := resumeBackend(t)
	client := backend.NewClient(srv.URL, 2*time.Second)
	poller := usecase.NewPoller(client, usecase.PollerConfig{BaseDelay: time.Hour, MaxDelay: time.Hour}, nil, zaptest.NewLogger(t).Sugar())
	updates, unsubscribe := poller.Subscribe()
	defer unsubscribe()
	poller.Start()
	t.Cleanup(func() {
		poller.Stop()
		<-poller.Done()
	})

	select {
	case st := <-updates:
		require.Empty(t, st.LastError)
		require.True(t, domain.Normalize(st.Snapshot).HasAnyContent)
	case <-time.After(5 * time.Second):
		t.Fatal("first fetch did not complete")
	}

	app := fiber.New()
	NewHandler(Options{Poller: poller, Backend: client, Logger: zaptest.NewLogger(t).Sugar()}).Register(app)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/api/reset", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	st := poller.State()
	assert.Nil(t, st.Snapshot)
	assert.Equal(t, "HTTP 404", st.LastError)
	assert.False(t, domain.Normalize(st.Snapshot).HasAnyContent)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/fragment", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "Ana Ruiz")
	assert.Contains(t, string(body), "Empty Resume")
}
