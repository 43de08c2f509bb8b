package http

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"linguacv/internal/domain"
	"linguacv/internal/model"
	"linguacv/internal/usecase"
	"linguacv/internal/view"
)

// Poller is the part of the scheduler the handlers use.
type Poller interface {
	State() domain.PollState
	Refresh(ctx context.Context) (domain.PollState, error)
	Clear() domain.PollState
	Subscribe() (<-chan domain.PollState, func())
}

type Exporter interface {
	Export(ctx context.Context, snap *model.ResumeSnapshot) (*domain.ExportResult, error)
}

type Resetter interface {
	Reset(ctx context.Context) error
}

type Sessions interface {
	State() usecase.SessionState
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type ExportHistory interface {
	Recent(ctx context.Context, limit int) ([]domain.ExportRecord, error)
}

type Handler struct {
	poller   Poller
	exporter Exporter
	backend  Resetter
	sessions Sessions
	history  ExportHistory
	// refresh is the page's fallback reload interval when SSE is unavailable.
	refresh   time.Duration
	keepAlive time.Duration
	logger    *zap.SugaredLogger
}

type Options struct {
	Poller   Poller
	Exporter Exporter
	Backend  Resetter
	Sessions Sessions
	History  ExportHistory
	Refresh  time.Duration
	Logger   *zap.SugaredLogger
}

func NewHandler(o Options) *Handler {
	if o.Logger == nil {
		o.Logger = zap.NewNop().Sugar()
	}
	if o.Refresh <= 0 {
		o.Refresh = 2 * time.Second
	}
	return &Handler{
		poller:    o.Poller,
		exporter:  o.Exporter,
		backend:   o.Backend,
		sessions:  o.Sessions,
		history:   o.History,
		refresh:   o.Refresh,
		keepAlive: 15 * time.Second,
		logger:    o.Logger,
	}
}

// Register mounts every route on app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/", h.Page)
	app.Get("/fragment", h.Fragment)
	app.Get("/healthz", h.Health)

	api := app.Group("/api")
	api.Get("/state", h.State)
	api.Get("/events", h.Events)
	api.Post("/refresh", h.Refresh)
	api.Post("/reset", h.Reset)
	api.Get("/export", h.Export)
	api.Get("/exports", h.Exports)
	api.Post("/session/start", h.StartSession)
	api.Post("/session/stop", h.StopSession)
}

func (h *Handler) page() view.Page {
	var voice view.Voice
	if h.sessions != nil {
		st := h.sessions.State()
		voice = view.Voice{Enabled: st.Enabled, Active: st.Active, Error: st.Error}
	}
	return view.NewPage(h.poller.State(), voice, h.refresh)
}

func (h *Handler) Page(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return view.RenderPreview(c, h.page())
}

func (h *Handler) Fragment(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	c.Set(fiber.HeaderCacheControl, "no-store")
	return view.RenderFragment(c, h.page())
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

type stateResponse struct {
	Phase               domain.Phase    `json:"phase"`
	CurrentDelayMS      int64           `json:"current_delay_ms"`
	RetryIn             int             `json:"retry_in_s"`
	LastError           string          `json:"last_error,omitempty"`
	LastUpdatedAt       *time.Time      `json:"last_updated_at,omitempty"`
	ConsecutiveFailures int             `json:"consecutive_failures"`
	Loaded              bool            `json:"loaded"`
	Sections            domain.Sections `json:"sections"`
}

func newStateResponse(st domain.PollState) stateResponse {
	r := stateResponse{
		Phase:               st.Phase,
		CurrentDelayMS:      st.CurrentDelay.Milliseconds(),
		RetryIn:             st.RetryIn(),
		LastError:           st.LastError,
		ConsecutiveFailures: st.ConsecutiveFailures,
		Loaded:              st.Loaded(),
		Sections:            domain.Normalize(st.Snapshot),
	}
	if !st.LastUpdatedAt.IsZero() {
		t := st.LastUpdatedAt
		r.LastUpdatedAt = &t
	}
	return r
}

func (h *Handler) State(c *fiber.Ctx) error {
	return c.JSON(newStateResponse(h.poller.State()))
}

// Refresh triggers an immediate fetch. Browsers are redirected back to the
// page; API clients get the resulting state.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	st, err := h.poller.Refresh(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return h.done(c, st)
}

// Reset clears the backend résumé, drops the displayed snapshot and
// refreshes. A backend with nothing stored answers /latest with 404, so the
// snapshot is dropped here rather than by the refresh.
func (h *Handler) Reset(c *fiber.Ctx) error {
	if err := h.backend.Reset(c.UserContext()); err != nil {
		h.logger.Warnw("Reset failed", "error", err)
		return h.fail(c, err)
	}
	h.poller.Clear()
	st, err := h.poller.Refresh(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	h.logger.Infow("Resume reset")
	return h.done(c, st)
}

func (h *Handler) Export(c *fiber.Ctx) error {
	res, err := h.exporter.Export(c.UserContext(), h.poller.State().Snapshot)
	if err != nil {
		return h.fail(c, err)
	}
	name := res.Record.Filename
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`,
		domain.ASCIIFilename(name), url.PathEscape(name)))
	c.Set("X-Export-Id", res.Record.ID.String())
	return c.Send(res.PDF)
}

func (h *Handler) Exports(c *fiber.Ctx) error {
	if h.history == nil {
		return c.JSON([]domain.ExportRecord{})
	}
	recs, err := h.history.Recent(c.UserContext(), c.QueryInt("limit", 20))
	if err != nil {
		return h.fail(c, err)
	}
	if recs == nil {
		recs = []domain.ExportRecord{}
	}
	return c.JSON(recs)
}

func (h *Handler) StartSession(c *fiber.Ctx) error {
	if err := h.sessions.Start(c.UserContext()); err != nil {
		return h.sessionFail(c, err)
	}
	return h.sessionDone(c)
}

func (h *Handler) StopSession(c *fiber.Ctx) error {
	if err := h.sessions.Stop(c.UserContext()); err != nil {
		return h.sessionFail(c, err)
	}
	return h.sessionDone(c)
}

// Session failures are stored by the controller and shown on the page, so
// browsers are simply sent back.
func (h *Handler) sessionFail(c *fiber.Ctx, err error) error {
	if !wantsJSON(c) {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return h.fail(c, err)
}

func (h *Handler) sessionDone(c *fiber.Ctx) error {
	if !wantsJSON(c) {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return c.JSON(h.sessions.State())
}

// Events streams the poll state as server-sent events: the current state
// first, then one event per applied fetch.
func (h *Handler) Events(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	updates, cancel := h.poller.Subscribe()
	initial := h.poller.State()
	keepAlive := h.keepAlive

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		if err := writeEvent(w, initial); err != nil {
			return
		}
		ticker := time.NewTicker(keepAlive)
		defer ticker.Stop()
		for {
			select {
			case st, ok := <-updates:
				if !ok {
					return
				}
				if err := writeEvent(w, st); err != nil {
					return
				}
			case <-ticker.C:
				// A failed write means the client went away.
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	})
	return nil
}

func writeEvent(w *bufio.Writer, st domain.PollState) error {
	b, err := json.Marshal(newStateResponse(st))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", b); err != nil {
		return err
	}
	return w.Flush()
}

func (h *Handler) done(c *fiber.Ctx, st domain.PollState) error {
	if !wantsJSON(c) {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return c.JSON(newStateResponse(st))
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		h.logger.Errorw("Request failed", "path", c.Path(), "status", status, "error", err)
	}
	body := fiber.Map{"error": err.Error()}
	if hint := errors.FlattenHints(err); hint != "" {
		body["hint"] = hint
	}
	return c.Status(status).JSON(body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNoData),
		errors.Is(err, domain.ErrSessionActive),
		errors.Is(err, domain.ErrNoSession):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrRenderFailed):
		return fiber.StatusBadGateway
	case errors.Is(err, usecase.ErrPollerStopped), errors.Is(err, usecase.ErrPollerNotStarted):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	}
	// Everything else is an upstream failure: backend reset or voice API.
	return fiber.StatusBadGateway
}

// wantsJSON prefers JSON unless the client asks for HTML, as form posts do.
func wantsJSON(c *fiber.Ctx) bool {
	return c.Accepts(fiber.MIMEApplicationJSON, fiber.MIMETextHTML) == fiber.MIMEApplicationJSON
}
