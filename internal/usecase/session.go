package usecase

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"linguacv/internal/domain"
	"linguacv/pkg/voice"
)

// VoiceClient opens and closes hosted voice calls.
type VoiceClient interface {
	Open(ctx context.Context) (*voice.Session, error)
	Close(ctx context.Context, s *voice.Session) error
}

var errVoiceDisabled = errors.WithHint(
	errors.New("voice sessions are not configured"),
	"set VOICE_API_URL and VOICE_ASSISTANT_ID",
)

// SessionState is what the page shows about the voice session.
type SessionState struct {
	Enabled   bool   `json:"enabled"`
	Active    bool   `json:"active"`
	SessionID string `json:"session_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// SessionController owns at most one voice session. Its errors are kept for
// display and never touch the poller.
type SessionController struct {
	client VoiceClient
	logger *zap.SugaredLogger

	op sync.Mutex // serializes Start and Stop

	mu      sync.Mutex
	active  *voice.Session
	lastErr string
}

// NewSessionController returns a controller; a nil client disables voice.
func NewSessionController(client VoiceClient, log *zap.SugaredLogger) *SessionController {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &SessionController{client: client, logger: log}
}

func (s *SessionController) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := SessionState{Enabled: s.client != nil, Active: s.active != nil, Error: s.lastErr}
	if s.active != nil {
		st.SessionID = s.active.ID
	}
	return st
}

func (s *SessionController) Start(ctx context.Context) error {
	if s.client == nil {
		return s.fail(errVoiceDisabled)
	}
	s.op.Lock()
	defer s.op.Unlock()

	if s.State().Active {
		return s.fail(domain.ErrSessionActive)
	}
	sess, err := s.client.Open(ctx)
	if err != nil {
		s.logger.Warnw("Voice session failed to start", "error", err)
		return s.fail(err)
	}

	s.mu.Lock()
	s.active, s.lastErr = sess, ""
	s.mu.Unlock()
	s.logger.Infow("Voice session started", "session_id", sess.ID)
	return nil
}

func (s *SessionController) Stop(ctx context.Context) error {
	s.op.Lock()
	defer s.op.Unlock()

	s.mu.Lock()
	sess := s.active
	s.mu.Unlock()
	if sess == nil {
		return s.fail(domain.ErrNoSession)
	}

	err := s.client.Close(ctx, sess)
	s.mu.Lock()
	// The handle is released even when the API call fails.
	s.active = nil
	s.mu.Unlock()
	if err != nil {
		s.logger.Warnw("Voice session failed to stop cleanly", "session_id", sess.ID, "error", err)
		return s.fail(err)
	}
	s.clearError()
	s.logger.Infow("Voice session stopped", "session_id", sess.ID)
	return nil
}

// Close ends any active session; used on shutdown.
func (s *SessionController) Close(ctx context.Context) {
	if s.State().Active {
		_ = s.Stop(ctx)
	}
}

func (s *SessionController) fail(err error) error {
	s.mu.Lock()
	s.lastErr = err.Error()
	s.mu.Unlock()
	return err
}

func (s *SessionController) clearError() {
	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()
}
