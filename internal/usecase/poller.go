package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"linguacv/internal/domain"
	"linguacv/internal/model"
)

// SnapshotFetcher performs one fetch of the backend's latest snapshot.
type SnapshotFetcher interface {
	Latest(ctx context.Context) (*model.ResumeSnapshot, error)
}

var (
	ErrPollerStopped    = errors.New("poller stopped")
	ErrPollerNotStarted = errors.New("poller not started")
)

// PollerConfig holds the scheduler timings.
type PollerConfig struct {
	BaseDelay time.Duration
	MaxDelay  time.Duration
	// FetchTimeout bounds each fetch; zero leaves it to the fetcher.
	FetchTimeout time.Duration
}

func DefaultPollerConfig() PollerConfig {
	return PollerConfig{
		BaseDelay:    2 * time.Second,
		MaxDelay:     16 * time.Second,
		FetchTimeout: 10 * time.Second,
	}
}

// BackoffDelay is the wait armed after the given number of consecutive
// failures: base for zero or one, doubling per further failure, capped at max.
func BackoffDelay(base, max time.Duration, failures int) time.Duration {
	d := base
	for i := 1; i < failures; i++ {
		d *= 2
		if d >= max {
			return max
		}
	}
	if d > max {
		return max
	}
	return d
}

// Poller drives the /latest fetch cycle. A single goroutine owns the cycle:
// it fetches, applies the result, arms a one-shot timer, and waits for the
// timer, a manual refresh, or Stop. Fetches never overlap.
type Poller struct {
	fetcher SnapshotFetcher
	clock   Clock
	cfg     PollerConfig
	logger  *zap.SugaredLogger

	manual chan chan domain.PollState
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.Mutex
	state    domain.PollState
	issued   uint64
	started  bool
	disposed bool
	subs     map[int]chan domain.PollState
	nextSub  int
}

// NewPoller creates a poller. A nil clock uses wall time; a nil logger
// discards output.
func NewPoller(fetcher SnapshotFetcher, cfg PollerConfig, clock Clock, log *zap.SugaredLogger) *Poller {
	if clock == nil {
		clock = SystemClock()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultPollerConfig().BaseDelay
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		cfg.MaxDelay = cfg.BaseDelay
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		fetcher: fetcher,
		clock:   clock,
		cfg:     cfg,
		logger:  log,
		manual:  make(chan chan domain.PollState),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		state: domain.PollState{
			Phase:        domain.PhaseIdle,
			CurrentDelay: cfg.BaseDelay,
		},
		subs: map[int]chan domain.PollState{},
	}
}

// Start launches the poll loop. The first fetch is issued immediately.
func (p *Poller) Start() {
	p.mu.Lock()
	if p.started || p.disposed {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go p.run()
	p.logger.Infow("Poller started", "base_delay", p.cfg.BaseDelay, "max_delay", p.cfg.MaxDelay)
}

// Stop cancels the pending timer and stops issuing fetches. A fetch still
// in flight is cancelled through its context and its result is discarded.
// Stop does not wait for the loop; use Done for that.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return
	}
	p.disposed = true
	p.state.Phase = domain.PhaseStopped
	for id, ch := range p.subs {
		close(ch)
		delete(p.subs, id)
	}
	started := p.started
	p.mu.Unlock()

	p.cancel()
	if !started {
		close(p.done)
	}
	p.logger.Infow("Poller stopped")
}

// Done is closed once the poll loop has exited.
func (p *Poller) Done() <-chan struct{} { return p.done }

// State returns a copy of the current poll state.
func (p *Poller) State() domain.PollState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Refresh runs one fetch out of cycle and returns the state it produced.
// The pending timer is cancelled and re-armed from the result. A refresh
// requested while a fetch is in flight runs right after it completes.
func (p *Poller) Refresh(ctx context.Context) (domain.PollState, error) {
	p.mu.Lock()
	started, disposed := p.started, p.disposed
	p.mu.Unlock()
	if disposed {
		return p.State(), ErrPollerStopped
	}
	if !started {
		return p.State(), ErrPollerNotStarted
	}

	reply := make(chan domain.PollState, 1)
	select {
	case p.manual <- reply:
	case <-ctx.Done():
		return p.State(), ctx.Err()
	case <-p.done:
		return p.State(), ErrPollerStopped
	}

	select {
	case st := <-reply:
		return st, nil
	case <-ctx.Done():
		return p.State(), ctx.Err()
	case <-p.done:
		return p.State(), ErrPollerStopped
	}
}

// Subscribe returns a channel that receives the state after every applied
// fetch. Slow readers only see the most recent state. The channel is closed
// by the returned cancel func or by Stop.
func (p *Poller) Subscribe() (<-chan domain.PollState, func()) {
	ch := make(chan domain.PollState, 1)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.disposed {
		close(ch)
		return ch, func() {}
	}
	id := p.nextSub
	p.nextSub++
	p.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			if c, ok := p.subs[id]; ok {
				close(c)
				delete(p.subs, id)
			}
		})
	}
}

// Clear drops the displayed snapshot, as after a backend reset. A fetch
// still in flight is superseded and its result discarded. The failure count
// and delay return to their initial values.
func (p *Poller) Clear() domain.PollState {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.disposed {
		return p.state
	}
	p.issued++
	p.state.AppliedSeq = p.issued
	p.state.Snapshot = nil
	p.state.LastError = ""
	p.state.ConsecutiveFailures = 0
	p.state.CurrentDelay = p.cfg.BaseDelay
	p.state.LastUpdatedAt = p.clock.Now()
	p.logger.Infow("Snapshot cleared", "seq", p.issued)
	p.publish(p.state)
	return p.state
}

func (p *Poller) run() {
	defer close(p.done)

	var waiters []chan domain.PollState
	for {
		st := p.cycle()
		for _, w := range waiters {
			w <- st
		}
		waiters = nil

		if p.ctx.Err() != nil {
			return
		}

		timer := p.clock.NewTimer(st.CurrentDelay)
		select {
		case <-p.ctx.Done():
			timer.Stop()
			return
		case <-timer.C():
		case w := <-p.manual:
			timer.Stop()
			waiters = append(waiters, w)
		drain:
			for {
				select {
				case w := <-p.manual:
					waiters = append(waiters, w)
				default:
					break drain
				}
			}
		}
	}
}

// cycle issues one fetch and applies its result.
func (p *Poller) cycle() domain.PollState {
	p.mu.Lock()
	if p.disposed {
		st := p.state
		p.mu.Unlock()
		return st
	}
	p.issued++
	seq := p.issued
	p.state.Phase = domain.PhaseInFlight
	p.mu.Unlock()

	ctx := p.ctx
	if p.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(p.ctx, p.cfg.FetchTimeout)
		defer cancel()
	}

	snap, err := p.fetcher.Latest(ctx)
	return p.apply(seq, snap, err)
}

func (p *Poller) apply(seq uint64, snap *model.ResumeSnapshot, err error) domain.PollState {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.disposed {
		p.logger.Debugw("Discarding fetch result after stop", "seq", seq)
		return p.state
	}
	if seq != p.issued || seq <= p.state.AppliedSeq {
		p.logger.Debugw("Discarding stale fetch result", "seq", seq, "latest", p.issued)
		if p.state.Phase == domain.PhaseInFlight {
			p.state.Phase = domain.PhaseWaiting
		}
		return p.state
	}

	p.state.AppliedSeq = seq
	if err != nil {
		p.state.ConsecutiveFailures++
		p.state.LastError = fetchErrorText(err)
		p.state.CurrentDelay = BackoffDelay(p.cfg.BaseDelay, p.cfg.MaxDelay, p.state.ConsecutiveFailures)
		p.state.Phase = domain.PhaseBackoff
		p.logger.Warnw("Snapshot fetch failed",
			"error", p.state.LastError,
			"failures", p.state.ConsecutiveFailures,
			"retry_in", p.state.CurrentDelay,
		)
	} else {
		if p.state.ConsecutiveFailures > 0 {
			p.logger.Infow("Snapshot fetch recovered", "after_failures", p.state.ConsecutiveFailures)
		}
		p.state.ConsecutiveFailures = 0
		p.state.LastError = ""
		p.state.CurrentDelay = p.cfg.BaseDelay
		p.state.LastUpdatedAt = p.clock.Now()
		p.state.Snapshot = snap
		p.state.Phase = domain.PhaseWaiting
		p.logger.Debugw("Snapshot fetched", "seq", seq)
	}

	st := p.state
	p.publish(st)
	return st
}

// publish hands st to every subscriber, replacing an unread older state.
// Callers hold mu.
func (p *Poller) publish(st domain.PollState) {
	for _, ch := range p.subs {
		select {
		case ch <- st:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- st:
			default:
			}
		}
	}
}

func fetchErrorText(err error) string {
	if fe, ok := domain.AsFetchError(err); ok {
		return fe.Error()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	return err.Error()
}
