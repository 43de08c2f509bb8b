package domain

import (
	"time"

	"linguacv/internal/model"
)

// Phase is the scheduler's position in its fetch cycle.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseInFlight Phase = "in_flight"
	PhaseWaiting  Phase = "waiting"
	PhaseBackoff  Phase = "backoff"
	PhaseStopped  Phase = "stopped"
)

// PollState is a copy of the scheduler's state at one instant. The Snapshot
// pointer is shared and must be treated as read-only.
type PollState struct {
	Phase               Phase
	CurrentDelay        time.Duration
	LastError           string
	LastUpdatedAt       time.Time
	ConsecutiveFailures int
	AppliedSeq          uint64
	Snapshot            *model.ResumeSnapshot
}

// Loaded reports whether at least one fetch has succeeded.
func (s PollState) Loaded() bool { return s.Snapshot != nil }

// RetryIn rounds the pending backoff to whole seconds for display.
func (s PollState) RetryIn() int {
	return int((s.CurrentDelay + time.Second/2) / time.Second)
}
