package tweenguide

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// WatchState names the watcher's three states.
type WatchState int

const (
	// Idle means no session is active.
	Idle WatchState = iota
	// Monitoring means a session is active with no pending commit.
	Monitoring
	// PendingCommit means a session is waiting for a stroke to stabilize
	// before advancing.
	PendingCommit
)

func (s WatchState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Monitoring:
		return "monitoring"
	case PendingCommit:
		return "pending_commit"
	default:
		return "unknown"
	}
}

// LogFunc receives diagnostic lines from the session machinery, in the
// style of testing.T.Logf. A nil LogFunc discards.
type LogFunc func(format string, args ...interface{})

// SessionConfig configures the behavior of a guide session.
//
// Example usage:
//
//	config := tweenguide.SessionConfig{
//		AdvanceOnRelease:  true,
//		Debounce:          200 * time.Millisecond,
//		IntegrityInterval: 5,
//	}
//
//	session := tweenguide.NewSession(strokes, frame, count, config)
type SessionConfig struct {
	// PollInterval is the watcher's reschedule cadence (default 120ms).
	PollInterval time.Duration
	// Debounce is how long stroke count and point count must hold still
	// before a deferred advance commits (default 350ms).
	Debounce time.Duration
	// LockFrame keeps the monitored frame fixed when the host switches
	// frames, only resynchronizing the observed stroke count.
	LockFrame bool
	// AdvanceOnRelease defers advances until the in-progress stroke
	// stabilizes instead of advancing on first detection.
	AdvanceOnRelease bool
	// IntegrityInterval is the number of advances between snapshot
	// re-validations, clamped to 1-20 (default 3).
	IntegrityInterval int
	// Logf receives diagnostic output; nil discards.
	Logf LogFunc
}

// DefaultSessionConfig returns a SessionConfig matching the host defaults:
// 120ms polls, 350ms debounce, immediate advance, integrity check every
// 3 advances.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		PollInterval:      120 * time.Millisecond,
		Debounce:          350 * time.Millisecond,
		IntegrityInterval: 3,
	}
}

// normalized fills zero values with defaults and clamps the integrity
// interval to its host property range.
func (c SessionConfig) normalized() SessionConfig {
	if c.PollInterval <= 0 {
		c.PollInterval = 120 * time.Millisecond
	}
	if c.Debounce <= 0 {
		c.Debounce = 350 * time.Millisecond
	}
	if c.IntegrityInterval < 1 {
		c.IntegrityInterval = 3
	}
	if c.IntegrityInterval > 20 {
		c.IntegrityInterval = 20
	}
	return c
}

// pendingCommit is the transient sub-state of a deferred advance: the
// watcher has seen a new stroke begin and is waiting for both the stroke
// count and the last stroke's point count to hold still for the debounce
// window.
type pendingCommit struct {
	active       bool
	target       int       // stroke count the commit will advance to
	lastPointLen int       // last observed point count of the in-progress stroke
	lastChange   time.Time // when either signal last moved
}

// GuideSession is the single owned state of an active guide run: the cached
// world-space guide strokes, the guide index cursor, and the watcher's
// bookkeeping. Exactly one session is active per process; it is created by
// Start, mutated only by the watcher, and destroyed by Stop.
type GuideSession struct {
	// ID correlates captured frames and reports with this session.
	ID uuid.UUID
	// Strokes is the cached guide stroke list, replaced wholesale on
	// re-snapshot.
	Strokes []GuideStroke
	// Index is the cursor into Strokes; always within [0, len-1] while
	// Strokes is non-empty.
	Index int
	// MonitoredFrame is the frame whose stroke count the watcher tracks.
	MonitoredFrame int
	// LastCount is the stroke count last reconciled on the monitored frame.
	LastCount int

	pending            pendingCommit
	advancesSinceCheck int
	config             SessionConfig

	// mu guards mutation by Step and ReplaceStrokes against readers on
	// other goroutines. The exported fields are safe to read directly on
	// the watcher goroutine; other goroutines use Status.
	mu sync.Mutex
}

// NewSession creates a session over an already captured guide stroke list.
//
// The index initializes to the monitored frame's existing stroke count,
// clamped to the stroke list: resuming on a frame that already has N
// strokes shows the (N+1)-th guide stroke.
func NewSession(strokes []GuideStroke, monitoredFrame, strokeCount int, config SessionConfig) *GuideSession {
	return &GuideSession{
		ID:             uuid.New(),
		Strokes:        strokes,
		Index:          clampIndex(strokeCount, len(strokes)),
		MonitoredFrame: monitoredFrame,
		LastCount:      strokeCount,
		config:         config.normalized(),
	}
}

// Config returns the session's normalized configuration.
func (s *GuideSession) Config() SessionConfig {
	return s.config
}

// State reports the watcher state this session is in.
func (s *GuideSession) State() WatchState {
	if s == nil {
		return Idle
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *GuideSession) stateLocked() WatchState {
	if s.pending.active {
		return PendingCommit
	}
	return Monitoring
}

// SessionStatus is a point-in-time view of a session, safe to read from
// any goroutine while the watcher runs.
type SessionStatus struct {
	State          WatchState
	Index          int
	Total          int
	MonitoredFrame int
	LastCount      int
}

// Status snapshots the session under its lock.
func (s *GuideSession) Status() SessionStatus {
	if s == nil {
		return SessionStatus{State: Idle}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionStatus{
		State:          s.stateLocked(),
		Index:          s.Index,
		Total:          len(s.Strokes),
		MonitoredFrame: s.MonitoredFrame,
		LastCount:      s.LastCount,
	}
}

// CurrentGuide returns the guide stroke under the cursor, or false when the
// stroke cache is empty.
func (s *GuideSession) CurrentGuide() (GuideStroke, bool) {
	if s == nil {
		return GuideStroke{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Strokes) == 0 {
		return GuideStroke{}, false
	}
	return s.Strokes[clampIndex(s.Index, len(s.Strokes))], true
}

// AdvancesSinceCheck exposes the integrity counter for inspection.
func (s *GuideSession) AdvancesSinceCheck() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advancesSinceCheck
}

// ReplaceStrokes swaps in a freshly captured stroke list and re-clamps the
// cursor so the index invariant holds against the new list.
func (s *GuideSession) ReplaceStrokes(strokes []GuideStroke) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Strokes = strokes
	s.Index = clampIndex(s.Index, len(s.Strokes))
}

// clampIndex bounds a cursor to [0, n-1], or 0 for an empty list.
func clampIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}
