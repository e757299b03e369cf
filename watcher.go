// Package tweenguide overlays guide strokes from a prior animation frame
// onto the current frame, helping an animator tween hand-drawn strokes.
//
// The heart of the library is the stroke-advance watcher: a cooperatively
// scheduled polling state machine that detects new strokes drawn by the
// user, debounces in-progress strokes, and advances a per-session cursor
// into a cached list of reference strokes, periodically re-validating its
// cache against the host document.
//
// Basic usage against a host document:
//
//	tweener := tweenguide.NewTweener(doc, overlay)
//	if err := tweener.Start(tweenguide.DefaultSessionConfig()); err != nil {
//		// human-readable precondition warning, nothing was changed
//	}
//	defer tweener.Stop()
//
// The state machine itself is independently steppable for hosts that run
// their own scheduler:
//
//	session := tweenguide.NewSession(strokes, frame, count, config)
//	outcome := session.Step(tweenguide.Observation{
//		Frame:       doc.CurrentFrame(),
//		StrokeCount: liveCount,
//		Now:         time.Now(),
//	})
package tweenguide

import (
	"time"

	"github.com/paxon/tweenguide/smudge"
)

// Observation is one poll's view of the document: everything the state
// machine needs for a single transition, gathered up front so Step stays
// free of host access and directly testable.
type Observation struct {
	// Frame is the host's current frame number.
	Frame int
	// StrokeCount is the live stroke count on the current frame.
	StrokeCount int
	// LastStrokePoints is the point count of the last stroke on the
	// monitored frame; only consulted while a commit is pending or about
	// to start.
	LastStrokePoints int
	// Now is the poll timestamp, injected for deterministic debounce tests.
	Now time.Time
}

// Outcome describes what a single watcher step did.
type Outcome struct {
	// Redraw is set when the overlay should be repainted.
	Redraw bool
	// Advanced is the number of strokes a commit advanced by (before
	// clamping at the stroke list's upper bound); zero otherwise.
	Advanced int
	// RefreshDue is set when the integrity counter reached its interval
	// and the stroke cache must be replaced by a fresh snapshot.
	RefreshDue bool
	// State is the watcher state after the step.
	State WatchState
}

// Step performs one watcher transition over the observation. Transitions
// are evaluated in order: frame change, pending-commit stability, then
// normal add/remove detection.
func (s *GuideSession) Step(obs Observation) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out Outcome

	switch {
	case obs.Frame != s.MonitoredFrame:
		s.stepFrameChange(obs, &out)
	case s.pending.active:
		s.stepPending(obs, &out)
	default:
		s.stepMonitoring(obs, &out)
	}

	out.State = s.stateLocked()
	return out
}

// stepFrameChange handles the host moving to a different frame.
//
// With the frame lock on, the monitored frame stays put; only the observed
// count resynchronizes so the switch is not mistaken for added strokes.
// Otherwise the session re-baselines onto the new frame, pointing the
// cursor at the guide for the frame's next stroke.
func (s *GuideSession) stepFrameChange(obs Observation, out *Outcome) {
	if s.config.LockFrame {
		s.LastCount = obs.StrokeCount
		s.pending = pendingCommit{}
		return
	}

	s.MonitoredFrame = obs.Frame
	s.LastCount = obs.StrokeCount
	s.Index = clampIndex(s.LastCount, len(s.Strokes))
	s.pending = pendingCommit{}
	out.Redraw = true
}

// stepPending waits for the in-progress stroke to stabilize. Stability
// needs two signals to hold still: the frame's stroke count and the last
// stroke's point count. Either one moving restarts the debounce window;
// only a full quiet window commits the advance.
func (s *GuideSession) stepPending(obs Observation, out *Outcome) {
	switch {
	case obs.StrokeCount != s.pending.target:
		// Another stroke appeared or vanished mid-wait; retarget and
		// restart the window.
		s.pending.target = obs.StrokeCount
		s.pending.lastPointLen = obs.LastStrokePoints
		s.pending.lastChange = obs.Now

	case obs.LastStrokePoints != s.pending.lastPointLen:
		// Still drawing the same stroke.
		s.pending.lastPointLen = obs.LastStrokePoints
		s.pending.lastChange = obs.Now

	case obs.Now.Sub(s.pending.lastChange) >= s.config.Debounce:
		added := s.pending.target - s.LastCount
		if added > 0 {
			s.commitAdvance(added, out)
			s.LastCount = s.pending.target
		}
		s.pending = pendingCommit{}
	}
}

// stepMonitoring handles normal add/remove detection when no commit is
// pending.
func (s *GuideSession) stepMonitoring(obs Observation, out *Outcome) {
	switch {
	case obs.StrokeCount > s.LastCount:
		if s.config.AdvanceOnRelease {
			s.pending = pendingCommit{
				active:       true,
				target:       obs.StrokeCount,
				lastPointLen: obs.LastStrokePoints,
				lastChange:   obs.Now,
			}
			return
		}
		s.commitAdvance(obs.StrokeCount-s.LastCount, out)
		s.LastCount = obs.StrokeCount

	case obs.StrokeCount < s.LastCount:
		// Strokes removed (undo). Removal is never deferred.
		s.LastCount = obs.StrokeCount
		s.pending = pendingCommit{}
		s.Index = clampIndex(obs.StrokeCount, len(s.Strokes))
		out.Redraw = true
	}
}

// commitAdvance moves the cursor forward, clamped to the stroke list, and
// books the advance against the integrity counter. When the counter reaches
// the configured interval it resets and the caller owes the session a fresh
// snapshot.
func (s *GuideSession) commitAdvance(added int, out *Outcome) {
	s.Index = clampIndex(s.Index+added, len(s.Strokes))
	s.advancesSinceCheck += added
	out.Advanced = added
	out.Redraw = true

	if s.advancesSinceCheck >= s.config.IntegrityInterval {
		s.advancesSinceCheck = 0
		out.RefreshDue = true
	}
}

// Watcher drives the session state machine against a live document. Each
// Poll gathers one observation, steps the session, and services any due
// snapshot refresh. Introspection failures are recorded as smears and the
// poll is skipped; a single bad poll never terminates the watcher.
type Watcher struct {
	doc     Document
	session *GuideSession
	handler *smudge.Handler
	redraw  func()
	logf    LogFunc
}

// NewWatcher creates a watcher over an active session. The redraw callback
// is invoked whenever a step requests a repaint; nil is allowed.
func NewWatcher(doc Document, session *GuideSession, redraw func()) *Watcher {
	logf := session.config.Logf
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	return &Watcher{
		doc:     doc,
		session: session,
		handler: smudge.NewHandler("watcher", smudge.DefaultPolicy()),
		redraw:  redraw,
		logf:    logf,
	}
}

// Session returns the session the watcher drives.
func (w *Watcher) Session() *GuideSession {
	return w.session
}

// Handler returns the watcher's failure handler for inspection.
func (w *Watcher) Handler() *smudge.Handler {
	return w.handler
}

// Poll performs one watcher iteration at the given time and reports what
// it did. Callers reschedule at the session's PollInterval for as long as
// Healthy() holds.
func (w *Watcher) Poll(now time.Time) Outcome {
	obs, ok := w.observe(now)
	if !ok {
		return Outcome{State: w.session.State()}
	}

	out := w.session.Step(obs)

	if out.RefreshDue {
		w.refreshSnapshot()
	}
	if out.Redraw && w.redraw != nil {
		w.redraw()
	}
	if out.Advanced > 0 {
		w.logf("[TRACE] Poll: advanced by %d to index %d (state=%s)",
			out.Advanced, w.session.Index, out.State)
	}
	return out
}

// Healthy reports whether polling should continue; a run of accumulated
// introspection failures eventually stops the session.
func (w *Watcher) Healthy() bool {
	return w.handler.ShouldContinue()
}

// observe gathers one poll's observation. A drawable that has disappeared
// reads as zero strokes ("no data"); a read error records a smear and
// skips the iteration.
func (w *Watcher) observe(now time.Time) (Observation, bool) {
	obs := Observation{Frame: w.doc.CurrentFrame(), Now: now}

	drawable := w.doc.ActiveDrawable()
	if drawable == nil {
		return obs, true
	}

	count, err := drawable.StrokeCount(obs.Frame)
	if err != nil {
		w.handler.Record(smudge.NewSmear("introspection", "stroke count unavailable",
			smudge.Context{"frame": obs.Frame, "cause": err.Error()}))
		w.logf("[TRACE] Poll: skipping iteration, stroke count unavailable: %v", err)
		return obs, false
	}
	obs.StrokeCount = count

	points, err := drawable.LastStrokePointCount(w.session.MonitoredFrame)
	if err != nil {
		w.handler.Record(smudge.NewSmear("introspection", "last stroke point count unavailable",
			smudge.Context{"frame": w.session.MonitoredFrame, "cause": err.Error()}))
		w.logf("[TRACE] Poll: skipping iteration, point count unavailable: %v", err)
		return obs, false
	}
	obs.LastStrokePoints = points

	return obs, true
}

// refreshSnapshot replaces the session's stroke cache with a fresh capture.
// A capture error keeps the previous cache and records a smear; an empty
// capture still replaces it, matching the unconditional-replace contract.
func (w *Watcher) refreshSnapshot() {
	guides, err := CaptureSnapshot(w.doc, w.session.MonitoredFrame)
	if err != nil {
		w.handler.Record(smudge.NewSmear("introspection", "integrity re-snapshot failed",
			smudge.Context{"frame": w.session.MonitoredFrame, "cause": err.Error()}))
		w.logf("[TRACE] Poll: integrity re-snapshot failed, keeping cache: %v", err)
		return
	}
	w.session.ReplaceStrokes(guides)
	w.logf("[TRACE] Poll: integrity check refreshed %d guide strokes", len(guides))
}
