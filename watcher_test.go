package tweenguide

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// guides builds a stroke cache of n trivial guide strokes.
func guides(n int) []GuideStroke {
	strokes := make([]GuideStroke, n)
	for i := range strokes {
		strokes[i] = GuideStroke{Points: []Vec3{
			V3(float64(i), 0, 0),
			V3(float64(i), 1, 0),
		}}
	}
	return strokes
}

func at(base time.Time, ms int) time.Time {
	return base.Add(time.Duration(ms) * time.Millisecond)
}

// TestStep_ImmediateAdvance tests the default immediate-advance mode: a new
// stroke moves the cursor on the very next poll.
func TestStep_ImmediateAdvance(t *testing.T) {
	base := time.Now()
	session := NewSession(guides(5), 10, 0, DefaultSessionConfig())

	assert.Equal(t, 0, session.Index)
	assert.Equal(t, Monitoring, session.State())

	out := session.Step(Observation{Frame: 10, StrokeCount: 1, Now: at(base, 120)})
	assert.True(t, out.Redraw)
	assert.Equal(t, 1, out.Advanced)
	assert.Equal(t, 1, session.Index)
	assert.Equal(t, Monitoring, out.State)

	// No change, no redraw.
	out = session.Step(Observation{Frame: 10, StrokeCount: 1, Now: at(base, 240)})
	assert.False(t, out.Redraw)
	assert.Equal(t, 0, out.Advanced)
}

// TestStep_MultiStrokeAdvance tests several strokes appearing between polls
// advancing the cursor by the full delta.
func TestStep_MultiStrokeAdvance(t *testing.T) {
	base := time.Now()
	session := NewSession(guides(10), 0, 0, DefaultSessionConfig())

	out := session.Step(Observation{Frame: 0, StrokeCount: 3, Now: base})
	assert.Equal(t, 3, out.Advanced)
	assert.Equal(t, 3, session.Index)
	assert.Equal(t, 3, session.LastCount)
}

// TestStep_IndexClampsAtEnd tests that the cursor pins to the last guide
// stroke once the artist has drawn past the cache.
func TestStep_IndexClampsAtEnd(t *testing.T) {
	base := time.Now()
	session := NewSession(guides(3), 0, 0, DefaultSessionConfig())

	for i := 1; i <= 6; i++ {
		session.Step(Observation{Frame: 0, StrokeCount: i, Now: at(base, i*120)})
	}
	assert.Equal(t, 2, session.Index, "cursor must pin at len-1")
	assert.Equal(t, 6, session.LastCount)

	guide, ok := session.CurrentGuide()
	require.True(t, ok)
	assert.Equal(t, V3(2, 0, 0), guide.Points[0])
}

// TestStep_RemovalResync tests undo: removed strokes resynchronize the
// cursor immediately, never deferred, even in advance-on-release mode.
func TestStep_RemovalResync(t *testing.T) {
	base := time.Now()
	config := DefaultSessionConfig()
	config.AdvanceOnRelease = true
	session := NewSession(guides(5), 0, 3, config)
	require.Equal(t, 3, session.Index)

	out := session.Step(Observation{Frame: 0, StrokeCount: 1, Now: base})
	assert.True(t, out.Redraw)
	assert.Equal(t, 0, out.Advanced)
	assert.Equal(t, 1, session.Index)
	assert.Equal(t, 1, session.LastCount)
	assert.Equal(t, Monitoring, out.State)
}

// TestStep_AdvanceOnRelease walks the deferred-commit path: a new stroke
// enters pending, point-count churn holds the window open, and only a full
// quiet debounce commits the advance.
func TestStep_AdvanceOnRelease(t *testing.T) {
	base := time.Now()
	config := DefaultSessionConfig()
	config.AdvanceOnRelease = true
	session := NewSession(guides(5), 0, 0, config)

	// New stroke detected: pending, no advance yet.
	out := session.Step(Observation{Frame: 0, StrokeCount: 1, LastStrokePoints: 4, Now: at(base, 0)})
	assert.Equal(t, 0, out.Advanced)
	assert.Equal(t, PendingCommit, out.State)
	assert.Equal(t, 0, session.Index)

	// Still drawing: the point count keeps moving, window restarts.
	out = session.Step(Observation{Frame: 0, StrokeCount: 1, LastStrokePoints: 9, Now: at(base, 120)})
	assert.Equal(t, 0, out.Advanced)
	assert.Equal(t, PendingCommit, out.State)

	// Stable but not yet past the debounce.
	out = session.Step(Observation{Frame: 0, StrokeCount: 1, LastStrokePoints: 9, Now: at(base, 240)})
	assert.Equal(t, 0, out.Advanced)
	assert.Equal(t, PendingCommit, out.State)

	// Quiet for the full window: commit.
	out = session.Step(Observation{Frame: 0, StrokeCount: 1, LastStrokePoints: 9, Now: at(base, 120+360)})
	assert.Equal(t, 1, out.Advanced)
	assert.True(t, out.Redraw)
	assert.Equal(t, Monitoring, out.State)
	assert.Equal(t, 1, session.Index)
	assert.Equal(t, 1, session.LastCount)
}

// TestStep_PendingRetargets tests a second stroke landing mid-wait: the
// pending commit retargets to the new count and commits both at once.
func TestStep_PendingRetargets(t *testing.T) {
	base := time.Now()
	config := DefaultSessionConfig()
	config.AdvanceOnRelease = true
	session := NewSession(guides(5), 0, 0, config)

	session.Step(Observation{Frame: 0, StrokeCount: 1, LastStrokePoints: 5, Now: at(base, 0)})
	session.Step(Observation{Frame: 0, StrokeCount: 2, LastStrokePoints: 2, Now: at(base, 120)})

	out := session.Step(Observation{Frame: 0, StrokeCount: 2, LastStrokePoints: 2, Now: at(base, 120+360)})
	assert.Equal(t, 2, out.Advanced)
	assert.Equal(t, 2, session.Index)
	assert.Equal(t, 2, session.LastCount)
}

// TestStep_PendingUndoCommitsNothing tests the stroke being undone while a
// commit is pending: the debounce expires with a non-positive delta and the
// session returns to monitoring without moving the cursor.
func TestStep_PendingUndoCommitsNothing(t *testing.T) {
	base := time.Now()
	config := DefaultSessionConfig()
	config.AdvanceOnRelease = true
	session := NewSession(guides(5), 0, 1, config)
	require.Equal(t, 1, session.Index)

	session.Step(Observation{Frame: 0, StrokeCount: 2, LastStrokePoints: 5, Now: at(base, 0)})
	// Undone mid-wait: the window retargets down to the old count.
	session.Step(Observation{Frame: 0, StrokeCount: 1, LastStrokePoints: 5, Now: at(base, 120)})

	out := session.Step(Observation{Frame: 0, StrokeCount: 1, LastStrokePoints: 5, Now: at(base, 120+360)})
	assert.Equal(t, 0, out.Advanced)
	assert.Equal(t, Monitoring, out.State)
	assert.Equal(t, 1, session.Index)
	assert.Equal(t, 1, session.LastCount)
}

// TestStep_FrameChangeRebaseline tests the default frame-change behavior:
// the session re-baselines onto the new frame and points the cursor at the
// guide for the frame's next stroke.
func TestStep_FrameChangeRebaseline(t *testing.T) {
	base := time.Now()
	session := NewSession(guides(8), 4, 0, DefaultSessionConfig())
	session.Step(Observation{Frame: 4, StrokeCount: 2, Now: base})
	require.Equal(t, 2, session.Index)

	out := session.Step(Observation{Frame: 7, StrokeCount: 5, Now: at(base, 120)})
	assert.True(t, out.Redraw)
	assert.Equal(t, 0, out.Advanced)
	assert.Equal(t, 7, session.MonitoredFrame)
	assert.Equal(t, 5, session.LastCount)
	assert.Equal(t, 5, session.Index)
}

// TestStep_FrameChangeWithLock tests the lock-frame mode: the monitored
// frame stays put and only the observed count resynchronizes, so a frame
// switch is never mistaken for added strokes.
func TestStep_FrameChangeWithLock(t *testing.T) {
	base := time.Now()
	config := DefaultSessionConfig()
	config.LockFrame = true
	session := NewSession(guides(8), 4, 2, config)
	require.Equal(t, 2, session.Index)

	out := session.Step(Observation{Frame: 9, StrokeCount: 6, Now: base})
	assert.False(t, out.Redraw)
	assert.Equal(t, 0, out.Advanced)
	assert.Equal(t, 4, session.MonitoredFrame, "locked frame must not move")
	assert.Equal(t, 6, session.LastCount)
	assert.Equal(t, 2, session.Index, "cursor must not move on a locked frame switch")
}

// TestStep_FrameChangeCancelsPending tests that leaving the frame clears
// any pending commit instead of committing it later.
func TestStep_FrameChangeCancelsPending(t *testing.T) {
	base := time.Now()
	config := DefaultSessionConfig()
	config.AdvanceOnRelease = true
	session := NewSession(guides(5), 0, 0, config)

	session.Step(Observation{Frame: 0, StrokeCount: 1, LastStrokePoints: 3, Now: base})
	require.Equal(t, PendingCommit, session.State())

	out := session.Step(Observation{Frame: 2, StrokeCount: 0, Now: at(base, 120)})
	assert.Equal(t, Monitoring, out.State)

	// Long after the old debounce would have expired, nothing commits.
	out = session.Step(Observation{Frame: 2, StrokeCount: 0, Now: at(base, 2000)})
	assert.Equal(t, 0, out.Advanced)
	assert.Equal(t, 0, session.Index)
}

// TestStep_IntegrityCounter tests the advance counter: every configured
// number of advances the step reports a refresh due and resets the counter,
// including when a burst overshoots the interval.
func TestStep_IntegrityCounter(t *testing.T) {
	base := time.Now()
	config := DefaultSessionConfig()
	config.IntegrityInterval = 3
	session := NewSession(guides(20), 0, 0, config)

	out := session.Step(Observation{Frame: 0, StrokeCount: 1, Now: at(base, 120)})
	assert.False(t, out.RefreshDue)
	out = session.Step(Observation{Frame: 0, StrokeCount: 2, Now: at(base, 240)})
	assert.False(t, out.RefreshDue)
	assert.Equal(t, 2, session.AdvancesSinceCheck())

	out = session.Step(Observation{Frame: 0, StrokeCount: 3, Now: at(base, 360)})
	assert.True(t, out.RefreshDue, "third advance must trigger a refresh")
	assert.Equal(t, 0, session.AdvancesSinceCheck())

	// A burst of 4 overshoots the interval in one step.
	out = session.Step(Observation{Frame: 0, StrokeCount: 7, Now: at(base, 480)})
	assert.True(t, out.RefreshDue)
	assert.Equal(t, 0, session.AdvancesSinceCheck())
}

// TestReplaceStrokes_ReclampsIndex tests the snapshot swap: a shorter fresh
// capture pulls the cursor back inside the new list.
func TestReplaceStrokes_ReclampsIndex(t *testing.T) {
	session := NewSession(guides(10), 0, 8, DefaultSessionConfig())
	require.Equal(t, 8, session.Index)

	session.ReplaceStrokes(guides(4))
	assert.Equal(t, 3, session.Index)

	session.ReplaceStrokes(nil)
	assert.Equal(t, 0, session.Index)
	_, ok := session.CurrentGuide()
	assert.False(t, ok)
}

// TestWatcher_PollAdvances drives a watcher against a live sketchpad.
func TestWatcher_PollAdvances(t *testing.T) {
	base := time.Now()
	pad := NewSketchpad()
	pad.AddStroke(0, V3(0, 0, 0), V3(1, 0, 0))
	pad.AddStroke(0, V3(0, 1, 0), V3(1, 1, 0))
	pad.SetFrame(1)

	strokes, err := CaptureSnapshot(pad, 1)
	require.NoError(t, err)
	require.Len(t, strokes, 2)

	session := NewSession(strokes, 1, 0, DefaultSessionConfig())

	redraws := 0
	watcher := NewWatcher(pad, session, func() { redraws++ })

	out := watcher.Poll(at(base, 120))
	assert.Equal(t, 0, out.Advanced)
	assert.Equal(t, 0, redraws)

	pad.AddStroke(1, V3(0, 0, 0), V3(1, 0, 0))
	out = watcher.Poll(at(base, 240))
	assert.Equal(t, 1, out.Advanced)
	assert.Equal(t, 1, redraws)
	assert.Equal(t, 1, session.Index)
	assert.True(t, watcher.Healthy())
}

// TestWatcher_ReadErrorSkipsIteration tests the introspection failure path:
// the poll records a smear, skips the step, and the session is untouched.
func TestWatcher_ReadErrorSkipsIteration(t *testing.T) {
	base := time.Now()
	pad := NewSketchpad()
	pad.AddStroke(0, V3(0, 0, 0), V3(1, 0, 0))
	pad.SetFrame(1)

	strokes, err := CaptureSnapshot(pad, 1)
	require.NoError(t, err)

	session := NewSession(strokes, 1, 0, DefaultSessionConfig())
	watcher := NewWatcher(pad, session, nil)

	pad.AddStroke(1, V3(0, 0, 0), V3(1, 0, 0))
	pad.SetReadError(errors.New("document detached"))

	out := watcher.Poll(at(base, 120))
	assert.Equal(t, 0, out.Advanced)
	assert.Equal(t, 0, session.Index, "a failed read must not advance")
	assert.True(t, watcher.Handler().HasSmears())
	assert.True(t, watcher.Healthy(), "one smear must not stop the watcher")

	// The read recovers and the pending stroke is picked up.
	pad.SetReadError(nil)
	out = watcher.Poll(at(base, 240))
	assert.Equal(t, 1, out.Advanced)
}

// TestWatcher_SurvivesLongReadOutage tests that a persistent document
// outage never exhausts the watcher: every poll smears and skips, Healthy
// stays true, and the first clean poll after recovery advances the guide.
func TestWatcher_SurvivesLongReadOutage(t *testing.T) {
	base := time.Now()
	pad := NewSketchpad()
	pad.AddStroke(0, V3(0, 0, 0), V3(1, 0, 0))
	pad.SetFrame(1)

	strokes, err := CaptureSnapshot(pad, 1)
	require.NoError(t, err)

	session := NewSession(strokes, 1, 0, DefaultSessionConfig())
	watcher := NewWatcher(pad, session, nil)

	pad.SetReadError(errors.New("document detached"))
	for i := 1; i <= 60; i++ {
		watcher.Poll(at(base, i*120))
	}
	assert.True(t, watcher.Handler().HasSmears())
	assert.True(t, watcher.Healthy(), "read failures must never stop polling")
	assert.Equal(t, 0, session.Status().Index)

	// The document comes back and a stroke drawn during the outage is
	// picked up on the next poll.
	pad.SetReadError(nil)
	pad.AddStroke(1, V3(0, 0, 0), V3(1, 0, 0))
	out := watcher.Poll(at(base, 61*120))
	assert.Equal(t, 1, out.Advanced)
	assert.Equal(t, 1, session.Status().Index)
	assert.True(t, watcher.Healthy())
}

// TestWatcher_VanishedDrawableReadsAsEmpty tests the no-data path: a
// deselected drawable reads as zero strokes and resynchronizes, with no
// smear recorded.
func TestWatcher_VanishedDrawableReadsAsEmpty(t *testing.T) {
	base := time.Now()
	pad := NewSketchpad()
	pad.AddStroke(0, V3(0, 0, 0), V3(1, 0, 0))
	pad.SetFrame(1)
	pad.AddStroke(1, V3(0, 0, 0), V3(1, 0, 0))

	strokes, err := CaptureSnapshot(pad, 1)
	require.NoError(t, err)

	session := NewSession(strokes, 1, 1, DefaultSessionConfig())
	watcher := NewWatcher(pad, session, nil)

	pad.SetActive(false)
	out := watcher.Poll(at(base, 120))
	assert.Equal(t, 0, out.Advanced)
	assert.Equal(t, 0, session.LastCount)
	assert.False(t, watcher.Handler().HasSmears())
}

// TestWatcher_IntegrityRefreshReplacesCache tests the due refresh: after the
// configured number of advances the stroke cache is recaptured from the
// document, picking up edits to the prior frame.
func TestWatcher_IntegrityRefreshReplacesCache(t *testing.T) {
	base := time.Now()
	pad := NewSketchpad()
	pad.AddStroke(0, V3(0, 0, 0), V3(1, 0, 0))
	pad.SetFrame(1)

	strokes, err := CaptureSnapshot(pad, 1)
	require.NoError(t, err)
	require.Len(t, strokes, 1)

	config := DefaultSessionConfig()
	config.IntegrityInterval = 2
	session := NewSession(strokes, 1, 0, config)
	watcher := NewWatcher(pad, session, nil)

	// The prior frame gains a stroke after the session started.
	pad.AddStroke(0, V3(0, 2, 0), V3(1, 2, 0))

	pad.AddStroke(1, V3(0, 0, 0), V3(1, 0, 0))
	watcher.Poll(at(base, 120))
	assert.Len(t, session.Strokes, 1, "no refresh before the interval")

	pad.AddStroke(1, V3(0, 1, 0), V3(1, 1, 0))
	out := watcher.Poll(at(base, 240))
	assert.True(t, out.RefreshDue)
	assert.Len(t, session.Strokes, 2, "refresh must pick up the new guide stroke")
}

// TestWatcher_RefreshErrorKeepsCache tests a failing re-snapshot: the
// previous cache stays in place and the failure is recorded as a smear.
func TestWatcher_RefreshErrorKeepsCache(t *testing.T) {
	base := time.Now()
	pad := NewSketchpad()
	pad.AddStroke(0, V3(0, 0, 0), V3(1, 0, 0))
	pad.SetFrame(1)

	strokes, err := CaptureSnapshot(pad, 1)
	require.NoError(t, err)

	config := DefaultSessionConfig()
	config.IntegrityInterval = 1
	session := NewSession(strokes, 1, 0, config)

	pad.AddStroke(1, V3(0, 0, 0), V3(1, 0, 0))

	// Wrap the pad so observation reads succeed but the capture's frame
	// listing fails.
	failing := &frameFailDoc{Sketchpad: pad}
	watcher := NewWatcher(failing, session, nil)

	out := watcher.Poll(at(base, 120))
	assert.True(t, out.RefreshDue)
	assert.Len(t, session.Strokes, 1, "cache must survive a failed refresh")
	assert.True(t, watcher.Handler().HasSmears())
}

// frameFailDoc passes observation reads through but fails Frames(), which
// only the snapshot capture uses.
type frameFailDoc struct {
	*Sketchpad
}

func (d *frameFailDoc) ActiveDrawable() Drawable {
	if d.Sketchpad.ActiveDrawable() == nil {
		return nil
	}
	return d
}

func (d *frameFailDoc) Frames() ([]int, error) {
	return nil, errors.New("frame listing unavailable")
}
