package tweenguide

import (
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/paxon/tweenguide/smudge"
)

// DrawFunc renders the session's current guide stroke. The host invokes it
// on every viewport repaint while the overlay is installed.
type DrawFunc func(session *GuideSession)

// OverlayHandle is a live registration with the host's redraw system.
type OverlayHandle interface {
	// RequestRedraw asks the host to repaint the viewport.
	RequestRedraw()
	// Remove tears down the registration. Further RequestRedraw calls are
	// no-ops. Remove is idempotent.
	Remove() error
}

// OverlayRegistrar installs the overlay draw callback into the host's
// redraw system. It is the external collaborator boundary for rendering:
// the library never draws except through an installed handle.
type OverlayRegistrar interface {
	Install(draw DrawFunc) (OverlayHandle, error)
}

// Tweener owns the process's single guide session: the Start and Stop
// commands, the overlay registration, and the background watcher program.
//
// Start validates its preconditions and either brings up the whole session
// or changes nothing; Stop is idempotent and always leaves the process with
// no session, no overlay handle and no scheduled poll.
//
//	tweener := tweenguide.NewTweener(doc, registrar).WithLightTable(lt)
//	if err := tweener.Start(tweenguide.DefaultSessionConfig()); err != nil {
//		fmt.Println(err) // human-readable warning
//	}
//	defer tweener.Stop()
type Tweener struct {
	doc       Document
	registrar OverlayRegistrar

	mu      sync.Mutex
	session *GuideSession
	watcher *Watcher
	handle  OverlayHandle
	program *tea.Program
	keep    bool

	lightTable *LightTable
	draw       DrawFunc
	logf       LogFunc
}

// NewTweener creates a tweener over a document and an overlay registrar.
func NewTweener(doc Document, registrar OverlayRegistrar) *Tweener {
	return &Tweener{
		doc:       doc,
		registrar: registrar,
		logf:      func(string, ...interface{}) {},
	}
}

// WithLightTable renders the session onto the given light table on every
// host repaint. Overrides any DrawFunc set via WithDraw.
func (t *Tweener) WithLightTable(lt *LightTable) *Tweener {
	t.lightTable = lt
	return t
}

// WithDraw sets a custom draw callback invoked on host repaints.
func (t *Tweener) WithDraw(draw DrawFunc) *Tweener {
	t.draw = draw
	return t
}

// WithLogf sets the diagnostic sink for command-level tracing.
func (t *Tweener) WithLogf(logf LogFunc) *Tweener {
	if logf != nil {
		t.logf = logf
	}
	return t
}

// Active reports whether a session is currently running.
func (t *Tweener) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session != nil
}

// Session returns the active session, or nil.
func (t *Tweener) Session() *GuideSession {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session
}

// Watcher returns the active session's watcher, or nil.
func (t *Tweener) Watcher() *Watcher {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.watcher
}

// Start brings up a guide session: captures the snapshot, installs the
// overlay handle, and begins polling at the configured interval.
//
// Preconditions: an active drawable of the supported type, and at least one
// prior authored frame with a non-empty stroke. On failure the returned
// error is a human-readable warning and no state was changed.
func (t *Tweener) Start(config SessionConfig) error {
	t.mu.Lock()

	if t.session != nil {
		t.mu.Unlock()
		return smudge.NewSmudge("precondition",
			"a guide session is already active; stop it first", nil)
	}

	drawable := t.doc.ActiveDrawable()
	if drawable == nil {
		t.mu.Unlock()
		return smudge.NewSmudge("precondition",
			"select a supported drawable object first", nil)
	}

	current := t.doc.CurrentFrame()
	strokes, err := CaptureSnapshot(t.doc, current)
	if err != nil {
		t.mu.Unlock()
		return smudge.NewSmudge("precondition",
			"could not read strokes from the document",
			smudge.Context{"cause": err.Error()})
	}
	if len(strokes) == 0 {
		t.mu.Unlock()
		return smudge.NewSmudge("precondition",
			"no strokes found in a previous frame", nil)
	}

	count, err := drawable.StrokeCount(current)
	if err != nil {
		t.mu.Unlock()
		return smudge.NewSmudge("precondition",
			"could not read the current frame's stroke count",
			smudge.Context{"frame": current, "cause": err.Error()})
	}

	if config.Logf == nil {
		config.Logf = t.logf
	}
	session := NewSession(strokes, current, count, config)

	handle, err := t.registrar.Install(t.drawFunc())
	if err != nil {
		t.mu.Unlock()
		// No partial handle is retained; the session never existed.
		return smudge.NewTear("registration",
			fmt.Sprintf("failed to install overlay handle: %v", err),
			smudge.Context{"cause": err.Error()})
	}

	t.session = session
	t.handle = handle
	t.watcher = NewWatcher(t.doc, session, handle.RequestRedraw)
	t.keep = true

	t.startProgram()
	t.mu.Unlock()

	// Outside the lock: handles may re-enter Session() while drawing.
	handle.RequestRedraw()

	t.logf("[TRACE] Start: guides started - %d hints loaded; monitoring frame %d (session %s)",
		len(session.Strokes), session.MonitoredFrame, session.ID)
	return nil
}

// Stop tears down the overlay registration, clears the session, and halts
// polling. Idempotent; safe to call with no session active.
func (t *Tweener) Stop() {
	t.mu.Lock()
	handle := t.handle
	program := t.program
	t.keep = false
	t.handle = nil
	t.session = nil
	t.watcher = nil
	t.program = nil
	t.mu.Unlock()

	if handle != nil {
		if err := handle.Remove(); err != nil {
			t.logf("[TRACE] Stop: overlay handle removal failed: %v", err)
		}
	}
	if program != nil {
		program.Quit()
		program.Wait()
	}
	t.logf("[TRACE] Stop: guides stopped")
}

// shouldContinue is the watcher program's termination sentinel: polling
// keeps rescheduling only while the keep flag is set and the overlay
// handle is still installed.
func (t *Tweener) shouldContinue() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.keep && t.handle != nil
}

// drawFunc resolves the overlay draw callback in priority order: explicit
// DrawFunc, light table, no-op.
func (t *Tweener) drawFunc() DrawFunc {
	if t.draw != nil {
		return t.draw
	}
	if t.lightTable != nil {
		lt := t.lightTable
		return func(session *GuideSession) {
			lt.DrawSession(session)
		}
	}
	return func(*GuideSession) {}
}

// startProgram launches the headless watcher program that reschedules
// itself at the poll interval. Must be called with t.mu held.
func (t *Tweener) startProgram() {
	model := newWatcherModel(t.watcher, t.shouldContinue)
	t.program = tea.NewProgram(model,
		tea.WithoutRenderer(), // background task, no terminal output
		tea.WithInput(nil),
		tea.WithOutput(nil),
	)

	program := t.program
	go func() {
		if _, err := program.Run(); err != nil {
			t.logf("[TRACE] watcher program exited with error: %v", err)
		}
	}()
}

// CallbackHandle is a minimal OverlayHandle for hosts that repaint
// synchronously: RequestRedraw invokes the draw callback directly.
type CallbackHandle struct {
	mu      sync.Mutex
	draw    DrawFunc
	session func() *GuideSession
	removed bool
}

// RequestRedraw repaints immediately unless the handle was removed.
func (h *CallbackHandle) RequestRedraw() {
	h.mu.Lock()
	removed := h.removed
	h.mu.Unlock()
	if removed {
		return
	}
	h.draw(h.session())
}

// Remove detaches the handle.
func (h *CallbackHandle) Remove() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removed = true
	return nil
}

// CallbackRegistrar is an in-process OverlayRegistrar for demos, tests and
// hosts without a redraw queue: installed handles repaint synchronously on
// RequestRedraw.
type CallbackRegistrar struct {
	mu      sync.Mutex
	session func() *GuideSession
	handles []*CallbackHandle
}

// NewCallbackRegistrar creates a registrar whose handles draw the session
// returned by the supplied accessor.
func NewCallbackRegistrar(session func() *GuideSession) *CallbackRegistrar {
	return &CallbackRegistrar{session: session}
}

// Install registers a draw callback and returns its handle.
func (r *CallbackRegistrar) Install(draw DrawFunc) (OverlayHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	handle := &CallbackHandle{draw: draw, session: r.session}
	r.handles = append(r.handles, handle)
	return handle, nil
}
