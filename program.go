package tweenguide

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// pollTickMsg carries the timestamp of one scheduled watcher poll.
type pollTickMsg time.Time

// WatcherModel runs the watcher as a cooperatively scheduled bubbletea
// model: each poll reschedules the next one with a single-shot tick, and
// the model stops rescheduling - the "do not run again" sentinel - when the
// continue predicate reports false or the failure handler gives up.
//
// The Tweener runs this model headlessly; the demo runs it inside a
// visible program where View doubles as a session dashboard.
type WatcherModel struct {
	watcher  *Watcher
	keep     func() bool
	interval time.Duration

	polls   int
	last    Outcome
	stopped bool
}

// newWatcherModel builds the model over a watcher and a continue predicate.
func newWatcherModel(watcher *Watcher, keep func() bool) WatcherModel {
	if keep == nil {
		keep = func() bool { return true }
	}
	return WatcherModel{
		watcher:  watcher,
		keep:     keep,
		interval: watcher.Session().Config().PollInterval,
	}
}

// NewWatcherModel exposes the watcher model for hosts that embed it in
// their own bubbletea program instead of using the Tweener's background
// runner.
func NewWatcherModel(watcher *Watcher, keep func() bool) WatcherModel {
	return newWatcherModel(watcher, keep)
}

// Init schedules the first poll.
func (m WatcherModel) Init() tea.Cmd {
	return m.tick()
}

// tick reschedules a single poll; polling stays single-shot so a stopped
// model leaves no dangling periodic task behind.
func (m WatcherModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return pollTickMsg(t)
	})
}

// Update performs one poll per tick and either reschedules or quits.
func (m WatcherModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pollTickMsg:
		if !m.keep() {
			m.stopped = true
			return m, tea.Quit
		}

		m.last = m.watcher.Poll(time.Time(msg))
		m.polls++

		if !m.watcher.Healthy() {
			m.stopped = true
			return m, tea.Quit
		}
		return m, m.tick()

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.stopped = true
			return m, tea.Quit
		}
	}
	return m, nil
}

var (
	dashTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dashLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	dashStateStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	dashWarnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// View renders the session dashboard.
func (m WatcherModel) View() string {
	session := m.watcher.Session()

	var b strings.Builder
	b.WriteString(dashTitleStyle.Render("tweenguide watcher"))
	b.WriteString("\n\n")

	state := session.State().String()
	if m.stopped {
		state = "stopped"
	}
	b.WriteString(fmt.Sprintf("%s %s\n", dashLabelStyle.Render("state:"), dashStateStyle.Render(state)))
	b.WriteString(fmt.Sprintf("%s %d\n", dashLabelStyle.Render("frame:"), session.MonitoredFrame))
	b.WriteString(fmt.Sprintf("%s %d/%d\n", dashLabelStyle.Render("guide:"), session.Index+1, len(session.Strokes)))
	b.WriteString(fmt.Sprintf("%s %d\n", dashLabelStyle.Render("strokes seen:"), session.LastCount))
	b.WriteString(fmt.Sprintf("%s %d\n", dashLabelStyle.Render("polls:"), m.polls))
	b.WriteString(fmt.Sprintf("%s %d\n", dashLabelStyle.Render("advances to check:"), session.AdvancesSinceCheck()))

	if m.watcher.Handler().HasSmears() {
		b.WriteString(dashWarnStyle.Render(m.watcher.Handler().Summary()))
		b.WriteString("\n")
	}

	return b.String()
}

// CurrentState reports the watcher state the model last observed; used by
// program-level tests.
func (m WatcherModel) CurrentState() WatchState {
	if m.stopped {
		return Idle
	}
	return m.watcher.Session().State()
}

// PollCount reports how many polls the model has performed.
func (m WatcherModel) PollCount() int {
	return m.polls
}
