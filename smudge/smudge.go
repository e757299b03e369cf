// Package smudge provides error handling for guided tweening sessions.
//
// The smudge package uses paper metaphors for session error handling - when
// a session hits trouble it "smears" the page, leaves a "blot", or in the
// worst case "tears" the sheet and the session cannot continue.
package smudge

import (
	"fmt"
	"strings"
	"time"
)

// Smudge represents a failure during a guide session with rich context.
//
// Smudges categorize the kinds of trouble a session can run into, carrying
// structured context for debugging without terminating the session.
//
// Failure types:
//   - "precondition": Start command requirements not met (no drawable, no prior strokes)
//   - "introspection": Document structure could not be read during a poll or capture
//   - "registration": Overlay handle or timer installation failed
//   - "render": Overlay drawing or frame capture failed
//
// Example usage:
//
//	err := NewSmudge("introspection", "stroke count unavailable",
//	    Context{"frame": 12, "cause": readErr})
//
//	if err.CanContinue() {
//	    // Treat as "no data" and keep polling
//	}
type Smudge struct {
	Type      string    // Failure category for systematic handling
	Message   string    // Human-readable description
	Context   Context   // Additional debugging information
	Timestamp time.Time // When the failure occurred
	Severity  Severity  // How serious this failure is
}

// Context provides structured debugging information for smudges.
type Context map[string]interface{}

// Severity indicates how serious a smudge is and how it should be handled.
type Severity int

const (
	// Smear indicates a minor issue that does not affect the session.
	// Examples: A single failed poll read, a skipped overlay frame
	Smear Severity = iota

	// Blot indicates a significant issue that aborts the current command.
	// Examples: Start preconditions not met, empty snapshot
	Blot

	// Tear indicates a serious issue that invalidates the session.
	// Examples: Overlay handle installation failure, host teardown
	Tear
)

func (s Severity) String() string {
	switch s {
	case Smear:
		return "smear"
	case Blot:
		return "blot"
	case Tear:
		return "tear"
	default:
		return "unknown"
	}
}

// NewSmudge creates a new smudge with Blot severity and the current timestamp.
func NewSmudge(failureType, message string, context Context) *Smudge {
	return &Smudge{
		Type:      failureType,
		Message:   message,
		Context:   context,
		Timestamp: time.Now(),
		Severity:  Blot,
	}
}

// NewSmear creates a new smudge with Smear severity.
func NewSmear(failureType, message string, context Context) *Smudge {
	return &Smudge{
		Type:      failureType,
		Message:   message,
		Context:   context,
		Timestamp: time.Now(),
		Severity:  Smear,
	}
}

// NewTear creates a new smudge with Tear severity.
func NewTear(failureType, message string, context Context) *Smudge {
	return &Smudge{
		Type:      failureType,
		Message:   message,
		Context:   context,
		Timestamp: time.Now(),
		Severity:  Tear,
	}
}

// WithSeverity sets the severity level for this smudge.
func (s *Smudge) WithSeverity(severity Severity) *Smudge {
	s.Severity = severity
	return s
}

// Error implements the error interface.
func (s *Smudge) Error() string {
	return fmt.Sprintf("[%s:%s] %s", s.Type, s.Severity, s.Message)
}

// CanContinue returns true if the session can keep running despite this smudge.
func (s *Smudge) CanContinue() bool {
	return s.Severity == Smear
}

// IsTear returns true if this smudge must stop the session immediately.
func (s *Smudge) IsTear() bool {
	return s.Severity == Tear
}

// GetContext returns a specific context value if it exists.
func (s *Smudge) GetContext(key string) (interface{}, bool) {
	if s.Context == nil {
		return nil, false
	}
	val, exists := s.Context[key]
	return val, exists
}

// DetailedString returns a comprehensive failure description with context.
func (s *Smudge) DetailedString() string {
	var details strings.Builder

	details.WriteString(fmt.Sprintf("[%s:%s] %s", s.Type, s.Severity, s.Message))
	details.WriteString(fmt.Sprintf("\n  Time: %s", s.Timestamp.Format("15:04:05.000")))

	if len(s.Context) > 0 {
		details.WriteString("\n  Context:")
		for key, value := range s.Context {
			details.WriteString(fmt.Sprintf("\n    %s: %v", key, value))
		}
	}

	return details.String()
}

// Handler manages failure collection and reporting for one session component.
//
// The handler gives each component (watcher, snapshot, overlay) its own
// failure log with a policy deciding when accumulated trouble should stop
// the session. Introspection smears never stop polling; tears always do.
type Handler struct {
	component string    // Component name (e.g. "watcher", "snapshot", "overlay")
	blots     []*Smudge // Collected failures in chronological order
	smears    []*Smudge // Collected minor issues in chronological order
	policy    *Policy   // How to handle different failure types
}

// Policy defines how different types and severities of smudges are handled.
type Policy struct {
	// StopOnTear determines if the session stops immediately on tear smudges
	StopOnTear bool

	// MaxSmears limits accumulated smears of non-continuable types before
	// the session is considered bad. Continuable types never count: the
	// document may recover at any poll, so the session must outlive an
	// arbitrarily long run of them.
	MaxSmears int

	// ContinuableTypes lists failure types the session can poll through
	ContinuableTypes []string
}

// DefaultPolicy returns the default failure handling policy.
//
// A bad poll must never terminate the watcher, no matter how many precede
// it, so introspection and render failures are continuable and exempt from
// MaxSmears; the limit only guards smear types outside that list.
func DefaultPolicy() *Policy {
	return &Policy{
		StopOnTear:       true,
		MaxSmears:        25,
		ContinuableTypes: []string{"introspection", "render"},
	}
}

// NewHandler creates a new failure handler for a specific component.
func NewHandler(component string, policy *Policy) *Handler {
	if policy == nil {
		policy = DefaultPolicy()
	}

	return &Handler{
		component: component,
		blots:     make([]*Smudge, 0),
		smears:    make([]*Smudge, 0),
		policy:    policy,
	}
}

// maxRetainedSmears bounds the smear history; a session polling through a
// long document outage would otherwise grow it without limit.
const maxRetainedSmears = 256

// Record adds a smudge to the handler's collection.
func (h *Handler) Record(s *Smudge) {
	if s.Severity == Smear {
		h.smears = append(h.smears, s)
		if len(h.smears) > maxRetainedSmears {
			h.smears = h.smears[len(h.smears)-maxRetainedSmears:]
		}
	} else {
		h.blots = append(h.blots, s)
	}
}

// ShouldContinue determines if the session should keep running. Smears of
// continuable types are skipped: they describe transient document states
// the session is expected to outlast.
func (h *Handler) ShouldContinue() bool {
	if h.policy.StopOnTear {
		for _, s := range h.blots {
			if s.IsTear() {
				return false
			}
		}
	}

	if h.policy.MaxSmears > 0 {
		counted := 0
		for _, s := range h.smears {
			if h.CanContinueType(s.Type) {
				continue
			}
			counted++
		}
		if counted > h.policy.MaxSmears {
			return false
		}
	}

	return true
}

// HasBlots returns true if any failures (non-smears) have been recorded.
func (h *Handler) HasBlots() bool {
	return len(h.blots) > 0
}

// HasSmears returns true if any smears have been recorded.
func (h *Handler) HasSmears() bool {
	return len(h.smears) > 0
}

// Blots returns all recorded failures.
func (h *Handler) Blots() []*Smudge {
	return h.blots
}

// Smears returns all recorded smears.
func (h *Handler) Smears() []*Smudge {
	return h.smears
}

// CanContinueType returns true if the given failure type is continuable.
func (h *Handler) CanContinueType(failureType string) bool {
	for _, continuable := range h.policy.ContinuableTypes {
		if continuable == failureType {
			return true
		}
	}
	return false
}

// Summary provides a concise overview of all failures and smears.
func (h *Handler) Summary() string {
	if len(h.blots) == 0 && len(h.smears) == 0 {
		return fmt.Sprintf("[%s] Clean session, no smudges", h.component)
	}

	return fmt.Sprintf("[%s] %d blots, %d smears",
		h.component, len(h.blots), len(h.smears))
}

// DetailedReport provides a comprehensive report of all issues.
func (h *Handler) DetailedReport() string {
	var report strings.Builder

	report.WriteString(fmt.Sprintf("=== %s Component Report ===\n", h.component))
	report.WriteString(h.Summary() + "\n")

	if len(h.blots) > 0 {
		report.WriteString("\nBlots:\n")
		for i, s := range h.blots {
			report.WriteString(fmt.Sprintf("%d. %s\n", i+1, s.DetailedString()))
		}
	}

	if len(h.smears) > 0 {
		report.WriteString("\nSmears:\n")
		for i, s := range h.smears {
			report.WriteString(fmt.Sprintf("%d. %s\n", i+1, s.DetailedString()))
		}
	}

	return report.String()
}
