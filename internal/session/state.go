// Package session holds the state of one user's analysis session and
// enforces that at most one analysis attempt is in flight.
package session

import (
	"fmt"

	"github.com/ppiankov/cartographer/internal/model"
)

// Phase is the lifecycle position of the current attempt
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseLoading   Phase = "loading"
	PhaseSucceeded Phase = "succeeded"
	PhaseFailed    Phase = "failed"
)

// State is an immutable snapshot of a session.
// Transitions return a new State and never modify the receiver.
type State struct {
	Phase     Phase
	AttemptID string
	Outcome   *model.Outcome
	Style     model.VisualizationStyle
}

// NewState returns an idle state with the given display style
func NewState(style model.VisualizationStyle) State {
	if style == "" {
		style = model.StyleClassicTree
	}
	return State{Phase: PhaseIdle, Style: style}
}

// Begin starts a new attempt. The previous outcome is discarded.
func (s State) Begin(attemptID string) (State, error) {
	if s.Phase == PhaseLoading {
		return s, ErrBusy
	}
	return State{Phase: PhaseLoading, AttemptID: attemptID, Style: s.Style}, nil
}

// Resolve completes the in-flight attempt with its outcome
func (s State) Resolve(attemptID string, outcome model.Outcome) (State, error) {
	if s.Phase != PhaseLoading {
		return s, fmt.Errorf("resolve in phase %s: no attempt in flight", s.Phase)
	}
	if attemptID != s.AttemptID {
		return s, fmt.Errorf("resolve attempt %s: current attempt is %s", attemptID, s.AttemptID)
	}

	next := State{AttemptID: attemptID, Outcome: &outcome, Style: s.Style}
	if outcome.OK() {
		next.Phase = PhaseSucceeded
	} else {
		next.Phase = PhaseFailed
	}
	return next, nil
}

// Reset clears a finished attempt, keeping the style
func (s State) Reset() (State, error) {
	if s.Phase == PhaseLoading {
		return s, ErrBusy
	}
	return NewState(s.Style), nil
}

// WithStyle changes the display style; allowed in any phase
func (s State) WithStyle(style model.VisualizationStyle) State {
	s.Style = style
	return s
}

// Loading reports whether an attempt is in flight
func (s State) Loading() bool {
	return s.Phase == PhaseLoading
}

// Map returns the current argument map, or nil if there is none
func (s State) Map() *model.ArgumentMap {
	if s.Outcome == nil || s.Outcome.Success == nil {
		return nil
	}
	return &s.Outcome.Success.Map
}

// Message returns the failure message of a failed attempt
func (s State) Message() string {
	if s.Outcome == nil || s.Outcome.Failure == nil {
		return ""
	}
	return s.Outcome.Failure.Message()
}
