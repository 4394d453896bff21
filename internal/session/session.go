package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/ppiankov/cartographer/internal/input"
	"github.com/ppiankov/cartographer/internal/model"
)

// ErrBusy is returned when an attempt is started while another is in flight
var ErrBusy = errors.New("an analysis is already in progress")

// Analyzer performs one analysis round trip
type Analyzer interface {
	Submit(ctx context.Context, req *model.AnalysisRequest) model.Outcome
}

// Session owns the state of one user's session
type Session struct {
	analyzer  Analyzer
	collector *input.Collector

	mu    sync.Mutex
	state State

	newID func() string
}

// New creates a session that submits through analyzer
func New(analyzer Analyzer, collector *input.Collector, style model.VisualizationStyle) *Session {
	if collector == nil {
		collector = input.NewCollector(0)
	}
	return &Session{
		analyzer:  analyzer,
		collector: collector,
		state:     NewState(style),
		newID:     uuid.NewString,
	}
}

// State returns a snapshot of the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetStyle changes the display style
func (s *Session) SetStyle(style model.VisualizationStyle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.state.WithStyle(style)
}

// Reset clears the last outcome
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.state.Reset()
	if err != nil {
		return err
	}
	s.state = next
	return nil
}

// Analyze runs one attempt: validate, submit, resolve. It returns ErrBusy
// without side effects if another attempt is in flight. Validation failures
// resolve the attempt as failed without contacting the service.
func (s *Session) Analyze(ctx context.Context, question string, mode model.InputMode, payload input.Payload) (State, error) {
	attemptID, err := s.begin()
	if err != nil {
		return s.State(), err
	}

	var outcome model.Outcome
	req, err := s.collector.PrepareRequest(question, mode, payload)
	if err != nil {
		outcome = model.Fail(model.AsError(err))
	} else {
		outcome = s.analyzer.Submit(ctx, req)
	}

	return s.resolve(attemptID, outcome)
}

func (s *Session) begin() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	attemptID := s.newID()
	next, err := s.state.Begin(attemptID)
	if err != nil {
		return "", err
	}
	s.state = next
	return attemptID, nil
}

func (s *Session) resolve(attemptID string, outcome model.Outcome) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.state.Resolve(attemptID, outcome)
	if err != nil {
		return s.state, err
	}
	s.state = next
	return next, nil
}
