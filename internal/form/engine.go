package form

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"ledgerbot/pkg/metrics"
)

type Outcome int

const (
	// Advanced: the input was stored and Step is the next one to prompt.
	Advanced Outcome = iota
	// Invalid: the input was rejected, Step is unchanged, Err says why.
	Invalid
	// Completed: the last step was filled; Draft is final and the form is gone.
	Completed
)

func (o Outcome) String() string {
	switch o {
	case Advanced:
		return "advanced"
	case Invalid:
		return "invalid"
	case Completed:
		return "completed"
	}
	return "unknown"
}

type Result struct {
	Outcome Outcome
	Kind    Kind
	Step    Step
	Draft   Draft
	Err     *ValidationError
}

// Position is the active form of a user.
type Position struct {
	Kind  Kind
	Step  Step
	Draft Draft
}

type session struct {
	flow  *Flow
	index int
	draft Draft
}

// Engine keeps one in-memory form per user. State is volatile and does not
// survive a restart.
type Engine struct {
	logger *zap.Logger
	now    func() time.Time
	flows  map[Kind]*Flow

	mu       sync.Mutex
	sessions map[int64]*session
}

func NewEngine(logger *zap.Logger, flows ...Flow) *Engine {
	if len(flows) == 0 {
		flows = DefaultFlows()
	}
	e := &Engine{
		logger:   logger,
		now:      time.Now,
		flows:    make(map[Kind]*Flow, len(flows)),
		sessions: make(map[int64]*session),
	}
	for i := range flows {
		e.flows[flows[i].Kind] = &flows[i]
	}
	return e
}

// SetClock overrides the time source used for skip defaults.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Start begins kind for userID, discarding any unfinished form, and returns
// the first step to prompt.
func (e *Engine) Start(userID int64, kind Kind, seed map[string]any) (Step, error) {
	flow, ok := e.flows[kind]
	if !ok {
		return Step{}, fmt.Errorf("unknown form kind %q", kind)
	}

	s := &session{flow: flow, index: -1, draft: newDraft(kind, seed)}
	if !s.next() {
		return Step{}, fmt.Errorf("form %q has no applicable steps", kind)
	}

	e.mu.Lock()
	if prev, ok := e.sessions[userID]; ok {
		e.logger.Debug("Discarding unfinished form",
			zap.Int64("user_id", userID),
			zap.String("form", string(prev.flow.Kind)),
			zap.String("step", string(prev.current().ID)),
		)
	}
	e.sessions[userID] = s
	e.mu.Unlock()

	e.logger.Debug("Form started", zap.Int64("user_id", userID), zap.String("form", string(kind)))
	return s.current(), nil
}

func (e *Engine) Current(userID int64) (Position, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[userID]
	if !ok {
		return Position{}, false
	}
	return Position{Kind: s.flow.Kind, Step: s.current(), Draft: s.draft.clone()}, true
}

// Awaits reports whether the user's current step takes input of kind k.
func (e *Engine) Awaits(userID int64, k InputKind) bool {
	pos, ok := e.Current(userID)
	if !ok {
		return false
	}
	if k == InputSkip {
		return pos.Step.Optional
	}
	return pos.Step.Accepts == k
}

// Advance offers in to the user's current step.
func (e *Engine) Advance(userID int64, in Input) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[userID]
	if !ok {
		return Result{}, ErrNoActiveForm
	}
	step := s.current()
	kind := s.flow.Kind

	var value any
	switch {
	case in.Kind == InputSkip && step.Optional:
		if step.onSkip != nil {
			value = step.onSkip(e.now())
		}
	case in.Kind == step.Accepts:
		v, verr := step.parse(s.draft, in)
		if verr != nil {
			metrics.IncrementFormValidationFailure(string(kind), string(step.ID))
			e.logger.Debug("Form input rejected",
				zap.Int64("user_id", userID),
				zap.String("form", string(kind)),
				zap.String("step", string(step.ID)),
				zap.String("reason", string(verr.Reason)),
			)
			return Result{Outcome: Invalid, Kind: kind, Step: step, Draft: s.draft.clone(), Err: verr}, nil
		}
		value = v
	default:
		return Result{}, ErrUnexpectedInput
	}

	s.draft.set(step.ID, value)
	if s.next() {
		return Result{Outcome: Advanced, Kind: kind, Step: s.current(), Draft: s.draft.clone()}, nil
	}

	delete(e.sessions, userID)
	e.logger.Debug("Form completed", zap.Int64("user_id", userID), zap.String("form", string(kind)))
	return Result{Outcome: Completed, Kind: kind, Draft: s.draft}, nil
}

// Cancel drops the user's form. It reports whether one was active.
func (e *Engine) Cancel(userID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.sessions[userID]
	delete(e.sessions, userID)
	return ok
}

func (s *session) current() Step {
	return s.flow.Steps[s.index]
}

// next moves to the following applicable step; false when the flow is done.
func (s *session) next() bool {
	for s.index++; s.index < len(s.flow.Steps); s.index++ {
		if s.flow.Steps[s.index].applies(s.draft) {
			return true
		}
	}
	return false
}
