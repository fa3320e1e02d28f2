package entities

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSimulationBusy      = errors.New("simulation is waiting for a reply")
	ErrSimulationEvaluated = errors.New("simulation already evaluated")
	ErrNothingToEvaluate   = errors.New("simulation needs at least one exchange")
	ErrEmptyMessage        = errors.New("message is empty")
	ErrInvalidFeedback     = errors.New("invalid performance feedback")
)

// TurnRole is the speaker of a transcript line.
type TurnRole string

const (
	RoleUser  TurnRole = "user"
	RoleModel TurnRole = "model"
)

// Turn is a single line of the roleplay transcript.
type Turn struct {
	Role TurnRole `json:"role"`
	Text string   `json:"text"`
}

// PerformanceFeedback is the one-time evaluation of a roleplay.
type PerformanceFeedback struct {
	Score      int    `json:"score"`
	Feedback   string `json:"feedback"`
	Suggestion string `json:"suggestion"`
}

// Validate checks the score range and text.
func (f *PerformanceFeedback) Validate() error {
	if f.Score < 1 || f.Score > 10 {
		return fmt.Errorf("%w: score %d out of range 1..10", ErrInvalidFeedback, f.Score)
	}
	if strings.TrimSpace(f.Feedback) == "" {
		return fmt.Errorf("%w: empty feedback", ErrInvalidFeedback)
	}
	return nil
}

// Simulation is a running roleplay for one lesson.
type Simulation struct {
	Scenario   SimulationScenario   `json:"scenario"`
	Transcript []Turn               `json:"transcript"`
	Feedback   *PerformanceFeedback `json:"feedback,omitempty"`
	Pending    bool                 `json:"pending"`
	Evaluating bool                 `json:"evaluating"`
}

// NewSimulation starts a transcript with the persona's opening line.
func NewSimulation(scenario SimulationScenario) *Simulation {
	return &Simulation{
		Scenario:   scenario,
		Transcript: []Turn{{Role: RoleModel, Text: scenario.OpeningLine}},
	}
}

// BeginTurn marks a user message as in flight and returns the transcript to send.
func (s *Simulation) BeginTurn(text string) ([]Turn, error) {
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return nil, ErrEmptyMessage
	case s.Feedback != nil:
		return nil, ErrSimulationEvaluated
	case s.Pending || s.Evaluating:
		return nil, ErrSimulationBusy
	}

	s.Pending = true
	out := make([]Turn, 0, len(s.Transcript)+1)
	out = append(out, s.Transcript...)
	return append(out, Turn{Role: RoleUser, Text: text}), nil
}

// CommitTurn appends the user message and the persona reply.
func (s *Simulation) CommitTurn(userText, reply string) {
	s.Transcript = append(s.Transcript,
		Turn{Role: RoleUser, Text: strings.TrimSpace(userText)},
		Turn{Role: RoleModel, Text: strings.TrimSpace(reply)},
	)
	s.Pending = false
}

// AbortTurn clears the pending flag; the transcript is left as it was.
func (s *Simulation) AbortTurn() {
	s.Pending = false
}

// Exchanges counts the user turns answered by the persona.
func (s *Simulation) Exchanges() int {
	n := 0
	for i := 1; i < len(s.Transcript); i++ {
		if s.Transcript[i].Role == RoleModel && s.Transcript[i-1].Role == RoleUser {
			n++
		}
	}
	return n
}

// CanEvaluate reports whether the user may end the roleplay now.
func (s *Simulation) CanEvaluate() bool {
	return s.Feedback == nil && !s.Pending && !s.Evaluating && s.Exchanges() > 0
}

// BeginEvaluation marks the evaluation request as in flight.
func (s *Simulation) BeginEvaluation() ([]Turn, error) {
	switch {
	case s.Feedback != nil:
		return nil, ErrSimulationEvaluated
	case s.Pending || s.Evaluating:
		return nil, ErrSimulationBusy
	case s.Exchanges() == 0:
		return nil, ErrNothingToEvaluate
	}
	s.Evaluating = true
	return append([]Turn(nil), s.Transcript...), nil
}

// SetFeedback stores the evaluation. It can happen only once.
func (s *Simulation) SetFeedback(f PerformanceFeedback) error {
	s.Evaluating = false
	if s.Feedback != nil {
		return ErrSimulationEvaluated
	}
	if err := f.Validate(); err != nil {
		return err
	}
	s.Feedback = &f
	return nil
}

// AbortEvaluation clears the in-flight flag so the user may try again.
func (s *Simulation) AbortEvaluation() {
	s.Evaluating = false
}

// Clone returns a deep copy.
func (s *Simulation) Clone() *Simulation {
	if s == nil {
		return nil
	}
	c := *s
	c.Transcript = append([]Turn(nil), s.Transcript...)
	if s.Feedback != nil {
		f := *s.Feedback
		c.Feedback = &f
	}
	return &c
}
