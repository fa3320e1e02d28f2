package entities

import (
	"errors"
	"fmt"
	"math/rand"
)

var (
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrStaleEpoch        = errors.New("session moved on")
	ErrBusy              = errors.New("request already in flight")
	ErrNotInLesson       = errors.New("no active lesson")
	ErrWrongStep         = errors.New("action not available on this step")
)

// AppState is the top-level state of a user's session.
type AppState string

const (
	StateDashboard AppState = "dashboard"
	StateLoading   AppState = "loading"
	StateLesson    AppState = "lesson"
	StateCompleted AppState = "completed"
	StateError     AppState = "error"
)

// Session is the lesson state machine of one user.
//
// Every transition bumps Epoch. Asynchronous work captures the epoch when it
// starts and applies its result only while the epoch is unchanged.
type Session struct {
	UserID int64
	ChatID int64

	State AppState
	Epoch uint64

	Draft   GenerationRequest // dashboard selections
	Request GenerationRequest // last generation request, used by Retry
	Error   string

	Lesson *Lesson
	Step   Step

	VocabIndex  int
	PuzzleIndex int
	Puzzle      *Puzzle
	Simulation  *Simulation

	Hint string

	MessageID     int // message that renders the current view
	SpeechPending bool
	HintPending   bool
}

// NewSession returns a session on the dashboard.
func NewSession(userID, chatID int64, level Level) *Session {
	return &Session{
		UserID: userID,
		ChatID: chatID,
		State:  StateDashboard,
		Draft:  NewGenerationRequest(level, DefaultVibe, ""),
	}
}

func (s *Session) transition(to AppState) {
	s.State = to
	s.Epoch++
}

func (s *Session) invalid(action string) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, s.State)
}

// BeginLoading moves the dashboard into loading for the given request.
func (s *Session) BeginLoading(req GenerationRequest) (uint64, error) {
	if s.State != StateDashboard {
		if s.State == StateLoading {
			return 0, ErrBusy
		}
		return 0, s.invalid("start")
	}
	s.Request = req
	s.Error = ""
	s.transition(StateLoading)
	return s.Epoch, nil
}

// RetryLoading re-issues the last request from the error state.
func (s *Session) RetryLoading() (GenerationRequest, uint64, error) {
	if s.State != StateError {
		if s.State == StateLoading {
			return GenerationRequest{}, 0, ErrBusy
		}
		return GenerationRequest{}, 0, s.invalid("retry")
	}
	s.Error = ""
	s.transition(StateLoading)
	return s.Request, s.Epoch, nil
}

// FinishLoading enters the lesson at step 0.
func (s *Session) FinishLoading(epoch uint64, lesson *Lesson) error {
	if s.State != StateLoading || s.Epoch != epoch {
		return ErrStaleEpoch
	}
	s.enterLesson(lesson)
	return nil
}

// FailLoading moves to the error state with a message for the user.
func (s *Session) FailLoading(epoch uint64, message string) error {
	if s.State != StateLoading || s.Epoch != epoch {
		return ErrStaleEpoch
	}
	s.Error = message
	s.transition(StateError)
	return nil
}

// OpenLesson enters a stored lesson from the dashboard.
func (s *Session) OpenLesson(lesson *Lesson) error {
	if s.State != StateDashboard {
		return s.invalid("open")
	}
	s.enterLesson(lesson)
	return nil
}

func (s *Session) enterLesson(lesson *Lesson) {
	s.Lesson = lesson
	s.Step = StepIntro
	s.resetStepState()
	s.transition(StateLesson)
}

func (s *Session) resetStepState() {
	s.VocabIndex = 0
	s.PuzzleIndex = 0
	s.Puzzle = nil
	s.Simulation = nil
	s.Hint = ""
	s.SpeechPending = false
	s.HintPending = false
}

// Advance moves one step forward. The final step must use AcceptMission.
func (s *Session) Advance() error {
	if s.State != StateLesson {
		return ErrNotInLesson
	}
	next, ok := s.Step.Next()
	if !ok {
		return s.invalid("advance past final step")
	}
	s.enterStep(next)
	return nil
}

// Skip advances past a skippable step.
func (s *Session) Skip() error {
	if s.State != StateLesson {
		return ErrNotInLesson
	}
	if !s.Step.Spec().Skippable {
		return fmt.Errorf("%w: step %s can not be skipped", ErrWrongStep, s.Step.Spec().Name)
	}
	return s.Advance()
}

func (s *Session) enterStep(step Step) {
	s.Step = step
	s.Puzzle = nil
	s.Simulation = nil
	s.Hint = ""
	s.SpeechPending = false
	s.HintPending = false
	s.Epoch++

	switch step {
	case StepSimulation:
		s.Simulation = NewSimulation(s.Lesson.Simulation)
	}
}

// AcceptMission completes the lesson from the final step.
func (s *Session) AcceptMission() error {
	if s.State != StateLesson {
		return ErrNotInLesson
	}
	if !s.Step.Spec().Final {
		return fmt.Errorf("%w: mission is on the last step", ErrWrongStep)
	}
	s.resetStepState()
	s.transition(StateCompleted)
	return nil
}

// ReturnToDashboard leaves the completed screen.
func (s *Session) ReturnToDashboard() error {
	if s.State != StateCompleted {
		return s.invalid("return")
	}
	s.toDashboard()
	return nil
}

// Exit abandons whatever is in progress without penalty.
func (s *Session) Exit() {
	s.toDashboard()
}

func (s *Session) toDashboard() {
	s.Lesson = nil
	s.Step = StepIntro
	s.Error = ""
	s.resetStepState()
	s.transition(StateDashboard)
}

// RequireStep checks that the session is showing the given lesson step.
func (s *Session) RequireStep(step Step) error {
	if s.State != StateLesson || s.Lesson == nil {
		return ErrNotInLesson
	}
	if s.Step != step {
		return fmt.Errorf("%w: on %s, want %s", ErrWrongStep, s.Step.Spec().Name, step.Spec().Name)
	}
	return nil
}

// ShowWord selects the vocabulary card to display.
func (s *Session) ShowWord(index int) error {
	if err := s.RequireStep(StepVocabulary); err != nil {
		return err
	}
	if index < 0 || index >= len(s.Lesson.Vocabulary) {
		return fmt.Errorf("%w: word %d", ErrWrongStep, index)
	}
	s.VocabIndex = index
	return nil
}

// PreparePuzzle makes sure a puzzle exists for the current practice entry.
// It skips entries without example sentences. ok is false when none remain.
func (s *Session) PreparePuzzle(rng *rand.Rand) (bool, error) {
	if err := s.RequireStep(StepPractice); err != nil {
		return false, err
	}
	if s.Puzzle != nil {
		return true, nil
	}
	for s.PuzzleIndex < len(s.Lesson.Vocabulary) {
		sentence, ok := s.Lesson.Vocabulary[s.PuzzleIndex].FirstExample()
		if ok {
			p, err := NewPuzzle(sentence, rng)
			if err == nil {
				s.Puzzle = p
				return true, nil
			}
		}
		s.PuzzleIndex++
	}
	return false, nil
}

// NextPuzzle moves to the next vocabulary entry once the current one is solved.
func (s *Session) NextPuzzle(rng *rand.Rand) (bool, error) {
	if err := s.RequireStep(StepPractice); err != nil {
		return false, err
	}
	if s.Puzzle != nil && !s.Puzzle.Solved {
		return false, fmt.Errorf("%w: current sentence is not solved", ErrWrongStep)
	}
	s.Puzzle = nil
	s.PuzzleIndex++
	s.Hint = ""
	s.HintPending = false
	s.SpeechPending = false
	s.Epoch++
	return s.PreparePuzzle(rng)
}

// Clone returns a copy safe to read outside the session lock.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Puzzle = s.Puzzle.Clone()
	c.Simulation = s.Simulation.Clone()
	return &c
}
