package entities

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lessonSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(1, 1, LevelBeginner)
	epoch, err := s.BeginLoading(s.Draft)
	require.NoError(t, err)
	require.NoError(t, s.FinishLoading(epoch, testLesson("l1")))
	return s
}

func TestSession_HappyPath(t *testing.T) {
	s := NewSession(1, 10, LevelAdvanced)
	assert.Equal(t, StateDashboard, s.State)
	assert.Equal(t, LevelAdvanced, s.Draft.Level)

	epoch, err := s.BeginLoading(s.Draft)
	require.NoError(t, err)
	assert.Equal(t, StateLoading, s.State)

	require.NoError(t, s.FinishLoading(epoch, testLesson("l1")))
	assert.Equal(t, StateLesson, s.State)
	assert.Equal(t, StepIntro, s.Step)

	prev := s.Step
	for i := 0; i < StepCount-1; i++ {
		require.NoError(t, s.Advance())
		assert.Greater(t, s.Step, prev)
		prev = s.Step
	}
	assert.Equal(t, StepChallenge, s.Step)

	assert.ErrorIs(t, s.Advance(), ErrInvalidTransition)

	require.NoError(t, s.AcceptMission())
	assert.Equal(t, StateCompleted, s.State)

	require.NoError(t, s.ReturnToDashboard())
	assert.Equal(t, StateDashboard, s.State)
	assert.Nil(t, s.Lesson)
}

func TestSession_StepsNeverDecrease(t *testing.T) {
	s := lessonSession(t)

	ops := []func() error{s.Advance, s.Skip, s.AcceptMission, s.Advance, s.Skip, s.Advance, s.Skip, s.Advance, s.Advance, s.Advance, s.Skip}
	prev := s.Step
	for _, op := range ops {
		_ = op()
		if s.State != StateLesson {
			break
		}
		assert.GreaterOrEqual(t, s.Step, prev)
		prev = s.Step
	}
}

func TestSession_SkipOnlySkippable(t *testing.T) {
	s := lessonSession(t)

	assert.ErrorIs(t, s.Skip(), ErrWrongStep)
	require.NoError(t, s.Advance()) // vocabulary
	require.NoError(t, s.Advance()) // practice
	require.NoError(t, s.Skip())
	assert.Equal(t, StepConcept, s.Step)

	require.NoError(t, s.Advance()) // simulation
	require.NotNil(t, s.Simulation)
	assert.Equal(t, s.Lesson.Simulation.OpeningLine, s.Simulation.Transcript[0].Text)
	require.NoError(t, s.Skip())
	assert.Equal(t, StepStory, s.Step)
	assert.Nil(t, s.Simulation)
}

func TestSession_FailureAndRetry(t *testing.T) {
	s := NewSession(1, 1, LevelBeginner)
	req := NewGenerationRequest(LevelAdvanced, VibeAcademic, "negotiation")

	epoch, err := s.BeginLoading(req)
	require.NoError(t, err)

	_, err = s.BeginLoading(req)
	assert.ErrorIs(t, err, ErrBusy)

	require.NoError(t, s.FailLoading(epoch, "boom"))
	assert.Equal(t, StateError, s.State)
	assert.Equal(t, "boom", s.Error)

	got, epoch2, err := s.RetryLoading()
	require.NoError(t, err)
	assert.Equal(t, req, got)
	assert.Equal(t, StateLoading, s.State)
	assert.Greater(t, epoch2, epoch)

	require.NoError(t, s.FinishLoading(epoch2, testLesson("l2")))
	assert.Equal(t, StateLesson, s.State)
}

func TestSession_StaleCompletionIsDiscarded(t *testing.T) {
	s := NewSession(1, 1, LevelBeginner)
	epoch, err := s.BeginLoading(s.Draft)
	require.NoError(t, err)

	s.Exit()
	assert.Equal(t, StateDashboard, s.State)

	assert.ErrorIs(t, s.FinishLoading(epoch, testLesson("late")), ErrStaleEpoch)
	assert.ErrorIs(t, s.FailLoading(epoch, "late"), ErrStaleEpoch)
	assert.Equal(t, StateDashboard, s.State)
	assert.Nil(t, s.Lesson)
}

func TestSession_ExitFromAnywhere(t *testing.T) {
	s := lessonSession(t)
	require.NoError(t, s.Advance())
	s.Exit()
	assert.Equal(t, StateDashboard, s.State)
	assert.Nil(t, s.Lesson)
}

func TestSession_InvalidTransitions(t *testing.T) {
	s := NewSession(1, 1, LevelBeginner)
	_, _, err := s.RetryLoading()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, s.ReturnToDashboard(), ErrInvalidTransition)
	assert.ErrorIs(t, s.Advance(), ErrNotInLesson)
	assert.ErrorIs(t, s.AcceptMission(), ErrNotInLesson)

	s = lessonSession(t)
	assert.ErrorIs(t, s.AcceptMission(), ErrWrongStep)
	assert.ErrorIs(t, s.OpenLesson(testLesson("x")), ErrInvalidTransition)
}

func TestSession_OpenLessonFromDashboard(t *testing.T) {
	s := NewSession(1, 1, LevelBeginner)
	require.NoError(t, s.OpenLesson(testLesson("old")))
	assert.Equal(t, StateLesson, s.State)
	assert.Equal(t, "old", s.Lesson.ID)
}

func TestSession_PracticePuzzles(t *testing.T) {
	s := lessonSession(t)
	require.NoError(t, s.Advance())
	require.NoError(t, s.Advance())
	require.Equal(t, StepPractice, s.Step)

	rng := rand.New(rand.NewSource(1))
	ok, err := s.PreparePuzzle(rng)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, s.PuzzleIndex)

	_, err = s.NextPuzzle(rng)
	assert.ErrorIs(t, err, ErrWrongStep)

	solve(t, s.Puzzle)
	require.True(t, s.Puzzle.Check())

	ok, err = s.NextPuzzle(rng)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, s.PuzzleIndex)

	solve(t, s.Puzzle)
	require.True(t, s.Puzzle.Check())
	_, err = s.NextPuzzle(rng)
	require.NoError(t, err)
	solve(t, s.Puzzle)
	require.True(t, s.Puzzle.Check())

	ok, err = s.NextPuzzle(rng)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSession_ShowWord(t *testing.T) {
	s := lessonSession(t)
	assert.ErrorIs(t, s.ShowWord(0), ErrWrongStep)

	require.NoError(t, s.Advance())
	require.NoError(t, s.ShowWord(2))
	assert.Equal(t, 2, s.VocabIndex)
	assert.ErrorIs(t, s.ShowWord(3), ErrWrongStep)
}

func TestSession_CloneIsIndependent(t *testing.T) {
	s := lessonSession(t)
	require.NoError(t, s.Advance())
	require.NoError(t, s.Advance())
	require.NoError(t, s.Advance())
	require.NoError(t, s.Advance())

	c := s.Clone()
	c.Simulation.CommitTurn("hi", "hello")
	assert.Len(t, s.Simulation.Transcript, 1)
	assert.Len(t, c.Simulation.Transcript, 3)
}

func TestStepTable(t *testing.T) {
	steps := Steps()
	require.Len(t, steps, 7)
	for i, spec := range steps {
		assert.Equal(t, Step(i), spec.Step)
	}
	assert.True(t, StepPractice.Spec().Skippable)
	assert.True(t, StepSimulation.Spec().Skippable)
	assert.True(t, StepChallenge.Spec().Final)

	next, ok := StepStory.Next()
	assert.True(t, ok)
	assert.Equal(t, StepChallenge, next)

	_, ok = StepChallenge.Next()
	assert.False(t, ok)
}
