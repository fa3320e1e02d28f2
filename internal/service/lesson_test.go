package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aliskhannn/lingo-spark-bot/internal/domain/entities"
	"github.com/aliskhannn/lingo-spark-bot/internal/infra/gemini"
)

func newTestLessonService(gw LessonGateway, store ProgressStore, metrics Metrics) *LessonService {
	s := NewLessonService(gw, store, metrics, LessonConfig{}, zap.NewNop())
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("lesson-%d", n)
	}
	s.now = func() time.Time { return time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC) }
	return s
}

func TestLessonService_GenerateCreditsStats(t *testing.T) {
	ctx := context.Background()
	store := newMemProgress()
	metrics := newCountingMetrics()
	svc := newTestLessonService(newFakeGateway(), store, metrics)

	req := entities.NewGenerationRequest(entities.LevelAdvanced, entities.VibeAcademic, "negotiation")

	first, err := svc.Generate(ctx, 1, req, nil)
	require.NoError(t, err)
	assert.Equal(t, "lesson-1", first.ID)
	assert.Equal(t, entities.LevelAdvanced, first.Level)
	assert.Equal(t, "negotiation", first.Topic)

	stats, _ := store.LoadStats(ctx, 1)
	assert.Equal(t, 1, stats.Streak)
	assert.Equal(t, 150, stats.XP)
	assert.Equal(t, entities.LevelAdvanced, stats.Level)

	_, err = svc.Generate(ctx, 1, req, nil)
	require.NoError(t, err)

	stats, _ = store.LoadStats(ctx, 1)
	assert.Equal(t, 2, stats.Streak)
	assert.Equal(t, 300, stats.XP)

	history, _ := store.LoadHistory(ctx, 1)
	require.Len(t, history, 2)
	assert.Equal(t, "lesson-2", history[0].ID)
	assert.Equal(t, "lesson-1", history[1].ID)

	assert.Equal(t, 2, metrics.generated)
}

func TestLessonService_ConcurrentGenerationsBothCount(t *testing.T) {
	ctx := context.Background()
	gateway := newFakeGateway()
	gateway.lessonGate = make(chan struct{})
	store := newMemProgress()
	svc := NewLessonService(gateway, store, nil, LessonConfig{}, zap.NewNop())
	req := entities.NewGenerationRequest(entities.LevelBeginner, entities.VibeCasual, "")

	var wg sync.WaitGroup
	ids := make([]string, 2)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			lesson, err := svc.Generate(ctx, 1, req, nil)
			if assert.NoError(t, err) {
				ids[i] = lesson.ID
			}
		}(i)
	}

	// Both requests are past the gateway before either records its lesson.
	require.Eventually(t, func() bool { return gateway.Calls("lesson") == 2 }, time.Second, time.Millisecond)
	close(gateway.lessonGate)
	wg.Wait()

	stats, _ := store.LoadStats(ctx, 1)
	assert.Equal(t, 2, stats.Streak)
	assert.Equal(t, 300, stats.XP)

	history, _ := store.LoadHistory(ctx, 1)
	require.Len(t, history, 2)
	assert.ElementsMatch(t, ids, []string{history[0].ID, history[1].ID})
}

func TestLessonService_CancelledRequestIsDropped(t *testing.T) {
	ctx := context.Background()
	store := newMemProgress()
	metrics := newCountingMetrics()
	svc := newTestLessonService(newFakeGateway(), store, metrics)

	_, err := svc.Generate(ctx, 1, entities.NewGenerationRequest(entities.LevelBeginner, entities.VibeCasual, ""), func() bool { return false })
	assert.ErrorIs(t, err, ErrGenerationCancelled)

	stats, _ := store.LoadStats(ctx, 1)
	assert.Equal(t, entities.NewUserStats(), stats)
	history, _ := store.LoadHistory(ctx, 1)
	assert.Empty(t, history)
	assert.Zero(t, metrics.generated)
	assert.Empty(t, metrics.failures)
}

func TestProgressService_DeleteDuringGenerationSticks(t *testing.T) {
	ctx := context.Background()
	gateway := newFakeGateway()
	gateway.lessonGate = make(chan struct{})
	store := newMemProgress()
	store.history[1] = entities.History{*testLesson("a"), *testLesson("b")}
	lessons := newTestLessonService(gateway, store, nil)
	progress := NewProgressService(store)

	done := make(chan error, 1)
	go func() {
		_, err := lessons.Generate(ctx, 1, entities.NewGenerationRequest(entities.LevelBeginner, entities.VibeCasual, ""), nil)
		done <- err
	}()
	require.Eventually(t, func() bool { return gateway.Calls("lesson") == 1 }, time.Second, time.Millisecond)

	require.NoError(t, progress.DeleteLesson(ctx, 1, "a"))
	close(gateway.lessonGate)
	require.NoError(t, <-done)

	history, err := progress.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "lesson-1", history[0].ID)
	assert.Equal(t, "b", history[1].ID)
}

func TestLessonService_HistoryIsCapped(t *testing.T) {
	ctx := context.Background()
	store := newMemProgress()
	svc := NewLessonService(newFakeGateway(), store, nil, LessonConfig{HistoryLimit: 2}, zap.NewNop())

	for i := 0; i < 3; i++ {
		_, err := svc.Generate(ctx, 1, entities.NewGenerationRequest(entities.LevelBeginner, entities.VibeCasual, ""), nil)
		require.NoError(t, err)
	}

	history, _ := store.LoadHistory(ctx, 1)
	assert.Len(t, history, 2)

	stats, _ := store.LoadStats(ctx, 1)
	assert.Equal(t, 3, stats.Streak)
}

func TestLessonService_FailureLeavesProgressUntouched(t *testing.T) {
	malformed := testContent()
	malformed.Vocabulary = malformed.Vocabulary[:1]

	tests := []struct {
		name  string
		setup func(gw *fakeGateway, store *memProgress)
		kind  GenerationKind
	}{
		{
			name:  "gateway unreachable",
			setup: func(gw *fakeGateway, _ *memProgress) { gw.lessonErr = errBoom },
			kind:  KindGateway,
		},
		{
			name:  "malformed response",
			setup: func(gw *fakeGateway, _ *memProgress) { gw.lessonErr = gemini.ErrMalformedResponse },
			kind:  KindMalformed,
		},
		{
			name:  "too few vocabulary entries",
			setup: func(gw *fakeGateway, _ *memProgress) { gw.content = &malformed },
			kind:  KindMalformed,
		},
		{
			name:  "save fails",
			setup: func(_ *fakeGateway, store *memProgress) { store.saveErr = errBoom },
			kind:  KindStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			gw := newFakeGateway()
			store := newMemProgress()
			metrics := newCountingMetrics()
			svc := newTestLessonService(gw, store, metrics)

			_, err := svc.Generate(ctx, 1, entities.NewGenerationRequest(entities.LevelBeginner, entities.VibeCasual, ""), nil)
			require.NoError(t, err)

			tt.setup(gw, store)
			_, err = svc.Generate(ctx, 1, entities.NewGenerationRequest(entities.LevelAdvanced, entities.VibeCasual, ""), nil)
			require.Error(t, err)

			var genErr *GenerationError
			require.ErrorAs(t, err, &genErr)
			assert.Equal(t, tt.kind, genErr.Kind)
			assert.NotEmpty(t, genErr.UserMessage())
			assert.Equal(t, 1, metrics.failures[string(tt.kind)])

			store.saveErr = nil
			stats, _ := store.LoadStats(ctx, 1)
			assert.Equal(t, 1, stats.Streak)
			assert.Equal(t, 150, stats.XP)
			assert.Equal(t, entities.LevelBeginner, stats.Level)

			history, _ := store.LoadHistory(ctx, 1)
			assert.Len(t, history, 1)
		})
	}
}

func TestProgressService_DeleteLesson(t *testing.T) {
	ctx := context.Background()
	store := newMemProgress()
	store.history[1] = entities.History{*testLesson("a"), *testLesson("b"), *testLesson("c")}
	svc := NewProgressService(store)

	require.NoError(t, svc.DeleteLesson(ctx, 1, "b"))

	history, err := svc.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "a", history[0].ID)
	assert.Equal(t, "c", history[1].ID)

	assert.ErrorIs(t, svc.DeleteLesson(ctx, 1, "b"), ErrLessonNotFound)

	lesson, err := svc.Lesson(ctx, 1, "c")
	require.NoError(t, err)
	assert.Equal(t, "c", lesson.ID)

	_, err = svc.Lesson(ctx, 1, "zzz")
	assert.ErrorIs(t, err, ErrLessonNotFound)
}

func TestSettingsService_Toggles(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers(entities.NewUser(1, 1))
	svc := NewSettingsService(users, newMemProgress())

	settings, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, entities.ThemeLight, settings.Theme)
	assert.True(t, settings.RemindersEnabled)

	settings, err = svc.ToggleTheme(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, entities.ThemeDark, settings.Theme)

	settings, err = svc.ToggleReminders(ctx, 1)
	require.NoError(t, err)
	assert.False(t, settings.RemindersEnabled)
}

func TestUserService_EnsureUser(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers()
	svc := NewUserService(users)

	created, err := svc.EnsureUser(ctx, 7, 70)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureUser(ctx, 7, 71)
	require.NoError(t, err)
	assert.False(t, created)
}
