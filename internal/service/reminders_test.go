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
)

type fakeNotifier struct {
	mu       sync.Mutex
	sent     map[int64]entities.ReminderPayload
	blockers map[int64]bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{
		sent:     make(map[int64]entities.ReminderPayload),
		blockers: make(map[int64]bool),
	}
}

func (n *fakeNotifier) SendReminder(_ context.Context, chatID int64, payload entities.ReminderPayload) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.blockers[chatID] {
		return fmt.Errorf("send message: %w", ErrRecipientUnavailable)
	}
	n.sent[chatID] = payload
	return nil
}

func TestReminderService_SendDailyReminders(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 18, 18, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)

	optedOut := entities.NewUser(4, 40)
	optedOut.RemindersEnabled = false
	users := newFakeUsers(
		entities.NewUser(1, 10),
		entities.NewUser(2, 20),
		entities.NewUser(3, 30),
		optedOut,
	)

	store := newMemProgress()
	store.stats[1] = entities.UserStats{Streak: 4, XP: 600, Level: entities.LevelAdvanced, LastLessonAt: &yesterday}
	store.history[1] = entities.History{*testLesson("a")}
	store.stats[2] = entities.UserStats{Streak: 2, XP: 300, Level: entities.LevelBeginner, LastLessonAt: &now}

	notifier := newFakeNotifier()
	notifier.blockers[30] = true
	metrics := newCountingMetrics()

	svc := NewReminderService(users, store, metrics, "", zap.NewNop())
	svc.SetNotifier(notifier)
	svc.now = func() time.Time { return now }

	sent, err := svc.SendDailyReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 1, metrics.reminders)

	require.Contains(t, notifier.sent, int64(10))
	payload := notifier.sent[10]
	assert.Equal(t, 4, payload.Streak)
	assert.Equal(t, 600, payload.XP)
	assert.Equal(t, "Small Talk at Work", payload.LastTheme)

	assert.NotContains(t, notifier.sent, int64(20))
	assert.NotContains(t, notifier.sent, int64(40))

	assert.Equal(t, []int64{3}, users.deactivated)
	assert.False(t, users.users[3].IsActive)
}

func TestReminderService_PagesPastDeactivatedUsers(t *testing.T) {
	ctx := context.Background()

	var all []*entities.User
	for id := int64(1); id <= reminderBatchSize+5; id++ {
		all = append(all, entities.NewUser(id, id))
	}
	users := newFakeUsers(all...)

	notifier := newFakeNotifier()
	for id := int64(1); id <= 10; id++ {
		notifier.blockers[id] = true
	}

	svc := NewReminderService(users, newMemProgress(), nil, "", zap.NewNop())
	svc.SetNotifier(notifier)

	sent, err := svc.SendDailyReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, reminderBatchSize+5-10, sent)
	assert.Len(t, users.deactivated, 10)
}

func TestReminderService_RequiresNotifier(t *testing.T) {
	svc := NewReminderService(newFakeUsers(), newMemProgress(), nil, "", zap.NewNop())
	_, err := svc.SendDailyReminders(context.Background())
	assert.Error(t, err)
}
