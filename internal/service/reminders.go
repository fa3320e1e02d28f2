package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aliskhannn/lingo-spark-bot/internal/domain/entities"
)

const (
	DefaultReminderSchedule = "0 18 * * *"

	reminderBatchSize     = 100
	reminderMaxConcurrent = 10
)

// ReminderService nudges users who have not generated a lesson today.
type ReminderService struct {
	users    UserRepository
	store    ProgressStore
	notifier ReminderNotifier
	metrics  Metrics
	schedule string
	logger   *zap.Logger

	now func() time.Time
}

// NewReminderService creates a new reminder service. An empty schedule
// falls back to DefaultReminderSchedule.
func NewReminderService(
	users UserRepository,
	store ProgressStore,
	metrics Metrics,
	schedule string,
	logger *zap.Logger,
) *ReminderService {
	if schedule == "" {
		schedule = DefaultReminderSchedule
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &ReminderService{
		users:    users,
		store:    store,
		metrics:  metrics,
		schedule: schedule,
		logger:   logger.Named("reminders"),
		now:      time.Now,
	}
}

// SetNotifier sets the notifier (called after handler is created).
func (s *ReminderService) SetNotifier(notifier ReminderNotifier) {
	s.notifier = notifier
}

// Start runs the daily schedule until ctx is done.
func (s *ReminderService) Start(ctx context.Context) error {
	c := cron.New(cron.WithLocation(time.UTC))

	_, err := c.AddFunc(s.schedule, func() {
		s.logger.Info("cron triggered: sending daily reminders")
		if _, err := s.SendDailyReminders(ctx); err != nil {
			s.logger.Error("failed to send daily reminders", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("add reminder job %q: %w", s.schedule, err)
	}

	c.Start()
	s.logger.Info("reminder scheduler started", zap.String("schedule", s.schedule))

	<-ctx.Done()

	<-c.Stop().Done()
	s.logger.Info("reminder service stopped")
	return nil
}

// SendDailyReminders walks all opted-in users in batches and returns how many
// reminders were sent.
func (s *ReminderService) SendDailyReminders(ctx context.Context) (int, error) {
	if s.notifier == nil {
		return 0, errors.New("notifier not initialized")
	}

	now := s.now().UTC()
	offset := 0
	total := 0

	for {
		users, err := s.users.ListReminderCandidates(ctx, reminderBatchSize, offset)
		if err != nil {
			return total, fmt.Errorf("list reminder candidates: %w", err)
		}
		if len(users) == 0 {
			break
		}

		sent, dropped := s.processBatch(ctx, users, now)
		total += sent

		if len(users) < reminderBatchSize {
			break
		}
		// Deactivated users leave the candidate list, so the next page starts earlier.
		offset += len(users) - dropped
	}

	s.logger.Info("reminders processed", zap.Int("total_sent", total))
	return total, nil
}

func (s *ReminderService) processBatch(ctx context.Context, users []entities.User, now time.Time) (sent, dropped int) {
	var sentN, droppedN atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(reminderMaxConcurrent)

	for _, user := range users {
		g.Go(func() error {
			ok, err := s.processUser(ctx, user, now)
			switch {
			case errors.Is(err, ErrRecipientUnavailable):
				if err := s.users.Deactivate(ctx, user.ID); err != nil {
					s.logger.Error("failed to deactivate user", zap.Int64("user_id", user.ID), zap.Error(err))
					return nil
				}
				droppedN.Add(1)
				s.logger.Info("user blocked the bot, deactivated", zap.Int64("user_id", user.ID))
			case err != nil:
				s.logger.Error("failed to process reminder", zap.Int64("user_id", user.ID), zap.Error(err))
			case ok:
				sentN.Add(1)
			}
			return nil
		})
	}

	_ = g.Wait()
	return int(sentN.Load()), int(droppedN.Load())
}

// processUser sends one reminder unless the user already had a lesson today.
func (s *ReminderService) processUser(ctx context.Context, user entities.User, now time.Time) (bool, error) {
	stats, err := s.store.LoadStats(ctx, user.ID)
	if err != nil {
		return false, fmt.Errorf("load stats: %w", err)
	}
	if stats.LessonToday(now) {
		s.logger.Debug("lesson already generated today", zap.Int64("user_id", user.ID))
		return false, nil
	}

	history, err := s.store.LoadHistory(ctx, user.ID)
	if err != nil {
		return false, fmt.Errorf("load history: %w", err)
	}

	payload := entities.NewReminderPayload(stats, history)
	if err := s.notifier.SendReminder(ctx, user.ChatID, payload); err != nil {
		return false, fmt.Errorf("send reminder: %w", err)
	}

	s.metrics.ReminderSent()
	s.logger.Debug("reminder sent", zap.Int64("user_id", user.ID), zap.Int("streak", payload.Streak))
	return true, nil
}
