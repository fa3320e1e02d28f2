package service

import (
	"context"

	"github.com/aliskhannn/lingo-spark-bot/internal/domain/entities"
)

// ProgressService reads and edits stored history and stats.
type ProgressService struct {
	store ProgressStore
}

func NewProgressService(store ProgressStore) *ProgressService {
	return &ProgressService{store: store}
}

func (s *ProgressService) Stats(ctx context.Context, userID int64) (entities.UserStats, error) {
	return s.store.LoadStats(ctx, userID)
}

// History returns stored lessons, newest first.
func (s *ProgressService) History(ctx context.Context, userID int64) (entities.History, error) {
	return s.store.LoadHistory(ctx, userID)
}

// Lesson finds a lesson in the user's history.
func (s *ProgressService) Lesson(ctx context.Context, userID int64, lessonID string) (*entities.Lesson, error) {
	history, err := s.store.LoadHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	lesson, ok := history.Find(lessonID)
	if !ok {
		return nil, ErrLessonNotFound
	}
	return lesson, nil
}

// DeleteLesson removes exactly one history entry and keeps the rest in order.
func (s *ProgressService) DeleteLesson(ctx context.Context, userID int64, lessonID string) error {
	return s.store.UpdateProgress(ctx, userID, func(history *entities.History, _ *entities.UserStats) error {
		rest, ok := history.Remove(lessonID)
		if !ok {
			return ErrLessonNotFound
		}
		*history = rest
		return nil
	})
}
