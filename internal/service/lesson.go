package service

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/aliskhannn/lingo-spark-bot/internal/domain/entities"
)

type LessonConfig struct {
	XPAward      int
	HistoryLimit int
}

// LessonService generates lessons and records them in history and stats.
type LessonService struct {
	gateway LessonGateway
	store   ProgressStore
	metrics Metrics
	cfg     LessonConfig
	logger  *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewLessonService(gateway LessonGateway, store ProgressStore, metrics Metrics, cfg LessonConfig, logger *zap.Logger) *LessonService {
	if cfg.XPAward <= 0 {
		cfg.XPAward = entities.DefaultXPAward
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = entities.DefaultHistoryLimit
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &LessonService{
		gateway: gateway,
		store:   store,
		metrics: metrics,
		cfg:     cfg,
		logger:  logger.Named("lesson"),
		now:     time.Now,
		newID:   func() string { return ksuid.New().String() },
	}
}

// Generate asks the gateway for a lesson, then prepends it to history and
// credits the stats in one write. Nothing is persisted when any step fails or
// when keep reports that the request was cancelled meanwhile. A nil keep
// always records.
func (s *LessonService) Generate(ctx context.Context, userID int64, req entities.GenerationRequest, keep func() bool) (*entities.Lesson, error) {
	content, err := s.gateway.GenerateLesson(ctx, req)
	if err != nil {
		return nil, s.fail(userID, classifyGatewayError(err), err)
	}

	now := s.now()
	lesson, err := entities.NewLesson(s.newID(), now, req, *content)
	if err != nil {
		return nil, s.fail(userID, KindMalformed, err)
	}

	var stats entities.UserStats
	err = s.store.UpdateProgress(ctx, userID, func(history *entities.History, st *entities.UserStats) error {
		if keep != nil && !keep() {
			return ErrGenerationCancelled
		}
		*history = history.Prepend(*lesson, s.cfg.HistoryLimit)
		st.ApplyGeneration(req, now, s.cfg.XPAward)
		stats = *st
		return nil
	})
	if errors.Is(err, ErrGenerationCancelled) {
		s.logger.Info("lesson dropped after cancel",
			zap.Int64("user_id", userID),
			zap.String("lesson_id", lesson.ID),
		)
		return nil, err
	}
	if err != nil {
		return nil, s.fail(userID, KindStorage, err)
	}

	s.metrics.LessonGenerated()
	s.logger.Info("lesson generated",
		zap.Int64("user_id", userID),
		zap.String("lesson_id", lesson.ID),
		zap.String("level", string(req.Level)),
		zap.String("vibe", string(req.Vibe)),
		zap.Int("streak", stats.Streak),
	)

	return lesson, nil
}

func (s *LessonService) fail(userID int64, kind GenerationKind, err error) error {
	s.metrics.GenerationFailed(string(kind))
	s.logger.Error("lesson generation failed",
		zap.Int64("user_id", userID),
		zap.String("kind", string(kind)),
		zap.Error(err),
	)
	return &GenerationError{Kind: kind, Err: err}
}
