package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/lingo-spark-bot/internal/domain/entities"
)

type UserRepository interface {
	Save(ctx context.Context, user *entities.User) (bool, error)
	GetByID(ctx context.Context, userID int64) (*entities.User, error)
	SetReminders(ctx context.Context, userID int64, enabled bool) error
	Deactivate(ctx context.Context, userID int64) error
	ListReminderCandidates(ctx context.Context, limit, offset int) ([]entities.User, error)
}

// ProgressStore persists history, stats and theme.
type ProgressStore interface {
	LoadHistory(ctx context.Context, userID int64) (entities.History, error)
	LoadStats(ctx context.Context, userID int64) (entities.UserStats, error)
	LoadTheme(ctx context.Context, userID int64) (entities.Theme, error)
	// UpdateProgress runs fn on the stored history and stats while holding the
	// user's write lock, then stores both. Nothing is stored when fn fails.
	UpdateProgress(ctx context.Context, userID int64, fn func(history *entities.History, stats *entities.UserStats) error) error
	SaveTheme(ctx context.Context, userID int64, theme entities.Theme) error
}

// LessonGateway is the external AI model.
type LessonGateway interface {
	GenerateLesson(ctx context.Context, req entities.GenerationRequest) (*entities.LessonContent, error)
	RoleplayReply(ctx context.Context, scenario entities.SimulationScenario, transcript []entities.Turn) (string, error)
	EvaluateRoleplay(ctx context.Context, scenario entities.SimulationScenario, transcript []entities.Turn) (*entities.PerformanceFeedback, error)
	PuzzleHint(ctx context.Context, selection, target []string) (string, error)
}

// Speaker synthesizes MP3 audio.
type Speaker interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type Metrics interface {
	LessonGenerated()
	GenerationFailed(kind string)
	SpeechFailed()
	ReminderSent()
}

// SessionStore keeps the in-memory lesson sessions.
type SessionStore interface {
	Get(userID int64) (*entities.Session, bool)
	GetOrCreate(userID int64, create func() *entities.Session) *entities.Session
	Update(userID int64, fn func(sess *entities.Session) error) (*entities.Session, error)
	Delete(userID int64)
}

// SessionView is told about session changes that happen after a call returned.
type SessionView interface {
	SessionChanged(ctx context.Context, sess *entities.Session)
	SendAudio(ctx context.Context, chatID int64, title string, audio []byte) error
}

// ReminderNotifier sends reminder notifications to users.
type ReminderNotifier interface {
	SendReminder(ctx context.Context, chatID int64, payload entities.ReminderPayload) error
}

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
}

// LessonGenerator produces and records a new lesson. keep is asked right
// before the lesson is recorded; a false answer drops it.
type LessonGenerator interface {
	Generate(ctx context.Context, userID int64, req entities.GenerationRequest, keep func() bool) (*entities.Lesson, error)
}

// LessonFinder reads stored lessons and stats.
type LessonFinder interface {
	Lesson(ctx context.Context, userID int64, lessonID string) (*entities.Lesson, error)
	Stats(ctx context.Context, userID int64) (entities.UserStats, error)
}

type nopMetrics struct{}

func (nopMetrics) LessonGenerated()        {}
func (nopMetrics) GenerationFailed(string) {}
func (nopMetrics) SpeechFailed()           {}
func (nopMetrics) ReminderSent()           {}
