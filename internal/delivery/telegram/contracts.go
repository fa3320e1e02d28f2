package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/lingo-spark-bot/internal/domain/entities"
	"github.com/aliskhannn/lingo-spark-bot/internal/service"
	"github.com/aliskhannn/lingo-spark-bot/internal/storage"
)

// Bot is the part of *tgbotapi.BotAPI the handler uses.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type UserService interface {
	EnsureUser(ctx context.Context, userID, chatID int64) (bool, error)
}

// LessonController drives the lesson session. Implemented by service.Controller.
type LessonController interface {
	Session(ctx context.Context, userID, chatID int64) *entities.Session
	SetMessageID(userID int64, messageID int)

	SetLevel(userID int64, level entities.Level) (*entities.Session, error)
	SetVibe(userID int64, vibe entities.Vibe) (*entities.Session, error)
	SetTopic(userID int64, topic string) (*entities.Session, error)

	StartLesson(ctx context.Context, userID int64) (*entities.Session, error)
	Retry(ctx context.Context, userID int64) (*entities.Session, error)
	OpenFromHistory(ctx context.Context, userID int64, lessonID string) (*entities.Session, error)
	Advance(userID int64) (*entities.Session, error)
	Skip(userID int64) (*entities.Session, error)
	AcceptMission(userID int64) (*entities.Session, error)
	ReturnToDashboard(userID int64) (*entities.Session, error)
	Exit(userID int64) (*entities.Session, error)
	ShowWord(userID int64, index int) (*entities.Session, error)

	PickTile(userID int64, tileID int) (*entities.Session, error)
	UnpickTile(userID int64, tileID int) (*entities.Session, error)
	ResetPuzzle(userID int64) (*entities.Session, error)
	CheckPuzzle(ctx context.Context, userID int64) (*entities.Session, error)
	NextPuzzle(userID int64) (*entities.Session, error)
	RequestHint(ctx context.Context, userID int64) (*entities.Session, error)

	SendRoleplay(ctx context.Context, userID int64, text string) (*entities.Session, error)
	EvaluateRoleplay(ctx context.Context, userID int64) (*entities.Session, error)

	SpeakWord(ctx context.Context, userID int64, index int) error
}

type ProgressService interface {
	Stats(ctx context.Context, userID int64) (entities.UserStats, error)
	History(ctx context.Context, userID int64) (entities.History, error)
	DeleteLesson(ctx context.Context, userID int64, lessonID string) error
}

type SettingsService interface {
	Get(ctx context.Context, userID int64) (*entities.UserSettings, error)
	ToggleTheme(ctx context.Context, userID int64) (*entities.UserSettings, error)
	ToggleReminders(ctx context.Context, userID int64) (*entities.UserSettings, error)
}

type ResetService interface {
	ResetUser(ctx context.Context, userID int64) error
}

type ExportService interface {
	Export(ctx context.Context, userID int64, lessonID string) (*service.Document, error)
}

// NudgeStore remembers the last reminder message per chat.
type NudgeStore interface {
	Swap(userID, chatID int64, messageID int) (storage.NudgeMessage, bool)
	Take(userID int64) (storage.NudgeMessage, bool)
}
