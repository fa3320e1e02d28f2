package telegram

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aliskhannn/lingo-spark-bot/internal/domain/entities"
	"github.com/aliskhannn/lingo-spark-bot/internal/service"
	"github.com/aliskhannn/lingo-spark-bot/internal/storage"
)

type fakeBot struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	nextID   int
	sendErr  error

	// beforeSend runs ahead of every Send, outside the lock.
	beforeSend func(c tgbotapi.Chattable)
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if b.beforeSend != nil {
		b.beforeSend(c)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, c)
	if b.sendErr != nil {
		return tgbotapi.Message{}, b.sendErr
	}
	b.nextID++
	return tgbotapi.Message{MessageID: b.nextID}, nil
}

func (b *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (b *fakeBot) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (b *fakeBot) StopReceivingUpdates() {}

func (b *fakeBot) Sent() []tgbotapi.Chattable {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]tgbotapi.Chattable(nil), b.sent...)
}

func (b *fakeBot) Requests() []tgbotapi.Chattable {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]tgbotapi.Chattable(nil), b.requests...)
}

// fakeLessons implements the few controller methods a test needs. Any other
// call panics on the nil embedded interface.
type fakeLessons struct {
	LessonController

	sess      *entities.Session
	levels    []entities.Level
	messageID int
}

func (f *fakeLessons) Session(_ context.Context, _, _ int64) *entities.Session {
	return f.sess
}

func (f *fakeLessons) SetMessageID(_ int64, messageID int) {
	f.messageID = messageID
}

func (f *fakeLessons) SetLevel(_ int64, level entities.Level) (*entities.Session, error) {
	f.levels = append(f.levels, level)
	f.sess.Draft.Level = level
	return f.sess, nil
}

func newTestHandler(bot *fakeBot, lessons LessonController) *Handler {
	return NewHandler(bot, zap.NewNop(), nil, lessons, nil, nil, nil, nil, storage.NewNudgeStorage())
}

func testLesson(t *testing.T) *entities.Lesson {
	t.Helper()

	content := entities.LessonContent{
		Theme: "Small Talk at Work",
		Vocabulary: []entities.VocabularyEntry{
			{Word: "rapport", Definition: "a friendly connection", Examples: []string{"We built rapport over coffee."}},
			{Word: "segue", Definition: "a smooth transition", Examples: []string{"That was a perfect segue!"}},
			{Word: "candid", Definition: "honest and direct", Examples: []string{"Thanks for being candid, Sam."}},
		},
		Concept: entities.ConceptCard{
			Title:                "Mirroring",
			Explanation:          "Reflect the other person's energy.",
			ConversationStarters: []string{"How was your weekend?"},
		},
		Simulation: entities.SimulationScenario{
			Setting:     "Office kitchen",
			Role:        "New colleague",
			OpeningLine: "Hi! Is this coffee machine always this slow?",
			Objective:   "Start a friendly conversation",
		},
		Story:     entities.Story{Title: "The Elevator", Content: "Maya pressed the button twice."},
		Challenge: entities.ChallengeTask{Task: "Ask a colleague about their weekend."},
	}

	l, err := entities.NewLesson("2hFzq3xPqU7aXf0iZ1yQz8b4kLm", time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC),
		entities.NewGenerationRequest(entities.LevelBeginner, entities.VibeWitty, ""), content)
	require.NoError(t, err)
	return l
}

// lessonAt returns a session opened on lesson and advanced to step.
func lessonAt(t *testing.T, step entities.Step) *entities.Session {
	t.Helper()

	sess := entities.NewSession(7, 7, entities.LevelBeginner)
	require.NoError(t, sess.OpenLesson(testLesson(t)))
	for sess.Step < step {
		require.NoError(t, sess.Advance())
		if sess.Step == entities.StepPractice {
			_, err := sess.PreparePuzzle(rand.New(rand.NewSource(1)))
			require.NoError(t, err)
		}
	}
	return sess
}

// signalGenerator fails as soon as ready is closed.
type signalGenerator struct {
	ready chan struct{}
}

func (g *signalGenerator) Generate(context.Context, int64, entities.GenerationRequest, func() bool) (*entities.Lesson, error) {
	<-g.ready
	return nil, errors.New("api key rejected")
}

type emptyFinder struct{}

func (emptyFinder) Lesson(context.Context, int64, string) (*entities.Lesson, error) {
	return nil, service.ErrLessonNotFound
}

func (emptyFinder) Stats(context.Context, int64) (entities.UserStats, error) {
	return entities.NewUserStats(), nil
}
