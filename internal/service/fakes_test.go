package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/aliskhannn/lingo-spark-bot/internal/domain/entities"
)

var errBoom = errors.New("boom")

func testContent() entities.LessonContent {
	return entities.LessonContent{
		Theme: "Small Talk at Work",
		Vocabulary: []entities.VocabularyEntry{
			{Word: "rapport", Definition: "a friendly connection", Examples: []string{"We built rapport over coffee."}},
			{Word: "segue", Definition: "a smooth transition", Examples: []string{"That was a perfect segue!"}},
			{Word: "candid", Definition: "honest and direct", Examples: []string{"Thanks for being candid, Sam."}},
		},
		Concept: entities.ConceptCard{
			Title:                "Mirroring",
			Explanation:          "Reflect the other person's energy.",
			Analogy:              "Like dancing with a partner.",
			ConversationStarters: []string{"How was your weekend?"},
		},
		Simulation: entities.SimulationScenario{
			Setting:     "Office kitchen",
			Role:        "New colleague",
			OpeningLine: "Hi! Is this coffee machine always this slow?",
			Objective:   "Start a friendly conversation",
		},
		Story:     entities.Story{Title: "The Elevator", Content: "Maya pressed the button twice."},
		Challenge: entities.ChallengeTask{Task: "Ask a colleague about their weekend.", Tip: "Follow up once."},
	}
}

func testLesson(id string) *entities.Lesson {
	req := entities.NewGenerationRequest(entities.LevelBeginner, entities.VibeWitty, "")
	l, err := entities.NewLesson(id, time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC), req, testContent())
	if err != nil {
		panic(err)
	}
	return l
}

// fakeGateway answers with canned results. Calls are counted per operation.
type fakeGateway struct {
	mu sync.Mutex

	content    *entities.LessonContent
	lessonGate chan struct{}
	lessonErr  error
	reply      string
	replyErr   error
	feedback   *entities.PerformanceFeedback
	evalErr    error
	hint       string
	hintErr    error
	calls      map[string]int
	transcript []entities.Turn
}

func newFakeGateway() *fakeGateway {
	c := testContent()
	return &fakeGateway{
		content:  &c,
		reply:    "Ha, every single morning.",
		feedback: &entities.PerformanceFeedback{Score: 8, Feedback: "Warm opener.", Suggestion: "Ask a follow-up."},
		hint:     "Start with the subject.",
		calls:    make(map[string]int),
	}
}

func (g *fakeGateway) count(op string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls[op]++
}

func (g *fakeGateway) Calls(op string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[op]
}

func (g *fakeGateway) GenerateLesson(_ context.Context, _ entities.GenerationRequest) (*entities.LessonContent, error) {
	g.count("lesson")
	if g.lessonGate != nil {
		<-g.lessonGate
	}
	if g.lessonErr != nil {
		return nil, g.lessonErr
	}
	c := *g.content
	return &c, nil
}

func (g *fakeGateway) RoleplayReply(_ context.Context, _ entities.SimulationScenario, transcript []entities.Turn) (string, error) {
	g.count("roleplay")
	g.mu.Lock()
	g.transcript = append([]entities.Turn(nil), transcript...)
	g.mu.Unlock()
	return g.reply, g.replyErr
}

func (g *fakeGateway) EvaluateRoleplay(_ context.Context, _ entities.SimulationScenario, _ []entities.Turn) (*entities.PerformanceFeedback, error) {
	g.count("evaluate")
	if g.evalErr != nil {
		return nil, g.evalErr
	}
	f := *g.feedback
	return &f, nil
}

func (g *fakeGateway) PuzzleHint(_ context.Context, _, _ []string) (string, error) {
	g.count("hint")
	return g.hint, g.hintErr
}

// memProgress is an in-memory ProgressStore with injectable failures.
type memProgress struct {
	mu      sync.Mutex
	history map[int64]entities.History
	stats   map[int64]entities.UserStats
	themes  map[int64]entities.Theme

	loadErr error
	saveErr error
}

func newMemProgress() *memProgress {
	return &memProgress{
		history: make(map[int64]entities.History),
		stats:   make(map[int64]entities.UserStats),
		themes:  make(map[int64]entities.Theme),
	}
}

func (m *memProgress) LoadHistory(_ context.Context, userID int64) (entities.History, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append(entities.History(nil), m.history[userID]...), nil
}

func (m *memProgress) LoadStats(_ context.Context, userID int64) (entities.UserStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return entities.UserStats{}, m.loadErr
	}
	stats, ok := m.stats[userID]
	if !ok {
		return entities.NewUserStats(), nil
	}
	return stats, nil
}

func (m *memProgress) LoadTheme(_ context.Context, userID int64) (entities.Theme, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	theme, ok := m.themes[userID]
	if !ok {
		return entities.ThemeLight, nil
	}
	return theme, nil
}

func (m *memProgress) UpdateProgress(_ context.Context, userID int64, fn func(history *entities.History, stats *entities.UserStats) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return m.loadErr
	}

	history := append(entities.History(nil), m.history[userID]...)
	stats, ok := m.stats[userID]
	if !ok {
		stats = entities.NewUserStats()
	}
	if err := fn(&history, &stats); err != nil {
		return err
	}
	if m.saveErr != nil {
		return m.saveErr
	}

	m.history[userID] = history
	m.stats[userID] = stats
	return nil
}

func (m *memProgress) SaveTheme(_ context.Context, userID int64, theme entities.Theme) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.themes[userID] = theme
	return nil
}

type countingMetrics struct {
	mu        sync.Mutex
	generated int
	failures  map[string]int
	speech    int
	reminders int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{failures: make(map[string]int)}
}

func (m *countingMetrics) LessonGenerated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generated++
}

func (m *countingMetrics) GenerationFailed(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[kind]++
}

func (m *countingMetrics) SpeechFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.speech++
}

func (m *countingMetrics) ReminderSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reminders++
}

// fakeUsers is an in-memory UserRepository.
type fakeUsers struct {
	mu          sync.Mutex
	users       map[int64]*entities.User
	deactivated []int64
}

func newFakeUsers(users ...*entities.User) *fakeUsers {
	f := &fakeUsers{users: make(map[int64]*entities.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Save(_ context.Context, user *entities.User) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.users[user.ID]
	if ok {
		existing.ChatID = user.ChatID
		existing.IsActive = true
		return false, nil
	}
	u := *user
	f.users[user.ID] = &u
	return true, nil
}

func (f *fakeUsers) GetByID(_ context.Context, userID int64) (*entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, errors.New("user not found")
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) SetReminders(_ context.Context, userID int64, enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return errors.New("user not found")
	}
	u.RemindersEnabled = enabled
	return nil
}

func (f *fakeUsers) Deactivate(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[userID]; ok {
		u.IsActive = false
	}
	f.deactivated = append(f.deactivated, userID)
	return nil
}

func (f *fakeUsers) ListReminderCandidates(_ context.Context, limit, offset int) ([]entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var all []entities.User
	for _, u := range f.users {
		if u.IsActive && u.RemindersEnabled {
			all = append(all, *u)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}
