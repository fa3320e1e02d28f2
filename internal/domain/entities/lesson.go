package entities

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Level is the lesson difficulty.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Levels lists the difficulty levels in display order.
var Levels = []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}

const DefaultLevel = LevelIntermediate

// Valid reports whether the level is a known difficulty.
func (l Level) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// Vibe is the tone of the generated lesson.
type Vibe string

const (
	VibeProfessional Vibe = "professional"
	VibeCasual       Vibe = "casual"
	VibeWitty        Vibe = "witty"
	VibeAcademic     Vibe = "academic"
)

// Vibes lists the tones in display order.
var Vibes = []Vibe{VibeProfessional, VibeCasual, VibeWitty, VibeAcademic}

const DefaultVibe = VibeCasual

// Valid reports whether the vibe is a known tone.
func (v Vibe) Valid() bool {
	switch v {
	case VibeProfessional, VibeCasual, VibeWitty, VibeAcademic:
		return true
	}
	return false
}

const (
	MinVocabulary  = 3
	MaxTopicLength = 120
	MaxMastery     = 4
	displayDate    = "Jan 2, 2006"
)

var ErrInvalidLesson = errors.New("invalid lesson content")

// GenerationRequest carries the "start lesson" parameters.
type GenerationRequest struct {
	Level Level  `json:"level"`
	Vibe  Vibe   `json:"vibe"`
	Topic string `json:"topic,omitempty"`
}

// NewGenerationRequest normalizes user input into a request.
func NewGenerationRequest(level Level, vibe Vibe, topic string) GenerationRequest {
	if !level.Valid() {
		level = DefaultLevel
	}
	if !vibe.Valid() {
		vibe = DefaultVibe
	}

	topic = strings.Join(strings.Fields(topic), " ")
	if utf8.RuneCountInString(topic) > MaxTopicLength {
		topic = string([]rune(topic)[:MaxTopicLength])
	}

	return GenerationRequest{Level: level, Vibe: vibe, Topic: topic}
}

// VocabularyEntry is a single word taught in a lesson.
type VocabularyEntry struct {
	Word                string   `json:"word"`
	Pronunciation       string   `json:"pronunciation"`
	PartOfSpeech        string   `json:"partOfSpeech"`
	Definition          string   `json:"definition"`
	LocalizedDefinition string   `json:"localizedDefinition"`
	Mnemonic            string   `json:"mnemonic"`
	Examples            []string `json:"examples"`
	Mastery             *int     `json:"mastery,omitempty"` // spaced-repetition level 0..4
}

// MasteryLevel returns the clamped mastery level, 0 when unset.
func (v VocabularyEntry) MasteryLevel() int {
	if v.Mastery == nil {
		return 0
	}
	return min(max(*v.Mastery, 0), MaxMastery)
}

// FirstExample returns the first example sentence, if any.
func (v VocabularyEntry) FirstExample() (string, bool) {
	for _, ex := range v.Examples {
		if strings.TrimSpace(ex) != "" {
			return ex, true
		}
	}
	return "", false
}

type ConceptCard struct {
	Title                string   `json:"title"`
	Explanation          string   `json:"explanation"`
	Analogy              string   `json:"analogy"`
	ConversationStarters []string `json:"conversationStarters"`
}

type SimulationScenario struct {
	Setting     string `json:"setting"`
	Role        string `json:"role"`
	OpeningLine string `json:"openingLine"`
	Objective   string `json:"objective"`
}

type Story struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type ChallengeTask struct {
	Task string `json:"task"`
	Tip  string `json:"tip"`
}

// LessonContent is the generated part of a lesson.
type LessonContent struct {
	Theme      string             `json:"theme"`
	Vocabulary []VocabularyEntry  `json:"vocabulary"`
	Concept    ConceptCard        `json:"concept"`
	Simulation SimulationScenario `json:"simulation"`
	Story      Story              `json:"story"`
	Challenge  ChallengeTask      `json:"challenge"`
}

// Validate checks that the content is complete enough to run the lesson flow.
func (c *LessonContent) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Theme) == "" {
		problems = append(problems, "theme is empty")
	}
	if len(c.Vocabulary) < MinVocabulary {
		problems = append(problems, fmt.Sprintf("vocabulary has %d entries, want at least %d", len(c.Vocabulary), MinVocabulary))
	}
	for i, v := range c.Vocabulary {
		if strings.TrimSpace(v.Word) == "" || strings.TrimSpace(v.Definition) == "" {
			problems = append(problems, fmt.Sprintf("vocabulary[%d] lacks word or definition", i))
		}
		if _, ok := v.FirstExample(); !ok {
			problems = append(problems, fmt.Sprintf("vocabulary[%d] has no examples", i))
		}
	}
	if strings.TrimSpace(c.Concept.Title) == "" {
		problems = append(problems, "concept title is empty")
	}
	if strings.TrimSpace(c.Simulation.OpeningLine) == "" || strings.TrimSpace(c.Simulation.Objective) == "" {
		problems = append(problems, "simulation lacks opening line or objective")
	}
	if strings.TrimSpace(c.Story.Content) == "" {
		problems = append(problems, "story is empty")
	}
	if strings.TrimSpace(c.Challenge.Task) == "" {
		problems = append(problems, "challenge task is empty")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidLesson, strings.Join(problems, "; "))
	}
	return nil
}

// Lesson is a generated daily lesson. It is immutable once created.
type Lesson struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Date      string    `json:"date"`
	Level     Level     `json:"level"`
	Vibe      Vibe      `json:"vibe"`
	Topic     string    `json:"topic,omitempty"`
	LessonContent
}

// NewLesson builds a lesson from validated content in one step.
func NewLesson(id string, now time.Time, req GenerationRequest, content LessonContent) (*Lesson, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrInvalidLesson)
	}
	if err := content.Validate(); err != nil {
		return nil, err
	}

	return &Lesson{
		ID:            id,
		CreatedAt:     now.UTC(),
		Date:          now.Format(displayDate),
		Level:         req.Level,
		Vibe:          req.Vibe,
		Topic:         req.Topic,
		LessonContent: content,
	}, nil
}

// Validate checks a lesson read back from storage.
func (l *Lesson) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidLesson)
	}
	return l.LessonContent.Validate()
}
