package service

import (
	"errors"
	"fmt"

	"github.com/aliskhannn/lingo-spark-bot/internal/domain/entities"
	"github.com/aliskhannn/lingo-spark-bot/internal/infra/gemini"
)

var (
	ErrLessonNotFound        = errors.New("lesson not found")
	ErrRecipientUnavailable  = errors.New("recipient blocked the bot")
	ErrSpeechUnavailable     = errors.New("speech is not configured")
	ErrPuzzleUnavailable     = errors.New("no puzzle on this screen")
	ErrSimulationUnavailable = errors.New("no roleplay on this screen")
	ErrGenerationCancelled   = errors.New("lesson request was cancelled")
)

// GenerationKind classifies why a lesson could not be produced.
type GenerationKind string

const (
	KindGateway   GenerationKind = "gateway"
	KindMalformed GenerationKind = "malformed"
	KindStorage   GenerationKind = "storage"
)

// GenerationError is returned by LessonService.Generate. History and stats
// are untouched whenever it is returned.
type GenerationError struct {
	Kind GenerationKind
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate lesson (%s): %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// UserMessage is the text shown on the error screen.
func (e *GenerationError) UserMessage() string {
	switch e.Kind {
	case KindMalformed:
		return "The lesson came back garbled. Please try again."
	case KindStorage:
		return "The lesson was ready but could not be saved. Please try again."
	default:
		return "Could not reach the lesson generator. Check back in a moment and retry."
	}
}

func classifyGatewayError(err error) GenerationKind {
	switch {
	case errors.Is(err, gemini.ErrMalformedResponse),
		errors.Is(err, gemini.ErrEmptyResponse),
		errors.Is(err, entities.ErrInvalidLesson):
		return KindMalformed
	default:
		return KindGateway
	}
}
