package telegram

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/aliskhannn/lingo-spark-bot/internal/domain/entities"
	"github.com/aliskhannn/lingo-spark-bot/internal/service"
)

type HandlerFunc func(ctx context.Context, chatID int64) error

func (h *Handler) withErrorHandling(fn HandlerFunc) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if err := fn(ctx, chatID); err != nil {
			text, expected := userMessage(err)
			if expected {
				h.logger.Debug("rejected action",
					zap.Int64("chat_id", chatID),
					zap.Error(err),
				)
			} else {
				h.logger.Error("handle error",
					zap.Int64("chat_id", chatID),
					zap.Error(err),
				)
			}
			h.sendError(chatID, text)
			return nil
		}
		return nil
	}
}

// userMessage picks the reply for err. expected is true for errors caused by
// stale buttons or double taps rather than by a fault.
func userMessage(err error) (text string, expected bool) {
	switch {
	case errors.Is(err, entities.ErrBusy),
		errors.Is(err, entities.ErrSimulationBusy):
		return msgBusy, true
	case errors.Is(err, entities.ErrInvalidTransition),
		errors.Is(err, entities.ErrWrongStep),
		errors.Is(err, entities.ErrNotInLesson),
		errors.Is(err, service.ErrPuzzleUnavailable),
		errors.Is(err, service.ErrSimulationUnavailable):
		return msgStaleAction, true
	case errors.Is(err, entities.ErrNothingToEvaluate):
		return msgNothingToEvaluate, true
	case errors.Is(err, entities.ErrSimulationEvaluated):
		return msgAlreadyEvaluated, true
	case errors.Is(err, entities.ErrEmptyMessage):
		return msgEmptyMessage, true
	case errors.Is(err, service.ErrLessonNotFound):
		return msgLessonNotFound, true
	case errors.Is(err, service.ErrSpeechUnavailable):
		return msgSpeechUnavailable, true
	default:
		return msgInternalError, false
	}
}
