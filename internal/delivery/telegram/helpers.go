package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/lingo-spark-bot/internal/domain/entities"
)

// present edits messageID in place, or sends a new message when messageID is 0.
func (h *Handler) present(chatID int64, messageID int, text string, kb *tgbotapi.InlineKeyboardMarkup) error {
	if messageID != 0 {
		edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
		edit.ParseMode = tgbotapi.ModeMarkdownV2
		edit.ReplyMarkup = kb
		_, err := h.send(edit)
		return err
	}

	msg := newMessage(chatID, text)
	if kb != nil {
		msg.ReplyMarkup = *kb
	}
	_, err := h.send(msg)
	return err
}

// repostSession shows the session in a new message at the bottom of the chat
// and removes the message that showed it before.
func (h *Handler) repostSession(ctx context.Context, sess *entities.Session) {
	h.draw(ctx, sess.UserID, sess.ChatID, 0, true)
}

func (h *Handler) deleteMessage(chatID int64, messageID int) {
	if _, err := h.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		h.logger.Debug("failed to delete message",
			zap.Int64("chat_id", chatID),
			zap.Int("message_id", messageID),
			zap.Error(err),
		)
	}
}

// dismissNudge forgets the pending reminder once the user is back and deletes
// it, unless the user is interacting with that very message.
func (h *Handler) dismissNudge(userID int64, keepMessageID int) {
	prev, ok := h.nudges.Take(userID)
	if !ok || prev.MessageID == keepMessageID {
		return
	}
	h.deleteMessage(prev.ChatID, prev.MessageID)
}
