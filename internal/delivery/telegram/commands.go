package telegram

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/lingo-spark-bot/internal/domain/entities"
)

var botCommands = []tgbotapi.BotCommand{
	{Command: "lesson", Description: "open the dashboard or your running lesson"},
	{Command: "topic", Description: "set the topic of the next lesson, empty to clear"},
	{Command: "history", Description: "past lessons, replay or download as PDF"},
	{Command: "stats", Description: "streak, XP and rank"},
	{Command: "settings", Description: "PDF theme and daily reminders"},
	{Command: "reset", Description: "erase all progress"},
	{Command: "help", Description: "show this help"},
}

// Commands returns the command menu registered with Telegram.
func Commands() []tgbotapi.BotCommand {
	out := make([]tgbotapi.BotCommand, len(botCommands))
	copy(out, botCommands)
	return out
}

func (h *Handler) handleCommand(ctx context.Context, msg *tgbotapi.Message, isNew bool) {
	userID := msg.From.ID
	chatID := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())

	h.dismissNudge(userID, 0)

	switch msg.Command() {
	case "start":
		_ = h.withErrorHandling(h.handleStart(userID, isNew))(ctx, chatID)

	case "lesson":
		_ = h.withErrorHandling(h.handleLesson(userID, args))(ctx, chatID)

	case "topic":
		_ = h.withErrorHandling(h.handleTopic(userID, args))(ctx, chatID)

	case "history":
		_ = h.withErrorHandling(h.handleHistory(userID, 0, 0))(ctx, chatID)

	case "stats", "progress":
		_ = h.withErrorHandling(h.handleStats(userID, 0))(ctx, chatID)

	case "settings":
		_ = h.withErrorHandling(h.handleSettings(userID, 0))(ctx, chatID)

	case "reset":
		_ = h.withErrorHandling(h.handleResetPrompt())(ctx, chatID)

	case "help":
		_ = h.present(chatID, 0, helpMessage(), nil)

	default:
		h.sendError(chatID, msgUnknownCommand)
	}
}

func (h *Handler) handleStart(userID int64, isNew bool) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if isNew {
			if err := h.present(chatID, 0, welcomeMessage(), nil); err != nil {
				return err
			}
		}
		h.repostSession(ctx, h.lessons.Session(ctx, userID, chatID))
		return nil
	}
}

// handleLesson shows the session. With arguments it sets the topic and
// starts generating right away.
func (h *Handler) handleLesson(userID int64, topic string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		sess := h.lessons.Session(ctx, userID, chatID)

		if topic != "" {
			h.warnLongTopic(chatID, topic)

			var err error
			if sess, err = h.lessons.SetTopic(userID, topic); err != nil {
				return err
			}
			if sess, err = h.lessons.StartLesson(ctx, userID); err != nil {
				return err
			}
		}

		h.repostSession(ctx, sess)
		return nil
	}
}

func (h *Handler) handleTopic(userID int64, topic string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		h.lessons.Session(ctx, userID, chatID)
		h.warnLongTopic(chatID, topic)

		sess, err := h.lessons.SetTopic(userID, topic)
		if err != nil {
			return err
		}
		h.repostSession(ctx, sess)
		return nil
	}
}

// handleText routes free text: a topic on the dashboard, a roleplay line
// during the simulation step.
func (h *Handler) handleText(userID int64, text string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		h.dismissNudge(userID, 0)

		text = strings.TrimSpace(text)
		sess := h.lessons.Session(ctx, userID, chatID)

		switch {
		case sess.State == entities.StateDashboard:
			if text == "" {
				h.sendError(chatID, msgTextOutsideLesson)
				return nil
			}
			h.warnLongTopic(chatID, text)

			sess, err := h.lessons.SetTopic(userID, text)
			if err != nil {
				return err
			}
			h.repostSession(ctx, sess)
			return nil

		case sess.State == entities.StateLesson && sess.Step == entities.StepSimulation:
			sess, err := h.lessons.SendRoleplay(ctx, userID, text)
			if err != nil {
				return err
			}
			h.repostSession(ctx, sess)
			return nil

		default:
			h.sendError(chatID, msgTextOutsideLesson)
			return nil
		}
	}
}

func (h *Handler) warnLongTopic(chatID int64, topic string) {
	if utf8.RuneCountInString(topic) > entities.MaxTopicLength {
		h.sendError(chatID, fmt.Sprintf(msgTopicTooLong, entities.MaxTopicLength))
	}
}

func (h *Handler) handleResetPrompt() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		kb := buildResetKeyboard()
		return h.present(chatID, 0, resetPromptMessage(), &kb)
	}
}

func resetPromptMessage() string {
	var sb strings.Builder
	sb.WriteString(bold("⚠️ Erase all progress?"))
	sb.WriteString("\n\n")
	sb.WriteString(md("Your lesson history, streak, XP and settings will be deleted. This can not be undone."))
	return sb.String()
}
