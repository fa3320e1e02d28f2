package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/lingo-spark-bot/internal/domain/entities"
	"github.com/aliskhannn/lingo-spark-bot/internal/service"
)

type Handler struct {
	bot      Bot
	logger   *zap.Logger
	users    UserService
	lessons  LessonController
	progress ProgressService
	settings SettingsService
	resets   ResetService
	exports  ExportService
	nudges   NudgeStore

	drawing sync.Map // user ID -> *sync.Mutex
}

func NewHandler(
	bot Bot,
	logger *zap.Logger,
	users UserService,
	lessons LessonController,
	progress ProgressService,
	settings SettingsService,
	resets ResetService,
	exports ExportService,
	nudges NudgeStore,
) *Handler {
	return &Handler{
		bot:      bot,
		logger:   logger.Named("telegram"),
		users:    users,
		lessons:  lessons,
		progress: progress,
		settings: settings,
		resets:   resets,
		exports:  exports,
		nudges:   nudges,
	}
}

func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)
	defer h.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.logger.Debug("callback received",
			zap.Int64("user_id", update.CallbackQuery.From.ID),
			zap.String("data", update.CallbackQuery.Data),
		)
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	h.logger.Debug("update received",
		zap.Int64("chat_id", update.Message.Chat.ID),
		zap.Bool("command", update.Message.IsCommand()),
	)

	from := update.Message.From
	chatID := update.Message.Chat.ID

	isNew, err := h.users.EnsureUser(ctx, from.ID, chatID)
	if err != nil {
		h.logger.Error("failed to ensure user",
			zap.Int64("user_id", from.ID),
			zap.Error(err),
		)
	}

	if update.Message.IsCommand() {
		h.handleCommand(ctx, update.Message, isNew)
		return
	}

	_ = h.withErrorHandling(h.handleText(from.ID, update.Message.Text))(ctx, chatID)
}

// send delivers c and logs failures. Edits that change nothing are not errors.
func (h *Handler) send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg, err := h.bot.Send(c)
	if err != nil {
		if isNotModified(err) {
			return msg, nil
		}
		h.logger.Error("failed to send telegram message", zap.Error(err))
		return msg, mapSendError(err)
	}
	return msg, nil
}

func (h *Handler) sendError(chatID int64, text string) {
	_, _ = h.send(newPlainMessage(chatID, text))
}

// SessionChanged redraws the session message after background work finished.
func (h *Handler) SessionChanged(ctx context.Context, sess *entities.Session) {
	h.draw(ctx, sess.UserID, sess.ChatID, liveMessage, false)
}

// SendAudio sends synthesized speech as a voice-less audio file.
func (h *Handler) SendAudio(_ context.Context, chatID int64, title string, audio []byte) error {
	a := tgbotapi.NewAudio(chatID, tgbotapi.FileBytes{Name: audioFileName(title), Bytes: audio})
	a.Title = title
	a.Performer = "Lingo Spark"
	_, err := h.send(a)
	return err
}

// SendReminder posts the daily nudge and removes the previous one.
func (h *Handler) SendReminder(_ context.Context, chatID int64, payload entities.ReminderPayload) error {
	msg := newMessage(chatID, formatReminder(payload))
	msg.ReplyMarkup = buildReminderKeyboard()

	sent, err := h.send(msg)
	if err != nil {
		return err
	}

	// Private chats share the user's ID.
	if prev, ok := h.nudges.Swap(chatID, chatID, sent.MessageID); ok {
		h.deleteMessage(prev.ChatID, prev.MessageID)
	}
	return nil
}

// liveMessage makes draw edit whichever message shows the session now.
const liveMessage = -1

// showSession edits messageID to show the user's session, or sends a new
// message when there is nothing to edit.
func (h *Handler) showSession(ctx context.Context, sess *entities.Session, messageID int) {
	h.draw(ctx, sess.UserID, sess.ChatID, messageID, false)
}

// draw renders the newest session state, not the one the caller saw. Draws for
// one user run one at a time, so the last edit to land is always the newest
// state. With repost the message that showed the session before is deleted
// once a new one is sent.
func (h *Handler) draw(ctx context.Context, userID, chatID int64, messageID int, repost bool) {
	mu := h.drawLock(userID)
	mu.Lock()
	defer mu.Unlock()

	sess := h.lessons.Session(ctx, userID, chatID)
	prev := sess.MessageID
	if messageID == liveMessage {
		messageID = prev
	}

	text, kb := renderSession(sess)

	if messageID != 0 {
		if _, err := h.send(newEdit(sess.ChatID, messageID, text, kb)); err == nil {
			if messageID != prev {
				h.lessons.SetMessageID(userID, messageID)
			}
			return
		}
	}

	msg := newMessage(sess.ChatID, text)
	msg.ReplyMarkup = kb
	sent, err := h.send(msg)
	if err != nil {
		return
	}
	h.lessons.SetMessageID(userID, sent.MessageID)

	if repost && prev != 0 && prev != sent.MessageID {
		h.deleteMessage(sess.ChatID, prev)
	}
}

func (h *Handler) drawLock(userID int64) *sync.Mutex {
	mu, _ := h.drawing.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func isNotModified(err error) bool {
	var tgErr *tgbotapi.Error
	return errors.As(err, &tgErr) && strings.Contains(tgErr.Message, "message is not modified")
}

// mapSendError turns "bot was blocked" style failures into service.ErrRecipientUnavailable.
func mapSendError(err error) error {
	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) && tgErr.Code == http.StatusForbidden {
		return fmt.Errorf("%w: %s", service.ErrRecipientUnavailable, tgErr.Message)
	}
	return err
}
