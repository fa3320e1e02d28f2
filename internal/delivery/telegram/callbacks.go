package telegram

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/lingo-spark-bot/internal/domain/entities"
)

var errBadCallback = errors.New("malformed callback data")

// callbackContext is what every callback handler needs to know about the tap.
type callbackContext struct {
	userID    int64
	chatID    int64
	messageID int
	data      callbackData
}

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil || cb.From == nil {
		h.answerCallback(cb.ID, "")
		return
	}

	cc := callbackContext{
		userID:    cb.From.ID,
		chatID:    cb.Message.Chat.ID,
		messageID: cb.Message.MessageID,
		data:      decodeCallback(cb.Data),
	}

	h.dismissNudge(cc.userID, cc.messageID)

	toast, err := h.dispatchCallback(ctx, cc)
	if err != nil {
		text, expected := userMessage(err)
		if errors.Is(err, errBadCallback) {
			text, expected = msgStaleAction, true
		}
		if expected {
			h.logger.Debug("rejected callback",
				zap.Int64("user_id", cc.userID),
				zap.String("data", cc.data.Raw),
				zap.Error(err),
			)
		} else {
			h.logger.Error("callback failed",
				zap.Int64("user_id", cc.userID),
				zap.String("data", cc.data.Raw),
				zap.Error(err),
			)
		}
		toast = text
	}

	h.answerCallback(cb.ID, toast)
}

// answerCallback removes the button spinner, optionally with a toast.
func (h *Handler) answerCallback(id, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(id, text)); err != nil {
		h.logger.Debug("callback answer error", zap.Error(err))
	}
}

func (h *Handler) dispatchCallback(ctx context.Context, cc callbackContext) (string, error) {
	switch cc.data.Action {
	case actionHistory:
		return h.handleHistoryCallback(ctx, cc)
	case actionStats:
		return "", h.handleStats(cc.userID, cc.messageID)(ctx, cc.chatID)
	case actionSettings:
		return "", h.handleSettingsCallback(ctx, cc)
	case actionReset:
		return "", h.handleResetCallback(ctx, cc)
	case actionSay:
		index, ok := cc.data.intParam(0)
		if !ok {
			return "", errBadCallback
		}
		h.lessons.Session(ctx, cc.userID, cc.chatID)
		if err := h.lessons.SpeakWord(ctx, cc.userID, index); err != nil {
			return "", err
		}
		return "🔊", nil
	}

	// Everything else acts on the lesson session and redraws it.
	h.lessons.Session(ctx, cc.userID, cc.chatID)

	sess, err := h.sessionAction(ctx, cc)
	if err != nil {
		return "", err
	}
	h.showSession(ctx, sess, cc.messageID)
	return "", nil
}

func (h *Handler) sessionAction(ctx context.Context, cc callbackContext) (*entities.Session, error) {
	userID := cc.userID

	switch cc.data.Action {
	case actionLevel:
		level := entities.Level(cc.data.param(0))
		if !level.Valid() {
			return nil, errBadCallback
		}
		return h.lessons.SetLevel(userID, level)

	case actionVibe:
		vibe := entities.Vibe(cc.data.param(0))
		if !vibe.Valid() {
			return nil, errBadCallback
		}
		return h.lessons.SetVibe(userID, vibe)

	case actionTopic:
		if cc.data.param(0) != topicClear {
			return nil, errBadCallback
		}
		return h.lessons.SetTopic(userID, "")

	case actionStart:
		return h.startFromAnywhere(ctx, cc)

	case actionRetry:
		return h.lessons.Retry(ctx, userID)

	case actionExit:
		return h.lessons.Exit(userID)

	case actionHome:
		return h.home(ctx, cc)

	case actionNext:
		return h.lessons.Advance(userID)

	case actionSkip:
		return h.lessons.Skip(userID)

	case actionMission:
		return h.lessons.AcceptMission(userID)

	case actionWord:
		index, ok := cc.data.intParam(0)
		if !ok {
			return nil, errBadCallback
		}
		return h.lessons.ShowWord(userID, index)

	case actionPuzzle:
		return h.puzzleAction(ctx, cc)

	case actionEvaluate:
		return h.lessons.EvaluateRoleplay(ctx, userID)

	default:
		return nil, errBadCallback
	}
}

// startFromAnywhere handles Start buttons on old messages and reminders: a
// running lesson is shown again, finished screens go back to the dashboard
// first.
func (h *Handler) startFromAnywhere(ctx context.Context, cc callbackContext) (*entities.Session, error) {
	sess := h.lessons.Session(ctx, cc.userID, cc.chatID)

	switch sess.State {
	case entities.StateLoading, entities.StateLesson:
		return sess, nil
	case entities.StateCompleted:
		if _, err := h.lessons.ReturnToDashboard(cc.userID); err != nil {
			return nil, err
		}
	case entities.StateError:
		if _, err := h.lessons.Exit(cc.userID); err != nil {
			return nil, err
		}
	}
	return h.lessons.StartLesson(ctx, cc.userID)
}

// home shows the dashboard. A running lesson is shown instead of being
// abandoned, so Home on a stats screen never loses progress.
func (h *Handler) home(ctx context.Context, cc callbackContext) (*entities.Session, error) {
	sess := h.lessons.Session(ctx, cc.userID, cc.chatID)

	switch sess.State {
	case entities.StateCompleted:
		return h.lessons.ReturnToDashboard(cc.userID)
	case entities.StateError:
		return h.lessons.Exit(cc.userID)
	default:
		return sess, nil
	}
}

func (h *Handler) puzzleAction(ctx context.Context, cc callbackContext) (*entities.Session, error) {
	userID := cc.userID

	switch cc.data.param(0) {
	case puzzlePick, puzzleUnpick:
		tileID, ok := cc.data.intParam(1)
		if !ok {
			return nil, errBadCallback
		}
		if cc.data.param(0) == puzzlePick {
			return h.lessons.PickTile(userID, tileID)
		}
		return h.lessons.UnpickTile(userID, tileID)
	case puzzleReset:
		return h.lessons.ResetPuzzle(userID)
	case puzzleCheck:
		return h.lessons.CheckPuzzle(ctx, userID)
	case puzzleNext:
		return h.lessons.NextPuzzle(userID)
	case puzzleHint:
		return h.lessons.RequestHint(ctx, userID)
	default:
		return nil, errBadCallback
	}
}

func (h *Handler) handleHistoryCallback(ctx context.Context, cc callbackContext) (string, error) {
	sub := cc.data.param(0)

	if sub == historyPage {
		page, ok := cc.data.intParam(1)
		if !ok {
			return "", errBadCallback
		}
		return "", h.handleHistory(cc.userID, page, cc.messageID)(ctx, cc.chatID)
	}

	lessonID := cc.data.param(1)
	page, ok := cc.data.intParam(2)
	if lessonID == "" || !ok {
		return "", errBadCallback
	}

	switch sub {
	case historyOpen:
		h.lessons.Session(ctx, cc.userID, cc.chatID)
		sess, err := h.lessons.OpenFromHistory(ctx, cc.userID, lessonID)
		if err != nil {
			return "", err
		}
		h.repostSession(ctx, sess)
		return "", nil

	case historyExport:
		doc, err := h.exports.Export(ctx, cc.userID, lessonID)
		if err != nil {
			return "", err
		}
		file := tgbotapi.NewDocument(cc.chatID, tgbotapi.FileBytes{Name: doc.Name, Bytes: doc.Data})
		if _, err := h.send(file); err != nil {
			return "", err
		}
		return msgExportReady, nil

	case historyDelete:
		if err := h.progress.DeleteLesson(ctx, cc.userID, lessonID); err != nil {
			return "", err
		}
		return msgLessonDeleted, h.handleHistory(cc.userID, page, cc.messageID)(ctx, cc.chatID)

	default:
		return "", errBadCallback
	}
}

func (h *Handler) handleSettingsCallback(ctx context.Context, cc callbackContext) error {
	var (
		settings *entities.UserSettings
		err      error
	)

	switch cc.data.param(0) {
	case settingsMenu:
		settings, err = h.settings.Get(ctx, cc.userID)
	case settingsTheme:
		settings, err = h.settings.ToggleTheme(ctx, cc.userID)
	case settingsReminders:
		settings, err = h.settings.ToggleReminders(ctx, cc.userID)
	default:
		return errBadCallback
	}
	if err != nil {
		return err
	}

	return h.showSettings(cc.chatID, cc.messageID, settings)
}

func (h *Handler) handleResetCallback(ctx context.Context, cc callbackContext) error {
	switch cc.data.param(0) {
	case resetConfirm:
		if err := h.resets.ResetUser(ctx, cc.userID); err != nil {
			return err
		}
		h.logger.Info("user progress reset", zap.Int64("user_id", cc.userID))
		return h.present(cc.chatID, cc.messageID, md(msgResetDone), nil)
	case resetCancel:
		return h.present(cc.chatID, cc.messageID, md(msgResetCancelled), nil)
	default:
		return errBadCallback
	}
}
