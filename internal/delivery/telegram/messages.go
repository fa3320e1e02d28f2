// messages.go contains message templates and formatting functions for Telegram.

package telegram

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/lingo-spark-bot/internal/domain/entities"
)

// Replies and toasts.
const (
	msgInternalError     = "Something went wrong. Please try again later."
	msgBusy              = "Hold on, still working on your last request."
	msgStaleAction       = "That button belongs to an older screen. Use /lesson to see where you are."
	msgNothingToEvaluate = "Say something to your partner first, then ask for feedback."
	msgAlreadyEvaluated  = "This roleplay has already been scored."
	msgEmptyMessage      = "Type a message to continue the conversation."
	msgLessonNotFound    = "That lesson is no longer in your history."
	msgSpeechUnavailable = "Audio is turned off on this bot."
	msgHistoryEmpty      = "No lessons yet. Start one with /lesson."
	msgStatsUnavailable  = "Could not load your stats. Please try again later."
	msgTopicTooLong      = "Topics are limited to %d characters, the rest was cut."
	msgTextOutsideLesson = "Use /lesson to open your dashboard. On the dashboard, any text you send becomes the lesson topic."
	msgUnknownCommand    = "Unknown command. See /help for what I can do."
	msgResetDone         = "All progress was erased. Start fresh with /lesson."
	msgResetCancelled    = "Reset cancelled, nothing changed."
	msgExportReady       = "📄 Your PDF is ready."
	msgLessonDeleted     = "Lesson deleted."
)

const maxMessageRunes = 3800

// md escapes plain text for MarkdownV2.
func md(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, s)
}

func bold(s string) string {
	return "*" + md(s) + "*"
}

func italic(s string) string {
	return "_" + md(s) + "_"
}

// newMessage creates a message with MarkdownV2 parse mode.
func newMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	return msg
}

// newPlainMessage creates a plain message without MarkdownV2 parse mode.
func newPlainMessage(chatID int64, text string) tgbotapi.MessageConfig {
	return tgbotapi.NewMessage(chatID, text)
}

func newEdit(chatID int64, msgID int, text string, kb tgbotapi.InlineKeyboardMarkup) tgbotapi.EditMessageTextConfig {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, text, kb)
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	return edit
}

// clip shortens plain text before it is escaped.
func clip(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit-1]) + "…"
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

var levelLabels = map[entities.Level]string{
	entities.LevelBeginner:     "🌱 Beginner",
	entities.LevelIntermediate: "🌿 Intermediate",
	entities.LevelAdvanced:     "🌳 Advanced",
}

var vibeLabels = map[entities.Vibe]string{
	entities.VibeProfessional: "💼 Professional",
	entities.VibeCasual:       "☕ Casual",
	entities.VibeWitty:        "😏 Witty",
	entities.VibeAcademic:     "🎓 Academic",
}

func levelLabel(l entities.Level) string {
	if s, ok := levelLabels[l]; ok {
		return s
	}
	return titleCase(string(l))
}

func vibeLabel(v entities.Vibe) string {
	if s, ok := vibeLabels[v]; ok {
		return s
	}
	return titleCase(string(v))
}

func formatBool(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func formatReminder(p entities.ReminderPayload) string {
	var sb strings.Builder

	sb.WriteString(bold("⚡ Time for today's spark!"))
	sb.WriteString("\n\n")
	if p.Streak > 0 {
		sb.WriteString(md(fmt.Sprintf("🔥 Your streak is at %d. One short lesson keeps it alive.", p.Streak)))
	} else {
		sb.WriteString(md("Five minutes, seven small steps, one new habit."))
	}
	sb.WriteString("\n")
	if p.LastTheme != "" {
		sb.WriteString(md(fmt.Sprintf("Last time: %s", p.LastTheme)))
		sb.WriteString("\n")
	}
	sb.WriteString(md(fmt.Sprintf("⭐ %d XP · %s", p.XP, levelLabel(p.Level))))
	return sb.String()
}

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]+`)

func audioFileName(title string) string {
	name := strings.Trim(nonAlnum.ReplaceAllString(title, "_"), "_")
	if name == "" {
		name = "audio"
	}
	return strings.ToLower(name) + ".mp3"
}
