package telegram

import (
	"context"
	"strings"

	"github.com/aliskhannn/lingo-spark-bot/internal/domain/entities"
)

func (h *Handler) handleSettings(userID int64, messageID int) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		settings, err := h.settings.Get(ctx, userID)
		if err != nil {
			return err
		}
		return h.showSettings(chatID, messageID, settings)
	}
}

func (h *Handler) showSettings(chatID int64, messageID int, settings *entities.UserSettings) error {
	kb := buildSettingsKeyboard(settings)
	return h.present(chatID, messageID, formatSettings(settings), &kb)
}

func formatSettings(s *entities.UserSettings) string {
	var sb strings.Builder
	sb.WriteString(bold("⚙️ Settings"))
	sb.WriteString("\n\n")
	sb.WriteString(md("📄 PDF theme: " + string(s.Theme)))
	sb.WriteString("\n")
	sb.WriteString(md("🔔 Daily reminders: " + formatBool(s.RemindersEnabled)))
	sb.WriteString("\n\n")
	sb.WriteString(italic("Tap a button to switch."))
	return sb.String()
}
