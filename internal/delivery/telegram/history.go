package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/lingo-spark-bot/internal/domain/entities"
)

const historyPageSize = 5

func (h *Handler) handleHistory(userID int64, page, messageID int) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		history, err := h.progress.History(ctx, userID)
		if err != nil {
			return err
		}

		if len(history) == 0 {
			kb := tgbotapi.NewInlineKeyboardMarkup(homeRow())
			return h.present(chatID, messageID, md(msgHistoryEmpty), &kb)
		}

		text, kb := buildHistoryPage(history, page)
		return h.present(chatID, messageID, text, &kb)
	}
}

func historyPages(n int) int {
	return (n + historyPageSize - 1) / historyPageSize
}

// buildHistoryPage renders one page of the history, newest first. page is
// clamped to the last page.
func buildHistoryPage(history entities.History, page int) (string, tgbotapi.InlineKeyboardMarkup) {
	totalPages := historyPages(len(history))
	page = min(max(page, 0), totalPages-1)

	start := page * historyPageSize
	end := min(start+historyPageSize, len(history))

	var sb strings.Builder
	sb.WriteString(bold("📚 Your lessons"))
	sb.WriteString("\n")

	var rows [][]tgbotapi.InlineKeyboardButton
	for i := start; i < end; i++ {
		l := history[i]
		n := i + 1

		sb.WriteString("\n")
		sb.WriteString(bold(fmt.Sprintf("%d. %s", n, l.Theme)))
		sb.WriteString("\n")
		sb.WriteString(md(fmt.Sprintf("%s · %s · %s", l.Date, levelLabel(l.Level), vibeLabel(l.Vibe))))
		sb.WriteString("\n")

		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("▶️ %d", n), buildHistoryLessonCallback(historyOpen, l.ID, page)),
			tgbotapi.NewInlineKeyboardButtonData("📄 PDF", buildHistoryLessonCallback(historyExport, l.ID, page)),
			tgbotapi.NewInlineKeyboardButtonData("🗑", buildHistoryLessonCallback(historyDelete, l.ID, page)),
		))
	}

	if nav := buildPageKeyboard(page, totalPages, buildHistoryPageCallback(page-1), buildHistoryPageCallback(page+1)); nav != nil {
		rows = append(rows, nav)
	}
	rows = append(rows, homeRow())

	return sb.String(), tgbotapi.NewInlineKeyboardMarkup(rows...)
}
