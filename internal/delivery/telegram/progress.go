package telegram

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/aliskhannn/lingo-spark-bot/internal/domain/entities"
)

const xpPerRank = 1000

func (h *Handler) handleStats(userID int64, messageID int) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		stats, err := h.progress.Stats(ctx, userID)
		if err != nil {
			h.logger.Error("failed to load stats", zap.Int64("user_id", userID), zap.Error(err))
			h.sendError(chatID, msgStatsUnavailable)
			return nil
		}

		history, err := h.progress.History(ctx, userID)
		if err != nil {
			h.logger.Warn("failed to load history for stats", zap.Int64("user_id", userID), zap.Error(err))
		}

		kb := buildStatsKeyboard()
		return h.present(chatID, messageID, formatStats(stats, len(history)), &kb)
	}
}

func formatStats(stats entities.UserStats, lessons int) string {
	rank, xpInRank := stats.Rank()

	var sb strings.Builder
	sb.WriteString(bold("📊 Your progress"))
	sb.WriteString("\n\n")
	sb.WriteString(md(fmt.Sprintf("🔥 Streak: %d", stats.Streak)))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("⭐ XP: %d", stats.XP)))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("🏅 Rank %d  %s %d/%d", rank, buildProgressBar(xpInRank, xpPerRank, 10), xpInRank, xpPerRank)))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("🎚 Level: %s", levelLabel(stats.Level))))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("📚 Lessons saved: %d", lessons)))
	if stats.LastLessonAt != nil {
		sb.WriteString("\n")
		sb.WriteString(md("🗓 Last lesson: " + stats.LastLessonAt.Format("Jan 2, 2006")))
	}
	return sb.String()
}

// buildProgressBar creates ASCII progress bar.
func buildProgressBar(current, total, length int) string {
	if total == 0 {
		return strings.Repeat("░", length)
	}

	filled := int(float64(current) / float64(total) * float64(length))
	if filled > length {
		filled = length
	}

	empty := length - filled

	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)
	return fmt.Sprintf("[%s]", bar)
}
