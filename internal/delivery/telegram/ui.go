package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/lingo-spark-bot/internal/domain/entities"
)

const tilesPerRow = 3

// buildPageKeyboard builds the prev/next row of a paged list. It returns nil
// when there is a single page.
func buildPageKeyboard(page, totalPages int, prevData, nextData string) []tgbotapi.InlineKeyboardButton {
	if totalPages <= 1 {
		return nil
	}

	var row []tgbotapi.InlineKeyboardButton
	if page > 0 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("◀️ Newer", prevData))
	}
	row = append(row, tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d/%d", page+1, totalPages), buildHistoryPageCallback(page)))
	if page < totalPages-1 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("Older ▶️", nextData))
	}
	return row
}

func exitRow() []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✖️ Exit", buildCallback(actionExit)),
	)
}

func homeRow() []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🏠 Dashboard", buildCallback(actionHome)),
	)
}

func checked(label string, on bool) string {
	if on {
		return "✅ " + label
	}
	return label
}

// buildDashboardKeyboard shows level and vibe pickers with the current choice marked.
func buildDashboardKeyboard(draft entities.GenerationRequest) tgbotapi.InlineKeyboardMarkup {
	var levels []tgbotapi.InlineKeyboardButton
	for _, l := range entities.Levels {
		levels = append(levels, tgbotapi.NewInlineKeyboardButtonData(
			checked(titleCase(string(l)), draft.Level == l),
			buildLevelCallback(string(l)),
		))
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	rows = append(rows, levels)

	var vibes []tgbotapi.InlineKeyboardButton
	for _, v := range entities.Vibes {
		vibes = append(vibes, tgbotapi.NewInlineKeyboardButtonData(
			checked(vibeLabel(v), draft.Vibe == v),
			buildVibeCallback(string(v)),
		))
		if len(vibes) == 2 {
			rows = append(rows, vibes)
			vibes = nil
		}
	}
	if len(vibes) > 0 {
		rows = append(rows, vibes)
	}

	if draft.Topic != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🧹 Clear topic", buildCallback(actionTopic, topicClear)),
		))
	}

	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚡ Start lesson", buildCallback(actionStart)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📚 History", buildHistoryPageCallback(0)),
			tgbotapi.NewInlineKeyboardButtonData("📊 Stats", buildCallback(actionStats)),
			tgbotapi.NewInlineKeyboardButtonData("⚙️", buildSettingsCallback(settingsMenu)),
		),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func buildLoadingKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✖️ Cancel", buildCallback(actionExit)),
		),
	)
}

func buildErrorKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Retry", buildCallback(actionRetry)),
		),
		homeRow(),
	)
}

func buildCompletedKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(homeRow())
}

func nextRow(label string) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(label, buildCallback(actionNext)),
	)
}

// buildStepKeyboard returns the buttons of the current lesson step. Every
// step ends with an Exit row.
func buildStepKeyboard(sess *entities.Session) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	switch sess.Step {
	case entities.StepIntro:
		rows = append(rows, nextRow("Let's go ▶️"))
	case entities.StepVocabulary:
		rows = append(rows, vocabularyRows(sess)...)
	case entities.StepPractice:
		rows = append(rows, practiceRows(sess)...)
	case entities.StepSimulation:
		rows = append(rows, simulationRows(sess.Simulation)...)
	case entities.StepChallenge:
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎯 Accept mission", buildCallback(actionMission)),
		))
	default:
		rows = append(rows, nextRow("Next ▶️"))
	}

	rows = append(rows, exitRow())
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func vocabularyRows(sess *entities.Session) [][]tgbotapi.InlineKeyboardButton {
	var rows [][]tgbotapi.InlineKeyboardButton

	var words []tgbotapi.InlineKeyboardButton
	for i, v := range sess.Lesson.Vocabulary {
		words = append(words, tgbotapi.NewInlineKeyboardButtonData(
			checked(v.Word, i == sess.VocabIndex),
			buildWordCallback(i),
		))
		if len(words) == tilesPerRow {
			rows = append(rows, words)
			words = nil
		}
	}
	if len(words) > 0 {
		rows = append(rows, words)
	}

	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔊 Listen", buildSayCallback(sess.VocabIndex)),
		),
		nextRow("Practice ▶️"),
	)
	return rows
}

func tileRows(tiles []entities.Tile, sub string) [][]tgbotapi.InlineKeyboardButton {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, t := range tiles {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(t.Word, buildPuzzleCallback(sub, t.ID)))
		if len(row) == tilesPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}

func practiceRows(sess *entities.Session) [][]tgbotapi.InlineKeyboardButton {
	p := sess.Puzzle
	if p == nil {
		return [][]tgbotapi.InlineKeyboardButton{nextRow("Next ▶️")}
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	if p.Solved {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➡️ Next sentence", buildPuzzleCallback(puzzleNext)),
		))
	} else {
		rows = append(rows, tileRows(p.Selection, puzzleUnpick)...)
		rows = append(rows, tileRows(p.Pool, puzzlePick)...)

		controls := tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("↩️ Reset", buildPuzzleCallback(puzzleReset)),
		)
		if len(p.Pool) == 0 {
			controls = append(controls, tgbotapi.NewInlineKeyboardButtonData("✔️ Check", buildPuzzleCallback(puzzleCheck)))
		}
		rows = append(rows, controls)
	}

	if !sess.HintPending && sess.Hint == "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💡 Hint", buildPuzzleCallback(puzzleHint)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⏭ Skip", buildCallback(actionSkip)),
	))
	return rows
}

func simulationRows(sim *entities.Simulation) [][]tgbotapi.InlineKeyboardButton {
	if sim == nil {
		return [][]tgbotapi.InlineKeyboardButton{nextRow("Next ▶️")}
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	if sim.CanEvaluate() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏁 Finish and get feedback", buildCallback(actionEvaluate)),
		))
	}
	if sim.Feedback != nil {
		rows = append(rows, nextRow("Next ▶️"))
	} else {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏭ Skip", buildCallback(actionSkip)),
		))
	}
	return rows
}

func buildReminderKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚡ Start today's lesson", buildCallback(actionStart)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔕 Turn off reminders", buildSettingsCallback(settingsReminders)),
		),
	)
}

func buildStatsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Refresh", buildCallback(actionStats)),
			tgbotapi.NewInlineKeyboardButtonData("📚 History", buildHistoryPageCallback(0)),
		),
		homeRow(),
	)
}

func buildSettingsKeyboard(s *entities.UserSettings) tgbotapi.InlineKeyboardMarkup {
	themeLabel := "🌙 PDF theme: dark"
	if s.Theme != entities.ThemeDark {
		themeLabel = "☀️ PDF theme: light"
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(themeLabel, buildSettingsCallback(settingsTheme)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔔 Reminders: "+formatBool(s.RemindersEnabled), buildSettingsCallback(settingsReminders)),
		),
		homeRow(),
	)
}

func buildResetKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Yes, erase everything", buildResetConfirmCallback()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Cancel", buildResetCancelCallback()),
		),
	)
}
