package telegram

import (
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/lingo-spark-bot/internal/domain/entities"
)

func callbacks(kb tgbotapi.InlineKeyboardMarkup) []string {
	var out []string
	for _, row := range kb.InlineKeyboard {
		for _, b := range row {
			if b.CallbackData != nil {
				out = append(out, *b.CallbackData)
			}
		}
	}
	return out
}

func lastRow(kb tgbotapi.InlineKeyboardMarkup) []string {
	row := kb.InlineKeyboard[len(kb.InlineKeyboard)-1]
	var out []string
	for _, b := range row {
		out = append(out, *b.CallbackData)
	}
	return out
}

func TestRenderSession_EveryStepHasExit(t *testing.T) {
	for _, spec := range entities.Steps() {
		t.Run(spec.Name, func(t *testing.T) {
			sess := lessonAt(t, spec.Step)

			text, kb := renderSession(sess)

			assert.Contains(t, text, md(spec.Title))
			require.NotEmpty(t, kb.InlineKeyboard)
			assert.Equal(t, []string{actionExit}, lastRow(kb))
			for _, data := range callbacks(kb) {
				assert.LessOrEqual(t, len(data), 64, data)
			}
		})
	}
}

func TestRenderSession_States(t *testing.T) {
	sess := entities.NewSession(7, 7, entities.LevelAdvanced)
	sess.Draft.Topic = "job interviews"

	text, kb := renderSession(sess)
	assert.Contains(t, text, "job interviews")
	assert.Contains(t, callbacks(kb), actionStart)
	assert.Contains(t, callbacks(kb), buildCallback(actionTopic, topicClear))

	_, err := sess.BeginLoading(sess.Draft)
	require.NoError(t, err)
	_, kb = renderSession(sess)
	assert.Equal(t, []string{actionExit}, callbacks(kb))

	require.NoError(t, sess.FailLoading(sess.Epoch, "The lesson service is busy."))
	text, kb = renderSession(sess)
	assert.Contains(t, text, md("The lesson service is busy."))
	assert.Equal(t, []string{actionRetry, actionHome}, callbacks(kb))
}

func TestRenderVocabulary_MarksCurrentWord(t *testing.T) {
	sess := lessonAt(t, entities.StepVocabulary)
	require.NoError(t, sess.ShowWord(1))

	text, kb := renderSession(sess)

	assert.Contains(t, text, "*segue*")
	assert.Contains(t, callbacks(kb), buildSayCallback(1))
	assert.Equal(t, "✅ segue", kb.InlineKeyboard[0][1].Text)
}

func TestRenderPractice(t *testing.T) {
	sess := lessonAt(t, entities.StepPractice)
	p := sess.Puzzle
	require.NotNil(t, p)

	_, kb := renderSession(sess)
	data := callbacks(kb)
	for _, tile := range p.Pool {
		assert.Contains(t, data, buildPuzzleCallback(puzzlePick, tile.ID))
	}
	assert.NotContains(t, data, buildPuzzleCallback(puzzleCheck))
	assert.Contains(t, data, buildPuzzleCallback(puzzleHint))
	assert.Contains(t, data, actionSkip)

	for _, word := range p.Target {
		for _, tile := range p.Pool {
			if tile.Word == word {
				require.NoError(t, p.Pick(tile.ID))
				break
			}
		}
	}
	_, kb = renderSession(sess)
	assert.Contains(t, callbacks(kb), buildPuzzleCallback(puzzleCheck))

	require.True(t, p.Check())
	text, kb := renderSession(sess)
	assert.Contains(t, text, "Correct")
	assert.Contains(t, callbacks(kb), buildPuzzleCallback(puzzleNext))

	sess.Puzzle = nil
	text, kb = renderSession(sess)
	assert.Contains(t, text, "All sentences done")
	assert.Contains(t, callbacks(kb), actionNext)
}

func TestRenderSimulation(t *testing.T) {
	sess := lessonAt(t, entities.StepSimulation)
	sim := sess.Simulation
	require.NotNil(t, sim)

	text, kb := renderSession(sess)
	assert.Contains(t, text, md("Hi! Is this coffee machine always this slow?"))
	assert.NotContains(t, callbacks(kb), actionEvaluate)
	assert.Contains(t, callbacks(kb), actionSkip)

	_, err := sim.BeginTurn("Every morning, sadly.")
	require.NoError(t, err)
	text, _ = renderSession(sess)
	assert.Contains(t, text, "typing")

	sim.CommitTurn("Every morning, sadly.", "Ha! Want to grab one outside?")
	_, kb = renderSession(sess)
	assert.Contains(t, callbacks(kb), actionEvaluate)

	_, err = sim.BeginEvaluation()
	require.NoError(t, err)
	require.NoError(t, sim.SetFeedback(entities.PerformanceFeedback{Score: 8, Feedback: "Warm and natural."}))
	text, kb = renderSession(sess)
	assert.Contains(t, text, "Score: 8/10")
	assert.Contains(t, callbacks(kb), actionNext)
	assert.NotContains(t, callbacks(kb), actionSkip)
}

func TestRenderSimulation_LongTranscriptFits(t *testing.T) {
	sess := lessonAt(t, entities.StepSimulation)
	line := strings.Repeat("word ", 60)
	for i := 0; i < 40; i++ {
		_, err := sess.Simulation.BeginTurn(line)
		require.NoError(t, err)
		sess.Simulation.CommitTurn(line, line)
	}

	text, _ := renderSession(sess)

	assert.Less(t, len([]rune(text)), 4096)
	assert.Contains(t, text, "earlier lines hidden")
}

func TestBuildHistoryPage(t *testing.T) {
	base := testLesson(t)
	var history entities.History
	for i := 0; i < 7; i++ {
		l := *base
		l.ID = strings.Repeat("x", 26) + string(rune('a'+i))
		history = append(history, l)
	}

	_, kb := buildHistoryPage(history, 0)
	data := callbacks(kb)
	assert.Contains(t, data, buildHistoryLessonCallback(historyOpen, history[4].ID, 0))
	assert.NotContains(t, data, buildHistoryLessonCallback(historyOpen, history[5].ID, 0))
	assert.Contains(t, data, buildHistoryPageCallback(1))

	// Past the end clamps to the last page.
	_, kb = buildHistoryPage(history, 9)
	data = callbacks(kb)
	assert.Contains(t, data, buildHistoryLessonCallback(historyDelete, history[6].ID, 1))
	assert.Contains(t, data, buildHistoryPageCallback(0))
	for _, d := range data {
		assert.LessOrEqual(t, len(d), 64, d)
	}
}

func TestCallbackData_RoundTrip(t *testing.T) {
	cd := decodeCallback(buildPuzzleCallback(puzzlePick, 12))
	assert.Equal(t, actionPuzzle, cd.Action)
	assert.Equal(t, puzzlePick, cd.param(0))
	id, ok := cd.intParam(1)
	assert.True(t, ok)
	assert.Equal(t, 12, id)

	_, ok = decodeCallback("word:-1").intParam(0)
	assert.False(t, ok)
	assert.Equal(t, "", decodeCallback(actionStart).param(0))
}

func TestFormatStats(t *testing.T) {
	text := formatStats(entities.UserStats{Streak: 3, XP: 1450, Level: entities.LevelAdvanced}, 9)

	assert.Contains(t, text, "Streak: 3")
	assert.Contains(t, text, "Rank 2")
	assert.Contains(t, text, "450/1000")
	assert.Contains(t, text, "Lessons saved: 9")
}
