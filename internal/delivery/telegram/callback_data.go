package telegram

import (
	"strconv"
	"strings"
)

// Callback action constants.
const (
	actionLevel    = "lvl"
	actionVibe     = "vibe"
	actionTopic    = "topic"
	actionStart    = "go"
	actionRetry    = "retry"
	actionExit     = "exit"
	actionNext     = "next"
	actionSkip     = "skip"
	actionMission  = "mission"
	actionHome     = "home"
	actionWord     = "word"
	actionSay      = "say"
	actionPuzzle   = "pz"
	actionEvaluate = "eval"
	actionHistory  = "hist"
	actionStats    = "stats"
	actionSettings = "settings"
	actionReset    = "reset"
)

// Topic sub-actions.
const (
	topicClear = "clear"
)

// Puzzle sub-actions.
const (
	puzzlePick   = "pick"
	puzzleUnpick = "unpick"
	puzzleReset  = "reset"
	puzzleCheck  = "check"
	puzzleNext   = "next"
	puzzleHint   = "hint"
)

// History sub-actions.
const (
	historyPage   = "page"
	historyOpen   = "open"
	historyExport = "pdf"
	historyDelete = "del"
)

// Settings sub-actions.
const (
	settingsMenu      = "menu"
	settingsTheme     = "theme"
	settingsReminders = "reminders"
)

const (
	resetConfirm = "confirm"
	resetCancel  = "cancel"
)

// callbackData represents structured callback data.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

// decodeCallback parses callback data string.
func decodeCallback(data string) callbackData {
	parts := strings.Split(data, ":")
	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

// param returns the i-th parameter or "".
func (cd callbackData) param(i int) string {
	if i < 0 || i >= len(cd.Params) {
		return ""
	}
	return cd.Params[i]
}

// intParam parses the i-th parameter as a non-negative int.
func (cd callbackData) intParam(i int) (int, bool) {
	n, err := strconv.Atoi(cd.param(i))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func buildCallback(action string, params ...string) string {
	return callbackData{Action: action, Params: params}.encode()
}

func buildLevelCallback(level string) string { return buildCallback(actionLevel, level) }

func buildVibeCallback(vibe string) string { return buildCallback(actionVibe, vibe) }

func buildWordCallback(index int) string {
	return buildCallback(actionWord, strconv.Itoa(index))
}

func buildSayCallback(index int) string {
	return buildCallback(actionSay, strconv.Itoa(index))
}

func buildPuzzleCallback(sub string, tileID ...int) string {
	params := []string{sub}
	for _, id := range tileID {
		params = append(params, strconv.Itoa(id))
	}
	return buildCallback(actionPuzzle, params...)
}

func buildHistoryPageCallback(page int) string {
	return buildCallback(actionHistory, historyPage, strconv.Itoa(page))
}

// buildHistoryLessonCallback addresses one stored lesson. page is where the
// list is redrawn after a delete.
func buildHistoryLessonCallback(sub, lessonID string, page int) string {
	return buildCallback(actionHistory, sub, lessonID, strconv.Itoa(page))
}

func buildSettingsCallback(sub string) string {
	return buildCallback(actionSettings, sub)
}

func buildResetConfirmCallback() string {
	return buildCallback(actionReset, resetConfirm)
}

func buildResetCancelCallback() string {
	return buildCallback(actionReset, resetCancel)
}
