package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/lingo-spark-bot/internal/domain/entities"
)

// renderSession draws the screen for the session's current state and step.
func renderSession(sess *entities.Session) (string, tgbotapi.InlineKeyboardMarkup) {
	switch sess.State {
	case entities.StateLoading:
		return renderLoading(sess), buildLoadingKeyboard()
	case entities.StateError:
		return renderError(sess), buildErrorKeyboard()
	case entities.StateCompleted:
		return renderCompleted(), buildCompletedKeyboard()
	case entities.StateLesson:
		if sess.Lesson != nil {
			return renderLessonStep(sess), buildStepKeyboard(sess)
		}
	}
	return renderDashboard(sess), buildDashboardKeyboard(sess.Draft)
}

func renderDashboard(sess *entities.Session) string {
	var sb strings.Builder

	sb.WriteString(bold("⚡ Lingo Spark"))
	sb.WriteString("\n")
	sb.WriteString(md("A five minute lesson, built for you right now."))
	sb.WriteString("\n\n")
	sb.WriteString(md(fmt.Sprintf("Level: %s", levelLabel(sess.Draft.Level))))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("Vibe: %s", vibeLabel(sess.Draft.Vibe))))
	sb.WriteString("\n")
	if sess.Draft.Topic != "" {
		sb.WriteString(md("Topic: "))
		sb.WriteString(bold(sess.Draft.Topic))
	} else {
		sb.WriteString(md("Topic: surprise me"))
	}
	sb.WriteString("\n\n")
	sb.WriteString(italic("Send any text to set a topic."))
	return sb.String()
}

func renderLoading(sess *entities.Session) string {
	var sb strings.Builder
	sb.WriteString(bold("⏳ Crafting your lesson..."))
	sb.WriteString("\n\n")
	sb.WriteString(md(fmt.Sprintf("%s · %s", levelLabel(sess.Request.Level), vibeLabel(sess.Request.Vibe))))
	if sess.Request.Topic != "" {
		sb.WriteString("\n")
		sb.WriteString(md("Topic: " + sess.Request.Topic))
	}
	return sb.String()
}

func renderError(sess *entities.Session) string {
	var sb strings.Builder
	sb.WriteString(bold("⚠️ No lesson this time"))
	sb.WriteString("\n\n")
	msg := sess.Error
	if msg == "" {
		msg = msgInternalError
	}
	sb.WriteString(md(msg))
	return sb.String()
}

func renderCompleted() string {
	var sb strings.Builder
	sb.WriteString(bold("🎉 Mission accepted!"))
	sb.WriteString("\n\n")
	sb.WriteString(md("Go make it happen today. Come back tomorrow for a new spark."))
	return sb.String()
}

// stepHeader shows the step title and a dot per step.
func stepHeader(step entities.Step) string {
	var dots strings.Builder
	for i := 0; i < entities.StepCount; i++ {
		if entities.Step(i) <= step {
			dots.WriteString("●")
		} else {
			dots.WriteString("○")
		}
	}
	spec := step.Spec()
	return fmt.Sprintf("%s\n%s", bold(fmt.Sprintf("%d/%d · %s", int(step)+1, entities.StepCount, spec.Title)), md(dots.String()))
}

func renderLessonStep(sess *entities.Session) string {
	var body string
	switch sess.Step {
	case entities.StepIntro:
		body = renderIntro(sess.Lesson)
	case entities.StepVocabulary:
		body = renderVocabulary(sess.Lesson, sess.VocabIndex)
	case entities.StepPractice:
		body = renderPractice(sess)
	case entities.StepConcept:
		body = renderConcept(sess.Lesson.Concept)
	case entities.StepSimulation:
		body = renderSimulation(sess.Simulation)
	case entities.StepStory:
		body = renderStory(sess.Lesson.Story)
	case entities.StepChallenge:
		body = renderChallenge(sess.Lesson.Challenge)
	}
	return stepHeader(sess.Step) + "\n\n" + body
}

func renderIntro(l *entities.Lesson) string {
	var sb strings.Builder
	sb.WriteString(bold(l.Theme))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("%s · %s · %s", l.Date, levelLabel(l.Level), vibeLabel(l.Vibe))))
	sb.WriteString("\n\n")
	sb.WriteString(md(fmt.Sprintf("Today: %d new words, a sentence builder, one big idea, a roleplay, a short story and a mission.", len(l.Vocabulary))))
	return sb.String()
}

func masteryBar(level int) string {
	return strings.Repeat("■", level) + strings.Repeat("□", entities.MaxMastery-level)
}

func renderVocabulary(l *entities.Lesson, index int) string {
	if index < 0 || index >= len(l.Vocabulary) {
		index = 0
	}
	v := l.Vocabulary[index]

	var sb strings.Builder
	sb.WriteString(md(fmt.Sprintf("Word %d of %d", index+1, len(l.Vocabulary))))
	sb.WriteString("\n\n")
	sb.WriteString(bold(v.Word))
	if v.Pronunciation != "" {
		sb.WriteString(" ")
		sb.WriteString(md("/" + strings.Trim(v.Pronunciation, "/") + "/"))
	}
	if v.PartOfSpeech != "" {
		sb.WriteString(" ")
		sb.WriteString(italic(v.PartOfSpeech))
	}
	sb.WriteString("\n")
	sb.WriteString(md(v.Definition))
	if v.LocalizedDefinition != "" {
		sb.WriteString("\n")
		sb.WriteString(italic(v.LocalizedDefinition))
	}
	if v.Mnemonic != "" {
		sb.WriteString("\n\n")
		sb.WriteString(md("🧠 " + v.Mnemonic))
	}
	for _, ex := range v.Examples {
		sb.WriteString("\n")
		sb.WriteString(md("• " + ex))
	}
	sb.WriteString("\n\n")
	sb.WriteString(md("Mastery " + masteryBar(v.MasteryLevel())))
	return sb.String()
}

func renderPractice(sess *entities.Session) string {
	var sb strings.Builder
	p := sess.Puzzle
	if p == nil {
		sb.WriteString(bold("✅ All sentences done"))
		sb.WriteString("\n")
		sb.WriteString(md("Nice work. Move on when you are ready."))
		return sb.String()
	}

	sb.WriteString(md(fmt.Sprintf("Sentence %d of %d: tap the words in order.", sess.PuzzleIndex+1, len(sess.Lesson.Vocabulary))))
	sb.WriteString("\n\n")

	if words := p.SelectedWords(); len(words) > 0 {
		sb.WriteString(bold(strings.Join(words, " ")))
	} else {
		sb.WriteString(italic("nothing picked yet"))
	}
	sb.WriteString("\n\n")

	switch {
	case p.Solved:
		sb.WriteString(md("✅ Correct! " + p.Answer()))
	case p.Failed:
		sb.WriteString(md("❌ Not quite. Try a different order."))
	}

	if sess.HintPending {
		sb.WriteString("\n")
		sb.WriteString(italic("💡 Thinking of a hint..."))
	} else if sess.Hint != "" {
		sb.WriteString("\n")
		sb.WriteString(md("💡 " + sess.Hint))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func renderConcept(c entities.ConceptCard) string {
	var sb strings.Builder
	sb.WriteString(bold(c.Title))
	sb.WriteString("\n\n")
	sb.WriteString(md(c.Explanation))
	if c.Analogy != "" {
		sb.WriteString("\n\n")
		sb.WriteString(md("💡 Think of it like this: "))
		sb.WriteString(italic(c.Analogy))
	}
	if len(c.ConversationStarters) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(bold("Try saying"))
		for _, s := range c.ConversationStarters {
			sb.WriteString("\n")
			sb.WriteString(md("• " + s))
		}
	}
	return sb.String()
}

func renderSimulation(sim *entities.Simulation) string {
	if sim == nil {
		return md("The roleplay is not available.")
	}
	sc := sim.Scenario

	var sb strings.Builder
	sb.WriteString(md(fmt.Sprintf("📍 %s", sc.Setting)))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("🎭 You are talking to: %s", sc.Role)))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("🎯 Goal: %s", sc.Objective)))
	sb.WriteString("\n")

	// Keep the newest turns when the transcript grows long.
	var lines []string
	for _, turn := range sim.Transcript {
		who := "🎭 " + sc.Role
		if turn.Role == entities.RoleUser {
			who = "🧑 You"
		}
		lines = append(lines, bold(who+":")+" "+md(turn.Text))
	}
	budget := maxMessageRunes - 600
	start := 0
	for total := 0; start < len(lines); start++ {
		total = 0
		for _, l := range lines[start:] {
			total += len([]rune(l)) + 1
		}
		if total <= budget {
			break
		}
	}
	if start > 0 {
		sb.WriteString("\n")
		sb.WriteString(italic("earlier lines hidden"))
	}
	for _, l := range lines[start:] {
		sb.WriteString("\n")
		sb.WriteString(l)
	}

	switch {
	case sim.Pending:
		sb.WriteString("\n\n")
		sb.WriteString(italic("typing..."))
	case sim.Evaluating:
		sb.WriteString("\n\n")
		sb.WriteString(italic("scoring your conversation..."))
	case sim.Feedback != nil:
		f := sim.Feedback
		sb.WriteString("\n\n")
		sb.WriteString(bold(fmt.Sprintf("Score: %d/10", f.Score)))
		sb.WriteString("\n")
		sb.WriteString(md(f.Feedback))
		if f.Suggestion != "" {
			sb.WriteString("\n")
			sb.WriteString(md("👉 " + f.Suggestion))
		}
	default:
		sb.WriteString("\n\n")
		sb.WriteString(italic("Reply with a message to answer."))
	}
	return sb.String()
}

func renderStory(s entities.Story) string {
	var sb strings.Builder
	sb.WriteString(bold(s.Title))
	sb.WriteString("\n\n")
	sb.WriteString(md(clip(s.Content, maxMessageRunes-400)))
	return sb.String()
}

func renderChallenge(c entities.ChallengeTask) string {
	var sb strings.Builder
	sb.WriteString(bold("🎯 Your mission"))
	sb.WriteString("\n")
	sb.WriteString(md(c.Task))
	if c.Tip != "" {
		sb.WriteString("\n\n")
		sb.WriteString(italic("Tip: " + c.Tip))
	}
	return sb.String()
}
