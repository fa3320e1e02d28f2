package gemini

import (
	"fmt"
	"strings"

	"github.com/aliskhannn/lingo-spark-bot/internal/domain/entities"
)

const lessonSystem = `You are Lingo Spark, a coach who writes five-minute daily lessons on English vocabulary and everyday communication.
Keep every field concise. Examples must be complete sentences that use the word exactly as spelled.`

var vibeGuides = map[entities.Vibe]string{
	entities.VibeProfessional: "polished and workplace-oriented",
	entities.VibeCasual:       "relaxed and friendly",
	entities.VibeWitty:        "playful, with light humour",
	entities.VibeAcademic:     "precise and analytical",
}

var levelGuides = map[entities.Level]string{
	entities.LevelBeginner:     "common words, short sentences",
	entities.LevelIntermediate: "useful but less common words, natural idioms",
	entities.LevelAdvanced:     "nuanced vocabulary, subtle register differences",
}

func lessonPrompt(req entities.GenerationRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create today's lesson.\nLevel: %s (%s).\nTone: %s (%s).\n",
		req.Level, levelGuides[req.Level], req.Vibe, vibeGuides[req.Vibe])
	if req.Topic != "" {
		fmt.Fprintf(&b, "Focus the whole lesson on: %s.\n", req.Topic)
	} else {
		b.WriteString("Pick a fresh everyday communication theme.\n")
	}
	b.WriteString("Return 3 to 5 vocabulary entries, one concept, a roleplay scenario, a short story and one challenge.")
	return b.String()
}

func roleplaySystem(s entities.SimulationScenario) string {
	return fmt.Sprintf(`You are playing a character in a short speaking practice.
Setting: %s
Your role: %s
The learner's goal: %s
Stay in character. Reply with one or two natural sentences and never mention that this is practice.`,
		s.Setting, s.Role, s.Objective)
}

func evaluationPrompt(s entities.SimulationScenario, transcript []entities.Turn) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Score the learner's side of this roleplay from 1 to 10 against the objective.\nObjective: %s\nSetting: %s\n\nTranscript:\n", s.Objective, s.Setting)
	for _, t := range transcript {
		speaker := "Learner"
		if t.Role == entities.RoleModel {
			speaker = s.Role
			if speaker == "" {
				speaker = "Partner"
			}
		}
		fmt.Fprintf(&b, "%s: %s\n", speaker, t.Text)
	}
	return b.String()
}

func hintPrompt(selection, target []string) string {
	return fmt.Sprintf(`A learner is rebuilding this sentence word by word: %q.
So far they have placed: %q.
Give one short hint (max 20 words) that helps with the next word or with the sentence structure. Do not reveal the whole sentence.`,
		strings.Join(target, " "), strings.Join(selection, " "))
}
