package entities

import "time"

func testContent() LessonContent {
	return LessonContent{
		Theme: "Small Talk at Work",
		Vocabulary: []VocabularyEntry{
			{Word: "rapport", Definition: "a friendly connection", Examples: []string{"We built rapport over coffee."}},
			{Word: "segue", Definition: "a smooth transition", Examples: []string{"That was a perfect segue!"}},
			{Word: "candid", Definition: "honest and direct", Examples: []string{"Thanks for being candid, Sam."}},
		},
		Concept: ConceptCard{
			Title:                "Mirroring",
			Explanation:          "Reflect the other person's energy.",
			Analogy:              "Like dancing with a partner.",
			ConversationStarters: []string{"How was your weekend?"},
		},
		Simulation: SimulationScenario{
			Setting:     "Office kitchen",
			Role:        "New colleague",
			OpeningLine: "Hi! Is this coffee machine always this slow?",
			Objective:   "Start a friendly conversation",
		},
		Story:     Story{Title: "The Elevator", Content: "Maya pressed the button twice."},
		Challenge: ChallengeTask{Task: "Ask a colleague about their weekend.", Tip: "Follow up once."},
	}
}

func testLesson(id string) *Lesson {
	l, err := NewLesson(id, time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC), NewGenerationRequest(LevelBeginner, VibeWitty, ""), testContent())
	if err != nil {
		panic(err)
	}
	return l
}
