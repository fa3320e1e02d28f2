package entities

// Step is the index of a lesson view, 0..6.
type Step int

const (
	StepIntro Step = iota
	StepVocabulary
	StepPractice
	StepConcept
	StepSimulation
	StepStory
	StepChallenge
)

// StepSpec describes one row of the lesson step table.
type StepSpec struct {
	Step      Step
	Name      string
	Title     string
	Skippable bool
	Final     bool // the step ends with "mission accepted" instead of Next
}

var lessonSteps = [...]StepSpec{
	{Step: StepIntro, Name: "intro", Title: "Today's Spark"},
	{Step: StepVocabulary, Name: "vocabulary", Title: "Word Bank"},
	{Step: StepPractice, Name: "practice", Title: "Sentence Builder", Skippable: true},
	{Step: StepConcept, Name: "concept", Title: "Core Concept"},
	{Step: StepSimulation, Name: "simulation", Title: "Roleplay", Skippable: true},
	{Step: StepStory, Name: "story", Title: "Story Time"},
	{Step: StepChallenge, Name: "challenge", Title: "Daily Mission", Final: true},
}

// StepCount is the number of steps in a lesson.
const StepCount = len(lessonSteps)

// Steps returns a copy of the step table.
func Steps() []StepSpec {
	out := make([]StepSpec, len(lessonSteps))
	copy(out, lessonSteps[:])
	return out
}

// Valid reports whether the step is inside the table.
func (s Step) Valid() bool {
	return s >= 0 && int(s) < StepCount
}

// Spec returns the table row of the step.
func (s Step) Spec() StepSpec {
	if !s.Valid() {
		return StepSpec{Step: s}
	}
	return lessonSteps[s]
}

// Next returns the following step. ok is false on the final step.
func (s Step) Next() (Step, bool) {
	if !s.Valid() || s.Spec().Final {
		return s, false
	}
	return s + 1, true
}
