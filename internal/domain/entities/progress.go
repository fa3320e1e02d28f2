package entities

import (
	"time"
)

const (
	DefaultXPAward      = 150
	DefaultHistoryLimit = 50
	xpPerRank           = 1000
)

// UserStats is the per-user streak and experience counter.
type UserStats struct {
	Streak       int        `json:"streak"`
	XP           int        `json:"xp"`
	Level        Level      `json:"level"`
	LastLessonAt *time.Time `json:"lastLessonAt,omitempty"`
}

// NewUserStats returns the stats of a user who has never finished a generation.
func NewUserStats() UserStats {
	return UserStats{Level: DefaultLevel}
}

// Normalize repairs values that can not come from ApplyGeneration.
func (s *UserStats) Normalize() {
	if s.Streak < 0 {
		s.Streak = 0
	}
	if s.XP < 0 {
		s.XP = 0
	}
	if !s.Level.Valid() {
		s.Level = DefaultLevel
	}
}

// ApplyGeneration records a successful lesson generation.
func (s *UserStats) ApplyGeneration(req GenerationRequest, now time.Time, xpAward int) {
	s.Streak++
	s.XP += xpAward
	if req.Level.Valid() {
		s.Level = req.Level
	}
	t := now.UTC()
	s.LastLessonAt = &t
}

// Rank returns the 1-based rank and the XP collected inside it.
func (s UserStats) Rank() (rank, xpInRank int) {
	return s.XP/xpPerRank + 1, s.XP % xpPerRank
}

// LessonToday reports whether a lesson was generated on the UTC day of now.
func (s UserStats) LessonToday(now time.Time) bool {
	if s.LastLessonAt == nil {
		return false
	}
	y1, m1, d1 := s.LastLessonAt.UTC().Date()
	y2, m2, d2 := now.UTC().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// History holds lessons newest first.
type History []Lesson

// Prepend inserts the lesson at the front and truncates to limit.
func (h History) Prepend(l Lesson, limit int) History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	out := make(History, 0, min(len(h)+1, limit))
	out = append(out, l)
	for _, existing := range h {
		if len(out) >= limit {
			break
		}
		if existing.ID == l.ID {
			continue
		}
		out = append(out, existing)
	}
	return out
}

// Truncate caps the history at limit entries.
func (h History) Truncate(limit int) History {
	if limit > 0 && len(h) > limit {
		return h[:limit]
	}
	return h
}

// Remove drops the entry with the given id and keeps the rest in order.
func (h History) Remove(id string) (History, bool) {
	out := make(History, 0, len(h))
	found := false
	for _, l := range h {
		if !found && l.ID == id {
			found = true
			continue
		}
		out = append(out, l)
	}
	return out, found
}

// Find returns the lesson with the given id.
func (h History) Find(id string) (*Lesson, bool) {
	for i := range h {
		if h[i].ID == id {
			l := h[i]
			return &l, true
		}
	}
	return nil, false
}

// Theme is the light/dark preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Valid reports whether the theme is known.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}
