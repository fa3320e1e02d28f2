package entities

// ReminderPayload is used to build the daily nudge of a user
// who has not generated a lesson today.
type ReminderPayload struct {
	Streak    int
	XP        int
	Level     Level
	LastTheme string // theme of the newest lesson in history, if any
}

// NewReminderPayload summarizes the stats and the newest lesson.
func NewReminderPayload(stats UserStats, history History) ReminderPayload {
	p := ReminderPayload{
		Streak: stats.Streak,
		XP:     stats.XP,
		Level:  stats.Level,
	}
	if len(history) > 0 {
		p.LastTheme = history[0].Theme
	}
	return p
}
