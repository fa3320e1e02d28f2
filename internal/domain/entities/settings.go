package entities

// UserSettings is what /settings shows and toggles.
type UserSettings struct {
	UserID           int64
	Theme            Theme
	RemindersEnabled bool
}
