package service

import (
	"context"
	"fmt"

	"github.com/aliskhannn/lingo-spark-bot/internal/domain/entities"
)

type SettingsService struct {
	users UserRepository
	store ProgressStore
}

func NewSettingsService(users UserRepository, store ProgressStore) *SettingsService {
	return &SettingsService{users: users, store: store}
}

func (s *SettingsService) Get(ctx context.Context, userID int64) (*entities.UserSettings, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	theme, err := s.store.LoadTheme(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &entities.UserSettings{
		UserID:           userID,
		Theme:            theme,
		RemindersEnabled: user.RemindersEnabled,
	}, nil
}

// ToggleTheme flips light and dark and returns the new settings.
func (s *SettingsService) ToggleTheme(ctx context.Context, userID int64) (*entities.UserSettings, error) {
	theme, err := s.store.LoadTheme(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveTheme(ctx, userID, theme.Toggle()); err != nil {
		return nil, fmt.Errorf("toggle theme: %w", err)
	}
	return s.Get(ctx, userID)
}

// ToggleReminders flips the daily reminder and returns the new settings.
func (s *SettingsService) ToggleReminders(ctx context.Context, userID int64) (*entities.UserSettings, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetReminders(ctx, userID, !user.RemindersEnabled); err != nil {
		return nil, fmt.Errorf("toggle reminders: %w", err)
	}
	return s.Get(ctx, userID)
}
