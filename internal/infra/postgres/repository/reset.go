package repository

import (
	"context"
	"fmt"

	"github.com/aliskhannn/lingo-spark-bot/internal/infra/postgres"
)

type ResetRepository struct {
	db postgres.DBTX
}

func NewResetRepository(db postgres.DBTX) *ResetRepository {
	return &ResetRepository{db: db}
}

// ResetUser drops every stored slot and turns reminders back on.
// The user row itself survives so the chat stays registered.
func (s *ResetRepository) ResetUser(ctx context.Context, userID int64) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM user_slots WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete user_slots: %w", err)
	}
	if _, err := s.db.Exec(ctx, `UPDATE users SET reminders_enabled = TRUE WHERE id = $1`, userID); err != nil {
		return fmt.Errorf("enable reminders: %w", err)
	}

	return nil
}
