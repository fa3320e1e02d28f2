package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/lingo-spark-bot/internal/infra/postgres/repository"
)

// ResetService wipes a user's history, stats and theme.
type ResetService struct {
	tr       Transactor
	sessions SessionStore
}

func NewResetService(tr Transactor, sessions SessionStore) *ResetService {
	return &ResetService{
		tr:       tr,
		sessions: sessions,
	}
}

func (s *ResetService) ResetUser(ctx context.Context, userID int64) error {
	err := s.tr.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return repository.NewResetRepository(tx).ResetUser(ctx, userID)
	})
	if err != nil {
		return err
	}

	s.sessions.Delete(userID)
	return nil
}
