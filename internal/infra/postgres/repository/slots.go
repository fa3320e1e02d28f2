package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/lingo-spark-bot/internal/infra/postgres"
)

var ErrSlotNotFound = errors.New("slot not found")

// Slot names a persisted per-user value.
type Slot string

const (
	SlotHistory Slot = "history"
	SlotStats   Slot = "stats"
	SlotTheme   Slot = "theme"
)

// SlotRepository stores whole JSON documents keyed by user and slot.
type SlotRepository struct {
	db postgres.DBTX
}

// NewSlotRepository creates a new SlotRepository on a pool or a transaction.
func NewSlotRepository(db postgres.DBTX) *SlotRepository {
	return &SlotRepository{db: db}
}

// Get returns the raw payload of a slot.
func (r *SlotRepository) Get(ctx context.Context, userID int64, slot Slot) ([]byte, error) {
	query := `
		SELECT payload
		FROM user_slots
		WHERE user_id = $1 AND slot = $2
	`

	var payload []byte
	err := r.db.QueryRow(ctx, query, userID, string(slot)).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("get slot %s: %w", slot, err)
	}

	return payload, nil
}

// Put overwrites a slot with the payload.
func (r *SlotRepository) Put(ctx context.Context, userID int64, slot Slot, payload []byte) error {
	query := `
		INSERT INTO user_slots (user_id, slot, payload, updated_at)
		VALUES ($1, $2, $3::jsonb, NOW())
		ON CONFLICT (user_id, slot) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.Exec(ctx, query, userID, string(slot), string(payload)); err != nil {
		return fmt.Errorf("put slot %s: %w", slot, err)
	}

	return nil
}

// Lock serializes writers of one user's slots until the surrounding
// transaction ends. It also covers users with no slot rows yet.
func (r *SlotRepository) Lock(ctx context.Context, userID int64) error {
	if _, err := r.db.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", userID); err != nil {
		return fmt.Errorf("lock slots: %w", err)
	}
	return nil
}
