package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/lingo-spark-bot/internal/domain/entities"
	"github.com/aliskhannn/lingo-spark-bot/internal/infra/postgres"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository provides access to user data in the database.
type UserRepository struct {
	db postgres.DBTX
}

// NewUserRepository creates a new UserRepository with the provided database pool.
func NewUserRepository(db postgres.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Save inserts a new user or refreshes the chat of an existing one.
// It reports whether the user was created.
func (r *UserRepository) Save(ctx context.Context, user *entities.User) (bool, error) {
	query := `
		INSERT INTO users (id, chat_id, is_active, reminders_enabled, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			chat_id = EXCLUDED.chat_id,
			is_active = EXCLUDED.is_active
		RETURNING (xmax = 0) AS created
	`

	var created bool
	err := r.db.QueryRow(ctx, query,
		user.ID, user.ChatID, user.IsActive, user.RemindersEnabled, user.CreatedAt,
	).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("save user: %w", err)
	}

	return created, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*entities.User, error) {
	query := `
		SELECT id, chat_id, is_active, reminders_enabled, created_at
		FROM users
		WHERE id = $1
	`

	var user entities.User
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&user.ID,
		&user.ChatID,
		&user.IsActive,
		&user.RemindersEnabled,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

// SetReminders switches the daily reminder for a user.
func (r *UserRepository) SetReminders(ctx context.Context, userID int64, enabled bool) error {
	tag, err := r.db.Exec(ctx, "UPDATE users SET reminders_enabled = $1 WHERE id = $2", enabled, userID)
	if err != nil {
		return fmt.Errorf("set reminders: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Deactivate marks a user who blocked the bot.
func (r *UserRepository) Deactivate(ctx context.Context, userID int64) error {
	if _, err := r.db.Exec(ctx, "UPDATE users SET is_active = FALSE WHERE id = $1", userID); err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	return nil
}

// ListReminderCandidates returns a page of active users with reminders on.
func (r *UserRepository) ListReminderCandidates(ctx context.Context, limit, offset int) ([]entities.User, error) {
	query := `
		SELECT id, chat_id, is_active, reminders_enabled, created_at
		FROM users
		WHERE is_active AND reminders_enabled
		ORDER BY id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list reminder candidates: %w", err)
	}

	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entities.User, error) {
		var u entities.User
		err := row.Scan(&u.ID, &u.ChatID, &u.IsActive, &u.RemindersEnabled, &u.CreatedAt)
		return u, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan reminder candidates: %w", err)
	}

	return users, nil
}
