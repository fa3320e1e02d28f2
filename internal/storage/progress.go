package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/aliskhannn/lingo-spark-bot/internal/domain/entities"
	"github.com/aliskhannn/lingo-spark-bot/internal/infra/postgres"
	"github.com/aliskhannn/lingo-spark-bot/internal/infra/postgres/repository"
)

// SlotStore is the raw slot access implemented by repository.SlotRepository.
type SlotStore interface {
	Get(ctx context.Context, userID int64, slot repository.Slot) ([]byte, error)
	Put(ctx context.Context, userID int64, slot repository.Slot, payload []byte) error
}

// Transactor is implemented by postgres.Transactor.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
}

// LockingSlotStore is a SlotStore inside a transaction that can hold the
// user's write lock until commit.
type LockingSlotStore interface {
	SlotStore
	Lock(ctx context.Context, userID int64) error
}

// TxSlots binds a LockingSlotStore to a transaction.
type TxSlots func(tx pgx.Tx) LockingSlotStore

// ProgressStore persists lesson history, stats and theme as whole JSON slots.
// Reads are best-effort: anything that does not decode falls back to defaults.
type ProgressStore struct {
	slots        SlotStore
	tr           Transactor
	txSlots      TxSlots
	historyLimit int
	logger       *zap.Logger
}

func NewProgressStore(slots SlotStore, tr Transactor, txSlots TxSlots, historyLimit int, logger *zap.Logger) *ProgressStore {
	if historyLimit <= 0 {
		historyLimit = entities.DefaultHistoryLimit
	}
	return &ProgressStore{
		slots:        slots,
		tr:           tr,
		txSlots:      txSlots,
		historyLimit: historyLimit,
		logger:       logger,
	}
}

// NewPostgresProgressStore keeps the slots in the user_slots table.
func NewPostgresProgressStore(db postgres.DBTX, tr Transactor, historyLimit int, logger *zap.Logger) *ProgressStore {
	txSlots := func(tx pgx.Tx) LockingSlotStore { return repository.NewSlotRepository(tx) }
	return NewProgressStore(repository.NewSlotRepository(db), tr, txSlots, historyLimit, logger)
}

func (s *ProgressStore) load(ctx context.Context, slots SlotStore, userID int64, slot repository.Slot) ([]byte, bool, error) {
	raw, err := slots.Get(ctx, userID, slot)
	if err != nil {
		if errors.Is(err, repository.ErrSlotNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load %s: %w", slot, err)
	}
	if !gjson.ValidBytes(raw) {
		s.discard(userID, slot, "invalid json")
		return nil, false, nil
	}
	return raw, true, nil
}

func (s *ProgressStore) discard(userID int64, slot repository.Slot, reason string) {
	s.logger.Debug("discarding stored slot",
		zap.Int64("user_id", userID),
		zap.String("slot", string(slot)),
		zap.String("reason", reason),
	)
}

// LoadHistory returns the stored lessons newest first.
// Items that fail to decode or validate are dropped.
func (s *ProgressStore) LoadHistory(ctx context.Context, userID int64) (entities.History, error) {
	return s.readHistory(ctx, s.slots, userID)
}

func (s *ProgressStore) readHistory(ctx context.Context, slots SlotStore, userID int64) (entities.History, error) {
	raw, ok, err := s.load(ctx, slots, userID, repository.SlotHistory)
	if err != nil || !ok {
		return entities.History{}, err
	}

	doc := gjson.ParseBytes(raw)
	if !doc.IsArray() {
		s.discard(userID, repository.SlotHistory, "not an array")
		return entities.History{}, nil
	}

	items := doc.Array()
	history := lo.FilterMap(items, func(item gjson.Result, i int) (entities.Lesson, bool) {
		var l entities.Lesson
		if err := json.Unmarshal([]byte(item.Raw), &l); err != nil {
			return l, false
		}
		if err := l.Validate(); err != nil {
			return l, false
		}
		return l, true
	})
	if dropped := len(items) - len(history); dropped > 0 {
		s.logger.Debug("dropped malformed history items",
			zap.Int64("user_id", userID),
			zap.Int("dropped", dropped),
		)
	}

	return entities.History(history).Truncate(s.historyLimit), nil
}

// LoadStats returns the stored stats, or fresh stats when none decode.
func (s *ProgressStore) LoadStats(ctx context.Context, userID int64) (entities.UserStats, error) {
	return s.readStats(ctx, s.slots, userID)
}

func (s *ProgressStore) readStats(ctx context.Context, slots SlotStore, userID int64) (entities.UserStats, error) {
	raw, ok, err := s.load(ctx, slots, userID, repository.SlotStats)
	if err != nil || !ok {
		return entities.NewUserStats(), err
	}

	var stats entities.UserStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		s.discard(userID, repository.SlotStats, err.Error())
		return entities.NewUserStats(), nil
	}
	stats.Normalize()

	return stats, nil
}

// LoadTheme returns the stored theme, light by default.
func (s *ProgressStore) LoadTheme(ctx context.Context, userID int64) (entities.Theme, error) {
	raw, ok, err := s.load(ctx, s.slots, userID, repository.SlotTheme)
	if err != nil || !ok {
		return entities.ThemeLight, err
	}

	theme := entities.Theme(gjson.ParseBytes(raw).String())
	if !theme.Valid() {
		s.discard(userID, repository.SlotTheme, "unknown theme")
		return entities.ThemeLight, nil
	}
	return theme, nil
}

// UpdateProgress loads history and stats under the user's lock, passes them
// to fn and writes both back in the same transaction. Nothing is written when
// fn returns an error.
func (s *ProgressStore) UpdateProgress(ctx context.Context, userID int64, fn func(history *entities.History, stats *entities.UserStats) error) error {
	err := s.tr.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		slots := s.txSlots(tx)
		if err := slots.Lock(ctx, userID); err != nil {
			return err
		}

		history, err := s.readHistory(ctx, slots, userID)
		if err != nil {
			return err
		}
		stats, err := s.readStats(ctx, slots, userID)
		if err != nil {
			return err
		}

		if err := fn(&history, &stats); err != nil {
			return err
		}

		historyJSON, err := json.Marshal(history.Truncate(s.historyLimit))
		if err != nil {
			return fmt.Errorf("encode history: %w", err)
		}
		statsJSON, err := json.Marshal(stats)
		if err != nil {
			return fmt.Errorf("encode stats: %w", err)
		}

		if err := slots.Put(ctx, userID, repository.SlotHistory, historyJSON); err != nil {
			return err
		}
		return slots.Put(ctx, userID, repository.SlotStats, statsJSON)
	})
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}

	return nil
}

// SaveTheme overwrites the theme slot.
func (s *ProgressStore) SaveTheme(ctx context.Context, userID int64, theme entities.Theme) error {
	if !theme.Valid() {
		return fmt.Errorf("save theme: unknown theme %q", theme)
	}
	payload, err := json.Marshal(theme)
	if err != nil {
		return fmt.Errorf("encode theme: %w", err)
	}
	if err := s.slots.Put(ctx, userID, repository.SlotTheme, payload); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}
