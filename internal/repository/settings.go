package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const monthlyTargetKey = "monthly_target"

// SettingsRepository хранит скалярные настройки дашборда в key-value таблице.
type SettingsRepository struct {
	db *pgxpool.Pool
}

// NewSettingsRepository создает репозиторий настроек.
func NewSettingsRepository(db *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetMonthlyTarget возвращает месячную цель по выручке.
func (r *SettingsRepository) GetMonthlyTarget(ctx context.Context) (int64, error) {
	var raw string

	err := r.db.QueryRow(ctx,
		`SELECT value FROM settings WHERE key = $1`,
		monthlyTargetKey,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}

	target, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, ErrInvalid
	}

	return target, nil
}

// SetMonthlyTarget сохраняет месячную цель по выручке.
func (r *SettingsRepository) SetMonthlyTarget(ctx context.Context, target int64) error {
	if target < 0 {
		return ErrInvalid
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO settings (key, value)
		 VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		monthlyTargetKey, strconv.FormatInt(target, 10),
	)

	return err
}
