package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/samber/oops"

	"github.com/content-platform-api/internal/database"
	"github.com/content-platform-api/internal/models"
)

// settingRepo is the concrete implementation of SettingRepository
type settingRepo struct {
	db *database.DB
}

// NewSettingRepo creates a new settings repository
func NewSettingRepo(db *database.DB) SettingRepository {
	return &settingRepo{db: db}
}

// Get retrieves a setting by key
func (r *settingRepo) Get(ctx context.Context, key string) (*models.Setting, error) {
	var setting models.Setting
	var value string
	err := r.db.Conn(ctx).QueryRowContext(ctx,
		"SELECT key, value, updated_at FROM settings WHERE key = $1", key,
	).Scan(&setting.Key, &value, &setting.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, oops.In("setting_repo").With("key", key).Wrap(err)
	}
	setting.Value = &value
	return &setting, nil
}

// Upsert inserts or replaces a setting
func (r *settingRepo) Upsert(ctx context.Context, setting *models.Setting) error {
	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`
	var value string
	if setting.Value != nil {
		value = *setting.Value
	}
	_, err := r.db.Conn(ctx).ExecContext(ctx, query, setting.Key, value, setting.UpdatedAt)
	if err != nil {
		return oops.In("setting_repo").With("key", setting.Key).Wrap(err)
	}
	return nil
}
