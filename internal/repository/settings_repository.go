package repository

import (
	"context"
	"database/sql"
)

// SettingsRepo persists the admin-editable key/value settings.
type SettingsRepo struct{ DB *sql.DB }

func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{DB: db} }

// All returns every setting as a map.
func (r *SettingsRepo) All(ctx context.Context) (map[string]string, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT `key`, COALESCE(`value`,'') FROM settings")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

// Set upserts one key.
func (r *SettingsRepo) Set(ctx context.Context, key, value string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO settings (`key`,`value`) VALUES (?,?) ON DUPLICATE KEY UPDATE `value`=VALUES(`value`)",
		key, value)
	return err
}
