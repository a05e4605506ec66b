package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/karitsu/gridpager/internal/domain"
)

// settingsRepo implements domain.SettingsRepository, storing one JSON
// snapshot of LayoutSettings per user.
type settingsRepo struct {
	db *sql.DB
}

func (r *settingsRepo) Get(ctx context.Context, userID int64) (*domain.LayoutSettings, error) {
	var raw string
	err := r.db.QueryRowContext(ctx,
		"SELECT settings FROM layout_settings WHERE user_id = ?", userID,
	).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}

	settings := &domain.LayoutSettings{}
	if err := json.Unmarshal([]byte(raw), settings); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return settings, nil
}

func (r *settingsRepo) Put(ctx context.Context, userID int64, settings *domain.LayoutSettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO layout_settings (user_id, settings, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET settings = excluded.settings, updated_at = excluded.updated_at`,
		userID, string(raw), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
