package pg

import (
	"context"
	"log/slog"

	"opensms/internal/store"
)

// Get implements settings.Source against the default_settings table.
// Lookup failures fall back to the caller's default; configuration reads
// must never take a request down.
func (s *Store) Get(ctx context.Context, category, subcategory, defaultValue string) string {
	row := s.DB.QueryRow(ctx, `
		SELECT default_setting_value
		FROM v_default_settings
		WHERE default_setting_category=$1 AND default_setting_subcategory=$2
		AND default_setting_enabled = 'true'
		LIMIT 1
	`, category, subcategory)

	var v string
	if err := row.Scan(&v); err != nil {
		if !noRows(err) {
			slog.Error("setting lookup failed", "err", err, "category", category, "subcategory", subcategory)
		}
		return defaultValue
	}
	return v
}

// UpsertDefaultSettings records an adapter's declared options so they
// appear in the host configuration UI. Existing values are left alone.
func (s *Store) UpsertDefaultSettings(ctx context.Context, defaults []store.DefaultSetting) error {
	if len(defaults) == 0 {
		return nil
	}
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, d := range defaults {
		enabled := "false"
		if d.Enabled {
			enabled = "true"
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO v_default_settings (default_setting_uuid, default_setting_category, default_setting_subcategory,
				default_setting_name, default_setting_value, default_setting_enabled)
			VALUES ($1,$2,$3,$4,$5,$6)
			ON CONFLICT (default_setting_uuid) DO NOTHING
		`, d.SettingUUID, d.Category, d.Subcategory, d.Name, d.Value, enabled)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
