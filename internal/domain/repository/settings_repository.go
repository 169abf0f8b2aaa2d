package repository

import "context"

// SettingsRepository is a plain key-value store for runtime-editable settings.
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
}
