package application

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"medbulletin/internal/domain/repository"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

const (
	KeyRefreshInterval = "news_refresh_interval"
	KeyRetentionDays   = "news_retention_days"
	KeyNotifications   = "news_notifications"
)

// RuntimeSettings are the values the scheduler and evictor re-read on every
// use, so edits apply without a restart.
type RuntimeSettings struct {
	RefreshIntervalMinutes int  `json:"refresh_interval_minutes"`
	RetentionDays          int  `json:"retention_days"`
	NotificationsEnabled   bool `json:"notifications_enabled"`
}

// SettingsUpdate carries a partial change; nil fields are left alone.
type SettingsUpdate struct {
	RefreshIntervalMinutes *int  `json:"refresh_interval_minutes"`
	RetentionDays          *int  `json:"retention_days"`
	NotificationsEnabled   *bool `json:"notifications_enabled"`
}

type Settings struct {
	repo     repository.SettingsRepository
	defaults RuntimeSettings
	logger   log.Logger
}

func NewSettings(repo repository.SettingsRepository, defaults RuntimeSettings, logger log.Logger) *Settings {
	return &Settings{
		repo:     repo,
		defaults: defaults,
		logger:   logger,
	}
}

// RefreshInterval returns the polling interval in minutes. A value of zero or
// less disables scheduled cycles.
func (s *Settings) RefreshInterval(ctx context.Context) int {
	return s.intSetting(ctx, KeyRefreshInterval, s.defaults.RefreshIntervalMinutes)
}

func (s *Settings) RetentionDays(ctx context.Context) int {
	days := s.intSetting(ctx, KeyRetentionDays, s.defaults.RetentionDays)
	if days < 1 {
		level.Warn(s.logger).Log("msg", "retention below one day, using default", "value", days)
		return s.defaults.RetentionDays
	}
	return days
}

func (s *Settings) NotificationsEnabled(ctx context.Context) bool {
	raw, ok := s.lookup(ctx, KeyNotifications)
	if !ok {
		return s.defaults.NotificationsEnabled
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		level.Warn(s.logger).Log("msg", "malformed setting, using default", "key", KeyNotifications, "value", raw)
		return s.defaults.NotificationsEnabled
	}
	return v
}

func (s *Settings) Current(ctx context.Context) RuntimeSettings {
	return RuntimeSettings{
		RefreshIntervalMinutes: s.RefreshInterval(ctx),
		RetentionDays:          s.RetentionDays(ctx),
		NotificationsEnabled:   s.NotificationsEnabled(ctx),
	}
}

func (s *Settings) Update(ctx context.Context, u SettingsUpdate) (RuntimeSettings, error) {
	if u.RetentionDays != nil && *u.RetentionDays < 1 {
		return RuntimeSettings{}, fmt.Errorf("%w: retention_days must be at least 1", ErrInvalidSetting)
	}

	if u.RefreshIntervalMinutes != nil {
		if err := s.repo.SetSetting(ctx, KeyRefreshInterval, strconv.Itoa(*u.RefreshIntervalMinutes)); err != nil {
			return RuntimeSettings{}, fmt.Errorf("failed to save refresh interval: %w", err)
		}
	}
	if u.RetentionDays != nil {
		if err := s.repo.SetSetting(ctx, KeyRetentionDays, strconv.Itoa(*u.RetentionDays)); err != nil {
			return RuntimeSettings{}, fmt.Errorf("failed to save retention days: %w", err)
		}
	}
	if u.NotificationsEnabled != nil {
		if err := s.repo.SetSetting(ctx, KeyNotifications, strconv.FormatBool(*u.NotificationsEnabled)); err != nil {
			return RuntimeSettings{}, fmt.Errorf("failed to save notifications flag: %w", err)
		}
	}

	return s.Current(ctx), nil
}

func (s *Settings) intSetting(ctx context.Context, key string, def int) int {
	raw, ok := s.lookup(ctx, key)
	if !ok {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		level.Warn(s.logger).Log("msg", "malformed setting, using default", "key", key, "value", raw)
		return def
	}
	return v
}

func (s *Settings) lookup(ctx context.Context, key string) (string, bool) {
	raw, ok, err := s.repo.GetSetting(ctx, key)
	if err != nil {
		level.Warn(s.logger).Log("msg", "failed to read setting, using default", "key", key, "err", err)
		return "", false
	}
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return "", false
	}
	return raw, true
}
