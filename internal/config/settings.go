package config

import (
	"context"
	"strings"
	"sync"
)

// SettingsStore is the slice of the settings repository the snapshot
// needs.  Implemented by repository.SettingsRepo.
type SettingsStore interface {
	All(ctx context.Context) (map[string]string, error)
}

// Settings is an in-process snapshot of the admin-editable key/value
// settings.  It is loaded once at startup and reloaded explicitly when
// an administrator saves settings, so request handling never performs
// ambient per-call lookups for configuration.
type Settings struct {
	store SettingsStore

	mu     sync.RWMutex
	values map[string]string

	defaultWebhook string
}

// NewSettings builds a snapshot over the given store.  defaultWebhook
// is used when no webhook_url row exists.
func NewSettings(store SettingsStore, defaultWebhook string) *Settings {
	return &Settings{
		store:          store,
		values:         map[string]string{},
		defaultWebhook: defaultWebhook,
	}
}

// Reload replaces the snapshot with the current table contents.
func (s *Settings) Reload(ctx context.Context) error {
	values, err := s.store.All(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.values = values
	s.mu.Unlock()
	return nil
}

// Get returns the value for key, or "" when absent.
func (s *Settings) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

// All returns a copy of the snapshot.
func (s *Settings) All() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// WebhookURL returns the notification webhook endpoint, falling back
// to the configured default when unset.
func (s *Settings) WebhookURL() string {
	if v := strings.TrimSpace(s.Get("webhook_url")); v != "" {
		return v
	}
	return s.defaultWebhook
}

// DebugMode reports whether the debug_mode setting is "true".
func (s *Settings) DebugMode() bool {
	return strings.EqualFold(strings.TrimSpace(s.Get("debug_mode")), "true")
}
