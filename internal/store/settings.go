package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/ayusman/mapreader/internal/segment"
)

// ProfileKey is the settings key of the active colour profile.
const ProfileKey = "profile"

// SettingsRepository stores key-value application settings.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get returns the value stored under key.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// GetProfile returns the stored colour profile, or ErrNotFound.
func (r *SettingsRepository) GetProfile() (segment.Profile, error) {
	var p segment.Profile
	value, err := r.Get(ProfileKey)
	if err != nil {
		return p, err
	}
	if err := sonic.UnmarshalString(value, &p); err != nil {
		return p, fmt.Errorf("decode stored profile: %w", err)
	}
	return p, nil
}

// SetProfile validates and stores a colour profile.
func (r *SettingsRepository) SetProfile(p segment.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	value, err := sonic.MarshalString(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	return r.Set(ProfileKey, value)
}
