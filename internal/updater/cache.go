package updater

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const (
	cacheFileName = "version-check.json"

	// DefaultCacheMaxAge is how long a version check result is reused.
	DefaultCacheMaxAge = 24 * time.Hour
)

// Status is the outcome of a version check.
type Status struct {
	CurrentVersion  string    `json:"current_version"`
	Latest          Release   `json:"latest"`
	UpdateAvailable bool      `json:"update_available"`
	CheckedAt       time.Time `json:"checked_at"`
}

// LoadCache reads the cached status from dir. It returns nil, nil when
// nothing is cached.
func LoadCache(dir string) (*Status, error) {
	p := filepath.Join(dir, cacheFileName)

	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading version cache: %w", err)
	}

	var st Status
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parsing version cache: %w", err)
	}
	return &st, nil
}

// SaveCache writes st to dir.
func SaveCache(dir string, st *Status) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling version cache: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, cacheFileName), data, 0o644); err != nil {
		return fmt.Errorf("writing version cache: %w", err)
	}
	return nil
}
