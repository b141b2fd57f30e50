package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agmd-labs/agmd/internal/branding"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Setting keys.
const (
	KeyAPIURL      = "github.api_url"
	KeyRawURL      = "github.raw_url"
	KeyConcurrency = "fetch.concurrency"
)

// ErrUnknownKey is returned for keys that are not settings.
var ErrUnknownKey = errors.New("unknown config key")

var defaults = map[string]any{
	KeyAPIURL:      "https://api.github.com/",
	KeyRawURL:      "https://raw.githubusercontent.com",
	KeyConcurrency: 4,
}

// Settings is the resolved view of the user settings.
type Settings struct {
	APIURL      string
	RawURL      string
	Concurrency int
}

var v = newViper()

func newViper() *viper.Viper {
	nv := viper.New()
	for k, val := range defaults {
		nv.SetDefault(k, val)
	}
	nv.SetEnvPrefix(branding.EnvPrefix())
	nv.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	nv.AutomaticEnv()
	return nv
}

// Dir returns the path to the settings directory (~/.agmd-cli/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the settings file.
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the settings directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load reads the settings file and environment. A missing file is not an
// error.
func Load() error {
	v = newViper()
	v.SetConfigFile(FilePath())
	v.SetConfigType(fileType)

	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", FilePath(), err)
	}
	return nil
}

// Keys returns every known setting key, sorted.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns a setting by key.
func Get(key string) (string, error) {
	if _, ok := defaults[key]; !ok {
		return "", fmt.Errorf("%w %q (known keys: %s)", ErrUnknownKey, key, strings.Join(Keys(), ", "))
	}
	return v.GetString(key), nil
}

// Current returns the resolved settings. An invalid concurrency falls back
// to the default.
func Current() Settings {
	n, err := cast.ToIntE(v.Get(KeyConcurrency))
	if err != nil || n < 1 {
		n = defaults[KeyConcurrency].(int)
	}
	return Settings{
		APIURL:      v.GetString(KeyAPIURL),
		RawURL:      v.GetString(KeyRawURL),
		Concurrency: n,
	}
}

// Set validates value for key and writes it to the settings file. Only the
// file's own contents are written back; defaults and environment overrides
// are not persisted.
func Set(key, value string) error {
	parsed, err := validate(key, value)
	if err != nil {
		return err
	}
	if err := EnsureDir(); err != nil {
		return err
	}

	configFile := FilePath()
	fv := viper.New()
	fv.SetConfigFile(configFile)
	fv.SetConfigType(fileType)
	if err := fv.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading %s: %w", configFile, err)
		}
	}

	fv.Set(key, parsed)
	if err := fv.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	v.Set(key, parsed)
	return nil
}

func validate(key, value string) (any, error) {
	switch key {
	case KeyAPIURL, KeyRawURL:
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("invalid value for %s: %q is not an http(s) URL", key, value)
		}
		return value, nil
	case KeyConcurrency:
		n, err := cast.ToIntE(value)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid value for %s: %q is not a positive integer", key, value)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("%w %q (known keys: %s)", ErrUnknownKey, key, strings.Join(Keys(), ", "))
	}
}
