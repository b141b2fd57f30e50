package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestLoad_Defaults(t *testing.T) {
	setHome(t)
	require.NoError(t, Load())

	assert.Equal(t, Settings{
		APIURL:      "https://api.github.com/",
		RawURL:      "https://raw.githubusercontent.com",
		Concurrency: 4,
	}, Current())
}

func TestLoad_EnvOverrides(t *testing.T) {
	setHome(t)
	t.Setenv("AGMD_GITHUB_API_URL", "http://127.0.0.1:9/api/")
	t.Setenv("AGMD_FETCH_CONCURRENCY", "9")
	require.NoError(t, Load())

	s := Current()
	assert.Equal(t, "http://127.0.0.1:9/api/", s.APIURL)
	assert.Equal(t, 9, s.Concurrency)

	got, err := Get(KeyAPIURL)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9/api/", got)
}

func TestLoad_BadConcurrencyFallsBack(t *testing.T) {
	setHome(t)
	t.Setenv("AGMD_FETCH_CONCURRENCY", "lots")
	require.NoError(t, Load())
	assert.Equal(t, 4, Current().Concurrency)
}

func TestSet_PersistsFileValuesOnly(t *testing.T) {
	home := setHome(t)
	t.Setenv("AGMD_GITHUB_RAW_URL", "http://env.example")
	require.NoError(t, Load())

	require.NoError(t, Set(KeyConcurrency, "2"))
	assert.Equal(t, 2, Current().Concurrency)

	data, err := os.ReadFile(filepath.Join(home, ".agmd-cli", "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "concurrency: 2")
	assert.NotContains(t, string(data), "env.example")
	assert.NotContains(t, string(data), "api_url")

	// A fresh load sees the stored value.
	require.NoError(t, Load())
	assert.Equal(t, 2, Current().Concurrency)

	require.NoError(t, Set(KeyAPIURL, "https://ghe.example.com/api/v3/"))
	require.NoError(t, Load())
	assert.Equal(t, "https://ghe.example.com/api/v3/", Current().APIURL)
	assert.Equal(t, 2, Current().Concurrency)
}

func TestSet_Validation(t *testing.T) {
	setHome(t)
	require.NoError(t, Load())

	require.ErrorIs(t, Set("github.token", "x"), ErrUnknownKey)
	require.Error(t, Set(KeyAPIURL, "not a url"))
	require.Error(t, Set(KeyRawURL, "ftp://example.com"))
	require.Error(t, Set(KeyConcurrency, "0"))
	require.Error(t, Set(KeyConcurrency, "many"))

	_, err := Get("nope")
	require.ErrorIs(t, err, ErrUnknownKey)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, []string{KeyConcurrency, KeyAPIURL, KeyRawURL}, Keys())
}
