package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return Load(fs)
}

func TestDefaults(t *testing.T) {
	cfg, err := load(t, "--config", "")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:4173", cfg.Server.Addr)
	assert.Equal(t, "json", cfg.Data.Driver)
	assert.Equal(t, "data/cards.json", cfg.Data.Catalog)
	assert.Equal(t, "data/progress.json", cfg.Data.Progress)
	assert.Equal(t, "English", cfg.Deck.TargetFallback)
	assert.Equal(t, "Indonesia", cfg.Deck.NativeFallback)
	assert.Equal(t, "Indonesia", cfg.Deck.Native)
	assert.Equal(t, "guest", cfg.Deck.Profile)
	assert.Equal(t, []string{"Indonesia", "English", "Japanese", "Korean"}, cfg.Deck.Languages)
}

func TestPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dailycards.yaml")
	yamlDoc := `
server:
  addr: 127.0.0.1:9000
log:
  level: debug
data:
  driver: sqlite
  sqlite: from-file.db
deck:
  target: Japanese
  target-fallback: Japanese
  native-fallback: Japanese
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o644))

	t.Setenv("DAILYCARDS_DATA_SQLITE", "from-env.db")
	t.Setenv("DAILYCARDS_DECK_LANGUAGES", "English, Korean")
	t.Setenv("DAILYCARDS_DECK_NATIVE_FALLBACK", "Korean")

	cfg, err := load(t, "--config", path, "--server-addr", "127.0.0.1:9100")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9100", cfg.Server.Addr, "flag beats file")
	assert.Equal(t, "debug", cfg.Log.Level, "file beats default")
	assert.Equal(t, "sqlite", cfg.Data.Driver)
	assert.Equal(t, "from-env.db", cfg.Data.SQLite, "env beats file")
	assert.Equal(t, "Japanese", cfg.Deck.Target)
	assert.Equal(t, "Japanese", cfg.Deck.TargetFallback, "dashed keys read from file")
	assert.Equal(t, "Korean", cfg.Deck.NativeFallback, "dashed keys read from env")
	assert.Equal(t, []string{"English", "Korean"}, cfg.Deck.Languages)
}

func TestMissingFile(t *testing.T) {
	t.Run("implicit default path may be absent", func(t *testing.T) {
		wd, wdErr := os.Getwd()
		require.NoError(t, wdErr)
		require.NoError(t, os.Chdir(t.TempDir()))
		t.Cleanup(func() { _ = os.Chdir(wd) })
		_, err := load(t)
		assert.NoError(t, err)
	})

	t.Run("explicit path must exist", func(t *testing.T) {
		_, err := load(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestValidation(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{"bad driver", []string{"--data-driver", "postgres"}},
		{"bad log format", []string{"--log-format", "xml"}},
		{"bad address", []string{"--server-addr", "not an address"}},
		{"empty catalog", []string{"--data-catalog", ""}},
		{"repo without checkout", []string{"--catalog-repo", "https://example.com/cards.git", "--catalog-checkout", ""}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := load(t, append([]string{"--config", ""}, tc.args...)...)
			assert.Error(t, err)
		})
	}
}

func TestDashedFieldFlags(t *testing.T) {
	cfg, err := load(t, "--config", "", "--deck-target-fallback", "Korean", "--deck-native-fallback", "Japanese")
	require.NoError(t, err)

	assert.Equal(t, "Korean", cfg.Deck.TargetFallback)
	assert.Equal(t, "Japanese", cfg.Deck.NativeFallback)
	assert.Equal(t, "Indonesia", cfg.Deck.Native)
}
