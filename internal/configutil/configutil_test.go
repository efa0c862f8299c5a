package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Database string `json:"database"`
	Table    string `json:"table"`
	Limit    int    `json:"limit"`
}

func TestReadConfigMergesLocal(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json5"), []byte(`{
		// shared defaults
		database: "games.sqlite",
		table: 'games',
		limit: 10,
	}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.local.json5"), []byte(`{database: "/tmp/dev.sqlite"}`), 0o644))

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	require.NoError(t, err)
	require.Equal(t, testConfig{Database: "/tmp/dev.sqlite", Table: "games", Limit: 10}, cfg)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "config.json5"))
	require.True(t, os.IsNotExist(err))
}

func TestReadOrDefault(t *testing.T) {
	def := testConfig{Database: "default.sqlite", Table: "games", Limit: 5}

	cfg, err := ReadOrDefault(filepath.Join(t.TempDir(), "config.json5"), def)
	require.NoError(t, err)
	require.Equal(t, def, cfg)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json5"), []byte(`{limit: 50}`), 0o644))
	cfg, err = ReadOrDefault(filepath.Join(dir, "config.json5"), def)
	require.NoError(t, err)
	require.Equal(t, testConfig{Database: "default.sqlite", Table: "games", Limit: 50}, cfg)
}

func TestEnv(t *testing.T) {
	t.Setenv("GAMES_TEST_ADDR", " :9000 ")
	t.Setenv("GAMES_TEST_LIMIT", "abc")
	require.Equal(t, ":9000", EnvString("GAMES_TEST_ADDR", ":8080"))
	require.Equal(t, ":8080", EnvString("GAMES_TEST_UNSET", ":8080"))
	require.Equal(t, 3, EnvInt("GAMES_TEST_LIMIT", 3))
}
