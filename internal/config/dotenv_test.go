package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.MatchServiceURL)
	assert.Equal(t, 5*time.Second, cfg.MatchTimeout)
	assert.Equal(t, 20, cfg.MatchsvcScoreToWin)
	assert.Equal(t, int64(0), cfg.DiceSeed)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MATCH_SERVICE_URL", "http://matches.internal:9000")
	t.Setenv("MATCH_TIMEOUT", "750ms")
	t.Setenv("DICE_SEED", "42")
	t.Setenv("MATCHSVC_SCORE_TO_WIN", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://matches.internal:9000", cfg.MatchServiceURL)
	assert.Equal(t, 750*time.Millisecond, cfg.MatchTimeout)
	assert.Equal(t, int64(42), cfg.DiceSeed)
	assert.Equal(t, 10, cfg.MatchsvcScoreToWin)
	assert.Equal(t, "8080", cfg.Port)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("MATCH_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "parse env:"), "got %v", err)
}

func TestLoadRejectsNonPositiveScore(t *testing.T) {
	t.Setenv("MATCHSVC_SCORE_TO_WIN", "0")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	err := LoadDotEnv(filepath.Join(t.TempDir(), ".env"))
	assert.NoError(t, err)
}

func TestLoadDotEnvDoesNotOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=9999\nLOG_LEVEL=debug\n"), 0o644))
	t.Setenv("PORT", "7070")
	t.Setenv("LOG_LEVEL", "")
	os.Unsetenv("LOG_LEVEL")

	require.NoError(t, LoadDotEnv(path))

	assert.Equal(t, "7070", os.Getenv("PORT"))
	assert.Equal(t, "debug", os.Getenv("LOG_LEVEL"))
}

func TestSetupLoggingJSON(t *testing.T) {
	prev := log.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	SetupLoggingTo(&buf, Config{LogLevel: "warn", LogFormat: "json"})

	log.Info().Msg("hidden")
	log.Warn().Str("match_id", "m-1").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"match_id":"m-1"`)
}
