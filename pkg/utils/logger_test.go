package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenda/pkg/config"
)

func TestInitLogger_WritesWhenVerbose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "agenda.log")

	require.NoError(t, InitLogger(&config.Config{Verbose: true, LogFile: path, LogLevel: "info"}))
	log.Debug().Msg("hidden below info")
	log.Info().Msg("store opened")
	CloseLogger()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "store opened")
	assert.NotContains(t, string(data), "hidden below info")
}

func TestInitLogger_SilentByDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agenda.log")

	require.NoError(t, InitLogger(&config.Config{LogFile: path}))
	log.Error().Msg("nobody hears this")
	CloseLogger()

	assert.NoFileExists(t, path)
}
