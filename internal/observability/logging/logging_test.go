package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakevault/stake-settlement/internal/config"
)

func TestSetup(t *testing.T) {
	prevLevel := zerolog.GlobalLevel()
	prevLogger := log.Logger
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(prevLevel)
		log.Logger = prevLogger
	})

	t.Run("invalid level", func(t *testing.T) {
		require.Error(t, Setup(config.LogConfig{Level: "nope"}))
	})

	t.Run("file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "settlement.log")
		err := Setup(config.LogConfig{Level: "debug", Format: "json", File: path, MaxSizeMB: 1})
		require.NoError(t, err)
		assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

		log.Info().Str("component", "test").Msg("hello")
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"component":"test"`)
	})
}
