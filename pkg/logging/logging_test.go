package logging_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"

	"github.com/nkjain92/gpt-image-1/pkg/config"
	"github.com/nkjain92/gpt-image-1/pkg/logging"
)

func TestSetupJSON(t *testing.T) {
	var buf bytes.Buffer
	logging.SetupWriter(config.Log{Level: "warn", Format: "json"}, &buf)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	log.Info().Msg("dropped")
	log.Warn().Str("k", "v").Msg("kept")

	out := buf.String()
	require.NotContains(t, out, "dropped")
	require.Contains(t, out, `"message":"kept"`)
	require.Contains(t, out, `"k":"v"`)
}

func TestSetupUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logging.SetupWriter(config.Log{Level: "loud", Format: "json"}, &buf)

	log.Debug().Msg("quiet")
	log.Info().Msg("hello")

	require.NotContains(t, buf.String(), "quiet")
	require.Contains(t, buf.String(), "hello")
}
