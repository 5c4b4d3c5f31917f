package logging

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	f := levelFilter{pass: func(l zerolog.Level) bool { return l >= zerolog.ErrorLevel }, w: &buf}

	n, err := f.WriteLevel(zerolog.InfoLevel, []byte("dropped\n"))
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	_, err = f.WriteLevel(zerolog.ErrorLevel, []byte("kept\n"))
	require.NoError(t, err)
	assert.Equal(t, "kept\n", buf.String())
}

func TestNewAndSub(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn")
	l.Info().Msg("quiet")
	Sub(&l, "session").Warn().Msg("loud")

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, `"subsystem":"session"`)
	assert.Contains(t, out, `"message":"loud"`)
}

func TestSetupWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gamemode.log")
	logger, closers, err := Setup("debug", path)
	require.NoError(t, err)
	require.Len(t, closers, 1)

	logger.Debug().Str("k", "v").Msg("hello")
	for _, c := range closers {
		require.NoError(t, c.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello"`)
	assert.Contains(t, string(data), `"k":"v"`)
}

func TestSetupBadPath(t *testing.T) {
	_, _, err := Setup("info", filepath.Join(t.TempDir(), "missing", "x.log"))
	assert.Error(t, err)
}

var _ zerolog.LevelWriter = levelFilter{w: io.Discard}
