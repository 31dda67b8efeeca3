package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

// TestSetDefaultCustomLogger should properly set the default logger when
// custom loggers are provided.
func TestSetDefaultCustomLogger(t *testing.T) {
	type customLogger struct {
		Logger // Implement the Logger interface
	}
	prev := Root()
	defer SetDefault(prev)

	customLog := &customLogger{}
	SetDefault(customLog)
	if Root() != customLog {
		t.Error("expected custom logger to be set as default")
	}
}

func TestTerminalHandlerLevels(t *testing.T) {
	out := new(bytes.Buffer)
	l := NewLogger(NewTerminalHandlerWithLevel(out, slog.LevelInfo, false))

	l.Debug("hidden", "row", 1)
	l.Info("shown", "row", 2)
	l.Warn("odd", "key")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "INFO ["), lines[0])
	assert.Contains(t, lines[0], "row=2")
	assert.Contains(t, lines[1], errorKey)
}

func TestTerminalHandlerColor(t *testing.T) {
	out := new(bytes.Buffer)
	l := NewLogger(NewTerminalHandler(out, true))
	l.Trace("colored")
	assert.Contains(t, out.String(), "\x1b[")
}

func TestLvlFromString(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"trace": LevelTrace,
		"DBUG":  LevelDebug,
		"info":  LevelInfo,
		"warn":  LevelWarn,
		"eror":  LevelError,
		"crit":  LevelCrit,
	} {
		have, err := LvlFromString(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, have, in)
	}
	_, err := LvlFromString("loud")
	assert.Error(t, err)
}

func TestFromLegacyLevel(t *testing.T) {
	assert.Equal(t, LevelCrit, FromLegacyLevel(0))
	assert.Equal(t, LevelInfo, FromLegacyLevel(3))
	assert.Equal(t, LevelTrace, FromLegacyLevel(5))
	assert.Equal(t, LevelTrace, FromLegacyLevel(9))
	assert.Equal(t, LevelCrit, FromLegacyLevel(-1))
}

func TestFilteredWrites(t *testing.T) {
	out := new(bytes.Buffer)
	l := NewLogger(NewTerminalHandler(out, false))

	every := &EveryN{N: 3}
	for i := 0; i < 7; i++ {
		WriteBy(l, every, LevelInfo, "sampled", "i", i)
	}
	assert.Equal(t, 3, strings.Count(out.String(), "sampled"))

	out.Reset()
	WriteBy(l, &ifCondition{false}, LevelInfo, "skipped")
	WriteBy(l, nil, LevelInfo, "unfiltered")
	assert.NotContains(t, out.String(), "skipped")
	assert.Contains(t, out.String(), "unfiltered")
}
