package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger("editor", &buf, WARN)

	l.Info("не должно попасть")
	l.Warn("валидатор недоступен: %s", "timeout")

	out := buf.String()
	assert.NotContains(t, out, "не должно попасть")
	assert.Contains(t, out, "[WARN] [editor] валидатор недоступен: timeout")
}

func TestNilLoggerIsSilent(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() { l.Error("ничего") })
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, DEBUG, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, INFO, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestFileLogger(t *testing.T) {
	old := LogDir
	LogDir = t.TempDir()
	defer func() { LogDir = old }()

	l, err := NewLogger("storage")
	require.NoError(t, err)
	l.SetLevels(ERROR, TRACE)
	l.Debug("в файл")
	require.NoError(t, l.Close())
	require.NoError(t, l.Close(), "повторное закрытие безопасно")
}

func TestLoggerManager_ReusesComponents(t *testing.T) {
	lm := GetLoggerManager()
	a := lm.MustGetLogger("test-component")
	b := lm.MustGetLogger("test-component")
	assert.Same(t, a, b)
	assert.Contains(t, lm.ListComponents(), "test-component")
}
