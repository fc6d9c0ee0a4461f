package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetupLevels(t *testing.T) {
	var buf bytes.Buffer
	reset := Setup(Config{Writer: &buf})
	L().Info("hidden")
	L().Warn("font not available", "font", "X")
	reset()

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "font=X")
	assert.NotContains(t, out, "time=")
}

func TestSetupDebug(t *testing.T) {
	var buf bytes.Buffer
	reset := Setup(Config{Writer: &buf, Debug: true})
	defer reset()
	L().Debug("skipped element", "element", "illustration")
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "source=")
}

func TestResetDiscards(t *testing.T) {
	var buf bytes.Buffer
	reset := Setup(Config{Writer: &buf})
	reset()
	L().Error("after reset")
	assert.Empty(t, buf.String())
}
