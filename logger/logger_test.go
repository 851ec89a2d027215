package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "warn", true)
	t.Cleanup(func() { Init("info") })

	Debug("hidden debug")
	Info("hidden info")
	Warn("shown warn", "k", "v")
	Error("shown error")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown warn")
	assert.Contains(t, out, "k=v")
	assert.Contains(t, out, "shown error")
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "debug", false)
	t.Cleanup(func() { Init("info") })

	Debug("hello", "n", 1)
	assert.True(t, strings.HasPrefix(buf.String(), "{"))
	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"n":1`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLevel("Debug").String())
	assert.Equal(t, "WARN", parseLevel("warning").String())
	assert.Equal(t, "ERROR", parseLevel("ERROR").String())
	assert.Equal(t, "INFO", parseLevel("").String())
	assert.Equal(t, "INFO", parseLevel("verbose").String())
}
