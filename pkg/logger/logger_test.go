package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerFunctions_NoNilPointers(t *testing.T) {
	logger = nil
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Logger function panicked: %v", r)
		}
	}()

	Debug("test debug", "key", "value")
	Info("test info", "key", "value")
	Warn("test warn", "key", "value")
	Error("test error", "key", "value")
}

func TestSetOutput_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "warn")
	defer func() { logger = nil }()

	Info("snapshot stored", "records", 5)
	Warn("snapshot degraded", "limit", 200)

	out := buf.String()
	assert.NotContains(t, out, "snapshot stored")
	assert.Contains(t, out, "snapshot degraded")
	assert.Contains(t, out, "limit=200")
}

func TestInit_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pageshare.log")
	Init(Options{Level: "info", File: path})
	defer func() { logger = nil }()

	Debug("hidden")
	Error("persist failed", "key", "pageshare_posts")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "persist failed")
	assert.NotContains(t, string(data), "hidden")
}

func TestInit_VerboseEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "error", Verbose: true})
	logger.SetOutput(&buf)
	defer func() { logger = nil }()

	Debug("ladder rung", "limit", 50)
	assert.Contains(t, buf.String(), "ladder rung")
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"debug", "debug"},
		{"WARNING", "warn"},
		{"error", "error"},
		{"", "info"},
		{"nonsense", "info"},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, parseLevel(tc.in).String())
		})
	}
}
