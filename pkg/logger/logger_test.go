package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"replayfetch/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{
			name: "valid config with info level",
			cfg:  &config.LoggingConfig{Level: "info"},
		},
		{
			name: "valid config with debug level",
			cfg:  &config.LoggingConfig{Level: "debug"},
		},
		{
			name:    "invalid log level",
			cfg:     &config.LoggingConfig{Level: "invalid"},
			wantErr: true,
		},
		{
			name: "config with file output",
			cfg: &config.LoggingConfig{
				Level:   "info",
				File:    filepath.Join(t.TempDir(), "logs", "replayfetch.log"),
				MaxSize: 1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := NewWithWriter(tt.cfg, &buf)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "replayfetch.log")
	var console bytes.Buffer

	logger, err := NewWithWriter(&config.LoggingConfig{Level: "info", File: path, MaxSize: 1}, &console)
	require.NoError(t, err)

	logger.WithField("battle_id", "gen9ou-1").Info("replay saved")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"battle_id":"gen9ou-1"`)
	assert.Contains(t, string(data), `"message":"replay saved"`)
	assert.Contains(t, console.String(), "replay saved")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(&config.LoggingConfig{Level: "warn"}, &buf)
	require.NoError(t, err)

	logger.Info("quiet")
	logger.Warn("loud")

	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"invalid", zerolog.InfoLevel, true},
		{"", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, level)
		})
	}
}

func newBufferLogger(buf *bytes.Buffer) *zerologLogger {
	zlog := zerolog.New(buf).Level(zerolog.DebugLevel)
	return &zerologLogger{
		logger: &zlog,
		fields: make(map[string]interface{}),
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	child := logger.WithFields(map[string]interface{}{
		"string":   "value",
		"int":      42,
		"bool":     true,
		"duration": 1500 * time.Millisecond,
	})
	child.Info("test message")

	output := buf.String()
	assert.Contains(t, output, "test message")
	assert.Contains(t, output, `"string":"value"`)
	assert.Contains(t, output, `"int":42`)
	assert.Contains(t, output, `"bool":true`)

	// The parent is untouched
	buf.Reset()
	logger.Info("parent")
	assert.NotContains(t, buf.String(), `"string"`)
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	logger.WithError(errors.New("boom")).Error("failed")
	assert.Contains(t, buf.String(), `"error":"boom"`)

	assert.Same(t, logger, logger.WithError(nil))
}

func TestHelpers(t *testing.T) {
	log := NewTestLogger()

	LogRequest(log, "GET", "http://x/search.json", 200, time.Millisecond)
	LogRequest(log, "GET", "http://x/a.json", 404, time.Millisecond)
	LogRequest(log, "GET", "http://x/b.json", 503, time.Millisecond)
	LogReplay(log, "a", "failed", errors.New("not found"))
	LogPageProgress(log, "gen9ou", 2, 51)

	assert.Len(t, log.GetMessagesByLevel("DEBUG"), 1)
	assert.Len(t, log.GetMessagesByLevel("WARN"), 2)
	assert.Len(t, log.GetMessagesByLevel("ERROR"), 1)
	assert.True(t, log.HasMessage("Listing page processed"))

	failed := log.GetMessagesByLevel("ERROR")[0]
	assert.Equal(t, "a", failed.Fields["battle_id"])
	assert.EqualError(t, failed.Error, "not found")
}

func TestTestLoggerSharesCapture(t *testing.T) {
	log := NewTestLogger()
	child := log.WithField("page", 3)

	child.Warn("short page")

	msgs := log.GetMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, 3, msgs[0].Fields["page"])
	assert.True(t, strings.Contains(log.String(), "short page"))

	log.Clear()
	assert.Empty(t, log.GetMessages())
}
