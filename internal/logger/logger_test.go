package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/double-entry-ledger/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	testCases := []struct {
		name              string
		logLevel          string
		expectedSlogLevel slog.Level
	}{
		{"DebugLevel", "debug", slog.LevelDebug},
		{"InfoLevel", "info", slog.LevelInfo},
		{"WarnLevel", "WARN", slog.LevelWarn},
		{"ErrorLevel", "error", slog.LevelError},
		{"DefaultToInfo", "unknown", slog.LevelInfo},
		{"EmptyToInfo", "", slog.LevelInfo},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &config.Config{
				Logging: config.LoggingConfig{
					Level: tc.logLevel,
				},
			}

			logger := NewLogger(cfg)
			require.NotNil(t, logger)

			assert.True(t, logger.Enabled(context.Background(), tc.expectedSlogLevel))
			if tc.expectedSlogLevel > slog.LevelDebug {
				assert.False(t, logger.Enabled(context.Background(), tc.expectedSlogLevel-1))
			}
		})
	}
}

func TestNewLogger_CarriesApplicationAttributes(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{
		Application: config.ApplicationConfig{Name: "double-entry-ledger", Env: "test"},
		Logging:     config.LoggingConfig{Level: "info", Format: "json"},
	}

	logger := newLogger(cfg, &buf)
	buf.Reset()
	logger.Info("transaction saved", "txn_id", "txn_1")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "double-entry-ledger", record["app"])
	assert.Equal(t, "test", record["env"])
	assert.Equal(t, "txn_1", record["txn_id"])
	assert.Equal(t, "transaction saved", record["msg"])
}

func TestNewLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{Logging: config.LoggingConfig{Level: "info", Format: "text"}}

	logger := newLogger(cfg, &buf)
	buf.Reset()
	logger.Info("hello")

	assert.Contains(t, buf.String(), "msg=hello")
}
