package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/zaza-provision/pkg/config"
)

func TestMaskingHandler_MasksSensitiveKeys(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewMaskingHandler(slog.NewJSONHandler(&buf, nil)))

	log.Info("calling rpc",
		slog.String("apikey", "eyJ-secret"),
		slog.String("Authorization", "Bearer eyJ-secret"),
		slog.Group("supabase", slog.String("service_key", "eyJ-secret"), slog.String("url", "https://x")),
		slog.String("table", "user_general_settings"),
	)

	out := buf.String()
	assert.NotContains(t, out, "eyJ-secret")
	assert.Contains(t, out, "user_general_settings")
	assert.Contains(t, out, "https://x")
}

func TestMaskingHandler_MasksWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewMaskingHandler(slog.NewJSONHandler(&buf, nil))).With(slog.String("dsn", "postgres://u:p@h/db"))

	log.Info("connected")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, maskedValue, record["dsn"])
}

func TestNewWithWriter_FormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Config{
		AppEnv: "test",
		Logger: config.LoggerConfig{Level: "warn", Format: "json"},
	}

	log := NewWithWriter(cfg, &buf)
	log.Info("hidden")
	log.Warn("shown")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "shown", record["msg"])
	assert.Equal(t, "test", record["env"])
}

func TestParseLevel(t *testing.T) {
	testCases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
	}

	for in, expected := range testCases {
		assert.Equal(t, expected, ParseLevel(in), in)
	}
}

func TestRunIDContext(t *testing.T) {
	assert.Empty(t, RunIDFromContext(context.Background()))

	id := NewRunID()
	ctx := WithRunID(context.Background(), id)
	assert.Equal(t, id, RunIDFromContext(ctx))
}
