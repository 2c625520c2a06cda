package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseLevel(tc.in))
		})
	}
}

func TestSettingsValidation(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		wantErr  bool
	}{
		{"valid console", Settings{Level: LevelInfo, Format: FormatJSON}, false},
		{"valid file", Settings{Level: LevelDebug, Format: FormatText, File: "x.log", MaxSize: 10, MaxBackups: 3, MaxAge: 28}, false},
		{"missing level", Settings{Format: FormatJSON}, true},
		{"unknown format", Settings{Level: LevelInfo, Format: "xml"}, true},
		{"negative backups", Settings{Level: LevelInfo, Format: FormatJSON, MaxBackups: -1}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.settings.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(Settings{Level: LevelWarn, Format: FormatText}, &buf)
	require.NoError(t, err)
	defer closer.Close()

	logger.Info("hidden")
	logger.Warn("shown", "file", "config.conf")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "file=config.conf")
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flexlogin.log")
	var console bytes.Buffer
	logger, closer, err := New(Settings{Level: LevelInfo, Format: FormatJSON, File: path, MaxSize: 1}, &console)
	require.NoError(t, err)

	logger.Info("to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"to file"`)
	assert.Empty(t, console.String())
}

func TestNew_InvalidSettings(t *testing.T) {
	_, _, err := New(Settings{Level: "loud", Format: FormatJSON}, &bytes.Buffer{})
	require.Error(t, err)
}
