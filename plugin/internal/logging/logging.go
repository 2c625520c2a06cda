package logging

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/natefinch/lumberjack"
)

// Log levels accepted by Settings.Level.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Output formats accepted by Settings.Format.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Settings describes where and how the tool logs.
type Settings struct {
	Level  string `validate:"required,oneof=debug info warn error"`
	Format string `validate:"required,oneof=json text"`

	// File enables rotated file output instead of the console writer.
	File       string
	MaxSize    int `validate:"gte=0,lte=1024"`
	MaxBackups int `validate:"gte=0,lte=100"`
	MaxAge     int `validate:"gte=0,lte=365"`
}

// Validate checks the enumerations and rotation bounds.
func (s *Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("validation failed for log settings: %w", err)
	}
	return nil
}

// New builds a logger writing to console, or to a lumberjack-rotated file
// when s.File is set. The returned closer releases the file and is a no-op
// for console output.
func New(s Settings, console io.Writer) (*slog.Logger, io.Closer, error) {
	if err := s.Validate(); err != nil {
		return nil, nil, err
	}

	w := console
	var closer io.Closer = nopCloser{}
	if s.File != "" {
		rotated := &lumberjack.Logger{
			Filename:   s.File,
			MaxSize:    s.MaxSize,
			MaxBackups: s.MaxBackups,
			MaxAge:     s.MaxAge,
			Compress:   true,
		}
		w, closer = rotated, rotated
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(s.Level)}
	var h slog.Handler
	if s.Format == FormatText {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(h), closer, nil
}

// ParseLevel maps a level name to slog; unknown names yield info.
func ParseLevel(level string) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
