// Package logger builds the gateway's slog logger: a charmbracelet text
// handler for terminals, JSON lines otherwise. QGATE_LOG_FORMAT,
// QGATE_LOG_LEVEL and QGATE_LOG_ADD_SOURCE override the configuration.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	charmLog "github.com/charmbracelet/log"
)

const (
	FormatText = "text"
	FormatJSON = "json"

	defaultLevel = "info"
)

// Config selects format, level and caller reporting.
type Config struct {
	Format    string `json:"format,omitempty" yaml:"format,omitempty"`
	Level     string `json:"level,omitempty" yaml:"level,omitempty"`
	AddSource bool   `json:"addSource,omitempty" yaml:"addSource,omitempty"`
}

// New creates a logger writing to stderr.
func New(cfg Config) (*slog.Logger, error) {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter creates a logger writing to writer.
func NewWithWriter(cfg Config, writer io.Writer) (*slog.Logger, error) {
	format := strings.ToLower(strings.TrimSpace(cfg.Format))
	if value := strings.TrimSpace(os.Getenv("QGATE_LOG_FORMAT")); value != "" {
		format = strings.ToLower(value)
	}
	if format == "" {
		format = FormatText
	}
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	addSource := cfg.AddSource
	if value := strings.TrimSpace(os.Getenv("QGATE_LOG_ADD_SOURCE")); value != "" {
		addSource = parseBool(value)
	}
	switch format {
	case FormatText:
		pretty := charmLog.NewWithOptions(writer, charmLog.Options{
			Level:           charmLevel(level),
			ReportTimestamp: true,
			ReportCaller:    addSource,
			Formatter:       charmLog.TextFormatter,
		})
		return slog.New(pretty), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: level, AddSource: addSource})), nil
	}
	return nil, fmt.Errorf("unsupported log format %q", format)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func charmLevel(level slog.Level) charmLog.Level {
	switch {
	case level <= slog.LevelDebug:
		return charmLog.DebugLevel
	case level <= slog.LevelInfo:
		return charmLog.InfoLevel
	case level <= slog.LevelWarn:
		return charmLog.WarnLevel
	default:
		return charmLog.ErrorLevel
	}
}

func parseLevel(input string) (slog.Level, error) {
	text := strings.ToLower(strings.TrimSpace(input))
	if value := strings.TrimSpace(os.Getenv("QGATE_LOG_LEVEL")); value != "" {
		text = strings.ToLower(value)
	}
	if text == "" {
		text = defaultLevel
	}
	switch text {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unsupported log level %q", text)
}

func parseBool(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
