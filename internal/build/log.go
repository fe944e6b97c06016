package build

import (
	"fmt"
	"os"

	"github.com/btcsuite/btclog"
	btclogv2 "github.com/btcsuite/btclog/v2"
)

// LogConfig holds the logging configuration for a revq process.
type LogConfig struct {
	// Level is the textual log level (trace, debug, info, warn, error,
	// critical). Unrecognized values fall back to info.
	Level string

	// NoConsole disables logging to stdout.
	NoConsole bool

	// Rotator configures the optional log file. If nil, no file logging
	// is performed.
	Rotator *LogRotatorConfig
}

// DefaultLogConfig returns the default console-only logging configuration.
func DefaultLogConfig() *LogConfig {
	return &LogConfig{
		Level: "info",
	}
}

// LogManager owns the root log handler set and hands out per-subsystem
// loggers. Subsystem loggers share the handler set, so a single SetLevel
// call affects every subsystem.
type LogManager struct {
	handler btclogv2.Handler
	writer  *RotatingLogWriter
}

// NewLogManager constructs the root handler set from the given config. The
// returned manager must be closed to flush the file rotator.
func NewLogManager(cfg *LogConfig) (*LogManager, error) {
	if cfg == nil {
		cfg = DefaultLogConfig()
	}

	var (
		handlers []btclogv2.Handler
		writer   *RotatingLogWriter
	)

	if !cfg.NoConsole {
		handlers = append(
			handlers, btclogv2.NewDefaultHandler(os.Stdout),
		)
	}

	if cfg.Rotator != nil {
		writer = NewRotatingLogWriter()
		if err := writer.InitLogRotator(cfg.Rotator); err != nil {
			return nil, fmt.Errorf("init log rotator: %w", err)
		}

		handlers = append(
			handlers, btclogv2.NewDefaultHandler(writer),
		)
	}

	handler := NewHandlerSet(handlers...)

	level, ok := btclog.LevelFromString(cfg.Level)
	if !ok {
		level = btclog.LevelInfo
	}
	handler.SetLevel(level)

	return &LogManager{
		handler: handler,
		writer:  writer,
	}, nil
}

// Subsystem returns a logger tagged with the given subsystem name.
func (m *LogManager) Subsystem(tag string) btclogv2.Logger {
	return btclogv2.NewSLogger(m.handler.SubSystem(tag))
}

// SetLevel changes the log level on every handler in the set.
func (m *LogManager) SetLevel(level btclog.Level) {
	m.handler.SetLevel(level)
}

// Close flushes and stops the file rotator, if one was configured.
func (m *LogManager) Close() error {
	if m.writer != nil {
		return m.writer.Close()
	}

	return nil
}
