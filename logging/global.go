// Package logging wraps log/slog for the medicines API: console and rotating
// file output, a package-level facade, and the HTTP request middleware.
package logging

import (
	"log/slog"
	"os"
	"sync"
)

// LoggingService owns the process logger and its file output
type LoggingService struct {
	Logger *slog.Logger
	writer *RotatingWriter
}

// PruneOldLogs removes log files past the retention period
func (s *LoggingService) PruneOldLogs() (int, error) {
	if s == nil || s.writer == nil {
		return 0, nil
	}
	return s.writer.Prune()
}

// Close flushes and closes the log file
func (s *LoggingService) Close() error {
	if s == nil || s.writer == nil {
		return nil
	}
	return s.writer.Close()
}

var DefaultLoggingService *LoggingService

// InitLogger sets up the global logger and makes it the slog default.
// A non-nil error means file logging is off; console logging still works.
func InitLogger(opts Options) error {
	service, err := Setup(opts)
	DefaultLoggingService = service
	slog.SetDefault(service.Logger)
	return err
}

var (
	fallbackOnce   sync.Once
	fallbackLogger *slog.Logger
)

// logger returns the global logger, or a stderr logger before InitLogger
func logger() *slog.Logger {
	if DefaultLoggingService != nil && DefaultLoggingService.Logger != nil {
		return DefaultLoggingService.Logger
	}
	fallbackOnce.Do(func() {
		fallbackLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	})
	return fallbackLogger
}

// Logger returns the process logger
func Logger() *slog.Logger {
	return logger()
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	logger().Info(msg, args...)
}

func Error(msg string, args ...any) {
	logger().Error(msg, args...)
}

func Warn(msg string, args ...any) {
	logger().Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	logger().Debug(msg, args...)
}
