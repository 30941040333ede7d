package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/giygas/medicines-api/config"
)

// Options configures Setup
type Options struct {
	Dir            string
	Env            config.Environment
	Level          string
	RetentionWeeks int
	MaxFileSize    int64
	InstanceID     string    // added to every record when set
	Verbose        bool      // keeps console output in the test environment
	Console        io.Writer // defaults to os.Stdout
}

// OptionsFromConfig maps the service configuration onto logging options
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Dir:            cfg.LogDir,
		Env:            cfg.Env,
		Level:          cfg.LogLevel,
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
	}
}

// parseLogLevel maps a level name to its slog level, info when unknown
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetConsoleLogLevel picks the console level. An explicit level wins except in
// the test environment, which stays quiet unless verbose.
func GetConsoleLogLevel(env config.Environment, level string, verbose bool) slog.Level {
	if env == config.EnvTest {
		if verbose {
			return slog.LevelInfo
		}
		return slog.LevelError
	}

	if level != "" {
		return parseLogLevel(level)
	}

	switch env {
	case config.EnvProduction, config.EnvStaging:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// GetFileLogLevel is the level of the JSON file output, which keeps everything
func GetFileLogLevel() slog.Level {
	return slog.LevelDebug
}

// Setup builds a logger writing text to the console and JSON to the rotating
// files. When the log directory is unusable the console logger is returned
// together with the error.
func Setup(opts Options) (*LoggingService, error) {
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	consoleHandler := slog.NewTextHandler(console, &slog.HandlerOptions{
		Level: GetConsoleLogLevel(opts.Env, opts.Level, opts.Verbose),
	})

	writer, err := NewRotatingWriter(opts.Dir, opts.RetentionWeeks, opts.MaxFileSize)
	if err != nil {
		logger := withInstance(slog.New(consoleHandler), opts.InstanceID)
		logger.Error("File logging disabled", "dir", opts.Dir, "error", err)
		return &LoggingService{Logger: logger}, err
	}

	fileHandler := slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level: GetFileLogLevel(),
	})

	return &LoggingService{
		Logger: withInstance(slog.New(&fanoutHandler{handlers: []slog.Handler{consoleHandler, fileHandler}}), opts.InstanceID),
		writer: writer,
	}, nil
}

func withInstance(logger *slog.Logger, id string) *slog.Logger {
	if id == "" {
		return logger
	}
	return logger.With("instance_id", id)
}

// fanoutHandler hands every record to each handler that accepts its level
type fanoutHandler struct {
	handlers []slog.Handler
}

func (f *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f *fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f.handlers {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f *fanoutHandler) WithGroup(name string) slog.Handler {
	return f.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f *fanoutHandler) derive(with func(slog.Handler) slog.Handler) slog.Handler {
	handlers := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		handlers[i] = with(h)
	}
	return &fanoutHandler{handlers: handlers}
}
