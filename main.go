package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/giygas/medicines-api/config"
	"github.com/giygas/medicines-api/data"
	"github.com/giygas/medicines-api/handlers"
	"github.com/giygas/medicines-api/logging"
	"github.com/giygas/medicines-api/scheduler"
	"github.com/giygas/medicines-api/server"
	"github.com/giygas/medicines-api/validation"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	loadEnv()

	cfg, err := config.Load()
	if err != nil {
		logging.Error("Invalid configuration", "error", err)
		return 1
	}

	opts := logging.OptionsFromConfig(cfg)
	opts.InstanceID = uuid.NewString()
	if err := logging.InitLogger(opts); err != nil {
		logging.Warn("Continuing with console logging only", "error", err)
	}
	defer logging.DefaultLoggingService.Close()

	dataContainer := data.NewDataContainer()
	dataContainer.SetServerStartTime(time.Now())
	validator := validation.NewDataValidator()

	// A failed load leaves the container Unloaded; the API then answers
	// "Data not loaded" instead of exiting.
	if err := data.LoadFile(dataContainer, cfg.DataFile, validator); err != nil {
		logging.Warn("Serving in degraded mode", "data_file", cfg.DataFile)
	}

	limiter := server.NewRateLimiter(cfg.RateLimitRate, cfg.RateLimitCapacity)

	sched := scheduler.NewScheduler(dataContainer, limiter, logging.DefaultLoggingService)
	if err := sched.Start(); err != nil {
		logging.Error("Failed to start scheduler", "error", err)
		return 1
	}
	defer sched.Stop()

	srv := server.NewServer(cfg, handlers.NewHTTPHandler(dataContainer, validator), limiter)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error("Server stopped with error", "error", err)
		return 1
	}

	logging.Info("Server exited gracefully")
	return 0
}

// loadEnv reads .env from the working directory, then from the directory of
// the executable. A missing file is not an error.
func loadEnv() {
	if err := godotenv.Load(); err == nil {
		return
	}

	ex, err := os.Executable()
	if err != nil {
		return
	}

	exPath := filepath.Dir(ex)
	if err := godotenv.Load(filepath.Join(exPath, ".env")); err == nil {
		if err := os.Chdir(exPath); err != nil {
			logging.Warn("Failed to change directory", "dir", exPath, "error", err)
		}
	}
}
