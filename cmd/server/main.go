package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recovery-backend/internal/app"
	"recovery-backend/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container := app.InitializeContainer(ctx, cfg, logger)

	srv := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           container.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	g, gCtx := errgroup.WithContext(ctx)

	// HTTP server
	g.Go(func() error {
		logger.WithField("addr", srv.Addr).Info("🚀 Recovery backend listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Shutdown on signal or server failure
	g.Go(func() error {
		select {
		case sig := <-sigCh:
			logger.WithField("signal", sig.String()).Info("🛑 Received signal, shutting down")
		case <-gCtx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeoutDuration())
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("❌ HTTP server shutdown failed")
		}
		if err := container.Close(shutdownCtx); err != nil {
			logger.WithError(err).Error("❌ Failed to release resources")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("❌ Server exited with error")
		os.Exit(1)
	}

	logger.Info("✅ Server shut down gracefully")
}
