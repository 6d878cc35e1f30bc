// Command holidaze-mockapi serves an in-memory stand-in for the Holidaze API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Skr3d3/holidaze-project-exam-2/internal/mockapi"
	"github.com/Skr3d3/holidaze-project-exam-2/pkg/config"
	"github.com/Skr3d3/holidaze-project-exam-2/pkg/logger"
	"github.com/Skr3d3/holidaze-project-exam-2/pkg/telemetry"
)

func main() {
	configPath := flag.String("config", "", "path to an .env config file")
	seed := flag.Bool("seed", false, "create demo accounts and venues")
	seedPassword := flag.String("seed-password", "holidaze123", "password of the demo accounts")
	flag.Parse()

	// Load configuration
	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadWithPath(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(&logger.Config{
		Level:       cfg.App.LogLevel,
		ServiceName: "holidaze-mockapi",
		Development: cfg.IsDevelopment(),
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Holidaze mock API...")

	ctx := context.Background()

	// Initialize OpenTelemetry
	telemetryCfg := &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    "holidaze-mockapi",
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}
	if _, err := telemetry.Init(ctx, telemetryCfg); err != nil {
		appLog.Warn("Failed to initialize telemetry", zap.Error(err))
	} else if telemetryCfg.Enabled {
		appLog.Info(fmt.Sprintf("Telemetry initialized (collector: %s)", telemetryCfg.CollectorAddr))
	}
	defer telemetry.Shutdown(ctx)

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := mockapi.New(mockapi.Config{
		JWTSecret: cfg.MockAPI.JWTSecret,
		TokenTTL:  cfg.MockAPI.TokenTTL,
		APIKey:    cfg.MockAPI.APIKey,
		Tracing:   cfg.OTel.Enabled,
		Logger:    appLog,
	})

	if *seed {
		if err := srv.Store().Seed(*seedPassword); err != nil {
			appLog.Fatal("Failed to seed demo data", zap.Error(err))
		}
		appLog.Info("Demo data seeded",
			zap.String("manager", mockapi.DemoManager+"@stud.noroff.no"),
			zap.String("customer", mockapi.DemoCustomer+"@stud.noroff.no"))
	}

	// Start server in goroutine
	addr := cfg.MockAPI.Addr()
	go func() {
		appLog.Info(fmt.Sprintf("Mock API listening on http://%s (auth root), http://%s/holidaze (resources)", addr, addr))
		if err := srv.ListenAndServe(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal("Server forced to shutdown", zap.Error(err))
	}

	appLog.Info("Server exited gracefully")
}
