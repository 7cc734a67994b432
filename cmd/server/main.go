// Command server runs the Agora HTTP API.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agora/internal/bootstrap"
	"agora/internal/config"
	"agora/internal/middleware"
	"agora/internal/observability"
	"agora/internal/server"
)

// @title Agora API
// @version 1.0
// @description Social network API with posts, comments, follows and direct messages

// @contact.name API Support
// @contact.email support@agora.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8375
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	seedDemo := flag.Bool("seed-demo", false, "Seed generated data when the database is empty (non-production only)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	shutdownTracing, err := observability.InitTracing(context.Background(), observability.TracingConfig{
		ServiceName:    "agora-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampler,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	db, rdb, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SeedDemo: *seedDemo})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	srv, err := server.NewServer(cfg, db, rdb)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		middleware.Logger.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			middleware.Logger.Error("server shutdown error", slog.String("error", err.Error()))
		}
		if err := shutdownTracing(ctx); err != nil {
			middleware.Logger.Error("tracing shutdown error", slog.String("error", err.Error()))
		}
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
	<-stopped
}
