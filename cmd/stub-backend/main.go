package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"route-selection-client/internal/adapters/backend"
	"route-selection-client/internal/config"
	"route-selection-client/internal/platform/logger"

	"github.com/joho/godotenv"
)

// stub-backend serves the routing backend's HTTP API over a small node set so
// the client can be run against a real network hop during development.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	lg := logger.New(config.Get("APP_ENV", "development"))
	port := config.Get("STUB_PORT", "8090")

	nodes := backend.DefaultNodes()
	if seedPath := config.Get("SEED_PATH", ""); seedPath != "" {
		loaded, err := backend.LoadNodes(seedPath)
		if err != nil {
			log.Fatal(err)
		}
		nodes = loaded
	}

	mock := backend.NewMockBackend(nodes, backend.DefaultSettings())

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           backend.NewStubHandler(mock),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		lg.Info("stub backend listening", "addr", srv.Addr, "nodes", len(nodes))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("stub backend failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
