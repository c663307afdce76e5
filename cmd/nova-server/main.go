// Command nova-server serves the launch form and runs assistant sessions
// requested over HTTP.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	assistant "github.com/koscakluka/nova/core"
	"github.com/koscakluka/nova/core/credentials"
	"github.com/koscakluka/nova/internal/app"
	"github.com/koscakluka/nova/internal/config"
	"github.com/koscakluka/nova/internal/httpserver"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	srv := httpserver.New(func(ctx context.Context, params assistant.Params, creds credentials.Credentials) error {
		return app.Run(ctx, cfg, params, creds)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Sessions run inside the request, so they are cancelled on shutdown.
	server := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           otelhttp.NewHandler(srv.Router, "nova-server"),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("server listening on %s", cfg.HTTPAddress)
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	case <-ctx.Done():
		log.Println("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = server.Close()
	}
}
