package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "github.com/glosskit/gloss/internal/adapters/http"
	"github.com/glosskit/gloss/internal/config"
)

// ServeOptions contains all the configuration for the serve command.
type ServeOptions struct {
	Config *config.Config
	Addr   string
	Debug  bool
}

// RunServe starts the JSON API server and blocks until shutdown.
func RunServe(opts ServeOptions) error {
	logger := createLogger(opts.Debug)
	notifier := NewConsoleNotifier(os.Stderr)

	engine, err := createEngine(opts.Config, logger, notifier)
	if err != nil {
		return err
	}

	addr := opts.Addr
	if addr == "" {
		addr = opts.Config.Serve.Addr
	}

	handler := api.NewHandler(engine.Sessions(), engine.NewWizard,
		api.WithLogger(logger),
		api.WithImporter(engine.Importer()),
		api.WithRegistry(engine.Registry()),
	)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		fmt.Printf("Starting gloss server on %s\n", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt or terminate signals.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		fmt.Println("Gloss server stopped gracefully")
	}
	return nil
}
