// Package main provides the entry point for the Guildhall server application.
package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/guildhallapp/guildhall-server/internal/di"
	"github.com/guildhallapp/guildhall-server/internal/di/providers"
	"github.com/guildhallapp/guildhall-server/internal/logger"
)

func main() {
	// Create DI container
	injector := di.NewContainer()

	// Bootstrap all services
	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap server: %v\n", err)
		os.Exit(1)
	}

	log := do.MustInvoke[*logger.Logger](injector)
	serverHandle := do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Serve in the background so shutdown signals are handled here
	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", serverHandle.Addr)
		serveErr <- serverHandle.ListenAndServe()
	}()

	// Wait for shutdown signal or server failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("Shutting down server gracefully...")
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", "error", err)
		}
	}

	// Shutdown all services in reverse order
	// The DI container handles shutdown order automatically
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	// Database and search index use wrapper types, close them explicitly
	if storeHandle, err := do.Invoke[*providers.StoreHandle](injector); err == nil {
		log.Info("Closing database...")
		if err := storeHandle.Shutdown(); err != nil {
			log.Error("Failed to close database", "error", err)
		}
	}

	if indexHandle, err := do.Invoke[*providers.MemberIndexHandle](injector); err == nil {
		log.Info("Closing member index...")
		if err := indexHandle.Shutdown(); err != nil {
			log.Error("Failed to close member index", "error", err)
		}
	}

	log.Info("Goodnight, sweet prince.")
}
