package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"budgetcoach/internal/api"
	"budgetcoach/internal/config"
	"budgetcoach/internal/logging"
	"budgetcoach/pkg/advice"
	"budgetcoach/pkg/budget"
)

var exit = os.Exit

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "err", err)
		exit(1)
	}
}

func run() error {
	var port int
	var host string
	var webDir string
	var logDir string

	flag.IntVar(&port, "port", 0, "Port to run the server on (default $PORT or 5000)")
	flag.StringVar(&host, "host", "", "Host to bind the server to (default 0.0.0.0)")
	flag.StringVar(&webDir, "web-dir", "", "Directory to serve the web page from instead of the bundled one")
	flag.StringVar(&logDir, "log-dir", "", "Directory for daily log files")
	flag.Parse()

	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	config.SetRuntimePort(port)
	settings, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if host != "" {
		settings.Host = host
	}
	if logDir != "" {
		settings.LogDir = logDir
	}

	logger, writer, err := logging.NewLogger(settings.LogDir, slog.LevelInfo)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() {
		if err := writer.Close(); err != nil {
			logger.Error("failed to close log writer", "err", err)
		}
	}()

	generator, err := advice.New(advice.Settings{
		Provider: settings.Provider,
		APIKey:   settings.APIKey,
		Model:    settings.Model,
		BaseURL:  settings.BaseURL,
		CacheTTL: settings.CacheTTL,
		Logger:   logger,
	})
	switch {
	case errors.Is(err, advice.ErrMissingAPIKey):
		logger.Warn("advice provider credential missing; analysis requests will fail",
			"provider", settings.Provider, "env", settings.CredentialEnv)
		generator = nil
	case err != nil:
		return fmt.Errorf("initialize advice provider: %w", err)
	default:
		logger.Info("advice provider ready", "provider", settings.Provider, "model", settings.Model)
	}

	advisor := budget.NewAdvisor(budget.Options{
		Generator:     generator,
		CredentialEnv: settings.CredentialEnv,
		Logger:        logger,
		AdviceTimeout: settings.AdviceTimeout,
	})

	handler := api.WithWeb(api.NewRouter(advisor), resolveWebFS(webDir, logger))
	handler = middleware.Compress(5)(handler)

	addr := net.JoinHostPort(settings.Host, fmt.Sprint(config.GetRuntimePort()))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      settings.AdviceTimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(stop)

	logger.Info("server starting", "addr", listener.Addr().String())
	serveErr := make(chan error, 1)
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-stop:
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	}

	logger.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "err", err)
	}
	return nil
}

// resolveWebFS prefers an explicit on-disk directory and falls back to the
// bundled page.
func resolveWebFS(input string, logger *slog.Logger) fs.FS {
	if input != "" {
		if dirExists(input) {
			logger.Info("serving web page from disk", "web_dir", input)
			return os.DirFS(input)
		}
		logger.Warn("web directory not found; using bundled page", "web_dir", input)
	}
	return api.EmbeddedWeb()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
