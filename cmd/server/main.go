package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/capstonehub/capstone-hub/internal/app"
	"github.com/capstonehub/capstone-hub/internal/config"
	"github.com/capstonehub/capstone-hub/internal/logging"
	"github.com/capstonehub/capstone-hub/internal/version"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := pflag.String("config", os.Getenv("CAPSTONE_CONFIG_PATH"), "path to a YAML config file")
	showVersion := pflag.Bool("version", false, "print the version and exit")
	pflag.Parse()

	if *showVersion {
		fmt.Println(version.Version)
		return
	}

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logWriter := io.Writer(os.Stdout)
	if cfg.Log.Path != "" {
		fw, err := logging.NewFileWriter(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer fw.Close()
			logWriter = io.MultiWriter(os.Stdout, fw)
		}
	}
	logger := logging.New(logWriter, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	go a.PurgeSessions(ctx, cfg.Session.PurgeEvery)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", addr, "version", version.Version)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	waitForShutdown(ctx, logger, httpServer)
}

func waitForShutdown(ctx context.Context, logger *slog.Logger, server *http.Server) {
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
