package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GripSim-25-26J-441/control-core/internal/gripd"
	"github.com/GripSim-25-26J-441/control-core/internal/vision"
	"github.com/GripSim-25-26J-441/control-core/pkg/config"
	"github.com/GripSim-25-26J-441/control-core/pkg/logger"
)

func main() {
	var httpAddr string
	var logLevel string
	var tissuesPath string

	flag.StringVar(&httpAddr, "http-addr", ":8080", "HTTP listen address")
	flag.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.StringVar(&tissuesPath, "tissues", "", "tissue table YAML (built-in table when empty)")
	flag.Parse()

	logger.SetDefault(logger.NewText(logLevel, os.Stdout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	table := config.DefaultTable()
	if tissuesPath != "" {
		loaded, err := config.LoadTable(tissuesPath)
		if err != nil {
			logger.Error("failed to load tissue table", "path", tissuesPath, "error", err)
			stop()
			os.Exit(1)
		}
		table = loaded
	}
	logger.Info("tissue table loaded", "profiles", table.Len())

	store := gripd.NewRunStore()
	executor := gripd.NewRunExecutor(store, table)
	classifier := vision.NewColorHeuristic()

	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           gripd.NewHTTPServer(store, executor, classifier).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("HTTP server listening", "addr", httpAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown requested")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
}
