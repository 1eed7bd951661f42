// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/danielhkuo/athena/auth"
	"github.com/danielhkuo/athena/cliparse"
	"github.com/danielhkuo/athena/db"
	"github.com/danielhkuo/athena/elections"
	"github.com/danielhkuo/athena/ledger"
	"github.com/danielhkuo/athena/middleware"
	"github.com/danielhkuo/athena/router"
)

// setupLogger picks human-readable logs on a terminal and JSON otherwise
func setupLogger() {
	var handler slog.Handler
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		handler = slog.NewTextHandler(os.Stdout, nil)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(handler))
}

// newGateway builds the ledger for the configured mode. A nil gateway
// means mirroring is off. The returned func releases its resources.
func newGateway(ctx context.Context, cfg cliparse.Config) (ledger.Gateway, func(), error) {
	switch cfg.LedgerMode {
	case cliparse.LedgerMemory:
		slog.Warn("using in-memory ledger simulator; nothing is written on chain")
		return ledger.NewMemory(), func() {}, nil
	case cliparse.LedgerEthereum:
		lcfg, err := ledger.LoadConfig(cfg.LedgerConfig)
		if err != nil {
			return nil, nil, err
		}
		eth, err := ledger.DialEthereum(ctx, lcfg)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("ledger connected", "contract", lcfg.ContractAddress, "confirm_timeout", lcfg.ConfirmTimeout)
		return eth, eth.Close, nil
	default:
		return nil, func() {}, nil
	}
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	reg.MustRegister(elections.Collectors()...)
	reg.MustRegister(ledger.Collectors()...)
	reg.MustRegister(middleware.Collectors()...)
	return reg
}

func run() error {
	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		return fmt.Errorf("parsing flags: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect and create schema
	conn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	gw, closeGateway, err := newGateway(ctx, cfg)
	if err != nil {
		return fmt.Errorf("ledger setup failed: %w", err)
	}
	defer closeGateway()

	svc := elections.New(conn, ledger.Instrument(gw))
	slog.Info("election engine ready", "ledger_mode", cfg.LedgerMode, "mirroring", svc.MirrorEnabled())

	// Create router
	mux := router.NewRouter(svc, cfg, newRegistry())

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		// Wait for Ctrl-C signal
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	slog.Info("Server closed")
	return nil
}

// genKey prints a fresh admin key for ADMIN_KEY
func genKey() error {
	key, err := auth.GenerateAdminKey()
	if err != nil {
		return err
	}
	fmt.Println(key)
	return nil
}

func main() {
	setupLogger()

	if len(os.Args) > 1 && os.Args[1] == "genkey" {
		if err := genKey(); err != nil {
			slog.Error("key generation failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
