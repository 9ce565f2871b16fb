package main

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/Fantasim/rainmaker/internal/api"
	"github.com/Fantasim/rainmaker/internal/config"
	"github.com/Fantasim/rainmaker/internal/db"
	"github.com/Fantasim/rainmaker/internal/disperse"
	"github.com/Fantasim/rainmaker/internal/logging"
	"github.com/Fantasim/rainmaker/internal/session"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := runServe(); err != nil {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("rainmaker %s\n", version)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: rainmaker <command>

Commands:
  serve     Start the HTTP server
  version   Print version information
`)
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logCloser, err := logging.Setup(cfg.LogLevel, cfg.LogDir)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer logCloser.Close()

	slog.Info("starting rainmaker",
		"version", version,
		"port", cfg.Port,
		"rpcUrl", cfg.RPCURL,
		"dbPath", cfg.DBPath,
		"logLevel", cfg.LogLevel,
	)

	database, err := db.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	slog.Info("database opened", "path", cfg.DBPath)

	if err := database.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("database migrations applied")

	sess, err := setupSession(cfg)
	if err != nil {
		return err
	}

	hub := disperse.NewHub()
	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()
	go hub.Run(hubCtx)

	dispatcher := disperse.NewDispatcher(sess, sess, hub)

	slog.Info("dispatch engine initialized")

	router := api.NewRouter(database, dispatcher, hub, cfg)

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	srv := &http.Server{
		Addr:           addr,
		Handler:        router,
		ReadTimeout:    config.ServerReadTimeout,
		WriteTimeout:   config.ServerWriteTimeout,
		IdleTimeout:    config.ServerIdleTimeout,
		MaxHeaderBytes: config.ServerMaxHeaderBytes,
	}

	slog.Info("server configured",
		"readTimeout", config.ServerReadTimeout,
		"writeTimeout", config.ServerWriteTimeout,
		"idleTimeout", config.ServerIdleTimeout,
		"maxHeaderBytes", config.ServerMaxHeaderBytes,
	)

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	slog.Info("initiating graceful shutdown",
		"timeout", config.ShutdownTimeout,
	)

	// Drain SSE clients first, then stop the HTTP server with a generous
	// timeout so an in-flight confirmation wait can be recorded.
	hubCancel()
	slog.Info("event hub stopped")

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// setupSession connects the RPC session the dispatcher signs and broadcasts
// through. A missing key file is not fatal: the server runs in read-only mode
// and submissions fail at the signature step.
func setupSession(cfg *config.Config) (*session.RPCSession, error) {
	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial RPC %s: %w", cfg.RPCURL, err)
	}

	var key *ecdsa.PrivateKey
	if cfg.KeyFile != "" {
		key, err = session.LoadKey(cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load signing key: %w", err)
		}
	}

	limiter := session.NewRateLimiter("rpc", cfg.RPCRateLimit)

	slog.Info("rpc session initialized",
		"rpcUrl", cfg.RPCURL,
		"hasKey", key != nil,
		"rateLimit", cfg.RPCRateLimit,
	)

	return session.NewRPCSession(client, key, limiter), nil
}
