package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/meltforce/liftsignal/internal/analytics"
	"github.com/meltforce/liftsignal/internal/config"
	"github.com/meltforce/liftsignal/internal/mcp"
	"github.com/meltforce/liftsignal/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	remoteURL := flag.String("remote", "", "LiftSignal server URL (e.g. https://liftsignal.tail1234.ts.net); empty uses a local database")
	configPath := flag.String("config", "config.yaml", "path to config file (local database mode)")
	userID := flag.Int("user", 1, "user ID to scope queries to")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("liftsignal-mcp", Version)
		return
	}

	// Logs go to stderr: stdout carries the MCP stdio transport.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil && *remoteURL == "" {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var ds mcp.DataSource
	if *remoteURL != "" {
		ds = mcp.NewHTTPClient(*remoteURL)
		log.Info("mcp server starting", "mode", "remote", "server", *remoteURL)
	} else {
		db, err := storage.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		ds = db
		log.Info("mcp server starting", "mode", "local")
	}

	analyticsCfg := analytics.DefaultConfig()
	if cfg != nil {
		analyticsCfg = cfg.AnalyticsCore()
	}
	s := mcp.New(ds, analyticsCfg, Version, log)

	err = server.ServeStdio(s, server.WithStdioContextFunc(func(ctx context.Context) context.Context {
		return mcp.WithUserID(ctx, *userID)
	}))
	if err != nil {
		log.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}
