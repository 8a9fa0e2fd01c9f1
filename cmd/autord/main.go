package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hpungsan/autord/internal/config"
	"github.com/hpungsan/autord/internal/db"
	"github.com/hpungsan/autord/internal/export"
	"github.com/hpungsan/autord/internal/kv"
	"github.com/hpungsan/autord/internal/logger"
	"github.com/hpungsan/autord/internal/mcp"
	"github.com/hpungsan/autord/internal/ops"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"template": true, "export": true, "brief": true,
	"inspect": true, "serve": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v"
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

func printBanner() {
	fmt.Println(`
              _                 _
   __ _ _   _| |_ ___  _ __ __| |
  / _' | | | | __/ _ \| '__/ _' |
 | (_| | |_| | || (_) | | | (_| |
  \__,_|\__,_|\__\___/|_|  \__,_|

  Slide templates and pptx export

  Usage: autord <command> [options]
         autord --help

  MCP server mode requires piped input.`)
}

// env is everything a command needs once storage is open.
type env struct {
	baseDir string
	cfg     *config.Config
	log     *slog.Logger
	svc     *ops.Service
	exp     *export.Exporter
}

// openStore connects the configured template backend. The returned
// function releases it.
func openStore(baseDir string, cfg *config.Config, log *slog.Logger) (kv.Store, func(), error) {
	if cfg.StorageBackend == config.BackendRedis {
		store := kv.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.HealthCheck(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		log.Debug("template store ready", slog.String("backend", config.BackendRedis), slog.String("addr", cfg.RedisAddr))
		return store, func() { _ = store.Close() }, nil
	}

	database, err := db.Init(baseDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	db.ConfigurePool(database, cfg)
	log.Debug("template store ready", slog.String("backend", config.BackendSQLite), slog.String("dir", baseDir))
	return kv.NewSQLite(database), func() { _ = database.Close() }, nil
}

// newEnv wires config, logging, storage and the exporter under baseDir.
func newEnv(baseDir string, cfg *config.Config, log *slog.Logger) (*env, func(), error) {
	store, closeStore, err := openStore(baseDir, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	exp := export.New(log, export.WithMaxBytes(cfg.MaxArtifactBytes))
	return &env{
		baseDir: baseDir,
		cfg:     cfg,
		log:     log,
		svc:     ops.New(store, exp, log),
		exp:     exp,
	}, closeStore, nil
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before storage init
	if isHelpOrVersion() {
		if err := newCLIApp(nil).Run(os.Args); err != nil {
			fail("%v", err)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fail("could not determine home directory: %v", err)
	}
	baseDir := filepath.Join(homeDir, ".autord")

	cfg, err := config.Load(baseDir)
	if err != nil {
		fail("failed to load config: %v", err)
	}

	// stdout carries MCP frames and CLI JSON, so logs go to stderr.
	log := logger.New(cfg.LogEnv, os.Stderr)

	e, closeStore, err := newEnv(baseDir, cfg, log)
	if err != nil {
		fail("%v", err)
	}
	defer closeStore()

	if isCLIMode() {
		if err := newCLIApp(e).Run(os.Args); err != nil {
			closeStore()
			fail("%v", err)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		closeStore()
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'autord --help' for usage.\n")
		os.Exit(1)
	}

	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		log.Warn("ignoring unknown disabled_tools", slog.Any("names", unknown))
	}
	if unknown := mcp.ValidateDisabledTypes(cfg.DisabledTypes); len(unknown) > 0 {
		log.Warn("ignoring unknown disabled_types", slog.Any("names", unknown))
	}

	log.Info("starting MCP server", slog.String("version", Version), slog.String("backend", cfg.StorageBackend))
	if err := mcp.Run(e.svc, e.exp, cfg, Version); err != nil {
		closeStore()
		fail("%v", err)
	}
}
