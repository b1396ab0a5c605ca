package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/odyssey-erp/productmanage/internal/app"
	"github.com/odyssey-erp/productmanage/internal/platform/db"
)

// schemaMigrator is the subset of db.Migrator the commands need.
type schemaMigrator interface {
	Up() error
	Down() error
	Version() (uint, bool, error)
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping migrate")
		return
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dsn := fs.String("dsn", "", "PostgreSQL DSN (defaults to PG_DSN)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: migrate [-dsn DSN] up|down|version")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	command := fs.Arg(0)
	switch command {
	case "up", "down", "version":
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", command)
		fs.Usage()
		return 2
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return 1
	}
	if *dsn != "" {
		cfg.PGDSN = *dsn
	}
	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: 2})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		return 1
	}
	defer pool.Close()

	migrator, err := db.NewMigrator(pool, logger)
	if err != nil {
		logger.Error("init migrator", slog.Any("error", err))
		return 1
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			logger.Warn("close migrator", slog.Any("error", err))
		}
	}()

	if err := execute(command, migrator, stdout); err != nil {
		logger.Error("migrate "+command, slog.Any("error", err))
		return 1
	}
	return 0
}

func execute(command string, m schemaMigrator, stdout io.Writer) error {
	switch command {
	case "up":
		if err := m.Up(); err != nil {
			return err
		}
	case "down":
		if err := m.Down(); err != nil {
			return err
		}
	case "version":
	default:
		return fmt.Errorf("unknown command %q", command)
	}
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "version=%d dirty=%t\n", version, dirty)
	return nil
}
