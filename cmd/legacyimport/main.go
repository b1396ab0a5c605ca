package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/productmanage/internal/app"
	"github.com/odyssey-erp/productmanage/internal/legacy"
	"github.com/odyssey-erp/productmanage/internal/platform/db"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping legacy import")
		return
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("legacyimport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	mysqlDSN := fs.String("mysql-dsn", "", "legacy MySQL DSN (defaults to LEGACY_MYSQL_DSN)")
	dryRun := fs.Bool("dry-run", false, "read and validate the legacy data without writing")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(stderr, "usage: legacyimport [-mysql-dsn DSN] [-dry-run]")
		return 2
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return 1
	}
	if *mysqlDSN != "" {
		cfg.LegacyDSN = *mysqlDSN
	}
	logger := app.NewLogger(cfg)

	source, err := legacy.OpenMySQL(ctx, cfg.LegacyDSN)
	if err != nil {
		logger.Error("connect legacy mysql", slog.Any("error", err))
		return 1
	}
	defer source.Close()

	snap, err := legacy.NewReader(source).Load(ctx)
	if err != nil {
		logger.Error("read legacy data", slog.Any("error", err))
		return 1
	}
	snap, err = legacy.Prepare(snap, bcrypt.DefaultCost)
	if err != nil {
		logger.Error("legacy data rejected", slog.Any("error", err))
		return 1
	}
	if *dryRun {
		printStats(stdout, counts(snap))
		return 0
	}

	pool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: 2})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		return 1
	}
	defer pool.Close()

	stats, err := legacy.NewImporter(pool, logger).Import(ctx, snap)
	if err != nil {
		logger.Error("import legacy data", slog.Any("error", err))
		return 1
	}
	printStats(stdout, stats)
	return 0
}

func counts(snap legacy.Snapshot) legacy.Stats {
	return legacy.Stats{
		"roles":                len(snap.Roles),
		"users":                len(snap.Users),
		"categories":           len(snap.Categories),
		"suppliers":            len(snap.Suppliers),
		"products":             len(snap.Products),
		"supplies":             len(snap.Supplies),
		"supply_items":         len(snap.SupplyItems),
		"financial_operations": len(snap.Operations),
	}
}

func printStats(w io.Writer, stats legacy.Stats) {
	tables := make([]string, 0, len(stats))
	for table := range stats {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	for _, table := range tables {
		fmt.Fprintf(w, "%s=%d\n", table, stats[table])
	}
}
