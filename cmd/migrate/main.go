// Command migrate applies the embedded schema migrations to the configured
// PostgreSQL database.
//
// Usage:
//
//	migrate [-config file] [-timeout d] [up|down|status]
//
// The default command is up. Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/heartmarshall/erp-backend/internal/app"
	"github.com/heartmarshall/erp-backend/internal/config"
	"github.com/heartmarshall/erp-backend/migrations"
)

func main() {
	timeout := flag.Duration("timeout", 5*time.Minute, "overall timeout")
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "YAML config file")
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := app.NewLogger(cfg.Log)

	if cfg.Database.Driver != config.DriverPostgres {
		logger.Error("migrations need the postgres driver", slog.String("driver", cfg.Database.Driver))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, logger, cfg.Database.DSN, command); err != nil {
		logger.Error("migrate failed", slog.String("command", command), slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, dsn, command string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}

	switch command {
	case "up":
		results, err := provider.Up(ctx)
		if err != nil {
			return err
		}
		for _, r := range results {
			logger.Info("applied migration",
				slog.Int64("version", r.Source.Version),
				slog.Duration("duration", r.Duration),
			)
		}
		logger.Info("migrations up to date", slog.Int("applied", len(results)))

	case "down":
		r, err := provider.Down(ctx)
		if err != nil {
			return err
		}
		logger.Info("rolled back migration", slog.Int64("version", r.Source.Version))

	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return err
		}
		for _, s := range statuses {
			logger.Info("migration",
				slog.Int64("version", s.Source.Version),
				slog.String("state", string(s.State)),
				slog.Time("applied_at", s.AppliedAt),
			)
		}

	default:
		return fmt.Errorf("unknown command %q (want up, down or status)", command)
	}
	return nil
}
