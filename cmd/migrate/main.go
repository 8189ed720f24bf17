package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderstore/internal/storage/orm"
)

const (
	defaultTimeout = 30 * time.Second
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.WarnLevel)

	if err := run(os.Args[1:], os.Stdout, os.LookupEnv); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fail("%v", err)
	}
}

// run разбирает флаги и выполняет миграцию; вынесено из main для тестов.
func run(args []string, stdout io.Writer, lookup func(string) (string, bool)) error {
	var (
		direction string
		steps     int
		driver    string
		dsn       string
	)

	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.StringVar(&direction, "direction", "up", "migration direction: up|down|status")
	fs.IntVar(&steps, "steps", 0, "number of migrations to apply/rollback (0=all for up, 1 for down)")
	fs.StringVar(&driver, "driver", "", "storage driver: postgres|sqlite (fallback: OMS_STORAGE_DRIVER, default postgres)")
	fs.StringVar(&dsn, "dsn", "", "PostgreSQL DSN or SQLite path (fallback: OMS_POSTGRES_DSN / OMS_SQLITE_PATH)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	driver = strings.ToLower(strings.TrimSpace(driver))
	if driver == "" {
		driver = envValue(lookup, "OMS_STORAGE_DRIVER")
	}
	if driver == "" || driver == "memory" {
		driver = orm.DialectPostgres
	}

	if strings.TrimSpace(dsn) == "" {
		switch driver {
		case orm.DialectSQLite:
			dsn = envValue(lookup, "OMS_SQLITE_PATH")
		default:
			dsn = envValue(lookup, "OMS_POSTGRES_DSN")
		}
	}
	if dsn == "" {
		if driver == orm.DialectSQLite {
			return errors.New("OMS_SQLITE_PATH (or -dsn) is required: migrating an in-memory database has no effect")
		}
		return errors.New("OMS_POSTGRES_DSN (or -dsn) is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	store, err := orm.Open(ctx, orm.Config{Dialect: driver, DSN: dsn})
	if err != nil {
		return fmt.Errorf("open %s store: %w", driver, err)
	}
	defer store.Close()

	var label string
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "up":
		if err := store.MigrateUp(ctx, steps); err != nil {
			return fmt.Errorf("migrate up failed: %w", err)
		}
		label = "migrate up ok"
	case "down":
		if steps <= 0 {
			steps = 1
		}
		if err := store.MigrateDown(ctx, steps); err != nil {
			return fmt.Errorf("migrate down failed: %w", err)
		}
		label = "migrate down ok"
	case "status":
		label = "migration status"
	default:
		return fmt.Errorf("unsupported direction: %s (use up|down|status)", direction)
	}

	version, count, err := store.MigrationStatus(ctx)
	if err != nil {
		return fmt.Errorf("migration status failed: %w", err)
	}
	_, _ = fmt.Fprintf(stdout, "%s: version=%d applied=%d\n", label, version, count)
	return nil
}

func envValue(lookup func(string) (string, bool), key string) string {
	v, _ := lookup(key)
	return strings.TrimSpace(v)
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
