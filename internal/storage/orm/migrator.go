package orm

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	migrationsGlob   = "sql/migrations/*.sql"
	migrationLockKey = int64(10824702)
)

var (
	//go:embed sql/migrations/*.sql
	migrationsFS embed.FS

	migrationFilePattern = regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_]+)\.(up|down)\.sql$`)
)

// schemaMigration — запись журнала применённых миграций.
type schemaMigration struct {
	Version   int64     `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"not null"`
	AppliedAt time.Time `gorm:"not null"`
}

func (schemaMigration) TableName() string { return "schema_migrations" }

type migration struct {
	Version int64
	Name    string
	UpSQL   string
	DownSQL string
}

func (m migration) String() string {
	return fmt.Sprintf("%d_%s", m.Version, m.Name)
}

// MigrateUp применяет up-миграции.
// steps=0 означает "применить все доступные".
func (s *Store) MigrateUp(ctx context.Context, steps int) error {
	migrations, err := loadMigrationsFromFS(migrationsFS)
	if err != nil {
		return err
	}

	return s.withMigrationLock(ctx, func(conn *gorm.DB) error {
		applied, err := appliedVersions(conn)
		if err != nil {
			return err
		}

		done := 0
		for _, m := range migrations {
			if applied[m.Version] {
				continue
			}
			if steps > 0 && done >= steps {
				break
			}
			err := conn.Transaction(func(tx *gorm.DB) error {
				if err := tx.Exec(m.UpSQL).Error; err != nil {
					return fmt.Errorf("execute up migration %s: %w", m, err)
				}
				record := schemaMigration{Version: m.Version, Name: m.Name, AppliedAt: time.Now().UTC()}
				if err := tx.Create(&record).Error; err != nil {
					return fmt.Errorf("record up migration %s: %w", m, err)
				}
				return nil
			})
			if err != nil {
				return err
			}
			done++
		}
		return nil
	})
}

// MigrateDown откатывает миграции в обратном порядке.
// steps<=0 интерпретируется как 1 шаг.
func (s *Store) MigrateDown(ctx context.Context, steps int) error {
	if steps <= 0 {
		steps = 1
	}

	migrations, err := loadMigrationsFromFS(migrationsFS)
	if err != nil {
		return err
	}
	byVersion := make(map[int64]migration, len(migrations))
	for _, m := range migrations {
		byVersion[m.Version] = m
	}

	return s.withMigrationLock(ctx, func(conn *gorm.DB) error {
		var records []schemaMigration
		if err := conn.Order("version DESC").Limit(steps).Find(&records).Error; err != nil {
			return fmt.Errorf("query applied migrations: %w", err)
		}

		for _, record := range records {
			m, ok := byVersion[record.Version]
			if !ok {
				return fmt.Errorf("cannot rollback unknown migration version %d", record.Version)
			}
			err := conn.Transaction(func(tx *gorm.DB) error {
				if err := tx.Exec(m.DownSQL).Error; err != nil {
					return fmt.Errorf("execute down migration %s: %w", m, err)
				}
				if err := tx.Delete(&schemaMigration{}, "version = ?", m.Version).Error; err != nil {
					return fmt.Errorf("delete migration record %s: %w", m, err)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// MigrationStatus возвращает текущую версию и количество применённых миграций.
func (s *Store) MigrationStatus(ctx context.Context) (int64, int, error) {
	if s == nil || s.db == nil {
		return 0, 0, errors.New("orm store is not initialized")
	}

	db := s.db.WithContext(ctx)
	if err := db.AutoMigrate(&schemaMigration{}); err != nil {
		return 0, 0, fmt.Errorf("ensure migration table: %w", err)
	}

	var status struct {
		Version int64
		Applied int
	}
	if err := db.Model(&schemaMigration{}).
		Select("COALESCE(MAX(version), 0) AS version, COUNT(*) AS applied").
		Scan(&status).Error; err != nil {
		return 0, 0, fmt.Errorf("query migration status: %w", err)
	}

	return status.Version, status.Applied, nil
}

// withMigrationLock выполняет fn на одном соединении.
// Для PostgreSQL соединение держит advisory lock, чтобы миграции не шли параллельно.
func (s *Store) withMigrationLock(ctx context.Context, fn func(conn *gorm.DB) error) error {
	if s == nil || s.db == nil {
		return errors.New("orm store is not initialized")
	}

	return s.db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		if s.dialect == DialectPostgres {
			if err := conn.Exec("SELECT pg_advisory_lock(?)", migrationLockKey).Error; err != nil {
				return fmt.Errorf("acquire migration lock: %w", err)
			}
			defer conn.WithContext(context.Background()).Exec("SELECT pg_advisory_unlock(?)", migrationLockKey)
		}

		if err := conn.AutoMigrate(&schemaMigration{}); err != nil {
			return fmt.Errorf("ensure migration table: %w", err)
		}
		return fn(conn)
	})
}

func appliedVersions(conn *gorm.DB) (map[int64]bool, error) {
	var versions []int64
	if err := conn.Model(&schemaMigration{}).Pluck("version", &versions).Error; err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}

	applied := make(map[int64]bool, len(versions))
	for _, v := range versions {
		applied[v] = true
	}
	return applied, nil
}

func loadMigrationsFromFS(fsys fs.FS) ([]migration, error) {
	files, err := fs.Glob(fsys, migrationsGlob)
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("no migration files found")
	}

	byVersion := make(map[int64]*migration)
	for _, file := range files {
		base := path.Base(file)
		parts := migrationFilePattern.FindStringSubmatch(base)
		if parts == nil {
			return nil, fmt.Errorf("invalid migration file name: %s", base)
		}

		version, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse migration version from %s: %w", base, err)
		}
		name, direction := parts[2], parts[3]

		raw, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("read migration file %s: %w", file, err)
		}
		body := strings.TrimSpace(string(raw))
		if body == "" {
			return nil, fmt.Errorf("migration file is empty: %s", base)
		}

		m, ok := byVersion[version]
		if !ok {
			m = &migration{Version: version, Name: name}
			byVersion[version] = m
		} else if m.Name != name {
			return nil, fmt.Errorf("migration name mismatch for version %d: %s vs %s", version, m.Name, name)
		}

		target := &m.UpSQL
		if direction == "down" {
			target = &m.DownSQL
		}
		if *target != "" {
			return nil, fmt.Errorf("duplicate %s migration for version %d", direction, version)
		}
		*target = body
	}

	migrations := make([]migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.UpSQL == "" || m.DownSQL == "" {
			return nil, fmt.Errorf("migration %s must have both up and down files", m)
		}
		migrations = append(migrations, *m)
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })

	return migrations, nil
}
