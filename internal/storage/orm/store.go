package orm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"

	defaultConnTimeout     = 5 * time.Second
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 25
	defaultConnMaxLifetime = 30 * time.Minute
	defaultConnMaxIdleTime = 5 * time.Minute
)

// Config описывает подключение к реляционному хранилищу.
type Config struct {
	// Dialect — sqlite или postgres.
	Dialect string
	// DSN — путь к файлу SQLite (пусто или ":memory:" для in-memory) либо PostgreSQL DSN.
	DSN string
	// Logger получает SQL-ошибки и медленные запросы GORM.
	Logger *log.Entry
	// SlowQueryThreshold — порог медленного запроса; 0 отключает предупреждения.
	SlowQueryThreshold time.Duration
}

// Store оборачивает GORM-подключение и знает свой диалект.
type Store struct {
	db      *gorm.DB
	dialect string
}

// Open открывает хранилище по диалекту из конфигурации.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Dialect)) {
	case DialectSQLite:
		return OpenSQLite(ctx, cfg)
	case DialectPostgres:
		return OpenPostgres(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported dialect: %q", cfg.Dialect)
	}
}

// OpenSQLite открывает SQLite с включёнными внешними ключами.
// Пул ограничен одним соединением: SQLite допускает одного писателя.
func OpenSQLite(ctx context.Context, cfg Config) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(sqliteDSN(cfg.DSN)), gormConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("open sqlite connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	store := &Store{db: db, dialect: DialectSQLite}
	if err := store.Ping(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return store, nil
}

// OpenPostgres открывает PostgreSQL через pgx stdlib и поднимает поверх него GORM.
func OpenPostgres(ctx context.Context, cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, errors.New("postgres dsn is required")
	}

	sqlDB, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(defaultMaxOpenConns)
	sqlDB.SetMaxIdleConns(defaultMaxIdleConns)
	sqlDB.SetConnMaxLifetime(defaultConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(defaultConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, defaultConnTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormConfig(cfg))
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("open gorm over postgres: %w", err)
	}

	return &Store{db: db, dialect: DialectPostgres}, nil
}

func gormConfig(cfg Config) *gorm.Config {
	logger := cfg.Logger
	if logger == nil {
		logger = log.WithField("component", "orm")
	}
	return &gorm.Config{
		Logger: newGormLogger(logger, cfg.SlowQueryThreshold),
	}
}

// sqliteDSN добавляет к пути параметры драйвера mattn/go-sqlite3.
// Пустой путь даёт именованную in-memory базу, уникальную для Store.
func sqliteDSN(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || path == ":memory:" {
		return "file:orderstore-" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=1"
	}

	params := "_foreign_keys=1&_busy_timeout=5000&_journal_mode=WAL"
	if strings.Contains(path, "?") {
		return path + "&" + params
	}
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	return path + "?" + params
}

// DB возвращает GORM-сессию, когда нужен низкоуровневый доступ.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Dialect возвращает имя диалекта хранилища.
func (s *Store) Dialect() string {
	return s.dialect
}

// Ping проверяет доступность подключения.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("orm store is not initialized")
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultConnTimeout)
	defer cancel()
	return sqlDB.PingContext(pingCtx)
}

// AutoMigrate создаёт схему по моделям без журнала миграций.
func (s *Store) AutoMigrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Close закрывает пул соединений.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
