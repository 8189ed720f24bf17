package app

import "time"

const (
	StorageDriverMemory   = "memory"
	StorageDriverSQLite   = "sqlite"
	StorageDriverPostgres = "postgres"
)

// Config описывает настройки запуска приложения.
type Config struct {
	GRPCAddr    string
	MetricsAddr string

	// StorageDriver — memory, sqlite или postgres.
	StorageDriver string
	// SQLitePath — файл базы SQLite; пусто означает in-memory базу.
	SQLitePath  string
	PostgresDSN string
	// AutoMigrate применяет встроенные миграции при старте.
	AutoMigrate bool
	// StrictUpdates заставляет OrderRepository.Update возвращать ошибки.
	StrictUpdates bool

	// KafkaBrokers — список брокеров через запятую; пусто отключает публикацию событий.
	KafkaBrokers string
	// HealthInterval — период проверки хранилища для gRPC health.
	HealthInterval time.Duration
}

// DefaultConfig возвращает конфигурацию для локального запуска.
func DefaultConfig() Config {
	return Config{
		GRPCAddr:       ":50051",
		MetricsAddr:    ":9090",
		StorageDriver:  StorageDriverMemory,
		AutoMigrate:    true,
		HealthInterval: 10 * time.Second,
	}
}
