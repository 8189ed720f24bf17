package app

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderstore/internal/domain"
	"github.com/vladislavdragonenkov/orderstore/internal/health"
	"github.com/vladislavdragonenkov/orderstore/internal/metrics"
	"github.com/vladislavdragonenkov/orderstore/internal/storage/memory"
	"github.com/vladislavdragonenkov/orderstore/internal/storage/orm"
)

// Repositories содержит репозитории выбранного хранилища.
type Repositories struct {
	Customers domain.CustomerRepository
	Products  domain.ProductRepository
	Orders    domain.OrderRepository

	// Pinger равен nil для in-memory хранилища.
	Pinger health.Pinger

	store  *orm.Store
	events *eventPublisher
	logger *log.Entry
}

// Close освобождает соединения хранилища и Kafka.
func (r *Repositories) Close() error {
	if r == nil {
		return nil
	}
	r.events.close(r.logger)
	if r.store != nil {
		return r.store.Close()
	}
	return nil
}

// OpenRepositories открывает хранилище по конфигурации и собирает репозитории.
// storageMetrics может быть nil.
func OpenRepositories(ctx context.Context, cfg Config, logger *log.Entry, storageMetrics *metrics.StorageMetrics) (*Repositories, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	switch driver {
	case "", StorageDriverMemory:
		var opts []memory.Option
		if cfg.StrictUpdates {
			opts = append(opts, memory.WithStrictUpdates())
		}
		logger.Info("using in-memory storage")
		return &Repositories{
			Customers: memory.NewCustomerRepository(),
			Products:  memory.NewProductRepository(),
			Orders:    memory.NewOrderRepository(opts...),
			logger:    logger,
		}, nil
	case StorageDriverSQLite, StorageDriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported storage driver: %q", cfg.StorageDriver)
	}

	dsn := cfg.SQLitePath
	if driver == StorageDriverPostgres {
		dsn = cfg.PostgresDSN
	}
	store, err := orm.Open(ctx, orm.Config{
		Dialect: driver,
		DSN:     dsn,
		Logger:  logger.WithField("layer", "orm"),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", driver, err)
	}

	if cfg.AutoMigrate {
		if err := store.MigrateUp(ctx, 0); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		version, applied, err := store.MigrationStatus(ctx)
		if err == nil {
			logger.WithFields(log.Fields{"version": version, "applied": applied}).Info("schema migrations applied")
		}
	}

	repos := &Repositories{Pinger: store, store: store, logger: logger}

	opts := []orm.Option{orm.WithMetrics(storageMetrics)}
	if cfg.StrictUpdates {
		opts = append(opts, orm.WithStrictUpdates())
	}
	if events := openEventPublisher(cfg.KafkaBrokers, logger); events != nil {
		repos.events = events
		opts = append(opts, orm.WithEventPublisher(events))
	}

	repos.Customers = orm.NewCustomerRepository(store, orm.WithMetrics(storageMetrics))
	repos.Products = orm.NewProductRepository(store, orm.WithMetrics(storageMetrics))
	repos.Orders = orm.NewOrderRepository(store, opts...)

	logger.WithField("driver", driver).Info("storage initialized")
	return repos, nil
}
