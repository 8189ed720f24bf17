package orm

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderstore/internal/domain"
	"github.com/vladislavdragonenkov/orderstore/internal/metrics"
)

type options struct {
	logger        *log.Entry
	metrics       *metrics.StorageMetrics
	publisher     domain.OrderEventPublisher
	strictUpdates bool
}

// Option настраивает репозитории пакета.
type Option func(*options)

// WithLogger задаёт logger репозитория.
func WithLogger(logger *log.Entry) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics включает учёт операций в Prometheus.
func WithMetrics(m *metrics.StorageMetrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithEventPublisher задаёт публикацию событий заказа после коммита.
func WithEventPublisher(publisher domain.OrderEventPublisher) Option {
	return func(o *options) {
		o.publisher = publisher
	}
}

// WithStrictUpdates заставляет OrderRepository.Update возвращать ошибку
// вместо записи в лог.
func WithStrictUpdates() Option {
	return func(o *options) {
		o.strictUpdates = true
	}
}

func newOptions(component string, opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.WithField("component", component)
	}
	return o
}
