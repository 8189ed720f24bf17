package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultOK    = "ok"
	ResultError = "error"
)

// StorageMetrics содержит метрики операций репозиториев.
type StorageMetrics struct {
	// Счётчик операций по репозиторию, операции и результату
	operations *prometheus.CounterVec
	// Время выполнения операций
	duration *prometheus.HistogramVec
	// Проглоченные ошибки обновления заказа
	updateFailures *prometheus.CounterVec
	// Ошибки публикации событий после коммита
	publishFailures prometheus.Counter
}

// NewStorageMetrics регистрирует метрики в DefaultRegisterer.
func NewStorageMetrics() *StorageMetrics {
	return NewStorageMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewStorageMetricsWithRegisterer позволяет изолировать метрики (например, в тестах).
func NewStorageMetricsWithRegisterer(registerer prometheus.Registerer) *StorageMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &StorageMetrics{
		operations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orderstore_repository_operations_total",
			Help: "Total number of repository operations grouped by repository, operation and result",
		}, []string{"repository", "operation", "result"}),
		duration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "orderstore_repository_operation_duration_seconds",
			Help:    "Duration of repository operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"repository", "operation"}),
		updateFailures: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orderstore_update_failures_total",
			Help: "Total number of rolled back updates that were not returned to the caller",
		}, []string{"repository"}),
		publishFailures: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orderstore_event_publish_failures_total",
			Help: "Total number of order events that failed to publish after commit",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// ObserveOperation фиксирует результат и длительность операции репозитория.
// Безопасен для nil-получателя, чтобы репозитории работали без метрик.
func (m *StorageMetrics) ObserveOperation(repository, operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.operations.WithLabelValues(repository, operation, result).Inc()
	m.duration.WithLabelValues(repository, operation).Observe(time.Since(started).Seconds())
}

// RecordUpdateFailure увеличивает счётчик откаченных и проглоченных обновлений.
func (m *StorageMetrics) RecordUpdateFailure(repository string) {
	if m == nil {
		return
	}
	m.updateFailures.WithLabelValues(repository).Inc()
}

// RecordPublishFailure увеличивает счётчик неотправленных событий.
func (m *StorageMetrics) RecordPublishFailure() {
	if m == nil {
		return
	}
	m.publishFailures.Inc()
}
