package memory

import (
	"errors"

	log "github.com/sirupsen/logrus"
)

// ErrDuplicateID возвращается Create, если запись с таким ID уже есть.
var ErrDuplicateID = errors.New("memory: id already exists")

type options struct {
	logger        *log.Entry
	strictUpdates bool
}

// Option настраивает in-memory репозитории.
type Option func(*options)

// WithLogger задаёт logger репозитория.
func WithLogger(logger *log.Entry) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStrictUpdates заставляет OrderRepository.Update возвращать ошибку.
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
