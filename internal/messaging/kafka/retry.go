package kafka

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderstore/internal/domain"
)

// RetryConfig конфигурация повторной публикации.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig возвращает конфигурацию по умолчанию.
// Публикация идёт в пути запроса к хранилищу, поэтому задержки короткие.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  50 * time.Millisecond,
		MaxDelay:      500 * time.Millisecond,
		BackoffFactor: 2.0,
	}
}

// RetryingPublisher повторяет публикацию события с экспоненциальной задержкой.
type RetryingPublisher struct {
	next   domain.OrderEventPublisher
	config RetryConfig
	logger *log.Entry
	sleep  func(time.Duration)
}

// NewRetryingPublisher оборачивает publisher retry логикой.
func NewRetryingPublisher(next domain.OrderEventPublisher, config RetryConfig, logger *log.Entry) *RetryingPublisher {
	if logger == nil {
		logger = log.New().WithField("component", "retrying-publisher")
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}
	if config.BackoffFactor < 1 {
		config.BackoffFactor = 1
	}

	return &RetryingPublisher{
		next:   next,
		config: config,
		logger: logger,
		sleep:  time.Sleep,
	}
}

// PublishOrderEvent возвращает последнюю ошибку, если все попытки исчерпаны.
func (p *RetryingPublisher) PublishOrderEvent(event domain.OrderEvent) error {
	var lastErr error
	delay := p.config.InitialDelay

	for attempt := 1; attempt <= p.config.MaxAttempts; attempt++ {
		err := p.next.PublishOrderEvent(event)
		if err == nil {
			if attempt > 1 {
				p.logger.WithFields(log.Fields{
					"order_id": event.OrderID,
					"attempt":  attempt,
				}).Info("event published after retry")
			}
			return nil
		}

		lastErr = err
		if attempt == p.config.MaxAttempts {
			break
		}

		p.logger.WithFields(log.Fields{
			"order_id": event.OrderID,
			"attempt":  attempt,
			"delay":    delay,
		}).WithError(err).Warn("publish failed, retrying")

		p.sleep(delay)

		delay = time.Duration(float64(delay) * p.config.BackoffFactor)
		if p.config.MaxDelay > 0 && delay > p.config.MaxDelay {
			delay = p.config.MaxDelay
		}
	}

	return lastErr
}

var _ domain.OrderEventPublisher = (*RetryingPublisher)(nil)
