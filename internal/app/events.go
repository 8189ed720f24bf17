package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderstore/internal/domain"
	"github.com/vladislavdragonenkov/orderstore/internal/messaging/kafka"
)

// eventPublisher связывает публикацию с retry и producer, который надо закрыть.
type eventPublisher struct {
	domain.OrderEventPublisher
	producer *kafka.Producer
}

// openEventPublisher возвращает nil, если брокеры не заданы или недоступны:
// сервис продолжает работу без событий.
func openEventPublisher(brokers string, logger *log.Entry) *eventPublisher {
	brokerList := kafka.ParseBrokers(brokers)
	if len(brokerList) == 0 {
		return nil
	}

	producer, err := kafka.NewProducer(brokerList, kafka.WithClientID("orderstore"))
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without order events")
		return nil
	}

	logger.WithField("brokers", brokerList).Info("kafka producer initialized")
	return &eventPublisher{
		OrderEventPublisher: kafka.NewRetryingPublisher(producer, kafka.DefaultRetryConfig(), logger.WithField("component", "event-publisher")),
		producer:            producer,
	}
}

func (p *eventPublisher) close(logger *log.Entry) {
	if p == nil || p.producer == nil {
		return
	}
	if err := p.producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
		return
	}
	logger.Info("kafka producer closed")
}
