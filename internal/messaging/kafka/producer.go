package kafka

import (
	"fmt"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderstore/internal/domain"
)

// Producer публикует события заказов в Kafka.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	logger   *log.Entry
}

// ProducerOption настраивает Producer.
type ProducerOption func(*producerOptions)

type producerOptions struct {
	topic    string
	clientID string
}

// WithTopic переопределяет топик событий.
func WithTopic(topic string) ProducerOption {
	return func(o *producerOptions) {
		if topic != "" {
			o.topic = topic
		}
	}
}

// WithClientID задаёт client.id, видимый в метриках брокера.
func WithClientID(clientID string) ProducerOption {
	return func(o *producerOptions) {
		if clientID != "" {
			o.clientID = clientID
		}
	}
}

// NewProducer подключается к брокерам. Доставка идемпотентная, с подтверждением от всех реплик.
func NewProducer(brokers []string, opts ...ProducerOption) (*Producer, error) {
	o := producerOptions{topic: TopicOrderEvents, clientID: "orderstore"}
	for _, opt := range opts {
		opt(&o)
	}

	config := sarama.NewConfig()
	config.ClientID = o.clientID
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return newProducer(producer, o.topic), nil
}

func newProducer(producer sarama.SyncProducer, topic string) *Producer {
	return &Producer{
		producer: producer,
		topic:    topic,
		logger:   log.WithFields(log.Fields{"component": "kafka-producer", "topic": topic}),
	}
}

// PublishOrderEvent синхронно отправляет событие и ждёт подтверждения.
func (p *Producer) PublishOrderEvent(event domain.OrderEvent) error {
	msg, err := encodeOrderEvent(p.topic, event)
	if err != nil {
		return err
	}

	logger := p.logger.WithFields(log.Fields{
		"order_id":   event.OrderID,
		"event_type": event.Type,
	})

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		logger.WithError(err).Error("failed to send order event")
		return fmt.Errorf("send order event %s: %w", event.ID, err)
	}

	logger.WithFields(log.Fields{
		"partition": partition,
		"offset":    offset,
	}).Debug("order event sent")
	return nil
}

func (p *Producer) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	return nil
}

var _ domain.OrderEventPublisher = (*Producer)(nil)
