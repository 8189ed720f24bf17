package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderstore/internal/domain"
)

// OrderEventHandler получает разобранное событие заказа.
// Ошибка оставляет сообщение неподтверждённым.
type OrderEventHandler func(ctx context.Context, event domain.OrderEvent) error

// ConsumerConfig описывает подписку на события заказов.
type ConsumerConfig struct {
	Brokers []string
	GroupID string
	// Topic по умолчанию TopicOrderEvents.
	Topic string
	// FromOldest читает топик с начала, иначе только новые события.
	FromOldest bool
}

// OrderEventConsumer читает события заказов через consumer group.
type OrderEventConsumer struct {
	group   sarama.ConsumerGroup
	topic   string
	handler OrderEventHandler
	logger  *log.Entry
}

func NewOrderEventConsumer(cfg ConsumerConfig, handler OrderEventHandler) (*OrderEventConsumer, error) {
	if handler == nil {
		return nil, errors.New("order event handler is required")
	}
	if cfg.GroupID == "" {
		return nil, errors.New("consumer group id is required")
	}
	if cfg.Topic == "" {
		cfg.Topic = TopicOrderEvents
	}

	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	config.Consumer.Offsets.Initial = sarama.OffsetNewest
	if cfg.FromOldest {
		config.Consumer.Offsets.Initial = sarama.OffsetOldest
	}
	config.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer: %w", err)
	}
	return newOrderEventConsumer(group, cfg.Topic, handler), nil
}

func newOrderEventConsumer(group sarama.ConsumerGroup, topic string, handler OrderEventHandler) *OrderEventConsumer {
	return &OrderEventConsumer{
		group:   group,
		topic:   topic,
		handler: handler,
		logger:  log.WithFields(log.Fields{"component": "kafka-consumer", "topic": topic}),
	}
}

// Run читает события до отмены ctx и закрывает группу перед выходом.
func (c *OrderEventConsumer) Run(ctx context.Context) error {
	errsDone := make(chan struct{})
	go func() {
		defer close(errsDone)
		for err := range c.group.Errors() {
			c.logger.WithError(err).Warn("consumer group error")
		}
	}()

	c.logger.Info("kafka consumer started")

	var runErr error
	for ctx.Err() == nil {
		// Consume возвращается на каждом rebalance, поэтому вызывается в цикле.
		if err := c.group.Consume(ctx, []string{c.topic}, c); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				break
			}
			runErr = fmt.Errorf("consume %s: %w", c.topic, err)
			break
		}
	}

	if err := c.group.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to close kafka consumer: %w", err)
	}
	<-errsDone
	c.logger.Info("kafka consumer stopped")
	return runErr
}

func (c *OrderEventConsumer) Setup(sarama.ConsumerGroupSession) error { return nil }

func (c *OrderEventConsumer) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim подтверждает сообщение после успешной обработки.
// Неразбираемые сообщения подтверждаются сразу, иначе партиция застрянет на них.
func (c *OrderEventConsumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			c.handle(session, message)
		case <-session.Context().Done():
			return nil
		}
	}
}

func (c *OrderEventConsumer) handle(session sarama.ConsumerGroupSession, message *sarama.ConsumerMessage) {
	logger := c.logger.WithFields(log.Fields{
		"partition": message.Partition,
		"offset":    message.Offset,
	})

	event, err := ParseOrderEvent(message)
	if err != nil {
		logger.WithError(err).Warn("skipping malformed order event")
		session.MarkMessage(message, "")
		return
	}

	if err := c.handler(session.Context(), event); err != nil {
		logger.WithError(err).WithField("order_id", event.OrderID).Error("order event handling failed")
		return
	}
	session.MarkMessage(message, "")
}
