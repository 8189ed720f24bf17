package kafka

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/IBM/sarama"

	"github.com/vladislavdragonenkov/orderstore/internal/domain"
)

// TopicOrderEvents — топик событий заказов.
const TopicOrderEvents = "orderstore.order.events"

// Заголовки дублируют метаданные события, чтобы фильтровать без разбора JSON.
const (
	HeaderEventType = "x-event-type"
	HeaderEventID   = "x-event-id"
)

// encodeOrderEvent собирает сообщение: ключ — ID заказа,
// поэтому события одного заказа попадают в одну партицию и сохраняют порядок.
func encodeOrderEvent(topic string, event domain.OrderEvent) (*sarama.ProducerMessage, error) {
	if event.OrderID == "" {
		return nil, fmt.Errorf("order event %q has no order id", event.ID)
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal order event: %w", err)
	}

	return &sarama.ProducerMessage{
		Topic:     topic,
		Key:       sarama.StringEncoder(event.OrderID),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: event.OccurredAt,
		Headers: []sarama.RecordHeader{
			{Key: []byte(HeaderEventType), Value: []byte(event.Type)},
			{Key: []byte(HeaderEventID), Value: []byte(event.ID)},
		},
	}, nil
}

// ParseOrderEvent разбирает OrderEvent из сообщения.
func ParseOrderEvent(message *sarama.ConsumerMessage) (domain.OrderEvent, error) {
	var event domain.OrderEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return domain.OrderEvent{}, fmt.Errorf("unmarshal order event: %w", err)
	}
	if event.OrderID == "" {
		return domain.OrderEvent{}, fmt.Errorf("order event %q has no order id", event.ID)
	}
	if event.Type == "" {
		event.Type = domain.OrderEventType(headerValue(message.Headers, HeaderEventType))
	}
	return event, nil
}

func headerValue(headers []*sarama.RecordHeader, key string) string {
	for _, h := range headers {
		if h != nil && string(h.Key) == key {
			return string(h.Value)
		}
	}
	return ""
}

// ParseBrokers разбирает список брокеров через запятую, пропуская пустые элементы.
func ParseBrokers(raw string) []string {
	var out []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
