package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderEventType определяет тип изменения заказа.
type OrderEventType string

const (
	OrderEventCreated OrderEventType = "order.created"
	OrderEventUpdated OrderEventType = "order.updated"
)

// OrderEvent описывает зафиксированное изменение заказа.
type OrderEvent struct {
	ID         string         `json:"id"`
	Type       OrderEventType `json:"type"`
	OrderID    string         `json:"order_id"`
	CustomerID string         `json:"customer_id"`
	Total      int64          `json:"total"`
	ItemCount  int            `json:"item_count"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// NewOrderEvent снимает снимок заказа в событие с новым ID.
func NewOrderEvent(eventType OrderEventType, order Order) OrderEvent {
	return OrderEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Total:      order.Total(),
		ItemCount:  len(order.Items),
		OccurredAt: time.Now().UTC(),
	}
}

// OrderEventPublisher публикует события после коммита. Должен быть идемпотентным по ID.
type OrderEventPublisher interface {
	PublishOrderEvent(event OrderEvent) error
}
