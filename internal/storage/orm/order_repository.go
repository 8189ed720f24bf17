package orm

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vladislavdragonenkov/orderstore/internal/domain"
	"github.com/vladislavdragonenkov/orderstore/internal/metrics"
)

const (
	opTimeout = 5 * time.Second

	repoOrder = "order"
)

type orderRepository struct {
	db            *gorm.DB
	logger        *log.Entry
	metrics       *metrics.StorageMetrics
	publisher     domain.OrderEventPublisher
	strictUpdates bool
}

// NewOrderRepository создаёт ORM-реализацию OrderRepository.
func NewOrderRepository(store *Store, opts ...Option) domain.OrderRepository {
	o := newOptions("order-repository", opts)
	return &orderRepository{
		db:            store.DB(),
		logger:        o.logger,
		metrics:       o.metrics,
		publisher:     o.publisher,
		strictUpdates: o.strictUpdates,
	}
}

// Create вставляет заказ и его позиции в одной транзакции.
// Ошибки хранилища (в том числе дубликат ID) возвращаются без перевода.
func (r *orderRepository) Create(ctx context.Context, order domain.Order) (err error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	defer r.observe("create", time.Now(), &err)

	model := toOrderModel(order)
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Позиции вставляются отдельным INSERT: вложенное сохранение ассоциаций
		// в GORM делает upsert и молча перенесло бы чужую позицию в этот заказ.
		if err := tx.Omit(clause.Associations).Create(&model).Error; err != nil {
			return err
		}
		if len(model.Items) == 0 {
			return nil
		}
		return tx.Create(&model.Items).Error
	})
	if err != nil {
		return err
	}

	r.publish(domain.OrderEventCreated, order)
	return nil
}

// Update заменяет позиции заказа и пересчитывает total в одной транзакции.
// При ошибке транзакция откатывается; без WithStrictUpdates ошибка только логируется.
func (r *orderRepository) Update(ctx context.Context, order domain.Order) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	started := time.Now()

	items := toOrderItemModels(order)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&OrderModel{}).Where("id = ?", order.ID).Update("total", order.Total())
		if res.Error != nil {
			return fmt.Errorf("update order total: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrOrderNotFound
		}

		if err := tx.Where("order_id = ?", order.ID).Delete(&OrderItemModel{}).Error; err != nil {
			return fmt.Errorf("delete order items: %w", err)
		}
		if len(items) == 0 {
			return nil
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("insert order items: %w", err)
		}
		return nil
	})
	r.metrics.ObserveOperation(repoOrder, "update", started, err)

	if err != nil {
		if r.strictUpdates {
			return fmt.Errorf("update order %s: %w", order.ID, err)
		}
		r.metrics.RecordUpdateFailure(repoOrder)
		r.logger.WithError(err).WithField("order_id", order.ID).Error("order update rolled back")
		return nil
	}

	r.publish(domain.OrderEventUpdated, order)
	return nil
}

// Find возвращает заказ с позициями. Любая ошибка поиска сводится к ErrOrderNotFound.
func (r *orderRepository) Find(ctx context.Context, id string) (_ domain.Order, err error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	defer r.observe("find", time.Now(), &err)

	var model OrderModel
	if err := withItems(r.db.WithContext(ctx)).Where("id = ?", id).Take(&model).Error; err != nil {
		r.logger.WithError(err).WithField("order_id", id).Debug("order lookup failed")
		return domain.Order{}, domain.ErrOrderNotFound
	}

	return toOrderEntity(model), nil
}

// FindAll возвращает все заказы с позициями в порядке хранилища.
func (r *orderRepository) FindAll(ctx context.Context) (_ []domain.Order, err error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	defer r.observe("find_all", time.Now(), &err)

	var models []OrderModel
	if err := withItems(r.db.WithContext(ctx)).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}

	orders := make([]domain.Order, 0, len(models))
	for _, model := range models {
		orders = append(orders, toOrderEntity(model))
	}
	return orders, nil
}

func (r *orderRepository) observe(operation string, started time.Time, err *error) {
	r.metrics.ObserveOperation(repoOrder, operation, started, *err)
}

// publish отправляет событие после коммита; сбой публикации не влияет на результат операции.
func (r *orderRepository) publish(eventType domain.OrderEventType, order domain.Order) {
	if r.publisher == nil {
		return
	}
	event := domain.NewOrderEvent(eventType, order)
	if err := r.publisher.PublishOrderEvent(event); err != nil {
		r.metrics.RecordPublishFailure()
		r.logger.WithError(err).WithFields(log.Fields{
			"order_id":   order.ID,
			"event_id":   event.ID,
			"event_type": event.Type,
		}).Warn("failed to publish order event")
	}
}

func withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

func toOrderModel(order domain.Order) OrderModel {
	return OrderModel{
		ID:         order.ID,
		CustomerID: order.CustomerID,
		Total:      order.Total(),
		Items:      toOrderItemModels(order),
	}
}

func toOrderItemModels(order domain.Order) []OrderItemModel {
	items := make([]OrderItemModel, 0, len(order.Items))
	for i, item := range order.Items {
		items = append(items, OrderItemModel{
			ID:        item.ID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Position:  i,
			OrderID:   order.ID,
			ProductID: item.ProductID,
		})
	}
	return items
}

// toOrderEntity восстанавливает агрегат из строки заказа и строк позиций.
func toOrderEntity(model OrderModel) domain.Order {
	var items []domain.OrderItem
	if len(model.Items) > 0 {
		items = make([]domain.OrderItem, 0, len(model.Items))
	}
	for _, item := range model.Items {
		items = append(items, domain.OrderItem{
			ID:        item.ID,
			Name:      item.Name,
			ProductID: item.ProductID,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}
	return domain.Order{
		ID:         model.ID,
		CustomerID: model.CustomerID,
		Items:      items,
	}
}

var _ domain.OrderRepository = (*orderRepository)(nil)
