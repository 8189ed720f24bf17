package memory

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderstore/internal/domain"
)

// orderRepositoryInMemory — простая in-memory реализация OrderRepository.
type orderRepositoryInMemory struct {
	mu     sync.RWMutex
	items  map[string]domain.Order
	owners map[string]string // item ID -> order ID
	order  []string
	logger *log.Entry
	strict bool
}

// NewOrderRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewOrderRepository(opts ...Option) domain.OrderRepository {
	o := newOptions("memory-order-repository", opts)
	return &orderRepositoryInMemory{
		items:  make(map[string]domain.Order),
		owners: make(map[string]string),
		logger: o.logger,
		strict: o.strictUpdates,
	}
}

// Create сохраняет новый заказ, если ID ещё не занят.
func (r *orderRepositoryInMemory) Create(ctx context.Context, order domain.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[order.ID]; exists {
		return fmt.Errorf("order %s: %w", order.ID, ErrDuplicateID)
	}
	if err := r.checkItemOwners(order); err != nil {
		return err
	}
	r.setItemOwners(order)
	// Сохраняем копию, чтобы избежать непредсказуемых мутаций извне.
	r.items[order.ID] = order.Clone()
	r.order = append(r.order, order.ID)
	return nil
}

// Update заменяет позиции заказа целиком.
// Ошибка (отменённый ctx, отсутствующий заказ) логируется и не возвращается,
// если не включён строгий режим.
func (r *orderRepositoryInMemory) Update(ctx context.Context, order domain.Order) error {
	if err := r.replace(ctx, order); err != nil {
		if r.strict {
			return fmt.Errorf("update order %s: %w", order.ID, err)
		}
		r.logger.WithError(err).WithField("order_id", order.ID).Error("order update rolled back")
	}
	return nil
}

func (r *orderRepositoryInMemory) replace(ctx context.Context, order domain.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.items[order.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if err := r.checkItemOwners(order); err != nil {
		return err
	}
	for _, item := range prev.Items {
		delete(r.owners, item.ID)
	}
	r.setItemOwners(order)
	r.items[order.ID] = order.Clone()
	return nil
}

// checkItemOwners не даёт позиции одного заказа оказаться в другом.
func (r *orderRepositoryInMemory) checkItemOwners(order domain.Order) error {
	for _, item := range order.Items {
		if owner, ok := r.owners[item.ID]; ok && owner != order.ID {
			return fmt.Errorf("order item %s: %w", item.ID, ErrDuplicateID)
		}
	}
	return nil
}

func (r *orderRepositoryInMemory) setItemOwners(order domain.Order) {
	for _, item := range order.Items {
		r.owners[item.ID] = order.ID
	}
}

// Find возвращает копию заказа или ErrOrderNotFound, если его нет.
func (r *orderRepositoryInMemory) Find(ctx context.Context, id string) (domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return domain.Order{}, domain.ErrOrderNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order.Clone(), nil
}

// FindAll возвращает копии заказов в порядке создания.
func (r *orderRepositoryInMemory) FindAll(ctx context.Context) ([]domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.items[id].Clone())
	}
	return result, nil
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
