package orm

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/vladislavdragonenkov/orderstore/internal/domain"
	"github.com/vladislavdragonenkov/orderstore/internal/metrics"
)

const repoCustomer = "customer"

type customerRepository struct {
	db      *gorm.DB
	logger  *log.Entry
	metrics *metrics.StorageMetrics
}

// NewCustomerRepository создаёт ORM-реализацию CustomerRepository.
func NewCustomerRepository(store *Store, opts ...Option) domain.CustomerRepository {
	o := newOptions("customer-repository", opts)
	return &customerRepository{db: store.DB(), logger: o.logger, metrics: o.metrics}
}

func (r *customerRepository) Create(ctx context.Context, customer domain.Customer) (err error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	defer func(started time.Time) { r.metrics.ObserveOperation(repoCustomer, "create", started, err) }(time.Now())

	model := toCustomerModel(customer)
	return r.db.WithContext(ctx).Create(&model).Error
}

// Update перезаписывает имя и адрес клиента.
func (r *customerRepository) Update(ctx context.Context, customer domain.Customer) (err error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	defer func(started time.Time) { r.metrics.ObserveOperation(repoCustomer, "update", started, err) }(time.Now())

	res := r.db.WithContext(ctx).Model(&CustomerModel{}).Where("id = ?", customer.ID).Updates(map[string]any{
		"name":    customer.Name,
		"street":  customer.Address.Street,
		"number":  customer.Address.Number,
		"zipcode": customer.Address.Zipcode,
		"city":    customer.Address.City,
	})
	if res.Error != nil {
		return fmt.Errorf("update customer %s: %w", customer.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

func (r *customerRepository) Find(ctx context.Context, id string) (_ domain.Customer, err error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	defer func(started time.Time) { r.metrics.ObserveOperation(repoCustomer, "find", started, err) }(time.Now())

	var model CustomerModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, fmt.Errorf("select customer %s: %w", id, err)
	}
	return toCustomerEntity(model), nil
}

func (r *customerRepository) FindAll(ctx context.Context) (_ []domain.Customer, err error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	defer func(started time.Time) { r.metrics.ObserveOperation(repoCustomer, "find_all", started, err) }(time.Now())

	var models []CustomerModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("select customers: %w", err)
	}

	customers := make([]domain.Customer, 0, len(models))
	for _, model := range models {
		customers = append(customers, toCustomerEntity(model))
	}
	return customers, nil
}

func toCustomerModel(c domain.Customer) CustomerModel {
	return CustomerModel{
		ID:      c.ID,
		Name:    c.Name,
		Street:  c.Address.Street,
		Number:  c.Address.Number,
		Zipcode: c.Address.Zipcode,
		City:    c.Address.City,
	}
}

func toCustomerEntity(m CustomerModel) domain.Customer {
	return domain.Customer{
		ID:   m.ID,
		Name: m.Name,
		Address: domain.Address{
			Street:  m.Street,
			Number:  m.Number,
			Zipcode: m.Zipcode,
			City:    m.City,
		},
	}
}

var _ domain.CustomerRepository = (*customerRepository)(nil)
