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

const repoProduct = "product"

type productRepository struct {
	db      *gorm.DB
	logger  *log.Entry
	metrics *metrics.StorageMetrics
}

// NewProductRepository создаёт ORM-реализацию ProductRepository.
func NewProductRepository(store *Store, opts ...Option) domain.ProductRepository {
	o := newOptions("product-repository", opts)
	return &productRepository{db: store.DB(), logger: o.logger, metrics: o.metrics}
}

func (r *productRepository) Create(ctx context.Context, product domain.Product) (err error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	defer func(started time.Time) { r.metrics.ObserveOperation(repoProduct, "create", started, err) }(time.Now())

	model := ProductModel{ID: product.ID, Name: product.Name, Price: product.Price}
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *productRepository) Update(ctx context.Context, product domain.Product) (err error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	defer func(started time.Time) { r.metrics.ObserveOperation(repoProduct, "update", started, err) }(time.Now())

	res := r.db.WithContext(ctx).Model(&ProductModel{}).Where("id = ?", product.ID).Updates(map[string]any{
		"name":  product.Name,
		"price": product.Price,
	})
	if res.Error != nil {
		return fmt.Errorf("update product %s: %w", product.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		r.logger.WithField("product_id", product.ID).Debug("product update matched no rows")
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *productRepository) Find(ctx context.Context, id string) (_ domain.Product, err error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	defer func(started time.Time) { r.metrics.ObserveOperation(repoProduct, "find", started, err) }(time.Now())

	var model ProductModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("select product %s: %w", id, err)
	}
	return domain.Product{ID: model.ID, Name: model.Name, Price: model.Price}, nil
}

func (r *productRepository) FindAll(ctx context.Context) (_ []domain.Product, err error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	defer func(started time.Time) { r.metrics.ObserveOperation(repoProduct, "find_all", started, err) }(time.Now())

	var models []ProductModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}

	products := make([]domain.Product, 0, len(models))
	for _, m := range models {
		products = append(products, domain.Product{ID: m.ID, Name: m.Name, Price: m.Price})
	}
	return products, nil
}

var _ domain.ProductRepository = (*productRepository)(nil)
