package domain

import "context"

// Repository описывает общий CRUD-контракт хранилища агрегата.
type Repository[T any] interface {
	// Create сохраняет новый агрегат. Ошибки хранилища возвращаются как есть.
	Create(ctx context.Context, entity T) error
	// Update применяет текущее состояние агрегата.
	Update(ctx context.Context, entity T) error
	// Find возвращает агрегат по идентификатору или not-found ошибку агрегата.
	Find(ctx context.Context, id string) (T, error)
	// FindAll возвращает все агрегаты в порядке хранилища.
	FindAll(ctx context.Context) ([]T, error)
}

// CustomerRepository хранит клиентов.
type CustomerRepository interface {
	Repository[Customer]
}

// ProductRepository хранит товары.
type ProductRepository interface {
	Repository[Product]
}

// OrderRepository хранит заказы вместе с позициями.
//
// Update заменяет набор позиций целиком и пересчитывает сумму. По умолчанию
// ошибка обновления логируется и не возвращается вызывающему.
// Find на любой ошибке возвращает ErrOrderNotFound.
type OrderRepository interface {
	Repository[Order]
}
