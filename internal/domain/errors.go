package domain

import "errors"

var (
	// Ошибка отсутствующего идентификатора заказа.
	ErrOrderIDRequired = errors.New("order id is required")
	// Ошибка отсутствующего идентификатора клиента в заказе.
	ErrCustomerIDRequired = errors.New("customer id is required")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка отсутствующего идентификатора позиции.
	ErrItemIDRequired = errors.New("item id is required")
	// Ошибка отсутствующего названия позиции.
	ErrItemNameRequired = errors.New("item name is required")
	// Ошибка отсутствующего идентификатора товара в позиции.
	ErrItemProductRequired = errors.New("item product id is required")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQuantityInvalid = errors.New("item quantity must be greater than zero")
	// Ошибка, если цена позиции отрицательная.
	ErrItemPriceInvalid = errors.New("item price must be non-negative")
	// Ошибка повторяющегося идентификатора позиции внутри заказа.
	ErrItemIDDuplicate = errors.New("item id must be unique within order")

	ErrCustomerNameRequired  = errors.New("customer name is required")
	ErrAddressStreetRequired = errors.New("address street is required")
	ErrAddressNumberInvalid  = errors.New("address number must be greater than zero")
	ErrAddressZipRequired    = errors.New("address zipcode is required")
	ErrAddressCityRequired   = errors.New("address city is required")

	ErrProductIDRequired   = errors.New("product id is required")
	ErrProductNameRequired = errors.New("product name is required")
	ErrProductPriceInvalid = errors.New("product price must be non-negative")

	// ErrOrderNotFound возвращается на любой неуспешный поиск заказа.
	ErrOrderNotFound = errors.New("Order not found")
	// ErrCustomerNotFound возвращается, если клиент не найден в репозитории.
	ErrCustomerNotFound = errors.New("Customer not found")
	// ErrProductNotFound возвращается, если товар не найден в репозитории.
	ErrProductNotFound = errors.New("Product not found")
)

// IsNotFound проверяет, является ли ошибка промахом поиска любого агрегата.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrProductNotFound)
}
