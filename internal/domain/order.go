package domain

import "errors"

// OrderItem представляет одну позицию заказа.
type OrderItem struct {
	// ID позиции уникален в пределах хранилища.
	ID string `json:"id"`
	// Name — название товара на момент оформления.
	Name string `json:"name"`
	// ProductID ссылается на агрегат Product, но не владеет им.
	ProductID string `json:"product_id"`
	// Price — цена за единицу в минимальных денежных единицах (например, копейки).
	Price int64 `json:"price"`
	// Quantity — количество единиц товара.
	Quantity int32 `json:"quantity"`
}

// NewOrderItem создаёт позицию и проверяет её инварианты.
func NewOrderItem(id, name, productID string, price int64, quantity int32) (OrderItem, error) {
	item := OrderItem{
		ID:        id,
		Name:      name,
		ProductID: productID,
		Price:     price,
		Quantity:  quantity,
	}
	if err := item.Validate(); err != nil {
		return OrderItem{}, err
	}
	return item, nil
}

// Subtotal возвращает стоимость позиции: price * quantity.
func (i OrderItem) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}

// Validate возвращает все нарушения инвариантов позиции.
func (i OrderItem) Validate() error {
	var errs []error
	if i.ID == "" {
		errs = append(errs, ErrItemIDRequired)
	}
	if i.Name == "" {
		errs = append(errs, ErrItemNameRequired)
	}
	if i.ProductID == "" {
		errs = append(errs, ErrItemProductRequired)
	}
	if i.Quantity <= 0 {
		errs = append(errs, ErrItemQuantityInvalid)
	}
	if i.Price < 0 {
		errs = append(errs, ErrItemPriceInvalid)
	}
	return errors.Join(errs...)
}

// Order агрегирует заказ клиента и его позиции.
// Сумма заказа не хранится в агрегате, а вычисляется через Total.
type Order struct {
	ID         string      `json:"id"`
	CustomerID string      `json:"customer_id"`
	Items      []OrderItem `json:"items"`
}

// NewOrder создаёт заказ и проверяет его инварианты.
func NewOrder(id, customerID string, items []OrderItem) (Order, error) {
	order := Order{
		ID:         id,
		CustomerID: customerID,
		Items:      items,
	}
	if err := order.Validate(); err != nil {
		return Order{}, err
	}
	return order, nil
}

// Total суммирует price * quantity по всем позициям.
func (o Order) Total() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.Subtotal()
	}
	return total
}

// AddItem добавляет позицию в конец списка, сохраняя порядок.
func (o *Order) AddItem(item OrderItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	for _, existing := range o.Items {
		if existing.ID == item.ID {
			return ErrItemIDDuplicate
		}
	}
	o.Items = append(o.Items, item)
	return nil
}

// Validate проверяет инварианты заказа и всех его позиций.
func (o Order) Validate() error {
	var errs []error
	if o.ID == "" {
		errs = append(errs, ErrOrderIDRequired)
	}
	if o.CustomerID == "" {
		errs = append(errs, ErrCustomerIDRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}

	seen := make(map[string]struct{}, len(o.Items))
	for _, item := range o.Items {
		if err := item.Validate(); err != nil {
			errs = append(errs, err)
		}
		if _, dup := seen[item.ID]; dup {
			errs = append(errs, ErrItemIDDuplicate)
		}
		seen[item.ID] = struct{}{}
	}

	return errors.Join(errs...)
}

// Clone возвращает копию заказа с собственным срезом позиций.
func (o Order) Clone() Order {
	out := o
	if o.Items != nil {
		out.Items = make([]OrderItem, len(o.Items))
		copy(out.Items, o.Items)
	}
	return out
}
