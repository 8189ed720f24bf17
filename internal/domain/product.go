package domain

import "errors"

// Product — каталожный товар. Цена в минимальных денежных единицах.
type Product struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// NewProduct создаёт товар и проверяет его инварианты.
func NewProduct(id, name string, price int64) (Product, error) {
	p := Product{ID: id, Name: name, Price: price}
	if err := p.Validate(); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (p *Product) ChangeName(name string) error {
	if name == "" {
		return ErrProductNameRequired
	}
	p.Name = name
	return nil
}

func (p *Product) ChangePrice(price int64) error {
	if price < 0 {
		return ErrProductPriceInvalid
	}
	p.Price = price
	return nil
}

// Validate возвращает все нарушения инвариантов товара.
func (p Product) Validate() error {
	var errs []error
	if p.ID == "" {
		errs = append(errs, ErrProductIDRequired)
	}
	if p.Name == "" {
		errs = append(errs, ErrProductNameRequired)
	}
	if p.Price < 0 {
		errs = append(errs, ErrProductPriceInvalid)
	}
	return errors.Join(errs...)
}
