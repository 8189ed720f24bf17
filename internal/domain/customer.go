package domain

import "errors"

// Address — value object адреса клиента.
type Address struct {
	Street  string `json:"street"`
	Number  int    `json:"number"`
	Zipcode string `json:"zipcode"`
	City    string `json:"city"`
}

// NewAddress создаёт адрес и проверяет обязательные поля.
func NewAddress(street string, number int, zipcode, city string) (Address, error) {
	addr := Address{Street: street, Number: number, Zipcode: zipcode, City: city}
	if err := addr.Validate(); err != nil {
		return Address{}, err
	}
	return addr, nil
}

// Validate возвращает все нарушения инвариантов адреса.
func (a Address) Validate() error {
	var errs []error
	if a.Street == "" {
		errs = append(errs, ErrAddressStreetRequired)
	}
	if a.Number <= 0 {
		errs = append(errs, ErrAddressNumberInvalid)
	}
	if a.Zipcode == "" {
		errs = append(errs, ErrAddressZipRequired)
	}
	if a.City == "" {
		errs = append(errs, ErrAddressCityRequired)
	}
	return errors.Join(errs...)
}

// IsZero сообщает, что адрес не задан.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Customer — независимый агрегат, на который заказ ссылается по ID.
type Customer struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Address Address `json:"address"`
}

// NewCustomer создаёт клиента без адреса.
func NewCustomer(id, name string) (Customer, error) {
	c := Customer{ID: id, Name: name}
	if err := c.Validate(); err != nil {
		return Customer{}, err
	}
	return c, nil
}

// ChangeName меняет имя клиента.
func (c *Customer) ChangeName(name string) error {
	if name == "" {
		return ErrCustomerNameRequired
	}
	c.Name = name
	return nil
}

// ChangeAddress заменяет адрес клиента целиком.
func (c *Customer) ChangeAddress(addr Address) error {
	if err := addr.Validate(); err != nil {
		return err
	}
	c.Address = addr
	return nil
}

// Validate проверяет инварианты клиента. Пустой адрес допустим.
func (c Customer) Validate() error {
	var errs []error
	if c.ID == "" {
		errs = append(errs, ErrCustomerIDRequired)
	}
	if c.Name == "" {
		errs = append(errs, ErrCustomerNameRequired)
	}
	if !c.Address.IsZero() {
		if err := c.Address.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
