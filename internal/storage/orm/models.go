package orm

// CustomerModel — строка таблицы customers. Адрес хранится плоско.
type CustomerModel struct {
	ID      string `gorm:"primaryKey;size:64"`
	Name    string `gorm:"not null"`
	Street  string `gorm:"not null"`
	Number  int    `gorm:"not null"`
	Zipcode string `gorm:"not null"`
	City    string `gorm:"not null"`
}

func (CustomerModel) TableName() string { return "customers" }

// ProductModel — строка таблицы products.
type ProductModel struct {
	ID    string `gorm:"primaryKey;size:64"`
	Name  string `gorm:"not null;index:idx_products_name"`
	Price int64  `gorm:"not null"`
}

func (ProductModel) TableName() string { return "products" }

// OrderModel — строка таблицы orders. Total дублирует сумму позиций для запросов.
type OrderModel struct {
	ID         string           `gorm:"primaryKey;size:64"`
	CustomerID string           `gorm:"size:64;not null;index"`
	Total      int64            `gorm:"not null"`
	Items      []OrderItemModel `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`
}

func (OrderModel) TableName() string { return "orders" }

// OrderItemModel — строка таблицы order_items.
// Position хранит индекс позиции в заказе; Product нужен только для внешнего ключа.
type OrderItemModel struct {
	ID        string        `gorm:"primaryKey;size:64"`
	Name      string        `gorm:"not null"`
	Price     int64         `gorm:"not null"`
	Quantity  int32         `gorm:"not null"`
	Position  int           `gorm:"not null"`
	OrderID   string        `gorm:"size:64;not null;index"`
	ProductID string        `gorm:"size:64;not null;index"`
	Product   *ProductModel `gorm:"foreignKey:ProductID;references:ID"`
}

func (OrderItemModel) TableName() string { return "order_items" }

func allModels() []any {
	return []any{&CustomerModel{}, &ProductModel{}, &OrderModel{}, &OrderItemModel{}}
}
