package domain_test

import (
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/orderstore/internal/domain"
)

// helper для создания базового заказа с одной позицией.
func makeOrder() domain.Order {
	return domain.Order{
		ID:         "order-1",
		CustomerID: "customer-1",
		Items: []domain.OrderItem{
			{
				ID:        "item-1",
				Name:      "Product 1",
				ProductID: "product-1",
				Price:     100,
				Quantity:  5,
			},
		},
	}
}

func TestOrderTotal(t *testing.T) {
	order := makeOrder()
	if got := order.Total(); got != 500 {
		t.Fatalf("expected total 500, got %d", got)
	}

	order.Items = append(order.Items, domain.OrderItem{
		ID: "item-2", Name: "Product 2", ProductID: "product-2", Price: 10, Quantity: 2,
	})
	if got := order.Total(); got != 520 {
		t.Fatalf("expected total 520 after adding item, got %d", got)
	}
}

func TestNewOrder_ConcreteScenario(t *testing.T) {
	item, err := domain.NewOrderItem("1", "Product 1", "123", 10, 2)
	if err != nil {
		t.Fatalf("new order item: %v", err)
	}
	order, err := domain.NewOrder("123", "123", []domain.OrderItem{item})
	if err != nil {
		t.Fatalf("new order: %v", err)
	}
	if order.Total() != 20 {
		t.Fatalf("expected total 20, got %d", order.Total())
	}
}

func TestOrderValidate_Ok(t *testing.T) {
	order := makeOrder()
	if err := order.Validate(); err != nil {
		t.Fatalf("expected no validation errors, got %v", err)
	}
}

func TestOrderValidate_Errors(t *testing.T) {
	cases := []struct {
		name string
		mut  func(o *domain.Order)
		want error
	}{
		{
			name: "no id",
			mut:  func(o *domain.Order) { o.ID = "" },
			want: domain.ErrOrderIDRequired,
		},
		{
			name: "no customer",
			mut:  func(o *domain.Order) { o.CustomerID = "" },
			want: domain.ErrCustomerIDRequired,
		},
		{
			name: "no items",
			mut:  func(o *domain.Order) { o.Items = nil },
			want: domain.ErrItemsRequired,
		},
		{
			name: "quantity invalid",
			mut:  func(o *domain.Order) { o.Items[0].Quantity = 0 },
			want: domain.ErrItemQuantityInvalid,
		},
		{
			name: "price invalid",
			mut:  func(o *domain.Order) { o.Items[0].Price = -5 },
			want: domain.ErrItemPriceInvalid,
		},
		{
			name: "duplicate item id",
			mut:  func(o *domain.Order) { o.Items = append(o.Items, o.Items[0]) },
			want: domain.ErrItemIDDuplicate,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := makeOrder()
			tc.mut(&order)

			err := order.Validate()
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestNewOrder_CollectsAllViolations(t *testing.T) {
	_, err := domain.NewOrder("", "", nil)
	for _, want := range []error{domain.ErrOrderIDRequired, domain.ErrCustomerIDRequired, domain.ErrItemsRequired} {
		if !errors.Is(err, want) {
			t.Errorf("expected %v in %v", want, err)
		}
	}
}

func TestOrderAddItem(t *testing.T) {
	order := makeOrder()

	second := domain.OrderItem{ID: "item-2", Name: "Product 2", ProductID: "product-2", Price: 1, Quantity: 1}
	if err := order.AddItem(second); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if len(order.Items) != 2 || order.Items[1].ID != "item-2" {
		t.Fatalf("unexpected items after add: %+v", order.Items)
	}

	if err := order.AddItem(second); !errors.Is(err, domain.ErrItemIDDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	bad := second
	bad.ID = "item-3"
	bad.Quantity = -1
	if err := order.AddItem(bad); !errors.Is(err, domain.ErrItemQuantityInvalid) {
		t.Fatalf("expected quantity error, got %v", err)
	}
	if len(order.Items) != 2 {
		t.Fatalf("invalid item must not be appended, got %d items", len(order.Items))
	}
}

func TestOrderClone_IndependentItems(t *testing.T) {
	order := makeOrder()
	clone := order.Clone()
	clone.Items[0].Quantity = 99

	if order.Items[0].Quantity != 5 {
		t.Fatalf("clone mutated original items: %+v", order.Items[0])
	}
}

func TestNewOrderEvent(t *testing.T) {
	order := makeOrder()
	event := domain.NewOrderEvent(domain.OrderEventCreated, order)

	if event.ID == "" {
		t.Fatal("event id should be generated")
	}
	if event.Type != domain.OrderEventCreated || event.OrderID != order.ID || event.CustomerID != order.CustomerID {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.Total != 500 || event.ItemCount != 1 {
		t.Fatalf("unexpected event totals: %+v", event)
	}
	if event.OccurredAt.IsZero() {
		t.Fatal("occurred_at should be set")
	}
}
