package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/orderstore/internal/domain"
	"github.com/vladislavdragonenkov/orderstore/internal/storage/memory"
)

func TestCustomerRepository_Lifecycle(t *testing.T) {
	repo := memory.NewCustomerRepository()
	ctx := context.Background()

	customer, err := domain.NewCustomer("customer-1", "Customer 1")
	if err != nil {
		t.Fatalf("new customer: %v", err)
	}
	if err := repo.Create(ctx, customer); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(ctx, customer); !errors.Is(err, memory.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}

	if err := customer.ChangeName("Customer Updated"); err != nil {
		t.Fatalf("change name: %v", err)
	}
	if err := repo.Update(ctx, customer); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	stored, err := repo.Find(ctx, customer.ID)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if stored.Name != "Customer Updated" {
		t.Fatalf("unexpected name: %s", stored.Name)
	}

	all, err := repo.FindAll(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("find all: len=%d err=%v", len(all), err)
	}
}

func TestCustomerRepository_NotFound(t *testing.T) {
	repo := memory.NewCustomerRepository()
	ctx := context.Background()

	if _, err := repo.Find(ctx, "missing"); !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
	if err := repo.Update(ctx, domain.Customer{ID: "missing", Name: "x"}); !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestProductRepository_Lifecycle(t *testing.T) {
	repo := memory.NewProductRepository()
	ctx := context.Background()

	product, err := domain.NewProduct("product-1", "Product 1", 100)
	if err != nil {
		t.Fatalf("new product: %v", err)
	}
	if err := repo.Create(ctx, product); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(ctx, product); !errors.Is(err, memory.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}

	if err := product.ChangePrice(250); err != nil {
		t.Fatalf("change price: %v", err)
	}
	if err := repo.Update(ctx, product); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	stored, err := repo.Find(ctx, product.ID)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if stored.Price != 250 {
		t.Fatalf("unexpected price: %d", stored.Price)
	}

	if _, err := repo.Find(ctx, "missing"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if err := repo.Update(ctx, domain.Product{ID: "missing"}); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}
