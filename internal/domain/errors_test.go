package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrOrderNotFound_Message(t *testing.T) {
	if ErrOrderNotFound.Error() != "Order not found" {
		t.Fatalf("unexpected message: %q", ErrOrderNotFound.Error())
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "order", err: ErrOrderNotFound, want: true},
		{name: "customer", err: ErrCustomerNotFound, want: true},
		{name: "wrapped product", err: fmt.Errorf("find product: %w", ErrProductNotFound), want: true},
		{name: "joined", err: errors.Join(errors.New("context"), ErrOrderNotFound), want: true},
		{name: "other error", err: ErrItemsRequired, want: false},
		{name: "nil error", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.want {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.want)
			}
		})
	}
}
