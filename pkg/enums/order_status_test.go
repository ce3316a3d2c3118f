package enums

import "testing"

func TestOrderStatusMixedIsNotAssignable(t *testing.T) {
	if !OrderStatusMixed.IsValid() {
		t.Fatal("mixed should be a valid aggregate value")
	}
	if OrderStatusMixed.IsAssignable() {
		t.Fatal("mixed must never be assignable")
	}
	if _, err := ParseOrderStatus("mixed"); err == nil {
		t.Fatal("parsing mixed as input should fail")
	}
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("shipped")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != OrderStatusShipped {
		t.Fatalf("expected shipped, got %s", status)
	}

	if _, err := ParseOrderStatus("SHIPPED"); err == nil {
		t.Fatal("status parsing is case sensitive")
	}
}

func TestIsStockReturning(t *testing.T) {
	for _, status := range []OrderStatus{OrderStatusCancelled, OrderStatusReturned} {
		if !status.IsStockReturning() {
			t.Fatalf("%s should return stock", status)
		}
	}
	for _, status := range []OrderStatus{OrderStatusPending, OrderStatusDelivered, OrderStatusMixed} {
		if status.IsStockReturning() {
			t.Fatalf("%s should not return stock", status)
		}
	}
}
