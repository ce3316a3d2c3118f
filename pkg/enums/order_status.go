package enums

import "fmt"

// OrderStatus tracks the lifecycle of an order, either for a single
// seller's portion or for the order as a whole.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusReturned   OrderStatus = "returned"

	// OrderStatusMixed is a derived aggregate value only. It is never
	// assigned to a seller's portion and is never accepted as input.
	OrderStatusMixed OrderStatus = "mixed"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusReturned,
	OrderStatusMixed,
}

var assignableOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusReturned,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsAssignable reports whether the value may be set through a status
// transition. Excludes the derived mixed value.
func (s OrderStatus) IsAssignable() bool {
	for _, candidate := range assignableOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsStockReturning reports whether entering this status puts the
// seller's items back into inventory.
func (s OrderStatus) IsStockReturning() bool {
	return s == OrderStatusCancelled || s == OrderStatusReturned
}

// ParseOrderStatus converts raw input into an assignable OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range assignableOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
