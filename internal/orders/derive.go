package orders

import (
	"strings"

	"github.com/farmcart/farmcart-backend/pkg/enums"
	"github.com/farmcart/farmcart-backend/pkg/types"
)

// dotToken replaces dots in seller identifiers so keys stay safe as JSON
// object fields and survive round-trips through systems that treat dots
// as path separators.
const dotToken = "__dot__"

// EncodeSellerKey converts a seller identifier, usually the farm's
// contact email, into a map-safe key.
func EncodeSellerKey(raw string) string {
	return strings.ReplaceAll(raw, ".", dotToken)
}

// DecodeSellerKey restores the original seller identifier. Keys written
// before the encoding convention pass through unchanged.
func DecodeSellerKey(key string) string {
	return strings.ReplaceAll(key, dotToken, ".")
}

// DeriveAggregateStatus computes the order-level status from the per-seller
// map. An empty map yields the fallback when it is a usable assignable
// status, otherwise pending. When every seller agrees the shared value wins;
// any disagreement yields mixed.
func DeriveAggregateStatus(perSeller types.PerSellerStatus, fallback enums.OrderStatus) enums.OrderStatus {
	if len(perSeller) == 0 {
		if fallback.IsAssignable() {
			return fallback
		}
		return enums.OrderStatusPending
	}

	var first enums.OrderStatus
	seen := false
	for _, status := range perSeller {
		if !seen {
			first = status
			seen = true
			continue
		}
		if status != first {
			return enums.OrderStatusMixed
		}
	}
	return first
}
