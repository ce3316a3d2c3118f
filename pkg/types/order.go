package types

import (
	"time"

	"github.com/farmcart/farmcart-backend/pkg/enums"
)

// PerSellerStatus maps encoded seller keys to that seller's portion status.
// Keys are produced by orders.EncodeSellerKey so they stay safe for JSON
// object fields regardless of the characters in a farm name.
type PerSellerStatus map[string]enums.OrderStatus

// Clone returns a shallow copy safe to mutate.
func (p PerSellerStatus) Clone() PerSellerStatus {
	if p == nil {
		return nil
	}
	out := make(PerSellerStatus, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// StatusHistoryEntry records one status change on an order.
type StatusHistoryEntry struct {
	Status    enums.OrderStatus `json:"status"`
	SellerKey string            `json:"seller_key,omitempty"`
	At        time.Time         `json:"at"`
	Note      string            `json:"note,omitempty"`
}

// StatusHistory is the append-only audit trail stored on the order row.
type StatusHistory []StatusHistoryEntry
