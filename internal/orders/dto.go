package orders

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/farmcart/farmcart-backend/pkg/db/models"
	"github.com/farmcart/farmcart-backend/pkg/enums"
	"github.com/farmcart/farmcart-backend/pkg/pagination"
)

// CreateOrderItemInput is one requested line on a new order.
type CreateOrderItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// CreateOrderInput carries everything needed to place an order.
type CreateOrderInput struct {
	BuyerID        uuid.UUID
	DeliveryMethod enums.DeliveryMethod
	Notes          *string
	Items          []CreateOrderItemInput
}

// TransitionInput describes a status change request. A nil SellerKey
// means the change applies to every seller's portion at once.
type TransitionInput struct {
	OrderID     uuid.UUID
	NewStatus   enums.OrderStatus
	SellerKey   *string
	Note        string
	ActorUserID uuid.UUID
	ActorFarmID *uuid.UUID
	ActorRole   enums.ActorRole
}

// TransitionResult reports what a status change did.
type TransitionResult struct {
	Order         *models.Order
	StockRestored bool
	SellerScoped  bool
}

// DeleteInput identifies an order to remove and who asked.
type DeleteInput struct {
	OrderID     uuid.UUID
	ActorUserID uuid.UUID
	ActorRole   enums.ActorRole
}

// ListBuyerOrdersInput filters a buyer's order history.
type ListBuyerOrdersInput struct {
	BuyerID  uuid.UUID
	Status   *enums.OrderStatus
	DateFrom *time.Time
	DateTo   *time.Time
	Page     pagination.Params
}

// OrderList is one page of orders plus the cursor for the next page.
type OrderList struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// SellerStatusView is the array rendering of the per-seller map, derived
// on read so the map stays the single source of truth.
type SellerStatusView struct {
	SellerKey string            `json:"seller_key"`
	Status    enums.OrderStatus `json:"status"`
}

// SellerStatusViews flattens an order's per-seller map into a stable,
// sorted slice with decoded keys.
func SellerStatusViews(order *models.Order) []SellerStatusView {
	if order == nil || len(order.PerSellerStatus) == 0 {
		return []SellerStatusView{}
	}
	views := make([]SellerStatusView, 0, len(order.PerSellerStatus))
	for key, status := range order.PerSellerStatus {
		views = append(views, SellerStatusView{SellerKey: DecodeSellerKey(key), Status: status})
	}
	sort.Slice(views, func(i, j int) bool { return views[i].SellerKey < views[j].SellerKey })
	return views
}

// ReorderItemCheck classifies one historical line against the current catalog.
type ReorderItemCheck struct {
	ProductID         uuid.UUID `json:"product_id"`
	ProductName       string    `json:"product_name"`
	Quantity          int       `json:"quantity"`
	PriorPriceCents   int64     `json:"prior_price_cents"`
	CurrentPriceCents int64     `json:"current_price_cents,omitempty"`
	AvailableQty      int       `json:"available_qty"`
}

// ReorderValidation buckets a past order's lines by whether they can be
// ordered again as-is. Price-changed items stay orderable; the bucket
// only flags them for the buyer.
type ReorderValidation struct {
	Available           []ReorderItemCheck `json:"available"`
	PriceChanged        []ReorderItemCheck `json:"price_changed"`
	InsufficientStock   []ReorderItemCheck `json:"insufficient_stock"`
	Unavailable         []ReorderItemCheck `json:"unavailable"`
	Undelivered         []ReorderItemCheck `json:"undelivered"`
	EstimatedSubtotal   int64              `json:"estimated_subtotal_cents"`
	DeliveryFeeCents    int64              `json:"delivery_fee_cents"`
	ServiceFeeCents     int64              `json:"service_fee_cents"`
	EstimatedTotal      int64              `json:"estimated_total_cents"`
	FullReorderPossible bool               `json:"full_reorder_possible"`
}
