package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/farmcart/farmcart-backend/pkg/db/models"
	"github.com/farmcart/farmcart-backend/pkg/enums"
	pkgerrors "github.com/farmcart/farmcart-backend/pkg/errors"
)

// ValidateReorder checks whether a past order's lines can be purchased
// again, without performing any writes. Only delivered lines are
// re-validated against the live catalog; the rest land in the
// undelivered bucket.
func (s *service) ValidateReorder(ctx context.Context, orderID uuid.UUID, buyerID uuid.UUID) (*ReorderValidation, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "buyer identity missing")
	}

	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.BuyerID != buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another buyer")
	}

	productIDs := make([]uuid.UUID, 0, len(order.Items))
	seen := make(map[uuid.UUID]bool, len(order.Items))
	for _, item := range order.Items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			productIDs = append(productIDs, item.ProductID)
		}
	}
	catalog, err := s.products.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	byID := make(map[uuid.UUID]models.Product, len(catalog))
	for _, p := range catalog {
		byID[p.ID] = p
	}

	epsilon, err := decimal.NewFromString(s.feesCfg.PriceEpsilonCents)
	if err != nil {
		epsilon = decimal.NewFromInt(1)
	}

	report := &ReorderValidation{
		Available:         []ReorderItemCheck{},
		PriceChanged:      []ReorderItemCheck{},
		InsufficientStock: []ReorderItemCheck{},
		Unavailable:       []ReorderItemCheck{},
		Undelivered:       []ReorderItemCheck{},
	}
	fullReorder := true
	for _, item := range order.Items {
		check := ReorderItemCheck{
			ProductID:       item.ProductID,
			ProductName:     item.ProductName,
			Quantity:        item.Quantity,
			PriorPriceCents: item.UnitPriceCents,
		}

		if !itemDelivered(order, item) {
			report.Undelivered = append(report.Undelivered, check)
			fullReorder = false
			continue
		}

		product, ok := byID[item.ProductID]
		if !ok || !product.IsActive {
			report.Unavailable = append(report.Unavailable, check)
			fullReorder = false
			continue
		}
		check.CurrentPriceCents = product.PriceCents
		if product.Inventory != nil {
			check.AvailableQty = product.Inventory.AvailableQty
		}
		if check.AvailableQty < item.Quantity {
			report.InsufficientStock = append(report.InsufficientStock, check)
			fullReorder = false
			continue
		}

		report.EstimatedSubtotal += product.PriceCents * int64(item.Quantity)
		diff := decimal.NewFromInt(product.PriceCents).Sub(decimal.NewFromInt(item.UnitPriceCents)).Abs()
		if diff.GreaterThan(epsilon) {
			report.PriceChanged = append(report.PriceChanged, check)
			continue
		}
		report.Available = append(report.Available, check)
	}

	report.DeliveryFeeCents = s.feesCfg.DeliveryFeeCents
	report.ServiceFeeCents = s.feesCfg.ServiceFeeCents
	report.EstimatedTotal = report.EstimatedSubtotal + report.DeliveryFeeCents + report.ServiceFeeCents
	report.FullReorderPossible = fullReorder
	return report, nil
}

// itemDelivered implements the effective delivered check. Uniform orders
// go by the aggregate status; mixed orders consult the per-seller map,
// accepting both raw and encoded key forms since persisted maps may
// predate the encoding convention.
func itemDelivered(order *models.Order, item models.OrderItem) bool {
	if order.Status != enums.OrderStatusMixed {
		return order.Status == enums.OrderStatusDelivered
	}
	if status, ok := order.PerSellerStatus[item.SellerKey]; ok {
		return status == enums.OrderStatusDelivered
	}
	if status, ok := order.PerSellerStatus[EncodeSellerKey(item.SellerKey)]; ok {
		return status == enums.OrderStatusDelivered
	}
	return false
}
