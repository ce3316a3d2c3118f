package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmcart/farmcart-backend/pkg/db/models"
	"github.com/farmcart/farmcart-backend/pkg/enums"
	pkgerrors "github.com/farmcart/farmcart-backend/pkg/errors"
)

func deliverWholeOrder(t *testing.T, f *serviceFixture, order *models.Order) {
	t.Helper()
	for _, key := range []string{"anna@greenacres.com", "ben@riverfield.org"} {
		_, err := f.svc.Transition(context.Background(), TransitionInput{
			OrderID:     order.ID,
			NewStatus:   enums.OrderStatusDelivered,
			SellerKey:   &key,
			ActorUserID: uuid.New(),
			ActorRole:   enums.ActorRoleAdmin,
		})
		require.NoError(t, err)
	}
}

func TestValidateReorderAllAvailable(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, false)
	ctx := context.Background()
	order, tomato, rice := createTwoSellerOrder(t, f)
	deliverWholeOrder(t, f, order)

	report, err := f.svc.ValidateReorder(ctx, order.ID, order.BuyerID)
	require.NoError(t, err)

	require.Len(t, report.Available, 2)
	assert.Empty(t, report.PriceChanged)
	assert.Empty(t, report.InsufficientStock)
	assert.Empty(t, report.Unavailable)
	assert.Empty(t, report.Undelivered)
	assert.True(t, report.FullReorderPossible)

	wantSubtotal := tomato.PriceCents*5 + rice.PriceCents*2
	assert.Equal(t, wantSubtotal, report.EstimatedSubtotal)
	assert.Equal(t, wantSubtotal+f.fees.DeliveryFeeCents+f.fees.ServiceFeeCents, report.EstimatedTotal)
}

func TestValidateReorderMixedOrderChecksPerSeller(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, false)
	ctx := context.Background()
	order, _, _ := createTwoSellerOrder(t, f)

	key := "anna@greenacres.com"
	_, err := f.svc.Transition(ctx, TransitionInput{
		OrderID:     order.ID,
		NewStatus:   enums.OrderStatusDelivered,
		SellerKey:   &key,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleAdmin,
	})
	require.NoError(t, err)

	report, err := f.svc.ValidateReorder(ctx, order.ID, order.BuyerID)
	require.NoError(t, err)

	require.Len(t, report.Available, 1)
	assert.Equal(t, "Tomatoes", report.Available[0].ProductName)
	require.Len(t, report.Undelivered, 1)
	assert.Equal(t, "Rice", report.Undelivered[0].ProductName)
	assert.False(t, report.FullReorderPossible)
}

func TestValidateReorderUndeliveredOrder(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, false)
	ctx := context.Background()
	order, _, _ := createTwoSellerOrder(t, f)

	report, err := f.svc.ValidateReorder(ctx, order.ID, order.BuyerID)
	require.NoError(t, err)
	assert.Len(t, report.Undelivered, 2)
	assert.Empty(t, report.Available)
	assert.False(t, report.FullReorderPossible)
}

func TestValidateReorderPriceAndStockChanges(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, false)
	ctx := context.Background()
	order, tomato, rice := createTwoSellerOrder(t, f)
	deliverWholeOrder(t, f, order)

	// price moved beyond the epsilon; stock too low for a rice reorder
	require.NoError(t, f.db.Model(&models.Product{}).Where("id = ?", tomato.ID).
		Update("price_cents", 250).Error)
	require.NoError(t, f.db.Model(&models.InventoryItem{}).Where("product_id = ?", rice.ID).
		Update("available_qty", 1).Error)

	report, err := f.svc.ValidateReorder(ctx, order.ID, order.BuyerID)
	require.NoError(t, err)

	require.Len(t, report.PriceChanged, 1)
	assert.Equal(t, int64(250), report.PriceChanged[0].CurrentPriceCents)
	assert.Equal(t, int64(200), report.PriceChanged[0].PriorPriceCents)
	require.Len(t, report.InsufficientStock, 1)
	assert.Equal(t, 1, report.InsufficientStock[0].AvailableQty)
	assert.Empty(t, report.Available)
	assert.False(t, report.FullReorderPossible)

	// price-changed lines still count toward the estimate
	assert.Equal(t, int64(250*5), report.EstimatedSubtotal)
}

func TestValidateReorderInactiveProduct(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, false)
	ctx := context.Background()
	order, tomato, _ := createTwoSellerOrder(t, f)
	deliverWholeOrder(t, f, order)

	require.NoError(t, f.db.Model(&models.Product{}).Where("id = ?", tomato.ID).
		Update("is_active", false).Error)

	report, err := f.svc.ValidateReorder(ctx, order.ID, order.BuyerID)
	require.NoError(t, err)
	require.Len(t, report.Unavailable, 1)
	assert.Equal(t, "Tomatoes", report.Unavailable[0].ProductName)
	assert.False(t, report.FullReorderPossible)
}

func TestValidateReorderOwnership(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, false)
	ctx := context.Background()
	order, _, _ := createTwoSellerOrder(t, f)

	_, err := f.svc.ValidateReorder(ctx, order.ID, uuid.New())
	requireCode(t, err, pkgerrors.CodeForbidden)

	_, err = f.svc.ValidateReorder(ctx, uuid.New(), order.BuyerID)
	requireCode(t, err, pkgerrors.CodeNotFound)
}
