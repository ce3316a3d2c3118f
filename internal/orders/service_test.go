package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmcart/farmcart-backend/pkg/db/models"
	"github.com/farmcart/farmcart-backend/pkg/enums"
	pkgerrors "github.com/farmcart/farmcart-backend/pkg/errors"
	"github.com/farmcart/farmcart-backend/pkg/types"
)

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr, "expected a coded error, got %v", err)
	assert.Equal(t, code, appErr.Code())
}

func TestCreateOrderHappyPath(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, false)
	ctx := context.Background()

	farmA := seedFarm(t, f.db, "anna@greenacres.com", "Green Acres")
	farmB := seedFarm(t, f.db, "ben@riverfield.org", "Riverfield")
	tomato := seedProduct(t, f.db, farmA.ID, "Tomatoes", 200, 10)
	rice := seedProduct(t, f.db, farmB.ID, "Rice", 500, 4)

	buyerID := uuid.New()
	order, err := f.svc.Create(ctx, CreateOrderInput{
		BuyerID:        buyerID,
		DeliveryMethod: enums.DeliveryMethodDelivery,
		Items: []CreateOrderItemInput{
			{ProductID: tomato.ID, Quantity: 5},
			{ProductID: rice.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Equal(t, int64(5*200+2*500), order.SubtotalCents)
	assert.Equal(t, f.fees.DeliveryFeeCents, order.DeliveryFeeCents)
	assert.Equal(t, f.fees.ServiceFeeCents, order.ServiceFeeCents)
	assert.Equal(t, order.SubtotalCents+order.DeliveryFeeCents+order.ServiceFeeCents, order.TotalCents)

	require.Len(t, order.PerSellerStatus, 2)
	assert.Equal(t, enums.OrderStatusPending, order.PerSellerStatus[EncodeSellerKey("anna@greenacres.com")])
	assert.Equal(t, enums.OrderStatusPending, order.PerSellerStatus[EncodeSellerKey("ben@riverfield.org")])
	require.Len(t, order.StatusHistory, 2)

	require.Len(t, order.Items, 2)
	assert.Equal(t, "Green Acres", order.Items[0].SellerName)
	assert.Equal(t, "anna@greenacres.com", order.Items[0].SellerKey)

	assert.Equal(t, 5, stockOf(t, f.db, tomato.ID))
	assert.Equal(t, 2, stockOf(t, f.db, rice.ID))
	assert.Equal(t, int64(1), countOutboxEvents(t, f.db, enums.EventOrderCreated))

	loaded, err := f.svc.Get(ctx, order.ID, buyerID, enums.ActorRoleBuyer)
	require.NoError(t, err)
	assert.Equal(t, order.TotalCents, loaded.TotalCents)
}

func TestCreateOrderSingleSellerHistory(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, false)
	farm := seedFarm(t, f.db, "anna@greenacres.com", "Green Acres")
	product := seedProduct(t, f.db, farm.ID, "Tomatoes", 200, 10)

	order, err := f.svc.Create(context.Background(), CreateOrderInput{
		BuyerID: uuid.New(),
		Items:   []CreateOrderItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	require.Len(t, order.StatusHistory, 1)
	assert.Empty(t, order.StatusHistory[0].SellerKey)
	assert.Equal(t, enums.DeliveryMethodDelivery, order.DeliveryMethod)
}

func TestCreateOrderValidation(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateOrderInput{BuyerID: uuid.New()})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = f.svc.Create(ctx, CreateOrderInput{
		BuyerID: uuid.New(),
		Items:   []CreateOrderItemInput{{ProductID: uuid.New(), Quantity: 0}},
	})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = f.svc.Create(ctx, CreateOrderInput{
		BuyerID: uuid.New(),
		Items:   []CreateOrderItemInput{{ProductID: uuid.New(), Quantity: 1}},
	})
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestCreateOrderInsufficientStockRollsBack(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, false)
	ctx := context.Background()

	farm := seedFarm(t, f.db, "anna@greenacres.com", "Green Acres")
	tomato := seedProduct(t, f.db, farm.ID, "Tomatoes", 200, 10)
	rice := seedProduct(t, f.db, farm.ID, "Rice", 500, 1)

	_, err := f.svc.Create(ctx, CreateOrderInput{
		BuyerID: uuid.New(),
		Items: []CreateOrderItemInput{
			{ProductID: tomato.ID, Quantity: 5},
			{ProductID: rice.ID, Quantity: 3},
		},
	})
	requireCode(t, err, pkgerrors.CodeInsufficientStock)

	assert.Equal(t, 10, stockOf(t, f.db, tomato.ID))
	assert.Equal(t, 1, stockOf(t, f.db, rice.ID))

	var count int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateOrderInactiveProduct(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, false)
	farm := seedFarm(t, f.db, "anna@greenacres.com", "Green Acres")
	product := seedProduct(t, f.db, farm.ID, "Tomatoes", 200, 10)
	require.NoError(t, f.db.Model(&models.Product{}).Where("id = ?", product.ID).Update("is_active", false).Error)

	_, err := f.svc.Create(context.Background(), CreateOrderInput{
		BuyerID: uuid.New(),
		Items:   []CreateOrderItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func createTwoSellerOrder(t *testing.T, f *serviceFixture) (*models.Order, models.Product, models.Product) {
	t.Helper()

	farmA := seedFarm(t, f.db, "anna@greenacres.com", "Green Acres")
	farmB := seedFarm(t, f.db, "ben@riverfield.org", "Riverfield")
	tomato := seedProduct(t, f.db, farmA.ID, "Tomatoes", 200, 10)
	rice := seedProduct(t, f.db, farmB.ID, "Rice", 500, 10)

	order, err := f.svc.Create(context.Background(), CreateOrderInput{
		BuyerID: uuid.New(),
		Items: []CreateOrderItemInput{
			{ProductID: tomato.ID, Quantity: 5},
			{ProductID: rice.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)
	return order, tomato, rice
}

func TestTransitionSellerScopedDelivery(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, false)
	ctx := context.Background()
	order, tomato, rice := createTwoSellerOrder(t, f)

	key := "anna@greenacres.com"
	result, err := f.svc.Transition(ctx, TransitionInput{
		OrderID:     order.ID,
		NewStatus:   enums.OrderStatusDelivered,
		SellerKey:   &key,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleFarmer,
	})
	require.NoError(t, err)

	assert.True(t, result.SellerScoped)
	assert.False(t, result.StockRestored)
	assert.Equal(t, enums.OrderStatusMixed, result.Order.Status)
	assert.Equal(t, enums.OrderStatusDelivered, result.Order.PerSellerStatus[EncodeSellerKey(key)])
	assert.Equal(t, enums.OrderStatusPending, result.Order.PerSellerStatus[EncodeSellerKey("ben@riverfield.org")])

	assert.Equal(t, int64(5), purchaseCountOf(t, f.db, tomato.ID))
	assert.Zero(t, purchaseCountOf(t, f.db, rice.ID))
	assert.Equal(t, 5, stockOf(t, f.db, tomato.ID))
	assert.Equal(t, int64(1), countOutboxEvents(t, f.db, enums.EventOrderStatusChanged))
}

func TestTransitionDeliveredIdempotent(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, false)
	ctx := context.Background()
	order, tomato, _ := createTwoSellerOrder(t, f)

	key := "anna@greenacres.com"
	input := TransitionInput{
		OrderID:     order.ID,
		NewStatus:   enums.OrderStatusDelivered,
		SellerKey:   &key,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleFarmer,
	}
	_, err := f.svc.Transition(ctx, input)
	require.NoError(t, err)
	_, err = f.svc.Transition(ctx, input)
	require.NoError(t, err)

	assert.Equal(t, int64(5), purchaseCountOf(t, f.db, tomato.ID))
}

func TestTransitionResolvesRawSellerKeys(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, false)
	ctx := context.Background()

	farm := seedFarm(t, f.db, "anna@greenacres.com", "Green Acres")
	tomato := seedProduct(t, f.db, farm.ID, "Tomatoes", 200, 10)
	order, err := f.svc.Create(ctx, CreateOrderInput{
		BuyerID: uuid.New(),
		Items:   []CreateOrderItemInput{{ProductID: tomato.ID, Quantity: 5}},
	})
	require.NoError(t, err)

	// Rows seeded before the key encoding convention carry raw dotted keys.
	raw := types.PerSellerStatus{"anna@greenacres.com": enums.OrderStatusPending}
	require.NoError(t, f.db.Model(&models.Order{}).
		Where("id = ?", order.ID).
		Select("per_seller_status").
		Updates(models.Order{PerSellerStatus: raw}).Error)

	key := "anna@greenacres.com"
	result, err := f.svc.Transition(ctx, TransitionInput{
		OrderID:     order.ID,
		NewStatus:   enums.OrderStatusDelivered,
		SellerKey:   &key,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleFarmer,
	})
	require.NoError(t, err)

	assert.Equal(t, enums.OrderStatusDelivered, result.Order.Status)
	require.Len(t, result.Order.PerSellerStatus, 1)
	assert.Equal(t, enums.OrderStatusDelivered, result.Order.PerSellerStatus[EncodeSellerKey(key)])

	reloaded, err := f.svc.Get(ctx, order.ID, order.BuyerID, enums.ActorRoleBuyer)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, reloaded.Status)
}

func TestTransitionReapplyRecordsNote(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, false)
	ctx := context.Background()
	order, tomato, _ := createTwoSellerOrder(t, f)

	key := "anna@greenacres.com"
	input := TransitionInput{
		OrderID:     order.ID,
		NewStatus:   enums.OrderStatusDelivered,
		SellerKey:   &key,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleFarmer,
	}
	_, err := f.svc.Transition(ctx, input)
	require.NoError(t, err)

	input.Note = "confirmed with courier"
	result, err := f.svc.Transition(ctx, input)
	require.NoError(t, err)

	last := result.Order.StatusHistory[len(result.Order.StatusHistory)-1]
	assert.Equal(t, "confirmed with courier", last.Note)
	assert.Equal(t, key, last.SellerKey)
	assert.Equal(t, enums.OrderStatusDelivered, last.Status)
	assert.Equal(t, int64(5), purchaseCountOf(t, f.db, tomato.ID))
}

func TestTransitionCancelRestocksOnce(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, false)
	ctx := context.Background()
	order, tomato, rice := createTwoSellerOrder(t, f)

	key := "anna@greenacres.com"
	input := TransitionInput{
		OrderID:     order.ID,
		NewStatus:   enums.OrderStatusCancelled,
		SellerKey:   &key,
		ActorUserID: order.BuyerID,
		ActorRole:   enums.ActorRoleBuyer,
	}
	result, err := f.svc.Transition(ctx, input)
	require.NoError(t, err)
	assert.True(t, result.StockRestored)
	assert.Equal(t, 10, stockOf(t, f.db, tomato.ID))
	assert.Equal(t, 8, stockOf(t, f.db, rice.ID))
	assert.Equal(t, int64(1), countOutboxEvents(t, f.db, enums.EventStockRestored))

	_, err = f.svc.Transition(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, 10, stockOf(t, f.db, tomato.ID))

	returned := TransitionInput{
		OrderID:     order.ID,
		NewStatus:   enums.OrderStatusReturned,
		SellerKey:   &key,
		ActorUserID: order.BuyerID,
		ActorRole:   enums.ActorRoleBuyer,
	}
	_, err = f.svc.Transition(ctx, returned)
	require.NoError(t, err)
	assert.Equal(t, 10, stockOf(t, f.db, tomato.ID), "cancelled to returned must not restock again")
}

func TestTransitionGlobalSingleSeller(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, false)
	ctx := context.Background()

	farm := seedFarm(t, f.db, "anna@greenacres.com", "Green Acres")
	product := seedProduct(t, f.db, farm.ID, "Tomatoes", 200, 10)
	order, err := f.svc.Create(ctx, CreateOrderInput{
		BuyerID: uuid.New(),
		Items:   []CreateOrderItemInput{{ProductID: product.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	result, err := f.svc.Transition(ctx, TransitionInput{
		OrderID:     order.ID,
		NewStatus:   enums.OrderStatusConfirmed,
		Note:        "packing tomorrow",
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleAdmin,
	})
	require.NoError(t, err)

	assert.False(t, result.SellerScoped)
	assert.Equal(t, enums.OrderStatusConfirmed, result.Order.Status)
	assert.Equal(t, enums.OrderStatusConfirmed, result.Order.PerSellerStatus[EncodeSellerKey("anna@greenacres.com")])
	last := result.Order.StatusHistory[len(result.Order.StatusHistory)-1]
	assert.Empty(t, last.SellerKey)
	assert.Equal(t, "packing tomorrow", last.Note)
}

func TestTransitionMultiSellerWithoutKey(t *testing.T) {
	t.Parallel()

	loose := newServiceFixture(t, false)
	ctx := context.Background()
	order, _, _ := createTwoSellerOrder(t, loose)

	result, err := loose.svc.Transition(ctx, TransitionInput{
		OrderID:     order.ID,
		NewStatus:   enums.OrderStatusConfirmed,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleAdmin,
	})
	require.NoError(t, err)
	assert.True(t, result.SellerScoped, "fallback infers the first seller")
	assert.Equal(t, enums.OrderStatusConfirmed, result.Order.PerSellerStatus[EncodeSellerKey("anna@greenacres.com")])
	assert.Equal(t, enums.OrderStatusPending, result.Order.PerSellerStatus[EncodeSellerKey("ben@riverfield.org")])

	strict := newServiceFixture(t, true)
	strictOrder, _, _ := createTwoSellerOrder(t, strict)
	_, err = strict.svc.Transition(ctx, TransitionInput{
		OrderID:     strictOrder.ID,
		NewStatus:   enums.OrderStatusConfirmed,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleAdmin,
	})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestTransitionRejectsMixedAndUnknownOrder(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.Transition(ctx, TransitionInput{
		OrderID:     uuid.New(),
		NewStatus:   enums.OrderStatusMixed,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleAdmin,
	})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = f.svc.Transition(ctx, TransitionInput{
		OrderID:     uuid.New(),
		NewStatus:   enums.OrderStatusConfirmed,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleAdmin,
	})
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestTransitionBuyerOwnership(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, false)
	ctx := context.Background()
	order, _, _ := createTwoSellerOrder(t, f)

	key := "anna@greenacres.com"
	_, err := f.svc.Transition(ctx, TransitionInput{
		OrderID:     order.ID,
		NewStatus:   enums.OrderStatusCancelled,
		SellerKey:   &key,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleBuyer,
	})
	requireCode(t, err, pkgerrors.CodeForbidden)
}

func TestTransitionBackfillsLegacyOrder(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, false)
	ctx := context.Background()
	order, _, _ := createTwoSellerOrder(t, f)

	// simulate a row written before the per-seller map existed
	require.NoError(t, f.db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("per_seller_status", nil).Error)

	key := "anna@greenacres.com"
	result, err := f.svc.Transition(ctx, TransitionInput{
		OrderID:     order.ID,
		NewStatus:   enums.OrderStatusShipped,
		SellerKey:   &key,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleFarmer,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, result.Order.PerSellerStatus[EncodeSellerKey(key)])
	assert.Equal(t, enums.OrderStatusPending, result.Order.PerSellerStatus[EncodeSellerKey("ben@riverfield.org")])
	assert.Equal(t, enums.OrderStatusMixed, result.Order.Status)
}

func TestDeleteGuard(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, false)
	ctx := context.Background()

	farm := seedFarm(t, f.db, "anna@greenacres.com", "Green Acres")
	product := seedProduct(t, f.db, farm.ID, "Tomatoes", 200, 10)

	fresh, err := f.svc.Create(ctx, CreateOrderInput{
		BuyerID: uuid.New(),
		Items:   []CreateOrderItemInput{{ProductID: product.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, DeleteInput{OrderID: fresh.ID, ActorUserID: fresh.BuyerID, ActorRole: enums.ActorRoleBuyer}))
	assert.Equal(t, 8, stockOf(t, f.db, product.ID), "deletion itself performs no restock")

	aged, err := f.svc.Create(ctx, CreateOrderInput{
		BuyerID: uuid.New(),
		Items:   []CreateOrderItemInput{{ProductID: product.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&models.Order{}).Where("id = ?", aged.ID).
		Update("created_at", time.Now().UTC().Add(-10*time.Minute)).Error)

	err = f.svc.Delete(ctx, DeleteInput{OrderID: aged.ID, ActorUserID: aged.BuyerID, ActorRole: enums.ActorRoleBuyer})
	requireCode(t, err, pkgerrors.CodeConflict)

	_, err = f.svc.Transition(ctx, TransitionInput{
		OrderID:     aged.ID,
		NewStatus:   enums.OrderStatusCancelled,
		ActorUserID: aged.BuyerID,
		ActorRole:   enums.ActorRoleBuyer,
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, DeleteInput{OrderID: aged.ID, ActorUserID: aged.BuyerID, ActorRole: enums.ActorRoleBuyer}))
	assert.Equal(t, int64(2), countOutboxEvents(t, f.db, enums.EventOrderDeleted))
}

func TestDeleteForbiddenForOtherBuyer(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, false)
	ctx := context.Background()
	order, _, _ := createTwoSellerOrder(t, f)

	err := f.svc.Delete(ctx, DeleteInput{OrderID: order.ID, ActorUserID: uuid.New(), ActorRole: enums.ActorRoleBuyer})
	requireCode(t, err, pkgerrors.CodeForbidden)
}

func TestGetEnsuresHistoryArrayAndOwnership(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, false)
	ctx := context.Background()
	repo := NewRepository(f.db)

	order := models.Order{
		ID:            uuid.New(),
		BuyerID:       uuid.New(),
		Status:        enums.OrderStatusPending,
		SubtotalCents: 100,
		TotalCents:    100,
		Version:       1,
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, repo.CreateOrder(ctx, &order))

	loaded, err := f.svc.Get(ctx, order.ID, order.BuyerID, enums.ActorRoleBuyer)
	require.NoError(t, err)
	require.NotNil(t, loaded.StatusHistory)
	assert.Len(t, loaded.StatusHistory, 0)

	_, err = f.svc.Get(ctx, order.ID, uuid.New(), enums.ActorRoleBuyer)
	requireCode(t, err, pkgerrors.CodeForbidden)
}

func TestListBuyerOrdersService(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, false)
	ctx := context.Background()
	order, _, _ := createTwoSellerOrder(t, f)

	list, err := f.svc.ListBuyerOrders(ctx, ListBuyerOrdersInput{BuyerID: order.BuyerID})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.NotNil(t, list.Orders[0].StatusHistory)

	_, err = f.svc.ListBuyerOrders(ctx, ListBuyerOrdersInput{})
	requireCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestExpireStalePending(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, false)
	ctx := context.Background()

	farm := seedFarm(t, f.db, "anna@greenacres.com", "Green Acres")
	product := seedProduct(t, f.db, farm.ID, "Tomatoes", 200, 10)

	stale, err := f.svc.Create(ctx, CreateOrderInput{
		BuyerID: uuid.New(),
		Items:   []CreateOrderItemInput{{ProductID: product.ID, Quantity: 3}},
	})
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&models.Order{}).Where("id = ?", stale.ID).
		Update("created_at", time.Now().UTC().Add(-48*time.Hour)).Error)

	fresh, err := f.svc.Create(ctx, CreateOrderInput{
		BuyerID: uuid.New(),
		Items:   []CreateOrderItemInput{{ProductID: product.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	expired, err := f.svc.ExpireStalePending(ctx, time.Now().UTC().Add(-24*time.Hour), 100)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	reloaded, err := f.repo.FindOrder(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, reloaded.Status)
	last := reloaded.StatusHistory[len(reloaded.StatusHistory)-1]
	assert.Equal(t, enums.OrderStatusCancelled, last.Status)
	assert.NotEmpty(t, last.Note)

	untouched, err := f.repo.FindOrder(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPending, untouched.Status)

	// 10 - 3 - 2 at creation, +3 back on expiry
	assert.Equal(t, 8, stockOf(t, f.db, product.ID))
	assert.Equal(t, int64(1), countOutboxEvents(t, f.db, enums.EventOrderExpired))

	again, err := f.svc.ExpireStalePending(ctx, time.Now().UTC().Add(-24*time.Hour), 100)
	require.NoError(t, err)
	assert.Zero(t, again)
	assert.Equal(t, 8, stockOf(t, f.db, product.ID))
}

func TestPurgeCancelled(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, false)
	ctx := context.Background()

	old := seedOrder(t, f.repo, uuid.New(), enums.OrderStatusCancelled, time.Now().UTC().Add(-100*24*time.Hour))
	seedOrder(t, f.repo, uuid.New(), enums.OrderStatusCancelled, time.Now().UTC())

	deleted, err := f.svc.PurgeCancelled(ctx, time.Now().UTC().Add(-f.orders.CancelledRetention))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = f.repo.FindOrder(ctx, old.ID)
	require.Error(t, err)
}

func TestSellerStatusViews(t *testing.T) {
	t.Parallel()

	order := &models.Order{PerSellerStatus: types.PerSellerStatus{
		EncodeSellerKey("ben@riverfield.org"):  enums.OrderStatusPending,
		EncodeSellerKey("anna@greenacres.com"): enums.OrderStatusDelivered,
	}}
	views := SellerStatusViews(order)
	require.Len(t, views, 2)
	assert.Equal(t, "anna@greenacres.com", views[0].SellerKey)
	assert.Equal(t, enums.OrderStatusDelivered, views[0].Status)
	assert.Equal(t, "ben@riverfield.org", views[1].SellerKey)

	assert.Empty(t, SellerStatusViews(nil))
}
