package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farmcart/farmcart-backend/internal/farms"
	"github.com/farmcart/farmcart-backend/internal/inventory"
	"github.com/farmcart/farmcart-backend/internal/products"
	"github.com/farmcart/farmcart-backend/pkg/config"
	"github.com/farmcart/farmcart-backend/pkg/db/models"
	"github.com/farmcart/farmcart-backend/pkg/enums"
	pkgerrors "github.com/farmcart/farmcart-backend/pkg/errors"
	"github.com/farmcart/farmcart-backend/pkg/logger"
	"github.com/farmcart/farmcart-backend/pkg/outbox"
	"github.com/farmcart/farmcart-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// errVersionConflict signals that a guarded update lost the race and
// the whole transition should be replayed against fresh state.
var errVersionConflict = errors.New("order version conflict")

// Service orchestrates the order lifecycle.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	Get(ctx context.Context, orderID uuid.UUID, actorUserID uuid.UUID, role enums.ActorRole) (*models.Order, error)
	ListBuyerOrders(ctx context.Context, input ListBuyerOrdersInput) (*OrderList, error)
	Transition(ctx context.Context, input TransitionInput) (*TransitionResult, error)
	Delete(ctx context.Context, input DeleteInput) error
	ValidateReorder(ctx context.Context, orderID uuid.UUID, buyerID uuid.UUID) (*ReorderValidation, error)
	ExpireStalePending(ctx context.Context, cutoff time.Time, limit int) (int, error)
	PurgeCancelled(ctx context.Context, cutoff time.Time) (int64, error)
}

type service struct {
	repo      Repository
	products  products.Repository
	farms     farms.Repository
	inventory inventory.Service
	tx        txRunner
	outbox    outboxPublisher
	cache     *Cache
	ordersCfg config.OrdersConfig
	feesCfg   config.FeesConfig
	strict    bool
	logg      *logger.Logger
}

// OrderCreatedEvent is emitted inside the creation transaction.
type OrderCreatedEvent struct {
	OrderID    uuid.UUID `json:"order_id"`
	BuyerID    uuid.UUID `json:"buyer_id"`
	TotalCents int64     `json:"total_cents"`
	ItemCount  int       `json:"item_count"`
	SellerKeys []string  `json:"seller_keys"`
}

// OrderStatusChangedEvent is emitted when a transition lands.
type OrderStatusChangedEvent struct {
	OrderID         uuid.UUID         `json:"order_id"`
	BuyerID         uuid.UUID         `json:"buyer_id"`
	SellerKey       string            `json:"seller_key,omitempty"`
	PreviousStatus  enums.OrderStatus `json:"previous_status"`
	NewStatus       enums.OrderStatus `json:"new_status"`
	AggregateStatus enums.OrderStatus `json:"aggregate_status"`
	StockRestored   bool              `json:"stock_restored"`
}

// OrderDeletedEvent is emitted inside the deletion transaction.
type OrderDeletedEvent struct {
	OrderID uuid.UUID         `json:"order_id"`
	BuyerID uuid.UUID         `json:"buyer_id"`
	Status  enums.OrderStatus `json:"status"`
}

// StockRestoredEvent reports inventory returned by a cancellation or return.
type StockRestoredEvent struct {
	OrderID   uuid.UUID           `json:"order_id"`
	SellerKey string              `json:"seller_key,omitempty"`
	Items     []StockRestoredItem `json:"items"`
}

// StockRestoredItem is one restocked line.
type StockRestoredItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// NewService wires the order lifecycle orchestrator.
func NewService(
	repo Repository,
	productsRepo products.Repository,
	farmsRepo farms.Repository,
	inv inventory.Service,
	tx txRunner,
	events outboxPublisher,
	cache *Cache,
	ordersCfg config.OrdersConfig,
	feesCfg config.FeesConfig,
	strictSellerScope bool,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if productsRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if farmsRepo == nil {
		return nil, fmt.Errorf("farms repository required")
	}
	if inv == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if ordersCfg.UpdateMaxRetries <= 0 {
		ordersCfg.UpdateMaxRetries = 3
	}
	return &service{
		repo:      repo,
		products:  productsRepo,
		farms:     farmsRepo,
		inventory: inv,
		tx:        tx,
		outbox:    events,
		cache:     cache,
		ordersCfg: ordersCfg,
		feesCfg:   feesCfg,
		strict:    strictSellerScope,
		logg:      logg,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "buyer identity missing")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}
	quantities := make(map[uuid.UUID]int, len(input.Items))
	productIDs := make([]uuid.UUID, 0, len(input.Items))
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item product id required")
		}
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		if _, seen := quantities[item.ProductID]; !seen {
			productIDs = append(productIDs, item.ProductID)
		}
		quantities[item.ProductID] += item.Quantity
	}
	method := input.DeliveryMethod
	if method == "" {
		method = enums.DeliveryMethodDelivery
	}
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown delivery method")
	}

	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		catalog, err := s.products.WithTx(tx).FindByIDs(ctx, productIDs)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
		}
		byID := make(map[uuid.UUID]models.Product, len(catalog))
		for _, p := range catalog {
			byID[p.ID] = p
		}
		for _, id := range productIDs {
			product, ok := byID[id]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
					WithDetails(map[string]any{"product_id": id.String()})
			}
			if !product.IsActive {
				return pkgerrors.New(pkgerrors.CodeValidation, "product is no longer available").
					WithDetails(map[string]any{"product_id": id.String()})
			}
		}

		sellers := s.resolveSellers(ctx, tx, catalog)

		for _, id := range productIDs {
			if err := s.inventory.Deduct(ctx, tx, id, quantities[id]); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		order := &models.Order{
			ID:             uuid.New(),
			BuyerID:        input.BuyerID,
			Status:         enums.OrderStatusPending,
			DeliveryMethod: method,
			Notes:          input.Notes,
			Version:        1,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		perSeller := types.PerSellerStatus{}
		var history types.StatusHistory
		items := make([]models.OrderItem, 0, len(input.Items))
		var subtotal int64
		sellerKeys := make([]string, 0, 2)
		for _, line := range input.Items {
			product := byID[line.ProductID]
			seller := sellers[product.FarmID]
			encoded := EncodeSellerKey(seller.key)
			if _, seen := perSeller[encoded]; !seen {
				perSeller[encoded] = enums.OrderStatusPending
				sellerKeys = append(sellerKeys, seller.key)
			}
			lineTotal := product.PriceCents * int64(line.Quantity)
			subtotal += lineTotal
			items = append(items, models.OrderItem{
				ID:             uuid.New(),
				OrderID:        order.ID,
				ProductID:      product.ID,
				FarmID:         product.FarmID,
				SellerKey:      seller.key,
				SellerName:     seller.name,
				ProductName:    product.Name,
				ImageURL:       product.ImageURL,
				Unit:           product.Unit,
				UnitPriceCents: product.PriceCents,
				Quantity:       line.Quantity,
				CreatedAt:      now,
			})
		}
		if len(sellerKeys) == 1 {
			history = append(history, types.StatusHistoryEntry{Status: enums.OrderStatusPending, At: now})
		} else {
			for _, key := range sellerKeys {
				history = append(history, types.StatusHistoryEntry{Status: enums.OrderStatusPending, SellerKey: key, At: now})
			}
		}

		order.PerSellerStatus = perSeller
		order.StatusHistory = history
		order.SubtotalCents = subtotal
		order.ServiceFeeCents = s.feesCfg.ServiceFeeCents
		if method == enums.DeliveryMethodDelivery {
			order.DeliveryFeeCents = s.feesCfg.DeliveryFeeCents
		}
		order.TotalCents = order.SubtotalCents + order.DeliveryFeeCents + order.ServiceFeeCents

		repo := s.repo.WithTx(tx)
		if err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
		}
		if err := repo.CreateOrderItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order items")
		}
		order.Items = items

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.BuyerID, Role: string(enums.ActorRoleBuyer)},
			Data: OrderCreatedEvent{
				OrderID:    order.ID,
				BuyerID:    order.BuyerID,
				TotalCents: order.TotalCents,
				ItemCount:  len(items),
				SellerKeys: sellerKeys,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order created")
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, created.ID.String()), "order created")
	}
	return created, nil
}

type sellerIdentity struct {
	key  string
	name string
}

// resolveSellers maps farm ids to seller identity. Resolution is best
// effort; an unresolved farm falls back to its id as the seller key so
// order creation never fails on identity lookup.
func (s *service) resolveSellers(ctx context.Context, tx *gorm.DB, catalog []models.Product) map[uuid.UUID]sellerIdentity {
	farmIDs := make([]uuid.UUID, 0, len(catalog))
	seen := make(map[uuid.UUID]bool, len(catalog))
	for _, p := range catalog {
		if !seen[p.FarmID] {
			seen[p.FarmID] = true
			farmIDs = append(farmIDs, p.FarmID)
		}
	}

	resolved := make(map[uuid.UUID]sellerIdentity, len(farmIDs))
	rows, err := s.farms.WithTx(tx).FindByIDs(ctx, farmIDs)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "farm lookup failed, using farm ids as seller keys")
		}
	} else {
		for _, farm := range rows {
			resolved[farm.ID] = sellerIdentity{key: farm.ContactEmail, name: farm.DisplayName}
		}
	}
	for _, id := range farmIDs {
		if _, ok := resolved[id]; !ok {
			resolved[id] = sellerIdentity{key: id.String()}
		}
	}
	return resolved
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID, actorUserID uuid.UUID, role enums.ActorRole) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	if cached := s.cache.Get(ctx, orderID.String()); cached != nil {
		if err := authorizeRead(cached, actorUserID, role); err != nil {
			return nil, err
		}
		return cached, nil
	}

	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.StatusHistory == nil {
		order.StatusHistory = types.StatusHistory{}
	}
	if err := authorizeRead(order, actorUserID, role); err != nil {
		return nil, err
	}
	s.ensureSellerStatuses(ctx, order)
	s.cache.Set(ctx, order)
	return order, nil
}

// backfillSellerStatuses seeds per_seller_status entries for orders
// persisted before the map existed, using the aggregate status as it
// stood before the current operation. Rows imported with raw dotted
// keys are rewritten to the encoded form so scoped transitions resolve
// them. Reports whether anything changed.
func backfillSellerStatuses(order *models.Order) bool {
	if order.PerSellerStatus == nil {
		order.PerSellerStatus = types.PerSellerStatus{}
	}
	changed := false
	for key, status := range order.PerSellerStatus {
		encoded := EncodeSellerKey(key)
		if encoded == key {
			continue
		}
		if _, ok := order.PerSellerStatus[encoded]; !ok {
			order.PerSellerStatus[encoded] = status
		}
		delete(order.PerSellerStatus, key)
		changed = true
	}
	seed := order.Status
	if !seed.IsAssignable() {
		seed = enums.OrderStatusPending
	}
	for _, key := range distinctSellerKeys(order.Items) {
		encoded := EncodeSellerKey(key)
		if _, ok := order.PerSellerStatus[encoded]; !ok {
			order.PerSellerStatus[encoded] = seed
			changed = true
		}
	}
	return changed
}

// ensureSellerStatuses runs the backfill on the read path, persisting
// once per order the first time it is loaded after the map column was
// introduced. The version check keeps concurrent backfills from
// clobbering a newer write; losing the race is harmless because the
// winner persisted the same entries.
func (s *service) ensureSellerStatuses(ctx context.Context, order *models.Order) {
	if !backfillSellerStatuses(order) {
		return
	}
	if _, err := s.repo.UpdateOrderGuarded(ctx, order, order.Version); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "seller status backfill failed")
	}
}

func authorizeRead(order *models.Order, actorUserID uuid.UUID, role enums.ActorRole) error {
	if role == enums.ActorRoleBuyer && order.BuyerID != actorUserID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another buyer")
	}
	return nil
}

func (s *service) ListBuyerOrders(ctx context.Context, input ListBuyerOrdersInput) (*OrderList, error) {
	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "buyer identity missing")
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown status filter")
	}
	rows, next, err := s.repo.ListBuyerOrders(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	for i := range rows {
		if rows[i].StatusHistory == nil {
			rows[i].StatusHistory = types.StatusHistory{}
		}
	}
	return &OrderList{Orders: rows, NextCursor: next}, nil
}

func (s *service) Transition(ctx context.Context, input TransitionInput) (*TransitionResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.NewStatus.IsAssignable() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status cannot be assigned").
			WithDetails(map[string]any{"status": input.NewStatus.String()})
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}

	var result *TransitionResult
	for attempt := 0; attempt < s.ordersCfg.UpdateMaxRetries; attempt++ {
		res, err := s.transitionOnce(ctx, input)
		if err == nil {
			result = res
			break
		}
		if errors.Is(err, errVersionConflict) {
			continue
		}
		return nil, err
	}
	if result == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order was updated concurrently, retry")
	}

	s.cache.Invalidate(ctx, input.OrderID.String())
	return result, nil
}

func (s *service) transitionOnce(ctx context.Context, input TransitionInput) (*TransitionResult, error) {
	var result *TransitionResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if input.ActorRole == enums.ActorRoleBuyer && order.BuyerID != input.ActorUserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another buyer")
		}

		sellerKeys := distinctSellerKeys(order.Items)
		scopeKey, sellerScoped, err := s.determineScope(input, order, sellerKeys)
		if err != nil {
			return err
		}

		baseline := order.Status
		backfillSellerStatuses(order)
		perSeller := order.PerSellerStatus.Clone()

		var prev enums.OrderStatus
		if sellerScoped {
			encoded := EncodeSellerKey(scopeKey)
			current, ok := perSeller[encoded]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeNotFound, "seller has no portion on this order").
					WithDetails(map[string]any{"seller_key": scopeKey})
			}
			prev = current
		} else {
			prev = baseline
		}

		if prev == input.NewStatus {
			// Re-applying the current status triggers no inventory side
			// effects, but the attempt still lands in the history so an
			// operator's note is not dropped.
			entry := types.StatusHistoryEntry{Status: input.NewStatus, At: time.Now().UTC(), Note: input.Note}
			if sellerScoped {
				entry.SellerKey = scopeKey
			}
			order.StatusHistory = append(order.StatusHistory, entry)
			order.PerSellerStatus = perSeller
			applied, err := repo.UpdateOrderGuarded(ctx, order, order.Version)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
			}
			if !applied {
				return errVersionConflict
			}
			result = &TransitionResult{Order: order, StockRestored: false, SellerScoped: sellerScoped}
			return nil
		}

		affected := affectedItems(order.Items, scopeKey, sellerScoped)
		stockRestored := false
		if !prev.IsStockReturning() {
			switch {
			case input.NewStatus == enums.OrderStatusDelivered:
				if err := s.inventory.IncrementPurchaseCounts(ctx, tx, adjustments(affected)); err != nil {
					return err
				}
			case input.NewStatus.IsStockReturning():
				if err := s.inventory.RestockAll(ctx, tx, adjustments(affected)); err != nil {
					return err
				}
				stockRestored = true
			}
		}

		now := time.Now().UTC()
		if sellerScoped {
			perSeller[EncodeSellerKey(scopeKey)] = input.NewStatus
			order.StatusHistory = append(order.StatusHistory, types.StatusHistoryEntry{
				Status:    input.NewStatus,
				SellerKey: scopeKey,
				At:        now,
				Note:      input.Note,
			})
		} else {
			for key := range perSeller {
				perSeller[key] = input.NewStatus
			}
			order.StatusHistory = append(order.StatusHistory, types.StatusHistoryEntry{
				Status: input.NewStatus,
				At:     now,
				Note:   input.Note,
			})
		}
		order.PerSellerStatus = perSeller
		order.Status = DeriveAggregateStatus(perSeller, input.NewStatus)

		applied, err := repo.UpdateOrderGuarded(ctx, order, order.Version)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if !applied {
			return errVersionConflict
		}

		actor := &outbox.ActorRef{UserID: input.ActorUserID, FarmID: input.ActorFarmID, Role: string(input.ActorRole)}
		changed := outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         actor,
			Data: OrderStatusChangedEvent{
				OrderID:         order.ID,
				BuyerID:         order.BuyerID,
				SellerKey:       scopedKeyForEvent(scopeKey, sellerScoped),
				PreviousStatus:  prev,
				NewStatus:       input.NewStatus,
				AggregateStatus: order.Status,
				StockRestored:   stockRestored,
			},
		}
		if err := s.outbox.Emit(ctx, tx, changed); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit status changed")
		}
		if stockRestored {
			restocked := outbox.DomainEvent{
				EventType:     enums.EventStockRestored,
				AggregateType: enums.AggregateInventory,
				AggregateID:   order.ID,
				Version:       1,
				Actor:         actor,
				Data: StockRestoredEvent{
					OrderID:   order.ID,
					SellerKey: scopedKeyForEvent(scopeKey, sellerScoped),
					Items:     restockedItems(affected),
				},
			}
			if err := s.outbox.Emit(ctx, tx, restocked); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit stock restored")
			}
		}

		result = &TransitionResult{Order: order, StockRestored: stockRestored, SellerScoped: sellerScoped}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// determineScope resolves which portion of the order a transition
// touches. A missing seller key on a multi-seller order either falls
// back to the first seller on the order or, in strict mode, is
// rejected as ambiguous.
func (s *service) determineScope(input TransitionInput, order *models.Order, sellerKeys []string) (string, bool, error) {
	if input.SellerKey != nil && *input.SellerKey != "" {
		key := DecodeSellerKey(*input.SellerKey)
		if s.strict && input.ActorRole == enums.ActorRoleFarmer {
			if input.ActorFarmID == nil || !farmOwnsSellerKey(order.Items, *input.ActorFarmID, key) {
				return "", false, pkgerrors.New(pkgerrors.CodeForbidden, "seller key does not belong to acting farm")
			}
		}
		return key, true, nil
	}
	if len(sellerKeys) > 1 {
		if s.strict {
			return "", false, pkgerrors.New(pkgerrors.CodeValidation, "seller key required for multi-seller order")
		}
		return sellerKeys[0], true, nil
	}
	if len(sellerKeys) == 1 {
		return sellerKeys[0], false, nil
	}
	return "", false, nil
}

func farmOwnsSellerKey(items []models.OrderItem, farmID uuid.UUID, sellerKey string) bool {
	for _, item := range items {
		if item.FarmID == farmID && item.SellerKey == sellerKey {
			return true
		}
	}
	return false
}

func distinctSellerKeys(items []models.OrderItem) []string {
	keys := make([]string, 0, 2)
	seen := make(map[string]bool, 2)
	for _, item := range items {
		if !seen[item.SellerKey] {
			seen[item.SellerKey] = true
			keys = append(keys, item.SellerKey)
		}
	}
	return keys
}

func affectedItems(items []models.OrderItem, scopeKey string, sellerScoped bool) []models.OrderItem {
	if !sellerScoped && scopeKey == "" {
		return items
	}
	affected := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		if item.SellerKey == scopeKey {
			affected = append(affected, item)
		}
	}
	return affected
}

func adjustments(items []models.OrderItem) []inventory.Adjustment {
	out := make([]inventory.Adjustment, len(items))
	for i, item := range items {
		out[i] = inventory.Adjustment{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return out
}

func restockedItems(items []models.OrderItem) []StockRestoredItem {
	out := make([]StockRestoredItem, len(items))
	for i, item := range items {
		out[i] = StockRestoredItem{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return out
}

func scopedKeyForEvent(scopeKey string, sellerScoped bool) string {
	if sellerScoped {
		return scopeKey
	}
	return ""
}

func (s *service) Delete(ctx context.Context, input DeleteInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if input.ActorRole != enums.ActorRoleAdmin && order.BuyerID != input.ActorUserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another buyer")
		}

		// No inventory side effects here: stock was already returned at
		// the cancellation transition when applicable.
		deletable := order.Status == enums.OrderStatusCancelled ||
			(order.Status == enums.OrderStatusPending && time.Since(order.CreatedAt) < s.ordersCfg.PendingDeleteWindow)
		if !deletable {
			return pkgerrors.New(pkgerrors.CodeConflict, "order cannot be deleted in its current state").
				WithDetails(map[string]any{"status": order.Status.String()})
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderDeleted,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID, Role: string(input.ActorRole)},
			Data: OrderDeletedEvent{
				OrderID: order.ID,
				BuyerID: order.BuyerID,
				Status:  order.Status,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order deleted")
		}

		if err := repo.DeleteOrder(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, input.OrderID.String())
	return nil
}
