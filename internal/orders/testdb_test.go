package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/farmcart/farmcart-backend/internal/farms"
	"github.com/farmcart/farmcart-backend/internal/inventory"
	"github.com/farmcart/farmcart-backend/internal/products"
	"github.com/farmcart/farmcart-backend/pkg/config"
	"github.com/farmcart/farmcart-backend/pkg/db/models"
	"github.com/farmcart/farmcart-backend/pkg/enums"
	"github.com/farmcart/farmcart-backend/pkg/outbox"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:orders_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS farms (
  id TEXT PRIMARY KEY,
  owner_user_id TEXT NOT NULL,
  contact_email TEXT NOT NULL,
  display_name TEXT NOT NULL,
  region TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  farm_id TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT,
  image_url TEXT,
  unit TEXT NOT NULL,
  price_cents INTEGER NOT NULL,
  tags TEXT,
  purchase_count INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS inventory_items (
  product_id TEXT PRIMARY KEY,
  available_qty INTEGER NOT NULL DEFAULT 0,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number INTEGER,
  buyer_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  per_seller_status TEXT,
  status_history TEXT,
  delivery_method TEXT NOT NULL DEFAULT 'delivery',
  subtotal_cents INTEGER NOT NULL,
  delivery_fee_cents INTEGER NOT NULL DEFAULT 0,
  service_fee_cents INTEGER NOT NULL DEFAULT 0,
  total_cents INTEGER NOT NULL,
  notes TEXT,
  version INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  farm_id TEXT NOT NULL,
  seller_key TEXT NOT NULL,
  seller_name TEXT NOT NULL,
  product_name TEXT NOT NULL,
  image_url TEXT,
  unit TEXT NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  quantity INTEGER NOT NULL,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type serviceFixture struct {
	db     *gorm.DB
	svc    Service
	repo   Repository
	strict bool
	fees   config.FeesConfig
	orders config.OrdersConfig
}

func newServiceFixture(t *testing.T, strict bool) *serviceFixture {
	t.Helper()

	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	inv, err := inventory.NewService(db)
	require.NoError(t, err)

	feesCfg := config.FeesConfig{DeliveryFeeCents: 499, ServiceFeeCents: 150, PriceEpsilonCents: "1"}
	ordersCfg := config.OrdersConfig{
		PendingDeleteWindow: 5 * time.Minute,
		StaleAfter:          24 * time.Hour,
		CancelledRetention:  90 * 24 * time.Hour,
		UpdateMaxRetries:    3,
	}

	svc, err := NewService(
		repo,
		products.NewRepository(db),
		farms.NewRepository(db),
		inv,
		gormTxRunner{db: db},
		outbox.NewService(outbox.NewRepository(db), nil),
		nil,
		ordersCfg,
		feesCfg,
		strict,
		nil,
	)
	require.NoError(t, err)

	return &serviceFixture{db: db, svc: svc, repo: repo, strict: strict, fees: feesCfg, orders: ordersCfg}
}

func seedFarm(t *testing.T, db *gorm.DB, email, name string) models.Farm {
	t.Helper()
	farm := models.Farm{
		ID:           uuid.New(),
		OwnerUserID:  uuid.New(),
		ContactEmail: email,
		DisplayName:  name,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&farm).Error)
	return farm
}

func seedProduct(t *testing.T, db *gorm.DB, farmID uuid.UUID, name string, priceCents int64, stock int) models.Product {
	t.Helper()
	product := models.Product{
		ID:         uuid.New(),
		FarmID:     farmID,
		Name:       name,
		Unit:       "kg",
		PriceCents: priceCents,
		IsActive:   true,
	}
	require.NoError(t, db.Create(&product).Error)
	require.NoError(t, db.Create(&models.InventoryItem{ProductID: product.ID, AvailableQty: stock}).Error)
	return product
}

func stockOf(t *testing.T, db *gorm.DB, productID uuid.UUID) int {
	t.Helper()
	var item models.InventoryItem
	require.NoError(t, db.First(&item, "product_id = ?", productID).Error)
	return item.AvailableQty
}

func purchaseCountOf(t *testing.T, db *gorm.DB, productID uuid.UUID) int64 {
	t.Helper()
	var product models.Product
	require.NoError(t, db.First(&product, "id = ?", productID).Error)
	return product.PurchaseCount
}

func countOutboxEvents(t *testing.T, db *gorm.DB, eventType enums.OutboxEventType) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.OutboxEvent{}).Where("event_type = ?", eventType).Count(&count).Error)
	return count
}
