package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/farmcart/farmcart-backend/pkg/db/models"
	pkgerrors "github.com/farmcart/farmcart-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.InventoryItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	products := `
CREATE TABLE IF NOT EXISTS products (
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
);`
	if err := db.Exec(products).Error; err != nil {
		t.Fatalf("create products table: %v", err)
	}
	return db
}

func TestDeductHappyPathAndShortage(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	productID := uuid.New()

	if err := db.Create(&models.InventoryItem{ProductID: productID, AvailableQty: 5}).Error; err != nil {
		t.Fatalf("seed inventory: %v", err)
	}

	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Deduct(ctx, tx, productID, 3)
	}); err != nil {
		t.Fatalf("deduct: %v", err)
	}

	qty, err := svc.GetStock(ctx, productID)
	if err != nil {
		t.Fatalf("get stock: %v", err)
	}
	if qty != 2 {
		t.Fatalf("expected 2 remaining, got %d", qty)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		return svc.Deduct(ctx, tx, productID, 3)
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	if details["requested"] != 3 {
		t.Fatalf("expected requested 3, got %v", details["requested"])
	}
	if details["available"] != 2 {
		t.Fatalf("expected available 2, got %v", details["available"])
	}

	qty, err = svc.GetStock(ctx, productID)
	if err != nil {
		t.Fatalf("get stock: %v", err)
	}
	if qty != 2 {
		t.Fatalf("failed deduct must not change stock, got %d", qty)
	}
}

func TestDeductRejectsNonPositiveQty(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		return svc.Deduct(context.Background(), tx, uuid.New(), 0)
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRestockAllAndMissingRow(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	productID := uuid.New()

	if err := db.Create(&models.InventoryItem{ProductID: productID, AvailableQty: 1}).Error; err != nil {
		t.Fatalf("seed inventory: %v", err)
	}

	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	adjustments := []Adjustment{
		{ProductID: productID, Quantity: 4},
		{ProductID: uuid.New(), Quantity: 2}, // no inventory row
	}
	if err := db.Transaction(func(tx *gorm.DB) error {
		return svc.RestockAll(ctx, tx, adjustments)
	}); err != nil {
		t.Fatalf("restock all: %v", err)
	}

	qty, err := svc.GetStock(ctx, productID)
	if err != nil {
		t.Fatalf("get stock: %v", err)
	}
	if qty != 5 {
		t.Fatalf("expected 5 after restock, got %d", qty)
	}
}

func TestIncrementPurchaseCounts(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	product := models.Product{
		ID:         uuid.New(),
		FarmID:     uuid.New(),
		Name:       "Rainbow Carrots",
		Unit:       "bunch",
		PriceCents: 450,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		return svc.IncrementPurchaseCounts(ctx, tx, []Adjustment{{ProductID: product.ID, Quantity: 3}})
	}); err != nil {
		t.Fatalf("increment: %v", err)
	}

	var reloaded models.Product
	if err := db.First(&reloaded, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if reloaded.PurchaseCount != 3 {
		t.Fatalf("expected purchase count 3, got %d", reloaded.PurchaseCount)
	}
}
