package catalog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/breezepoint/breezepoint-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:catalog-%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	suppliers := `
CREATE TABLE IF NOT EXISTS suppliers (
  id TEXT PRIMARY KEY,
  display_name TEXT NOT NULL,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	listings := `
CREATE TABLE IF NOT EXISTS catalog_listings (
  id TEXT PRIMARY KEY,
  supplier_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  stock_quantity INTEGER NOT NULL DEFAULT 0,
  lead_time_days INTEGER,
  delivery_regions TEXT NOT NULL DEFAULT '{}',
  notes TEXT,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(suppliers).Error)
	require.NoError(t, db.Exec(listings).Error)
	return db
}

func newSupplier(t *testing.T, db *gorm.DB, name string, active bool) models.Supplier {
	t.Helper()
	supplier := models.Supplier{ID: uuid.New(), DisplayName: name, Active: true}
	require.NoError(t, db.Create(&supplier).Error)
	if !active {
		require.NoError(t, db.Model(&supplier).Update("active", false).Error)
		supplier.Active = false
	}
	return supplier
}

func newListing(t *testing.T, db *gorm.DB, supplierID uuid.UUID, productID string, stock int, createdAt time.Time, mutate func(*models.CatalogListing)) models.CatalogListing {
	t.Helper()
	listing := models.CatalogListing{
		ID:              uuid.New(),
		SupplierID:      supplierID,
		ProductID:       productID,
		StockQuantity:   stock,
		DeliveryRegions: pq.StringArray{},
		Active:          true,
		CreatedAt:       createdAt,
	}
	if mutate != nil {
		mutate(&listing)
	}
	require.NoError(t, db.Create(&listing).Error)
	return listing
}

func TestListActiveByProductIDs(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	coolbreeze := newSupplier(t, db, "CoolBreeze Supply", true)
	polar := newSupplier(t, db, "Polar HVAC", true)
	dormant := newSupplier(t, db, "Dormant Traders", false)

	lead := 3
	notes := "bulk pricing"
	first := newListing(t, db, coolbreeze.ID, "P1", 5, base, func(l *models.CatalogListing) {
		l.LeadTimeDays = &lead
		l.Notes = &notes
		l.DeliveryRegions = pq.StringArray{"metro", "north"}
	})
	second := newListing(t, db, polar.ID, "P1", 10, base.Add(time.Minute), nil)
	newListing(t, db, coolbreeze.ID, "P2", 1, base, nil)
	newListing(t, db, dormant.ID, "P1", 100, base, nil)
	inactive := newListing(t, db, polar.ID, "P2", 8, base, nil)
	require.NoError(t, db.Model(&models.CatalogListing{}).Where("id = ?", inactive.ID).Update("active", false).Error)
	newListing(t, db, polar.ID, "P7", 8, base, nil)

	catalog, err := repo.ListActiveByProductIDs(ctx, []string{"P1", "P2", "P1", ""})
	require.NoError(t, err)
	require.Len(t, catalog, 2)

	p1 := catalog["P1"]
	require.Len(t, p1, 2)
	assert.Equal(t, first.ID.String(), *p1[0].CatalogItemID)
	assert.Equal(t, coolbreeze.ID.String(), p1[0].SupplierID)
	assert.Equal(t, []string{"metro", "north"}, p1[0].DeliveryRegions)
	require.NotNil(t, p1[0].LeadTimeDays)
	assert.Equal(t, 3, *p1[0].LeadTimeDays)
	require.NotNil(t, p1[0].Notes)
	assert.Equal(t, "bulk pricing", *p1[0].Notes)
	assert.Equal(t, second.ID.String(), *p1[1].CatalogItemID)

	p2 := catalog["P2"]
	require.Len(t, p2, 1)
	assert.Equal(t, coolbreeze.ID.String(), p2[0].SupplierID)
	assert.Empty(t, catalog["P7"])
}

func TestListActiveByProductIDsEmptyInput(t *testing.T) {
	repo := NewRepository(setupCatalogTestDB(t))

	catalog, err := repo.ListActiveByProductIDs(context.Background(), nil)
	require.NoError(t, err)
	require.NotNil(t, catalog)
	assert.Empty(t, catalog)
}

func TestListActiveByProductIDsKeepsQuotedRegions(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	supplier := newSupplier(t, db, "Gale Force Parts", true)

	regions := pq.StringArray{"Davao, City", `Cebu "North"`, `back\slash`, "NULL"}
	newListing(t, db, supplier.ID, "P9", 2, time.Now().UTC(), func(l *models.CatalogListing) {
		l.DeliveryRegions = regions
	})

	catalog, err := repo.ListActiveByProductIDs(context.Background(), []string{"P9"})
	require.NoError(t, err)
	require.Len(t, catalog["P9"], 1)
	assert.Equal(t, []string(regions), catalog["P9"][0].DeliveryRegions)
}
