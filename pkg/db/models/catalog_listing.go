package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// CatalogListing is a supplier's offer for a single product.
type CatalogListing struct {
	ID              uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SupplierID      uuid.UUID      `gorm:"column:supplier_id;type:uuid;not null"`
	ProductID       string         `gorm:"column:product_id;not null"`
	StockQuantity   int            `gorm:"column:stock_quantity;not null;default:0"`
	LeadTimeDays    *int           `gorm:"column:lead_time_days"`
	DeliveryRegions pq.StringArray `gorm:"column:delivery_regions;type:text[];not null;default:'{}'"`
	Notes           *string        `gorm:"column:notes"`
	Active          bool           `gorm:"column:active;not null;default:true"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
