package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/breezepoint/breezepoint-backend/pkg/enums"
)

// AssignedItem is the persisted form of a matched order line.
type AssignedItem struct {
	ProductID     string  `json:"product_id"`
	Quantity      int     `json:"quantity"`
	CatalogItemID *string `json:"catalog_item_id,omitempty"`
}

// AssignedItems stores the committed item list as JSON.
type AssignedItems []AssignedItem

// Value implements driver.Valuer.
func (a AssignedItems) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan implements sql.Scanner.
func (a *AssignedItems) Scan(src interface{}) error {
	if a == nil {
		return fmt.Errorf("assigned items: scan into nil pointer")
	}
	var raw []byte
	switch v := src.(type) {
	case nil:
		*a = AssignedItems{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("assigned items: unsupported type %T", src)
	}
	if len(raw) == 0 {
		*a = AssignedItems{}
		return nil
	}
	var items AssignedItems
	if err := json.Unmarshal(raw, &items); err != nil {
		return err
	}
	if items == nil {
		items = AssignedItems{}
	}
	*a = items
	return nil
}

// SupplierAssignment records the operator's choice of supplier for an order.
type SupplierAssignment struct {
	ID               uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID          uuid.UUID              `gorm:"column:order_id;type:uuid;not null"`
	SupplierID       uuid.UUID              `gorm:"column:supplier_id;type:uuid;not null"`
	SupplierName     string                 `gorm:"column:supplier_name;not null"`
	Items            AssignedItems          `gorm:"column:items;type:jsonb;not null"`
	Notes            *string                `gorm:"column:notes"`
	Status           enums.AssignmentStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	AssignedByUserID *uuid.UUID             `gorm:"column:assigned_by_user_id;type:uuid"`
	AssignedAt       time.Time              `gorm:"column:assigned_at;not null"`
	StatusChangedAt  *time.Time             `gorm:"column:status_changed_at"`
	CreatedAt        time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
