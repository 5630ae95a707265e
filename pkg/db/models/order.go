package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/breezepoint/breezepoint-backend/pkg/enums"
)

// Order is the customer order an operator routes to a supplier.
type Order struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber    int64             `gorm:"column:order_number;not null"`
	CustomerID     uuid.UUID         `gorm:"column:customer_id;type:uuid;not null"`
	Status         enums.OrderStatus `gorm:"column:status;type:text;not null;default:'placed'"`
	DeliveryRegion *string           `gorm:"column:delivery_region"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`

	Items []OrderLineItem `gorm:"foreignKey:OrderID;references:ID"`
}
