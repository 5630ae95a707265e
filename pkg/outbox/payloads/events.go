package payloads

import (
	"time"

	"github.com/breezepoint/breezepoint-backend/pkg/enums"
	"github.com/google/uuid"
)

// AssignedItem mirrors one committed line in an assignment event.
type AssignedItem struct {
	ProductID     string  `json:"product_id"`
	Quantity      int     `json:"quantity"`
	CatalogItemID *string `json:"catalog_item_id,omitempty"`
}

// SupplierAssignedEvent tells the supplier side an order was routed to them.
type SupplierAssignedEvent struct {
	AssignmentID      uuid.UUID      `json:"assignment_id"`
	OrderID           uuid.UUID      `json:"order_id"`
	SupplierID        uuid.UUID      `json:"supplier_id"`
	SupplierName      string         `json:"supplier_name"`
	Items             []AssignedItem `json:"items"`
	Notes             *string        `json:"notes,omitempty"`
	InsufficientStock bool           `json:"insufficient_stock"`
	AssignedAt        time.Time      `json:"assigned_at"`
}

// AssignmentStatusChangedEvent records a lifecycle move of an assignment.
// Reassigned events put the order back into matching.
type AssignmentStatusChangedEvent struct {
	AssignmentID   uuid.UUID              `json:"assignment_id"`
	OrderID        uuid.UUID              `json:"order_id"`
	SupplierID     uuid.UUID              `json:"supplier_id"`
	PreviousStatus enums.AssignmentStatus `json:"previous_status"`
	Status         enums.AssignmentStatus `json:"status"`
	Reason         string                 `json:"reason,omitempty"`
	ChangedAt      time.Time              `json:"changed_at"`
}
