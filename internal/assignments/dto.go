package assignments

import (
	"github.com/breezepoint/breezepoint-backend/internal/fulfillment"
	"github.com/breezepoint/breezepoint-backend/pkg/enums"
	"github.com/google/uuid"
)

// NoInventoryMessage is shown when no supplier lists any of the order's products.
const NoInventoryMessage = "no suppliers currently have inventory"

// Actor identifies the caller performing an assignment operation.
type Actor struct {
	UserID     uuid.UUID
	Role       enums.MemberRole
	SupplierID *uuid.UUID
}

// CandidateList is the ranked supplier view of one order.
type CandidateList struct {
	OrderID        uuid.UUID                          `json:"order_id"`
	OrderStatus    enums.OrderStatus                  `json:"order_status"`
	OrderItemCount int                                `json:"order_item_count"`
	Candidates     []fulfillment.FulfillmentCandidate `json:"candidates"`
	Empty          bool                               `json:"empty"`
	Message        string                             `json:"message,omitempty"`
}

// AssignInput captures an operator's supplier choice for an order.
// AllowShortfall lets the operator commit a supplier that is short on stock.
type AssignInput struct {
	OrderID        uuid.UUID
	SupplierID     uuid.UUID
	Notes          string
	AllowShortfall bool
	Actor          Actor
}

// StatusInput moves an assignment through its lifecycle.
type StatusInput struct {
	AssignmentID uuid.UUID
	Status       enums.AssignmentStatus
	Reason       string
	Actor        Actor
}
