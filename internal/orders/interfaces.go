package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/breezepoint/breezepoint-backend/pkg/db/models"
	"github.com/breezepoint/breezepoint-backend/pkg/enums"
)

// OrderReader loads orders together with their line items.
type OrderReader interface {
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
}

// AssignmentStore persists supplier assignments. Lookups return
// gorm.ErrRecordNotFound when nothing matches.
type AssignmentStore interface {
	CreateAssignment(ctx context.Context, assignment *models.SupplierAssignment) (*models.SupplierAssignment, error)
	FindAssignment(ctx context.Context, assignmentID uuid.UUID) (*models.SupplierAssignment, error)
	FindActiveAssignment(ctx context.Context, orderID uuid.UUID) (*models.SupplierAssignment, error)
	ListAssignments(ctx context.Context, orderID uuid.UUID) ([]models.SupplierAssignment, error)
	UpdateAssignmentStatus(ctx context.Context, assignmentID uuid.UUID, from, to enums.AssignmentStatus, at time.Time) error
	FindPendingAssignmentsBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.SupplierAssignment, error)
}

// Repository is the transaction-rebindable union used by services and jobs.
type Repository interface {
	OrderReader
	AssignmentStore
	WithTx(tx *gorm.DB) Repository
}
