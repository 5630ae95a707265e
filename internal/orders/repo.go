package orders

import (
	"context"
	"errors"
	"time"

	"github.com/breezepoint/breezepoint-backend/internal/repo"
	"github.com/breezepoint/breezepoint-backend/pkg/db/models"
	"github.com/breezepoint/breezepoint-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActiveAssignmentIndex is the partial unique index allowing one active
// assignment per order.
const ActiveAssignmentIndex = "ux_supplier_assignments_active_order"

// ErrStatusChanged is returned when an assignment moved away from the expected
// status before the update landed.
var ErrStatusChanged = errors.New("assignment status changed concurrently")

const defaultPendingScanLimit = 100

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Base.WithTx(tx)}
}

func withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC").Order("id ASC")
	})
}

func (r *repository) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return repo.First[models.Order](ctx, r.Base, withItems, repo.Where("id = ?", orderID))
}

func (r *repository) CreateAssignment(ctx context.Context, assignment *models.SupplierAssignment) (*models.SupplierAssignment, error) {
	if assignment.ID == uuid.Nil {
		assignment.ID = uuid.New()
	}
	if err := r.DB(ctx).Create(assignment).Error; err != nil {
		return nil, err
	}
	return assignment, nil
}

func (r *repository) FindAssignment(ctx context.Context, assignmentID uuid.UUID) (*models.SupplierAssignment, error) {
	return repo.First[models.SupplierAssignment](ctx, r.Base, repo.Where("id = ?", assignmentID))
}

// FindActiveAssignment returns the pending or accepted assignment holding
// the order. The partial unique index guarantees at most one.
func (r *repository) FindActiveAssignment(ctx context.Context, orderID uuid.UUID) (*models.SupplierAssignment, error) {
	return repo.First[models.SupplierAssignment](ctx, r.Base,
		repo.Where("order_id = ? AND status IN ?", orderID, enums.ActiveAssignmentStatuses),
		repo.OrderBy("assigned_at DESC"),
	)
}

// ListAssignments returns the order's assignment history, newest first.
func (r *repository) ListAssignments(ctx context.Context, orderID uuid.UUID) ([]models.SupplierAssignment, error) {
	return repo.Find[models.SupplierAssignment](ctx, r.Base,
		repo.Where("order_id = ?", orderID),
		repo.OrderBy("assigned_at DESC", "id ASC"),
	)
}

// UpdateAssignmentStatus is a compare-and-set on status. ErrStatusChanged
// means another writer moved the row first.
func (r *repository) UpdateAssignmentStatus(ctx context.Context, assignmentID uuid.UUID, from, to enums.AssignmentStatus, at time.Time) error {
	res := r.DB(ctx).
		Model(&models.SupplierAssignment{}).
		Where("id = ? AND status = ?", assignmentID, from).
		Updates(map[string]any{
			"status":            to,
			"status_changed_at": at,
			"updated_at":        at,
		})
	switch {
	case res.Error != nil:
		return res.Error
	case res.RowsAffected == 0:
		return ErrStatusChanged
	}
	return nil
}

// FindPendingAssignmentsBefore feeds the stale assignment job, oldest first.
func (r *repository) FindPendingAssignmentsBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.SupplierAssignment, error) {
	if limit <= 0 {
		limit = defaultPendingScanLimit
	}
	return repo.Find[models.SupplierAssignment](ctx, r.Base,
		repo.Where("status = ? AND assigned_at < ?", enums.AssignmentStatusPending, cutoff),
		repo.OrderBy("assigned_at ASC"),
		func(db *gorm.DB) *gorm.DB { return db.Limit(limit) },
	)
}
