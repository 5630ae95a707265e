package suppliers

import (
	"context"

	"github.com/breezepoint/breezepoint-backend/internal/repo"
	"github.com/breezepoint/breezepoint-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Directory resolves supplier display names.
type Directory interface {
	DisplayNames(ctx context.Context, ids []string) (map[string]string, error)
}

// Repository handles supplier lookups.
type Repository struct {
	repo.Base
}

// NewRepository binds a GORM DB to supplier lookups.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindByID loads a supplier by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	return repo.First[models.Supplier](ctx, r.Base, repo.Where("id = ?", id))
}

// DisplayNames maps supplier ids to display names. Ids that are not valid
// UUIDs or have no row are absent from the result.
func (r *Repository) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := map[string]string{}
	parsed := make([]uuid.UUID, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		parsed = append(parsed, id)
	}
	if len(parsed) == 0 {
		return names, nil
	}

	var rows []models.Supplier
	if err := r.DB(ctx).
		Select("id", "display_name").
		Where("id IN ?", parsed).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		names[row.ID.String()] = row.DisplayName
	}
	return names, nil
}
