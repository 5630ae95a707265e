package catalog

import (
	"context"

	"github.com/breezepoint/breezepoint-backend/internal/fulfillment"
	"github.com/breezepoint/breezepoint-backend/internal/repo"
	"github.com/breezepoint/breezepoint-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Reader supplies catalog snapshots to the fulfillment flow.
type Reader interface {
	ListActiveByProductIDs(ctx context.Context, productIDs []string) (fulfillment.CatalogByProduct, error)
}

// Repository reads catalog listings.
type Repository struct {
	repo.Base
}

// NewRepository binds a GORM DB to catalog reads.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// ListActiveByProductIDs returns the active listings of active suppliers for
// the given products, grouped by product id.
func (r *Repository) ListActiveByProductIDs(ctx context.Context, productIDs []string) (fulfillment.CatalogByProduct, error) {
	catalog := fulfillment.CatalogByProduct{}
	ids := dedupe(productIDs)
	if len(ids) == 0 {
		return catalog, nil
	}

	var rows []models.CatalogListing
	err := r.DB(ctx).
		Table("catalog_listings").
		Select("catalog_listings.*").
		Joins("JOIN suppliers ON suppliers.id = catalog_listings.supplier_id").
		Where("catalog_listings.product_id IN ?", ids).
		Where("catalog_listings.active = ?", true).
		Where("suppliers.active = ?", true).
		Order("catalog_listings.created_at ASC").
		Order("catalog_listings.id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		catalog[row.ProductID] = append(catalog[row.ProductID], toListing(row))
	}
	return catalog, nil
}

func toListing(row models.CatalogListing) fulfillment.CatalogListing {
	catalogItemID := row.ID.String()
	var regions []string
	if len(row.DeliveryRegions) > 0 {
		regions = append(regions, row.DeliveryRegions...)
	}
	return fulfillment.CatalogListing{
		SupplierID:      row.SupplierID.String(),
		ProductID:       row.ProductID,
		StockQuantity:   row.StockQuantity,
		LeadTimeDays:    row.LeadTimeDays,
		DeliveryRegions: regions,
		Notes:           row.Notes,
		CatalogItemID:   &catalogItemID,
	}
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
