package fulfillment

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

const coverageRatioPlaces = 4

type candidateBuilder struct {
	supplierID        string
	items             []MatchedItem
	products          map[string]struct{}
	insufficientStock bool
	shortItems        []string
	leadTime          *int
	regions           []string
	regionSeen        map[string]struct{}
	notes             *string
}

func newCandidateBuilder(supplierID string) *candidateBuilder {
	return &candidateBuilder{
		supplierID: supplierID,
		products:   map[string]struct{}{},
		regionSeen: map[string]struct{}{},
	}
}

func (b *candidateBuilder) add(item OrderLineItem, listing CatalogListing) {
	if _, ok := b.products[item.ProductID]; ok {
		return
	}
	b.products[item.ProductID] = struct{}{}

	b.items = append(b.items, MatchedItem{
		ProductID:     item.ProductID,
		Quantity:      item.Quantity,
		CatalogItemID: cloneString(listing.CatalogItemID),
	})

	for _, region := range listing.DeliveryRegions {
		if _, ok := b.regionSeen[region]; ok {
			continue
		}
		b.regionSeen[region] = struct{}{}
		b.regions = append(b.regions, region)
	}

	if listing.Notes != nil {
		b.notes = cloneString(listing.Notes)
	}

	if listing.StockQuantity < item.Quantity {
		b.insufficientStock = true
		b.shortItems = append(b.shortItems, item.ProductID)
	}

	if listing.LeadTimeDays != nil {
		if b.leadTime == nil || *listing.LeadTimeDays > *b.leadTime {
			days := *listing.LeadTimeDays
			b.leadTime = &days
		}
	}
}

func (b *candidateBuilder) build(orderItemCount int) FulfillmentCandidate {
	coverage := len(b.items)
	ratio := decimal.Zero
	if orderItemCount > 0 {
		ratio = decimal.NewFromInt(int64(coverage)).
			Div(decimal.NewFromInt(int64(orderItemCount))).
			Round(coverageRatioPlaces)
	}
	regions := b.regions
	if regions == nil {
		regions = []string{}
	}
	shortItems := b.shortItems
	if shortItems == nil {
		shortItems = []string{}
	}
	return FulfillmentCandidate{
		SupplierID:        b.supplierID,
		SupplierName:      b.supplierID,
		Items:             b.items,
		CoverageCount:     coverage,
		OrderItemCount:    orderItemCount,
		FullCoverage:      coverage == orderItemCount,
		CoverageRatio:     ratio,
		InsufficientStock: b.insufficientStock,
		ShortItems:        shortItems,
		MinLeadTime:       b.leadTime,
		CoverageRegions:   regions,
		Notes:             b.notes,
	}
}

// BuildCandidates aggregates catalog listings into one candidate per supplier
// that lists at least one of the order's products. Candidates come back in the
// order their suppliers were first seen. Lines without a product id are skipped.
func BuildCandidates(orderItems []OrderLineItem, catalog CatalogByProduct) []FulfillmentCandidate {
	builders := map[string]*candidateBuilder{}
	var order []string

	for _, item := range orderItems {
		if strings.TrimSpace(item.ProductID) == "" {
			continue
		}
		for _, listing := range catalog[item.ProductID] {
			if listing.SupplierID == "" {
				continue
			}
			b, ok := builders[listing.SupplierID]
			if !ok {
				b = newCandidateBuilder(listing.SupplierID)
				builders[listing.SupplierID] = b
				order = append(order, listing.SupplierID)
			}
			b.add(item, listing)
		}
	}

	candidates := make([]FulfillmentCandidate, 0, len(order))
	for _, supplierID := range order {
		candidates = append(candidates, builders[supplierID].build(len(orderItems)))
	}
	return candidates
}

// RankCandidates returns a new slice ordered by full coverage, then sufficient
// stock, then lead time ascending. Unknown lead time ranks as zero. Ties keep
// their input order.
func RankCandidates(candidates []FulfillmentCandidate) []FulfillmentCandidate {
	ranked := make([]FulfillmentCandidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.FullCoverage != b.FullCoverage {
			return a.FullCoverage
		}
		if a.InsufficientStock != b.InsufficientStock {
			return !a.InsufficientStock
		}
		return leadTimeOrZero(a.MinLeadTime) < leadTimeOrZero(b.MinLeadTime)
	})
	return ranked
}

// SelectAndValidate materialises the chosen supplier's candidate into an
// AssignmentInput. It fails with ErrCandidateNotFound when the supplier is not
// in the candidate set.
func SelectAndValidate(candidates []FulfillmentCandidate, supplierID string, notes string) (AssignmentInput, error) {
	for _, candidate := range candidates {
		if candidate.SupplierID != supplierID {
			continue
		}
		input := AssignmentInput{
			SupplierID:   candidate.SupplierID,
			SupplierName: candidate.SupplierName,
			Items:        copyItems(candidate.Items),
		}
		if trimmed := strings.TrimSpace(notes); trimmed != "" {
			input.Notes = &trimmed
		}
		return input, nil
	}
	return AssignmentInput{}, candidateNotFound(supplierID)
}

// ApplySupplierNames sets display names on candidates in place. Suppliers
// without a resolved name keep their id as the name.
func ApplySupplierNames(candidates []FulfillmentCandidate, names map[string]string) {
	for i := range candidates {
		if name := strings.TrimSpace(names[candidates[i].SupplierID]); name != "" {
			candidates[i].SupplierName = name
		}
	}
}

// FindCandidate returns the candidate for supplierID, if present.
func FindCandidate(candidates []FulfillmentCandidate, supplierID string) (FulfillmentCandidate, bool) {
	for _, candidate := range candidates {
		if candidate.SupplierID == supplierID {
			return candidate, true
		}
	}
	return FulfillmentCandidate{}, false
}

func leadTimeOrZero(days *int) int {
	if days == nil {
		return 0
	}
	return *days
}

func copyItems(items []MatchedItem) []MatchedItem {
	out := make([]MatchedItem, len(items))
	for i, item := range items {
		out[i] = MatchedItem{
			ProductID:     item.ProductID,
			Quantity:      item.Quantity,
			CatalogItemID: cloneString(item.CatalogItemID),
		}
	}
	return out
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}
