package fulfillment

import "github.com/shopspring/decimal"

// OrderLineItem is one product line of the order being matched.
type OrderLineItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

// CatalogListing is a supplier's offer for one product at snapshot time.
type CatalogListing struct {
	SupplierID      string   `json:"supplier_id"`
	ProductID       string   `json:"product_id"`
	StockQuantity   int      `json:"stock_quantity"`
	LeadTimeDays    *int     `json:"lead_time_days,omitempty"`
	DeliveryRegions []string `json:"delivery_regions,omitempty"`
	Notes           *string  `json:"notes,omitempty"`
	CatalogItemID   *string  `json:"catalog_item_id,omitempty"`
}

// CatalogByProduct holds the active listings for each product id in an order.
type CatalogByProduct map[string][]CatalogListing

// MatchedItem is an order line a candidate supplier can source.
type MatchedItem struct {
	ProductID     string  `json:"product_id"`
	Quantity      int     `json:"quantity"`
	CatalogItemID *string `json:"catalog_item_id,omitempty"`
}

// FulfillmentCandidate summarises how well one supplier can fulfill an order.
// MinLeadTime carries the slowest matched listing's lead time.
type FulfillmentCandidate struct {
	SupplierID        string          `json:"supplier_id"`
	SupplierName      string          `json:"supplier_name"`
	Items             []MatchedItem   `json:"items"`
	CoverageCount     int             `json:"coverage_count"`
	OrderItemCount    int             `json:"order_item_count"`
	FullCoverage      bool            `json:"full_coverage"`
	CoverageRatio     decimal.Decimal `json:"coverage_ratio"`
	InsufficientStock bool            `json:"insufficient_stock"`
	ShortItems        []string        `json:"short_items"`
	MinLeadTime       *int            `json:"min_lead_time"`
	CoverageRegions   []string        `json:"coverage_regions"`
	Notes             *string         `json:"notes,omitempty"`
}

// AssignmentInput is the validated selection handed to persistence.
type AssignmentInput struct {
	SupplierID   string        `json:"supplier_id"`
	SupplierName string        `json:"supplier_name"`
	Items        []MatchedItem `json:"items"`
	Notes        *string       `json:"notes,omitempty"`
}
