package enums

import "slices"

// OrderStatus is the coarse order state the fulfillment flow reads.
type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "placed"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusFulfilled OrderStatus = "fulfilled"
	OrderStatusCanceled  OrderStatus = "canceled"
)

var orderStatuses = []OrderStatus{OrderStatusPlaced, OrderStatusPaid, OrderStatusFulfilled, OrderStatusCanceled}

func (s OrderStatus) String() string { return string(s) }

func (s OrderStatus) IsValid() bool { return slices.Contains(orderStatuses, s) }

// AcceptsAssignment reports whether an order in this state can be routed to a supplier.
func (s OrderStatus) AcceptsAssignment() bool {
	return s == OrderStatusPlaced || s == OrderStatusPaid
}

func ParseOrderStatus(value string) (OrderStatus, error) {
	return parse("order status", value, orderStatuses)
}
