package model

import "time"

// Order is a bill: either tied to a booking (table time + items) or a
// standalone counter sale (items only, paid at creation). While PaidAt
// is nil the order is open and its lines may be replaced wholesale;
// once PaidAt is set the order and its booking's end/charge fields are
// frozen history.
//
// TotalAmount always equals the sum of the line totals plus the linked
// booking's time charge (zero when there is none).
type Order struct {
	ID           uint64      `json:"id"`            // orders.id
	CustomerName *string     `json:"customer_name"` // orders.customer_name (nullable)
	PhoneNumber  *string     `json:"phone_number"`  // orders.phone_number (nullable)
	TotalAmount  int64       `json:"total_amount"`  // orders.total_amount
	PaidAt       *time.Time  `json:"paid_at"`       // orders.paid_at (nullable)
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	Booking      *Booking    `json:"booking,omitempty"` // nil for counter sales
	OrderItems   []OrderItem `json:"order_items"`
}

// Paid reports whether the order has been finalized.
func (o *Order) Paid() bool { return o.PaidAt != nil }

// ItemsTotal returns the sum of the order's line totals.
func (o *Order) ItemsTotal() int64 {
	var sum int64
	for _, li := range o.OrderItems {
		sum += li.TotalAmount
	}
	return sum
}

// OrderItem is a denormalized bill line. Name and Price are snapshots
// of the catalog item at the time of sale and TotalAmount is always
// recomputed as Price × Quantity, never edited independently. Lines
// are replaced as a whole set on every order edit and become immutable
// once the parent order is paid.
type OrderItem struct {
	ID          uint64 `json:"id"`           // order_items.id
	OrderID     uint64 `json:"order_id"`     // order_items.order_id
	ItemID      uint64 `json:"item_id"`      // order_items.item_id
	Name        string `json:"name"`         // order_items.name
	Price       int64  `json:"price"`        // order_items.price
	Quantity    int64  `json:"quantity"`     // order_items.quantity
	TotalAmount int64  `json:"total_amount"` // order_items.total_amount
}
