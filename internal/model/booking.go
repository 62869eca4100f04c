package model

import "time"

// Booking records one physical occupation of a table from start to
// end. TableName and HourlyRate are denormalized snapshots taken when
// the booking is created, so renaming a table or changing its rate
// never rewrites an in-progress or historical bill.
//
// A booking is open while EndTime is nil. The bookings table enforces
// at most one open booking per table via a generated-column unique key
// (see schema.sql); rows are append-only and a booking is mutated
// exactly once, at checkout, to set EndTime and TotalAmount.
//
// Fields:
//  ID          – primary key identifier.
//  OrderID     – the bill this booking belongs to (exactly one).
//  TableID     – the occupied table.
//  TableName   – snapshot of the table name at booking time.
//  HourlyRate  – snapshot of the hourly rate at booking time.
//  StartTime   – when play started.
//  EndTime     – when play ended; nil while the booking is open.
//  TotalAmount – the time charge, written once at checkout.
//  CreatedAt   – creation timestamp.
type Booking struct {
	ID          uint64     `json:"id"`           // bookings.id
	OrderID     uint64     `json:"order_id"`     // bookings.order_id
	TableID     uint64     `json:"table_id"`     // bookings.table_id
	TableName   string     `json:"table_name"`   // bookings.table_name
	HourlyRate  int64      `json:"hourly_rate"`  // bookings.hourly_rate
	StartTime   time.Time  `json:"start_time"`   // bookings.start_time
	EndTime     *time.Time `json:"end_time"`     // bookings.end_time (nullable)
	TotalAmount int64      `json:"total_amount"` // bookings.total_amount
	CreatedAt   time.Time  `json:"created_at"`
	Order       *Order     `json:"order,omitempty"` // populated on reads that join the bill
}

// Open reports whether the booking is still occupying its table.
func (b *Booking) Open() bool { return b.EndTime == nil }
