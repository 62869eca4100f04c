// Package billing holds the pure money/time rules of the hall: how
// elapsed play time turns into a table charge and how item lines and
// the time charge fold into one invoice total. Both the live estimate
// shown while a table is occupied and the final checkout charge go
// through the same functions, so the number on screen is always the
// number on the bill.
package billing

import (
	"errors"
	"math"
	"time"
)

// ErrEndBeforeStart is returned when a charge is requested for an
// interval whose end precedes its start. Clock skew or a corrupted
// start time would otherwise produce a plausible-looking positive
// charge, so the interval is rejected outright.
var ErrEndBeforeStart = errors.New("end time precedes start time")

// RoundToThousand rounds a non-negative amount up to the next multiple
// of 1000 minor currency units. All charged amounts end in ,000.
func RoundToThousand(amount int64) int64 {
	if amount <= 0 {
		return 0
	}
	return (amount + 999) / 1000 * 1000
}

// ElapsedChargeableHours converts the interval [start, end] into
// billable hours: whole hours plus the whole-minute remainder as a
// fraction of an hour. Seconds are not billed. It fails with
// ErrEndBeforeStart when end < start.
func ElapsedChargeableHours(start, end time.Time) (float64, error) {
	if end.Before(start) {
		return 0, ErrEndBeforeStart
	}
	totalMinutes := int64(end.Sub(start).Minutes())
	hours := totalMinutes / 60
	minutes := totalMinutes % 60
	return float64(hours) + float64(minutes)/60, nil
}

// TableCharge computes the time charge for occupying a table at the
// given hourly rate between start and end: the elapsed chargeable
// hours times the rate, ceiled to a whole unit, then rounded up to the
// next thousand.
func TableCharge(hourlyRate int64, start, end time.Time) (int64, error) {
	hours, err := ElapsedChargeableHours(start, end)
	if err != nil {
		return 0, err
	}
	raw := int64(math.Ceil(hours * float64(hourlyRate)))
	return RoundToThousand(raw), nil
}

// LineTotal is the total for one bill line: snapshot unit price times
// quantity. Lines are always recomputed from these two values.
func LineTotal(price, quantity int64) int64 {
	return price * quantity
}

// ChargeKind tags how an order is settled.
type ChargeKind int

const (
	// DirectSale is a counter sale: items only, no table time.
	DirectSale ChargeKind = iota
	// TableBooking settles a booking: the time charge joins the items.
	TableBooking
)

// Charge is the optional time-charge component of an invoice total.
// Amount is meaningful only when Kind is TableBooking.
type Charge struct {
	Kind   ChargeKind
	Amount int64
}

// InvoiceTotal folds the item total and the settlement component into
// the final order total. Checkout and counter sale both go through
// here; there is no second total formula to drift from this one.
func InvoiceTotal(itemsTotal int64, charge Charge) int64 {
	if charge.Kind == TableBooking {
		return itemsTotal + charge.Amount
	}
	return itemsTotal
}
