package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/trungvq/bida-pos/internal/model"
)

// ErrBookingNotFound is returned when a booking lookup fails.
var ErrBookingNotFound = errors.New("booking not found")

// BookingRepo provides access to bookings and their paired orders.
// Bookings are append-only: rows are created when a table is booked
// and mutated exactly once at checkout (see OrderRepo.FinalizeCheckout).
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo constructs a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, order_id, table_id, table_name, hourly_rate, start_time, end_time, total_amount, created_at`

func scanBooking(row interface{ Scan(...any) error }) (*model.Booking, error) {
	var b model.Booking
	var end sql.NullTime
	if err := row.Scan(&b.ID, &b.OrderID, &b.TableID, &b.TableName, &b.HourlyRate,
		&b.StartTime, &end, &b.TotalAmount, &b.CreatedAt); err != nil {
		return nil, err
	}
	if end.Valid {
		t := end.Time
		b.EndTime = &t
	}
	return &b, nil
}

// CreateWithOrder atomically creates an empty unpaid order and an open
// booking referencing it. The table's current name and hourly rate are
// snapshotted onto the booking so later table edits never reprice an
// in-progress session. When the (table_id, open_flag) unique key
// rejects the insert — the table already has an open booking —
// ErrTableOccupied is returned and nothing is persisted.
func (r *BookingRepo) CreateWithOrder(ctx context.Context, table *model.Table, start time.Time) (*model.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `INSERT INTO orders (total_amount) VALUES (0)`)
	if err != nil {
		return nil, err
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	res, err = tx.ExecContext(ctx,
		`INSERT INTO bookings (order_id, table_id, table_name, hourly_rate, start_time)
		 VALUES (?, ?, ?, ?, ?)`,
		orderID, table.ID, table.Name, table.HourlyRate, start.UTC())
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrTableOccupied
		}
		return nil, err
	}
	bookingID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	row := tx.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, bookingID)
	b, err := scanBooking(row)
	if err != nil {
		return nil, err
	}
	orow := tx.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`, orderID)
	o, err := scanOrder(orow)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	o.OrderItems = []model.OrderItem{}
	b.Order = o
	return b, nil
}

// FindOpenByTableID returns the table's open booking, or
// ErrBookingNotFound when the table is free. The open-booking unique
// key guarantees at most one row can match.
func (r *BookingRepo) FindOpenByTableID(ctx context.Context, tableID uint64) (*model.Booking, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE table_id = ? AND end_time IS NULL`, tableID)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	return b, err
}

// FindByOrderID returns the booking paired with the given order, or
// ErrBookingNotFound when the order is a counter sale without one.
func (r *BookingRepo) FindByOrderID(ctx context.Context, orderID uint64) (*model.Booking, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE order_id = ?`, orderID)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	return b, err
}

// ListOpen returns every open booking with its order and the order's
// lines populated, ordered by table id. This feeds the availability
// projection: a table is available exactly when it has no row here.
func (r *BookingRepo) ListOpen(ctx context.Context) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE end_time IS NULL ORDER BY table_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return bookings, nil
	}

	orderIDs := make([]uint64, 0, len(bookings))
	for _, b := range bookings {
		orderIDs = append(orderIDs, b.OrderID)
	}
	orders, err := loadOrdersByIDs(ctx, r.db, orderIDs)
	if err != nil {
		return nil, err
	}
	for i := range bookings {
		if o, ok := orders[bookings[i].OrderID]; ok {
			bookings[i].Order = o
		}
	}
	return bookings, nil
}
