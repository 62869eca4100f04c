package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/trungvq/bida-pos/internal/model"
)

// ErrOrderNotFound is returned when an order lookup fails.
var ErrOrderNotFound = errors.New("order not found")

// ErrOrderPaid is returned when a mutation targets an order that has
// already been finalized. Paid orders and their bookings are frozen
// history; corrections go through ReplaceItems, which re-totals
// without touching paid_at.
var ErrOrderPaid = errors.New("order already paid")

// OrderRepo provides access to orders and their line items. Line sets
// are always replaced wholesale inside a transaction; there is no
// partial line update anywhere.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo constructs an OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderColumns = `id, customer_name, phone_number, total_amount, paid_at, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*model.Order, error) {
	var o model.Order
	var name, phone sql.NullString
	var paid sql.NullTime
	if err := row.Scan(&o.ID, &name, &phone, &o.TotalAmount, &paid, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	if name.Valid {
		o.CustomerName = &name.String
	}
	if phone.Valid {
		o.PhoneNumber = &phone.String
	}
	if paid.Valid {
		t := paid.Time
		o.PaidAt = &t
	}
	o.OrderItems = []model.OrderItem{}
	return &o, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// loadOrdersByIDs fetches orders and their lines for the given ids in
// two queries and returns them keyed by order id. Shared by the order
// and booking repositories when assembling display payloads.
func loadOrdersByIDs(ctx context.Context, q querier, ids []uint64) (map[uint64]*model.Order, error) {
	if len(ids) == 0 {
		return map[uint64]*model.Order{}, nil
	}
	placeholders := make([]string, 0, len(ids))
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	in := strings.Join(placeholders, ",")

	rows, err := q.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id IN (`+in+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uint64]*model.Order, len(ids))
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out[o.ID] = o
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lrows, err := q.QueryContext(ctx,
		`SELECT id, order_id, item_id, name, price, quantity, total_amount
		 FROM order_items WHERE order_id IN (`+in+`) ORDER BY order_id, id`, args...)
	if err != nil {
		return nil, err
	}
	defer lrows.Close()
	for lrows.Next() {
		var li model.OrderItem
		if err := lrows.Scan(&li.ID, &li.OrderID, &li.ItemID, &li.Name, &li.Price, &li.Quantity, &li.TotalAmount); err != nil {
			return nil, err
		}
		if o, ok := out[li.OrderID]; ok {
			o.OrderItems = append(o.OrderItems, li)
		}
	}
	return out, lrows.Err()
}

// FindByID returns an order with its lines and, when one exists, its
// booking. ErrOrderNotFound is returned when no row exists.
func (r *OrderRepo) FindByID(ctx context.Context, id uint64) (*model.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	lrows, err := r.db.QueryContext(ctx,
		`SELECT id, order_id, item_id, name, price, quantity, total_amount
		 FROM order_items WHERE order_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer lrows.Close()
	for lrows.Next() {
		var li model.OrderItem
		if err := lrows.Scan(&li.ID, &li.OrderID, &li.ItemID, &li.Name, &li.Price, &li.Quantity, &li.TotalAmount); err != nil {
			return nil, err
		}
		o.OrderItems = append(o.OrderItems, li)
	}
	if err := lrows.Err(); err != nil {
		return nil, err
	}

	brow := r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE order_id = ?`, id)
	b, err := scanBooking(brow)
	switch {
	case err == nil:
		o.Booking = b
	case errors.Is(err, sql.ErrNoRows):
		// counter sale, no booking
	default:
		return nil, err
	}
	return o, nil
}

func insertLinesTx(ctx context.Context, tx *sql.Tx, orderID uint64, lines []model.OrderItem) error {
	if len(lines) == 0 {
		return nil
	}
	q := `INSERT INTO order_items (order_id, item_id, name, price, quantity, total_amount) VALUES `
	args := make([]interface{}, 0, len(lines)*6)
	for i, li := range lines {
		if i > 0 {
			q += ","
		}
		q += "(?, ?, ?, ?, ?, ?)"
		args = append(args, orderID, li.ItemID, li.Name, li.Price, li.Quantity, li.TotalAmount)
	}
	_, err := tx.ExecContext(ctx, q, args...)
	return err
}

// ReplaceItems swaps an order's whole line set for the given freshly
// snapshotted lines and rewrites the customer fields and total, all in
// one transaction so no reader observes a half-replaced bill. The
// caller supplies the recomputed total. ErrOrderNotFound is returned
// when the order does not exist.
func (r *OrderRepo) ReplaceItems(ctx context.Context, orderID uint64, customerName, phoneNumber *string, lines []model.OrderItem, total int64) (*model.Order, error) {
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

	res, err := tx.ExecContext(ctx,
		`UPDATE orders SET customer_name = ?, phone_number = ?, total_amount = ? WHERE id = ?`,
		customerName, phoneNumber, total, orderID)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE id = ?`, orderID).Scan(&exists); err != nil {
			return nil, err
		}
		if exists == 0 {
			return nil, ErrOrderNotFound
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, orderID); err != nil {
		return nil, err
	}
	if err := insertLinesTx(ctx, tx, orderID, lines); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return r.FindByID(ctx, orderID)
}

// CreateDirect persists a counter sale: a new order with its lines,
// total and paid_at written together in one transaction. Counter
// sales are paid the moment they are created.
func (r *OrderRepo) CreateDirect(ctx context.Context, customerName, phoneNumber *string, lines []model.OrderItem, total int64, paidAt time.Time) (*model.Order, error) {
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

	res, err := tx.ExecContext(ctx,
		`INSERT INTO orders (customer_name, phone_number, total_amount, paid_at) VALUES (?, ?, ?, ?)`,
		customerName, phoneNumber, total, paidAt.UTC())
	if err != nil {
		return nil, err
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	if err := insertLinesTx(ctx, tx, uint64(orderID), lines); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return r.FindByID(ctx, uint64(orderID))
}

// FinalizeCheckout closes a booking and marks its order paid in one
// transaction: the booking's end_time and time charge are written once
// and the order receives its final total and paid_at. Guards on
// end_time IS NULL and paid_at IS NULL make the operation
// write-once — a second checkout finds zero matching rows and fails
// with ErrOrderPaid, leaving everything untouched.
func (r *OrderRepo) FinalizeCheckout(ctx context.Context, orderID uint64, end time.Time, charge, total int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE bookings SET end_time = ?, total_amount = ? WHERE order_id = ? AND end_time IS NULL`,
		end.UTC(), charge, orderID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrOrderPaid
	}

	res, err = tx.ExecContext(ctx,
		`UPDATE orders SET total_amount = ?, paid_at = ? WHERE id = ? AND paid_at IS NULL`,
		total, end.UTC(), orderID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrOrderPaid
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// MarkPaid finalizes an order that has no booking (the counter-sale
// checkout path). The paid_at IS NULL guard keeps it write-once.
func (r *OrderRepo) MarkPaid(ctx context.Context, orderID uint64, paidAt time.Time, total int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET total_amount = ?, paid_at = ? WHERE id = ? AND paid_at IS NULL`,
		total, paidAt.UTC(), orderID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrOrderPaid
	}
	return nil
}

// ListPaid returns one page of finalized orders, newest paid first,
// with bookings and lines populated. hasMore reports whether another
// page exists after this one.
func (r *OrderRepo) ListPaid(ctx context.Context, page, pageSize int) ([]model.Order, bool, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE paid_at IS NOT NULL
		 ORDER BY paid_at DESC LIMIT ? OFFSET ?`,
		pageSize, page*pageSize)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	orders := make([]model.Order, 0, pageSize)
	ids := make([]uint64, 0, pageSize)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, false, err
		}
		orders = append(orders, *o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	if len(ids) > 0 {
		full, err := loadOrdersByIDs(ctx, r.db, ids)
		if err != nil {
			return nil, false, err
		}
		placeholders := make([]string, 0, len(ids))
		args := make([]interface{}, 0, len(ids))
		for _, id := range ids {
			placeholders = append(placeholders, "?")
			args = append(args, id)
		}
		brows, err := r.db.QueryContext(ctx,
			`SELECT `+bookingColumns+` FROM bookings WHERE order_id IN (`+strings.Join(placeholders, ",")+`)`, args...)
		if err != nil {
			return nil, false, err
		}
		defer brows.Close()
		byOrder := make(map[uint64]*model.Booking)
		for brows.Next() {
			b, err := scanBooking(brows)
			if err != nil {
				return nil, false, err
			}
			byOrder[b.OrderID] = b
		}
		if err := brows.Err(); err != nil {
			return nil, false, err
		}
		for i := range orders {
			if o, ok := full[orders[i].ID]; ok {
				orders[i].OrderItems = o.OrderItems
			}
			orders[i].Booking = byOrder[orders[i].ID]
		}
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE paid_at IS NOT NULL`).Scan(&total); err != nil {
		return nil, false, err
	}
	hasMore := (page+1)*pageSize < total
	return orders, hasMore, nil
}
