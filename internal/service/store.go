package service

import (
	"context"
	"time"

	"github.com/trungvq/bida-pos/internal/model"
)

// The store interfaces are the persistence boundary of the core. The
// MySQL repositories satisfy them in production; tests substitute
// in-memory fakes. Multi-write operations (CreateWithOrder,
// ReplaceItems, CreateDirect, FinalizeCheckout) are atomic inside the
// store so a crash or concurrent read never observes half of one.

// TableStore persists billiard tables.
type TableStore interface {
	Create(ctx context.Context, t *model.Table) error
	FindByID(ctx context.Context, id uint64) (*model.Table, error)
	FindByName(ctx context.Context, name string) (*model.Table, error)
	ListAll(ctx context.Context) ([]model.Table, error)
	Update(ctx context.Context, t *model.Table) error
	Delete(ctx context.Context, id uint64) error
}

// ItemStore persists the sellable catalog.
type ItemStore interface {
	Create(ctx context.Context, it *model.Item) error
	FindByID(ctx context.Context, id uint64) (*model.Item, error)
	FindByName(ctx context.Context, name string) (*model.Item, error)
	ListAll(ctx context.Context) ([]model.Item, error)
	ListByIDs(ctx context.Context, ids []uint64) ([]model.Item, error)
	Update(ctx context.Context, it *model.Item) error
	Delete(ctx context.Context, id uint64) error
}

// BookingStore persists table occupations and their paired orders.
type BookingStore interface {
	// CreateWithOrder atomically creates an empty unpaid order and an
	// open booking snapshotting the table's name and rate. It returns
	// repository.ErrTableOccupied when the table already has an open
	// booking, enforced by the storage layer's unique key.
	CreateWithOrder(ctx context.Context, table *model.Table, start time.Time) (*model.Booking, error)
	FindOpenByTableID(ctx context.Context, tableID uint64) (*model.Booking, error)
	FindByOrderID(ctx context.Context, orderID uint64) (*model.Booking, error)
	ListOpen(ctx context.Context) ([]model.Booking, error)
}

// OrderStore persists bills and their line sets.
type OrderStore interface {
	FindByID(ctx context.Context, id uint64) (*model.Order, error)
	// ReplaceItems swaps the whole line set and rewrites customer
	// fields and total in one transaction.
	ReplaceItems(ctx context.Context, orderID uint64, customerName, phoneNumber *string, lines []model.OrderItem, total int64) (*model.Order, error)
	// CreateDirect persists a counter sale, paid at creation.
	CreateDirect(ctx context.Context, customerName, phoneNumber *string, lines []model.OrderItem, total int64, paidAt time.Time) (*model.Order, error)
	// FinalizeCheckout closes the order's booking and marks the order
	// paid as one write-once transaction.
	FinalizeCheckout(ctx context.Context, orderID uint64, end time.Time, charge, total int64) error
	// MarkPaid finalizes an order that has no booking.
	MarkPaid(ctx context.Context, orderID uint64, paidAt time.Time, total int64) error
	ListPaid(ctx context.Context, page, pageSize int) ([]model.Order, bool, error)
}
