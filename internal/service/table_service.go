package service

import (
	"context"
	"errors"
	"strings"

	"github.com/trungvq/bida-pos/internal/model"
	"github.com/trungvq/bida-pos/internal/repository"
)

// TableService serves the availability projection and the
// administrator-only table mutations. Availability is derived from
// open bookings on every call and never cached by the core; the HTTP
// layer's response cache is invalidated on each booking mutation.
type TableService struct {
	Tables   TableStore
	Bookings BookingStore
}

// NewTableService constructs a TableService. Stores must be non-nil.
func NewTableService(tables TableStore, bookings BookingStore) *TableService {
	if tables == nil || bookings == nil {
		panic("nil store passed to NewTableService")
	}
	return &TableService{Tables: tables, Bookings: bookings}
}

// TablesWithAvailability lists every table with its occupancy derived
// from open bookings: a table is available exactly when no open
// booking references it. Occupied tables carry the open booking with
// its order and lines for the dashboard.
func (s *TableService) TablesWithAvailability(ctx context.Context) Result[[]model.TableWithStatus] {
	tables, err := s.Tables.ListAll(ctx)
	if err != nil {
		return internalErr[[]model.TableWithStatus]("list tables", err)
	}
	open, err := s.Bookings.ListOpen(ctx)
	if err != nil {
		return internalErr[[]model.TableWithStatus]("list open bookings", err)
	}
	byTable := make(map[uint64]*model.Booking, len(open))
	for i := range open {
		byTable[open[i].TableID] = &open[i]
	}
	out := make([]model.TableWithStatus, 0, len(tables))
	for _, t := range tables {
		st := model.TableWithStatus{Table: t, IsAvailable: true}
		if b, occupied := byTable[t.ID]; occupied {
			st.IsAvailable = false
			st.OpenBooking = b
		}
		out = append(out, st)
	}
	return ok("tables listed", &out)
}

// GetTable returns one table with the same availability shape as the
// listing.
func (s *TableService) GetTable(ctx context.Context, id uint64) Result[model.TableWithStatus] {
	table, err := s.Tables.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTableNotFound) {
			return fail[model.TableWithStatus](KindNotFound, "table not found")
		}
		return internalErr[model.TableWithStatus]("get table", err)
	}
	st := model.TableWithStatus{Table: *table, IsAvailable: true}
	booking, err := s.Bookings.FindOpenByTableID(ctx, id)
	switch {
	case err == nil:
		st.IsAvailable = false
		st.OpenBooking = booking
	case errors.Is(err, repository.ErrBookingNotFound):
	default:
		return internalErr[model.TableWithStatus]("get table: open booking", err)
	}
	return ok("table found", &st)
}

// CreateTable adds a table. Admin only; duplicate names conflict.
func (s *TableService) CreateTable(ctx context.Context, actor Actor, name string, hourlyRate int64, description *string) Result[model.Table] {
	if !actor.IsAdmin {
		return fail[model.Table](KindUnauthorized, "administrator role required")
	}
	name = strings.TrimSpace(name)
	if name == "" || hourlyRate <= 0 {
		return fail[model.Table](KindInvalid, "name and a positive hourly rate are required")
	}
	if _, err := s.Tables.FindByName(ctx, name); err == nil {
		return fail[model.Table](KindConflict, "table already exists")
	} else if !errors.Is(err, repository.ErrTableNotFound) {
		return internalErr[model.Table]("create table: check name", err)
	}
	t := model.Table{Name: name, HourlyRate: hourlyRate, Description: description}
	if err := s.Tables.Create(ctx, &t); err != nil {
		if errors.Is(err, repository.ErrNameTaken) {
			return fail[model.Table](KindConflict, "table already exists")
		}
		return internalErr[model.Table]("create table", err)
	}
	return ok("table created", &t)
}

// UpdateTable renames a table and/or changes its hourly rate. Rate
// changes never touch open bookings: the rate was snapshotted when
// they were created.
func (s *TableService) UpdateTable(ctx context.Context, actor Actor, id uint64, name string, hourlyRate int64, description *string) Result[model.Table] {
	if !actor.IsAdmin {
		return fail[model.Table](KindUnauthorized, "administrator role required")
	}
	name = strings.TrimSpace(name)
	if name == "" || hourlyRate <= 0 {
		return fail[model.Table](KindInvalid, "name and a positive hourly rate are required")
	}
	existing, err := s.Tables.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTableNotFound) {
			return fail[model.Table](KindNotFound, "table not found")
		}
		return internalErr[model.Table]("update table: find", err)
	}
	if existing.Name != name {
		if _, err := s.Tables.FindByName(ctx, name); err == nil {
			return fail[model.Table](KindConflict, "table already exists")
		} else if !errors.Is(err, repository.ErrTableNotFound) {
			return internalErr[model.Table]("update table: check name", err)
		}
	}
	updated := model.Table{ID: id, Name: name, HourlyRate: hourlyRate, Description: description}
	if err := s.Tables.Update(ctx, &updated); err != nil {
		switch {
		case errors.Is(err, repository.ErrNameTaken):
			return fail[model.Table](KindConflict, "table already exists")
		case errors.Is(err, repository.ErrTableNotFound):
			return fail[model.Table](KindNotFound, "table not found")
		}
		return internalErr[model.Table]("update table", err)
	}
	return ok("table updated", &updated)
}

// DeleteTable removes a table that no booking, open or historical,
// references.
func (s *TableService) DeleteTable(ctx context.Context, actor Actor, id uint64) Result[model.Table] {
	if !actor.IsAdmin {
		return fail[model.Table](KindUnauthorized, "administrator role required")
	}
	if err := s.Tables.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrTableNotFound):
			return fail[model.Table](KindNotFound, "table not found")
		case errors.Is(err, repository.ErrConflict):
			return fail[model.Table](KindConflict, "table has bookings and cannot be deleted")
		}
		return internalErr[model.Table]("delete table", err)
	}
	return Result[model.Table]{Success: true, Message: "table deleted"}
}
