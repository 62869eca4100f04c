package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/trungvq/bida-pos/internal/model"
	"github.com/trungvq/bida-pos/internal/repository"
)

// memStore is an in-memory stand-in for the MySQL repositories. It
// implements all four store interfaces and mirrors their semantics:
// sentinel errors, one-open-booking-per-table, write-once checkout.
type memStore struct {
	mu sync.Mutex

	tables   map[uint64]*model.Table
	items    map[uint64]*model.Item
	bookings map[uint64]*model.Booking
	orders   map[uint64]*model.Order
	lines    map[uint64][]model.OrderItem // orderID -> lines

	nextID uint64
}

func newMemStore() *memStore {
	return &memStore{
		tables:   make(map[uint64]*model.Table),
		items:    make(map[uint64]*model.Item),
		bookings: make(map[uint64]*model.Booking),
		orders:   make(map[uint64]*model.Order),
		lines:    make(map[uint64][]model.OrderItem),
	}
}

func (m *memStore) id() uint64 {
	m.nextID++
	return m.nextID
}

// --- TableStore ---

func (m *memStore) Create(ctx context.Context, t *model.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.tables {
		if existing.Name == t.Name {
			return repository.ErrNameTaken
		}
	}
	t.ID = m.id()
	cp := *t
	m.tables[t.ID] = &cp
	return nil
}

func (m *memStore) FindByID(ctx context.Context, id uint64) (*model.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, found := m.tables[id]
	if !found {
		return nil, repository.ErrTableNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memStore) FindByName(ctx context.Context, name string) (*model.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tables {
		if t.Name == name {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrTableNotFound
}

func (m *memStore) ListAll(ctx context.Context) ([]model.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Table, 0, len(m.tables))
	for _, t := range m.tables {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) Update(ctx context.Context, t *model.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, found := m.tables[t.ID]; !found {
		return repository.ErrTableNotFound
	}
	for id, existing := range m.tables {
		if id != t.ID && existing.Name == t.Name {
			return repository.ErrNameTaken
		}
	}
	cp := *t
	m.tables[t.ID] = &cp
	return nil
}

func (m *memStore) Delete(ctx context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, found := m.tables[id]; !found {
		return repository.ErrTableNotFound
	}
	for _, b := range m.bookings {
		if b.TableID == id {
			return repository.ErrConflict
		}
	}
	delete(m.tables, id)
	return nil
}

// --- ItemStore ---
// Method names collide with TableStore's, so memStore is split through
// thin views that forward to the shared state.

type itemStoreView struct{ *memStore }

func (v itemStoreView) Create(ctx context.Context, it *model.Item) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, existing := range v.items {
		if existing.Name == it.Name {
			return repository.ErrNameTaken
		}
	}
	it.ID = v.id()
	cp := *it
	v.items[it.ID] = &cp
	return nil
}

func (v itemStoreView) FindByID(ctx context.Context, id uint64) (*model.Item, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	it, found := v.items[id]
	if !found {
		return nil, repository.ErrItemNotFound
	}
	cp := *it
	return &cp, nil
}

func (v itemStoreView) FindByName(ctx context.Context, name string) (*model.Item, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, it := range v.items {
		if it.Name == name {
			cp := *it
			return &cp, nil
		}
	}
	return nil, repository.ErrItemNotFound
}

func (v itemStoreView) ListAll(ctx context.Context) ([]model.Item, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]model.Item, 0, len(v.items))
	for _, it := range v.items {
		out = append(out, *it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (v itemStoreView) ListByIDs(ctx context.Context, ids []uint64) ([]model.Item, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	seen := make(map[uint64]bool, len(ids))
	out := make([]model.Item, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if it, found := v.items[id]; found {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (v itemStoreView) Update(ctx context.Context, it *model.Item) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, found := v.items[it.ID]; !found {
		return repository.ErrItemNotFound
	}
	for id, existing := range v.items {
		if id != it.ID && existing.Name == it.Name {
			return repository.ErrNameTaken
		}
	}
	cp := *it
	v.items[it.ID] = &cp
	return nil
}

func (v itemStoreView) Delete(ctx context.Context, id uint64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, found := v.items[id]; !found {
		return repository.ErrItemNotFound
	}
	delete(v.items, id)
	return nil
}

// --- BookingStore ---

type bookingStoreView struct{ *memStore }

func (v bookingStoreView) CreateWithOrder(ctx context.Context, table *model.Table, start time.Time) (*model.Booking, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, b := range v.bookings {
		if b.TableID == table.ID && b.EndTime == nil {
			return nil, repository.ErrTableOccupied
		}
	}
	now := start
	o := &model.Order{ID: v.id(), CreatedAt: now, UpdatedAt: now}
	v.orders[o.ID] = o
	b := &model.Booking{
		ID:         v.id(),
		OrderID:    o.ID,
		TableID:    table.ID,
		TableName:  table.Name,
		HourlyRate: table.HourlyRate,
		StartTime:  start,
		CreatedAt:  now,
	}
	v.bookings[b.ID] = b
	out := *b
	oc := *o
	oc.OrderItems = []model.OrderItem{}
	out.Order = &oc
	return &out, nil
}

func (v bookingStoreView) findOpenByTableLocked(tableID uint64) *model.Booking {
	for _, b := range v.bookings {
		if b.TableID == tableID && b.EndTime == nil {
			return b
		}
	}
	return nil
}

func (v bookingStoreView) FindOpenByTableID(ctx context.Context, tableID uint64) (*model.Booking, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	b := v.findOpenByTableLocked(tableID)
	if b == nil {
		return nil, repository.ErrBookingNotFound
	}
	out := *b
	out.Order = v.orderSnapshotLocked(b.OrderID)
	return &out, nil
}

func (v bookingStoreView) FindByOrderID(ctx context.Context, orderID uint64) (*model.Booking, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, b := range v.bookings {
		if b.OrderID == orderID {
			out := *b
			return &out, nil
		}
	}
	return nil, repository.ErrBookingNotFound
}

func (v bookingStoreView) ListOpen(ctx context.Context) ([]model.Booking, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]model.Booking, 0)
	for _, b := range v.bookings {
		if b.EndTime != nil {
			continue
		}
		cp := *b
		cp.Order = v.orderSnapshotLocked(b.OrderID)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// orderSnapshotLocked returns a copy of an order with its lines but
// without its booking, matching how the repositories shape joins.
func (m *memStore) orderSnapshotLocked(orderID uint64) *model.Order {
	o, found := m.orders[orderID]
	if !found {
		return nil
	}
	cp := *o
	cp.OrderItems = append([]model.OrderItem(nil), m.lines[orderID]...)
	if cp.OrderItems == nil {
		cp.OrderItems = []model.OrderItem{}
	}
	return &cp
}

// --- OrderStore ---

type orderStoreView struct{ *memStore }

func (v orderStoreView) FindByID(ctx context.Context, id uint64) (*model.Order, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	o := v.orderSnapshotLocked(id)
	if o == nil {
		return nil, repository.ErrOrderNotFound
	}
	for _, b := range v.bookings {
		if b.OrderID == id {
			bc := *b
			o.Booking = &bc
			break
		}
	}
	return o, nil
}

func (v orderStoreView) ReplaceItems(ctx context.Context, orderID uint64, customerName, phoneNumber *string, lines []model.OrderItem, total int64) (*model.Order, error) {
	v.mu.Lock()
	o, found := v.orders[orderID]
	if !found {
		v.mu.Unlock()
		return nil, repository.ErrOrderNotFound
	}
	stored := make([]model.OrderItem, 0, len(lines))
	for _, li := range lines {
		li.ID = v.id()
		li.OrderID = orderID
		stored = append(stored, li)
	}
	v.lines[orderID] = stored
	o.CustomerName = customerName
	o.PhoneNumber = phoneNumber
	o.TotalAmount = total
	o.UpdatedAt = time.Now()
	v.mu.Unlock()
	return v.FindByID(ctx, orderID)
}

func (v orderStoreView) CreateDirect(ctx context.Context, customerName, phoneNumber *string, lines []model.OrderItem, total int64, paidAt time.Time) (*model.Order, error) {
	v.mu.Lock()
	o := &model.Order{
		ID:           v.id(),
		CustomerName: customerName,
		PhoneNumber:  phoneNumber,
		TotalAmount:  total,
		PaidAt:       &paidAt,
		CreatedAt:    paidAt,
		UpdatedAt:    paidAt,
	}
	v.orders[o.ID] = o
	stored := make([]model.OrderItem, 0, len(lines))
	for _, li := range lines {
		li.ID = v.id()
		li.OrderID = o.ID
		stored = append(stored, li)
	}
	v.lines[o.ID] = stored
	id := o.ID
	v.mu.Unlock()
	return v.FindByID(ctx, id)
}

func (v orderStoreView) FinalizeCheckout(ctx context.Context, orderID uint64, end time.Time, charge, total int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	o, found := v.orders[orderID]
	if !found {
		return repository.ErrOrderNotFound
	}
	if o.PaidAt != nil {
		return repository.ErrOrderPaid
	}
	var booking *model.Booking
	for _, b := range v.bookings {
		if b.OrderID == orderID {
			booking = b
			break
		}
	}
	if booking == nil || booking.EndTime != nil {
		return repository.ErrOrderPaid
	}
	e := end
	booking.EndTime = &e
	booking.TotalAmount = charge
	p := end
	o.PaidAt = &p
	o.TotalAmount = total
	o.UpdatedAt = end
	return nil
}

func (v orderStoreView) MarkPaid(ctx context.Context, orderID uint64, paidAt time.Time, total int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	o, found := v.orders[orderID]
	if !found {
		return repository.ErrOrderNotFound
	}
	if o.PaidAt != nil {
		return repository.ErrOrderPaid
	}
	p := paidAt
	o.PaidAt = &p
	o.TotalAmount = total
	o.UpdatedAt = paidAt
	return nil
}

func (v orderStoreView) ListPaid(ctx context.Context, page, pageSize int) ([]model.Order, bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	paid := make([]model.Order, 0)
	for id := range v.orders {
		if o := v.orderSnapshotLocked(id); o != nil && o.PaidAt != nil {
			paid = append(paid, *o)
		}
	}
	sort.Slice(paid, func(i, j int) bool {
		if paid[i].PaidAt.Equal(*paid[j].PaidAt) {
			return paid[i].ID > paid[j].ID
		}
		return paid[i].PaidAt.After(*paid[j].PaidAt)
	})
	start := page * pageSize
	if start >= len(paid) {
		return []model.Order{}, false, nil
	}
	end := start + pageSize
	if end > len(paid) {
		end = len(paid)
	}
	return paid[start:end], end < len(paid), nil
}

// --- test wiring helpers ---

type fixture struct {
	store    *memStore
	tables   *TableService
	itemsSvc *ItemService
	bookings *BookingService
	orders   *OrderService
	clock    *fakeClock
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newFixture() *fixture {
	m := newMemStore()
	clock := &fakeClock{t: time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)}
	items := itemStoreView{m}
	bookings := bookingStoreView{m}
	orders := orderStoreView{m}

	bs := NewBookingService(m, bookings, orders)
	bs.now = clock.Now
	os := NewOrderService(items, orders, bookings)
	os.now = clock.Now

	return &fixture{
		store:    m,
		tables:   NewTableService(m, bookings),
		itemsSvc: NewItemService(items),
		bookings: bs,
		orders:   os,
		clock:    clock,
	}
}

func (f *fixture) addTable(name string, rate int64) *model.Table {
	t := &model.Table{Name: name, HourlyRate: rate}
	if err := f.store.Create(context.Background(), t); err != nil {
		panic(err)
	}
	return t
}

func (f *fixture) addItem(name, category string, price int64) *model.Item {
	it := &model.Item{Name: name, Category: category, Price: price}
	if err := (itemStoreView{f.store}).Create(context.Background(), it); err != nil {
		panic(err)
	}
	return it
}
