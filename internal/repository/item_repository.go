package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/trungvq/bida-pos/internal/model"
)

// ErrItemNotFound is returned when a catalog item lookup fails.
var ErrItemNotFound = errors.New("item not found")

// ItemRepo provides CRUD access to the sellable item catalog.
type ItemRepo struct {
	db *sql.DB
}

// NewItemRepo constructs an ItemRepo bound to the given database.
func NewItemRepo(db *sql.DB) *ItemRepo { return &ItemRepo{db: db} }

const itemColumns = `id, name, category, price, created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }) (*model.Item, error) {
	var it model.Item
	if err := row.Scan(&it.ID, &it.Name, &it.Category, &it.Price, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	return &it, nil
}

// Create inserts a new catalog item and reads the row back to fill
// generated fields. ErrNameTaken is returned on duplicate names.
func (r *ItemRepo) Create(ctx context.Context, it *model.Item) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO items (name, category, price) VALUES (?, ?, ?)`,
		it.Name, it.Category, it.Price)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrNameTaken
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.FindByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*it = *created
	return nil
}

// FindByID retrieves an item by id, returning ErrItemNotFound when no
// row exists.
func (r *ItemRepo) FindByID(ctx context.Context, id uint64) (*model.Item, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	return it, err
}

// FindByName retrieves an item by its unique name, returning
// ErrItemNotFound when no row exists.
func (r *ItemRepo) FindByName(ctx context.Context, name string) (*model.Item, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE name = ?`, name)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	return it, err
}

// ListAll returns the whole catalog ordered by category then name.
func (r *ItemRepo) ListAll(ctx context.Context) ([]model.Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

// ListByIDs returns the items whose ids appear in the given set. The
// result may be shorter than the input when some ids do not resolve;
// the caller detects unknown references by comparing counts. Passing
// an empty slice returns an empty result without querying.
func (r *ItemRepo) ListByIDs(ctx context.Context, ids []uint64) ([]model.Item, error) {
	if len(ids) == 0 {
		return []model.Item{}, nil
	}
	placeholders := make([]string, 0, len(ids))
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id IN (`+strings.Join(placeholders, ",")+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Item, 0, len(ids))
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

// Update rewrites an item's name, category and price. Snapshots on
// existing order lines are untouched; only future sales see the new
// price. ErrNameTaken is returned when renaming onto an existing name.
func (r *ItemRepo) Update(ctx context.Context, it *model.Item) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE items SET name = ?, category = ?, price = ? WHERE id = ?`,
		it.Name, it.Category, it.Price, it.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrNameTaken
		}
		return err
	}
	updated, err := r.FindByID(ctx, it.ID)
	if err != nil {
		return err
	}
	*it = *updated
	return nil
}

// Delete removes a catalog item. Historical order lines keep their
// snapshots and are unaffected.
func (r *ItemRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrItemNotFound
	}
	return nil
}
