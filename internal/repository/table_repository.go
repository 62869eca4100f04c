package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/trungvq/bida-pos/internal/model"
)

// ErrTableNotFound is returned when a table lookup fails.
var ErrTableNotFound = errors.New("table not found")

// TableRepo provides CRUD access to billiard tables. It embeds a
// database handle to perform queries and commands.
type TableRepo struct {
	db *sql.DB
}

// NewTableRepo constructs a TableRepo bound to the given database.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

const tableColumns = `id, name, hourly_rate, description, created_at, updated_at`

func scanTable(row interface{ Scan(...any) error }) (*model.Table, error) {
	var t model.Table
	var desc sql.NullString
	if err := row.Scan(&t.ID, &t.Name, &t.HourlyRate, &desc, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if desc.Valid {
		t.Description = &desc.String
	}
	return &t, nil
}

// Create inserts a new table. The ID field is populated after insert
// and the row is read back so timestamps are filled in. ErrNameTaken
// is returned when the unique name collides.
func (r *TableRepo) Create(ctx context.Context, t *model.Table) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tables (name, hourly_rate, description) VALUES (?, ?, ?)`,
		t.Name, t.HourlyRate, t.Description)
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
	*t = *created
	return nil
}

// FindByID retrieves a table by id, returning ErrTableNotFound when no
// row exists.
func (r *TableRepo) FindByID(ctx context.Context, id uint64) (*model.Table, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tableColumns+` FROM tables WHERE id = ?`, id)
	t, err := scanTable(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTableNotFound
	}
	return t, err
}

// FindByName retrieves a table by its unique name, returning
// ErrTableNotFound when no row exists.
func (r *TableRepo) FindByName(ctx context.Context, name string) (*model.Table, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tableColumns+` FROM tables WHERE name = ?`, name)
	t, err := scanTable(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTableNotFound
	}
	return t, err
}

// ListAll returns every table ordered by id.
func (r *TableRepo) ListAll(ctx context.Context) ([]model.Table, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tableColumns+` FROM tables ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Table, 0)
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// Update rewrites a table's name, hourly rate and description. The
// snapshot fields on existing bookings are untouched by design; only
// future bookings pick up the new rate. ErrTableNotFound is returned
// when the id does not exist and ErrNameTaken when the new name is
// already used by another table.
func (r *TableRepo) Update(ctx context.Context, t *model.Table) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tables SET name = ?, hourly_rate = ?, description = ? WHERE id = ?`,
		t.Name, t.HourlyRate, t.Description, t.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrNameTaken
		}
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Either missing or unchanged; distinguish by re-reading.
		if _, err := r.FindByID(ctx, t.ID); err != nil {
			return err
		}
	}
	updated, err := r.FindByID(ctx, t.ID)
	if err != nil {
		return err
	}
	*t = *updated
	return nil
}

// Delete removes a table. It refuses with ErrConflict while an open
// booking references the table; closed bookings also block the delete
// through the foreign key, since they reference the table row even
// though they snapshot its name and rate.
func (r *TableRepo) Delete(ctx context.Context, id uint64) error {
	var open int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE table_id = ? AND end_time IS NULL`, id).Scan(&open); err != nil {
		return err
	}
	if open > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM tables WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrConflict
		}
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrTableNotFound
	}
	return nil
}
