package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/capstonehub/capstone-hub/internal/domain/entity"
	"github.com/capstonehub/capstone-hub/internal/repository"
)

// RecordRepository implements entity.Repository. Each descriptor maps to
// its own table whose columns follow the descriptor's fields.
type RecordRepository struct {
	db *DB
}

// NewRecordRepository creates a new RecordRepository
func NewRecordRepository(db *DB) *RecordRepository {
	return &RecordRepository{db: db}
}

func fieldNames(d *entity.Descriptor) []string {
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	return names
}

func selectColumns(d *entity.Descriptor) string {
	cols := append([]string{"id"}, fieldNames(d)...)
	cols = append(cols, "created_at", "updated_at")
	return strings.Join(cols, ", ")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// List returns all records of the type in creation order
func (r *RecordRepository) List(ctx context.Context, d *entity.Descriptor) ([]entity.Record, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY seq ASC", selectColumns(d), d.Table)

	rows, err := r.db.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", d.Plural, err)
	}
	defer rows.Close()

	records := []entity.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows, d)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", d.Plural, err)
	}

	return records, nil
}

// Get retrieves a record by ID
func (r *RecordRepository) Get(ctx context.Context, d *entity.Descriptor, id string) (*entity.Record, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", selectColumns(d), d.Table)

	rec, err := scanRecord(r.db.queryRow(ctx, query, id), d)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Create inserts a new record
func (r *RecordRepository) Create(ctx context.Context, d *entity.Descriptor, rec *entity.Record) error {
	names := fieldNames(d)
	cols := append([]string{"id"}, names...)
	cols = append(cols, "created_at", "updated_at")

	args := make([]any, 0, len(cols))
	args = append(args, rec.ID)
	for _, name := range names {
		args = append(args, rec.Fields[name])
	}
	args = append(args, rec.CreatedAt, rec.UpdatedAt)

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", d.Table, strings.Join(cols, ", "), placeholders(len(cols)))
	if _, err := r.db.exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create %s: %w", d.Name, err)
	}
	return nil
}

// Update overwrites every field of an existing record
func (r *RecordRepository) Update(ctx context.Context, d *entity.Descriptor, rec *entity.Record) error {
	names := fieldNames(d)
	sets := make([]string, 0, len(names)+1)
	args := make([]any, 0, len(names)+2)
	for _, name := range names {
		sets = append(sets, name+" = ?")
		args = append(args, rec.Fields[name])
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, rec.UpdatedAt, rec.ID)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", d.Table, strings.Join(sets, ", "))
	result, err := r.db.exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", d.Name, err)
	}
	return requireAffected(result)
}

// Delete removes a record
func (r *RecordRepository) Delete(ctx context.Context, d *entity.Descriptor, id string) error {
	result, err := r.db.exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", d.Table), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", d.Name, err)
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner, d *entity.Descriptor) (*entity.Record, error) {
	var rec entity.Record
	dest := make([]any, 0, len(d.Fields)+3)
	dest = append(dest, &rec.ID)
	holders := make([]any, len(d.Fields))
	for i, f := range d.Fields {
		holders[i] = nullHolder(f.Kind)
		dest = append(dest, holders[i])
	}
	dest = append(dest, &rec.CreatedAt, &rec.UpdatedAt)

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan %s: %w", d.Name, err)
	}

	rec.Fields = make(map[string]any, len(d.Fields))
	for i, f := range d.Fields {
		rec.Fields[f.Name] = nullValue(holders[i])
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return &rec, nil
}

func nullHolder(k entity.Kind) any {
	switch k {
	case entity.KindInt:
		return new(sql.NullInt64)
	case entity.KindFloat:
		return new(sql.NullFloat64)
	case entity.KindBool:
		return new(sql.NullBool)
	default:
		return new(sql.NullString)
	}
}

func nullValue(holder any) any {
	switch v := holder.(type) {
	case *sql.NullInt64:
		if v.Valid {
			return v.Int64
		}
	case *sql.NullFloat64:
		if v.Valid {
			return v.Float64
		}
	case *sql.NullBool:
		if v.Valid {
			return v.Bool
		}
	case *sql.NullString:
		if v.Valid {
			return v.String
		}
	}
	return nil
}
