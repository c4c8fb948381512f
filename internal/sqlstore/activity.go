package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/capstonehub/capstone-hub/internal/domain/activity"
)

// ActivityRepository implements activity.Repository
type ActivityRepository struct {
	db *DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Log inserts a new activity entry and assigns its ID
func (r *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO activity_log (
			activity_type, entity_type, record_id, actor, summary, details, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`

	err := r.db.queryRow(ctx, query,
		string(entry.ActivityType),
		entry.EntityType,
		entry.RecordID,
		entry.Actor,
		entry.Summary,
		entry.Details,
		entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}
	return nil
}

// List returns activity entries matching the given filters, newest first
func (r *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	query := `
		SELECT id, activity_type, entity_type, record_id, actor, summary, details, created_at
		FROM activity_log
	`

	var args []any
	var conditions []string
	if opts.EntityType != "" {
		conditions = append(conditions, "entity_type = ?")
		args = append(args, opts.EntityType)
	}
	if opts.RecordID != nil {
		conditions = append(conditions, "record_id = ?")
		args = append(args, *opts.RecordID)
	}
	if opts.ActivityType != nil {
		conditions = append(conditions, "activity_type = ?")
		args = append(args, string(*opts.ActivityType))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY id DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}
	if opts.Offset > 0 {
		if opts.Limit <= 0 && r.db.Dialect() == SQLite {
			// SQLite only accepts OFFSET after LIMIT.
			query += " LIMIT -1"
		}
		query += " OFFSET ?"
		args = append(args, opts.Offset)
	}

	rows, err := r.db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var entries []activity.ActivityEntry
	for rows.Next() {
		var entry activity.ActivityEntry
		var typ string
		var recordID sql.NullString
		if err := rows.Scan(
			&entry.ID,
			&typ,
			&entry.EntityType,
			&recordID,
			&entry.Actor,
			&entry.Summary,
			&entry.Details,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity entry: %w", err)
		}
		entry.ActivityType = activity.ActivityType(typ)
		entry.CreatedAt = entry.CreatedAt.UTC()
		if recordID.Valid {
			entry.RecordID = &recordID.String
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity rows: %w", err)
	}

	return entries, nil
}
