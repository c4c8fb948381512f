// Package sqlstore persists records, sessions and the activity log in SQLite
// or PostgreSQL through database/sql.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/capstonehub/capstone-hub/internal/domain/entity"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect selects driver-specific SQL.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// DB wraps a database connection with the dialect it speaks.
type DB struct {
	*sql.DB
	dialect Dialect
}

// Open connects to the database. For SQLite the dsn is a file path or a
// file: URI; for PostgreSQL it is a pgx connection string.
func Open(ctx context.Context, dialect Dialect, dsn string) (*DB, error) {
	var driver string
	switch dialect {
	case SQLite:
		driver = "sqlite"
	case Postgres:
		driver = "pgx"
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if dialect == SQLite {
		// SQLite serialises writers; one connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set busy timeout: %w", err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DB{DB: db, dialect: dialect}, nil
}

// Dialect returns the SQL dialect of the connection.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Rebind rewrites ? placeholders into the dialect's bind syntax.
func (db *DB) Rebind(query string) string {
	if db.dialect != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (db *DB) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.ExecContext(ctx, db.Rebind(query), args...)
}

func (db *DB) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.QueryContext(ctx, db.Rebind(query), args...)
}

func (db *DB) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return db.QueryRowContext(ctx, db.Rebind(query), args...)
}

// Migrate creates every table the application needs. It is idempotent.
func (db *DB) Migrate(ctx context.Context, descriptors ...*entity.Descriptor) error {
	stmts := []string{
		db.sessionsDDL(),
		`CREATE INDEX IF NOT EXISTS idx_sessions_last_seen ON sessions(last_seen)`,
		db.activityDDL(),
		`CREATE INDEX IF NOT EXISTS idx_activity_entity ON activity_log(entity_type)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_record ON activity_log(record_id)`,
	}
	for _, d := range descriptors {
		stmts = append(stmts, db.recordDDL(d))
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}
	return nil
}

func (db *DB) timestampType() string {
	if db.dialect == Postgres {
		return "TIMESTAMPTZ"
	}
	return "TIMESTAMP"
}

func (db *DB) serialKey() string {
	if db.dialect == Postgres {
		return "BIGSERIAL PRIMARY KEY"
	}
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

func (db *DB) columnType(k entity.Kind) string {
	switch k {
	case entity.KindInt:
		if db.dialect == Postgres {
			return "BIGINT"
		}
		return "INTEGER"
	case entity.KindFloat:
		if db.dialect == Postgres {
			return "DOUBLE PRECISION"
		}
		return "REAL"
	case entity.KindBool:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}

func (db *DB) recordDDL(d *entity.Descriptor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", d.Table)
	fmt.Fprintf(&b, "    seq %s,\n", db.serialKey())
	b.WriteString("    id TEXT NOT NULL UNIQUE,\n")
	for _, f := range d.Fields {
		fmt.Fprintf(&b, "    %s %s,\n", f.Name, db.columnType(f.Kind))
	}
	fmt.Fprintf(&b, "    created_at %s NOT NULL,\n", db.timestampType())
	fmt.Fprintf(&b, "    updated_at %s NOT NULL\n", db.timestampType())
	b.WriteString(")")
	return b.String()
}

func (db *DB) sessionsDDL() string {
	ts := db.timestampType()
	return `CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    authenticated BOOLEAN NOT NULL DEFAULT FALSE,
    role TEXT NOT NULL DEFAULT '',
    csrf_token TEXT NOT NULL DEFAULT '',
    created_at ` + ts + ` NOT NULL,
    login_at ` + ts + `,
    last_seen ` + ts + ` NOT NULL
)`
}

func (db *DB) activityDDL() string {
	return `CREATE TABLE IF NOT EXISTS activity_log (
    id ` + db.serialKey() + `,
    activity_type TEXT NOT NULL,
    entity_type TEXT NOT NULL DEFAULT '',
    record_id TEXT,
    actor TEXT NOT NULL DEFAULT '',
    summary TEXT NOT NULL,
    details TEXT NOT NULL DEFAULT '',
    created_at ` + db.timestampType() + ` NOT NULL
)`
}
