package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"movebot/internal/session"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

var schemas = map[string]string{
	DriverPostgres: `
		CREATE TABLE IF NOT EXISTS completions (
			id           BIGSERIAL PRIMARY KEY,
			user_id      TEXT NOT NULL,
			user_name    TEXT NOT NULL,
			completed_at TIMESTAMPTZ NOT NULL,
			difficulty   TEXT NOT NULL,
			workout      TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS completions_user_name_idx ON completions (user_name);`,
	DriverSQLite: `
		CREATE TABLE IF NOT EXISTS completions (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id      TEXT NOT NULL,
			user_name    TEXT NOT NULL,
			completed_at TEXT NOT NULL,
			difficulty   TEXT NOT NULL,
			workout      TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS completions_user_name_idx ON completions (user_name);`,
}

// SQLStore keeps completions in an append-only table. Each batch is one transaction.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// OpenSQL connects with the given driver ("postgres" or "sqlite") and creates the table.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	schema, ok := schemas[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// a single connection keeps :memory: databases shared and serializes writers
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return NewSQLStore(db, driver), nil
}

// NewSQLStore wraps an open database whose schema already exists.
func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

// rebind turns ? placeholders into $n for postgres.
func (s *SQLStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (s *SQLStore) Append(ctx context.Context, records []session.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return appendErr(err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.rebind(`
		INSERT INTO completions (user_id, user_name, completed_at, difficulty, workout)
		VALUES (?, ?, ?, ?, ?)`))
	if err != nil {
		return appendErr(err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.UserID, r.UserName, formatTime(r.Timestamp),
			r.Difficulty.String(), encodeWorkout(r.Workout)); err != nil {
			return appendErr(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return appendErr(err)
	}
	return nil
}

func (s *SQLStore) ReadAll(ctx context.Context, userName string) ([]session.Record, error) {
	query := `SELECT user_id, user_name, completed_at, difficulty, workout FROM completions`
	var args []any
	if userName != "" {
		query += ` WHERE user_name = ?`
		args = append(args, userName)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, readErr(err)
	}
	defer rows.Close()

	records := []session.Record{}
	for rows.Next() {
		var userID, name, ts, difficulty, workout string
		if err := rows.Scan(&userID, &name, &ts, &difficulty, &workout); err != nil {
			return nil, readErr(err)
		}
		rec, err := decodeRecord(userID, name, ts, difficulty, workout)
		if err != nil {
			return nil, readErr(err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, readErr(err)
	}
	return records, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
