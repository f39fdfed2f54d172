package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"movebot/internal/catalog"
	"movebot/internal/session"
)

var (
	// ErrAppend means a batch was not persisted. Nothing from the batch is visible.
	ErrAppend = errors.New("append failed")
	// ErrUnavailable means the store exists but could not be read.
	ErrUnavailable = errors.New("store unavailable")
)

// Error wraps a backend failure with its kind (ErrAppend or ErrUnavailable).
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store: %s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error { return []error{e.Kind, e.Err} }

func appendErr(err error) error {
	return &Error{Op: "append", Kind: ErrAppend, Err: err}
}

func readErr(err error) error {
	return &Error{Op: "read", Kind: ErrUnavailable, Err: err}
}

// Store is the append-only completion log.
type Store interface {
	// Append persists the batch in order. On error none of it is visible to readers.
	Append(ctx context.Context, records []session.Record) error
	// ReadAll returns every record in append order, or only those for userName when it is set.
	ReadAll(ctx context.Context, userName string) ([]session.Record, error)
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Driver string // csv, postgres or sqlite
	Path   string // csv file
	DSN    string // sql backends
}

// Open returns the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", DriverCSV:
		return NewCSVStore(opts.Path), nil
	case DriverPostgres, DriverSQLite:
		return OpenSQL(ctx, opts.Driver, opts.DSN)
	}
	return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
}

const (
	DriverCSV      = "csv"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	timeLayout       = time.RFC3339Nano
	legacyTimeLayout = "2006-01-02 15:04:05.999999"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime also accepts the space-separated layout of logs written by the first bot.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation(legacyTimeLayout, s, time.Local)
}

// encodeWorkout renders entries as name:reps joined by |. Catalog names never contain |.
func encodeWorkout(entries []session.Entry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.Name + ":" + strconv.Itoa(e.Reps)
	}
	return strings.Join(parts, "|")
}

func decodeWorkout(s string) ([]session.Entry, error) {
	if s == "" {
		return []session.Entry{}, nil
	}

	parts := strings.Split(s, "|")
	entries := make([]session.Entry, 0, len(parts))
	for _, p := range parts {
		i := strings.LastIndex(p, ":")
		if i <= 0 {
			return nil, fmt.Errorf("bad workout entry %q", p)
		}
		reps, err := strconv.Atoi(p[i+1:])
		if err != nil {
			return nil, fmt.Errorf("bad reps in %q: %w", p, err)
		}
		entries = append(entries, session.Entry{Name: p[:i], Reps: reps})
	}
	return entries, nil
}

func decodeRecord(userID, userName, ts, difficulty, workout string) (session.Record, error) {
	t, err := parseTime(ts)
	if err != nil {
		return session.Record{}, fmt.Errorf("timestamp: %w", err)
	}
	d, err := catalog.ParseDifficulty(difficulty)
	if err != nil {
		return session.Record{}, err
	}
	entries, err := decodeWorkout(workout)
	if err != nil {
		return session.Record{}, err
	}
	return session.Record{
		UserID:     userID,
		UserName:   userName,
		Timestamp:  t,
		Difficulty: d,
		Workout:    entries,
	}, nil
}
