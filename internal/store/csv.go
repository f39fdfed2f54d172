package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"movebot/internal/session"
)

var csvHeader = []string{"user_id", "user_name", "timestamp", "difficulty", "workout"}

// CSVStore keeps completions in a single CSV file. Appends rewrite the file into a temp file
// and rename it into place, so readers never observe a half-written batch.
type CSVStore struct {
	path string
	mu   sync.Mutex
}

// NewCSVStore returns a store for path. The file is created with a header on first append.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

func (s *CSVStore) Append(ctx context.Context, records []session.Record) error {
	if len(records) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return appendErr(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := os.ReadFile(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return appendErr(err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return appendErr(err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return appendErr(err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(existing); err != nil {
		return appendErr(err)
	}
	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		if _, err := tmp.Write([]byte("\n")); err != nil {
			return appendErr(err)
		}
	}

	w := csv.NewWriter(tmp)
	if len(existing) == 0 {
		if err := w.Write(csvHeader); err != nil {
			return appendErr(err)
		}
	}
	for _, r := range records {
		row := []string{r.UserID, r.UserName, formatTime(r.Timestamp), r.Difficulty.String(), encodeWorkout(r.Workout)}
		if err := w.Write(row); err != nil {
			return appendErr(err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return appendErr(err)
	}

	if err := tmp.Sync(); err != nil {
		return appendErr(err)
	}
	if err := tmp.Close(); err != nil {
		return appendErr(err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return appendErr(err)
	}
	committed = true
	return nil
}

func (s *CSVStore) ReadAll(ctx context.Context, userName string) ([]session.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, readErr(err)
	}

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []session.Record{}, nil
	}
	if err != nil {
		return nil, readErr(err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(csvHeader)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, readErr(err)
	}

	records := make([]session.Record, 0, len(rows))
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if userName != "" && row[1] != userName {
			continue
		}
		rec, err := decodeRecord(row[0], row[1], row[2], row[3], row[4])
		if err != nil {
			return nil, readErr(fmt.Errorf("%s line %d: %w", s.path, i+1, err))
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *CSVStore) Close() error { return nil }
