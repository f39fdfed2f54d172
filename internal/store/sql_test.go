package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"movebot/internal/catalog"
	"movebot/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *SQLStore {
	t.Helper()
	s, err := OpenSQL(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "movebot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLStore_AppendAndRead(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	require.NoError(t, s.Append(ctx, []session.Record{
		testRecord("bob", catalog.Easy),
		testRecord("alice", catalog.Hard),
	}))
	require.NoError(t, s.Append(ctx, []session.Record{testRecord("bob", catalog.Medium)}))

	all, err := s.ReadAll(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "bob", all[0].UserName)
	assert.Equal(t, "alice", all[1].UserName)
	assert.Equal(t, catalog.Medium, all[2].Difficulty)
	assert.True(t, all[0].Timestamp.Equal(testRecord("bob", catalog.Easy).Timestamp))
	assert.Equal(t, testRecord("bob", catalog.Easy).Workout, all[0].Workout)

	bob, err := s.ReadAll(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, bob, 2)
}

func TestSQLStore_EmptyTable(t *testing.T) {
	got, err := openSQLite(t).ReadAll(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLStore_SchemaIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "movebot.db")

	first, err := OpenSQL(ctx, DriverSQLite, path)
	require.NoError(t, err)
	require.NoError(t, first.Append(ctx, []session.Record{testRecord("bob", catalog.Easy)}))
	require.NoError(t, first.Close())

	second, err := OpenSQL(ctx, DriverSQLite, path)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.ReadAll(ctx, "")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSQLStore_ClosedDatabase(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)
	require.NoError(t, s.Close())

	err := s.Append(ctx, []session.Record{testRecord("bob", catalog.Easy)})
	assert.True(t, errors.Is(err, ErrAppend), "Append() error = %v", err)

	_, err = s.ReadAll(ctx, "")
	assert.True(t, errors.Is(err, ErrUnavailable), "ReadAll() error = %v", err)
}

func TestRebind(t *testing.T) {
	pg := &SQLStore{driver: DriverPostgres}
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y = $2", pg.rebind("SELECT a FROM t WHERE x = ? AND y = ?"))

	lite := &SQLStore{driver: DriverSQLite}
	assert.Equal(t, "x = ?", lite.rebind("x = ?"))
}

func TestOpen_Drivers(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Driver: DriverCSV, Path: filepath.Join(t.TempDir(), "w.csv")})
	require.NoError(t, err)
	assert.IsType(t, &CSVStore{}, s)

	s, err = Open(ctx, Options{Driver: DriverSQLite, DSN: filepath.Join(t.TempDir(), "w.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLStore{}, s)
	s.Close()

	_, err = Open(ctx, Options{Driver: "mongo"})
	assert.Error(t, err)
}
