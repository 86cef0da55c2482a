package store

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"sync"
	"testing"

	"atsmatch/internal/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "k1", "v1"))
	require.NoError(t, s.Set(ctx, "k2", "v2"))
	require.NoError(t, s.Set(ctx, "k1", "v1-updated"))

	value, ok, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v1-updated", value)

	require.NoError(t, s.Delete(ctx, "k1", "never-set"))
	_, ok, err = s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)

	value, ok, err = s.Get(ctx, "k2")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", value)

	require.NoError(t, s.Delete(ctx))
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	exerciseStore(t, s)
	assert.NoError(t, s.Close())
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Set(ctx, "key", "value")
			_, _, _ = s.Get(ctx, "key")
			if i%2 == 0 {
				_ = s.Delete(ctx, "key")
			}
		}(i)
	}
	wg.Wait()
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.db")

	s, err := OpenSQLite(ctx, path, 1000)
	require.NoError(t, err)
	exerciseStore(t, s)
	require.NoError(t, s.Set(ctx, "persisted", "yes"))
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(ctx, path, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	value, ok, err := reopened.Get(ctx, "persisted")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "yes", value)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Driver: DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, Options{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "s.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, Options{Driver: "redis"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfig))

	_, err = Open(ctx, Options{Driver: DriverSQLite})
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfig))
}

func TestSQLiteStoreGetError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT value FROM kv").
		WithArgs(KeyResume).
		WillReturnError(stderrors.New("database is locked"))

	_, ok, err := NewSQLiteStore(db).Get(context.Background(), KeyResume)
	assert.False(t, ok)
	assert.True(t, errors.HasCode(err, errors.ErrCodeStoreFailed))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStoreSetUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("INSERT INTO kv").
		WithArgs(KeyTheme, "dark", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO kv").
		WithArgs(KeyTheme, "light", sqlmock.AnyArg()).
		WillReturnError(stderrors.New("disk I/O error"))

	s := NewSQLiteStore(db)
	require.NoError(t, s.Set(context.Background(), KeyTheme, "dark"))
	err = s.Set(context.Background(), KeyTheme, "light")
	assert.True(t, errors.HasCode(err, errors.ErrCodeStoreFailed))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStoreDeleteRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM kv").WithArgs(KeyResume).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM kv").WithArgs(KeyAnalysis).WillReturnError(stderrors.New("constraint"))
	mock.ExpectRollback()

	err = NewSQLiteStore(db).Delete(context.Background(), KeyResume, KeyAnalysis)
	assert.True(t, errors.HasCode(err, errors.ErrCodeStoreFailed))
	require.NoError(t, mock.ExpectationsWereMet())
}

type recordingObserver struct {
	ops []string
	ok  []bool
}

func (r *recordingObserver) RecordStoreOperation(_ context.Context, operation string, success bool) {
	r.ops = append(r.ops, operation)
	r.ok = append(r.ok, success)
}

func TestWithObserver(t *testing.T) {
	ctx := context.Background()
	obs := &recordingObserver{}
	s := WithObserver(NewMemoryStore(), obs)

	require.NoError(t, s.Set(ctx, "k", "v"))
	_, _, _ = s.Get(ctx, "k")
	require.NoError(t, s.Delete(ctx, "k"))

	assert.Equal(t, []string{"set", "get", "delete"}, obs.ops)
	assert.Equal(t, []bool{true, true, true}, obs.ok)

	plain := NewMemoryStore()
	assert.Same(t, plain, WithObserver(plain, nil))
}
