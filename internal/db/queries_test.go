package db

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Init(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestGetValue_Missing(t *testing.T) {
	db := setupDB(t)

	v, ok, err := GetValue(context.Background(), db, "slideTemplates")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestSetValue_Overwrites(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	require.NoError(t, SetValue(ctx, db, "selectedTemplate", "one-slide-presentation"))
	require.NoError(t, SetValue(ctx, db, "selectedTemplate", "research-summary"))

	v, ok, err := GetValue(ctx, db, "selectedTemplate")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "research-summary", v)

	var rows int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM kv").Scan(&rows))
	assert.Equal(t, 1, rows)

	var ts int64
	require.NoError(t, db.QueryRow("SELECT updated_at FROM kv WHERE key = ?", "selectedTemplate").Scan(&ts))
	assert.Positive(t, ts)
}

func TestSetValue_EmptyStringIsStored(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	require.NoError(t, SetValue(ctx, db, "k", ""))
	v, ok, err := GetValue(ctx, db, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, v)
}

func TestSetValue_ConcurrentWriters(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, SetValue(ctx, db, "k", "v"))
		}()
	}
	wg.Wait()

	v, ok, err := GetValue(ctx, db, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestQueries_ClosedDB(t *testing.T) {
	db, err := Init(t.TempDir())
	require.NoError(t, err)
	db.Close()

	_, _, err = GetValue(context.Background(), db, "k")
	assert.Error(t, err)
	assert.Error(t, SetValue(context.Background(), db, "k", "v"))
}
