package database

import (
	"testing"
	"turnover/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valkey-io/valkey-go"
	"gorm.io/driver/sqlite"
)

func TestCacheConstants(t *testing.T) {
	assert.Equal(t, 0, GENERAL_CACHE_INDEX)
	assert.Equal(t, 1, USER_CACHE_INDEX)
	assert.Equal(t, 2, AVAILABILITY_CACHE_INDEX)
	assert.Equal(t, 3, EVENTS_CACHE_INDEX)
}

func TestCacheBuilder_WithoutClient(t *testing.T) {
	id := uuid.New()
	builder := NewCacheBuilder(nil, id).WithHash("availability")

	assert.Equal(t, "availability:"+id.String(), builder.key)

	var out map[string]any
	found, err := builder.Get(&out)
	assert.False(t, found)
	assert.True(t, IsCacheUnavailable(err))

	assert.True(t, IsCacheUnavailable(builder.WithStruct(map[string]int{"a": 1}).Set()))
	assert.True(t, IsCacheUnavailable(builder.Delete()))
}

func TestCacheBuilder_EmptyKey(t *testing.T) {
	builder := NewCacheBuilder(&struct{ valkey.Client }{}, "")

	found, err := builder.Get(&struct{}{})
	assert.False(t, found)
	assert.ErrorIs(t, err, errCacheKeyRequired)
	assert.ErrorIs(t, builder.Delete(), errCacheKeyRequired)
}

func TestCacheBuilder_MarshalError(t *testing.T) {
	builder := NewCacheBuilder(nil, "key").WithStruct(make(chan int))
	assert.Error(t, builder.Set())
}

func TestMigrateModels_SQLite(t *testing.T) {
	db, err := NewWithDialector(sqlite.Open("file:migrate_test?mode=memory&cache=shared"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.MigrateModels())
	// Idempotent on a second run.
	require.NoError(t, db.MigrateModels())

	var count int64
	require.NoError(t, db.SQL.Raw(
		"SELECT count(*) FROM sqlite_master WHERE type = 'index' AND name = ?",
		"idx_cleaning_jobs_active_slot",
	).Scan(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(testConfig())
	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "dbname=turnover")
	assert.Contains(t, dsn, "TimeZone=UTC")
}

func testConfig() config.Config {
	return config.Config{
		DatabaseHost: "localhost",
		DatabasePort: 5432,
		DatabaseName: "turnover",
		DatabaseUser: "turnover",
	}
}
