package migration

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations_Embedded(t *testing.T) {
	migs, err := loadMigrations(embedded, "sql")
	require.NoError(t, err)
	require.NotEmpty(t, migs)
	assert.Equal(t, int64(1), migs[0].Version)
	assert.Equal(t, "create_documents", migs[0].Name)
	assert.Contains(t, migs[0].SQL, "CREATE TABLE IF NOT EXISTS documents")
	assert.Len(t, migs[0].Checksum, 64)
}

func TestLoadMigrations_SortsAndSkipsUnrelated(t *testing.T) {
	fsys := fstest.MapFS{
		"m/V10__later.sql": {Data: []byte("SELECT 10;")},
		"m/V2__second.sql": {Data: []byte("SELECT 2;")},
		"m/README.md":      {Data: []byte("notes")},
		"m/v3__lower.sql":  {Data: []byte("SELECT 3;")},
		"m/V1__first.sql":  {Data: []byte("  SELECT 1;  \n")},
	}

	migs, err := loadMigrations(fsys, "m")
	require.NoError(t, err)
	require.Len(t, migs, 3)
	assert.Equal(t, []int64{1, 2, 10}, []int64{migs[0].Version, migs[1].Version, migs[2].Version})
	assert.Equal(t, "SELECT 1;", migs[0].SQL)
}

func TestLoadMigrations_Errors(t *testing.T) {
	_, err := loadMigrations(fstest.MapFS{
		"m/V1__a.sql": {Data: []byte("SELECT 1;")},
		"m/V1__b.sql": {Data: []byte("SELECT 2;")},
	}, "m")
	assert.ErrorContains(t, err, "duplicate migration version")

	_, err = loadMigrations(fstest.MapFS{"m/V1__empty.sql": {Data: []byte("   ")}}, "m")
	assert.ErrorContains(t, err, "empty migration file")

	migs, err := loadMigrations(fstest.MapFS{}, "missing")
	assert.NoError(t, err)
	assert.Empty(t, migs)
}
