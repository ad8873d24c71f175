package migration

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations_SortsAndChecksums(t *testing.T) {
	src := fstest.MapFS{
		"V2__second.sql": {Data: []byte("SELECT 2;")},
		"V1__first.sql":  {Data: []byte("SELECT 1;")},
		"README.md":      {Data: []byte("ignored")},
	}

	migs, err := loadMigrations(src)
	require.NoError(t, err)
	require.Len(t, migs, 2)
	assert.Equal(t, int64(1), migs[0].Version)
	assert.Equal(t, "first", migs[0].Name)
	assert.Equal(t, int64(2), migs[1].Version)
	assert.Len(t, migs[0].Checksum, 64)
	assert.NotEqual(t, migs[0].Checksum, migs[1].Checksum)
}

func TestLoadMigrations_RejectsDuplicatesAndEmpty(t *testing.T) {
	_, err := loadMigrations(fstest.MapFS{
		"V1__a.sql": {Data: []byte("SELECT 1;")},
		"V1__b.sql": {Data: []byte("SELECT 1;")},
	})
	assert.ErrorContains(t, err, "duplicate migration version")

	_, err = loadMigrations(fstest.MapFS{"V3__blank.sql": {Data: []byte("  \n")}})
	assert.ErrorContains(t, err, "empty migration file")
}

func TestEmbeddedMigrationsLoad(t *testing.T) {
	src, err := Runner{}.source()
	require.NoError(t, err)

	migs, err := loadMigrations(src)
	require.NoError(t, err)
	require.NotEmpty(t, migs)
	assert.Equal(t, int64(1), migs[0].Version)
	assert.Contains(t, migs[0].SQL, "uq_applications_active_pair")
}
