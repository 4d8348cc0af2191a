package bigquery

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		filename string
		valid    bool
		version  int
		name     string
	}{
		{"0001_ledger_tables.sql", true, 1, "ledger_tables"},
		{"0042_add_index.sql", true, 42, "add_index"},
		{"001_invalid.sql", false, 0, ""},
		{"0001_test", false, 0, ""},
		{"0001.sql", false, 0, ""},
		{"invalid_0001_test.sql", false, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			version, name, ok := ParseMigrationFilename(tt.filename)
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.version, version)
			assert.Equal(t, tt.name, name)
		})
	}
}

func TestReadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_second.sql": {Data: []byte("SELECT 2 FROM `{{PROJECT_ID}}.{{DATASET_ID}}.t`")},
		"0001_first.sql":  {Data: []byte("SELECT 1")},
		"README.md":       {Data: []byte("docs")},
	}

	migrations, skipped, err := ReadMigrations(fsys, "proj", "ds")
	require.NoError(t, err)

	require.Len(t, migrations, 2)
	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "second", migrations[1].Name)
	assert.Equal(t, "SELECT 2 FROM `proj.ds.t`", migrations[1].SQL)
	assert.Equal(t, []string{"README.md"}, skipped)

	// Checksums cover the file before substitution.
	again, _, err := ReadMigrations(fsys, "other", "dataset")
	require.NoError(t, err)
	assert.Equal(t, migrations[1].Checksum, again[1].Checksum)
	assert.NotEqual(t, migrations[0].Checksum, migrations[1].Checksum)
}

func TestReadMigrations_DuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"0001_a.sql": {Data: []byte("SELECT 1")},
		"0001_b.sql": {Data: []byte("SELECT 1")},
	}
	_, _, err := ReadMigrations(fsys, "p", "d")
	assert.Error(t, err)
}

func TestEmbeddedMigrations(t *testing.T) {
	migrations, skipped, err := ReadMigrations(EmbeddedMigrations(), "proj", "spendsense")
	require.NoError(t, err)
	assert.Empty(t, skipped)
	require.NotEmpty(t, migrations)

	first := migrations[0]
	for _, table := range []string{accountsTable, transactionsTable, liabilitiesTable} {
		assert.Contains(t, first.SQL, "`proj.spendsense."+table+"`")
	}
	assert.False(t, strings.Contains(first.SQL, "{{"))
}

func TestPending(t *testing.T) {
	migrations := []Migration{
		{Version: 1, Name: "a", Checksum: "c1"},
		{Version: 2, Name: "b", Checksum: "c2"},
	}

	pending, err := Pending(migrations, []AppliedMigration{{Version: 1, Checksum: "c1"}})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].Version)

	pending, err = Pending(migrations, nil)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	_, err = Pending(migrations, []AppliedMigration{{Version: 1, Checksum: "edited"}})
	assert.Error(t, err)
}
