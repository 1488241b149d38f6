package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFilenamePattern(t *testing.T) {
	tests := []struct {
		filename string
		valid    bool
		version  string
		name     string
	}{
		{"0001_create_transactions.sql", true, "0001", "create_transactions"},
		{"0012_add_index.sql", true, "0012", "add_index"},
		{"001_invalid.sql", false, "", ""},
		{"0001_test", false, "", ""},
		{"0001.sql", false, "", ""},
		{"invalid_0001_test.sql", false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			matches := migrationPattern.FindStringSubmatch(tt.filename)
			if !tt.valid {
				assert.Nil(t, matches)
				return
			}
			require.Len(t, matches, 3)
			assert.Equal(t, tt.version, matches[1])
			assert.Equal(t, tt.name, matches[2])
		})
	}
}

func TestReadMigrations(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("0002_second.sql", "SELECT 2")
	write("0001_first.sql", "CREATE TABLE `{{PROJECT_ID}}.{{DATASET_ID}}.t` (id INT64)")
	write("README.md", "not a migration")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "0003_dir.sql"), 0o755))

	migrations, err := readMigrations(dir, "proj", "ds", zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "first", migrations[0].Name)
	assert.Equal(t, "CREATE TABLE `proj.ds.t` (id INT64)", migrations[0].SQL)
	assert.Equal(t, 2, migrations[1].Version)

	// Checksums cover the file before placeholder substitution.
	other, err := readMigrations(dir, "other", "elsewhere", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, migrations[0].Checksum, other[0].Checksum)
	assert.NotEqual(t, migrations[0].Checksum, migrations[1].Checksum)
}

func TestReadMigrationsMissingDir(t *testing.T) {
	_, err := readMigrations(filepath.Join(t.TempDir(), "missing"), "p", "d", zerolog.Nop())
	assert.Error(t, err)
}

func TestChecksumConsistency(t *testing.T) {
	a := checksum([]byte("CREATE TABLE test (id INT64);"))
	assert.Equal(t, a, checksum([]byte("CREATE TABLE test (id INT64);")))
	assert.NotEqual(t, a, checksum([]byte("CREATE TABLE different (id INT64);")))
	assert.Len(t, a, 64)
}

func TestPendingMigrations(t *testing.T) {
	all := []Migration{{Version: 1}, {Version: 2}, {Version: 3}}
	applied := []AppliedMigration{{Version: 1}, {Version: 3}}

	pending := pendingMigrations(all, applied)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].Version)

	assert.Empty(t, pendingMigrations(all, []AppliedMigration{{Version: 1}, {Version: 2}, {Version: 3}}))
	assert.Len(t, pendingMigrations(all, nil), 3)
}

func TestFindMigrationsDir(t *testing.T) {
	dir := t.TempDir()
	got, err := findMigrationsDir(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	_, err = findMigrationsDir(filepath.Join(dir, "nope"))
	assert.Error(t, err)
}
