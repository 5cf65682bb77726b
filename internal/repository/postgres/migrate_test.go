package postgres

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTableNames(t *testing.T) {
	tables := NewTableNames("dev_")

	assert.Equal(t, "dev_profiles", tables.Profiles)
	assert.Equal(t, "dev_folders", tables.Folders)
	assert.Equal(t, "dev_documents", tables.Documents)
	assert.Equal(t, "dev_document_versions", tables.Versions)
}

func TestEmbeddedMigrations_UsePrefix(t *testing.T) {
	entries, err := fs.ReadDir(migrations, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, e := range entries {
		data, err := fs.ReadFile(migrations, "migrations/"+e.Name())
		require.NoError(t, err)
		body := string(data)
		assert.Contains(t, body, "+goose ENVSUB ON", e.Name())
		assert.NotContains(t, strings.ToLower(body), "create table if not exists documents", e.Name())
	}
}

func TestRunMigrations_PropagatesError(t *testing.T) {
	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return errors.New("boom")
	}

	err := runWithDB(context.Background(), nil, NewTableNames("test_"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, "migrations", gotDir)
}
