package commands

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandWiring(t *testing.T) {
	root := NewRootCommand()
	assert.Equal(t, "seometa", root.Use)

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"version", "init", "migrate", "serve", "token"} {
		assert.Contains(t, names, want)
	}
}

func inTempProject(t *testing.T, configYAML string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seometa.yml"), []byte(configYAML), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

const testConfig = `
project_name: test
sites: true
database:
  driver: sqlite3
  url: file:test.db
definitions:
  - name: seo
    fields:
      - name: title
        editable: true
        head: true
        head_tag: title
`

func TestMigrateCommand(t *testing.T) {
	dir := inTempProject(t, testConfig)

	cmd := NewMigrateCommand()
	require.NoError(t, cmd.RunE(cmd, nil))

	db, err := sql.Open("sqlite3", filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name")
	require.NoError(t, err)
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		tables = append(tables, name)
	}
	require.NoError(t, rows.Err())

	for _, want := range []string{"seo_path", "seo_view", "seo_modelinstance", "seo_model"} {
		assert.Contains(t, tables, want)
	}
}

func TestMigrateRequiresDefinitions(t *testing.T) {
	inTempProject(t, "database:\n  driver: sqlite3\n  url: file:test.db\n")

	cmd := NewMigrateCommand()
	err := cmd.RunE(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no metadata definitions")
}

func TestTokenCommandRequiresSecret(t *testing.T) {
	inTempProject(t, testConfig)

	cmd := NewTokenCommand()
	err := cmd.RunE(cmd, []string{"editor"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no auth secret")
}
