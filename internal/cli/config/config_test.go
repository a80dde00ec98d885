package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seometa/seometa/internal/meta/schema"
)

func loadFrom(t *testing.T, yaml string) (*Config, error) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seometa.yml"), []byte(yaml), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	return Load()
}

func TestLoad(t *testing.T) {
	cfg, err := loadFrom(t, `
project_name: myshop
sites: true
i18n: true
languages: [en, de]
backends: [path, modelinstance, model]
database:
  driver: sqlite3
  url: file:meta.db
server:
  addr: ":9000"
auth:
  secret: topsecret
definitions:
  - name: seo
    fields:
      - name: title
        editable: true
        head: true
        head_tag: title
      - name: description
        editable: true
        head: true
        kind: text
        default: "Welcome to {{ project }}"
`)
	require.NoError(t, err)

	assert.Equal(t, "myshop", cfg.ProjectName)
	assert.True(t, cfg.Sites)
	assert.True(t, cfg.I18n)
	assert.False(t, cfg.Subdomains)
	assert.Equal(t, []string{"path", "modelinstance", "model"}, cfg.Backends)
	assert.Equal(t, []string{"en", "de"}, cfg.Languages)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "topsecret", cfg.Auth.Secret)

	// Defaults fill in what the file omits.
	assert.True(t, cfg.AppendSlash)
	assert.Equal(t, int64(1), cfg.DefaultSite)
	assert.Equal(t, 100, cfg.Redis.RateLimit)

	require.Len(t, cfg.Definitions, 1)
	def, err := cfg.Definitions[0].Build()
	require.NoError(t, err)
	assert.Equal(t, "seo", def.Name)

	desc, ok := def.Field("description")
	require.True(t, ok)
	assert.Equal(t, schema.KindText, desc.Kind)
	assert.Equal(t, schema.Literal{Value: "Welcome to {{ project }}"}, desc.PopulateFrom)
}

func TestLoadWithoutFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestValidation(t *testing.T) {
	t.Run("bad driver", func(t *testing.T) {
		_, err := loadFrom(t, "database:\n  driver: oracle\n")
		assert.Error(t, err)
	})

	t.Run("duplicate definition", func(t *testing.T) {
		_, err := loadFrom(t, `
definitions:
  - name: seo
  - name: seo
`)
		assert.Error(t, err)
	})
}

func TestDefinitionBuildErrors(t *testing.T) {
	t.Run("missing name", func(t *testing.T) {
		_, err := DefinitionConfig{}.Build()
		assert.Error(t, err)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := DefinitionConfig{
			Name:   "seo",
			Fields: []FieldConfig{{Name: "title", Kind: "float"}},
		}.Build()
		assert.Error(t, err)
	})

	t.Run("reserved field name", func(t *testing.T) {
		_, err := DefinitionConfig{
			Name:   "seo",
			Fields: []FieldConfig{{Name: "_path"}},
		}.Build()
		assert.Error(t, err)
	})
}

func TestDatabaseURLPrefersEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://from-env/db")
	cfg := &Config{Database: DatabaseConfig{URL: "postgres://from-file/db"}}
	assert.Equal(t, "postgres://from-env/db", cfg.DatabaseURL())
}
