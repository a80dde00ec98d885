package commands

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/seometa/seometa/internal/cli/config"
	"github.com/seometa/seometa/internal/meta"
	"github.com/seometa/seometa/internal/meta/schema"
	"github.com/seometa/seometa/internal/meta/store"
)

// openStore opens the configured database and wraps it in a store.
func openStore(cfg *config.Config) (*store.Store, *sql.DB, error) {
	url := cfg.DatabaseURL()
	if url == "" {
		return nil, nil, fmt.Errorf("no database URL configured (set database.url or DATABASE_URL)")
	}

	dialect, err := store.DialectFor(cfg.Database.Driver)
	if err != nil {
		return nil, nil, err
	}

	db, err := sql.Open(cfg.Database.Driver, url)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return store.New(db, dialect), db, nil
}

// buildEngine constructs the metadata engine from the configuration,
// registering every declared definition.
func buildEngine(cfg *config.Config, st *store.Store) (*meta.Engine, error) {
	settings := meta.Settings{
		Options: schema.Options{
			UseSites:      cfg.Sites,
			UseI18n:       cfg.I18n,
			UseSubdomains: cfg.Subdomains,
			Backends:      cfg.Backends,
		},
		Languages:   cfg.Languages,
		DefaultSite: cfg.DefaultSite,
		AppendSlash: cfg.AppendSlash,
	}

	eng, err := meta.New(settings, st)
	if err != nil {
		return nil, err
	}

	if len(cfg.Definitions) == 0 {
		return nil, fmt.Errorf("no metadata definitions configured")
	}
	for _, dc := range cfg.Definitions {
		def, err := dc.Build()
		if err != nil {
			return nil, err
		}
		if err := eng.RegisterDefinition(def); err != nil {
			return nil, err
		}
	}
	return eng, nil
}
