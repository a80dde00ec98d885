package commands

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/seometa/seometa/internal/cli/config"
)

// NewMigrateCommand creates the migrate command
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the metadata tables for the configured definitions",
		Long: `Create one table per definition and backend, with the composite
uniqueness constraints derived from the enabled scoping axes. Existing
tables are left untouched.`,
		RunE: runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	st, db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	eng, err := buildEngine(cfg, st)
	if err != nil {
		return err
	}

	schemas := eng.AllSchemas()
	if err := eng.Migrate(context.Background()); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	success := color.New(color.FgGreen, color.Bold)
	success.Printf("Migrated %d tables\n", len(schemas))
	for _, rs := range schemas {
		fmt.Printf("  %s\n", rs.TableName)
	}
	return nil
}
