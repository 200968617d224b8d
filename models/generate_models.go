package models

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"gorm.io/gen"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

/*
Schema tooling.

Set GENERATE_MODELS=true to migrate the schema, print the column report and
write typed query helpers to ./generated. Set GENERATE_COLUMN_REPORT=true to
print only the report:

	=== COLUMN MISMATCH REPORT ===
	--- Table: projects ---
	Found 1 columns not accounted for in model:
	  - legacy_tags

	=== SUMMARY ===
	Total mismatched columns across all tables: 1
*/

// All lists every persisted model.
func All() []any {
	return []any{&Project{}}
}

// Migrate creates or updates the tables for every persisted model.
func Migrate(db *gorm.DB) error {
	migrateDB := db.Session(&gorm.Session{
		SkipDefaultTransaction: true,
		PrepareStmt:            false,
	})
	if err := migrateDB.AutoMigrate(All()...); err != nil {
		return fmt.Errorf("migrate models: %w", err)
	}
	return nil
}

// GenerateModels migrates the schema, reports column drift and writes
// gorm/gen query helpers for every model.
func GenerateModels(db *gorm.DB, out io.Writer) error {
	if err := db.Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("database not reachable: %w", err)
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:           "./generated",
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(All()...)

	log.Info().Msg("Migrating models...")
	if err := Migrate(db); err != nil {
		return err
	}
	log.Info().Msg("Database migration completed")

	if _, err := GenerateColumnMismatchReport(db, out); err != nil {
		return err
	}

	g.Execute()
	log.Info().Msg("Model generation complete")
	return nil
}

// GenerateColumnMismatchReport writes a report of database columns that no
// model field maps to and returns the total number of such columns.
func GenerateColumnMismatchReport(db *gorm.DB, out io.Writer) (int, error) {
	fmt.Fprintln(out, "=== COLUMN MISMATCH REPORT ===")

	cache := &sync.Map{}
	totalMismatches := 0

	for _, model := range All() {
		s, err := schema.Parse(model, cache, db.NamingStrategy)
		if err != nil {
			return totalMismatches, fmt.Errorf("parse model %T: %w", model, err)
		}

		fmt.Fprintf(out, "\n--- Table: %s ---\n", s.Table)

		if !db.Migrator().HasTable(s.Table) {
			fmt.Fprintln(out, "Table does not exist yet (will be created during migration)")
			continue
		}

		dbColumns, err := tableColumns(db, s.Table)
		if err != nil {
			return totalMismatches, err
		}

		mismatches := findColumnMismatches(dbColumns, s.DBNames)
		if len(mismatches) > 0 {
			fmt.Fprintf(out, "Found %d columns not accounted for in model:\n", len(mismatches))
			for _, col := range mismatches {
				fmt.Fprintf(out, "  - %s\n", col)
			}
			totalMismatches += len(mismatches)
		} else {
			fmt.Fprintln(out, "All columns are accounted for in the model.")
		}
	}

	fmt.Fprintf(out, "\n=== SUMMARY ===\n")
	fmt.Fprintf(out, "Total mismatched columns across all tables: %d\n", totalMismatches)
	return totalMismatches, nil
}

// tableColumns retrieves column names from a database table
func tableColumns(db *gorm.DB, table string) ([]string, error) {
	types, err := db.Migrator().ColumnTypes(table)
	if err != nil {
		return nil, fmt.Errorf("error querying columns for table %s: %w", table, err)
	}
	columns := make([]string, 0, len(types))
	for _, ct := range types {
		columns = append(columns, ct.Name())
	}
	return columns, nil
}

// findColumnMismatches finds columns that exist in the database but not in the model
func findColumnMismatches(dbColumns, modelFields []string) []string {
	modelFieldSet := make(map[string]bool, len(modelFields))
	for _, field := range modelFields {
		modelFieldSet[field] = true
	}

	var mismatches []string
	for _, col := range dbColumns {
		if !modelFieldSet[col] {
			mismatches = append(mismatches, col)
		}
	}
	sort.Strings(mismatches)
	return mismatches
}
