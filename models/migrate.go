package models

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

/*
Column Mismatch Report Usage:

The report lists database columns that no model field maps to. It is useful
after hand-editing the schema or when pointing the app at a database created
by an older version.

To generate the report:
1. Set the environment variable: GENERATE_COLUMN_REPORT=true
2. Run the application: go run .

Example output:

	table=blog_posts unmapped=["legacy_slug"]
	table=users all columns mapped
*/

// All lists every persisted model in dependency order.
func All() []any {
	return []any{
		&User{},
		&BlogPost{},
		&Comment{},
	}
}

// Migrate creates or updates the tables for every model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(All()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// ColumnMismatchReport maps a table name to the columns present in the
// database that no model field accounts for. Tables that do not exist yet are
// omitted.
func ColumnMismatchReport(db *gorm.DB) (map[string][]string, error) {
	report := make(map[string][]string)

	for _, model := range All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse model %T: %w", model, err)
		}
		tableName := stmt.Schema.Table

		if !db.Migrator().HasTable(model) {
			continue
		}

		columnTypes, err := db.Migrator().ColumnTypes(model)
		if err != nil {
			return nil, fmt.Errorf("error querying columns for table %s: %w", tableName, err)
		}

		dbColumns := make([]string, 0, len(columnTypes))
		for _, ct := range columnTypes {
			dbColumns = append(dbColumns, ct.Name())
		}

		report[tableName] = findColumnMismatches(dbColumns, stmt.Schema.DBNames)
	}

	return report, nil
}

// LogColumnMismatchReport runs ColumnMismatchReport and logs the result.
func LogColumnMismatchReport(db *gorm.DB) error {
	report, err := ColumnMismatchReport(db)
	if err != nil {
		return err
	}

	tables := make([]string, 0, len(report))
	for table := range report {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	total := 0
	for _, table := range tables {
		mismatches := report[table]
		if len(mismatches) == 0 {
			log.Info().Str("table", table).Msg("all columns mapped")
			continue
		}
		total += len(mismatches)
		log.Warn().Str("table", table).Strs("unmapped", mismatches).Msg("columns not accounted for in model")
	}
	log.Info().Int("total", total).Msg("column mismatch report complete")
	return nil
}

// findColumnMismatches finds columns that exist in the database but not in the model
func findColumnMismatches(dbColumns, modelFields []string) []string {
	modelFieldSet := make(map[string]bool, len(modelFields))
	for _, field := range modelFields {
		modelFieldSet[field] = true
	}

	mismatches := []string{}
	for _, col := range dbColumns {
		if !modelFieldSet[col] {
			mismatches = append(mismatches, col)
		}
	}

	return mismatches
}
