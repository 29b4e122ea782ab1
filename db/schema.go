// schema.go introspects the catalog views to build a schema snapshot
// for ERD generation.
//
// Two queries are issued at most:
//   - base table names outside the system schemas
//   - one joined query over columns, key usage and constraints
//
// The snapshot is formatted as a text block suitable for injection
// into an AI prompt.
package db

import (
	"context"
	"fmt"
	"strings"
)

// ColumnInfo describes a single column in a table.
type ColumnInfo struct {
	Name       string
	DataType   string
	IsNullable bool
	// ConstraintType is the catalog constraint_type, e.g. "PRIMARY KEY",
	// "FOREIGN KEY", "UNIQUE", or "" when the column has none.
	ConstraintType string
	ForeignTable   string
	ForeignColumn  string
}

// TableSchema holds the columns of one table in catalog row order.
type TableSchema struct {
	Name    string
	Columns []ColumnInfo
}

// Snapshot is the introspected schema, tables in first-seen order.
type Snapshot []TableSchema

const tableNamesQuery = `
	SELECT table_name
	FROM information_schema.tables
	WHERE table_type = 'BASE TABLE'
	  AND table_schema NOT IN ('pg_catalog', 'information_schema')`

const tableDetailsQuery = `
	SELECT
		cols.table_name,
		cols.column_name,
		cols.data_type,
		cols.is_nullable,
		tc.constraint_type,
		ccu.table_name AS foreign_table,
		ccu.column_name AS foreign_column
	FROM information_schema.columns AS cols
	LEFT JOIN information_schema.key_column_usage AS kcu
	  ON cols.table_schema = kcu.table_schema
	  AND cols.table_name = kcu.table_name
	  AND cols.column_name = kcu.column_name
	LEFT JOIN information_schema.table_constraints AS tc
	  ON kcu.constraint_schema = tc.constraint_schema
	  AND kcu.constraint_name = tc.constraint_name
	LEFT JOIN information_schema.constraint_column_usage AS ccu
	  ON tc.constraint_schema = ccu.constraint_schema
	  AND tc.constraint_name = ccu.constraint_name
	WHERE cols.table_schema = 'public'
	  AND cols.table_name = ANY($1)
	ORDER BY cols.table_name`

// FetchTableNames lists user base tables in the order the server returns them.
func FetchTableNames(ctx context.Context, q Querier) ([]string, error) {
	rows, err := q.Fetch(ctx, tableNamesQuery)
	if err != nil {
		return nil, fmt.Errorf("fetch table names: %w", err)
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.String("table_name"))
	}
	return names, nil
}

// FetchTableDetails returns columns and key constraints for the given tables.
func FetchTableDetails(ctx context.Context, q Querier, tableNames []string) (Snapshot, error) {
	rows, err := q.Fetch(ctx, tableDetailsQuery, tableNames)
	if err != nil {
		return nil, fmt.Errorf("fetch table details: %w", err)
	}
	return groupColumns(rows), nil
}

// groupColumns buckets catalog rows by table, keeping first-seen order
// for both tables and columns.
func groupColumns(rows []Row) Snapshot {
	var snap Snapshot
	index := make(map[string]int)
	for _, row := range rows {
		table := row.String("table_name")
		i, ok := index[table]
		if !ok {
			i = len(snap)
			index[table] = i
			snap = append(snap, TableSchema{Name: table})
		}
		snap[i].Columns = append(snap[i].Columns, ColumnInfo{
			Name:           row.String("column_name"),
			DataType:       row.String("data_type"),
			IsNullable:     row.String("is_nullable") == "YES",
			ConstraintType: row.String("constraint_type"),
			ForeignTable:   row.String("foreign_table"),
			ForeignColumn:  row.String("foreign_column"),
		})
	}
	return snap
}

// FormatSnapshot renders the snapshot as text for an AI prompt.
// Every table and column name in s appears in the output.
func FormatSnapshot(s Snapshot) string {
	var sb strings.Builder

	for i, ts := range s {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("## Table: %s\n", ts.Name))
		for _, col := range ts.Columns {
			nullable := "NULL"
			if !col.IsNullable {
				nullable = "NOT NULL"
			}
			sb.WriteString(fmt.Sprintf("- %s %s %s", col.Name, col.DataType, nullable))
			if col.ConstraintType != "" {
				sb.WriteString(fmt.Sprintf(" [%s]", col.ConstraintType))
			}
			if col.ConstraintType == "FOREIGN KEY" && col.ForeignTable != "" {
				sb.WriteString(fmt.Sprintf(" → %s.%s", col.ForeignTable, col.ForeignColumn))
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
