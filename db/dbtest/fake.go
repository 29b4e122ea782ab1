// Package dbtest provides an in-memory db.Querier for tests.
package dbtest

import (
	"context"
	"strings"
	"sync"

	"github.com/DachengChen/erdchat/db"
)

// FakeQuerier answers catalog queries from fixed rows and records
// every statement it sees.
type FakeQuerier struct {
	mu sync.Mutex

	TableRows  []db.Row
	DetailRows []db.Row
	Err        error

	Calls []string
	Args  [][]any
}

var _ db.Querier = (*FakeQuerier)(nil)

// New returns a fake serving the given table-name and column-detail rows.
func New(tableRows, detailRows []db.Row) *FakeQuerier {
	return &FakeQuerier{TableRows: tableRows, DetailRows: detailRows}
}

func (f *FakeQuerier) Fetch(ctx context.Context, query string, args ...any) ([]db.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, query)
	f.Args = append(f.Args, args)
	if f.Err != nil {
		return nil, f.Err
	}
	switch {
	case strings.Contains(query, "information_schema.columns"):
		return f.DetailRows, nil
	case strings.Contains(query, "information_schema.tables"):
		return f.TableRows, nil
	}
	return nil, nil
}

func (f *FakeQuerier) Execute(ctx context.Context, query string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, query)
	f.Args = append(f.Args, args)
	return f.Err
}

// CallCount reports how many statements were issued.
func (f *FakeQuerier) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}

// Tables builds table-name rows.
func Tables(names ...string) []db.Row {
	rows := make([]db.Row, len(names))
	for i, n := range names {
		rows[i] = db.Row{"table_name": n}
	}
	return rows
}

// Column builds one column-detail row. A nil constraint, foreign table or
// foreign column mirrors a NULL from the LEFT JOINs.
func Column(table, column, dataType string, nullable bool, constraint, fkTable, fkColumn any) db.Row {
	isNullable := "NO"
	if nullable {
		isNullable = "YES"
	}
	return db.Row{
		"table_name":      table,
		"column_name":     column,
		"data_type":       dataType,
		"is_nullable":     isNullable,
		"constraint_type": constraint,
		"foreign_table":   fkTable,
		"foreign_column":  fkColumn,
	}
}
