// Package engine wraps the embedded DuckDB database backing a HatiData
// project. All SQL execution, table introspection, and Parquet export/import
// goes through here; quota policy lives in pkg/tier and never touches the
// database directly.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"
	"github.com/pkg/errors"
)

type (
	// Engine is a handle to the local DuckDB database.
	Engine struct {
		db *sql.DB
	}

	// QueryResult is the structured result of a query. DDL/DML statements
	// return an empty result (no columns).
	QueryResult struct {
		Columns []string
		Rows    [][]string
	}
)

// Open opens (or creates) a DuckDB database at the given path.
func Open(path string) (*Engine, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open DuckDB at %s", path)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "failed to open DuckDB at %s", path)
	}

	return &Engine{db: db}, nil
}

// Close closes the underlying database.
func (e *Engine) Close() error {
	return e.db.Close()
}

// selectPrefixes are the statement kinds executed through Query rather than
// Exec. Everything else is treated as DDL/DML.
var selectPrefixes = []string{"SELECT", "WITH", "SHOW", "DESCRIBE", "EXPLAIN", "PRAGMA", "FROM"}

// ExecuteQuery executes a SQL statement and returns structured results.
// SELECT-like statements return columns and stringified rows; DDL/DML is
// executed and returns an empty result.
func (e *Engine) ExecuteQuery(ctx context.Context, query string) (*QueryResult, error) {
	upper := strings.ToUpper(strings.TrimSpace(query))

	isSelect := false
	for _, p := range selectPrefixes {
		if strings.HasPrefix(upper, p) {
			isSelect = true
			break
		}
	}

	if !isSelect {
		if _, err := e.db.ExecContext(ctx, query); err != nil {
			return nil, errors.Wrapf(err, "failed to execute SQL: %s", query)
		}
		return &QueryResult{}, nil
	}

	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to execute query: %s", query)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read columns")
	}

	result := &QueryResult{Columns: columns}

	for rows.Next() {
		values := make([]any, len(columns))
		for i := range values {
			values[i] = new(any)
		}

		if err := rows.Scan(values...); err != nil {
			return nil, errors.Wrap(err, "failed to scan row")
		}

		row := make([]string, len(columns))
		for i, v := range values {
			row[i] = renderValue(*v.(*any))
		}
		result.Rows = append(result.Rows, row)
	}

	return result, errors.Wrap(rows.Err(), "failed to read rows")
}

// ListTables returns the names of all user tables, ordered by schema and
// name.
func (e *Engine) ListTables(ctx context.Context) ([]string, error) {
	rows, err := e.db.QueryContext(ctx,
		`SELECT table_name FROM information_schema.tables
		 WHERE table_schema NOT IN ('information_schema', 'pg_catalog')
		 AND table_type = 'BASE TABLE'
		 ORDER BY table_schema, table_name`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query information_schema")
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "failed to read table name")
		}
		tables = append(tables, name)
	}

	return tables, errors.Wrap(rows.Err(), "failed to list tables")
}

// TableRowCount returns the row count for a table.
func (e *Engine) TableRowCount(ctx context.Context, table string) (uint64, error) {
	if err := ValidateIdentifier(table); err != nil {
		return 0, err
	}

	var count uint64
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %q`, table)
	if err := e.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, errors.Wrapf(err, "failed to count rows in %s", table)
	}

	return count, nil
}

// ExportParquet exports a table to a Parquet file at path.
func (e *Engine) ExportParquet(ctx context.Context, table, path string) error {
	if err := ValidateIdentifier(table); err != nil {
		return err
	}

	query := fmt.Sprintf(`COPY %q TO '%s' (FORMAT PARQUET)`, table, escapeLiteral(path))
	if _, err := e.db.ExecContext(ctx, query); err != nil {
		return errors.Wrapf(err, "failed to export %s to parquet", table)
	}

	return nil
}

// ImportParquet creates (or replaces) a table from a Parquet file at path.
func (e *Engine) ImportParquet(ctx context.Context, table, path string) error {
	if err := ValidateIdentifier(table); err != nil {
		return err
	}

	query := fmt.Sprintf(`CREATE OR REPLACE TABLE %q AS SELECT * FROM read_parquet('%s')`, table, escapeLiteral(path))
	if _, err := e.db.ExecContext(ctx, query); err != nil {
		return errors.Wrapf(err, "failed to import parquet into %s", table)
	}

	return nil
}

// Exporter measures tables by exporting them to Parquet files under Dir,
// satisfying tier.Measurer. Files are kept so accepted tables can be uploaded
// without a second export; the caller owns Dir's lifetime.
type Exporter struct {
	Engine *Engine
	Dir    string
}

// Path returns the Parquet file path for a table within the staging
// directory.
func (x *Exporter) Path(table string) string {
	return filepath.Join(x.Dir, table+".parquet")
}

// MeasureExport exports the table and returns the Parquet file size.
func (x *Exporter) MeasureExport(ctx context.Context, table string) (uint64, error) {
	path := x.Path(table)
	if err := x.Engine.ExportParquet(ctx, table, path); err != nil {
		return 0, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to stat %s", path)
	}

	return uint64(info.Size()), nil
}

// ValidateIdentifier restricts table names to alphanumerics and underscores.
// Identifiers are interpolated into SQL and into staging file paths, so
// anything else is rejected. Callers handling names from the control plane
// must validate before touching the filesystem.
func ValidateIdentifier(name string) error {
	if name == "" {
		return errors.New("empty table name")
	}

	for _, c := range name {
		if c != '_' && !('a' <= c && c <= 'z') && !('A' <= c && c <= 'Z') && !('0' <= c && c <= '9') {
			return errors.Errorf("invalid table name: %s", name)
		}
	}

	return nil
}

func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func renderValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return fmt.Sprintf("<blob %d bytes>", len(val))
	case string:
		return val
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", val)
	}
}
