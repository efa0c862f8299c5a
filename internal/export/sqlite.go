package export

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"strings"

	"gamefeatures/internal/table"

	_ "modernc.org/sqlite"
)

// SQLiteOptions describes the table written by WriteSQLite.
type SQLiteOptions struct {
	Table   string
	Key     string
	Indexes []string
	// Replace removes the database file first instead of only replacing
	// the table.
	Replace bool
}

// WriteSQLite (re)creates one table holding every column of t. Column
// affinities are inferred from the values, booleans are stored as 0/1.
func WriteSQLite(ctx context.Context, path string, t table.Table, opts SQLiteOptions) error {
	if opts.Replace {
		_ = os.Remove(path)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var defs []string
	for _, c := range t.Columns {
		def := fmt.Sprintf("%s %s", QuoteIdent(c), columnAffinity(t, c))
		if c == opts.Key {
			def += " UNIQUE"
		}
		defs = append(defs, def)
	}
	if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS `+QuoteIdent(opts.Table)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `CREATE TABLE `+QuoteIdent(opts.Table)+` (`+strings.Join(defs, ",")+`)`); err != nil {
		return fmt.Errorf("create table %s: %w", opts.Table, err)
	}

	ph := strings.TrimRight(strings.Repeat("?,", len(t.Columns)), ",")
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+QuoteIdent(opts.Table)+` (`+JoinIdents(t.Columns)+`) VALUES (`+ph+`)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, r := range t.Rows {
		args := make([]any, 0, len(t.Columns))
		for _, c := range t.Columns {
			args = append(args, sqliteValue(r[c]))
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	for _, col := range opts.Indexes {
		if !t.Has(col) {
			continue
		}
		name := fmt.Sprintf("idx_%s_%s", opts.Table, col)
		q := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s(%s)`, QuoteIdent(name), QuoteIdent(opts.Table), QuoteIdent(col))
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func columnAffinity(t table.Table, col string) string {
	affinity := ""
	for _, r := range t.Rows {
		var cur string
		switch v := r[col].(type) {
		case nil:
			continue
		case bool, int, int64:
			cur = "INTEGER"
		case float64:
			if math.IsNaN(v) {
				continue
			}
			cur = "REAL"
		default:
			return "TEXT"
		}
		switch {
		case affinity == "":
			affinity = cur
		case affinity != cur:
			affinity = "REAL"
		}
	}
	if affinity == "" {
		return "TEXT"
	}
	return affinity
}

func sqliteValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case bool:
		if t {
			return 1
		}
		return 0
	case float64:
		if math.IsNaN(t) {
			return nil
		}
		return t
	case string, int, int64:
		return t
	default:
		return table.Text(t)
	}
}

func JoinIdents(cols []string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = QuoteIdent(c)
	}
	return strings.Join(parts, ", ")
}

func QuoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
