// Package store is the read side of the persisted games table.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"gamefeatures/internal/export"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("game not found")

// SummaryColumns are the fields returned by the paged listing.
var SummaryColumns = []string{"rawg_id", "game_name", "user_rating", "ratings_count"}

type Store struct {
	db    *sql.DB
	table string
	idCol string
	cols  []string
}

// Open opens an existing sqlite file and checks that table holds idCol.
func Open(ctx context.Context, path, table, idCol string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("sqlite path: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	s, err := New(ctx, db, table, idCol)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func New(ctx context.Context, db *sql.DB, table, idCol string) (*Store, error) {
	cols, err := tableColumns(ctx, db, table)
	if err != nil {
		return nil, fmt.Errorf("load columns: %w", err)
	}
	if !slices.Contains(cols, idCol) {
		return nil, fmt.Errorf("id column %q not found in table %q", idCol, table)
	}
	return &Store{db: db, table: table, idCol: idCol, cols: cols}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Columns() []string { return slices.Clone(s.cols) }

// List returns one page of game summaries ordered by id. Summary columns
// missing from the table are left out.
func (s *Store) List(ctx context.Context, limit, offset int) ([]map[string]any, error) {
	var cols []string
	for _, c := range SummaryColumns {
		if slices.Contains(s.cols, c) {
			cols = append(cols, c)
		}
	}
	q := fmt.Sprintf(
		`SELECT %s FROM %s ORDER BY %s LIMIT ? OFFSET ?`,
		export.JoinIdents(cols), export.QuoteIdent(s.table), export.QuoteIdent(s.idCol),
	)
	rows, err := s.db.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]map[string]any, 0, limit)
	for rows.Next() {
		m, err := scanRow(rows, cols)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns every column of one game.
func (s *Store) Get(ctx context.Context, id int64) (map[string]any, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? LIMIT 1", export.JoinIdents(s.cols), export.QuoteIdent(s.table), export.QuoteIdent(s.idCol))
	rows, err := s.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return scanRow(rows, s.cols)
}

func scanRow(rows *sql.Rows, cols []string) (map[string]any, error) {
	values := make([]any, len(cols))
	scans := make([]any, len(cols))
	for i := range values {
		scans[i] = &values[i]
	}
	if err := rows.Scan(scans...); err != nil {
		return nil, err
	}
	out := make(map[string]any, len(cols))
	for i, col := range cols {
		out[col] = normalizeValue(values[i])
	}
	return out, nil
}

func tableColumns(ctx context.Context, db *sql.DB, table string) ([]string, error) {
	q := fmt.Sprintf("PRAGMA table_info(%s)", export.QuoteIdent(table))
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull int
		var dflt sql.NullString
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("no columns found for table %q", table)
	}
	return cols, nil
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	default:
		return v
	}
}

// Count returns the number of rows with a non-null id.
func (s *Store) Count(ctx context.Context) (int, error) {
	q := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s IS NOT NULL`, export.QuoteIdent(s.table), export.QuoteIdent(s.idCol))
	var n int
	if err := s.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// IDs returns one page of ids in ascending order.
func (s *Store) IDs(ctx context.Context, limit, offset int) ([]int64, error) {
	q := fmt.Sprintf(
		`SELECT %s FROM %s
		 WHERE %s IS NOT NULL
		 ORDER BY %s
		 LIMIT ? OFFSET ?`,
		export.QuoteIdent(s.idCol),
		export.QuoteIdent(s.table),
		export.QuoteIdent(s.idCol),
		export.QuoteIdent(s.idCol),
	)
	rows, err := s.db.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]int64, 0, limit)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchColumns are matched by Search, in ranking order.
var SearchColumns = []string{"game_name", "genres_list", "developers", "publishers"}

// Search matches query as a substring of the searchable columns. Rows where a
// column starts with query rank first, then by ratings_count.
func (s *Store) Search(ctx context.Context, query string, limit, offset int) (int, []map[string]any, error) {
	var fields []string
	for _, c := range SearchColumns {
		if slices.Contains(s.cols, c) {
			fields = append(fields, c)
		}
	}
	if len(fields) == 0 {
		return 0, nil, fmt.Errorf("no searchable columns in table %q", s.table)
	}

	pattern := "%" + escapeLikePattern(query) + "%"
	prefix := escapeLikePattern(query) + "%"
	where := make([]string, 0, len(fields))
	order := make([]string, 0, len(fields)+2)
	whereArgs := make([]any, 0, len(fields))
	orderArgs := make([]any, 0, len(fields))
	for _, f := range fields {
		where = append(where, fmt.Sprintf("%s LIKE ? ESCAPE '\\'", export.QuoteIdent(f)))
		whereArgs = append(whereArgs, pattern)
		order = append(order, fmt.Sprintf("CASE WHEN %s LIKE ? ESCAPE '\\' THEN 0 ELSE 1 END", export.QuoteIdent(f)))
		orderArgs = append(orderArgs, prefix)
	}
	if slices.Contains(s.cols, "ratings_count") {
		order = append(order, `"ratings_count" DESC`)
	}
	order = append(order, export.QuoteIdent(s.idCol))
	whereClause := strings.Join(where, " OR ")

	var total int
	countQ := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE (%s)", export.QuoteIdent(s.table), whereClause)
	if err := s.db.QueryRowContext(ctx, countQ, whereArgs...).Scan(&total); err != nil {
		return 0, nil, err
	}

	var cols []string
	for _, c := range append(slices.Clone(SummaryColumns), fields...) {
		if slices.Contains(s.cols, c) && !slices.Contains(cols, c) {
			cols = append(cols, c)
		}
	}
	q := fmt.Sprintf(
		`SELECT %s FROM %s
		 WHERE (%s)
		 ORDER BY %s
		 LIMIT ? OFFSET ?`,
		export.JoinIdents(cols), export.QuoteIdent(s.table), whereClause, strings.Join(order, ", "),
	)
	args := append(append(whereArgs, orderArgs...), limit, offset)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return 0, nil, err
	}
	defer rows.Close()

	items := make([]map[string]any, 0, limit)
	for rows.Next() {
		m, err := scanRow(rows, cols)
		if err != nil {
			return 0, nil, err
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func escapeLikePattern(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
