package table

import (
	"log/slog"
	"slices"
	"strings"
)

type Row map[string]any

// Table is a column-ordered set of rows. Columns holds the output order,
// rows may omit a column, which reads as nil.
type Table struct {
	Columns []string
	Rows    []Row
}

func New(cols ...string) Table {
	return Table{Columns: slices.Clone(cols)}
}

func (t Table) Len() int { return len(t.Rows) }

func (t Table) Has(col string) bool {
	return slices.Contains(t.Columns, col)
}

// Clone copies the column list and every row map. Values are shared, they
// are treated as immutable scalars.
func (t Table) Clone() Table {
	out := Table{
		Columns: slices.Clone(t.Columns),
		Rows:    make([]Row, len(t.Rows)),
	}
	for i, r := range t.Rows {
		nr := make(Row, len(r))
		for k, v := range r {
			nr[k] = v
		}
		out.Rows[i] = nr
	}
	return out
}

// Select returns a new table holding only cols, in that order.
func (t Table) Select(cols ...string) Table {
	out := Table{
		Columns: slices.Clone(cols),
		Rows:    make([]Row, len(t.Rows)),
	}
	for i, r := range t.Rows {
		nr := make(Row, len(cols))
		for _, c := range cols {
			nr[c] = r[c]
		}
		out.Rows[i] = nr
	}
	return out
}

func (t Table) Column(col string) []any {
	out := make([]any, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[col]
	}
	return out
}

// AddColumn appends col to the column order if it is not there yet.
// Callers own t; use Clone first when t is shared.
func (t *Table) AddColumn(col string) {
	if !t.Has(col) {
		t.Columns = append(t.Columns, col)
	}
}

func (t *Table) DropColumns(cols ...string) {
	drop := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		drop[c] = struct{}{}
	}
	t.Columns = slices.DeleteFunc(t.Columns, func(c string) bool {
		_, ok := drop[c]
		return ok
	})
	for _, r := range t.Rows {
		for c := range drop {
			delete(r, c)
		}
	}
}

func (t *Table) RenameColumn(from, to string) {
	i := slices.Index(t.Columns, from)
	if i < 0 || from == to {
		return
	}
	if t.Has(to) {
		t.DropColumns(to)
		i = slices.Index(t.Columns, from)
	}
	t.Columns[i] = to
	for _, r := range t.Rows {
		if v, ok := r[from]; ok {
			r[to] = v
			delete(r, from)
		}
	}
}

func (t Table) ColumnsWithSuffix(suffix string) []string {
	var out []string
	for _, c := range t.Columns {
		if strings.HasSuffix(c, suffix) {
			out = append(out, c)
		}
	}
	return out
}

// DedupeOnKey keeps the first row for every key value and reports how many
// rows were dropped. Rows without a key are all kept.
func DedupeOnKey(t Table, key string) (Table, int) {
	out := Table{Columns: slices.Clone(t.Columns), Rows: make([]Row, 0, len(t.Rows))}
	seen := make(map[string]struct{}, len(t.Rows))
	for _, r := range t.Rows {
		if !IsMissing(r[key]) {
			k := KeyString(r[key])
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
		}
		nr := make(Row, len(r))
		for c, v := range r {
			nr[c] = v
		}
		out.Rows = append(out.Rows, nr)
	}
	return out, len(t.Rows) - len(out.Rows)
}

// JoinOnKey appends every non-key column of each extra table to base,
// matching rows on key. Rows of base without a match get nil.
func JoinOnKey(base Table, key string, extras ...Table) Table {
	out := base.Clone()
	for _, extra := range extras {
		index := make(map[string]Row, len(extra.Rows))
		for _, r := range extra.Rows {
			k := KeyString(r[key])
			if _, seen := index[k]; !seen {
				index[k] = r
			}
		}
		var cols []string
		for _, c := range extra.Columns {
			if c == key {
				continue
			}
			if out.Has(c) {
				slog.Warn("join skipped column already present", "column", c)
				continue
			}
			cols = append(cols, c)
		}
		for _, r := range out.Rows {
			match := index[KeyString(r[key])]
			for _, c := range cols {
				if match == nil {
					r[c] = nil
					continue
				}
				r[c] = match[c]
			}
		}
		out.Columns = append(out.Columns, cols...)
	}
	return out
}
