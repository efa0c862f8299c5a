// Package merge reconciles the "list" and "details" exports of the catalog.
package merge

import (
	"gamefeatures/internal/table"
)

const DetailsSuffix = "_det"

// CombinableColumns are filled from the details export when the list export
// has no value for them.
var CombinableColumns = []string{
	"tags_list", "tags_count",
	"genres_list", "genres_count",
	"platform_list", "platform_count",
	"esrb_rating_list",
	"released",
	"name",
}

// AttributionColumns default to an empty string when missing.
var AttributionColumns = []string{"developers", "publishers"}

// Games left joins details onto list by key. The result has exactly one row
// per list row, in list order. When details holds several rows for a key
// the first one is used.
func Games(list, details table.Table, key string) table.Table {
	out := list.Clone()

	byKey := make(map[string]table.Row, len(details.Rows))
	for _, r := range details.Rows {
		k := table.KeyString(r[key])
		if k == "" {
			continue
		}
		if _, seen := byKey[k]; !seen {
			byKey[k] = r
		}
	}

	type joined struct{ from, to string }
	var cols []joined
	for _, c := range details.Columns {
		if c == key {
			continue
		}
		to := c
		if list.Has(c) {
			to = c + DetailsSuffix
		}
		cols = append(cols, joined{from: c, to: to})
		out.AddColumn(to)
	}

	for _, r := range out.Rows {
		match := byKey[table.KeyString(r[key])]
		for _, c := range cols {
			if match == nil {
				r[c.to] = nil
				continue
			}
			r[c.to] = match[c.from]
		}
	}

	for _, col := range CombinableColumns {
		det := col + DetailsSuffix
		if !out.Has(det) {
			continue
		}
		for _, r := range out.Rows {
			if table.IsMissing(r[col]) {
				r[col] = r[det]
			}
		}
		out.DropColumns(det)
	}

	for _, col := range AttributionColumns {
		if !out.Has(col) {
			continue
		}
		for _, r := range out.Rows {
			if table.IsMissing(r[col]) {
				r[col] = ""
			}
		}
	}

	out.DropColumns(out.ColumnsWithSuffix(DetailsSuffix)...)
	return out
}
