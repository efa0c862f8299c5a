package clean

import (
	"regexp"
	"sort"
	"strings"

	"gamefeatures/internal/table"
)

const ListSep = ", "

var namePattern = regexp.MustCompile(`'name':\s*'([^']+)'|"name":\s*"([^"]+)"`)

// extractNames returns every name value in order of appearance, duplicates
// included. Decoded values are walked directly, text goes through the
// name pattern.
func extractNames(v any) []string {
	switch v.(type) {
	case map[string]any, []any:
		return collectNames(v, nil)
	}
	text := table.SourceText(v)
	var out []string
	for _, m := range namePattern.FindAllStringSubmatch(text, -1) {
		if m[1] != "" {
			out = append(out, m[1])
		} else {
			out = append(out, m[2])
		}
	}
	return out
}

// collectNames visits map keys in sorted order, the order they have in the
// JSON text of the value.
func collectNames(v any, out []string) []string {
	switch t := v.(type) {
	case []any:
		for _, e := range t {
			out = collectNames(e, out)
		}
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if k == "name" {
				if name, ok := t[k].(string); ok && name != "" {
					out = append(out, name)
				}
				continue
			}
			out = collectNames(t[k], out)
		}
	}
	return out
}

// ListCount counts the segments of a list-string, 0 for empty or null.
func ListCount(v any) int64 {
	s, ok := v.(string)
	if !ok || s == "" {
		return 0
	}
	return int64(len(strings.Split(s, ListSep)))
}

func expandNames(t table.Table, col, listCol, countCol string, emptyAsNull bool) table.Table {
	out := t.Clone()
	lists := make([]any, len(out.Rows))
	for i, r := range out.Rows {
		list := strings.Join(extractNames(r[col]), ListSep)
		if list == "" && emptyAsNull {
			lists[i] = nil
		} else {
			lists[i] = list
		}
	}
	out.DropColumns(col)
	for i, r := range out.Rows {
		r[listCol] = lists[i]
		if countCol != "" {
			r[countCol] = ListCount(lists[i])
		}
	}
	out.AddColumn(listCol)
	if countCol != "" {
		out.AddColumn(countCol)
	}
	return out
}

func Platforms(t table.Table, col string) table.Table {
	return expandNames(t, col, "platforms_list", "platforms_count", false)
}

func Genres(t table.Table, col string) table.Table {
	return expandNames(t, col, "genres_list", "genres_count", false)
}

// Stores is like Platforms except that a game without stores gets a null
// store_list instead of an empty string.
func Stores(t table.Table, col string) table.Table {
	return expandNames(t, col, "store_list", "store_count", true)
}

// Names flattens a list of named entities (developers, publishers) into a
// list-string written back under listCol.
func Names(t table.Table, col, listCol string) table.Table {
	return expandNames(t, col, listCol, "", true)
}

// ESRB keeps the first rating name, null when there is none.
func ESRB(t table.Table, col string) table.Table {
	out := t.Clone()
	for _, r := range out.Rows {
		names := extractNames(r[col])
		if len(names) == 0 {
			r["esrb_rating_list"] = nil
			continue
		}
		r["esrb_rating_list"] = names[0]
	}
	out.DropColumns(col)
	out.AddColumn("esrb_rating_list")
	return out
}
