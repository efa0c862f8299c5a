package clean

import (
	"strings"

	"gamefeatures/internal/literal"
	"gamefeatures/internal/table"
)

// Tags decodes a tag collection and keeps the trimmed names of the entries
// that have one.
func Tags(t table.Table, col string) table.Table {
	out := t.Clone()
	for _, r := range out.Rows {
		names := tagNames(r[col])
		r["tags_list"] = strings.Join(names, ListSep)
		r["tags_count"] = int64(len(names))
	}
	out.DropColumns(col)
	out.AddColumn("tags_list")
	out.AddColumn("tags_count")
	return out
}

func tagNames(raw any) []string {
	items, ok := literal.DecodeList(raw, literal.Strict, literal.Structural)
	if !ok {
		return nil
	}
	var names []string
	for _, item := range items {
		entry, isMap := item.(map[string]any)
		if !isMap {
			continue
		}
		name, _ := entry["name"].(string)
		if name == "" {
			continue
		}
		names = append(names, strings.TrimSpace(name))
	}
	return names
}
