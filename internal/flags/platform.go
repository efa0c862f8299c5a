package flags

import (
	"regexp"

	"gamefeatures/internal/table"
)

// "PC" is matched as a whole word so names like "PCEngine" stay out; the
// brand patterns are plain substrings.
var platformFamilies = []struct {
	column  string
	pattern *regexp.Regexp
}{
	{"is_pc", regexp.MustCompile(`(?i)\bPC\b`)},
	{"is_playstation", regexp.MustCompile(`(?i)PlayStation`)},
	{"is_xbox", regexp.MustCompile(`(?i)Xbox`)},
	{"is_nintendo", regexp.MustCompile(`(?i)Switch|Wii|GameCube|Nintendo|3DS`)},
	{"is_mobile", regexp.MustCompile(`(?i)iOS|Android`)},
}

func PlatformFamilies(t table.Table, keys Keys) table.Table {
	out := keys.base(t)
	for _, f := range platformFamilies {
		out.AddColumn(f.column)
	}
	for i, r := range t.Rows {
		text := table.Text(r[PlatformsColumn])
		for _, f := range platformFamilies {
			out.Rows[i][f.column] = table.Bit(f.pattern.MatchString(text))
		}
	}
	return out
}
