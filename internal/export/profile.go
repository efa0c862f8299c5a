package export

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gamefeatures/internal/table"

	prettytable "github.com/jedib0t/go-pretty/v6/table"
)

// ProfileInput carries the load counters next to the finished table.
type ProfileInput struct {
	Title   string
	Sources []SourceStats
	Key     string
	Result  table.Table
	// Deduplicated is the number of rows dropped for repeating a key.
	Deduplicated int
}

type SourceStats struct {
	Name        string
	SourceRows  int
	InvalidRows int
}

// BuildProfile renders a markdown report of the finished table: shape, key
// uniqueness, per column fill rates and numeric summaries.
func BuildProfile(in ProfileInput) string {
	t := in.Result
	lines := []string{
		"# " + in.Title,
		"",
		"## Dataset shape",
	}
	for _, s := range in.Sources {
		lines = append(lines,
			fmt.Sprintf("- `%s` rows read: %s, invalid rows skipped: %s", s.Name, fmtInt(s.SourceRows), fmtInt(s.InvalidRows)),
		)
	}
	lines = append(lines,
		fmt.Sprintf("- Rows written: %s", fmtInt(t.Len())),
		fmt.Sprintf("- Columns: %s", fmtInt(len(t.Columns))),
		"",
		"## Uniqueness / duplicates",
	)
	uniq, dup := uniquenessStats(t, in.Key)
	lines = append(lines, fmt.Sprintf("- `%s` unique=%s, duplicate_rows=%s", in.Key, fmtInt(uniq), fmtInt(dup)), "")

	lines = append(lines, "## Columns", "")
	cols := prettytable.NewWriter()
	cols.AppendHeader(prettytable.Row{"column", "non-null", "null %", "mean", "median", "min", "max"})
	for _, c := range t.Columns {
		nums := gatherNums(t, c)
		nonNull := 0
		for _, r := range t.Rows {
			if !table.IsMissing(r[c]) {
				nonNull++
			}
		}
		row := prettytable.Row{c, fmtInt(nonNull), fmt4g(100 * table.SafeDiv(float64(t.Len()-nonNull), float64(t.Len())))}
		if len(nums) == 0 {
			row = append(row, "", "", "", "")
		} else {
			row = append(row, fmt4g(mean(nums)), fmt4g(median(nums)), fmt4g(nums[0]), fmt4g(nums[len(nums)-1]))
		}
		cols.AppendRow(row)
	}
	lines = append(lines, cols.RenderMarkdown(), "")

	flagCols := indicatorColumns(t)
	if len(flagCols) > 0 {
		lines = append(lines, "## Indicator prevalence", "")
		flags := prettytable.NewWriter()
		flags.AppendHeader(prettytable.Row{"indicator", "games", "share %"})
		for _, c := range flagCols {
			n := 0
			for _, r := range t.Rows {
				if v, ok := table.AnyInt64(r[c]); ok && v == 1 {
					n++
				}
			}
			flags.AppendRow(prettytable.Row{c, fmtInt(n), fmt4g(100 * table.SafeDiv(float64(n), float64(t.Len())))})
		}
		lines = append(lines, flags.RenderMarkdown(), "")
	}
	lines = append(lines, "## Deduplication applied", fmt.Sprintf("- Dropped duplicate `%s` rows: %s", in.Key, fmtInt(in.Deduplicated)), "")
	return strings.Join(lines, "\n")
}

func indicatorColumns(t table.Table) []string {
	var out []string
	for _, c := range t.Columns {
		for _, p := range []string{"is_", "store_", "tag_", "esrb_"} {
			if strings.HasPrefix(c, p) && c != "store_list" && c != "store_count" && c != "esrb_rating_list" {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

func uniquenessStats(t table.Table, col string) (uniqueNonNil int, duplicateRows int) {
	counts := map[string]int{}
	for _, r := range t.Rows {
		if table.IsMissing(r[col]) {
			continue
		}
		counts[table.KeyString(r[col])]++
	}
	for _, c := range counts {
		uniqueNonNil++
		if c > 1 {
			duplicateRows += c
		}
	}
	return
}

// gatherNums returns the sorted numeric values of col.
func gatherNums(t table.Table, col string) []float64 {
	out := make([]float64, 0)
	for _, r := range t.Rows {
		if f, ok := table.AnyFloat64(r[col]); ok && !math.IsNaN(f) {
			out = append(out, f)
		}
	}
	sort.Float64s(out)
	return out
}

func fmtInt(v int) string {
	s := strconv.Itoa(v)
	n := len(s)
	if n <= 3 {
		return s
	}
	var parts []string
	for n > 3 {
		parts = append([]string{s[n-3:]}, parts...)
		s = s[:n-3]
		n = len(s)
	}
	if s != "" {
		parts = append([]string{s}, parts...)
	}
	return strings.Join(parts, ",")
}

func fmt4g(v float64) string { return strconv.FormatFloat(v, 'g', 4, 64) }

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	n := len(xs)
	if n%2 == 1 {
		return xs[n/2]
	}
	return (xs[n/2-1] + xs[n/2]) / 2
}
