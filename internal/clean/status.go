package clean

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"gamefeatures/internal/table"
)

var statusKeys = []string{"yet", "owned", "beaten", "toplay", "dropped", "playing"}

var statusPatterns = func() map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(statusKeys))
	for _, k := range statusKeys {
		out[k] = regexp.MustCompile(fmt.Sprintf(`['"]%s['"]:\s*(\d+)`, regexp.QuoteMeta(k)))
	}
	return out
}()

var StatusColumns = []string{
	"status_yet", "status_owned", "status_beaten", "status_toplay", "status_dropped", "status_playing",
	"status_total",
	"status_engaged_ratio", "status_completion_ratio", "status_abandon_ratio", "status_plan_to_play_ratio",
}

// AddedByStatus pulls the ownership counters out of the textual form of an
// added_by_status value. Only "key: number" pairs are read, the value is
// never parsed as a structure.
func AddedByStatus(t table.Table, col string) table.Table {
	out := t.Clone()
	for _, r := range out.Rows {
		text := table.SourceText(r[col])
		counts := make(map[string]int64, len(statusKeys))
		var total int64
		for _, k := range statusKeys {
			var n int64
			if m := statusPatterns[k].FindStringSubmatch(text); m != nil {
				n = parseCount(m[1])
			}
			counts[k] = n
			total = addCounts(total, n)
			r["status_"+k] = n
		}
		tf := float64(total)
		r["status_total"] = total
		r["status_engaged_ratio"] = table.Round2(table.SafeDiv(float64(addCounts(counts["beaten"], counts["playing"])), tf))
		r["status_completion_ratio"] = table.Round2(table.SafeDiv(float64(counts["beaten"]), tf))
		r["status_abandon_ratio"] = table.Round2(table.SafeDiv(float64(counts["dropped"]), tf))
		r["status_plan_to_play_ratio"] = table.Round2(table.SafeDiv(float64(counts["toplay"]), tf))
	}
	out.DropColumns(col)
	for _, c := range StatusColumns {
		out.AddColumn(c)
	}
	return out
}

// parseCount reads a run of digits, saturating at math.MaxInt64.
func parseCount(digits string) int64 {
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return math.MaxInt64
	}
	return n
}

func addCounts(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}
