package clean

import (
	"strings"

	"gamefeatures/internal/literal"
	"gamefeatures/internal/table"
)

// MainCategoryUnknown marks a ratings value that decoded to something other
// than a list.
const MainCategoryUnknown = "unknown"

var ratingCategories = []string{"exceptional", "recommended", "meh", "skip"}

var RatingColumns = []string{
	"exceptional_percent", "recommended_percent", "meh_percent", "skip_percent",
	"exceptional_count", "recommended_count", "meh_count", "skip_count",
	"rating_positive_ratio", "rating_negative_ratio",
	"rating_total_votes", "rating_main_category",
}

type ratingBucket struct {
	percent float64
	count   int64
}

// Ratings expands a ratings breakdown column into per category percents and
// counts plus the derived totals, and drops the source column.
func Ratings(t table.Table, col string) table.Table {
	out := t.Clone()
	for _, r := range out.Rows {
		for k, v := range expandRatings(r[col]) {
			r[k] = v
		}
	}
	out.DropColumns(col)
	for _, c := range RatingColumns {
		out.AddColumn(c)
	}
	return out
}

func expandRatings(raw any) table.Row {
	entries, ok := literal.DecodeList(raw, literal.Strict, literal.Structural, literal.Repaired)
	if !ok {
		row := table.Row{}
		for _, c := range RatingColumns {
			row[c] = int64(0)
		}
		for _, cat := range ratingCategories {
			row[cat+"_percent"] = float64(0)
		}
		row["rating_positive_ratio"] = float64(0)
		row["rating_negative_ratio"] = float64(0)
		row["rating_main_category"] = MainCategoryUnknown
		return row
	}

	buckets := make(map[string]*ratingBucket, len(ratingCategories))
	for _, cat := range ratingCategories {
		buckets[cat] = &ratingBucket{}
	}
	for _, e := range entries {
		entry, isMap := e.(map[string]any)
		if !isMap {
			continue
		}
		title := strings.ToLower(table.AsString(entry["title"]))
		b, known := buckets[title]
		if !known {
			continue
		}
		if f, ok := table.AnyFloat64(entry["percent"]); ok {
			b.percent = f
		} else {
			b.percent = 0
		}
		if n, ok := table.AnyInt64(entry["count"]); ok {
			b.count = n
		} else {
			b.count = 0
		}
	}

	row := table.Row{}
	var total int64
	main := ratingCategories[0]
	for _, cat := range ratingCategories {
		b := buckets[cat]
		row[cat+"_percent"] = b.percent
		row[cat+"_count"] = b.count
		total += b.count
		if b.percent > buckets[main].percent {
			main = cat
		}
	}
	positive := buckets["exceptional"].percent + buckets["recommended"].percent
	negative := buckets["meh"].percent + buckets["skip"].percent
	row["rating_positive_ratio"] = table.Round2(positive)
	row["rating_negative_ratio"] = table.Round2(negative)
	row["rating_total_votes"] = total
	row["rating_main_category"] = main
	return row
}
