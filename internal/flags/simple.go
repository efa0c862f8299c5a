package flags

import (
	"fmt"
	"regexp"
	"strings"

	"gamefeatures/internal/table"
)

const HighRatingThreshold = 4.0

// MultiPlatform flags games listed on more than one platform. A missing
// platform list reads as the single segment "nan".
func MultiPlatform(t table.Table, keys Keys) table.Table {
	out := keys.base(t)
	out.AddColumn("is_multi_platform")
	for i, r := range t.Rows {
		segments := strings.Split(table.Text(r[PlatformsColumn]), ", ")
		out.Rows[i]["is_multi_platform"] = table.Bit(len(segments) > 1)
	}
	return out
}

// HighRating flags games rated 4.0 or better. The whole column must
// coerce to float, the first bad value fails the call.
func HighRating(t table.Table, keys Keys) (table.Table, error) {
	out := keys.base(t)
	out.AddColumn("is_high_rating")
	for i, r := range t.Rows {
		f, err := table.ParseFloat(r[RatingColumn])
		if err != nil {
			return table.Table{}, fmt.Errorf("%s row %d: %w", RatingColumn, i, err)
		}
		out.Rows[i]["is_high_rating"] = table.Bit(f >= HighRatingThreshold)
	}
	return out, nil
}

var MultiplayerKeywords = []string{
	"multiplayer", "online", "co-op", "co op", "coop", "fps", "cooperative",
	"mmo", "pvp", "pve", "crossplay", "lan", "battle-royale", "battle royale",
	"survival-multiplayer",
}

var multiplayerPattern = func() *regexp.Regexp {
	quoted := make([]string, len(MultiplayerKeywords))
	for i, k := range MultiplayerKeywords {
		quoted[i] = regexp.QuoteMeta(strings.ToLower(k))
	}
	return regexp.MustCompile(strings.Join(quoted, "|"))
}()

// Multiplayer flags games whose lower-cased tag list contains any
// multiplayer keyword as a literal substring.
func Multiplayer(t table.Table, keys Keys, tagsCol string) table.Table {
	out := keys.base(t)
	out.AddColumn("is_multiplayer")
	for i, r := range t.Rows {
		norm := strings.ToLower(table.Text(r[tagsCol]))
		out.Rows[i]["is_multiplayer"] = table.Bit(multiplayerPattern.MatchString(norm))
	}
	return out
}
