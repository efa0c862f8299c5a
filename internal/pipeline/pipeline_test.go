package pipeline

import (
	"testing"

	"gamefeatures/internal/flags"
	"gamefeatures/internal/table"

	"github.com/stretchr/testify/require"
)

func listExport() table.Table {
	return table.Table{
		Columns: []string{"id", "name", "rating", "ratings_count", "ratings", "added_by_status", "platforms", "genres", "stores", "tags", "esrb_rating"},
		Rows: []table.Row{
			{
				"id":              float64(3498),
				"name":            "Grand Theft Auto V",
				"rating":          4.47,
				"ratings_count":   float64(6000),
				"ratings":         `[{'id': 5, 'title': 'exceptional', 'count': 3000, 'percent': 59.0}, {'id': 4, 'title': 'recommended', 'count': 2000, 'percent': 32.0}]`,
				"added_by_status": "{'yet': 500, 'owned': 10000, 'beaten': 5000, 'toplay': 500, 'dropped': 1000, 'playing': 3000}",
				"platforms":       `[{'platform': {'id': 4, 'name': 'PC'}}, {'platform': {'id': 1, 'name': 'Xbox One'}}]`,
				"genres":          `[{'id': 4, 'name': 'Action'}]`,
				"stores":          `[{'store': {'name': 'Steam'}}, {'store': {'name': 'Xbox Store'}}]`,
				"tags":            `[{'name': 'Singleplayer'}, {'name': 'Multiplayer'}]`,
				"esrb_rating":     `{'id': 4, 'name': 'Mature'}`,
			},
			{
				"id":              float64(22),
				"name":            nil,
				"rating":          3.9,
				"ratings_count":   float64(10),
				"ratings":         nil,
				"added_by_status": nil,
				"platforms":       `[{'platform': {'id': 7, 'name': 'Nintendo Switch'}}]`,
				"genres":          `[{'id': 51, 'name': 'Indie'}, {'id': 3, 'name': 'Adventure'}]`,
				"stores":          "[]",
				"tags":            nil,
				"esrb_rating":     nil,
			},
		},
	}
}

func detailsExport() table.Table {
	return table.Table{
		Columns: []string{"rawg_id", "name", "tags", "developers", "publishers", "description"},
		Rows: []table.Row{
			{
				"rawg_id":     int64(22),
				"name":        "LIMBO",
				"tags":        `[{"name": "Atmospheric"}, {"name": "Co-op"}]`,
				"developers":  `[{"id": 1, "name": "Playdead"}]`,
				"publishers":  nil,
				"description": "boy in the woods",
			},
		},
	}
}

func TestRun(t *testing.T) {
	list := listExport()
	list.RenameColumn("id", IDColumn)

	res, err := Run(Inputs{List: list, Details: detailsExport()})
	require.NoError(t, err)

	games := res.Games
	require.Equal(t, 2, games.Len())
	for _, c := range []string{"rawg_id", "game_name", "user_rating", "ratings_count", "rating_total_votes", "status_total", "platforms_list", "genres_list", "store_list", "tags_list", "esrb_rating_list", "developers", "publishers", "is_pc", "is_action", "store_xbox_store", "is_multi_platform", "is_high_rating", "is_multiplayer", "esrb_mature"} {
		require.True(t, games.Has(c), c)
	}
	for _, c := range []string{"ratings", "platforms", "tags", "name", "rating", "name_det", "tags_list_det"} {
		require.False(t, games.Has(c), c)
	}

	gta := games.Rows[0]
	require.Equal(t, int64(3498), gta["rawg_id"])
	require.Equal(t, "Grand Theft Auto V", gta["game_name"])
	require.Equal(t, int64(6000), gta["ratings_count"])
	require.Equal(t, int64(5000), gta["rating_total_votes"])
	require.Equal(t, 91.0, gta["rating_positive_ratio"])
	require.Equal(t, int64(20000), gta["status_total"])
	require.Equal(t, 0.4, gta["status_engaged_ratio"])
	require.Equal(t, int64(1), gta["is_multi_platform"])
	require.Equal(t, int64(1), gta["is_multiplayer"])
	require.Equal(t, int64(1), gta["is_high_rating"])
	require.Equal(t, "", gta["developers"])

	limbo := games.Rows[1]
	require.Equal(t, "LIMBO", limbo["game_name"])
	// an empty list-string is a value, so the details tags do not replace it
	require.Equal(t, "", limbo["tags_list"])
	require.Equal(t, "Playdead", limbo["developers"])
	require.Equal(t, "", limbo["publishers"])
	require.Equal(t, "boy in the woods", limbo["description"])
	require.Nil(t, limbo["store_list"])
	require.Equal(t, int64(0), limbo["store_steam"])
	require.Equal(t, int64(1), limbo["is_nintendo"])
	require.Equal(t, int64(0), limbo["is_high_rating"])
	require.Equal(t, int64(0), limbo["is_multiplayer"])
	require.Equal(t, "exceptional", limbo["rating_main_category"])

	require.Equal(t,
		[]string{"platform_flags", "multi_platform", "genre_flags", "store_indicators", "high_rating", "multiplayer", "tag_indicators", "esrb_indicators"},
		res.Features.Names,
	)
	require.Equal(t,
		[]string{"rawg_id", "game_name", "is_action", "is_indie", "is_adventure"},
		res.Features.Tables["genre_flags"].Columns,
	)
}

func TestRunWithoutDetails(t *testing.T) {
	list := listExport()
	list.RenameColumn("id", IDColumn)
	res, err := Run(Inputs{List: list})
	require.NoError(t, err)
	require.Equal(t, "", res.Games.Rows[1]["tags_list"])
	require.Equal(t, int64(0), res.Games.Rows[1]["is_multiplayer"])
}

func TestRunRejectsBadRating(t *testing.T) {
	list := listExport()
	list.RenameColumn("id", IDColumn)
	list.Rows[1]["rating"] = "n/a"
	_, err := Run(Inputs{List: list})
	require.ErrorContains(t, err, "high rating flag")
}

func TestBuildFeaturesSkipsMissingSources(t *testing.T) {
	games := table.Table{
		Columns: []string{"rawg_id", "game_name"},
		Rows:    []table.Row{{"rawg_id": int64(1), "game_name": "x"}},
	}
	f, err := BuildFeatures(games, flags.DefaultKeys)
	require.NoError(t, err)
	require.Empty(t, f.Names)
}
