package merge

import (
	"testing"

	"gamefeatures/internal/table"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestGames(t *testing.T) {
	list := table.Table{
		Columns: []string{"rawg_id", "name", "tags_list", "genres_list", "rating", "extra"},
		Rows: []table.Row{
			{"rawg_id": int64(3), "name": "Portal", "tags_list": nil, "genres_list": "Puzzle", "rating": 4.5, "extra": "a"},
			{"rawg_id": int64(1), "name": nil, "tags_list": "Singleplayer", "genres_list": nil, "rating": 4.1, "extra": "b"},
			{"rawg_id": int64(2), "name": "Orphan", "tags_list": nil, "genres_list": "Indie", "rating": 3.0, "extra": "c"},
		},
	}
	details := table.Table{
		Columns: []string{"rawg_id", "name", "tags_list", "genres_list", "developers", "publishers", "extra"},
		Rows: []table.Row{
			{"rawg_id": float64(1), "name": "Half-Life", "tags_list": "FPS", "genres_list": "Shooter", "developers": "Valve", "publishers": nil, "extra": "x"},
			{"rawg_id": "3", "name": "Portal (details)", "tags_list": "Action", "genres_list": "Platformer", "developers": nil, "publishers": "Valve", "extra": "y"},
			{"rawg_id": int64(3), "name": "duplicate", "tags_list": "ignored"},
			{"rawg_id": int64(99), "name": "unmatched"},
		},
	}

	out := mergeOnID(list, details)

	require.Equal(t,
		[]string{"rawg_id", "name", "tags_list", "genres_list", "rating", "extra", "developers", "publishers"},
		out.Columns,
	)
	require.Equal(t, 3, out.Len())
	require.Empty(t, out.ColumnsWithSuffix(DetailsSuffix))

	expected := []table.Row{
		{"rawg_id": int64(3), "name": "Portal", "tags_list": "Action", "genres_list": "Puzzle", "rating": 4.5, "extra": "a", "developers": "", "publishers": "Valve"},
		{"rawg_id": int64(1), "name": "Half-Life", "tags_list": "Singleplayer", "genres_list": "Shooter", "rating": 4.1, "extra": "b", "developers": "Valve", "publishers": ""},
		{"rawg_id": int64(2), "name": "Orphan", "tags_list": nil, "genres_list": "Indie", "rating": 3.0, "extra": "c", "developers": "", "publishers": ""},
	}
	if diff := cmp.Diff(expected, out.Rows); diff != "" {
		t.Fatalf("merged rows mismatch (-want +got):\n%s", diff)
	}

	require.Nil(t, list.Rows[0]["tags_list"], "list input must not change")
	require.Len(t, list.Columns, 6)
}

func TestGamesFillFromDetails(t *testing.T) {
	list := table.Table{
		Columns: []string{"rawg_id", "tags_list"},
		Rows:    []table.Row{{"rawg_id": int64(7), "tags_list": nil}},
	}
	details := table.Table{
		Columns: []string{"rawg_id", "tags_list"},
		Rows:    []table.Row{{"rawg_id": int64(7), "tags_list": "Action"}},
	}
	out := mergeOnID(list, details)
	require.Equal(t, []string{"rawg_id", "tags_list"}, out.Columns)
	require.Equal(t, "Action", out.Rows[0]["tags_list"])
	require.False(t, out.Has("tags_list_det"))
}

func TestGamesEmptyDetails(t *testing.T) {
	list := table.Table{
		Columns: []string{"rawg_id", "name"},
		Rows:    []table.Row{{"rawg_id": int64(1), "name": "A"}, {"rawg_id": nil, "name": "B"}},
	}
	out := mergeOnID(list, table.New("rawg_id"))
	require.Equal(t, list.Rows, out.Rows)
}

func mergeOnID(list, details table.Table) table.Table {
	return Games(list, details, "rawg_id")
}
