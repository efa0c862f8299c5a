package flags

import (
	"math"
	"testing"

	"gamefeatures/internal/table"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func games(col string, values ...any) table.Table {
	t := table.New("rawg_id", "game_name", col)
	for i, v := range values {
		t.Rows = append(t.Rows, table.Row{
			"rawg_id":   int64(100 + i),
			"game_name": "game",
			col:         v,
		})
	}
	return t
}

func TestPlatformFamilies(t *testing.T) {
	in := games(PlatformsColumn,
		"PC, PlayStation 4, Xbox One",
		"Nintendo Switch, iOS",
		"PCEngine",
		"Android, Wii U",
		nil,
	)
	out := PlatformFamilies(in, DefaultKeys)
	require.Equal(t, []string{"rawg_id", "game_name", "is_pc", "is_playstation", "is_xbox", "is_nintendo", "is_mobile"}, out.Columns)

	expected := [][]int64{
		{1, 1, 1, 0, 0},
		{0, 0, 0, 1, 1},
		{0, 0, 0, 0, 0},
		{0, 0, 0, 1, 1},
		{0, 0, 0, 0, 0},
	}
	for i, want := range expected {
		got := make([]int64, 0, 5)
		for _, c := range out.Columns[2:] {
			got = append(got, out.Rows[i][c].(int64))
		}
		require.Equal(t, want, got, "row %d", i)
		require.Equal(t, in.Rows[i]["rawg_id"], out.Rows[i]["rawg_id"])
	}
	require.Len(t, in.Columns, 3, "input columns must not change")
}

func TestGenres(t *testing.T) {
	in := games(GenresColumn, "Action, RPG", "RPG")
	out := Genres(in, DefaultKeys)
	require.Equal(t, []string{"rawg_id", "game_name", "is_action", "is_rpg"}, out.Columns)
	require.Equal(t, []any{int64(1), int64(0)}, out.Column("is_action"))
	require.Equal(t, []any{int64(1), int64(1)}, out.Column("is_rpg"))
}

func TestGenresSkipsBlankAndNull(t *testing.T) {
	in := games(GenresColumn, "", nil, "Massively Multiplayer, Indie")
	out := Genres(in, DefaultKeys)
	require.Equal(t, []string{"rawg_id", "game_name", "is_massively_multiplayer", "is_indie"}, out.Columns)
	require.Equal(t, []any{int64(0), int64(0), int64(1)}, out.Column("is_indie"))
}

func TestDiscoverVocabularyThenEncode(t *testing.T) {
	in := games(StoresColumn, "Steam, Xbox Store", "Xbox 360 Store, GOG", nil, "PlayStation Store")
	vocab := DiscoverVocabulary(in, StoresColumn, StoreVocabulary)
	require.Equal(t,
		[]string{"store_gog", "store_playstation_store", "store_steam", "store_xbox_store"},
		vocab.Columns(),
	)

	out := EncodeIndicators(in, DefaultKeys, StoresColumn, vocab, TokenMatch(StoreVocabulary.Prefix, NormalizeStore))
	require.Equal(t, []any{int64(1), int64(1), int64(0), int64(0)}, out.Column("store_xbox_store"))
	require.Equal(t, []any{int64(0), int64(0), int64(0), int64(1)}, out.Column("store_playstation_store"))
	require.Equal(t, []any{int64(1), int64(0), int64(0), int64(0)}, out.Column("store_steam"))
}

func TestNormalizeStore(t *testing.T) {
	testCases := map[string]string{
		"Xbox Game Pass":    "xbox_store",
		"Xbox Live Arcade":  "xbox_store",
		"PlayStation Store": "playstation_store",
		"Epic Games":        "epic_games",
		"  itch.io ":        "itch_io",
		"App Store":         "app_store",
	}
	for in, want := range testCases {
		require.Equal(t, want, NormalizeStore(in), in)
	}
}

func TestMultiPlatform(t *testing.T) {
	in := games(PlatformsColumn, "PC, Xbox One", "PC", "", nil, "nan")
	out := MultiPlatform(in, DefaultKeys)
	require.Equal(t, []any{int64(1), int64(0), int64(0), int64(0), int64(0)}, out.Column("is_multi_platform"))
}

func TestHighRating(t *testing.T) {
	in := games(RatingColumn, 3.99, 4.0, 4.5, "4.2", nil, int64(5))
	out, err := HighRating(in, DefaultKeys)
	require.NoError(t, err)
	require.Equal(t, []any{int64(0), int64(1), int64(1), int64(1), int64(0), int64(1)}, out.Column("is_high_rating"))

	_, err = HighRating(games(RatingColumn, 4.1, "great"), DefaultKeys)
	require.ErrorContains(t, err, "row 1")

	_, err = HighRating(games(RatingColumn, math.NaN()), DefaultKeys)
	require.NoError(t, err)
}

func TestMultiplayer(t *testing.T) {
	in := games(TagsColumn,
		"Co-op, Story Rich",
		"Story Rich, Puzzle",
		"Singleplayer, FPS",
		"Battle Royale",
		nil,
		"c.o.op",
	)
	before := in.Clone()
	out := Multiplayer(in, DefaultKeys, TagsColumn)
	require.Equal(t, []string{"rawg_id", "game_name", "is_multiplayer"}, out.Columns)
	require.Equal(t, []any{int64(1), int64(0), int64(1), int64(1), int64(0), int64(0)}, out.Column("is_multiplayer"))
	if diff := cmp.Diff(before, in); diff != "" {
		t.Fatalf("input table changed (-before +after):\n%s", diff)
	}
}

func TestTagAndESRBIndicators(t *testing.T) {
	in := games(TagsColumn, "Co-op, Singleplayer", "cooperative, Single-player, Open World")
	out := Tags(in, DefaultKeys)
	require.Equal(t, []string{"rawg_id", "game_name", "tag_co_op", "tag_open_world", "tag_singleplayer"}, out.Columns)
	require.Equal(t, []any{int64(1), int64(1)}, out.Column("tag_co_op"))
	require.Equal(t, []any{int64(0), int64(1)}, out.Column("tag_open_world"))

	esrb := ESRB(games(ESRBColumn, "Mature", nil, "Everyone 10+", "Mature"), DefaultKeys)
	require.Equal(t, []string{"rawg_id", "game_name", "esrb_mature", "esrb_everyone_10"}, esrb.Columns)
	require.Equal(t, []any{int64(1), int64(0), int64(0), int64(1)}, esrb.Column("esrb_mature"))
	require.Equal(t, []any{int64(0), int64(0), int64(1), int64(0)}, esrb.Column("esrb_everyone_10"))
}
