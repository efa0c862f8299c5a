package table

import (
	"bytes"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCloneIsIndependent(t *testing.T) {
	orig := Table{Columns: []string{"a"}, Rows: []Row{{"a": 1}}}
	c := orig.Clone()
	c.Rows[0]["a"] = 2
	c.AddColumn("b")
	require.Equal(t, 1, orig.Rows[0]["a"])
	require.Equal(t, []string{"a"}, orig.Columns)
}

func TestRenameAndDrop(t *testing.T) {
	tb := Table{
		Columns: []string{"id", "name", "rating"},
		Rows:    []Row{{"id": 1, "name": "x", "rating": 4.0}},
	}
	tb.RenameColumn("name", "game_name")
	tb.DropColumns("rating")
	require.Equal(t, []string{"id", "game_name"}, tb.Columns)
	require.Equal(t, Row{"id": 1, "game_name": "x"}, tb.Rows[0])
}

func TestJoinOnKey(t *testing.T) {
	base := Table{
		Columns: []string{"rawg_id", "game_name"},
		Rows:    []Row{{"rawg_id": int64(1), "game_name": "a"}, {"rawg_id": int64(2), "game_name": "b"}},
	}
	flags := Table{
		Columns: []string{"rawg_id", "game_name", "is_pc"},
		Rows:    []Row{{"rawg_id": float64(2), "game_name": "b", "is_pc": int64(1)}},
	}
	out := JoinOnKey(base, "rawg_id", flags)
	require.Equal(t, []string{"rawg_id", "game_name", "is_pc"}, out.Columns)
	require.Equal(t, []any{nil, int64(1)}, out.Column("is_pc"))
	require.Len(t, base.Columns, 2)
}

func TestKeyString(t *testing.T) {
	testCases := []struct {
		in   any
		want string
	}{
		{int64(3498), "3498"},
		{float64(3498), "3498"},
		{"3498", "3498"},
		{" 3498.0 ", "3498"},
		{2.5, "2.5"},
		{nil, ""},
		{math.NaN(), ""},
		{"abc", "abc"},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.want, KeyString(tc.in), "%v", tc.in)
	}
}

func TestParseFloat(t *testing.T) {
	f, err := ParseFloat("4.25")
	require.NoError(t, err)
	require.Equal(t, 4.25, f)

	f, err = ParseFloat(nil)
	require.NoError(t, err)
	require.True(t, math.IsNaN(f))

	_, err = ParseFloat("four")
	require.Error(t, err)

	_, err = ParseFloat([]any{1})
	require.Error(t, err)
}

func TestText(t *testing.T) {
	require.Equal(t, "nan", Text(nil))
	require.Equal(t, "PC", Text("PC"))
	require.Equal(t, "4.5", Text(4.5))
	require.Equal(t, `[{"name":"PC"}]`, Text([]any{map[string]any{"name": "PC"}}))
	require.Equal(t, `{"name":"Tom & Jerry <Games>"}`, Text(map[string]any{"name": "Tom & Jerry <Games>"}))
	require.Equal(t, "", SourceText(nil))
}

func TestDedupeOnKey(t *testing.T) {
	in := Table{
		Columns: []string{"rawg_id", "name"},
		Rows: []Row{
			{"rawg_id": int64(1), "name": "first"},
			{"rawg_id": float64(1), "name": "second"},
			{"rawg_id": nil, "name": "no id"},
			{"rawg_id": nil, "name": "no id either"},
			{"rawg_id": "2", "name": "two"},
		},
	}
	out, dropped := DedupeOnKey(in, "rawg_id")
	require.Equal(t, 1, dropped)
	require.Equal(t, []any{"first", "no id", "no id either", "two"}, out.Column("name"))
	require.Len(t, in.Rows, 5)

	out.Rows[0]["name"] = "changed"
	require.Equal(t, "first", in.Rows[0]["name"])
}

func TestJoinOnKeyWarnsOnCollision(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	base := Table{Columns: []string{"rawg_id", "is_action"}, Rows: []Row{{"rawg_id": int64(1), "is_action": int64(1)}}}
	extra := Table{Columns: []string{"rawg_id", "is_action", "is_indie"}, Rows: []Row{{"rawg_id": int64(1), "is_action": int64(0), "is_indie": int64(1)}}}

	out := JoinOnKey(base, "rawg_id", extra)
	require.Equal(t, []string{"rawg_id", "is_action", "is_indie"}, out.Columns)
	require.Equal(t, int64(1), out.Rows[0]["is_action"])
	require.Contains(t, buf.String(), "join skipped column already present")
	require.Contains(t, buf.String(), "column=is_action")
}
