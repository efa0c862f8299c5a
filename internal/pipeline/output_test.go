package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"gamefeatures/internal/export"
	"gamefeatures/internal/store"

	"github.com/stretchr/testify/require"
)

func TestWriteOutputs(t *testing.T) {
	ctx := context.Background()
	list := listExport()
	list.RenameColumn("id", IDColumn)
	res, err := Run(Inputs{List: list, Details: detailsExport()})
	require.NoError(t, err)

	dir := t.TempDir()
	out := Outputs{
		SQLite:        filepath.Join(dir, "db", "games.sqlite"),
		CSV:           filepath.Join(dir, "games.csv"),
		Profile:       filepath.Join(dir, "profile.md"),
		FeatureTables: true,
	}
	sources := []export.SourceStats{{Name: "list.csv", SourceRows: 2}}
	require.NoError(t, Write(ctx, res, out, sources))

	s, err := store.Open(ctx, out.SQLite, "games", IDColumn)
	require.NoError(t, err)
	defer s.Close()
	game, err := s.Get(ctx, 22)
	require.NoError(t, err)
	require.Equal(t, "LIMBO", game["game_name"])
	require.Equal(t, int64(1), game["is_nintendo"])

	flagsStore, err := store.Open(ctx, out.SQLite, "genre_flags", IDColumn)
	require.NoError(t, err)
	defer flagsStore.Close()
	require.Equal(t, []string{"rawg_id", "game_name", "is_action", "is_indie", "is_adventure"}, flagsStore.Columns())

	csv, err := os.ReadFile(out.CSV)
	require.NoError(t, err)
	require.Contains(t, string(csv), "Grand Theft Auto V")

	profile, err := os.ReadFile(out.Profile)
	require.NoError(t, err)
	require.Contains(t, string(profile), "# RAWG games profile")
	require.Contains(t, string(profile), "`list.csv` rows read: 2")
}

func TestWriteDropsDuplicateIDs(t *testing.T) {
	ctx := context.Background()
	list := listExport()
	list.RenameColumn("id", IDColumn)
	dup := make(map[string]any, len(list.Rows[0]))
	for k, v := range list.Rows[0] {
		dup[k] = v
	}
	dup["name"] = "GTA V (second page)"
	list.Rows = append(list.Rows, dup)

	res, err := Run(Inputs{List: list})
	require.NoError(t, err)
	require.Equal(t, 1, res.Duplicates)
	require.Equal(t, 2, res.Games.Len())
	require.Equal(t, "Grand Theft Auto V", res.Games.Rows[0]["game_name"])

	dir := t.TempDir()
	out := Outputs{SQLite: filepath.Join(dir, "games.sqlite"), Profile: filepath.Join(dir, "profile.md")}
	require.NoError(t, Write(ctx, res, out, nil))

	profile, err := os.ReadFile(out.Profile)
	require.NoError(t, err)
	require.Contains(t, string(profile), "Dropped duplicate `rawg_id` rows: 1")
}
