// Package pipeline turns raw list/details exports into the finished games
// table and its indicator tables.
package pipeline

import (
	"fmt"
	"log/slog"

	"gamefeatures/internal/clean"
	"gamefeatures/internal/flags"
	"gamefeatures/internal/merge"
	"gamefeatures/internal/table"
)

const IDColumn = "rawg_id"

// parser expands one raw column; parsers only run when their column exists.
type parser struct {
	column string
	apply  func(table.Table, string) table.Table
}

var parsers = []parser{
	{"ratings", clean.Ratings},
	{"added_by_status", clean.AddedByStatus},
	{"platforms", clean.Platforms},
	{"genres", clean.Genres},
	{"stores", clean.Stores},
	{"tags", clean.Tags},
	{"esrb_rating", clean.ESRB},
	{"developers", func(t table.Table, col string) table.Table { return clean.Names(t, col, col) }},
	{"publishers", func(t table.Table, col string) table.Table { return clean.Names(t, col, col) }},
}

// Clean runs every field parser whose source column is present.
func Clean(t table.Table) table.Table {
	out := t
	for _, p := range parsers {
		if !out.Has(p.column) {
			continue
		}
		out = p.apply(out, p.column)
	}
	return out
}

// Renames maps upstream names to the persisted schema.
var Renames = map[string]string{
	"name":   "game_name",
	"rating": "user_rating",
}

// Finalize renames upstream columns and stores identifiers as integers.
func Finalize(t table.Table) table.Table {
	out := t.Clone()
	for _, from := range []string{"name", "rating"} {
		out.RenameColumn(from, Renames[from])
	}
	for _, r := range out.Rows {
		if id, ok := table.AnyInt64(r[IDColumn]); ok {
			r[IDColumn] = id
		}
		if n, ok := table.AnyInt64(r["ratings_count"]); ok {
			r["ratings_count"] = n
		}
	}
	return out
}

// Features holds each indicator table by name, in build order.
type Features struct {
	Names  []string
	Tables map[string]table.Table
}

func (f *Features) add(name string, t table.Table) {
	if f.Tables == nil {
		f.Tables = map[string]table.Table{}
	}
	f.Names = append(f.Names, name)
	f.Tables[name] = t
}

func (f Features) Ordered() []table.Table {
	out := make([]table.Table, len(f.Names))
	for i, n := range f.Names {
		out[i] = f.Tables[n]
	}
	return out
}

// BuildFeatures runs every flag generator whose source column is present.
// A rating column that does not coerce to float fails the whole call.
func BuildFeatures(games table.Table, keys flags.Keys) (Features, error) {
	var f Features
	if games.Has(flags.PlatformsColumn) {
		f.add("platform_flags", flags.PlatformFamilies(games, keys))
		f.add("multi_platform", flags.MultiPlatform(games, keys))
	}
	if games.Has(flags.GenresColumn) {
		f.add("genre_flags", flags.Genres(games, keys))
	}
	if games.Has(flags.StoresColumn) {
		f.add("store_indicators", flags.Stores(games, keys))
	}
	if games.Has(flags.RatingColumn) {
		hr, err := flags.HighRating(games, keys)
		if err != nil {
			return Features{}, fmt.Errorf("high rating flag: %w", err)
		}
		f.add("high_rating", hr)
	}
	if games.Has(flags.TagsColumn) {
		f.add("multiplayer", flags.Multiplayer(games, keys, flags.TagsColumn))
		f.add("tag_indicators", flags.Tags(games, keys))
	}
	if games.Has(flags.ESRBColumn) {
		f.add("esrb_indicators", flags.ESRB(games, keys))
	}
	return f, nil
}

// Inputs are the raw exports. Details may be empty.
type Inputs struct {
	List    table.Table
	Details table.Table
}

type Result struct {
	Games    table.Table
	Features Features
	// Duplicates counts list rows dropped for repeating a rawg_id.
	Duplicates int
}

// Run cleans both exports, merges them, derives the indicator tables and
// joins them onto the games table by rawg_id.
func Run(in Inputs) (Result, error) {
	list, dropped := table.DedupeOnKey(in.List, IDColumn)
	if dropped > 0 {
		slog.Warn("dropped duplicate list rows", "key", IDColumn, "rows", dropped)
	}
	list = Clean(list)
	slog.Info("cleaned list export", "rows", list.Len(), "columns", len(list.Columns))

	games := list
	if len(in.Details.Columns) > 0 {
		details := Clean(in.Details)
		slog.Info("cleaned details export", "rows", details.Len(), "columns", len(details.Columns))
		games = merge.Games(list, details, IDColumn)
		slog.Info("merged exports", "rows", games.Len(), "columns", len(games.Columns))
	}
	games = Finalize(games)

	features, err := BuildFeatures(games, flags.DefaultKeys)
	if err != nil {
		return Result{}, err
	}
	for _, name := range features.Names {
		slog.Debug("built indicator table", "table", name, "columns", len(features.Tables[name].Columns)-2)
	}

	return Result{
		Games:      table.JoinOnKey(games, IDColumn, features.Ordered()...),
		Features:   features,
		Duplicates: dropped,
	}, nil
}
