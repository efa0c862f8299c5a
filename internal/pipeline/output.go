package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gamefeatures/internal/export"
)

// Outputs names the files Write produces. Empty paths are skipped.
type Outputs struct {
	SQLite  string
	CSV     string
	Profile string
	Table   string
	// FeatureTables also stores every indicator table in the sqlite file,
	// one table per name.
	FeatureTables bool
}

// Write persists the games table and its companions.
func Write(ctx context.Context, res Result, out Outputs, sources []export.SourceStats) error {
	if out.Table == "" {
		out.Table = "games"
	}
	for _, p := range []string{out.SQLite, out.CSV, out.Profile} {
		if p == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", filepath.Dir(p), err)
		}
	}

	if out.SQLite != "" {
		err := export.WriteSQLite(ctx, out.SQLite, res.Games, export.SQLiteOptions{
			Table:   out.Table,
			Key:     IDColumn,
			Indexes: []string{"game_name", "user_rating"},
			Replace: true,
		})
		if err != nil {
			return fmt.Errorf("write sqlite: %w", err)
		}
		slog.Info("wrote sqlite", "path", out.SQLite, "table", out.Table, "rows", res.Games.Len())
		if out.FeatureTables {
			for _, name := range res.Features.Names {
				err := export.WriteSQLite(ctx, out.SQLite, res.Features.Tables[name], export.SQLiteOptions{
					Table: name,
					Key:   IDColumn,
				})
				if err != nil {
					return fmt.Errorf("write sqlite table %s: %w", name, err)
				}
			}
		}
	}

	if out.CSV != "" {
		if err := export.WriteCSV(out.CSV, res.Games); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		slog.Info("wrote csv", "path", out.CSV)
	}

	if out.Profile != "" {
		profile := export.BuildProfile(export.ProfileInput{
			Title:   "RAWG games profile",
			Sources: sources,
			Key:     IDColumn,
			Result:  res.Games,

			Deduplicated: res.Duplicates,
		})
		if err := os.WriteFile(out.Profile, []byte(profile), 0o644); err != nil {
			return fmt.Errorf("write profile: %w", err)
		}
		slog.Info("wrote profile", "path", out.Profile)
	}
	return nil
}
