package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gamefeatures/internal/configutil"
	"gamefeatures/internal/export"
	"gamefeatures/internal/ingest"
	"gamefeatures/internal/logging"
	"gamefeatures/internal/pipeline"
	"gamefeatures/internal/table"

	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type Config struct {
	List          string `json:"list"`
	Details       string `json:"details"`
	OutDir        string `json:"out_dir"`
	SQLite        string `json:"sqlite"`
	CSV           string `json:"csv"`
	Profile       string `json:"profile"`
	Table         string `json:"table"`
	Limit         int    `json:"limit"`
	FeatureTables bool   `json:"feature_tables"`
	LogLevel      string `json:"log_level"`
}

var defaults = Config{
	List:     "rawg_games_list.csv",
	OutDir:   "outputs",
	Table:    "games",
	LogLevel: "info",
}

var (
	configPath string
	verbose    bool
	flagCfg    Config
)

var rootCmd = &cobra.Command{
	Use:   "process-rawg-games [--list <path>] [--details <path>]",
	Short: "Cleans RAWG exports, derives indicator features and writes sqlite, csv and a profile.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := configutil.ReadOrDefault(configPath, defaults)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		applyFlags(cmd, &cfg)
		logging.Init(cfg.LogLevel, verbose)
		return run(cmd.Context(), cfg)
	},
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&configPath, "config", "process.json5", "Config file, merged with its .local variant")
	f.BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	f.StringVar(&flagCfg.List, "list", defaults.List, "List export (CSV or JSON Lines)")
	f.StringVar(&flagCfg.Details, "details", "", "Optional details export (CSV or JSON Lines)")
	f.StringVar(&flagCfg.OutDir, "out-dir", defaults.OutDir, "Output directory")
	f.StringVar(&flagCfg.SQLite, "sqlite", "", "SQLite output path (default <out-dir>/rawg_games.sqlite)")
	f.StringVar(&flagCfg.CSV, "csv", "", "CSV output path (default <out-dir>/rawg_games_cleaned.csv)")
	f.StringVar(&flagCfg.Profile, "profile", "", "Profile markdown path (default <out-dir>/rawg_games_profile.md)")
	f.StringVar(&flagCfg.Table, "table", defaults.Table, "SQLite table name")
	f.IntVar(&flagCfg.Limit, "limit", 0, "Optional row limit per input (0 = all rows)")
	f.BoolVar(&flagCfg.FeatureTables, "feature-tables", false, "Also store every indicator table in the sqlite file")
}

// applyFlags lets explicitly set flags win over the config file.
func applyFlags(cmd *cobra.Command, cfg *Config) {
	set := func(name string, dst *string, v string) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("list", &cfg.List, flagCfg.List)
	set("details", &cfg.Details, flagCfg.Details)
	set("out-dir", &cfg.OutDir, flagCfg.OutDir)
	set("sqlite", &cfg.SQLite, flagCfg.SQLite)
	set("csv", &cfg.CSV, flagCfg.CSV)
	set("profile", &cfg.Profile, flagCfg.Profile)
	set("table", &cfg.Table, flagCfg.Table)
	if cmd.Flags().Changed("limit") {
		cfg.Limit = flagCfg.Limit
	}
	if cmd.Flags().Changed("feature-tables") {
		cfg.FeatureTables = flagCfg.FeatureTables
	}

	if cfg.SQLite == "" {
		cfg.SQLite = filepath.Join(cfg.OutDir, "rawg_games.sqlite")
	}
	if cfg.CSV == "" {
		cfg.CSV = filepath.Join(cfg.OutDir, "rawg_games_cleaned.csv")
	}
	if cfg.Profile == "" {
		cfg.Profile = filepath.Join(cfg.OutDir, "rawg_games_profile.md")
	}
}

func run(ctx context.Context, cfg Config) error {
	list, listStats, err := ingest.Load(cfg.List, cfg.Limit)
	if err != nil {
		return fmt.Errorf("load list export: %w", err)
	}
	sources := []export.SourceStats{source(cfg.List, listStats)}

	var details table.Table
	if cfg.Details != "" {
		var stats ingest.Stats
		details, stats, err = ingest.Load(cfg.Details, cfg.Limit)
		if err != nil {
			return fmt.Errorf("load details export: %w", err)
		}
		sources = append(sources, source(cfg.Details, stats))
	}

	res, err := pipeline.Run(pipeline.Inputs{List: list, Details: details})
	if err != nil {
		return err
	}
	err = pipeline.Write(ctx, res, pipeline.Outputs{
		SQLite:        cfg.SQLite,
		CSV:           cfg.CSV,
		Profile:       cfg.Profile,
		Table:         cfg.Table,
		FeatureTables: cfg.FeatureTables,
	}, sources)
	if err != nil {
		return err
	}

	printSummary(cfg, sources, res)
	return nil
}

func source(path string, s ingest.Stats) export.SourceStats {
	return export.SourceStats{Name: filepath.Base(path), SourceRows: s.SourceRows, InvalidRows: s.InvalidRows}
}

func printSummary(cfg Config, sources []export.SourceStats, res pipeline.Result) {
	t := prettytable.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(prettytable.Row{"", "value"})
	for _, s := range sources {
		t.AppendRow(prettytable.Row{"rows read (" + s.Name + ")", s.SourceRows})
		if s.InvalidRows > 0 {
			t.AppendRow(prettytable.Row{"invalid rows (" + s.Name + ")", s.InvalidRows})
		}
	}
	if res.Duplicates > 0 {
		t.AppendRow(prettytable.Row{"duplicate rows dropped", res.Duplicates})
	}
	t.AppendRow(prettytable.Row{"rows written", res.Games.Len()})
	t.AppendRow(prettytable.Row{"columns written", len(res.Games.Columns)})
	t.AppendRow(prettytable.Row{"indicator tables", len(res.Features.Names)})
	t.AppendSeparator()
	t.AppendRow(prettytable.Row{"sqlite", cfg.SQLite + " (" + cfg.Table + ")"})
	t.AppendRow(prettytable.Row{"csv", cfg.CSV})
	t.AppendRow(prettytable.Row{"profile", cfg.Profile})
	t.Render()
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env", "err", err)
	}
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
