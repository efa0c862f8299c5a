package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gamefeatures/internal/configutil"
	"gamefeatures/internal/logging"
	"gamefeatures/internal/server"
	"gamefeatures/internal/store"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type Config struct {
	DB               string `json:"db"`
	Table            string `json:"table"`
	IDColumn         string `json:"id_column"`
	Addr             string `json:"addr"`
	CacheSize        int    `json:"cache_size"`
	SitemapChunkSize int    `json:"sitemap_chunk_size"`
	LogLevel         string `json:"log_level"`
}

const defaultAddr = "127.0.0.1:18745"

var (
	configPath string
	verbose    bool
	flagCfg    Config
)

var rootCmd = &cobra.Command{
	Use:   "games-server --db <path/to/games.sqlite>",
	Short: "Serves the processed games table as a read-only JSON API.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := configutil.ReadOrDefault(configPath, Config{})
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		applyEnv(&cfg)
		applyFlags(cmd, &cfg)
		logging.Init(cfg.LogLevel, verbose)
		if cfg.DB == "" {
			return errors.New("missing --db")
		}
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&configPath, "config", "server.json5", "Config file, merged with its .local variant")
	f.BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	f.StringVar(&flagCfg.DB, "db", "", "Path to sqlite database")
	f.StringVar(&flagCfg.Table, "table", "games", "Table holding the games")
	f.StringVar(&flagCfg.IDColumn, "id", "rawg_id", "Unique id column used for lookup")
	f.StringVar(&flagCfg.Addr, "addr", defaultAddr, "HTTP listen address")
	f.IntVar(&flagCfg.CacheSize, "cache-size", server.DefaultCacheSize, "Max cached game lookups")
	f.IntVar(&flagCfg.SitemapChunkSize, "sitemap-chunk-size", server.DefaultSitemapChunkSize, "Max game URLs per sitemap file (capped at 50000)")
}

// applyEnv fills unset values from GAMES_* variables (a .env file is loaded
// first).
func applyEnv(cfg *Config) {
	if cfg.DB == "" {
		cfg.DB = configutil.EnvString("GAMES_DB", "")
	}
	if cfg.Addr == "" {
		cfg.Addr = configutil.EnvString("GAMES_ADDR", "")
	}
	if cfg.CacheSize == 0 {
		cfg.CacheSize = configutil.EnvInt("GAMES_CACHE_SIZE", 0)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = configutil.EnvString("GAMES_LOG_LEVEL", "info")
	}
}

func applyFlags(cmd *cobra.Command, cfg *Config) {
	pick := func(name string, dst *string, v string) {
		if cmd.Flags().Changed(name) || *dst == "" {
			*dst = v
		}
	}
	pick("db", &cfg.DB, flagCfg.DB)
	pick("table", &cfg.Table, flagCfg.Table)
	pick("id", &cfg.IDColumn, flagCfg.IDColumn)
	pick("addr", &cfg.Addr, flagCfg.Addr)
	if cmd.Flags().Changed("cache-size") || cfg.CacheSize == 0 {
		cfg.CacheSize = flagCfg.CacheSize
	}
	if cmd.Flags().Changed("sitemap-chunk-size") || cfg.SitemapChunkSize == 0 {
		cfg.SitemapChunkSize = flagCfg.SitemapChunkSize
	}
}

func serve(ctx context.Context, cfg Config) error {
	games, err := store.Open(ctx, cfg.DB, cfg.Table, cfg.IDColumn)
	if err != nil {
		return err
	}
	defer games.Close()

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: server.New(games, server.Options{
			CacheSize:        cfg.CacheSize,
			SitemapChunkSize: cfg.SitemapChunkSize,
		}).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("games-server listening", "addr", cfg.Addr, "table", cfg.Table, "id", cfg.IDColumn)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
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
