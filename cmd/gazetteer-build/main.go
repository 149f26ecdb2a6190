// Command gazetteer-build runs the gazetteer ingestion pipeline over a
// set of Geonames source files and writes the resulting name index as
// JSON. It can optionally mirror the built index into PostgreSQL and
// flush stale entries from a Redis lookup cache.
//
// Usage:
//
//	gazetteer-build --data-dir ./data --out index.json
//	gazetteer-build --data-dir ./data --out index.json --pg-dsn postgres://...
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/geonames/gazetteer/internal/gazetteer"
	"github.com/geonames/gazetteer/internal/gazetteer/gazcache"
	"github.com/geonames/gazetteer/internal/gazetteer/gazpg"
)

var (
	dataDir  string
	outPath  string
	pgDSN    string
	redisURL string
	verbose  bool
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "gazetteer-build",
		Short: "Build the gazetteer name index from Geonames source files",
		Long: `Build the gazetteer name index from a directory of Geonames source files.

This command:
  1. Reads countryInfo.txt, admin1Codes.txt, admin2Codes.txt and cities5000.txt
  2. Optionally reads alt_wiki_names.json and estimated_importance.json
  3. Runs the multi-phase ingestion pipeline
  4. Writes the resulting name index as a single JSON document
  5. Optionally mirrors the index into PostgreSQL and flushes a Redis cache`,
		RunE: runBuild,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	rootCmd.Flags().StringVar(&dataDir, "data-dir", ".", "directory containing the Geonames source files")
	rootCmd.Flags().StringVar(&outPath, "out", "gazetteer_index.json", "path to write the name index JSON document")
	rootCmd.Flags().StringVar(&pgDSN, "pg-dsn", "", "optional PostgreSQL DSN to mirror the built index into (defaults to DATABASE_URL)")
	rootCmd.Flags().StringVar(&redisURL, "redis-url", "", "optional Redis URL to flush stale lookup results from after a rebuild")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	start := time.Now()

	fmt.Println()
	fmt.Println("Gazetteer Index Builder")
	fmt.Println("=======================")
	fmt.Println()

	fmt.Println("[1/4] Opening source files...")
	stepStart := time.Now()
	files, err := openSourceFiles(dataDir)
	if err != nil {
		return fmt.Errorf("open source files: %w", err)
	}
	defer files.Close()
	fmt.Printf("      Complete in %s\n\n", time.Since(stepStart))

	fmt.Println("[2/4] Running ingestion pipeline...")
	stepStart = time.Now()
	idx, err := gazetteer.Build(files.Inputs(), slog.Default())
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	fmt.Printf("      Indexed %s locations in %s\n\n", humanize.Comma(int64(idx.Len())), time.Since(stepStart))

	fmt.Println("[3/4] Writing name index JSON...")
	stepStart = time.Now()
	if err := writeIndexFile(idx, outPath); err != nil {
		return fmt.Errorf("write index file: %w", err)
	}
	fmt.Printf("      Wrote %s in %s\n\n", outPath, time.Since(stepStart))

	fmt.Println("[4/4] Optional export/cache steps...")
	stepStart = time.Now()
	if err := maybeExportToPostgres(ctx, idx); err != nil {
		return fmt.Errorf("export to postgres: %w", err)
	}
	if err := maybeFlushCache(ctx); err != nil {
		return fmt.Errorf("flush cache: %w", err)
	}
	fmt.Printf("      Complete in %s\n\n", time.Since(stepStart))

	fmt.Printf("Done in %s\n", time.Since(start))
	return nil
}

func maybeExportToPostgres(ctx context.Context, idx *gazetteer.Index) error {
	dsn := pgDSN
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		slog.Info("skipping postgres export: no --pg-dsn or DATABASE_URL set")
		return nil
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	return gazpg.Export(ctx, pool, idx, slog.Default())
}

func maybeFlushCache(ctx context.Context) error {
	url := redisURL
	if url == "" {
		url = os.Getenv("REDIS_URL")
	}
	if url == "" {
		slog.Info("skipping cache flush: no --redis-url or REDIS_URL set")
		return nil
	}

	cache, err := gazcache.NewWithURL(url)
	if err != nil {
		slog.Warn("could not connect to redis, skipping cache flush", "error", err)
		return nil
	}
	defer cache.Close()

	return cache.Flush(ctx)
}

func writeIndexFile(idx *gazetteer.Index, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return idx.WriteNameIndexJSON(f)
}
