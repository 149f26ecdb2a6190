package gazpg

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// IndexDef defines an index to be created on the gazetteer export
// tables.
type IndexDef struct {
	Name     string
	SQL      string
	Estimate string
}

// Indexes returns the canonical list of indexes for the gazetteer export
// tables. This is the single source of truth used by both CreateIndexes
// and DropIndexes.
func Indexes() []IndexDef {
	return []IndexDef{
		{"idx_gazetteer_names_name", "CREATE INDEX idx_gazetteer_names_name ON gazetteer_names(name)", "~10 sec"},
		{"idx_gazetteer_names_location", "CREATE INDEX idx_gazetteer_names_location ON gazetteer_names(location_id)", "~10 sec"},
		{"idx_gazetteer_locations_resolution", "CREATE INDEX idx_gazetteer_locations_resolution ON gazetteer_locations(resolution)", "~10 sec"},
		{"idx_gazetteer_locations_country", "CREATE INDEX idx_gazetteer_locations_country ON gazetteer_locations(country_id)", "~10 sec"},
		{"idx_gazetteer_locations_admin1", "CREATE INDEX idx_gazetteer_locations_admin1 ON gazetteer_locations(admin_level_1_id)", "~10 sec"},
		{"idx_gazetteer_locations_admin2", "CREATE INDEX idx_gazetteer_locations_admin2 ON gazetteer_locations(admin_level_2_id)", "~10 sec"},
		{"idx_gazetteer_locations_population", "CREATE INDEX idx_gazetteer_locations_population ON gazetteer_locations(population DESC)", "~10 sec"},
	}
}

// IndexNames returns just the index names, for dropping.
func IndexNames() []string {
	idxs := Indexes()
	names := make([]string, len(idxs))
	for i, idx := range idxs {
		names[i] = idx.Name
	}
	return names
}

// DropIndexes drops all gazetteer export indexes.
func DropIndexes(ctx context.Context, pool *pgxpool.Pool) error {
	for _, name := range IndexNames() {
		if _, err := pool.Exec(ctx, fmt.Sprintf("DROP INDEX IF EXISTS %s", name)); err != nil {
			slog.Warn("failed to drop index", "index", name, "error", err)
		}
	}
	return nil
}

// CreateIndexes creates all gazetteer export indexes, logging progress
// through logger if non-nil.
func CreateIndexes(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	for _, idx := range Indexes() {
		if logger != nil {
			logger.Info("creating index", "name", idx.Name, "estimate", idx.Estimate)
		}
		if _, err := pool.Exec(ctx, idx.SQL); err != nil {
			return fmt.Errorf("create index %s: %w", idx.Name, err)
		}
	}
	return nil
}
