// Package gazpg mirrors a built gazetteer.Index into PostgreSQL for
// consumers that want to join gazetteer data against other SQL-resident
// tables. It is a read replica of the in-memory index, never a second
// source of truth: nothing in this package or in gazetteer reads the
// mirror back.
package gazpg

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geonames/gazetteer/internal/gazetteer"
)

const createTablesSQL = `
CREATE TABLE IF NOT EXISTS gazetteer_locations (
	id                     BIGINT PRIMARY KEY,
	resolution             TEXT NOT NULL,
	name                   TEXT NOT NULL,
	country                TEXT NOT NULL,
	country_code           TEXT NOT NULL,
	country_id             BIGINT NOT NULL,
	admin_level_1          TEXT NOT NULL DEFAULT '',
	admin_level_1_id       BIGINT NOT NULL DEFAULT 0,
	admin_level_2          TEXT NOT NULL DEFAULT '',
	admin_level_2_id       BIGINT NOT NULL DEFAULT 0,
	population             BIGINT NOT NULL DEFAULT 0,
	latitude               DOUBLE PRECISION NOT NULL DEFAULT 0,
	longitude              DOUBLE PRECISION NOT NULL DEFAULT 0,
	estimated_importance   DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS gazetteer_names (
	name        TEXT NOT NULL,
	location_id BIGINT NOT NULL REFERENCES gazetteer_locations(id)
);
`

// Export recreates the gazetteer_locations/gazetteer_names tables and
// bulk-loads them from idx using pgx.CopyFrom.
func Export(ctx context.Context, pool *pgxpool.Pool, idx *gazetteer.Index, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS gazetteer_names"); err != nil {
		return fmt.Errorf("drop gazetteer_names: %w", err)
	}
	if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS gazetteer_locations"); err != nil {
		return fmt.Errorf("drop gazetteer_locations: %w", err)
	}
	if _, err := pool.Exec(ctx, createTablesSQL); err != nil {
		return fmt.Errorf("create gazetteer tables: %w", err)
	}

	locationRows, nameRows := idx.ExportRows()

	locColumns := []string{
		"id", "resolution", "name", "country", "country_code", "country_id",
		"admin_level_1", "admin_level_1_id", "admin_level_2", "admin_level_2_id",
		"population", "latitude", "longitude", "estimated_importance",
	}
	n, err := pool.CopyFrom(ctx, pgx.Identifier{"gazetteer_locations"}, locColumns, pgx.CopyFromRows(locationRows))
	if err != nil {
		return fmt.Errorf("copy gazetteer_locations: %w", err)
	}
	logger.Info("gazetteer export: locations loaded", "rows", n)

	nameColumns := []string{"name", "location_id"}
	n, err = pool.CopyFrom(ctx, pgx.Identifier{"gazetteer_names"}, nameColumns, pgx.CopyFromRows(nameRows))
	if err != nil {
		return fmt.Errorf("copy gazetteer_names: %w", err)
	}
	logger.Info("gazetteer export: names loaded", "rows", n)

	if err := CreateIndexes(ctx, pool, logger); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, "ANALYZE gazetteer_locations"); err != nil {
		return fmt.Errorf("analyze gazetteer_locations: %w", err)
	}
	if _, err := pool.Exec(ctx, "ANALYZE gazetteer_names"); err != nil {
		return fmt.Errorf("analyze gazetteer_names: %w", err)
	}

	return nil
}
