// Package store persists assessment results in a SQLite database so
// repeated runs accumulate into one queryable record set.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"geopolrisk/pkg/contracts/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS record_data (
	dbid          TEXT PRIMARY KEY,
	country       TEXT NOT NULL,
	resource      TEXT NOT NULL,
	year          INTEGER NOT NULL,
	exporter      TEXT NOT NULL DEFAULT '',
	hhi           REAL NOT NULL,
	import_risk   REAL NOT NULL,
	price         REAL NOT NULL,
	country_price REAL NOT NULL DEFAULT 0,
	global_price  REAL NOT NULL DEFAULT 0,
	score         REAL NOT NULL,
	cf            REAL NOT NULL,
	updated_at    TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_record_data_country_year ON record_data(country, year);
`

// Store is a SQLite-backed sink for assessment records. Records are
// keyed by their deterministic identity, so re-running a combination
// replaces the previous row instead of duplicating it.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens or creates the results database at path and ensures the
// schema exists.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open results database: %w", err)
	}
	// modernc sqlite serializes writes itself; a single connection
	// avoids SQLITE_BUSY under concurrent upserts.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create results schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Upsert writes the records in one transaction. Existing rows with the
// same identity are overwritten.
func (s *Store) Upsert(ctx context.Context, records []domain.RiskRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO record_data
			(dbid, country, resource, year, exporter, hhi, import_risk,
			 price, country_price, global_price, score, cf, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(dbid) DO UPDATE SET
			country       = excluded.country,
			resource      = excluded.resource,
			year          = excluded.year,
			exporter      = excluded.exporter,
			hhi           = excluded.hhi,
			import_risk   = excluded.import_risk,
			price         = excluded.price,
			country_price = excluded.country_price,
			global_price  = excluded.global_price,
			score         = excluded.score,
			cf            = excluded.cf,
			updated_at    = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.ID, r.Country, r.Resource, r.Year, r.Exporter,
			r.HHI, r.ImportRisk, r.Price, r.CountryPrice, r.GlobalPrice,
			r.Score, r.CF,
		); err != nil {
			return fmt.Errorf("upsert record %s: %w", r.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	s.logger.Debug("records persisted", slog.Int("count", len(records)))
	return nil
}

// Records reads back every persisted record ordered by resource,
// country and year.
func (s *Store) Records(ctx context.Context) ([]domain.RiskRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT dbid, country, resource, year, exporter, hhi, import_risk,
		       price, country_price, global_price, score, cf
		FROM record_data
		ORDER BY resource, country, year`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []domain.RiskRecord
	for rows.Next() {
		var r domain.RiskRecord
		if err := rows.Scan(&r.ID, &r.Country, &r.Resource, &r.Year, &r.Exporter,
			&r.HHI, &r.ImportRisk, &r.Price, &r.CountryPrice, &r.GlobalPrice,
			&r.Score, &r.CF); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
