package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"housing-pipeline/models"
)

const (
	insertBatchSize = 50
	listingParams   = 17
)

// PostgresWriter persists cleaned listings to PostgreSQL. Every row is tagged
// with the id of the run that produced it; earlier runs are left in place.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	pw, err := newPostgresWriter(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return pw, nil
}

func newPostgresWriter(db *sql.DB) (*PostgresWriter, error) {
	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			id            SERIAL PRIMARY KEY,
			run_id        UUID          NOT NULL,
			title         TEXT          NOT NULL,
			community     TEXT          NOT NULL DEFAULT '',
			district      TEXT          NOT NULL,
			sub_district  TEXT          NOT NULL DEFAULT '',
			total_price   NUMERIC(12,2) NOT NULL,
			unit_price    NUMERIC(12,2) NOT NULL,
			area          NUMERIC(10,2) NOT NULL,
			layout        TEXT          NOT NULL DEFAULT '',
			orientation   TEXT          NOT NULL DEFAULT '',
			decoration    TEXT          NOT NULL DEFAULT '',
			floor         TEXT          NOT NULL DEFAULT '',
			year_built    INTEGER       NOT NULL,
			building_type TEXT          NOT NULL DEFAULT '',
			followers     INTEGER       NOT NULL DEFAULT 0,
			elevator      BOOLEAN       NOT NULL DEFAULT FALSE,
			room_count    INTEGER       NOT NULL,
			created_at    TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_listings_run_id     ON listings(run_id);
		CREATE INDEX IF NOT EXISTS idx_listings_district   ON listings(district);
		CREATE INDEX IF NOT EXISTS idx_listings_unit_price ON listings(unit_price);
	`)
	return err
}

// Write inserts every listing of one run in a single transaction.
func (pw *PostgresWriter) Write(runID uuid.UUID, listings []models.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	tx, err := pw.db.Begin()
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	for i := 0; i < len(listings); i += insertBatchSize {
		end := min(i+insertBatchSize, len(listings))
		if err := insertBatch(tx, runID, listings[i:end]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("postgres: insert rows %d-%d: %w", i, end-1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

func insertBatch(tx *sql.Tx, runID uuid.UUID, batch []models.Listing) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*listingParams)

	for idx, l := range batch {
		base := idx * listingParams
		placeholders := make([]string, listingParams)
		for p := range placeholders {
			placeholders[p] = fmt.Sprintf("$%d", base+p+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			runID, l.Title, l.Community, l.District, l.SubDistrict,
			l.TotalPrice, l.UnitPrice, l.Area, l.Layout, l.Orientation,
			l.Decoration, l.Floor, l.YearBuilt, l.BuildingType, l.Followers,
			l.Elevator, l.RoomCount)
	}

	query := fmt.Sprintf(`
		INSERT INTO listings (run_id, title, community, district, sub_district,
			total_price, unit_price, area, layout, orientation,
			decoration, floor, year_built, building_type, followers,
			elevator, room_count)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	_, err := tx.Exec(query, valueArgs...)
	return err
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchRun retrieves the listings stored by one run, in insertion order.
func (pw *PostgresWriter) FetchRun(runID uuid.UUID) ([]models.Listing, error) {
	rows, err := pw.db.Query(`
		SELECT title, community, district, sub_district, total_price, unit_price, area,
			layout, orientation, decoration, floor, year_built, building_type,
			followers, elevator, room_count
		FROM listings
		WHERE run_id = $1
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch run %s: %w", runID, err)
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		var l models.Listing
		if err := rows.Scan(
			&l.Title, &l.Community, &l.District, &l.SubDistrict, &l.TotalPrice, &l.UnitPrice, &l.Area,
			&l.Layout, &l.Orientation, &l.Decoration, &l.Floor, &l.YearBuilt, &l.BuildingType,
			&l.Followers, &l.Elevator, &l.RoomCount,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// LatestRun returns the id of the most recently written run.
func (pw *PostgresWriter) LatestRun() (uuid.UUID, error) {
	var runID uuid.UUID
	err := pw.db.QueryRow(`
		SELECT run_id FROM listings ORDER BY id DESC LIMIT 1
	`).Scan(&runID)
	if err == sql.ErrNoRows {
		return uuid.Nil, fmt.Errorf("postgres: no runs stored: %w", models.ErrEmptyBatch)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("postgres: latest run: %w", err)
	}
	return runID, nil
}
