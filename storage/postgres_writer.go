package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"icity-exporter/models"
)

// PostgresWriter mirrors exported entries into PostgreSQL for ad-hoc
// querying. It is optional; the file outputs are the canonical export.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema
// migrations, and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS entries (
			id             TEXT PRIMARY KEY,
			date_label     TEXT NOT NULL DEFAULT '',
			datetime_iso   TEXT NOT NULL DEFAULT '',
			datetime_local TEXT NOT NULL DEFAULT '',
			time_label     TEXT NOT NULL DEFAULT '',
			title          TEXT NOT NULL DEFAULT '',
			body           TEXT NOT NULL DEFAULT '',
			location       TEXT NOT NULL DEFAULT '',
			source_url     TEXT NOT NULL,
			exported_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_entries_datetime_local ON entries(datetime_local);
		CREATE INDEX IF NOT EXISTS idx_entries_location       ON entries(location);
	`)
	return err
}

// Clear deletes all previously mirrored entries.
func (pw *PostgresWriter) Clear() error {
	_, err := pw.db.Exec("DELETE FROM entries")
	if err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}
	return nil
}

// Write batch-inserts the full deduplicated entry set, clearing the
// previous run's rows first so the table mirrors the export exactly.
func (pw *PostgresWriter) Write(entries []*models.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	if err := pw.Clear(); err != nil {
		return err
	}

	const batchSize = 50
	for i := 0; i < len(entries); i += batchSize {
		end := i + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		if err := pw.insertBatch(entries[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []*models.Entry) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*9)

	for idx, e := range batch {
		base := idx * 9
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9))
		valueArgs = append(valueArgs,
			e.ID, e.DateLabel, e.DatetimeISO, e.DatetimeLocal, e.TimeLabel,
			e.Title, e.Text, e.Location, e.SourceURL)
	}

	query := fmt.Sprintf(`
		INSERT INTO entries (id, date_label, datetime_iso, datetime_local, time_label, title, body, location, source_url)
		VALUES %s
		ON CONFLICT (id) DO NOTHING
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	return err
}

// Close closes the database connection.
func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
