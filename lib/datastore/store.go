// Package datastore persists warehouse collections into sqlite.
package datastore

import (
	"context"
	"database/sql"

	"inteligente-backend/lib/warehouse"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS indicator_values (
	year INTEGER NOT NULL,
	entity_code INTEGER NOT NULL,
	indicator TEXT NOT NULL,
	dtype TEXT NOT NULL,
	value TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS indicator_values_year ON indicator_values (year);
CREATE INDEX IF NOT EXISTS indicator_values_indicator ON indicator_values (indicator);
`

// Open opens (or creates) the database at path and applies the schema.
// Use ":memory:" for tests.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(schema)
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) Store {
	return Store{db: db}
}

// Push replaces each collection's rows in a single transaction, so a
// re-run of the same extraction does not duplicate an indicator.
func (s Store) Push(ctx context.Context, collections []warehouse.Collection) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, c := range collections {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM indicator_values WHERE indicator = ?`,
			c.Indicator,
		)
		if err != nil {
			return err
		}
		for _, row := range c.Rows {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO indicator_values (year, entity_code, indicator, dtype, value)
				 VALUES (?, ?, ?, ?, ?)`,
				row.Year, row.EntityCode, c.Indicator, string(c.DataType), row.Value.String(),
			)
			if err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

type StoredRow struct {
	Year       int
	EntityCode int64
	Indicator  string
	Dtype      string
	Value      string
}

func (s Store) QueryYear(ctx context.Context, year int) ([]StoredRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT year, entity_code, indicator, dtype, value
		 FROM indicator_values WHERE year = ? ORDER BY indicator, entity_code`,
		year,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredRow
	for rows.Next() {
		var r StoredRow
		err := rows.Scan(&r.Year, &r.EntityCode, &r.Indicator, &r.Dtype, &r.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s Store) Years(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT year FROM indicator_values ORDER BY year`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		years = append(years, y)
	}
	return years, rows.Err()
}
