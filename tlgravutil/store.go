/*
Copyright © 2018 the TLGrav authors.
This file is part of TLGrav.

TLGrav is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

TLGrav is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with TLGrav.  If not, see <http://www.gnu.org/licenses/>.
*/

package tlgravutil

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/spatialmodel/tlgrav"
	_ "modernc.org/sqlite"
)

// ResultsStore keeps the responses of evaluation runs in a SQLite
// database.
type ResultsStore struct {
	conn *sqlx.DB
}

// StoredRun describes one stored evaluation run.
type StoredRun struct {
	ID        string    `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	Method    string    `db:"method"`
	Phases    string    `db:"phases"`
}

// StoredResponse is a response as it is kept in the database.
type StoredResponse struct {
	RunID    string          `db:"run_id"`
	Station  string          `db:"station"`
	Base     string          `db:"base"`
	Monitor  string          `db:"monitor"`
	X        float64         `db:"x"`
	Y        float64         `db:"y"`
	Depth    float64         `db:"depth"`
	Oil      float64         `db:"oil"`
	Gas      float64         `db:"gas"`
	Water    float64         `db:"water"`
	Total    float64         `db:"total"`
	Observed sql.NullFloat64 `db:"observed"`
}

// OpenResultsStore opens or creates the database at path.
func OpenResultsStore(path string) (*ResultsStore, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("tlgravutil: opening results database: %w", err)
	}
	s := &ResultsStore{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("tlgravutil: migrating results database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *ResultsStore) Close() error {
	return s.conn.Close()
}

func (s *ResultsStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMP NOT NULL,
		method TEXT NOT NULL,
		phases TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS responses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		station TEXT NOT NULL,
		base TEXT NOT NULL,
		monitor TEXT NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL,
		depth REAL NOT NULL,
		oil REAL NOT NULL,
		gas REAL NOT NULL,
		water REAL NOT NULL,
		total REAL NOT NULL,
		observed REAL
	);

	CREATE INDEX IF NOT EXISTS idx_responses_run ON responses(run_id);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// SaveRun stores results under a new run and returns the run.
func (s *ResultsStore) SaveRun(m tlgrav.Method, mask tlgrav.Phase, results []Result) (*StoredRun, error) {
	run := &StoredRun{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Method:    m.String(),
		Phases:    mask.String(),
	}

	tx, err := s.conn.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.NamedExec(`INSERT INTO runs (id, created_at, method, phases)
		VALUES (:id, :created_at, :method, :phases)`, run); err != nil {
		return nil, fmt.Errorf("tlgravutil: saving run: %w", err)
	}

	stmt, err := tx.Preparex(`INSERT INTO responses
		(run_id, station, base, monitor, x, y, depth, oil, gas, water, total, observed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	for _, r := range results {
		observed := sql.NullFloat64{Float64: r.Observed, Valid: !math.IsNaN(r.Observed)}
		if _, err := stmt.Exec(run.ID, r.Name, r.Base, r.Monitor, r.X, r.Y, r.Depth,
			r.Phase[tlgrav.Oil], r.Phase[tlgrav.Gas], r.Phase[tlgrav.Water], r.Total(), observed); err != nil {
			return nil, fmt.Errorf("tlgravutil: saving response at station %s: %w", r.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return run, nil
}

// Runs returns the stored runs, oldest first.
func (s *ResultsStore) Runs() ([]StoredRun, error) {
	var runs []StoredRun
	err := s.conn.Select(&runs, "SELECT id, created_at, method, phases FROM runs ORDER BY created_at, id")
	return runs, err
}

// Responses returns the responses stored for run id, in the order
// they were saved.
func (s *ResultsStore) Responses(id string) ([]StoredResponse, error) {
	var o []StoredResponse
	err := s.conn.Select(&o, `SELECT run_id, station, base, monitor, x, y, depth,
		oil, gas, water, total, observed FROM responses WHERE run_id = ? ORDER BY id`, id)
	return o, err
}
