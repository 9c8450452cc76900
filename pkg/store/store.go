// Package store keeps the outcomes of pruning runs in a SQLite database.
package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stringchem/netprune/pkg/bitstring"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

var pragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 5000",
}

var ErrRunNotFound = errors.New("run not found")

const (
	KindMinFlux = "minflux"
	KindSample  = "sample"
)

// listSeparator joins metabolite and reaction IDs within one column. IDs
// never contain line breaks.
const listSeparator = "\n"

type Run struct {
	ID        string
	CreatedAt time.Time
	Kind      string
	Network   string
	Digest    string
	Reference []string
	Oracle    string
	Epsilon   float64
	Seed      uint64
	Reps      int
}

// Outcome is one row of a run: a distinct random outcome, the minimum flux
// outcome or the result of one minimum flux trial.
type Outcome struct {
	Bitstring   bitstring.Bitstring
	Occurrences int
	Reactions   int
	Method      string
	Inputs      []string
	Biomass     []string
}

type DB struct {
	conn *sql.DB
	path string
}

// DefaultPath returns the database location below the XDG data home.
func DefaultPath() (string, error) {
	return xdg.DataFile(filepath.Join("netprune", "runs.db"))
}

func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	// pragmas are per connection
	conn.SetMaxOpenConns(1)

	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("applying pragma %q: %w", pragma, err)
		}
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &DB{conn: conn, path: dbPath}, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Path() string {
	return db.path
}

// SaveRun stores a run with its outcomes in one transaction. A run without
// ID gets a fresh UUID, which is returned.
func (db *DB) SaveRun(run *Run, outcomes []Outcome) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return "", fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (id, created_at, kind, network, reference_digest, reference, oracle, epsilon, seed, reps)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UnixMilli(), run.Kind, run.Network, run.Digest,
		strings.Join(run.Reference, listSeparator), run.Oracle, run.Epsilon, int64(run.Seed), run.Reps,
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	for i, o := range outcomes {
		_, err := tx.Exec(
			`INSERT INTO outcomes (run_id, position, bitstring, occurrences, rxn_count, method, inputs, biomass)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, o.Bitstring.String(), o.Occurrences, o.Reactions, o.Method,
			strings.Join(o.Inputs, listSeparator), strings.Join(o.Biomass, listSeparator),
		)
		if err != nil {
			return "", fmt.Errorf("inserting outcome %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	logrus.Infof("Stored run %s with %d outcomes in %s.", run.ID, len(outcomes), db.path)
	return run.ID, nil
}

const runColumns = `id, created_at, kind, network, reference_digest, reference, oracle, epsilon, seed, reps`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run       Run
		createdAt int64
		reference string
		seed      int64
	)
	err := row.Scan(&run.ID, &createdAt, &run.Kind, &run.Network, &run.Digest, &reference, &run.Oracle, &run.Epsilon, &seed, &run.Reps)
	if err != nil {
		return nil, err
	}
	run.CreatedAt = time.UnixMilli(createdAt)
	run.Reference = split(reference)
	run.Seed = uint64(seed)
	return &run, nil
}

func (db *DB) Run(id string) (*Run, error) {
	run, err := scanRun(db.conn.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying run: %w", err)
	}
	return run, nil
}

// Runs returns all runs, oldest first.
func (db *DB) Runs() ([]*Run, error) {
	rows, err := db.conn.Query(`SELECT ` + runColumns + ` FROM runs ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	runs := []*Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Outcomes returns the outcomes of a run in the order they were saved.
func (db *DB) Outcomes(runID string) ([]Outcome, error) {
	rows, err := db.conn.Query(
		`SELECT bitstring, occurrences, rxn_count, method, inputs, biomass FROM outcomes WHERE run_id = ? ORDER BY position`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying outcomes: %w", err)
	}
	defer rows.Close()

	outcomes := []Outcome{}
	for rows.Next() {
		var (
			o       Outcome
			b       string
			inputs  string
			biomass string
		)
		if err := rows.Scan(&b, &o.Occurrences, &o.Reactions, &o.Method, &inputs, &biomass); err != nil {
			return nil, fmt.Errorf("scanning outcome: %w", err)
		}
		o.Bitstring = bitstring.Bitstring(b)
		o.Inputs = split(inputs)
		o.Biomass = split(biomass)
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

// Occurrences sums up how often a bitstring was seen across all runs over
// the reference with the given digest.
func (db *DB) Occurrences(digest string, b bitstring.Bitstring) (int, error) {
	var count sql.NullInt64
	err := db.conn.QueryRow(
		`SELECT SUM(o.occurrences) FROM outcomes o JOIN runs r ON r.id = o.run_id
		 WHERE r.reference_digest = ? AND o.bitstring = ?`,
		digest, b.String(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("querying occurrences: %w", err)
	}
	return int(count.Int64), nil
}

func split(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, listSeparator)
}
