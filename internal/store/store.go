// Package store is the row-store for crystallization conditions. It speaks
// database/sql to either an embedded SQLite file or a Postgres server and
// validates every row into an analysis.ConditionRecord at the boundary.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/crystaleda-cli/internal/analysis"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver
)

// Table is the name of the conditions table.
const Table = "conditions"

var (
	// ErrUnsupportedDriver is returned for drivers other than sqlite and postgres.
	ErrUnsupportedDriver = errors.New("unsupported database driver")
	// ErrDatabaseNotFound is returned when a SQLite file is opened for reading but does not exist.
	ErrDatabaseNotFound = errors.New("database not found")
)

// Config selects and locates the database.
type Config struct {
	// Driver is "sqlite" (default) or "postgres".
	Driver string
	// Path is the SQLite file path.
	Path string
	// DSN is the Postgres connection string.
	DSN string
	// Create allows a missing SQLite file to be created (import); readers leave it false.
	Create bool
}

// Store reads and writes condition records.
type Store struct {
	db      *sql.DB
	dialect dialect
}

// Open connects to the configured database and pings it.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	d, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	var dsn string
	switch d.name {
	case "sqlite":
		path := strings.TrimSpace(cfg.Path)
		if path == "" {
			return nil, fmt.Errorf("sqlite path is required")
		}
		path = filepath.Clean(path)
		if _, err := os.Stat(path); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("stat database: %w", err)
			}
			if !cfg.Create {
				return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, path)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("create database dir: %w", err)
			}
		}
		dsn = path + "?_pragma=busy_timeout(5000)"
	case "postgres":
		dsn = strings.TrimSpace(cfg.DSN)
		if dsn == "" {
			return nil, fmt.Errorf("postgres dsn is required")
		}
	}
	db, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.name, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.name, err)
	}
	return &Store{db: db, dialect: d}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the underlying handle for tests.
func (s *Store) DB() *sql.DB { return s.db }

// EnsureSchema creates the conditions table and its lookup indexes.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		s.dialect.createTable,
		`CREATE INDEX IF NOT EXISTS idx_conditions_protein ON ` + Table + ` (Protein_ID)`,
		`CREATE INDEX IF NOT EXISTS idx_conditions_precipitate ON ` + Table + ` (Standardized_Precipitate)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Insert appends records in a single transaction and returns the number written.
// Records without a protein id are skipped.
func (s *Store) Insert(ctx context.Context, records []analysis.ConditionRecord) (int, error) {
	return s.write(ctx, records, false)
}

// Replace swaps the whole table for records in a single transaction.
func (s *Store) Replace(ctx context.Context, records []analysis.ConditionRecord) (int, error) {
	return s.write(ctx, records, true)
}

func (s *Store) write(ctx context.Context, records []analysis.ConditionRecord, truncate bool) (n int, retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if truncate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+Table); err != nil {
			return 0, fmt.Errorf("clear conditions: %w", err)
		}
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+Table+` (`+columnList+`) VALUES (`+s.dialect.placeholders(1, len(columns))+`)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()
	for _, r := range records {
		if strings.TrimSpace(r.ProteinID) == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx,
			r.ProteinID,
			nullString(r.PrecipitateName),
			nullString(r.CompoundID),
			nullFloat(r.ConcentrationValue),
			nullString(r.ConcentrationUnit),
			nullFloat(r.ConcentrationConverted),
			nullString(r.PH),
			nullString(r.Sequence),
		); err != nil {
			return n, fmt.Errorf("insert row %d: %w", n+1, err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return n, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// CountConditions returns the total number of rows.
func (s *Store) CountConditions(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+Table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count conditions: %w", err)
	}
	return n, nil
}

// AllConditions returns every row in insertion order.
func (s *Store) AllConditions(ctx context.Context) ([]analysis.ConditionRecord, error) {
	return s.query(ctx, s.selectWhere(""))
}

// ConditionsByPrecipitate returns the rows whose chemical equals name exactly.
func (s *Store) ConditionsByPrecipitate(ctx context.Context, name string) ([]analysis.ConditionRecord, error) {
	return s.query(ctx, s.selectWhere(`Standardized_Precipitate = `+s.dialect.bind(1)), name)
}

// ConditionsByProtein returns the rows of one protein, matching the id
// case-insensitively after trimming.
func (s *Store) ConditionsByProtein(ctx context.Context, proteinID string) ([]analysis.ConditionRecord, error) {
	return s.query(ctx, s.selectWhere(`UPPER(Protein_ID) = UPPER(`+s.dialect.bind(1)+`)`), strings.TrimSpace(proteinID))
}

// ConditionsByProteins returns the rows of every listed protein (exact ids)
// in table order. The ids travel as one JSON array parameter so the result
// is a single ordered scan however many proteins are listed.
func (s *Store) ConditionsByProteins(ctx context.Context, proteinIDs []string) ([]analysis.ConditionRecord, error) {
	if len(proteinIDs) == 0 {
		return nil, nil
	}
	ids, err := json.Marshal(proteinIDs)
	if err != nil {
		return nil, fmt.Errorf("encode protein ids: %w", err)
	}
	return s.query(ctx, s.selectWhere(`Protein_ID IN (`+s.dialect.jsonValues(1)+`)`), string(ids))
}

func (s *Store) selectWhere(cond string) string {
	q := `SELECT ` + columnList + ` FROM ` + Table
	if cond != "" {
		q += ` WHERE ` + cond
	}
	return q + ` ORDER BY ` + s.dialect.orderColumn
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]analysis.ConditionRecord, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("select conditions: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []analysis.ConditionRecord
	raw := make([]any, len(columns))
	dest := make([]any, len(columns))
	for i := range raw {
		dest[i] = &raw[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		rec, ok := recordFromRow(raw)
		if !ok {
			continue
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conditions: %w", err)
	}
	return out, nil
}
