package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	log "github.com/sirupsen/logrus"

	// PostgreSQL driver for the optional server deployment.
	_ "github.com/lib/pq"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Supported driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store holds the database handle and provides access to repositories.
type Store struct {
	db      *sql.DB
	drv     *entsql.Driver
	dialect string
}

// Open creates a new Store for the given driver ("sqlite" or "postgres")
// and DSN. It applies SQLite pragmas where relevant and runs auto-migration.
func Open(driver, dsn string) (*Store, error) {
	var d string
	switch driver {
	case DriverSQLite:
		d = dialect.SQLite
	case DriverPostgres:
		d = dialect.Postgres
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if d == dialect.SQLite {
		if err := applyPragmas(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragmas: %w", err)
		}
	}

	drv := entsql.OpenDB(d, db)
	if err := migrate(context.Background(), drv); err != nil {
		drv.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	log.WithFields(log.Fields{"driver": driver}).Debug("store opened")
	return &Store{db: db, drv: drv, dialect: d}, nil
}

// OpenSQLite is shorthand for Open(DriverSQLite, dsn).
func OpenSQLite(dsn string) (*Store, error) {
	return Open(DriverSQLite, dsn)
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the ent dialect name in use.
func (s *Store) Dialect() string {
	return s.dialect
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

func (s *Store) conn() conn {
	return conn{db: s.db, dialect: s.dialect}
}

// ContentRepo returns the static content repository.
func (s *Store) ContentRepo() *ContentStore {
	return &ContentStore{conn: s.conn()}
}

// ProgressRepo returns the concept/skill progress repository.
func (s *Store) ProgressRepo() *ProgressStore {
	return &ProgressStore{conn: s.conn()}
}

// StatsRepo returns the user stats and daily ledger repository.
func (s *Store) StatsRepo() *StatsStore {
	return &StatsStore{conn: s.conn()}
}

// PlacementRepo returns the placement session repository.
func (s *Store) PlacementRepo() *PlacementStore {
	return &PlacementStore{conn: s.conn()}
}

// ChallengeRepo returns the weekly challenge repository.
func (s *Store) ChallengeRepo() *ChallengeStore {
	return &ChallengeStore{conn: s.conn()}
}

// EventRepo returns the answer event log.
func (s *Store) EventRepo() *EventStore {
	return &EventStore{conn: s.conn()}
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. LINGUO_DB environment variable
// 2. $XDG_DATA_HOME/linguo/linguo.db
// 3. ~/.local/share/linguo/linguo.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("LINGUO_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "linguo", "linguo.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
