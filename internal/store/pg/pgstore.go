package pg

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Store bundles the SQL-backed repositories behind a single connection pool.
type Store struct {
	db *sql.DB
}

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// Users returns the user repository.
func (s *Store) Users() *UserStore { return &UserStore{db: s.db} }

// Permits returns the permit repository.
func (s *Store) Permits() *PermitStore { return &PermitStore{db: s.db} }

// Tasks returns the bot task repository.
func (s *Store) Tasks() *TaskStore { return &TaskStore{db: s.db} }

// Workflows returns the bot workflow repository.
func (s *Store) Workflows() *WorkflowStore { return &WorkflowStore{db: s.db} }

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
