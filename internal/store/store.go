package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/vitrine/internal/querysql"
)

//go:embed schema.sql
var schemaSQL string

// DriverName is the database/sql driver registered by this package.
const DriverName = "sqlite3_vitrine"

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc(querysql.FoldFunc, foldValue, true)
		},
	})
}

// foldValue backs the casefold SQL function. NULL folds to "".
func foldValue(v interface{}) string {
	switch s := v.(type) {
	case string:
		return querysql.Fold(s)
	case []byte:
		return querysql.Fold(string(s))
	default:
		return ""
	}
}

// ErrUnavailable marks failures where the database itself could not be
// reached, as opposed to a failing query.
var ErrUnavailable = errors.New("store unavailable")

// Options tune how the database is opened.
type Options struct {
	// ReadOnly opens the file with mode=ro and skips schema setup.
	ReadOnly bool

	// MaxOpenConns caps the pool. Zero means 4.
	MaxOpenConns int

	// BusyTimeout is how long a connection waits on a lock. Zero means 5s.
	BusyTimeout time.Duration
}

// Store provides access to the catalog database.
type Store struct {
	db       *sql.DB
	path     string
	compiler *querysql.SQLCompiler
	now      func() time.Time
}

// Open creates or opens a read-write database at path and applies the
// schema. This function is idempotent.
func Open(path string) (*Store, error) {
	return OpenWithOptions(path, Options{})
}

// OpenWithOptions opens path with explicit options.
func OpenWithOptions(path string, opts Options) (*Store, error) {
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 4
	}
	if opts.BusyTimeout <= 0 {
		opts.BusyTimeout = 5 * time.Second
	}

	db, err := sql.Open(DriverName, dsn(path, opts))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", classify(err))
	}

	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxOpenConns)

	if !opts.ReadOnly {
		if _, err := db.Exec(schemaSQL); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	return &Store{
		db:       db,
		path:     path,
		compiler: querysql.NewSQLCompiler(querysql.Schema),
		now:      time.Now,
	}, nil
}

// dsn builds a file: URI carrying the per-connection pragmas.
func dsn(path string, opts Options) string {
	q := url.Values{}
	q.Set("_busy_timeout", strconv.FormatInt(opts.BusyTimeout.Milliseconds(), 10))
	q.Set("_foreign_keys", "on")
	q.Set("_synchronous", "NORMAL")
	if opts.ReadOnly {
		q.Set("mode", "ro")
	} else {
		q.Set("_journal_mode", "WAL")
	}
	return "file:" + path + "?" + q.Encode()
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the file the store was opened on.
func (s *Store) Path() string {
	return s.path
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping checks that a connection can be acquired and used.
func (s *Store) Ping(ctx context.Context) error {
	return s.withConn(ctx, func(conn *sql.Conn) error {
		var one int
		return conn.QueryRowContext(ctx, "SELECT 1").Scan(&one)
	})
}

// withConn runs fn on a dedicated connection and always releases it.
func (s *Store) withConn(ctx context.Context, fn func(*sql.Conn) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return classify(fmt.Errorf("acquire connection: %w", err))
	}
	defer conn.Close()

	return classify(fn(conn))
}

// classify wraps connection-level failures with ErrUnavailable.
func classify(err error) error {
	if err == nil || errors.Is(err, ErrUnavailable) {
		return err
	}
	if isUnavailable(err) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}

func isUnavailable(err error) bool {
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrCantOpen, sqlite3.ErrIoErr, sqlite3.ErrBusy, sqlite3.ErrLocked,
			sqlite3.ErrNotADB, sqlite3.ErrCorrupt, sqlite3.ErrPerm:
			return true
		}
	}
	return strings.Contains(err.Error(), "database is closed")
}

// IsUnavailable reports whether err was caused by an unreachable store.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if !strings.EqualFold(value, expected) {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
