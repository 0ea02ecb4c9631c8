// Package store implements the relational+vector persistence layer described
// in spec §4.2 and §6: Postgres with a pgvector column type, accessed through
// database/sql and github.com/lib/pq, in the same idiom as the teacher's
// internal/persistence/postgres.go and internal/vectorstore/pgvector.go.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"time"

	_ "github.com/lib/pq"
	"github.com/patrickmn/go-cache"
	"github.com/sony/gobreaker"

	"github.com/rcliao/recoengine/internal/logger"
)

// Store is the process-wide handle onto the persistence layer: a pooled
// connection, a circuit breaker guarding it, and a small result cache for
// vector searches (spec §5 "vector result cache").
type Store struct {
	db      *sql.DB
	breaker *gobreaker.CircuitBreaker
	vecCache *cache.Cache
}

// Options configures pool sizing and the vector result cache.
type Options struct {
	MaxOpenConns    int // 0 -> num_cpus*2, per spec §5
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	VectorCacheTTL  time.Duration
	VectorCacheCap  int
}

// DefaultOptions mirrors the spec's stated defaults.
func DefaultOptions() Options {
	return Options{
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		VectorCacheTTL:  time.Hour,
		VectorCacheCap:  1000,
	}
}

// Open connects to Postgres and verifies connectivity, following the
// teacher's NewPostgresDB pool-sizing and ping pattern.
func Open(connectionString string, opts Options) (*Store, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxOpen := opts.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = runtime.NumCPU() * 2
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	cbSettings := gobreaker.Settings{
		Name:        "store",
		MaxRequests: 5,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("store circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	}

	vecTTL := opts.VectorCacheTTL
	if vecTTL <= 0 {
		vecTTL = time.Hour
	}

	return &Store{
		db:       db,
		breaker:  gobreaker.NewCircuitBreaker(cbSettings),
		vecCache: cache.New(vecTTL, vecTTL/2),
	}, nil
}

// OpenWithDB wraps an already-open *sql.DB (used by the DATABASE_URL-gated
// integration test in store_test.go).
func OpenWithDB(db *sql.DB, opts Options) *Store {
	vecTTL := opts.VectorCacheTTL
	if vecTTL <= 0 {
		vecTTL = time.Hour
	}
	return &Store{
		db: db,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "store",
			ReadyToTrip: func(counts gobreaker.Counts) bool { return counts.ConsecutiveFailures > 5 },
		}),
		vecCache: cache.New(vecTTL, vecTTL/2),
	}
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// DB exposes the underlying pool for callers (e.g. schema migration) that
// need it directly.
func (s *Store) DB() *sql.DB { return s.db }

// queryer abstracts over *sql.DB and *sql.Tx so repository methods work
// inside or outside a transaction, matching the teacher's postgresArticleRepo.query() idiom.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (s *Store) q() queryer { return s.db }

// WithTx runs fn inside a single transaction and commits iff fn returns nil.
// UpsertContent, UpdateContentEmbeddings and RecordPatternOutcome run their
// writes through it. UpsertPattern and WriteSyncStatus do not: each is a
// single statement on the pool, so the optimization cycle's pattern upserts
// and its sync_status row are committed one by one, not together.
func (s *Store) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &storeErr{transient: true, op: "begin_tx", err: err}
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return &storeErr{transient: true, op: "commit_tx", err: err}
	}
	return nil
}

// breakered executes op through the circuit breaker, translating a tripped
// breaker into a transient StoreError.
func (s *Store) breakered(op string, fn func() error) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return &storeErr{transient: true, op: op, err: err}
	}
	return err
}

// AdvisoryLock takes a Postgres advisory lock keyed by name, used to
// serialize the singleton optimization cycle across replicas (spec §5).
// It returns a release func; callers must call it to unlock.
func (s *Store) AdvisoryLock(ctx context.Context, name string) (release func(), acquired bool, err error) {
	key := hashLockKey(name)
	var ok bool
	row := s.db.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, key)
	if err := row.Scan(&ok); err != nil {
		return nil, false, &storeErr{transient: true, op: "advisory_lock", err: err}
	}
	if !ok {
		return func() {}, false, nil
	}
	return func() {
		_, _ = s.db.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, key)
	}, true, nil
}

func hashLockKey(name string) int64 {
	var h int64 = 1469598103934665603 // FNV offset basis, truncated to fit int64 arithmetic below
	for _, c := range name {
		h ^= int64(c)
		h *= 1099511628211
	}
	if h < 0 {
		h = -h
	}
	return h
}
