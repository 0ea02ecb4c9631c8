package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/lib/pq"

	"github.com/rcliao/recoengine/internal/core"
)

func TestFormatVector(t *testing.T) {
	got := formatVector([]float32{0.1, -0.2, 0})
	want := "[0.10000000,-0.20000000,0.00000000]"
	if got != want {
		t.Fatalf("formatVector: got %s want %s", got, want)
	}
}

func TestFormatVectorEmpty(t *testing.T) {
	if got := formatVector(nil); got != "[]" {
		t.Fatalf("expected [], got %s", got)
	}
}

func TestHashLockKeyDeterministic(t *testing.T) {
	a := hashLockKey("optimization_cycle")
	b := hashLockKey("optimization_cycle")
	if a != b {
		t.Fatalf("expected deterministic hash, got %d vs %d", a, b)
	}
	if hashLockKey("optimization_cycle") == hashLockKey("learning_consolidation") {
		t.Fatalf("expected distinct keys for distinct names")
	}
}

func TestWrapClassifiesSerializationFailureAsTransient(t *testing.T) {
	err := wrap("test_op", &pq.Error{Code: "40001", Message: "serialization_failure"})
	var se *core.StoreError
	if !errors.As(err, &se) {
		t.Fatalf("expected core.StoreError, got %T", err)
	}
	if !se.Transient {
		t.Fatalf("expected serialization_failure to be transient")
	}
}

func TestWrapClassifiesConstraintViolationAsPermanent(t *testing.T) {
	err := wrap("test_op", &pq.Error{Code: "23505", Message: "unique_violation"})
	var se *core.StoreError
	if !errors.As(err, &se) {
		t.Fatalf("expected core.StoreError, got %T", err)
	}
	if se.Transient {
		t.Fatalf("expected unique_violation to be permanent")
	}
}

func TestWithRetryStopsOnPermanentError(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), DefaultRetryConfig(), func() error {
		calls++
		return wrap("op", &pq.Error{Code: "23505"})
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected exactly 1 attempt for a permanent error, got %d", calls)
	}
}

func TestWithRetryRetriesTransientError(t *testing.T) {
	calls := 0
	cfg := RetryConfig{Attempts: 3, Base: time.Millisecond, Cap: 5 * time.Millisecond}
	err := WithRetry(context.Background(), cfg, func() error {
		calls++
		if calls < 3 {
			return wrap("op", &pq.Error{Code: "40001"})
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

// TestPostgresIntegration exercises the store against a real Postgres+pgvector
// instance. Skipped unless DATABASE_URL is set, matching the teacher's
// vectorstore integration test pattern.
func TestPostgresIntegration(t *testing.T) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer db.Close()

	st := OpenWithDB(db, DefaultOptions())
	ctx := context.Background()

	if err := st.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	content := core.Content{
		ID:     "test-content-1",
		Kind:   core.ContentMovie,
		Title:  "Test Movie",
		Genres: []string{"drama"},
	}
	if err := st.UpsertContent(ctx, []core.Content{content}); err != nil {
		t.Fatalf("upsert content: %v", err)
	}

	got, err := st.GetContent(ctx, "test-content-1")
	if err != nil {
		t.Fatalf("get content: %v", err)
	}
	if got.Title != "Test Movie" {
		t.Fatalf("expected title to round-trip, got %s", got.Title)
	}

	release, acquired, err := st.AdvisoryLock(ctx, "test-lock")
	if err != nil {
		t.Fatalf("advisory lock: %v", err)
	}
	if !acquired {
		t.Fatalf("expected lock to be acquired")
	}
	release()
}
