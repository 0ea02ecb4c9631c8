package store

import (
	"context"
	"errors"
	"strings"

	"github.com/lib/pq"

	"github.com/rcliao/recoengine/internal/core"
)

// storeErr is the internal constructor for core.StoreError, kept unexported.
// wrap builds it with isTransient's transient/permanent split; WithTx,
// breakered and AdvisoryLock build it directly as transient.
type storeErr struct {
	transient bool
	op        string
	err       error
}

func (e *storeErr) toCore() *core.StoreError {
	return &core.StoreError{Transient: e.transient, Op: e.op, Err: e.err}
}

func (e *storeErr) Error() string { return e.toCore().Error() }

func (e *storeErr) Unwrap() error { return e.err }

// wrap classifies a raw database/sql error into a core.StoreError. Context
// deadline/cancellation and connection-level failures are treated as
// transient (spec §7 StoreError(transient)); everything else (constraint
// violations, bad SQL) is permanent.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return (&storeErr{transient: isTransient(err), op: op, err: err}).toCore()
}

// transientPqCodes are the Postgres error classes worth retrying: connection
// exceptions (08xxx), too-many-connections (53300), and
// serialization/deadlock failures (40001, 40P01) under concurrent writers.
var transientPqCodes = map[string]bool{
	"53300": true,
	"40001": true,
	"40P01": true,
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if transientPqCodes[string(pqErr.Code)] {
			return true
		}
		if strings.HasPrefix(string(pqErr.Code), "08") {
			return true
		}
		return false
	}

	if err.Error() == "sql: database is closed" {
		return false
	}
	if ne, ok := err.(interface{ Timeout() bool }); ok && ne.Timeout() {
		return true
	}
	return false
}
