// Package metadatasource describes the external TV/film catalog API the
// core never calls directly (spec §1 Non-goals, §6 "External metadata
// source"). It exists only as an interface plus a concrete HTTPS+JWT
// implementation for ingestion collaborators; the core consumes its output
// exclusively through store.UpsertContent.
package metadatasource

import (
	"context"
	"time"
)

// SeriesSummary, SeriesExtended, Movie, Episode, and Artwork are the
// catalog shapes ingestion maps into core.Content; left as opaque JSON
// payloads here since the core never interprets their fields directly.
type Raw map[string]interface{}

// Client is the external catalog's interface, per spec §6. The core never
// calls this directly; ingestion collaborators do, then hand the result to
// store.UpsertContent via core.Content values.
type Client interface {
	Search(ctx context.Context, query string) ([]Raw, error)
	Series(ctx context.Context, id string, extended bool) (Raw, error)
	Movie(ctx context.Context, id string) (Raw, error)
	Episodes(ctx context.Context, seriesID string) ([]Raw, error)
	Artwork(ctx context.Context, id string) ([]Raw, error)
	UpdatesSince(ctx context.Context, since time.Time) ([]Raw, error)
}

// RateLimited is returned by a Client implementation when the upstream
// signals a rate limit (HTTP 429 or an equivalent). Rate-limit and quota
// semantics are left to ingestion collaborators (spec §8 Non-goals); the
// core's contract is only to recognize this error shape and back off, not
// to implement a limiter itself.
type RateLimited struct {
	RetryAfter time.Duration
}

func (e *RateLimited) Error() string {
	return "external catalog rate limited"
}

// AuthError wraps a login failure distinct from a 401-triggered refresh.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return "catalog authentication failed: " + e.Err.Error() }
func (e *AuthError) Unwrap() error { return e.Err }
