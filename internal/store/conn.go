package store

import (
	"context"
	"database/sql"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// conn runs ent-built statements against the shared *sql.DB.
type conn struct {
	db      *sql.DB
	dialect string
}

func (c conn) b() *entsql.DialectBuilder {
	return entsql.Dialect(c.dialect)
}

func (c conn) exec(ctx context.Context, q entsql.Querier) (sql.Result, error) {
	query, args := q.Query()
	return c.db.ExecContext(ctx, query, args...)
}

func (c conn) query(ctx context.Context, q entsql.Querier) (*sql.Rows, error) {
	query, args := q.Query()
	return c.db.QueryContext(ctx, query, args...)
}

func (c conn) queryRow(ctx context.Context, q entsql.Querier) *sql.Row {
	query, args := q.Query()
	return c.db.QueryRowContext(ctx, query, args...)
}

// utc normalizes times before they are written so that stored values compare
// consistently.
func utc(t time.Time) time.Time {
	return t.UTC()
}

// nullTime converts an optional time into a driver value.
func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return utc(*t)
}

// timePtr converts a scanned nullable time into an optional time.
func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

func anySlice[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
