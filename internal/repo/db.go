// Package repo contains all database access logic for the Community Alert API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/comunityalert/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// txdb additionally allows opening a transaction. Both *pgxpool.Pool and
// pgx.Tx satisfy it (a Begin on a pgx.Tx opens a savepoint), so multi-statement
// repo operations stay testable under the rollback-per-test scheme.
type txdb interface {
	db
	Begin(ctx context.Context) (pgx.Tx, error)
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scopeArgs expands a domain.Scope into the named arguments every scoped
// query's visibility predicate consumes:
//
//	(@scope_all OR <owner column> = @scope_owner)
//
// The empty scope never reaches SQL — services short-circuit it — but the
// predicate is still safe for it (false OR owner = zero-uuid).
func scopeArgs(s domain.Scope) pgx.NamedArgs {
	owner, _ := s.OwnerID()
	return pgx.NamedArgs{"scope_all": s.IsAll(), "scope_owner": owner}
}

// mergeArgs folds extra named arguments into dst and returns it.
func mergeArgs(dst pgx.NamedArgs, extra pgx.NamedArgs) pgx.NamedArgs {
	for k, v := range extra {
		dst[k] = v
	}
	return dst
}

// orderClause translates caller-supplied sort params into an ORDER BY clause
// using a per-surface whitelist of column expressions. Unknown sort keys fall
// back to the default clause, so request input never reaches the SQL text.
func orderClause(s domain.SortParams, allowed map[string]string, def string) string {
	col, ok := allowed[s.Column]
	if !ok {
		return "ORDER BY " + def
	}
	var b strings.Builder
	b.WriteString("ORDER BY ")
	b.WriteString(col)
	if s.Desc {
		b.WriteString(" DESC")
	}
	return b.String()
}
