package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/comunityalert/backend/internal/domain"
	"github.com/comunityalert/backend/testutil"
)

// newTestTx opens a single transaction that is rolled back when the test
// finishes. All repos and raw fixture inserts in one test share it, so tests
// get full hierarchies (user → issue → tags → notifications) with free
// isolation and no manual cleanup.
func newTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})
	return tx
}

// mustCreateUser inserts a user row directly — user records belong to the
// authentication collaborator, so the repos expose no write path for them.
func mustCreateUser(t *testing.T, tx pgx.Tx, role domain.Role, fullName, email string) domain.User {
	t.Helper()

	var id uuid.UUID
	err := tx.QueryRow(context.Background(), `
		INSERT INTO users (full_name, email, role)
		VALUES ($1, $2, $3)
		RETURNING id`, fullName, email, string(role)).Scan(&id)
	require.NoError(t, err, "insert user fixture")

	return domain.User{ID: id, FullName: fullName, Email: email, Role: role}
}

// mustCreateLocation inserts a location row directly, for the same reason.
func mustCreateLocation(t *testing.T, tx pgx.Tx, name string) domain.Location {
	t.Helper()

	var id uuid.UUID
	err := tx.QueryRow(context.Background(), `
		INSERT INTO locations (name, kind)
		VALUES ($1, 'village')
		RETURNING id`, name).Scan(&id)
	require.NoError(t, err, "insert location fixture")

	return domain.Location{ID: id, Name: name, Kind: "village"}
}

// issueFixture builds a minimal valid issue reported by the given user.
func issueFixture(reporter *domain.User, location *domain.Location) domain.Issue {
	return domain.Issue{
		Title:        "Broken streetlight",
		Description:  "The light at the corner has been out for a week",
		Category:     "Electricity",
		Status:       domain.StatusReported,
		Location:     location,
		ReportedBy:   reporter,
		DateReported: time.Now().UTC(),
	}
}
