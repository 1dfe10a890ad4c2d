package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/hrm-core/internal/pkg/database"
	"github.com/cmlabs-hris/hrm-core/migrations"
	"github.com/stretchr/testify/require"
)

const (
	empID   = "01930000-0000-7000-8000-00000000a001"
	tlID    = "01930000-0000-7000-8000-00000000a002"
	hrID    = "01930000-0000-7000-8000-00000000a003"
	typeID  = "01930000-0000-7000-8000-000000000001" // annual, from the default catalogue
	shiftID = "01930000-0000-7000-8000-000000000101" // office hours
)

// newTestDB connects to TEST_DATABASE_URL, applies the migrations and
// resets the tables. Tests are skipped when no database is configured.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: 4, MinConns: 1})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, database.Migrate(ctx, db, migrations.FS))
	require.NoError(t, truncateAll(ctx, db))
	seedOrganization(t, db)
	return db
}

func truncateAll(ctx context.Context, db *database.DB) error {
	tx, err := db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"notifications",
		"attendance_days",
		"leave_balance_debits",
		"leave_requests",
		"leave_balances",
		"employees",
	}
	for _, table := range tables {
		if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}
	return tx.Commit(ctx)
}

func seedOrganization(t *testing.T, db *database.DB) {
	t.Helper()
	ctx := context.Background()

	_, err := db.Exec(ctx, `
		INSERT INTO employees (id, full_name, email, role, team_lead_id, is_active) VALUES
			($1, 'Tari', 'tari@test.local', 'tl', NULL, TRUE),
			($2, 'Hana', 'hana@test.local', 'hr', NULL, TRUE),
			($3, 'Eka', 'eka@test.local', 'employee', $1, TRUE)
	`, tlID, hrID, empID)
	require.NoError(t, err)

	_, err = db.Exec(ctx, `
		INSERT INTO leave_balances (id, employee_id, leave_type_id, total_allocated, used)
		VALUES (gen_random_uuid(), $1, $2, 12, 0)
	`, empID, typeID)
	require.NoError(t, err)
}
