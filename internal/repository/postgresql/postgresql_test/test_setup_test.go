package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/conveyance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/conveyance-backend-go/migrations"
	"github.com/stretchr/testify/require"
)

// testDB is nil when TEST_DATABASE_URL is unset; every test then skips.
var testDB *database.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn != "" {
		db, err := database.NewPostgreSQLDB(dsn)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to connect to test database: %v\n", err)
			os.Exit(1)
		}
		if err := database.Migrate(context.Background(), db, migrations.Files); err != nil {
			fmt.Fprintf(os.Stderr, "failed to migrate test database: %v\n", err)
			os.Exit(1)
		}
		testDB = db
	}

	code := m.Run()
	if testDB != nil {
		testDB.Close()
	}
	os.Exit(code)
}

// setupTestDB skips the test without a database and truncates every table otherwise.
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testDB == nil {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	tx, err := testDB.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	tables := []string{
		"notifications",
		"bill_decisions",
		"bill_items",
		"bills",
		"attendance_records",
		"qr_codes",
		"refresh_tokens",
		"users",
	}
	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "truncate %s", table)
	}
	require.NoError(t, tx.Commit(ctx))

	return testDB
}
