package testsupport

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"

	"studiodesk/internal/adapters/postgres"
)

// NewTestPostgresTx connects to the configured test database and returns a transaction
// that is rolled back when the test finishes, so tests never see each other's rows.
// Schema created inside it is rolled back too.
func NewTestPostgresTx(t *testing.T) *sqlx.Tx {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := postgres.NewClient(ctx, PostgresConfigFromEnv(t))
	if err != nil {
		t.Fatalf("failed to connect to postgres: %v", err)
	}

	tx, err := client.DB().BeginTxx(context.Background(), nil)
	if err != nil {
		_ = client.Close()
		t.Fatalf("failed to begin transaction: %v", err)
	}

	t.Cleanup(func() {
		_ = tx.Rollback()
		_ = client.Close()
	})

	return tx
}
