package testsupport

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	mongoadapter "studiodesk/internal/adapters/mongo"
)

const defaultTimeout = 10 * time.Second

// NewTestMongo connects to TEST_MONGODB_URL and returns a freshly named database
// that is dropped when the test finishes. Indexes are created so unique
// constraints behave as in production.
func NewTestMongo(t *testing.T) *mongo.Database {
	t.Helper()

	cfg := MongoConfigFromEnv(t)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	cfg.Database = fmt.Sprintf("%s_%s", cfg.Database, suffix)
	cfg.MemoryDatabase = cfg.Database

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongoadapter.NewClient(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to connect to mongo: %v", err)
	}

	db := client.Database()
	specs := append(mongoadapter.StudioIndexes(db), mongoadapter.MemoryIndexes(db, 0)...)
	if err := mongoadapter.EnsureIndexes(ctx, specs...); err != nil {
		t.Fatalf("failed to create indexes: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Close(ctx)
	})

	return db
}
