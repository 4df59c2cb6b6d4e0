package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"studiodesk/pkg/logger"
)

// IndexSpec describes indexes for one collection
type IndexSpec struct {
	Database   *mongo.Database
	Collection string
	Models     []mongo.IndexModel
}

func ascending(field string) bson.D {
	return bson.D{{Key: field, Value: 1}}
}

// StudioIndexes returns the indexes backing the query layer lookups.
// Unique ids on clients and orders let generated id collisions surface as duplicate key errors.
func StudioIndexes(db *mongo.Database) []IndexSpec {
	return []IndexSpec{
		{Database: db, Collection: CollectionClients, Models: []mongo.IndexModel{
			{Keys: ascending("client_id"), Options: options.Index().SetUnique(true)},
			{Keys: ascending("status")},
			{Keys: ascending("registration_date")},
		}},
		{Database: db, Collection: CollectionCourses, Models: []mongo.IndexModel{
			{Keys: ascending("course_id"), Options: options.Index().SetUnique(true)},
		}},
		{Database: db, Collection: CollectionClasses, Models: []mongo.IndexModel{
			{Keys: ascending("class_id"), Options: options.Index().SetUnique(true)},
			{Keys: ascending("date")},
			{Keys: ascending("name")},
		}},
		{Database: db, Collection: CollectionOrders, Models: []mongo.IndexModel{
			{Keys: ascending("order_id"), Options: options.Index().SetUnique(true)},
			{Keys: ascending("client_id")},
			{Keys: ascending("status")},
		}},
		{Database: db, Collection: CollectionPayments, Models: []mongo.IndexModel{
			{Keys: ascending("order_id")},
		}},
		{Database: db, Collection: CollectionAttendance, Models: []mongo.IndexModel{
			{Keys: ascending("class_id")},
		}},
	}
}

// MemoryIndexes returns the session memory indexes.
// maxAge > 0 adds a TTL index so MongoDB expires old entries on its own.
func MemoryIndexes(db *mongo.Database, maxAge time.Duration) []IndexSpec {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "timestamp", Value: -1}}},
	}
	if maxAge > 0 {
		models = append(models, mongo.IndexModel{
			Keys:    ascending("timestamp"),
			Options: options.Index().SetExpireAfterSeconds(int32(maxAge / time.Second)),
		})
	}
	return []IndexSpec{{Database: db, Collection: CollectionMemory, Models: models}}
}

// EnsureIndexes creates the given indexes. CreateMany is idempotent for identical specs.
func EnsureIndexes(ctx context.Context, specs ...IndexSpec) error {
	log := logger.Get().With("component", "mongo_indexes")

	for _, spec := range specs {
		names, err := spec.Database.Collection(spec.Collection).Indexes().CreateMany(ctx, spec.Models)
		if err != nil {
			return fmt.Errorf("create indexes on %s.%s: %w", spec.Database.Name(), spec.Collection, err)
		}
		log.Debugf("Ensured %d indexes on %s.%s", len(names), spec.Database.Name(), spec.Collection)
	}
	return nil
}
