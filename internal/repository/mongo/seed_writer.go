package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"studiodesk/pkg/errors"
)

// SeedWriter replaces whole collections for the mock data seeder
type SeedWriter struct {
	db *mongo.Database
}

// NewSeedWriter creates a seed writer over the studio database
func NewSeedWriter(db *mongo.Database) *SeedWriter {
	return &SeedWriter{db: db}
}

// Replace deletes every document of the collection and inserts docs.
// Documents are removed rather than the collection dropped, so indexes survive.
func (w *SeedWriter) Replace(ctx context.Context, collection string, docs []interface{}) (int, error) {
	coll := w.db.Collection(collection)

	if _, err := coll.DeleteMany(ctx, bson.M{}); err != nil {
		return 0, errors.Wrapf(err, "clear %s", collection)
	}
	if len(docs) == 0 {
		return 0, nil
	}

	res, err := coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err != nil {
		return 0, errors.Wrapf(err, "insert into %s", collection)
	}
	return len(res.InsertedIDs), nil
}
