package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongoadapter "studiodesk/internal/adapters/mongo"
	"studiodesk/internal/domain/memory"
	"studiodesk/pkg/errors"
)

// MemoryRepository implements memory.Repository on the memory_sessions collection
type MemoryRepository struct {
	coll *mongo.Collection
}

// NewMemoryRepository takes the memory database, not the studio database
func NewMemoryRepository(db *mongo.Database) *MemoryRepository {
	return &MemoryRepository{coll: db.Collection(mongoadapter.CollectionMemory)}
}

func (r *MemoryRepository) Append(ctx context.Context, entry memory.Entry) error {
	if _, err := r.coll.InsertOne(ctx, entry); err != nil {
		return errors.Wrapf(err, "append memory for session %s", entry.SessionID)
	}
	return nil
}

func (r *MemoryRepository) Recent(ctx context.Context, sessionID string, limit int) ([]memory.Entry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "read memory for session %s", sessionID)
	}

	entries := make([]memory.Entry, 0, limit)
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, errors.Wrap(err, "decode memory entries")
	}

	// newest-first from the query, callers want oldest-first
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

func (r *MemoryRepository) Prune(ctx context.Context, sessionID string, keep int) (int64, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(keep)).
		SetProjection(bson.M{"_id": 1})

	cursor, err := r.coll.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return 0, errors.Wrapf(err, "find prunable memory for session %s", sessionID)
	}

	var stale []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &stale); err != nil {
		return 0, errors.Wrap(err, "decode prunable memory ids")
	}
	if len(stale) == 0 {
		return 0, nil
	}

	ids := make(bson.A, 0, len(stale))
	for _, s := range stale {
		ids = append(ids, s.ID)
	}

	res, err := r.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, errors.Wrapf(err, "prune memory for session %s", sessionID)
	}
	return res.DeletedCount, nil
}

func (r *MemoryRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"timestamp": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, errors.Wrap(err, "delete expired memory")
	}
	return res.DeletedCount, nil
}

var _ memory.Repository = (*MemoryRepository)(nil)
