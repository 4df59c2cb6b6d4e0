package mongo

import (
	"context"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"studiodesk/pkg/errors"
)

// containsFold matches a case-insensitive substring. User input is quoted, never interpreted as a pattern.
func containsFold(value string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(value), Options: "i"}
}

// findOne decodes the first match into out, mapping no-match to errors.ErrNotFound
func findOne(ctx context.Context, coll *mongo.Collection, filter bson.M, out interface{}, what string) error {
	err := coll.FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return errors.Wrapf(errors.ErrNotFound, "%s", what)
	}
	if err != nil {
		return errors.Wrapf(err, "find %s", what)
	}
	return nil
}

// insert maps duplicate key violations to errors.ErrAlreadyExists
func insert(ctx context.Context, coll *mongo.Collection, doc interface{}, what string) error {
	_, err := coll.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return errors.Wrapf(errors.ErrAlreadyExists, "%s", what)
	}
	if err != nil {
		return errors.Wrapf(err, "insert %s", what)
	}
	return nil
}

type sumResult struct {
	Total float64 `bson:"total"`
}

// sumAmount runs $match + $group over the amount field. An empty match yields 0.
func sumAmount(ctx context.Context, coll *mongo.Collection, match bson.M) (float64, error) {
	pipeline := mongo.Pipeline{}
	if len(match) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$group", Value: bson.M{
		"_id":   nil,
		"total": bson.M{"$sum": "$amount"},
	}}})

	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}

	var results []sumResult
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

// groupPipeline groups by field, accumulating acc under key, sorted descending by key.
// Ties are broken by group id so results are stable. limit <= 0 keeps every group.
func groupPipeline(field, key string, acc bson.M, limit int) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$" + field, key: acc}}},
		{{Key: "$sort", Value: bson.D{{Key: key, Value: -1}, {Key: "_id", Value: 1}}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}
	return pipeline
}

func aggregateAll(ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline, out interface{}) error {
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	return cursor.All(ctx, out)
}
