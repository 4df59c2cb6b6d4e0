package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	mongoadapter "studiodesk/internal/adapters/mongo"
	"studiodesk/internal/domain/attendance"
	"studiodesk/pkg/errors"
)

// AttendanceRepository implements attendance.Repository on the attendance collection
type AttendanceRepository struct {
	coll *mongo.Collection
}

func NewAttendanceRepository(db *mongo.Database) *AttendanceRepository {
	return &AttendanceRepository{coll: db.Collection(mongoadapter.CollectionAttendance)}
}

type tallyResult struct {
	Total    int64 `bson:"total"`
	Attended int64 `bson:"attended"`
}

// TallyByClass counts total and attended records in one aggregation, so both numbers come from the same snapshot
func (r *AttendanceRepository) TallyByClass(ctx context.Context, classID string) (attendance.Tally, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"class_id": classID}}},
		{{Key: "$group", Value: bson.M{
			"_id":      nil,
			"total":    bson.M{"$sum": 1},
			"attended": bson.M{"$sum": bson.M{"$cond": bson.A{"$attended", 1, 0}}},
		}}},
	}

	var results []tallyResult
	if err := aggregateAll(ctx, r.coll, pipeline, &results); err != nil {
		return attendance.Tally{}, errors.Wrapf(err, "tally attendance for class %s", classID)
	}
	if len(results) == 0 {
		return attendance.Tally{}, nil
	}
	return attendance.Tally{Total: results[0].Total, Attended: results[0].Attended}, nil
}

var _ attendance.Repository = (*AttendanceRepository)(nil)
