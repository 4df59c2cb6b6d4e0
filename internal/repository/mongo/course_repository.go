package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	mongoadapter "studiodesk/internal/adapters/mongo"
	"studiodesk/internal/domain/course"
	"studiodesk/pkg/errors"
)

// CourseRepository implements course.Repository on the courses collection
type CourseRepository struct {
	coll *mongo.Collection
}

func NewCourseRepository(db *mongo.Database) *CourseRepository {
	return &CourseRepository{coll: db.Collection(mongoadapter.CollectionCourses)}
}

func (r *CourseRepository) GetByID(ctx context.Context, courseID string) (*course.Course, error) {
	var c course.Course
	if err := findOne(ctx, r.coll, bson.M{"course_id": courseID}, &c, "course "+courseID); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CourseRepository) CountByStatus(ctx context.Context) ([]course.StatusCount, error) {
	counts := make([]course.StatusCount, 0)
	pipeline := groupPipeline("status", "count", bson.M{"$sum": 1}, 0)
	if err := aggregateAll(ctx, r.coll, pipeline, &counts); err != nil {
		return nil, errors.Wrap(err, "group courses by status")
	}
	return counts, nil
}

var _ course.Repository = (*CourseRepository)(nil)
