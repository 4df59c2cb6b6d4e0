package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongoadapter "studiodesk/internal/adapters/mongo"
	"studiodesk/internal/domain/class"
	"studiodesk/pkg/errors"
)

// ClassRepository implements class.Repository on the classes collection
type ClassRepository struct {
	coll *mongo.Collection
}

func NewClassRepository(db *mongo.Database) *ClassRepository {
	return &ClassRepository{coll: db.Collection(mongoadapter.CollectionClasses)}
}

func (r *ClassRepository) GetByID(ctx context.Context, classID string) (*class.Class, error) {
	var c class.Class
	if err := findOne(ctx, r.coll, bson.M{"class_id": classID}, &c, "class "+classID); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ClassRepository) FindByName(ctx context.Context, name string) (*class.Class, error) {
	var c class.Class
	if err := findOne(ctx, r.coll, bson.M{"name": name}, &c, "class "+name); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ClassRepository) ListFrom(ctx context.Context, from time.Time, limit int) ([]*class.Class, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}}).
		SetLimit(int64(limit))
	return r.find(ctx, bson.M{"date": bson.M{"$gte": from}}, opts)
}

func (r *ClassRepository) ListByInstructor(ctx context.Context, instructor string, limit int) ([]*class.Class, error) {
	return r.find(ctx, bson.M{"instructor": containsFold(instructor)}, options.Find().SetLimit(int64(limit)))
}

func (r *ClassRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*class.Class, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find classes")
	}

	classes := make([]*class.Class, 0)
	if err := cursor.All(ctx, &classes); err != nil {
		return nil, errors.Wrap(err, "decode classes")
	}
	return classes, nil
}

var _ class.Repository = (*ClassRepository)(nil)
