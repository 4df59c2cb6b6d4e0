package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongoadapter "studiodesk/internal/adapters/mongo"
	"studiodesk/internal/domain/client"
	"studiodesk/pkg/errors"
)

// ClientRepository implements client.Repository on the clients collection
type ClientRepository struct {
	coll *mongo.Collection
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *mongo.Database) *ClientRepository {
	return &ClientRepository{coll: db.Collection(mongoadapter.CollectionClients)}
}

func (r *ClientRepository) Search(ctx context.Context, filter client.Filter, limit int) ([]*client.Client, error) {
	query := bson.M{}
	if filter.Name != "" {
		query["name"] = containsFold(filter.Name)
	}
	if filter.Email != "" {
		query["email"] = containsFold(filter.Email)
	}
	if filter.Phone != "" {
		query["phone"] = containsFold(filter.Phone)
	}

	cursor, err := r.coll.Find(ctx, query, options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, errors.Wrap(err, "search clients")
	}

	clients := make([]*client.Client, 0)
	if err := cursor.All(ctx, &clients); err != nil {
		return nil, errors.Wrap(err, "decode clients")
	}
	return clients, nil
}

func (r *ClientRepository) GetByID(ctx context.Context, clientID string) (*client.Client, error) {
	var c client.Client
	if err := findOne(ctx, r.coll, bson.M{"client_id": clientID}, &c, "client "+clientID); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepository) CountByStatus(ctx context.Context, status client.Status) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"status": status})
	if err != nil {
		return 0, errors.Wrapf(err, "count %s clients", status)
	}
	return n, nil
}

func (r *ClientRepository) CountRegisteredSince(ctx context.Context, since time.Time) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"registration_date": bson.M{"$gte": since}})
	if err != nil {
		return 0, errors.Wrap(err, "count new clients")
	}
	return n, nil
}

func (r *ClientRepository) Create(ctx context.Context, c *client.Client) error {
	return insert(ctx, r.coll, c, "client "+c.ClientID)
}

var _ client.Repository = (*ClientRepository)(nil)
