package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongoadapter "studiodesk/internal/adapters/mongo"
	"studiodesk/internal/domain/order"
	"studiodesk/pkg/errors"
)

// OrderRepository implements order.Repository on the orders collection
type OrderRepository struct {
	coll *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{coll: db.Collection(mongoadapter.CollectionOrders)}
}

func (r *OrderRepository) GetByID(ctx context.Context, orderID string) (*order.Order, error) {
	var o order.Order
	if err := findOne(ctx, r.coll, bson.M{"order_id": orderID}, &o, "order "+orderID); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) ListByClient(ctx context.Context, clientID string, limit int) ([]*order.Order, error) {
	return r.find(ctx, bson.M{"client_id": clientID}, limit)
}

func (r *OrderRepository) ListByStatus(ctx context.Context, status order.Status, limit int) ([]*order.Order, error) {
	return r.find(ctx, bson.M{"status": status}, limit)
}

func (r *OrderRepository) ListByClientAndStatus(ctx context.Context, clientID string, status order.Status) ([]*order.Order, error) {
	return r.find(ctx, bson.M{"client_id": clientID, "status": status}, 0)
}

func (r *OrderRepository) SumAmountByStatus(ctx context.Context, status order.Status) (float64, error) {
	total, err := sumAmount(ctx, r.coll, bson.M{"status": status})
	if err != nil {
		return 0, errors.Wrapf(err, "sum %s orders", status)
	}
	return total, nil
}

func (r *OrderRepository) CountByService(ctx context.Context, limit int) ([]order.ServiceCount, error) {
	counts := make([]order.ServiceCount, 0)
	pipeline := groupPipeline("service_name", "count", bson.M{"$sum": 1}, limit)
	if err := aggregateAll(ctx, r.coll, pipeline, &counts); err != nil {
		return nil, errors.Wrap(err, "group orders by service")
	}
	return counts, nil
}

func (r *OrderRepository) RevenueByService(ctx context.Context, limit int) ([]order.ServiceRevenue, error) {
	revenue := make([]order.ServiceRevenue, 0)
	pipeline := groupPipeline("service_name", "total", bson.M{"$sum": "$amount"}, limit)
	if err := aggregateAll(ctx, r.coll, pipeline, &revenue); err != nil {
		return nil, errors.Wrap(err, "sum orders by service")
	}
	return revenue, nil
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	return insert(ctx, r.coll, o, "order "+o.OrderID)
}

func (r *OrderRepository) find(ctx context.Context, filter bson.M, limit int) ([]*order.Order, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find orders")
	}

	orders := make([]*order.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, errors.Wrap(err, "decode orders")
	}
	return orders, nil
}

var _ order.Repository = (*OrderRepository)(nil)
