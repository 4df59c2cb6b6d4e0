package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	mongoadapter "studiodesk/internal/adapters/mongo"
	"studiodesk/internal/domain/payment"
	"studiodesk/pkg/errors"
)

// PaymentRepository implements payment.Repository on the payments collection
type PaymentRepository struct {
	coll *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{coll: db.Collection(mongoadapter.CollectionPayments)}
}

func (r *PaymentRepository) GetByOrderID(ctx context.Context, orderID string) (*payment.Payment, error) {
	var p payment.Payment
	if err := findOne(ctx, r.coll, bson.M{"order_id": orderID}, &p, "payment for order "+orderID); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) SumAmount(ctx context.Context) (float64, error) {
	total, err := sumAmount(ctx, r.coll, nil)
	if err != nil {
		return 0, errors.Wrap(err, "sum payments")
	}
	return total, nil
}

var _ payment.Repository = (*PaymentRepository)(nil)
