package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/feastly/ambassador_backend/config"
	"github.com/feastly/ambassador_backend/models"
)

type PaymentRepository struct {
	db *mongo.Client
}

func NewPaymentRepository(db *mongo.Client) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) collection() *mongo.Collection {
	return config.GetCollection(r.db, "payments")
}

func (r *PaymentRepository) FindByAmbassadorAndPlan(ctx context.Context, ambassadorID, planID primitive.ObjectID) (*models.AmbassadorPayment, error) {
	var payment models.AmbassadorPayment
	err := r.collection().FindOne(ctx, bson.M{"ambassadorId": ambassadorID, "planId": planID}).Decode(&payment)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// RecordCapture persists a verified plan purchase. Reading the previous
// purchase and upserting the new one run in a single transaction, so
// concurrent purchases serialize and each captured gateway transaction
// extends the entitlement exactly once: a replayed transaction id surfaces as
// ErrAlreadyCaptured before any expiry change, as does a transaction id
// already consumed by a different purchase (unique index on transactionId).
func (r *PaymentRepository) RecordCapture(ctx context.Context, ambassadorID, planID primitive.ObjectID, transactionID string, amount int64, validityDays int) (*models.AmbassadorPayment, error) {
	session, err := r.db.StartSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		filter := bson.M{"ambassadorId": ambassadorID, "planId": planID}

		var previous *models.AmbassadorPayment
		var existing models.AmbassadorPayment
		err := r.collection().FindOne(sc, filter).Decode(&existing)
		if err == nil {
			if existing.TransactionID == transactionID {
				return nil, ErrAlreadyCaptured
			}
			previous = &existing
		} else if err != mongo.ErrNoDocuments {
			return nil, err
		}

		now := time.Now()
		payment := models.AmbassadorPayment{
			AmbassadorID:  ambassadorID,
			PlanID:        planID,
			TransactionID: transactionID,
			Amount:        amount,
			PurchaseDate:  now,
			ExpiryDate:    previous.ExtendExpiry(now, validityDays),
			IsPurchased:   true,
		}

		if _, err := r.collection().ReplaceOne(sc, filter, payment, options.Replace().SetUpsert(true)); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, ErrAlreadyCaptured
			}
			return nil, err
		}
		return &payment, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.AmbassadorPayment), nil
}
