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

type WithdrawalRepository struct {
	db *mongo.Client
}

func NewWithdrawalRepository(db *mongo.Client) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

func (r *WithdrawalRepository) collection() *mongo.Collection {
	return config.GetCollection(r.db, "withdrawals")
}

func (r *WithdrawalRepository) ambassadors() *mongo.Collection {
	return config.GetCollection(r.db, "ambassadors")
}

// Create persists a pending withdrawal. The amount must not exceed the wallet
// balance at request time; the wallet is not debited until the request is
// accepted.
func (r *WithdrawalRepository) Create(ctx context.Context, ambassadorID primitive.ObjectID, req *models.WithdrawalRequest) (*models.Withdrawal, error) {
	var ambassador models.Ambassador
	err := r.ambassadors().FindOne(ctx, bson.M{"_id": ambassadorID}).Decode(&ambassador)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if req.Amount > ambassador.Wallet {
		return nil, ErrInsufficientFunds
	}

	withdrawal := models.Withdrawal{
		ID:             primitive.NewObjectID(),
		AmbassadorID:   ambassadorID,
		Amount:         req.Amount,
		Status:         models.WithdrawalPending,
		AccountDetails: req.AccountDetails,
		UpiID:          req.UpiID,
		RequestedAt:    time.Now(),
	}

	if _, err := r.collection().InsertOne(ctx, withdrawal); err != nil {
		return nil, err
	}
	return &withdrawal, nil
}

func (r *WithdrawalRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Withdrawal, error) {
	var withdrawal models.Withdrawal
	err := r.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&withdrawal)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &withdrawal, nil
}

func (r *WithdrawalRepository) ListByAmbassador(ctx context.Context, ambassadorID primitive.ObjectID) ([]models.Withdrawal, error) {
	cursor, err := r.collection().Find(
		ctx,
		bson.M{"ambassadorId": ambassadorID},
		options.Find().SetSort(bson.D{{Key: "requestedAt", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	withdrawals := []models.Withdrawal{}
	if err := cursor.All(ctx, &withdrawals); err != nil {
		return nil, err
	}
	return withdrawals, nil
}

func (r *WithdrawalRepository) ListPending(ctx context.Context) ([]models.Withdrawal, error) {
	cursor, err := r.collection().Find(
		ctx,
		bson.M{"status": models.WithdrawalPending},
		options.Find().SetSort(bson.D{{Key: "requestedAt", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	withdrawals := []models.Withdrawal{}
	if err := cursor.All(ctx, &withdrawals); err != nil {
		return nil, err
	}
	return withdrawals, nil
}

// Accept debits the ambassador wallet and moves the request to accepted as one
// transaction. The compare-and-set on status makes double-processing
// impossible; the wallet guard re-checks the balance at decision time and
// leaves the request pending when funds ran out since creation.
func (r *WithdrawalRepository) Accept(ctx context.Context, id, adminID primitive.ObjectID) (*models.Withdrawal, error) {
	withdrawal, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if withdrawal.Status != models.WithdrawalPending {
		return nil, ErrInvalidState
	}

	session, err := r.db.StartSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		debit, err := r.ambassadors().UpdateOne(
			sc,
			bson.M{
				"_id":    withdrawal.AmbassadorID,
				"wallet": bson.M{"$gte": withdrawal.Amount},
			},
			bson.M{"$inc": bson.M{"wallet": -withdrawal.Amount}},
		)
		if err != nil {
			return nil, err
		}
		if debit.ModifiedCount == 0 {
			// Either the balance no longer covers the amount or the ambassador
			// document is gone
			err := r.ambassadors().FindOne(sc, bson.M{"_id": withdrawal.AmbassadorID}).Err()
			if err == mongo.ErrNoDocuments {
				return nil, ErrNotFound
			}
			if err != nil {
				return nil, err
			}
			return nil, ErrInsufficientFunds
		}

		now := time.Now()
		var updated models.Withdrawal
		err = r.collection().FindOneAndUpdate(
			sc,
			bson.M{"_id": id, "status": models.WithdrawalPending},
			bson.M{"$set": bson.M{
				"status":     models.WithdrawalAccepted,
				"approvedAt": now,
				"adminId":    adminID,
			}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			// Decided concurrently; aborting rolls the debit back
			return nil, ErrInvalidState
		}
		if err != nil {
			return nil, err
		}
		return &updated, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Withdrawal), nil
}

// Reject moves the request to rejected. No ledger effect.
func (r *WithdrawalRepository) Reject(ctx context.Context, id, adminID primitive.ObjectID, reason string) (*models.Withdrawal, error) {
	if reason == "" {
		reason = "Withdrawal request rejected by admin"
	}

	now := time.Now()
	var updated models.Withdrawal
	err := r.collection().FindOneAndUpdate(
		ctx,
		bson.M{"_id": id, "status": models.WithdrawalPending},
		bson.M{"$set": bson.M{
			"status":          models.WithdrawalRejected,
			"rejectedAt":      now,
			"rejectionReason": reason,
			"adminId":         adminID,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		if _, err := r.FindByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrInvalidState
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
