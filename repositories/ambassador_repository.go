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

type AmbassadorRepository struct {
	db *mongo.Client
}

func NewAmbassadorRepository(db *mongo.Client) *AmbassadorRepository {
	return &AmbassadorRepository{db: db}
}

func (r *AmbassadorRepository) collection() *mongo.Collection {
	return config.GetCollection(r.db, "ambassadors")
}

// NextReferralSequence allocates the next referral code sequence number via an
// atomic counter document, so two concurrent signups can never collide.
func (r *AmbassadorRepository) NextReferralSequence(ctx context.Context) (int64, error) {
	counters := config.GetCollection(r.db, "counters")

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := counters.FindOneAndUpdate(
		ctx,
		bson.M{"_id": "ambassadorReferral"},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Seq, nil
}

func (r *AmbassadorRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Ambassador, error) {
	var ambassador models.Ambassador
	err := r.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&ambassador)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ambassador, nil
}

func (r *AmbassadorRepository) FindByPhone(ctx context.Context, phone string) (*models.Ambassador, error) {
	var ambassador models.Ambassador
	err := r.collection().FindOne(ctx, bson.M{"phone": phone}).Decode(&ambassador)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ambassador, nil
}

func (r *AmbassadorRepository) FindByReferralCode(ctx context.Context, code string) (*models.Ambassador, error) {
	var ambassador models.Ambassador
	err := r.collection().FindOne(ctx, bson.M{"referralCode": code}).Decode(&ambassador)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ambassador, nil
}

// Insert persists a new ambassador. A duplicate email or phone surfaces as
// ErrDuplicateIdentity via the unique indexes.
func (r *AmbassadorRepository) Insert(ctx context.Context, ambassador *models.Ambassador) error {
	result, err := r.collection().InsertOne(ctx, ambassador)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateIdentity
		}
		return err
	}
	ambassador.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// AppendCommission records a per-order commission: one transaction history
// entry plus the matching wallet credit, in a single atomic update. The
// orderId guard makes the operation idempotent per order.
func (r *AmbassadorRepository) AppendCommission(ctx context.Context, ambassadorID, orderID primitive.ObjectID, amount int64) error {
	entry := models.TransactionEntry{
		OrderID:    orderID,
		Commission: amount,
		Date:       time.Now(),
	}

	result, err := r.collection().UpdateOne(
		ctx,
		bson.M{
			"_id":                        ambassadorID,
			"transactionHistory.orderId": bson.M{"$ne": orderID},
		},
		bson.M{
			"$push": bson.M{"transactionHistory": entry},
			"$inc":  bson.M{"wallet": amount},
		},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		// Either the ambassador is missing or the order was already attributed
		if _, err := r.FindByID(ctx, ambassadorID); err != nil {
			return err
		}
		return ErrAlreadyAttributed
	}
	return nil
}

// AddReferredUser links a referred end user to the ambassador so their orders
// are scoped to it. Called by the user service when a customer signs up with
// an ambassador code.
func (r *AmbassadorRepository) AddReferredUser(ctx context.Context, ambassadorID, userID primitive.ObjectID) error {
	result, err := r.collection().UpdateOne(
		ctx,
		bson.M{"_id": ambassadorID},
		bson.M{"$addToSet": bson.M{"users": userID}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// TopByCommission returns the given number of ambassadors ranked by the sum
// of their attributed commissions, descending.
func (r *AmbassadorRepository) TopByCommission(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$project", Value: bson.M{
			"fullName":     1,
			"referralCode": 1,
			"totalCommission": bson.M{"$sum": "$transactionHistory.commission"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "totalCommission", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := r.collection().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.LeaderboardEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
