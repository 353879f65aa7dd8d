package services_test

import (
	"context"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/feastly/ambassador_backend/config"
	"github.com/feastly/ambassador_backend/metrics"
	"github.com/feastly/ambassador_backend/models"
	"github.com/feastly/ambassador_backend/services"
	"github.com/feastly/ambassador_backend/utils"
)

var testMetrics = metrics.NewAmbassadorMetrics()

// Crediting runs in a transaction, so these tests need a replica-set MongoDB.
// Set MONGO_TEST_URI to enable them.
func setupCreditTest(t *testing.T) *mongo.Client {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI is not set")
	}

	t.Setenv("DB_NAME", "feastly_test")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("mongo connect: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		t.Fatalf("mongo ping: %v", err)
	}

	if err := client.Database(config.DBName()).Drop(ctx); err != nil {
		t.Fatalf("drop test db: %v", err)
	}

	// The unique index on referredId is what makes crediting idempotent
	_, err = config.GetCollection(client, "referralBonuses").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "referredId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		t.Fatalf("create referralBonuses index: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client.Database(config.DBName()).Drop(ctx)
		client.Disconnect(ctx)
	})

	return client
}

func seedReferrer(t *testing.T, client *mongo.Client, code string) primitive.ObjectID {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := config.GetCollection(client, "ambassadors").InsertOne(ctx, models.Ambassador{
		FullName:     "Referrer",
		ReferralCode: code,
		Wallet:       0,
	})
	if err != nil {
		t.Fatalf("seed referrer: %v", err)
	}
	return result.InsertedID.(primitive.ObjectID)
}

func seedBonusAmount(t *testing.T, client *mongo.Client, bonusType string, amount int64) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := config.GetCollection(client, "bonusAmounts").InsertOne(ctx, models.BonusAmount{
		Type:      bonusType,
		Amount:    amount,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("seed bonus amount: %v", err)
	}
}

func referrerWallet(t *testing.T, client *mongo.Client, id primitive.ObjectID) int64 {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var ambassador models.Ambassador
	if err := config.GetCollection(client, "ambassadors").FindOne(ctx, bson.M{"_id": id}).Decode(&ambassador); err != nil {
		t.Fatalf("load referrer: %v", err)
	}
	return ambassador.Wallet
}

func bonusCount(t *testing.T, client *mongo.Client, referredID primitive.ObjectID) int64 {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := config.GetCollection(client, "referralBonuses").CountDocuments(ctx, bson.M{"referredId": referredID})
	if err != nil {
		t.Fatalf("count bonuses: %v", err)
	}
	return count
}

func TestCreditSignupBonusOnce(t *testing.T) {
	client := setupCreditTest(t)
	referrerID := seedReferrer(t, client, "AMB-000001")
	seedBonusAmount(t, client, models.BonusAmbassadorToAmbassador, 5000)

	service := services.NewReferralService(client, testMetrics)
	referredID := primitive.NewObjectID()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	service.CreditSignupBonus(ctx, referredID, utils.AmbassadorReferral, "amb-000001")

	if wallet := referrerWallet(t, client, referrerID); wallet != 5000 {
		t.Fatalf("expected referrer wallet 5000, got %d", wallet)
	}
	if count := bonusCount(t, client, referredID); count != 1 {
		t.Fatalf("expected 1 bonus record, got %d", count)
	}

	// Replaying the signup event must not double-credit
	service.CreditSignupBonus(ctx, referredID, utils.AmbassadorReferral, "AMB-000001")

	if wallet := referrerWallet(t, client, referrerID); wallet != 5000 {
		t.Fatalf("expected referrer wallet still 5000, got %d", wallet)
	}
	if count := bonusCount(t, client, referredID); count != 1 {
		t.Fatalf("expected still 1 bonus record, got %d", count)
	}
}

func TestCreditSignupBonusDegradesToNoop(t *testing.T) {
	client := setupCreditTest(t)
	referrerID := seedReferrer(t, client, "AMB-000001")

	service := services.NewReferralService(client, testMetrics)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Blank code
	service.CreditSignupBonus(ctx, primitive.NewObjectID(), utils.AmbassadorReferral, "  ")
	// Unknown prefix
	service.CreditSignupBonus(ctx, primitive.NewObjectID(), utils.AmbassadorReferral, "XYZ-000001")
	// Unresolvable code
	service.CreditSignupBonus(ctx, primitive.NewObjectID(), utils.AmbassadorReferral, "AMB-999999")
	// Known referrer but no bonus amount configured
	service.CreditSignupBonus(ctx, primitive.NewObjectID(), utils.AmbassadorReferral, "AMB-000001")

	if wallet := referrerWallet(t, client, referrerID); wallet != 0 {
		t.Fatalf("expected referrer wallet untouched at 0, got %d", wallet)
	}
}
