package repositories_test

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/feastly/ambassador_backend/config"
	"github.com/feastly/ambassador_backend/repositories"
)

func ensurePaymentIndexes(t *testing.T, client *mongo.Client) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := config.GetCollection(client, "payments").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ambassadorId", Value: 1}, {Key: "planId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "transactionId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		t.Fatalf("create payments indexes: %v", err)
	}
}

func closeEnough(a, b time.Time) bool {
	diff := a.Sub(b)
	return diff > -time.Second && diff < time.Second
}

func TestRecordCaptureStacksValidity(t *testing.T) {
	client := setupTestDB(t)
	ensurePaymentIndexes(t, client)
	repo := repositories.NewPaymentRepository(client)
	ambassadorID := primitive.NewObjectID()
	planID := primitive.NewObjectID()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	first, err := repo.RecordCapture(ctx, ambassadorID, planID, "tx-1", 50000, 30)
	if err != nil {
		t.Fatalf("first capture: %v", err)
	}
	if !closeEnough(first.ExpiryDate, time.Now().AddDate(0, 0, 30)) {
		t.Fatalf("first expiry = %v, want ~30 days out", first.ExpiryDate)
	}

	// Buying again before expiry stacks the new validity on the remaining one
	second, err := repo.RecordCapture(ctx, ambassadorID, planID, "tx-2", 50000, 30)
	if err != nil {
		t.Fatalf("second capture: %v", err)
	}
	if !closeEnough(second.ExpiryDate, first.ExpiryDate.AddDate(0, 0, 30)) {
		t.Fatalf("second expiry = %v, want first expiry + 30 days (%v)",
			second.ExpiryDate, first.ExpiryDate.AddDate(0, 0, 30))
	}
}

func TestRecordCaptureReplayDoesNotExtend(t *testing.T) {
	client := setupTestDB(t)
	ensurePaymentIndexes(t, client)
	repo := repositories.NewPaymentRepository(client)
	ambassadorID := primitive.NewObjectID()
	planID := primitive.NewObjectID()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	first, err := repo.RecordCapture(ctx, ambassadorID, planID, "tx-1", 50000, 30)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}

	// A client retry carries the same gateway transaction id
	if _, err := repo.RecordCapture(ctx, ambassadorID, planID, "tx-1", 50000, 30); err != repositories.ErrAlreadyCaptured {
		t.Fatalf("expected ErrAlreadyCaptured on replay, got %v", err)
	}

	stored, err := repo.FindByAmbassadorAndPlan(ctx, ambassadorID, planID)
	if err != nil {
		t.Fatalf("load payment: %v", err)
	}
	if !closeEnough(stored.ExpiryDate, first.ExpiryDate) {
		t.Fatalf("expiry moved on replay: %v vs %v", stored.ExpiryDate, first.ExpiryDate)
	}
	if stored.TransactionID != "tx-1" {
		t.Fatalf("expected transaction tx-1 kept, got %q", stored.TransactionID)
	}
}

func TestRecordCaptureRejectsConsumedTransaction(t *testing.T) {
	client := setupTestDB(t)
	ensurePaymentIndexes(t, client)
	repo := repositories.NewPaymentRepository(client)
	ambassadorID := primitive.NewObjectID()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if _, err := repo.RecordCapture(ctx, ambassadorID, primitive.NewObjectID(), "tx-1", 50000, 30); err != nil {
		t.Fatalf("capture: %v", err)
	}

	// The same gateway transaction cannot pay for a second plan
	_, err := repo.RecordCapture(ctx, ambassadorID, primitive.NewObjectID(), "tx-1", 50000, 30)
	if err != repositories.ErrAlreadyCaptured {
		t.Fatalf("expected ErrAlreadyCaptured for consumed transaction, got %v", err)
	}
}
