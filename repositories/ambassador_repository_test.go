package repositories_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/feastly/ambassador_backend/config"
	"github.com/feastly/ambassador_backend/models"
	"github.com/feastly/ambassador_backend/repositories"
)

func TestNextReferralSequenceIsMonotonic(t *testing.T) {
	client := setupTestDB(t)
	repo := repositories.NewAmbassadorRepository(client)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	first, err := repo.NextReferralSequence(ctx)
	if err != nil {
		t.Fatalf("first sequence: %v", err)
	}
	second, err := repo.NextReferralSequence(ctx)
	if err != nil {
		t.Fatalf("second sequence: %v", err)
	}

	if second != first+1 {
		t.Fatalf("expected consecutive sequences, got %d then %d", first, second)
	}
}

func TestAppendCommissionIdempotentPerOrder(t *testing.T) {
	client := setupTestDB(t)
	ambassadorID := seedAmbassador(t, client, 0)
	repo := repositories.NewAmbassadorRepository(client)
	orderID := primitive.NewObjectID()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := repo.AppendCommission(ctx, ambassadorID, orderID, 2500); err != nil {
		t.Fatalf("first attribution: %v", err)
	}

	// Replaying the same order must neither re-credit nor duplicate the entry
	if err := repo.AppendCommission(ctx, ambassadorID, orderID, 2500); err != repositories.ErrAlreadyAttributed {
		t.Fatalf("expected ErrAlreadyAttributed, got %v", err)
	}

	ambassador, err := repo.FindByID(ctx, ambassadorID)
	if err != nil {
		t.Fatalf("load ambassador: %v", err)
	}
	if ambassador.Wallet != 2500 {
		t.Fatalf("expected wallet 2500, got %d", ambassador.Wallet)
	}
	if len(ambassador.TransactionHistory) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(ambassador.TransactionHistory))
	}
	if ambassador.TransactionHistory[0].OrderID != orderID {
		t.Fatalf("history entry carries wrong order id")
	}

	// A different order credits on top
	if err := repo.AppendCommission(ctx, ambassadorID, primitive.NewObjectID(), 1000); err != nil {
		t.Fatalf("second order attribution: %v", err)
	}
	ambassador, err = repo.FindByID(ctx, ambassadorID)
	if err != nil {
		t.Fatalf("reload ambassador: %v", err)
	}
	if ambassador.Wallet != 3500 {
		t.Fatalf("expected wallet 3500, got %d", ambassador.Wallet)
	}
}

func TestAppendCommissionUnknownAmbassador(t *testing.T) {
	client := setupTestDB(t)
	repo := repositories.NewAmbassadorRepository(client)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := repo.AppendCommission(ctx, primitive.NewObjectID(), primitive.NewObjectID(), 2500)
	if err != repositories.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTopByCommissionOrdersDescending(t *testing.T) {
	client := setupTestDB(t)
	repo := repositories.NewAmbassadorRepository(client)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	commissions := []int64{1000, 9000, 5000}
	for i, total := range commissions {
		_, err := config.GetCollection(client, "ambassadors").InsertOne(ctx, models.Ambassador{
			FullName:     fmt.Sprintf("Ambassador %d", i),
			ReferralCode: fmt.Sprintf("AMB-%06d", i+1),
			TransactionHistory: []models.TransactionEntry{
				{OrderID: primitive.NewObjectID(), Commission: total, Date: time.Now()},
			},
		})
		if err != nil {
			t.Fatalf("seed ambassador %d: %v", i, err)
		}
	}

	top, err := repo.TopByCommission(ctx, 2)
	if err != nil {
		t.Fatalf("top by commission: %v", err)
	}

	if len(top) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(top))
	}
	if top[0].TotalCommission != 9000 || top[1].TotalCommission != 5000 {
		t.Fatalf("expected totals [9000 5000], got [%d %d]", top[0].TotalCommission, top[1].TotalCommission)
	}
}
