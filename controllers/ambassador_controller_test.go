package controllers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/feastly/ambassador_backend/models"
)

func TestMergeOrderCommissions(t *testing.T) {
	orderA := primitive.NewObjectID()
	orderB := primitive.NewObjectID()
	danglingOrder := primitive.NewObjectID()

	orders := []models.Order{
		{ID: orderA, Total: 50000},
		{ID: orderB, Total: 30000},
	}
	history := []models.TransactionEntry{
		{OrderID: orderA, Commission: 2500},
		{OrderID: danglingOrder, Commission: 9999},
	}

	merged := MergeOrderCommissions(orders, history)

	if len(merged) != len(orders) {
		t.Fatalf("got %d merged orders, want %d", len(merged), len(orders))
	}
	if merged[0].Commission != 2500 {
		t.Errorf("order with history entry: commission = %d, want 2500", merged[0].Commission)
	}
	if merged[1].Commission != 0 {
		t.Errorf("order without history entry: commission = %d, want 0", merged[1].Commission)
	}
}

func TestMergeOrderCommissionsEmpty(t *testing.T) {
	merged := MergeOrderCommissions(nil, nil)
	if len(merged) != 0 {
		t.Errorf("got %d merged orders for no input, want 0", len(merged))
	}
}

func TestRankOf(t *testing.T) {
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()
	outsider := primitive.NewObjectID()

	top := []models.LeaderboardEntry{
		{ID: first, TotalCommission: 100000},
		{ID: second, TotalCommission: 50000},
	}

	if got := rankOf(top, first); got != 1 {
		t.Errorf("rankOf(first) = %d, want 1", got)
	}
	if got := rankOf(top, second); got != 2 {
		t.Errorf("rankOf(second) = %d, want 2", got)
	}
	if got := rankOf(top, outsider); got != 0 {
		t.Errorf("rankOf(outsider) = %d, want 0", got)
	}
	if got := rankOf(nil, first); got != 0 {
		t.Errorf("rankOf on empty list = %d, want 0", got)
	}
}
