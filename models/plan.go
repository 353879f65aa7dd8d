package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AmbassadorPlan represents a paid subscription plan for ambassadors
type AmbassadorPlan struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Price        int64              `json:"price" bson:"price"`
	ValidityDays int                `json:"validityDays" bson:"validityDays"`
	Benefits     []string           `json:"benefits" bson:"benefits"`
	IsActive     bool               `json:"isActive" bson:"isActive"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// AmbassadorPayment is the most recent purchase of a plan by an ambassador.
// One document per (ambassador, plan); a re-purchase extends the expiry.
type AmbassadorPayment struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AmbassadorID  primitive.ObjectID `json:"ambassadorId" bson:"ambassadorId"`
	PlanID        primitive.ObjectID `json:"planId" bson:"planId"`
	TransactionID string             `json:"transactionId" bson:"transactionId"`
	Amount        int64              `json:"amount" bson:"amount"`
	PurchaseDate  time.Time          `json:"purchaseDate" bson:"purchaseDate"`
	ExpiryDate    time.Time          `json:"expiryDate" bson:"expiryDate"`
	IsPurchased   bool               `json:"isPurchased" bson:"isPurchased"`
}

// ExtendExpiry computes the expiry of a purchase made at the given time.
// An unexpired earlier purchase stacks: validity is added on top of the
// remaining entitlement instead of replacing it.
func (p *AmbassadorPayment) ExtendExpiry(now time.Time, validityDays int) time.Time {
	base := now
	if p != nil && p.ExpiryDate.After(now) {
		base = p.ExpiryDate
	}
	return base.AddDate(0, 0, validityDays)
}

// PlanRequest is the admin request body for creating a subscription plan
type PlanRequest struct {
	Name         string   `json:"name" validate:"required"`
	Price        int64    `json:"price" validate:"required,gt=0"`
	ValidityDays int      `json:"validityDays" validate:"required,gt=0"`
	Benefits     []string `json:"benefits" validate:"required,min=1"`
}

// PurchaseRequest is the request body for capturing a plan payment
type PurchaseRequest struct {
	TransactionID string `json:"transactionId" validate:"required"`
}
