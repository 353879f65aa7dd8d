package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vendor is a restaurant partner. Only the fields the referral and ledger
// paths touch are modelled here; vendor onboarding lives in its own service.
type Vendor struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Email        string             `json:"email" bson:"email"`
	ReferralCode string             `json:"referralCode" bson:"referralCode"`
	ReferredBy   string             `json:"referredBy,omitempty" bson:"referredBy,omitempty"`
	Wallet       int64              `json:"wallet" bson:"wallet"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
}
