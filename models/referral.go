package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Bonus types key the bonusAmounts table by (referrer kind -> referred kind).
const (
	BonusAmbassadorToAmbassador = "ambassador_to_ambassador"
	BonusVendorToAmbassador     = "vendor_to_ambassador"
	BonusAmbassadorToVendor     = "ambassador_to_vendor"
	BonusVendorToVendor         = "vendor_to_vendor"
)

// BonusAmount is one row of the bonus amount table, administratively updated.
type BonusAmount struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Type      string             `json:"type" bson:"type"`
	Amount    int64              `json:"amount" bson:"amount"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ReferralBonus is the immutable audit record of one referral credit.
type ReferralBonus struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Reference    string             `json:"reference" bson:"reference"`
	ReferrerID   primitive.ObjectID `json:"referrerId" bson:"referrerId"`
	ReferrerKind string             `json:"referrerKind" bson:"referrerKind"` // "ambassador" or "vendor"
	ReferredID   primitive.ObjectID `json:"referredId" bson:"referredId"`
	ReferralCode string             `json:"referralCode" bson:"referralCode"`
	Amount       int64              `json:"amount" bson:"amount"`
	BonusType    string             `json:"bonusType" bson:"bonusType"`
	Status       string             `json:"status" bson:"status"` // "credited"
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
}

// BonusAmountRequest is the admin request body for setting a bonus amount
type BonusAmountRequest struct {
	Type   string `json:"type" validate:"required,oneof=ambassador_to_ambassador vendor_to_ambassador ambassador_to_vendor vendor_to_vendor"`
	Amount int64  `json:"amount" validate:"required,gt=0"`
}

// ReferralData is returned by the referral data endpoint
type ReferralData struct {
	ReferralCode  string `json:"referralCode"`
	ReferralCount int    `json:"referralCount"`
	ReferralLink  string `json:"referralLink"`
}
