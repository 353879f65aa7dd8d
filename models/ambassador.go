// models/ambassador.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ambassador model. Wallet and all commission amounts are stored in paise.
type Ambassador struct {
	ID                 primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	FullName           string               `json:"fullName" bson:"fullName"`
	Email              string               `json:"email" bson:"email"`
	Phone              string               `json:"phone" bson:"phone"`
	Password           string               `json:"password,omitempty" bson:"password"`
	ReferralCode       string               `json:"referralCode" bson:"referralCode"`
	ReferredBy         string               `json:"referredBy,omitempty" bson:"referredBy,omitempty"`
	Wallet             int64                `json:"wallet" bson:"wallet"`
	TransactionHistory []TransactionEntry   `json:"transactionHistory" bson:"transactionHistory"`
	Status             string               `json:"status" bson:"status"`       // "pending", "approved", "rejected"
	KycStatus          string               `json:"kycStatus" bson:"kycStatus"` // "pending", "approved", "rejected"
	Documents          KycDocuments         `json:"documents" bson:"documents"`
	Users              []primitive.ObjectID `json:"users,omitempty" bson:"users,omitempty"`
	CreatedAt          time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// TransactionEntry is one attributed commission, append-only, one per order.
type TransactionEntry struct {
	OrderID    primitive.ObjectID `json:"orderId" bson:"orderId"`
	Commission int64              `json:"commission" bson:"commission"`
	Date       time.Time          `json:"date" bson:"date"`
}

// KycDocuments holds URLs of the verification documents collected at signup.
// The files themselves live in object storage; only the URLs are persisted.
type KycDocuments struct {
	IDProof      string `json:"idProof" bson:"idProof"`
	AddressProof string `json:"addressProof" bson:"addressProof"`
	PhotoURL     string `json:"photoUrl,omitempty" bson:"photoUrl,omitempty"`
}

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// SignupRequest is the request body for ambassador registration
type SignupRequest struct {
	FullName     string `json:"fullName" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"required"`
	Password     string `json:"password" validate:"required,min=8"`
	IDProof      string `json:"idProof" validate:"required"`
	AddressProof string `json:"addressProof" validate:"required"`
	PhotoURL     string `json:"photoUrl"`
	ReferredBy   string `json:"referredBy"`
}

type LoginRequest struct {
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LedgerResponse is the payload returned by the ledger endpoint
type LedgerResponse struct {
	Balance            int64              `json:"balance"`
	TransactionHistory []TransactionEntry `json:"transactionHistory"`
}

// Response model
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
