package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	WithdrawalPending  = "pending"
	WithdrawalAccepted = "accepted"
	WithdrawalRejected = "rejected"
)

type Withdrawal struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	AmbassadorID    primitive.ObjectID  `bson:"ambassadorId" json:"ambassadorId"`
	Amount          int64               `bson:"amount" json:"amount"`
	Status          string              `bson:"status" json:"status"` // "pending", "accepted", "rejected"
	AccountDetails  *BankAccount        `bson:"accountDetails,omitempty" json:"accountDetails,omitempty"`
	UpiID           string              `bson:"upiId,omitempty" json:"upiId,omitempty"`
	RequestedAt     time.Time           `bson:"requestedAt" json:"requestedAt"`
	ApprovedAt      *time.Time          `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	RejectedAt      *time.Time          `bson:"rejectedAt,omitempty" json:"rejectedAt,omitempty"`
	RejectionReason string              `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`
	AdminID         *primitive.ObjectID `bson:"adminId,omitempty" json:"adminId,omitempty"`
}

type BankAccount struct {
	AccountHolder string `bson:"accountHolder" json:"accountHolder"`
	AccountNumber string `bson:"accountNumber" json:"accountNumber"`
	IFSCCode      string `bson:"ifscCode" json:"ifscCode"`
	BankName      string `bson:"bankName,omitempty" json:"bankName,omitempty"`
}

// WithdrawalRequest is the request body for creating a withdrawal
type WithdrawalRequest struct {
	Amount         int64        `json:"amount" validate:"required,gt=0"`
	AccountDetails *BankAccount `json:"accountDetails,omitempty"`
	UpiID          string       `json:"upiId,omitempty"`
}

// HasPayoutDestination reports whether at least one payout destination is set.
func (r *WithdrawalRequest) HasPayoutDestination() bool {
	if r.UpiID != "" {
		return true
	}
	return r.AccountDetails != nil && r.AccountDetails.AccountNumber != "" && r.AccountDetails.IFSCCode != ""
}

// WithdrawalDecisionRequest is the admin request body for deciding a withdrawal
type WithdrawalDecisionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=accepted rejected"`
	Reason   string `json:"reason,omitempty"`
}
