package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order is a food order placed by a referred user. Orders are written by the
// ordering service; this backend only reads them for commission attribution.
type Order struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	VendorID  primitive.ObjectID `json:"vendorId,omitempty" bson:"vendorId,omitempty"`
	Total     int64              `json:"total" bson:"total"`
	Status    string             `json:"status" bson:"status"` // "placed", "delivered", "cancelled"
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// OrderWithCommission is an order joined with the commission attributed to the
// ambassador for it, 0 when no transaction history entry exists.
type OrderWithCommission struct {
	Order      `bson:",inline"`
	Commission int64 `json:"commission"`
}

// CommissionRequest is the admin/internal request body for attributing a
// per-order commission to an ambassador.
type CommissionRequest struct {
	AmbassadorID string `json:"ambassadorId" validate:"required"`
	OrderID      string `json:"orderId" validate:"required"`
	Commission   int64  `json:"commission" validate:"required,gt=0"`
}
