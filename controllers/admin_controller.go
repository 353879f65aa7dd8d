package controllers

import (
	"context"
	"crypto/subtle"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/feastly/ambassador_backend/config"
	"github.com/feastly/ambassador_backend/metrics"
	"github.com/feastly/ambassador_backend/middleware"
	"github.com/feastly/ambassador_backend/models"
	"github.com/feastly/ambassador_backend/repositories"
)

type AdminController struct {
	db             *mongo.Client
	ambassadorRepo *repositories.AmbassadorRepository
	metrics        *metrics.AmbassadorMetrics
}

func NewAdminController(db *mongo.Client, m *metrics.AmbassadorMetrics) *AdminController {
	return &AdminController{
		db:             db,
		ambassadorRepo: repositories.NewAmbassadorRepository(db),
		metrics:        m,
	}
}

type adminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type linkUserRequest struct {
	ReferralCode string `json:"referralCode" validate:"required"`
	UserID       string `json:"userId" validate:"required"`
}

// AdminLogin authenticates the platform admin against environment credentials
func (ac *AdminController) AdminLogin(c echo.Context) error {
	var req adminLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Email and password are required",
		})
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Admin credentials are not configured",
		})
	}

	emailOK := subtle.ConstantTimeCompare([]byte(req.Email), []byte(adminEmail)) == 1
	passwordOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(adminPassword)) == 1
	if !emailOK || !passwordOK {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid admin credentials",
		})
	}

	token, refreshToken, err := middleware.GenerateJWT(primitive.NewObjectID().Hex(), req.Email, "admin")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate token",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Admin login successful",
		Data: map[string]string{
			"token":        token,
			"refreshToken": refreshToken,
		},
	})
}

// RecordOrderCommission attributes a per-order commission to an ambassador.
// Attribution is idempotent per order: replaying the same order id neither
// duplicates the ledger entry nor re-credits the wallet.
func (ac *AdminController) RecordOrderCommission(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.CommissionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed",
			Data:    err.Error(),
		})
	}

	ambassadorID, err := primitive.ObjectIDFromHex(req.AmbassadorID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid ambassador ID format",
		})
	}
	orderID, err := primitive.ObjectIDFromHex(req.OrderID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid order ID format",
		})
	}

	err = ac.ambassadorRepo.AppendCommission(ctx, ambassadorID, orderID, req.Commission)
	switch err {
	case nil:
		ac.metrics.CommissionsTotal.Inc()
	case repositories.ErrAlreadyAttributed:
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "Commission already recorded for this order",
		})
	case repositories.ErrNotFound:
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Ambassador not found",
		})
	default:
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to record commission",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Commission recorded successfully",
	})
}

// SetBonusAmount upserts a referral bonus amount for a referrer/referred pair
func (ac *AdminController) SetBonusAmount(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.BonusAmountRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed",
			Data:    err.Error(),
		})
	}

	collection := config.GetCollection(ac.db, "bonusAmounts")
	update := bson.M{
		"$set": bson.M{
			"amount":    req.Amount,
			"updatedAt": time.Now(),
		},
		"$setOnInsert": bson.M{"type": req.Type},
	}
	_, err := collection.UpdateOne(ctx, bson.M{"type": req.Type}, update,
		options.Update().SetUpsert(true))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update bonus amount",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Bonus amount updated successfully",
		Data: models.BonusAmount{
			Type:      req.Type,
			Amount:    req.Amount,
			UpdatedAt: time.Now(),
		},
	})
}

// LinkReferredUser attaches a platform user who signed up with an ambassador's
// referral code to that ambassador. Called by the customer-facing service.
func (ac *AdminController) LinkReferredUser(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req linkUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Referral code and user ID are required",
		})
	}

	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID format",
		})
	}

	ambassador, err := ac.ambassadorRepo.FindByReferralCode(ctx, req.ReferralCode)
	if err == repositories.ErrNotFound {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "No ambassador found for this referral code",
		})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to look up referral code",
		})
	}

	if err := ac.ambassadorRepo.AddReferredUser(ctx, ambassador.ID, userID); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to link referred user",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "User linked to ambassador successfully",
	})
}
