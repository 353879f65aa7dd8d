package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/feastly/ambassador_backend/config"
	"github.com/feastly/ambassador_backend/metrics"
	"github.com/feastly/ambassador_backend/middleware"
	"github.com/feastly/ambassador_backend/models"
	"github.com/feastly/ambassador_backend/repositories"
	"github.com/feastly/ambassador_backend/services"
	"github.com/feastly/ambassador_backend/utils"
)

type AmbassadorController struct {
	db              *mongo.Client
	ambassadorRepo  *repositories.AmbassadorRepository
	referralService *services.ReferralService
	metrics         *metrics.AmbassadorMetrics
}

func NewAmbassadorController(db *mongo.Client, referralService *services.ReferralService, m *metrics.AmbassadorMetrics) *AmbassadorController {
	return &AmbassadorController{
		db:              db,
		ambassadorRepo:  repositories.NewAmbassadorRepository(db),
		referralService: referralService,
		metrics:         m,
	}
}

// Signup registers a new ambassador. The referral bonus for the referrer is
// credited after the insert commits and never blocks or fails the signup.
func (ac *AmbassadorController) Signup(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
			Data:    err.Error(),
		})
	}

	if req.IDProof == "" || req.AddressProof == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Required KYC documents missing: id proof and address proof must be uploaded",
		})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid signup data",
			Data:    err.Error(),
		})
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process password",
		})
	}

	seq, err := ac.ambassadorRepo.NextReferralSequence(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to allocate referral code",
		})
	}

	now := time.Now()
	ambassador := models.Ambassador{
		FullName:           req.FullName,
		Email:              req.Email,
		Phone:              req.Phone,
		Password:           hashedPassword,
		ReferralCode:       utils.FormatReferralCode(utils.AmbassadorPrefix, seq),
		ReferredBy:         utils.NormalizeReferralCode(req.ReferredBy),
		Wallet:             0,
		TransactionHistory: []models.TransactionEntry{},
		Status:             models.StatusPending,
		KycStatus:          models.StatusPending,
		Documents: models.KycDocuments{
			IDProof:      req.IDProof,
			AddressProof: req.AddressProof,
			PhotoURL:     req.PhotoURL,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := ac.ambassadorRepo.Insert(ctx, &ambassador); err != nil {
		if err == repositories.ErrDuplicateIdentity {
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "An ambassador with this email or phone already exists",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create ambassador",
			Data:    err.Error(),
		})
	}

	// The signup is committed; crediting the referrer is best-effort from here
	ac.referralService.CreditSignupBonus(ctx, ambassador.ID, utils.AmbassadorReferral, ambassador.ReferredBy)

	ac.metrics.SignupsTotal.Inc()

	token, refreshToken, err := middleware.GenerateJWT(ambassador.ID.Hex(), ambassador.Email, "ambassador")
	if err != nil {
		log.Printf("Failed to generate token for new ambassador %s: %v", ambassador.ID.Hex(), err)
	}

	ambassador.Password = ""
	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Ambassador registered successfully",
		Data: bson.M{
			"ambassador":   ambassador,
			"token":        token,
			"refreshToken": refreshToken,
		},
	})
}

// Login authenticates an ambassador by phone number and password
func (ac *AmbassadorController) Login(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Phone and password are required",
		})
	}

	ambassador, err := ac.ambassadorRepo.FindByPhone(ctx, req.Phone)
	if err == repositories.ErrNotFound {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid phone number or password",
		})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Database error",
		})
	}

	if !utils.CheckPassword(ambassador.Password, req.Password) {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid phone number or password",
		})
	}

	token, refreshToken, err := middleware.GenerateJWT(ambassador.ID.Hex(), ambassador.Email, "ambassador")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate token",
		})
	}

	ambassador.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data: bson.M{
			"ambassador":   ambassador,
			"token":        token,
			"refreshToken": refreshToken,
		},
	})
}

// GetLedger returns the wallet balance and full transaction history
func (ac *AmbassadorController) GetLedger(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ambassador, ok := currentAmbassador(ctx, c, ac.ambassadorRepo)
	if !ok {
		return nil
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Ledger fetched successfully",
		Data: models.LedgerResponse{
			Balance:            ambassador.Wallet,
			TransactionHistory: ambassador.TransactionHistory,
		},
	})
}

// GetOrders returns the orders of the ambassador's referred users, each
// joined with the commission attributed for it (0 when none).
func (ac *AmbassadorController) GetOrders(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ambassador, ok := currentAmbassador(ctx, c, ac.ambassadorRepo)
	if !ok {
		return nil
	}

	orders := []models.Order{}
	if len(ambassador.Users) > 0 {
		cursor, err := config.GetCollection(ac.db, "orders").Find(ctx, bson.M{
			"userId": bson.M{"$in": ambassador.Users},
		})
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to fetch orders",
			})
		}
		defer cursor.Close(ctx)
		if err := cursor.All(ctx, &orders); err != nil {
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to decode orders",
			})
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Orders fetched successfully",
		Data:    MergeOrderCommissions(orders, ambassador.TransactionHistory),
	})
}

// GetDashboard aggregates the numbers the ambassador app's home screen shows
func (ac *AmbassadorController) GetDashboard(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ambassador, ok := currentAmbassador(ctx, c, ac.ambassadorRepo)
	if !ok {
		return nil
	}

	var totalCommission int64
	for _, entry := range ambassador.TransactionHistory {
		totalCommission += entry.Commission
	}

	pendingWithdrawals, err := config.GetCollection(ac.db, "withdrawals").CountDocuments(ctx, bson.M{
		"ambassadorId": ambassador.ID,
		"status":       models.WithdrawalPending,
	})
	if err != nil {
		log.Printf("Failed to count pending withdrawals for %s: %v", ambassador.ID.Hex(), err)
	}

	var activePlan *models.AmbassadorPayment
	var payment models.AmbassadorPayment
	err = config.GetCollection(ac.db, "payments").FindOne(ctx, bson.M{
		"ambassadorId": ambassador.ID,
		"isPurchased":  true,
		"expiryDate":   bson.M{"$gt": time.Now()},
	}).Decode(&payment)
	if err == nil {
		activePlan = &payment
	} else if err != mongo.ErrNoDocuments {
		log.Printf("Failed to fetch active plan for %s: %v", ambassador.ID.Hex(), err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Dashboard fetched successfully",
		Data: bson.M{
			"wallet":             ambassador.Wallet,
			"totalCommission":    totalCommission,
			"referredUsers":      len(ambassador.Users),
			"totalOrders":        len(ambassador.TransactionHistory),
			"pendingWithdrawals": pendingWithdrawals,
			"status":             ambassador.Status,
			"kycStatus":          ambassador.KycStatus,
			"activePlan":         activePlan,
		},
	})
}

// currentAmbassador loads the ambassador identified by the request token.
// On failure the error response has already been written and ok is false.
func currentAmbassador(ctx context.Context, c echo.Context, repo *repositories.AmbassadorRepository) (*models.Ambassador, bool) {
	userID, err := middleware.ExtractUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "User ID not found in token",
		})
		return nil, false
	}

	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID format",
		})
		return nil, false
	}

	ambassador, err := repo.FindByID(ctx, objID)
	if err == repositories.ErrNotFound {
		c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Ambassador not found",
		})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Database error",
			Data:    err.Error(),
		})
		return nil, false
	}
	return ambassador, true
}

// MergeOrderCommissions joins orders with the per-order commissions from the
// transaction history. Every order appears exactly once with a commission of
// 0 when none was attributed; history entries whose order no longer resolves
// are skipped.
func MergeOrderCommissions(orders []models.Order, history []models.TransactionEntry) []models.OrderWithCommission {
	byOrder := make(map[primitive.ObjectID]int64, len(history))
	for _, entry := range history {
		byOrder[entry.OrderID] = entry.Commission
	}

	merged := make([]models.OrderWithCommission, 0, len(orders))
	for _, order := range orders {
		merged = append(merged, models.OrderWithCommission{
			Order:      order,
			Commission: byOrder[order.ID],
		})
	}
	return merged
}
