package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/feastly/ambassador_backend/metrics"
	"github.com/feastly/ambassador_backend/middleware"
	"github.com/feastly/ambassador_backend/models"
	"github.com/feastly/ambassador_backend/repositories"
	"github.com/feastly/ambassador_backend/utils"
	"github.com/feastly/ambassador_backend/websocket"
)

type WithdrawalController struct {
	db             *mongo.Client
	withdrawalRepo *repositories.WithdrawalRepository
	ambassadorRepo *repositories.AmbassadorRepository
	wsHub          *websocket.Hub
	metrics        *metrics.AmbassadorMetrics
}

func NewWithdrawalController(db *mongo.Client, wsHub *websocket.Hub, m *metrics.AmbassadorMetrics) *WithdrawalController {
	return &WithdrawalController{
		db:             db,
		withdrawalRepo: repositories.NewWithdrawalRepository(db),
		ambassadorRepo: repositories.NewAmbassadorRepository(db),
		wsHub:          wsHub,
		metrics:        m,
	}
}

// CreateWithdrawal files a pending withdrawal request against the wallet.
// The wallet is not debited until an admin accepts the request.
func (wc *WithdrawalController) CreateWithdrawal(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ambassador, ok := currentAmbassador(ctx, c, wc.ambassadorRepo)
	if !ok {
		return nil
	}

	var req models.WithdrawalRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Withdrawal amount must be greater than zero",
		})
	}

	if !req.HasPayoutDestination() {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "A payout destination is required: provide bank account details or a UPI id",
		})
	}

	withdrawal, err := wc.withdrawalRepo.Create(ctx, ambassador.ID, &req)
	if err == repositories.ErrInsufficientFunds {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Withdrawal amount exceeds wallet balance",
		})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create withdrawal request",
			Data:    err.Error(),
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Withdrawal request submitted",
		Data:    withdrawal,
	})
}

// ListMyWithdrawals returns the ambassador's withdrawal history, newest first
func (wc *WithdrawalController) ListMyWithdrawals(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ambassador, ok := currentAmbassador(ctx, c, wc.ambassadorRepo)
	if !ok {
		return nil
	}

	withdrawals, err := wc.withdrawalRepo.ListByAmbassador(ctx, ambassador.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch withdrawal history",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Withdrawal history fetched successfully",
		Data:    withdrawals,
	})
}

// ListPendingWithdrawals returns all pending requests for the admin queue
func (wc *WithdrawalController) ListPendingWithdrawals(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	withdrawals, err := wc.withdrawalRepo.ListPending(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch pending withdrawals",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Pending withdrawals fetched successfully",
		Data:    withdrawals,
	})
}

// DecideWithdrawal accepts or rejects a pending withdrawal request. A request
// is decided at most once; accepting debits the wallet in the same
// transaction that flips the status.
func (wc *WithdrawalController) DecideWithdrawal(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	withdrawalID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid withdrawal ID format",
		})
	}

	var req models.WithdrawalDecisionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Decision must be 'accepted' or 'rejected'",
		})
	}

	claims := middleware.GetUserFromToken(c)
	adminID := primitive.NilObjectID
	if claims != nil {
		if id, err := primitive.ObjectIDFromHex(claims.UserID); err == nil {
			adminID = id
		}
	}

	var withdrawal *models.Withdrawal
	switch req.Decision {
	case models.WithdrawalAccepted:
		withdrawal, err = wc.withdrawalRepo.Accept(ctx, withdrawalID, adminID)
	case models.WithdrawalRejected:
		withdrawal, err = wc.withdrawalRepo.Reject(ctx, withdrawalID, adminID, req.Reason)
	}

	switch err {
	case nil:
	case repositories.ErrNotFound:
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Withdrawal request not found",
		})
	case repositories.ErrInvalidState:
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Withdrawal request has already been decided",
		})
	case repositories.ErrInsufficientFunds:
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Wallet balance no longer covers the requested amount; request left pending",
		})
	default:
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process withdrawal decision",
			Data:    err.Error(),
		})
	}

	wc.metrics.RecordWithdrawalDecision(withdrawal.Status)
	wc.notifyDecision(ctx, withdrawal)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Withdrawal request " + withdrawal.Status,
		Data:    withdrawal,
	})
}

// notifyDecision pushes the decision over WebSocket and email, best-effort
func (wc *WithdrawalController) notifyDecision(ctx context.Context, withdrawal *models.Withdrawal) {
	if err := wc.wsHub.NotifyWithdrawalDecision(withdrawal.AmbassadorID, withdrawal); err != nil {
		log.Printf("Withdrawal %s: websocket notification skipped: %v", withdrawal.ID.Hex(), err)
	}

	ambassador, err := wc.ambassadorRepo.FindByID(ctx, withdrawal.AmbassadorID)
	if err != nil {
		log.Printf("Withdrawal %s: could not load ambassador for email: %v", withdrawal.ID.Hex(), err)
		return
	}
	if err := utils.SendWithdrawalDecisionEmail(ambassador.Email, withdrawal.Status, withdrawal.Amount, withdrawal.RejectionReason); err != nil {
		log.Printf("Withdrawal %s: email notification failed: %v", withdrawal.ID.Hex(), err)
	}
}
