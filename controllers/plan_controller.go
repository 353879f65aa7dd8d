package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/feastly/ambassador_backend/config"
	"github.com/feastly/ambassador_backend/metrics"
	"github.com/feastly/ambassador_backend/models"
	"github.com/feastly/ambassador_backend/repositories"
	"github.com/feastly/ambassador_backend/services"
)

type PlanController struct {
	db             *mongo.Client
	ambassadorRepo *repositories.AmbassadorRepository
	paymentRepo    *repositories.PaymentRepository
	paymentService *services.PaymentService
	metrics        *metrics.AmbassadorMetrics
}

func NewPlanController(db *mongo.Client, paymentService *services.PaymentService, m *metrics.AmbassadorMetrics) *PlanController {
	return &PlanController{
		db:             db,
		ambassadorRepo: repositories.NewAmbassadorRepository(db),
		paymentRepo:    repositories.NewPaymentRepository(db),
		paymentService: paymentService,
		metrics:        m,
	}
}

// CreatePlan lets an admin define a new paid ambassador plan
func (pc *PlanController) CreatePlan(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.PlanRequest
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

	now := time.Now()
	plan := models.AmbassadorPlan{
		Name:         req.Name,
		Price:        req.Price,
		ValidityDays: req.ValidityDays,
		Benefits:     req.Benefits,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	collection := config.GetCollection(pc.db, "plans")
	result, err := collection.InsertOne(ctx, plan)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create plan",
		})
	}
	plan.ID = result.InsertedID.(primitive.ObjectID)

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Plan created successfully",
		Data:    plan,
	})
}

// ListPlans returns the active plans available for purchase
func (pc *PlanController) ListPlans(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := config.GetCollection(pc.db, "plans")
	cursor, err := collection.Find(ctx, bson.M{"isActive": true},
		options.Find().SetSort(bson.M{"price": 1}))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch plans",
		})
	}
	defer cursor.Close(ctx)

	plans := []models.AmbassadorPlan{}
	if err := cursor.All(ctx, &plans); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode plans",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Plans fetched successfully",
		Data:    plans,
	})
}

// CapturePlanPayment records a plan purchase after verifying with the payment
// gateway that the transaction was captured for the plan's full price.
// Re-purchasing before expiry stacks the validity on top of the remaining
// entitlement.
func (pc *PlanController) CapturePlanPayment(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ambassador, ok := currentAmbassador(ctx, c, pc.ambassadorRepo)
	if !ok {
		return nil
	}

	planID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid plan ID format",
		})
	}

	var req models.PurchaseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Transaction ID is required",
		})
	}

	plansCollection := config.GetCollection(pc.db, "plans")
	var plan models.AmbassadorPlan
	err = plansCollection.FindOne(ctx, bson.M{"_id": planID, "isActive": true}).Decode(&plan)
	if err == mongo.ErrNoDocuments {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Plan not found",
		})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch plan",
		})
	}

	if err := pc.paymentService.VerifyCapture(ctx, req.TransactionID, plan.Price); err != nil {
		if errors.Is(err, services.ErrPaymentNotCaptured) {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Payment was not captured for the plan price",
			})
		}
		return c.JSON(http.StatusBadGateway, models.Response{
			Status:  http.StatusBadGateway,
			Message: "Could not verify payment with the gateway",
			Data:    err.Error(),
		})
	}

	payment, err := pc.paymentRepo.RecordCapture(ctx, ambassador.ID, planID, req.TransactionID, plan.Price, plan.ValidityDays)
	if err == repositories.ErrAlreadyCaptured {
		// A retried request for the transaction we already recorded is answered
		// with that purchase; a transaction consumed by a different purchase is
		// a conflict.
		existing, findErr := pc.paymentRepo.FindByAmbassadorAndPlan(ctx, ambassador.ID, planID)
		if findErr == nil && existing.TransactionID == req.TransactionID {
			return c.JSON(http.StatusOK, models.Response{
				Status:  http.StatusOK,
				Message: "Plan payment already recorded",
				Data:    existing,
			})
		}
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Transaction ID already used for another purchase",
		})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to record plan purchase",
		})
	}

	pc.metrics.PaymentsCapturedTotal.Inc()

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Plan purchased successfully",
		Data:    payment,
	})
}
