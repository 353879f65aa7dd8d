package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/feastly/ambassador_backend/middleware"
	"github.com/feastly/ambassador_backend/models"
	"github.com/feastly/ambassador_backend/repositories"
)

const (
	leaderboardCacheKey = "leaderboard:top10"
	leaderboardCacheTTL = 60 * time.Second
	leaderboardSize     = 10
)

type LeaderboardController struct {
	db             *mongo.Client
	ambassadorRepo *repositories.AmbassadorRepository
	redisClient    *redis.Client
}

func NewLeaderboardController(db *mongo.Client, redisClient *redis.Client) *LeaderboardController {
	return &LeaderboardController{
		db:             db,
		ambassadorRepo: repositories.NewAmbassadorRepository(db),
		redisClient:    redisClient,
	}
}

// GetLeaderboard returns the top ambassadors by lifetime commission plus the
// caller's own rank within that list. The top list is cached in Redis for a
// short window; rank lookup is always computed against the cached list.
func (lc *LeaderboardController) GetLeaderboard(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	top, err := lc.topAmbassadors(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch leaderboard",
		})
	}

	rank := 0
	if claims := middleware.GetUserFromToken(c); claims != nil {
		if id, err := primitive.ObjectIDFromHex(claims.UserID); err == nil {
			rank = rankOf(top, id)
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Leaderboard fetched successfully",
		Data: models.LeaderboardResponse{
			Top:  top,
			Rank: rank,
		},
	})
}

// topAmbassadors serves the top list from Redis when possible, falling back
// to the aggregation and repopulating the cache.
func (lc *LeaderboardController) topAmbassadors(ctx context.Context) ([]models.LeaderboardEntry, error) {
	if lc.redisClient != nil {
		cached, err := lc.redisClient.Get(ctx, leaderboardCacheKey).Result()
		if err == nil {
			var top []models.LeaderboardEntry
			if jsonErr := json.Unmarshal([]byte(cached), &top); jsonErr == nil {
				return top, nil
			}
		} else if err != redis.Nil {
			log.Printf("Leaderboard cache read failed: %v", err)
		}
	}

	top, err := lc.ambassadorRepo.TopByCommission(ctx, leaderboardSize)
	if err != nil {
		return nil, err
	}

	if lc.redisClient != nil {
		if payload, jsonErr := json.Marshal(top); jsonErr == nil {
			if err := lc.redisClient.Set(ctx, leaderboardCacheKey, payload, leaderboardCacheTTL).Err(); err != nil {
				log.Printf("Leaderboard cache write failed: %v", err)
			}
		}
	}

	return top, nil
}

// rankOf returns the 1-based position of the ambassador in the top list,
// or 0 when they are outside it.
func rankOf(top []models.LeaderboardEntry, ambassadorID primitive.ObjectID) int {
	for i, entry := range top {
		if entry.ID == ambassadorID {
			return i + 1
		}
	}
	return 0
}
