package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// LeaderboardEntry is one ranked row of the ambassador leaderboard
type LeaderboardEntry struct {
	ID              primitive.ObjectID `json:"id" bson:"_id"`
	FullName        string             `json:"fullName" bson:"fullName"`
	ReferralCode    string             `json:"referralCode" bson:"referralCode"`
	TotalCommission int64              `json:"totalCommission" bson:"totalCommission"`
}

// LeaderboardResponse is the payload returned by the leaderboard endpoint.
// Rank is 1-based within the top list; 0 means the ambassador is unranked.
type LeaderboardResponse struct {
	Top  []LeaderboardEntry `json:"top"`
	Rank int                `json:"rank"`
}
