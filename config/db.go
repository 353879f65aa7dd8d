// config/db.go
package config

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectDB establishes connection to MongoDB
func ConnectDB() *mongo.Client {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = os.Getenv("MONGODB_URI")
	}

	if mongoURI == "" {
		env := os.Getenv("ENV")
		if env == "development" || env == "dev" {
			mongoURI = "mongodb://localhost:27017"
		} else {
			log.Fatal("MONGO_URI or MONGODB_URI environment variable is required for production")
		}
	}

	log.Printf("Connecting to MongoDB at: %s", maskMongoURI(mongoURI))

	clientOptions := options.Client().ApplyURI(mongoURI)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		log.Fatal("MongoDB connection error:", err)
	}

	err = client.Ping(ctx, nil)
	if err != nil {
		log.Fatal("MongoDB ping error:", err)
	}

	log.Println("Connected to MongoDB")

	setupCollections(client)

	return client
}

// DBName returns the database name used by this service
func DBName() string {
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "feastly"
	}
	return dbName
}

// GetCollection returns MongoDB collection
func GetCollection(client *mongo.Client, collectionName string) *mongo.Collection {
	return client.Database(DBName()).Collection(collectionName)
}

// setupCollections ensures all necessary collections and indexes exist
func setupCollections(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := client.Database(DBName())

	collections := []string{"ambassadors", "vendors", "withdrawals", "referralBonuses", "bonusAmounts", "plans", "payments", "orders", "counters"}
	for _, collName := range collections {
		db.CreateCollection(ctx, collName)
	}

	ambColl := db.Collection("ambassadors")
	uniqueAmbIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "phone", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "referralCode", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := ambColl.Indexes().CreateMany(ctx, uniqueAmbIndexes); err != nil {
		log.Printf("Error creating ambassador indexes: %v", err)
	}

	// One bonus record per referred entity keeps referral crediting idempotent
	bonusColl := db.Collection("referralBonuses")
	referredIndexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "referredId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := bonusColl.Indexes().CreateOne(ctx, referredIndexModel); err != nil {
		log.Printf("Error creating referralBonuses index: %v", err)
	}

	amountsColl := db.Collection("bonusAmounts")
	typeIndexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "type", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := amountsColl.Indexes().CreateOne(ctx, typeIndexModel); err != nil {
		log.Printf("Error creating bonusAmounts index: %v", err)
	}

	withdrawalColl := db.Collection("withdrawals")
	ambIndexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "ambassadorId", Value: 1}, {Key: "status", Value: 1}},
	}
	if _, err := withdrawalColl.Indexes().CreateOne(ctx, ambIndexModel); err != nil {
		log.Printf("Error creating withdrawals index: %v", err)
	}

	paymentsColl := db.Collection("payments")
	paymentIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ambassadorId", Value: 1}, {Key: "planId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		// One purchase per captured gateway transaction
		{
			Keys:    bson.D{{Key: "transactionId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := paymentsColl.Indexes().CreateMany(ctx, paymentIndexes); err != nil {
		log.Printf("Error creating payments indexes: %v", err)
	}

	vendorColl := db.Collection("vendors")
	vendorCodeIndexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "referralCode", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := vendorColl.Indexes().CreateOne(ctx, vendorCodeIndexModel); err != nil {
		log.Printf("Error creating vendors index: %v", err)
	}

	log.Println("Database collections and indexes setup complete")
}

// maskMongoURI masks the password in MongoDB URI for logging
func maskMongoURI(uri string) string {
	if idx := strings.Index(uri, "@"); idx > 0 {
		if colonIdx := strings.LastIndex(uri[:idx], ":"); colonIdx > 0 {
			return uri[:colonIdx+1] + "***" + uri[idx:]
		}
	}
	return uri
}
