package model

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stakevault/stake-settlement/internal/config"
)

const (
	AccountsCollection       = "accounts"
	StakeReceiptsCollection  = "stake_batch_receipts"
	RedeemReceiptsCollection = "redeem_batch_receipts"
	ContractStateCollection  = "contract_state"
)

type index struct {
	Indexes map[string]int
	Unique  bool
}

var collections = map[string][]index{
	AccountsCollection: {
		{Indexes: map[string]int{"account_id": 1}, Unique: true},
	},
	StakeReceiptsCollection:  {{Indexes: map[string]int{}}},
	RedeemReceiptsCollection: {{Indexes: map[string]int{}}},
	ContractStateCollection:  {{Indexes: map[string]int{}}},
}

// Connect opens a mongo client for cfg.
func Connect(ctx context.Context, cfg config.DbConfig) (*mongo.Client, error) {
	credential := options.Credential{
		Username: cfg.Username,
		Password: cfg.Password,
	}
	clientOps := options.Client().
		ApplyURI(cfg.Address).
		SetAuth(credential).
		SetDirect(cfg.DirectConnection)
	return mongo.Connect(ctx, clientOps)
}

// Setup creates the collections and indexes the settlement store relies on.
func Setup(ctx context.Context, cfg *config.DbConfig) error {
	client, err := Connect(ctx, *cfg)
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx) //nolint:errcheck

	database := client.Database(cfg.DbName)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for collection, idxs := range collections {
		createCollection(ctx, database, collection)
		for _, idx := range idxs {
			if err := createIndex(ctx, database, collection, idx); err != nil {
				return err
			}
		}
	}

	log.Info().Msg("Collections and Indexes created successfully.")
	return nil
}

func createCollection(ctx context.Context, database *mongo.Database, collectionName string) {
	// Check if the collection already exists.
	if _, err := database.Collection(collectionName).Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "_id", Value: 1}}}); err != nil {
		log.Debug().Msg(fmt.Sprintf("Collection maybe already exists: %s, skip the rest. info: %s", collectionName, err))
		return
	}

	// Create the collection.
	if err := database.CreateCollection(ctx, collectionName); err != nil {
		log.Debug().Msg(fmt.Sprintf("Failed to create collection or already exists: %s. info: %s", collectionName, err))
		return
	}

	log.Debug().Msg(fmt.Sprintf("Collection created successfully: %s", collectionName))
}

func createIndex(ctx context.Context, database *mongo.Database, collectionName string, idx index) error {
	if len(idx.Indexes) == 0 {
		return nil
	}

	indexKeys := bson.D{}
	for k, v := range idx.Indexes {
		indexKeys = append(indexKeys, bson.E{Key: k, Value: v})
	}

	index := mongo.IndexModel{
		Keys:    indexKeys,
		Options: options.Index().SetUnique(idx.Unique),
	}

	if _, err := database.Collection(collectionName).Indexes().CreateOne(ctx, index); err != nil {
		return fmt.Errorf("failed to create index on %s: %w", collectionName, err)
	}

	log.Debug().Msg(fmt.Sprintf("Index created successfully on collection: %s", collectionName))
	return nil
}
