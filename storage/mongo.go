package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/raushankrgupta/flyer-price-scraper/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const snapshotCollection = "daily_prices"

// MongoStore keeps one document per day in the daily_prices collection
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// ConnectMongo opens and pings the MongoDB connection
func ConnectMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	log.Println("Connected to MongoDB!")
	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(snapshotCollection),
	}, nil
}

// Save replaces the document for the snapshot's date, creating it if needed
func (m *MongoStore) Save(ctx context.Context, snapshot *models.DailySnapshot) error {
	_, err := m.collection.ReplaceOne(ctx,
		bson.M{"date": snapshot.Date},
		snapshot,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert snapshot %s: %w", snapshot.Date, err)
	}
	log.Printf("[Storage] upserted snapshot %s into %s", snapshot.Date, snapshotCollection)
	return nil
}

func (m *MongoStore) Latest(ctx context.Context) (*models.DailySnapshot, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "date", Value: -1}})
	return m.findOne(ctx, bson.M{}, opts)
}

func (m *MongoStore) ByDate(ctx context.Context, date string) (*models.DailySnapshot, error) {
	return m.findOne(ctx, bson.M{"date": date})
}

func (m *MongoStore) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*models.DailySnapshot, error) {
	var snapshot models.DailySnapshot
	err := m.collection.FindOne(ctx, filter, opts...).Decode(&snapshot)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (m *MongoStore) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
