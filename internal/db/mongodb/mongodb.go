package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ragbench/ragbench/internal/db"
	"github.com/ragbench/ragbench/internal/errs"
	"github.com/ragbench/ragbench/internal/models"
)

// MongoDB implements the RunDatabase interface for MongoDB
type MongoDB struct {
	client   *mongo.Client
	database *mongo.Database
	config   *db.Config
}

const collRuns = "evaluation_runs"

// New creates a new MongoDB database instance
func New(config *db.Config) (*MongoDB, error) {
	return &MongoDB{
		config: config,
	}, nil
}

// Connect establishes connection to MongoDB
func (m *MongoDB) Connect(ctx context.Context) error {
	clientOptions := options.Client().ApplyURI(m.config.URI)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	m.client = client
	m.database = client.Database(m.config.Database)

	if err := m.createIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// Disconnect closes the MongoDB connection
func (m *MongoDB) Disconnect(ctx context.Context) error {
	if m.client != nil {
		return m.client.Disconnect(ctx)
	}
	return nil
}

// Ping checks the database connection
func (m *MongoDB) Ping(ctx context.Context) error {
	if m.client == nil {
		return fmt.Errorf("not connected to database")
	}
	return m.client.Ping(ctx, nil)
}

// createIndexes creates necessary indexes for recency-ordered listing
func (m *MongoDB) createIndexes(ctx context.Context) error {
	runIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "created_at", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "name", Value: 1},
			},
		},
	}

	_, err := m.database.Collection(collRuns).Indexes().CreateMany(ctx, runIndexes)
	if err != nil {
		return fmt.Errorf("failed to create run indexes: %w", err)
	}

	return nil
}

// SaveRun persists a completed evaluation run. Runs are append-only; a
// duplicate id is a caller bug and surfaces as the driver's duplicate key
// error.
func (m *MongoDB) SaveRun(ctx context.Context, run *models.EvaluationRun) error {
	_, err := m.database.Collection(collRuns).InsertOne(ctx, run)
	if err != nil {
		return fmt.Errorf("failed to insert evaluation run: %w", err)
	}
	return nil
}

// GetRun retrieves an evaluation run by ID
func (m *MongoDB) GetRun(ctx context.Context, id string) (*models.EvaluationRun, error) {
	var run models.EvaluationRun
	err := m.database.Collection(collRuns).FindOne(ctx, bson.M{"_id": id}).Decode(&run)
	if err == mongo.ErrNoDocuments {
		return nil, errs.NotFound("evaluation run", id)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns lists all evaluation runs, most recent first
func (m *MongoDB) ListRuns(ctx context.Context) ([]*models.EvaluationRun, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := m.database.Collection(collRuns).Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var runs []*models.EvaluationRun
	for cursor.Next(ctx) {
		var run models.EvaluationRun
		if err := cursor.Decode(&run); err != nil {
			return nil, err
		}
		runs = append(runs, &run)
	}

	return runs, cursor.Err()
}

// DeleteRun deletes an evaluation run as a whole
func (m *MongoDB) DeleteRun(ctx context.Context, id string) error {
	result, err := m.database.Collection(collRuns).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return errs.NotFound("evaluation run", id)
	}
	return nil
}
