package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"arcade-pot-backend/internal/config"
)

// MongoService is the persistence layer: game registry, score ledger, player
// accumulators and the distribution audit log.
type MongoService struct {
	client        *mongo.Client
	db            *mongo.Database
	games         *mongo.Collection
	scores        *mongo.Collection
	players       *mongo.Collection
	distributions *mongo.Collection
}

func NewMongoService(cfg *config.Config) (*MongoService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %v", err)
	}

	db := client.Database(cfg.MongoDB)
	s := &MongoService{
		client:        client,
		db:            db,
		games:         db.Collection("games"),
		scores:        db.Collection("scores"),
		players:       db.Collection("players"),
		distributions: db.Collection("distributions"),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %v", err)
	}

	return s, nil
}

func (s *MongoService) ensureIndexes(ctx context.Context) error {
	_, err := s.games.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "gameId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "cycleEndTime", Value: 1}},
		},
	})
	if err != nil {
		return err
	}

	// One live score row per (game, player); history rows are keyed by the
	// cycleEnd they were stamped with.
	_, err = s.scores.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "gameId", Value: 1}, {Key: "userId", Value: 1}, {Key: "cycleEnd", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "gameId", Value: 1}, {Key: "cycleEnd", Value: 1}, {Key: "score", Value: -1}},
		},
	})
	if err != nil {
		return err
	}

	_, err = s.players.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = s.distributions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "gameId", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	return err
}

// Ping reports store reachability, used by the health endpoint.
func (s *MongoService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoService) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
