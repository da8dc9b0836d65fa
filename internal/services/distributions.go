package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"arcade-pot-backend/internal/models"
)

// AppendDistribution writes one settlement audit row. Rows are append-only;
// nothing in the service updates or deletes them.
func (s *MongoService) AppendDistribution(ctx context.Context, d *models.Distribution) error {
	_, err := s.distributions.InsertOne(ctx, d)
	return err
}

func (s *MongoService) ListDistributions(ctx context.Context, gameID string, limit int64) ([]models.Distribution, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	filter := bson.M{}
	if gameID != "" {
		filter["gameId"] = gameID
	}

	cursor, err := s.distributions.Find(ctx, filter,
		options.Find().
			SetSort(bson.D{{Key: "timestamp", Value: -1}}).
			SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	var rows []models.Distribution
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
