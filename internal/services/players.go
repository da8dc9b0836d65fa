package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"arcade-pot-backend/internal/models"
)

func (s *MongoService) GetPlayer(ctx context.Context, userID string) (*models.Player, error) {
	var player models.Player
	err := s.players.FindOne(ctx, bson.M{"userId": userID}).Decode(&player)
	if err == mongo.ErrNoDocuments {
		return &models.Player{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &player, nil
}

// AddPlayerBet accumulates a confirmed wager into the player's lifetime
// total, creating the player on first bet.
func (s *MongoService) AddPlayerBet(ctx context.Context, userID string, lamports int64) error {
	_, err := s.players.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$inc": bson.M{"totalBets": lamports}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (s *MongoService) AddPlayerWinnings(ctx context.Context, userID string, lamports int64) error {
	_, err := s.players.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$inc": bson.M{"totalWinnings": lamports}},
		options.Update().SetUpsert(true),
	)
	return err
}
