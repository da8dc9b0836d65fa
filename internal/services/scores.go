package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"arcade-pot-backend/internal/models"
)

// RecordScore upserts the live score for (gameID, userID) only when the
// reported score strictly beats the current one. Lower or equal reports are
// no-ops, so the live score is monotonic within a cycle.
func (s *MongoService) RecordScore(ctx context.Context, gameID, userID string, score int64) (*models.ScoreUpdate, error) {
	var current int64
	var existing models.Score
	err := s.scores.FindOne(ctx, bson.M{
		"gameId":   gameID,
		"userId":   userID,
		"cycleEnd": nil,
	}).Decode(&existing)
	if err == nil {
		current = existing.Score
	} else if err != mongo.ErrNoDocuments {
		return nil, err
	}

	if score <= current {
		return &models.ScoreUpdate{
			Success:       true,
			Updated:       false,
			PreviousScore: current,
			NewScore:      score,
		}, nil
	}

	_, err = s.scores.UpdateOne(ctx,
		bson.M{"gameId": gameID, "userId": userID, "cycleEnd": nil},
		bson.M{"$set": bson.M{"score": score, "updatedAt": time.Now()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return nil, err
	}

	return &models.ScoreUpdate{
		Success:       true,
		Updated:       true,
		PreviousScore: current,
		NewScore:      score,
	}, nil
}

// ListLiveScores returns the current cycle's scores ordered best-first;
// equal scores order by who reached them first.
func (s *MongoService) ListLiveScores(ctx context.Context, gameID string) ([]models.Score, error) {
	cursor, err := s.scores.Find(ctx,
		bson.M{"gameId": gameID, "cycleEnd": nil},
		options.Find().SetSort(bson.D{{Key: "score", Value: -1}, {Key: "updatedAt", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	var scores []models.Score
	if err := cursor.All(ctx, &scores); err != nil {
		return nil, err
	}
	return scores, nil
}

// CloseCycle stamps every live score row for the game, freezing them as
// history for the cycle that ended at the given instant.
func (s *MongoService) CloseCycle(ctx context.Context, gameID string, at time.Time) error {
	_, err := s.scores.UpdateMany(ctx,
		bson.M{"gameId": gameID, "cycleEnd": nil},
		bson.M{"$set": bson.M{"cycleEnd": at}},
	)
	return err
}
