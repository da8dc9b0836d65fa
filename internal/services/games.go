package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"arcade-pot-backend/internal/models"
)

func (s *MongoService) CreateGame(ctx context.Context, game *models.Game) error {
	_, err := s.games.InsertOne(ctx, game)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("game %s already exists", game.GameID)
	}
	return err
}

func (s *MongoService) GetGame(ctx context.Context, gameID string) (*models.Game, error) {
	var game models.Game
	err := s.games.FindOne(ctx, bson.M{"gameId": gameID}).Decode(&game)
	if err == mongo.ErrNoDocuments {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *MongoService) ListGames(ctx context.Context) ([]models.Game, error) {
	cursor, err := s.games.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	var games []models.Game
	if err := cursor.All(ctx, &games); err != nil {
		return nil, err
	}
	return games, nil
}

// UpdateGame applies a partial update. A new cycle duration re-anchors the
// deadline to now + duration.
func (s *MongoService) UpdateGame(ctx context.Context, req *models.UpdateGameRequest) (*models.Game, error) {
	set := bson.M{}
	if req.GameName != nil {
		set["gameName"] = *req.GameName
	}
	if req.TaxPercentage != nil {
		set["taxPercentage"] = *req.TaxPercentage
	}
	if req.CycleDurationSeconds != nil {
		set["cycleSeconds"] = *req.CycleDurationSeconds
		set["cycleEndTime"] = time.Now().Add(time.Duration(*req.CycleDurationSeconds) * time.Second)
	}
	if len(set) == 0 {
		return s.GetGame(ctx, req.GameID)
	}

	var game models.Game
	err := s.games.FindOneAndUpdate(
		ctx,
		bson.M{"gameId": req.GameID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&game)
	if err == mongo.ErrNoDocuments {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *MongoService) DeleteGame(ctx context.Context, gameID string) error {
	res, err := s.games.DeleteOne(ctx, bson.M{"gameId": gameID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrGameNotFound
	}
	return nil
}

// FindExpiredGames returns all games whose cycle deadline has passed.
func (s *MongoService) FindExpiredGames(ctx context.Context, now time.Time) ([]models.Game, error) {
	cursor, err := s.games.Find(ctx, bson.M{"cycleEndTime": bson.M{"$lte": now}})
	if err != nil {
		return nil, err
	}
	var games []models.Game
	if err := cursor.All(ctx, &games); err != nil {
		return nil, err
	}
	return games, nil
}

// CreditBet applies a confirmed wager in one atomic update: pot increment,
// set-add of the player, and a conditional playerCount bump. newPlayer must
// reflect whether the player was absent from activePlayers when the caller
// checked; $addToSet keeps the set duplicate-free either way.
func (s *MongoService) CreditBet(ctx context.Context, gameID, userID string, lamports int64, newPlayer bool) error {
	inc := bson.M{"currentPot": lamports}
	if newPlayer {
		inc["playerCount"] = 1
	}
	res, err := s.games.UpdateOne(ctx, bson.M{"gameId": gameID}, bson.M{
		"$inc":      inc,
		"$addToSet": bson.M{"activePlayers": models.ActivePlayer{UserID: userID}},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrGameNotFound
	}
	return nil
}

// CommitSettlement finalizes a paid-out cycle in one coordinated update:
// the pot is set to zero (not decremented), the player set cleared and the
// collected fee accumulated.
func (s *MongoService) CommitSettlement(ctx context.Context, gameID string, fee int64, at time.Time) error {
	res, err := s.games.UpdateOne(ctx, bson.M{"gameId": gameID}, bson.M{
		"$set": bson.M{
			"currentPot":       int64(0),
			"activePlayers":    []models.ActivePlayer{},
			"lastDistribution": at,
		},
		"$inc": bson.M{"totalTaxCollected": fee},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrGameNotFound
	}
	return nil
}

// ZeroPot clears the recorded pot without touching players or the cycle,
// used by the treasury sweep.
func (s *MongoService) ZeroPot(ctx context.Context, gameID string) error {
	res, err := s.games.UpdateOne(ctx, bson.M{"gameId": gameID},
		bson.M{"$set": bson.M{"currentPot": int64(0)}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrGameNotFound
	}
	return nil
}

// AdvanceCycle moves the game's deadline forward; cycleEndTime only ever
// increases through here.
func (s *MongoService) AdvanceCycle(ctx context.Context, gameID string, until time.Time) error {
	res, err := s.games.UpdateOne(ctx, bson.M{"gameId": gameID},
		bson.M{"$set": bson.M{"cycleEndTime": until}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrGameNotFound
	}
	return nil
}

// ReplaceActivePlayers overwrites the player set and count, used by the
// admin cleanup operation to repair legacy duplicates.
func (s *MongoService) ReplaceActivePlayers(ctx context.Context, gameID string, players []models.ActivePlayer) error {
	res, err := s.games.UpdateOne(ctx, bson.M{"gameId": gameID}, bson.M{
		"$set": bson.M{
			"activePlayers": players,
			"playerCount":   len(players),
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrGameNotFound
	}
	return nil
}

// EscrowSecret returns the stored escrow secret key and public key for a
// game. The secret never crosses the HTTP boundary; only the settlement
// engine consumes it.
func (s *MongoService) EscrowSecret(ctx context.Context, gameID string) ([]byte, string, error) {
	game, err := s.GetGame(ctx, gameID)
	if err != nil {
		return nil, "", err
	}
	return game.GamePotSecretKey, game.GamePotPublicKey, nil
}
