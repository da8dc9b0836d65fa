package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivePlayer is one entry in a game's per-cycle player set.
type ActivePlayer struct {
	UserID string `bson:"userId" json:"userId"`
}

// Game is one wagered arcade game and its escrow pot. The secret key is
// persisted but never serialized to clients.
type Game struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	GameID            string             `bson:"gameId" json:"gameId"`
	GameName          string             `bson:"gameName" json:"gameName"`
	GamePotPublicKey  string             `bson:"gamePotPublicKey" json:"gamePotPublicKey"`
	GamePotSecretKey  []byte             `bson:"gamePotSecretKey" json:"-"`
	TaxPercentage     int                `bson:"taxPercentage" json:"taxPercentage"`
	CurrentPot        int64              `bson:"currentPot" json:"currentPot"`
	TotalTaxCollected int64              `bson:"totalTaxCollected" json:"totalTaxCollected"`
	PlayerCount       int                `bson:"playerCount" json:"playerCount"`
	ActivePlayers     []ActivePlayer     `bson:"activePlayers" json:"activePlayers"`
	LastDistribution  time.Time          `bson:"lastDistribution" json:"lastDistribution"`
	CycleEndTime      time.Time          `bson:"cycleEndTime" json:"cycleEndTime"`
	CycleSeconds      int64              `bson:"cycleSeconds" json:"cycleSeconds"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
}

// GameStatus is the read-only view the game client polls.
type GameStatus struct {
	GameID      string `json:"gameId"`
	GameName    string `json:"gameName"`
	TimeLeft    int64  `json:"timeLeft"`
	CycleActive bool   `json:"cycleActive"`
	CurrentPot  int64  `json:"currentPot"`
	PlayerCount int    `json:"playerCount"`
}

// Status computes the client view at the given instant. TimeLeft is floored
// to whole seconds and never negative.
func (g *Game) Status(now time.Time) GameStatus {
	left := g.CycleEndTime.Sub(now)
	seconds := int64(left / time.Second)
	if seconds < 0 {
		seconds = 0
	}
	return GameStatus{
		GameID:      g.GameID,
		GameName:    g.GameName,
		TimeLeft:    seconds,
		CycleActive: left > 0,
		CurrentPot:  g.CurrentPot,
		PlayerCount: g.PlayerCount,
	}
}

// CycleLength returns the game's configured cycle duration, or the given
// fallback when the game predates per-game durations.
func (g *Game) CycleLength(fallback time.Duration) time.Duration {
	if g.CycleSeconds > 0 {
		return time.Duration(g.CycleSeconds) * time.Second
	}
	return fallback
}

// HasActivePlayer reports whether userID already bet in the current cycle.
func (g *Game) HasActivePlayer(userID string) bool {
	for _, p := range g.ActivePlayers {
		if p.UserID == userID {
			return true
		}
	}
	return false
}
