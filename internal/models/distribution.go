package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Distribution is the append-only audit record of one settlement.
type Distribution struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	GameID       string             `bson:"gameId" json:"gameId"`
	WinnerUserID string             `bson:"winnerUserId" json:"winnerUserId"`
	TotalPot     int64              `bson:"totalPot" json:"totalPot"`
	Tax          int64              `bson:"tax" json:"tax"`
	Winnings     int64              `bson:"winnings" json:"winnings"`
	Timestamp    time.Time          `bson:"timestamp" json:"timestamp"`
}
