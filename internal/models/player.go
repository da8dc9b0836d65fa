package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Player holds lifetime accumulators for one wallet, created on first bet.
// Amounts are in lamports.
type Player struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID        string             `bson:"userId" json:"userId"`
	TotalBets     int64              `bson:"totalBets" json:"totalBets"`
	TotalWinnings int64              `bson:"totalWinnings" json:"totalWinnings"`
}
