package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Score is one player's best score for one game cycle. CycleEnd is nil while
// the cycle is live; settlement stamps it, freezing the row as history.
type Score struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	GameID    string             `bson:"gameId" json:"gameId"`
	UserID    string             `bson:"userId" json:"userId"`
	Score     int64              `bson:"score" json:"score"`
	CycleEnd  *time.Time         `bson:"cycleEnd" json:"cycleEnd"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ScoreUpdate reports the outcome of a recordScore call. Updated is false
// when the reported score did not beat the live one.
type ScoreUpdate struct {
	Success       bool  `json:"success"`
	Updated       bool  `json:"updated"`
	PreviousScore int64 `json:"previousScore"`
	NewScore      int64 `json:"newScore"`
}
