package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultTaxPercentage = 10
	DefaultCycleSeconds  = 2 * 60 * 60
)

func GenerateGameID() string {
	return fmt.Sprintf("game_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

func FormatSol(lamports int64) string {
	return fmt.Sprintf("%.9f SOL", float64(lamports)/1e9)
}
