package models

import "fmt"

type CreateGameRequest struct {
	GameID               string `json:"gameId"`
	GameName             string `json:"gameName"`
	TaxPercentage        *int   `json:"taxPercentage"`
	CycleDurationSeconds int64  `json:"cycleDurationSeconds"`
}

func (r *CreateGameRequest) Validate() error {
	if r.GameName == "" {
		return fmt.Errorf("gameName is required")
	}
	if r.TaxPercentage != nil && (*r.TaxPercentage < 0 || *r.TaxPercentage > 100) {
		return fmt.Errorf("taxPercentage must be between 0 and 100")
	}
	if r.CycleDurationSeconds < 0 {
		return fmt.Errorf("cycleDurationSeconds must be positive")
	}
	return nil
}

type UpdateGameRequest struct {
	GameID               string  `json:"gameId"`
	GameName             *string `json:"gameName"`
	TaxPercentage        *int    `json:"taxPercentage"`
	CycleDurationSeconds *int64  `json:"cycleDurationSeconds"`
}

func (r *UpdateGameRequest) Validate() error {
	if r.GameID == "" {
		return fmt.Errorf("gameId is required")
	}
	if r.TaxPercentage != nil && (*r.TaxPercentage < 0 || *r.TaxPercentage > 100) {
		return fmt.Errorf("taxPercentage must be between 0 and 100")
	}
	if r.CycleDurationSeconds != nil && *r.CycleDurationSeconds <= 0 {
		return fmt.Errorf("cycleDurationSeconds must be positive")
	}
	return nil
}

type DeleteGameRequest struct {
	GameID string `json:"gameId"`
}

type PlaceBetRequest struct {
	PublicKey    string `json:"publicKey"`
	AmountNative int64  `json:"amountNative"`
	GameID       string `json:"gameId"`
}

func (r *PlaceBetRequest) Validate() error {
	if r.PublicKey == "" || r.GameID == "" {
		return fmt.Errorf("publicKey and gameId are required")
	}
	if r.AmountNative <= 0 {
		return fmt.Errorf("amountNative must be positive")
	}
	return nil
}

type ConfirmBetRequest struct {
	PublicKey    string `json:"publicKey"`
	AmountNative int64  `json:"amountNative"`
	GameID       string `json:"gameId"`
	Signature    string `json:"signature"`
}

func (r *ConfirmBetRequest) Validate() error {
	if r.PublicKey == "" || r.GameID == "" || r.Signature == "" {
		return fmt.Errorf("publicKey, gameId and signature are required")
	}
	if r.AmountNative <= 0 {
		return fmt.Errorf("amountNative must be positive")
	}
	return nil
}

// ScoreRequest carries both the write form (gameId, userId, score) and the
// fetch-only form (gameId, fetchOnly:true) of the update-score call.
type ScoreRequest struct {
	GameID    string `json:"gameId"`
	UserID    string `json:"userId"`
	Score     *int64 `json:"score"`
	FetchOnly bool   `json:"fetchOnly"`
}

func (r *ScoreRequest) Validate() error {
	if r.GameID == "" {
		return fmt.Errorf("gameId is required")
	}
	if r.FetchOnly {
		return nil
	}
	if r.UserID == "" {
		return fmt.Errorf("userId is required")
	}
	if r.Score == nil {
		return fmt.Errorf("score is required")
	}
	if *r.Score < 0 {
		return fmt.Errorf("score must not be negative")
	}
	return nil
}

type SettleRequest struct {
	GameID string `json:"gameId"`
}

type SweepRequest struct {
	GameID string `json:"gameId"`
}

type CleanupRequest struct {
	GameID string `json:"gameId"`
}

type AdminTokenRequest struct {
	APIKey string `json:"apiKey"`
}
