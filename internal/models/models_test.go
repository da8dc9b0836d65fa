package models_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"arcade-pot-backend/internal/models"
)

func TestGameStatusMath(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	game := &models.Game{
		GameID:      "game_1",
		GameName:    "Cube Rush",
		CurrentPot:  1_500_000,
		PlayerCount: 3,
	}

	game.CycleEndTime = now.Add(90*time.Second + 700*time.Millisecond)
	status := game.Status(now)
	if status.TimeLeft != 90 {
		t.Errorf("TimeLeft = %d, want 90 (floored)", status.TimeLeft)
	}
	if !status.CycleActive {
		t.Error("Cycle with time remaining must be active")
	}
	if status.CurrentPot != 1_500_000 || status.PlayerCount != 3 {
		t.Error("Status must carry pot and player count through")
	}

	game.CycleEndTime = now.Add(-time.Hour)
	status = game.Status(now)
	if status.TimeLeft != 0 {
		t.Errorf("Elapsed cycle TimeLeft = %d, want 0", status.TimeLeft)
	}
	if status.CycleActive {
		t.Error("Elapsed cycle must not be active")
	}

	// Exactly at the deadline the cycle counts as over.
	game.CycleEndTime = now
	if game.Status(now).CycleActive {
		t.Error("Cycle ending exactly now must not be active")
	}
}

func TestGameCycleLengthFallback(t *testing.T) {
	game := &models.Game{CycleSeconds: 3600}
	if got := game.CycleLength(2 * time.Hour); got != time.Hour {
		t.Errorf("CycleLength = %v, want 1h", got)
	}
	game.CycleSeconds = 0
	if got := game.CycleLength(2 * time.Hour); got != 2*time.Hour {
		t.Errorf("Fallback CycleLength = %v, want 2h", got)
	}
}

func TestHasActivePlayer(t *testing.T) {
	game := &models.Game{ActivePlayers: []models.ActivePlayer{{UserID: "alice"}}}
	if !game.HasActivePlayer("alice") {
		t.Error("alice bet this cycle")
	}
	if game.HasActivePlayer("bob") {
		t.Error("bob did not bet this cycle")
	}
}

func TestGameSecretKeyNeverSerialized(t *testing.T) {
	game := &models.Game{
		GameID:           "game_1",
		GamePotPublicKey: "pubkey",
		GamePotSecretKey: []byte("super-secret-64-bytes"),
	}
	raw, err := json.Marshal(game)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "ecret") {
		t.Fatalf("Escrow secret leaked into the JSON view: %s", raw)
	}
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func TestCreateGameRequestValidation(t *testing.T) {
	cases := []struct {
		name    string
		req     models.CreateGameRequest
		wantErr bool
	}{
		{"valid", models.CreateGameRequest{GameName: "Cube Rush"}, false},
		{"missing name", models.CreateGameRequest{}, true},
		{"tax over 100", models.CreateGameRequest{GameName: "x", TaxPercentage: intPtr(101)}, true},
		{"negative tax", models.CreateGameRequest{GameName: "x", TaxPercentage: intPtr(-1)}, true},
		{"zero tax allowed", models.CreateGameRequest{GameName: "x", TaxPercentage: intPtr(0)}, false},
		{"negative cycle", models.CreateGameRequest{GameName: "x", CycleDurationSeconds: -5}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr=%v", err, tc.wantErr)
			}
		})
	}
}

func TestUpdateGameRequestValidation(t *testing.T) {
	if err := (&models.UpdateGameRequest{}).Validate(); err == nil {
		t.Error("gameId is required")
	}
	req := &models.UpdateGameRequest{GameID: "g", CycleDurationSeconds: int64Ptr(0)}
	if err := req.Validate(); err == nil {
		t.Error("zero cycle duration must be rejected")
	}
	req = &models.UpdateGameRequest{GameID: "g", TaxPercentage: intPtr(15)}
	if err := req.Validate(); err != nil {
		t.Errorf("partial update should validate: %v", err)
	}
}

func TestBetRequestValidation(t *testing.T) {
	place := &models.PlaceBetRequest{PublicKey: "pk", GameID: "g", AmountNative: 1}
	if err := place.Validate(); err != nil {
		t.Errorf("valid bet rejected: %v", err)
	}
	place.AmountNative = 0
	if err := place.Validate(); err == nil {
		t.Error("zero-lamport bet must be rejected")
	}

	confirm := &models.ConfirmBetRequest{PublicKey: "pk", GameID: "g", AmountNative: 1}
	if err := confirm.Validate(); err == nil {
		t.Error("confirmation without a signature must be rejected")
	}
	confirm.Signature = "sig"
	if err := confirm.Validate(); err != nil {
		t.Errorf("valid confirmation rejected: %v", err)
	}
}

func TestScoreRequestValidation(t *testing.T) {
	req := &models.ScoreRequest{GameID: "g", UserID: "u", Score: int64Ptr(0)}
	if err := req.Validate(); err != nil {
		t.Errorf("zero score is a legal submission: %v", err)
	}
	req.Score = int64Ptr(-1)
	if err := req.Validate(); err == nil {
		t.Error("negative score must be rejected")
	}
	req.Score = nil
	if err := req.Validate(); err == nil {
		t.Error("missing score must be rejected")
	}

	fetch := &models.ScoreRequest{GameID: "g", FetchOnly: true}
	if err := fetch.Validate(); err != nil {
		t.Errorf("fetch-only needs just the gameId: %v", err)
	}
	fetch.GameID = ""
	if err := fetch.Validate(); err == nil {
		t.Error("fetch-only still needs a gameId")
	}
}

func TestGenerateGameID(t *testing.T) {
	a, b := models.GenerateGameID(), models.GenerateGameID()
	if a == b {
		t.Error("generated game IDs must differ")
	}
	if !strings.HasPrefix(a, "game_") {
		t.Errorf("unexpected game ID shape: %s", a)
	}
}

func TestFormatSol(t *testing.T) {
	cases := []struct {
		lamports int64
		want     string
	}{
		{1_000_000_000, "1.000000000 SOL"},
		{1_500_000, "0.001500000 SOL"},
		{0, "0.000000000 SOL"},
	}
	for _, tc := range cases {
		if got := models.FormatSol(tc.lamports); got != tc.want {
			t.Errorf("FormatSol(%d) = %s, want %s", tc.lamports, got, tc.want)
		}
	}
}
