package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"arcade-pot-backend/internal/models"
)

// SettlementStore is the persistence surface the engine needs: game state,
// the score ledger, player accumulators and the audit log.
type SettlementStore interface {
	GetGame(ctx context.Context, gameID string) (*models.Game, error)
	EscrowSecret(ctx context.Context, gameID string) (secret []byte, pubkey string, err error)
	ListLiveScores(ctx context.Context, gameID string) ([]models.Score, error)
	CloseCycle(ctx context.Context, gameID string, at time.Time) error
	CommitSettlement(ctx context.Context, gameID string, fee int64, at time.Time) error
	ZeroPot(ctx context.Context, gameID string) error
	AddPlayerWinnings(ctx context.Context, userID string, lamports int64) error
	AppendDistribution(ctx context.Context, d *models.Distribution) error
}

// Broadcaster pushes settlement outcomes to connected clients. Optional.
type Broadcaster interface {
	BroadcastSettlement(d *models.Distribution)
}

// SettlementEngine closes game cycles: it picks the winner from the live
// scores, splits the pot into fee and winnings, pays both out on chain and
// only then commits the new cycle state to the store.
type SettlementEngine struct {
	store          SettlementStore
	ledger         Ledger
	locks          GameLocker
	operatorWallet string
	broadcaster    Broadcaster
	log            *logrus.Logger
}

func NewSettlementEngine(store SettlementStore, ledger Ledger, locks GameLocker, operatorWallet string, log *logrus.Logger) *SettlementEngine {
	return &SettlementEngine{
		store:          store,
		ledger:         ledger,
		locks:          locks,
		operatorWallet: operatorWallet,
		log:            log,
	}
}

// SetBroadcaster attaches a live-update sink. Must be called before the
// engine starts settling.
func (e *SettlementEngine) SetBroadcaster(b Broadcaster) {
	e.broadcaster = b
}

// Settle runs one settlement attempt for the game. It returns (false, nil)
// when a precondition is unmet or the game is already being settled — the
// call is an idempotent no-op in both cases. A non-nil error means a ledger
// or store failure; pot, players and live scores are left untouched and the
// cycle is retryable from scratch.
func (e *SettlementEngine) Settle(ctx context.Context, gameID string) (bool, error) {
	release, err := e.locks.Acquire(ctx, gameID, SettlementLockTTL)
	if errors.Is(err, ErrGameLocked) {
		e.log.WithField("gameId", gameID).Info("settlement already in progress, skipping")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer release()

	game, err := e.store.GetGame(ctx, gameID)
	if errors.Is(err, ErrGameNotFound) {
		e.log.WithField("gameId", gameID).Warn("settlement requested for unknown game")
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if game.CurrentPot <= 0 {
		return false, nil
	}
	if len(game.ActivePlayers) == 0 {
		return false, nil
	}

	scores, err := e.store.ListLiveScores(ctx, gameID)
	if err != nil {
		return false, err
	}
	if len(scores) == 0 {
		return false, nil
	}
	winner := pickWinner(scores)

	// Reconcile the recorded pot against the escrow account before moving
	// anything. The on-chain balance can sit above the pot (rent-exempt
	// reserve, dust from prior cycles) or below it (fees already paid).
	balance, err := e.ledger.Balance(ctx, game.GamePotPublicKey)
	if err != nil {
		return false, err
	}
	rentMin, err := e.ledger.RentExemptMinimum(ctx)
	if err != nil {
		return false, err
	}
	if balance <= rentMin {
		e.log.WithFields(logrus.Fields{
			"gameId":  gameID,
			"balance": balance,
			"rentMin": rentMin,
		}).Warn("escrow balance at or below rent-exempt minimum, settlement postponed")
		return false, nil
	}

	txFee, err := e.ledger.EstimateTransferFee(ctx, game.GamePotPublicKey, e.operatorWallet)
	if err != nil {
		return false, err
	}
	feeReserve := 2 * txFee

	workingTotal := game.CurrentPot - feeReserve
	fee := workingTotal * int64(game.TaxPercentage) / 100
	winnings := workingTotal - fee
	if fee <= 0 {
		e.log.WithFields(logrus.Fields{
			"gameId":       gameID,
			"workingTotal": workingTotal,
			"fee":          fee,
		}).Warn("pot too small to cover the service fee, settlement postponed")
		return false, nil
	}

	if balance < fee+txFee+rentMin {
		e.log.WithFields(logrus.Fields{
			"gameId":  gameID,
			"balance": balance,
			"needed":  fee + txFee + rentMin,
		}).Warn("escrow cannot cover fee transfer, settlement postponed")
		return false, nil
	}

	secret, _, err := e.store.EscrowSecret(ctx, gameID)
	if err != nil {
		return false, err
	}

	feeSig, err := e.ledger.SubmitTransfer(ctx, secret, e.operatorWallet, fee, false)
	if err != nil {
		return false, err
	}

	// The fee is out of the escrow now; re-check what is actually left
	// before paying the winner.
	balance, err = e.ledger.Balance(ctx, game.GamePotPublicKey)
	if err != nil {
		return false, err
	}
	if balance < winnings+txFee+rentMin {
		return false, fmt.Errorf("escrow balance %d cannot cover winnings %d after fee transfer %s", balance, winnings, feeSig)
	}

	winSig, err := e.ledger.SubmitTransfer(ctx, secret, winner.UserID, winnings, true)
	if err != nil {
		return false, err
	}

	// Both transfers confirmed; commit the cycle outcome.
	now := time.Now()
	if err := e.store.CloseCycle(ctx, gameID, now); err != nil {
		return false, err
	}
	if err := e.store.CommitSettlement(ctx, gameID, fee, now); err != nil {
		return false, err
	}
	if err := e.store.AddPlayerWinnings(ctx, winner.UserID, winnings); err != nil {
		return false, err
	}
	dist := &models.Distribution{
		GameID:       gameID,
		WinnerUserID: winner.UserID,
		TotalPot:     game.CurrentPot,
		Tax:          fee,
		Winnings:     winnings,
		Timestamp:    now,
	}
	if err := e.store.AppendDistribution(ctx, dist); err != nil {
		return false, err
	}

	if e.broadcaster != nil {
		e.broadcaster.BroadcastSettlement(dist)
	}

	e.log.WithFields(logrus.Fields{
		"gameId":       gameID,
		"winner":       winner.UserID,
		"totalPot":     game.CurrentPot,
		"fee":          fee,
		"winnings":     winnings,
		"feeSignature": feeSig,
		"winSignature": winSig,
	}).Info("cycle settled")

	return true, nil
}

// SweepToOperator drains the game's entire escrow balance (minus the fee
// reserve) to the operator wallet and zeroes the recorded pot. Orthogonal to
// settlement: players, scores and the cycle deadline are untouched.
func (e *SettlementEngine) SweepToOperator(ctx context.Context, gameID string) error {
	release, err := e.locks.Acquire(ctx, gameID, SettlementLockTTL)
	if err != nil {
		return err
	}
	defer release()

	game, err := e.store.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	if game.CurrentPot <= 0 {
		return ErrPotEmpty
	}

	secret, storedPubkey, err := e.store.EscrowSecret(ctx, gameID)
	if err != nil {
		return err
	}
	derived, err := DerivePublicKey(secret)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrKeyMismatch, err)
	}
	if derived != storedPubkey {
		return fmt.Errorf("%w: stored %s, derived %s", ErrKeyMismatch, storedPubkey, derived)
	}

	balance, err := e.ledger.Balance(ctx, game.GamePotPublicKey)
	if err != nil {
		return err
	}
	if balance == 0 {
		return ErrInsufficientBalance
	}

	txFee, err := e.ledger.EstimateTransferFee(ctx, game.GamePotPublicKey, e.operatorWallet)
	if err != nil {
		return err
	}
	amount := balance - txFee
	if amount <= 0 {
		return fmt.Errorf("%w: balance %d does not cover the fee reserve %d", ErrInsufficientBalance, balance, txFee)
	}

	sig, err := e.ledger.SubmitTransfer(ctx, secret, e.operatorWallet, amount, false)
	if err != nil {
		return err
	}

	if err := e.store.ZeroPot(ctx, gameID); err != nil {
		return err
	}

	e.log.WithFields(logrus.Fields{
		"gameId":    gameID,
		"amount":    amount,
		"signature": sig,
	}).Info("pot swept to operator wallet")

	return nil
}

// pickWinner returns the highest live score; on a tie, the player who
// reached the score first.
func pickWinner(scores []models.Score) models.Score {
	best := scores[0]
	for _, s := range scores[1:] {
		if s.Score > best.Score || (s.Score == best.Score && s.UpdatedAt.Before(best.UpdatedAt)) {
			best = s
		}
	}
	return best
}
