package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"arcade-pot-backend/internal/models"
)

// BetStore is the registry surface bet intake writes through.
type BetStore interface {
	GetGame(ctx context.Context, gameID string) (*models.Game, error)
	CreditBet(ctx context.Context, gameID, userID string, lamports int64, newPlayer bool) error
	AddPlayerBet(ctx context.Context, userID string, lamports int64) error
}

// BetService builds wager transactions for clients to sign and credits the
// pot once the chain has confirmed them.
type BetService struct {
	store  BetStore
	ledger Ledger
	locks  GameLocker
	log    *logrus.Logger
}

func NewBetService(store BetStore, ledger Ledger, locks GameLocker, log *logrus.Logger) *BetService {
	return &BetService{
		store:  store,
		ledger: ledger,
		locks:  locks,
		log:    log,
	}
}

// PrepareBet returns a base64 unsigned transfer of the wager from the payer
// to the game's escrow account, payer as fee payer.
func (b *BetService) PrepareBet(ctx context.Context, payerPubkey string, lamports int64, gameID string) (string, error) {
	game, err := b.store.GetGame(ctx, gameID)
	if err != nil {
		return "", err
	}
	return b.ledger.BuildTransfer(ctx, payerPubkey, game.GamePotPublicKey, lamports)
}

// ConfirmBet waits for the submitted signature to confirm on chain, then
// credits the pot and registers the player for the current cycle. No store
// mutation happens unless the transfer actually confirmed.
func (b *BetService) ConfirmBet(ctx context.Context, payerPubkey string, lamports int64, gameID, signature string) error {
	if err := b.ledger.AwaitSignature(ctx, signature); err != nil {
		return err
	}

	// Hold the game's settlement lock while crediting so a wager cannot be
	// folded into a pot that settlement is zeroing out. A locked game means
	// settlement is mid-flight; back off briefly, then tell the client to
	// retry the confirmation.
	release, err := b.acquireWithRetry(ctx, gameID)
	if err != nil {
		return err
	}
	defer release()

	game, err := b.store.GetGame(ctx, gameID)
	if err != nil {
		return err
	}

	newPlayer := !game.HasActivePlayer(payerPubkey)
	if err := b.store.CreditBet(ctx, gameID, payerPubkey, lamports, newPlayer); err != nil {
		return err
	}
	if err := b.store.AddPlayerBet(ctx, payerPubkey, lamports); err != nil {
		return err
	}

	b.log.WithFields(logrus.Fields{
		"gameId":    gameID,
		"player":    payerPubkey,
		"lamports":  lamports,
		"signature": signature,
		"newPlayer": newPlayer,
	}).Info("bet confirmed")

	return nil
}

func (b *BetService) acquireWithRetry(ctx context.Context, gameID string) (func(), error) {
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		var release func()
		release, err = b.locks.Acquire(ctx, gameID, 10*time.Second)
		if err == nil {
			return release, nil
		}
		if !errors.Is(err, ErrGameLocked) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
	return nil, err
}
