package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"

	"arcade-pot-backend/internal/config"
)

const (
	// Fallback per-signature fee when the RPC cannot price a message.
	defaultTxFeeLamports = 5000

	confirmPollInterval = 700 * time.Millisecond
	confirmTimeout      = 60 * time.Second
)

// Ledger is the settlement-rail surface the betting and settlement services
// depend on. Implemented by SolanaService; tests substitute fakes.
type Ledger interface {
	Balance(ctx context.Context, pubkey string) (int64, error)
	RentExemptMinimum(ctx context.Context) (int64, error)
	EstimateTransferFee(ctx context.Context, from, to string) (int64, error)
	BuildTransfer(ctx context.Context, from, to string, lamports int64) (string, error)
	SubmitTransfer(ctx context.Context, secret []byte, to string, lamports int64, simulateFirst bool) (string, error)
	AwaitSignature(ctx context.Context, signature string) error
}

// SolanaService wraps the Solana JSON-RPC client. All methods are network
// calls; failures surface as LedgerError with the cause attached.
type SolanaService struct {
	rpc        *rpc.Client
	commitment rpc.CommitmentType
	log        *logrus.Logger
}

func NewSolanaService(cfg *config.Config, log *logrus.Logger) *SolanaService {
	return &SolanaService{
		rpc:        rpc.New(cfg.SolanaRPCURL),
		commitment: rpc.CommitmentConfirmed,
		log:        log,
	}
}

// GenerateEscrowKeypair mints a fresh escrow account credential. The secret
// stays on the backend; only the public key is ever shown to clients.
func GenerateEscrowKeypair() (secret []byte, pubkey string) {
	wallet := solana.NewWallet()
	return []byte(wallet.PrivateKey), wallet.PublicKey().String()
}

// DerivePublicKey returns the public key a stored secret actually signs for,
// used to detect corrupted escrow records.
func DerivePublicKey(secret []byte) (string, error) {
	if len(secret) != 64 {
		return "", fmt.Errorf("escrow secret has unexpected length %d", len(secret))
	}
	return solana.PrivateKey(secret).PublicKey().String(), nil
}

func (s *SolanaService) Health(ctx context.Context) error {
	_, err := s.rpc.GetHealth(ctx)
	if err != nil {
		return ledgerErr("getHealth", err)
	}
	return nil
}

func (s *SolanaService) Balance(ctx context.Context, pubkey string) (int64, error) {
	key, err := solana.PublicKeyFromBase58(pubkey)
	if err != nil {
		return 0, ledgerErr("parse pubkey", err)
	}
	out, err := s.rpc.GetBalance(ctx, key, s.commitment)
	if err != nil {
		return 0, ledgerErr("getBalance", err)
	}
	return int64(out.Value), nil
}

func (s *SolanaService) RentExemptMinimum(ctx context.Context) (int64, error) {
	min, err := s.rpc.GetMinimumBalanceForRentExemption(ctx, 0, s.commitment)
	if err != nil {
		return 0, ledgerErr("getMinimumBalanceForRentExemption", err)
	}
	return int64(min), nil
}

// EstimateTransferFee prices a single system transfer between the two
// accounts under a fresh blockhash. Falls back to the cluster's base fee
// when the RPC cannot answer.
func (s *SolanaService) EstimateTransferFee(ctx context.Context, from, to string) (int64, error) {
	tx, err := s.buildTransferTx(ctx, from, to, 1)
	if err != nil {
		return 0, err
	}
	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return 0, ledgerErr("marshal message", err)
	}
	out, err := s.rpc.GetFeeForMessage(ctx, base64.StdEncoding.EncodeToString(msg), s.commitment)
	if err != nil || out == nil || out.Value == nil {
		s.log.WithError(err).Warn("fee estimation unavailable, using default")
		return defaultTxFeeLamports, nil
	}
	return int64(*out.Value), nil
}

// BuildTransfer returns a base64 unsigned transfer with the sender as fee
// payer, for the client's wallet to sign and submit.
func (s *SolanaService) BuildTransfer(ctx context.Context, from, to string, lamports int64) (string, error) {
	tx, err := s.buildTransferTx(ctx, from, to, lamports)
	if err != nil {
		return "", err
	}
	// Placeholder signatures so wallet adapters can deserialize the blob.
	tx.Signatures = make([]solana.Signature, tx.Message.Header.NumRequiredSignatures)
	raw, err := tx.MarshalBinary()
	if err != nil {
		return "", ledgerErr("marshal transaction", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// SubmitTransfer builds, signs, optionally simulates, sends and confirms a
// transfer from the escrow account. Nothing is sent when simulation reports
// an error.
func (s *SolanaService) SubmitTransfer(ctx context.Context, secret []byte, to string, lamports int64, simulateFirst bool) (string, error) {
	signer := solana.PrivateKey(secret)
	tx, err := s.buildTransferTx(ctx, signer.PublicKey().String(), to, lamports)
	if err != nil {
		return "", err
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if signer.PublicKey().Equals(key) {
			return &signer
		}
		return nil
	})
	if err != nil {
		return "", ledgerErr("sign transaction", err)
	}

	if simulateFirst {
		sim, err := s.rpc.SimulateTransaction(ctx, tx)
		if err != nil {
			return "", ledgerErr("simulateTransaction", err)
		}
		if sim.Value != nil && sim.Value.Err != nil {
			return "", ledgerErr("simulateTransaction", fmt.Errorf("simulation failed: %v", sim.Value.Err))
		}
	}

	sig, err := s.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: s.commitment,
	})
	if err != nil {
		return "", ledgerErr("sendTransaction", err)
	}

	if err := s.waitForConfirmation(ctx, sig); err != nil {
		return "", err
	}

	s.log.WithFields(logrus.Fields{
		"to":        to,
		"lamports":  lamports,
		"signature": sig.String(),
	}).Info("transfer confirmed")

	return sig.String(), nil
}

// AwaitSignature waits for a client-submitted transaction to confirm.
func (s *SolanaService) AwaitSignature(ctx context.Context, signature string) error {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return ledgerErr("parse signature", err)
	}
	return s.waitForConfirmation(ctx, sig)
}

func (s *SolanaService) buildTransferTx(ctx context.Context, from, to string, lamports int64) (*solana.Transaction, error) {
	fromKey, err := solana.PublicKeyFromBase58(from)
	if err != nil {
		return nil, ledgerErr("parse sender", err)
	}
	toKey, err := solana.PublicKeyFromBase58(to)
	if err != nil {
		return nil, ledgerErr("parse recipient", err)
	}

	recent, err := s.rpc.GetLatestBlockhash(ctx, s.commitment)
	if err != nil {
		return nil, ledgerErr("getLatestBlockhash", err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(uint64(lamports), fromKey, toKey).Build(),
		},
		recent.Value.Blockhash,
		solana.TransactionPayer(fromKey),
	)
	if err != nil {
		return nil, ledgerErr("build transaction", err)
	}
	return tx, nil
}

// waitForConfirmation polls signature status until the transaction reaches
// confirmed commitment or the blockhash validity window runs out.
func (s *SolanaService) waitForConfirmation(ctx context.Context, sig solana.Signature) error {
	ctx, cancel := context.WithTimeout(ctx, confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(confirmPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ledgerErr("confirm", fmt.Errorf("transaction %s not confirmed in time: %w", sig, ctx.Err()))
		case <-ticker.C:
			out, err := s.rpc.GetSignatureStatuses(ctx, true, sig)
			if err != nil {
				continue
			}
			if len(out.Value) == 0 || out.Value[0] == nil {
				continue
			}
			status := out.Value[0]
			if status.Err != nil {
				return ledgerErr("confirm", fmt.Errorf("transaction %s failed: %v", sig, status.Err))
			}
			if status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
				status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
				return nil
			}
		}
	}
}
