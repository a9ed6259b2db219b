package wallet

import (
	"context"
	"fmt"

	"educoin-engine/internal/educoinerrors"
	"educoin-engine/internal/metrics"
	"educoin-engine/internal/models"
	"educoin-engine/internal/repository"
	"educoin-engine/utils"
)

// WalletService defines the business logic over the wallet ledger
type WalletService struct {
	store repository.Store
}

// NewWalletService creates a new WalletService instance
func NewWalletService(store repository.Store) *WalletService {
	return &WalletService{store: store}
}

// GetMyWallet returns the student's wallet for the active period,
// creating it at zero on first access.
func (s *WalletService) GetMyWallet(ctx context.Context, studentID string) (models.Wallet, error) {
	if studentID == "" {
		return models.Wallet{}, fmt.Errorf("service: %w - empty student ID", educoinerrors.ErrInvalidInput)
	}
	period, err := s.store.ActivePeriod(ctx)
	if err != nil {
		return models.Wallet{}, fmt.Errorf("service: failed to resolve active period: %w", err)
	}
	w, err := s.store.GetOrCreateWallet(ctx, studentID, period)
	if err != nil {
		return models.Wallet{}, fmt.Errorf("service: failed to load wallet for student %s: %w", studentID, err)
	}
	return w, nil
}

// GrantCoins credits a teacher coin award to a student's wallet
func (s *WalletService) GrantCoins(ctx context.Context, studentID string, amount int64, grantedBy, note string) (models.Wallet, error) {
	if studentID == "" {
		return models.Wallet{}, fmt.Errorf("service: %w - empty student ID", educoinerrors.ErrInvalidInput)
	}
	if amount <= 0 {
		return models.Wallet{}, fmt.Errorf("service: %w - non-positive grant amount", educoinerrors.ErrInvalidInput)
	}
	period, err := s.store.ActivePeriod(ctx)
	if err != nil {
		return models.Wallet{}, fmt.Errorf("service: failed to resolve active period: %w", err)
	}
	w, err := s.store.GrantCoins(ctx, studentID, period, amount, note)
	if err != nil {
		return models.Wallet{}, fmt.Errorf("service: failed to grant %d coins to student %s: %w", amount, studentID, err)
	}
	metrics.CoinsGranted.Add(float64(amount))

	utils.Info("coins granted", map[string]any{
		"student_id": studentID,
		"amount":     amount,
		"granted_by": grantedBy,
		"period":     period,
	})
	return w, nil
}

// History returns the student's transactions for the active period,
// newest first.
func (s *WalletService) History(ctx context.Context, studentID string) ([]models.Transaction, error) {
	if studentID == "" {
		return nil, fmt.Errorf("service: %w - empty student ID", educoinerrors.ErrInvalidInput)
	}
	period, err := s.store.ActivePeriod(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to resolve active period: %w", err)
	}
	txs, err := s.store.WalletHistory(ctx, studentID, period)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load history for student %s: %w", studentID, err)
	}
	return txs, nil
}

// ReconcileReport compares a wallet's locked amount against the ledger
// conservation sum: locks minus releases minus spends.
type ReconcileReport struct {
	Wallet        models.Wallet `json:"wallet"`
	LedgerLocked  int64         `json:"ledger_locked"`
	LedgerBalance int64         `json:"ledger_balance"`
	Balanced      bool          `json:"balanced"`
}

// Reconcile audits a wallet against its transaction log. A mismatch
// means the ledger and the wallet diverged and the wallet needs manual
// attention; nothing is corrected automatically.
func (s *WalletService) Reconcile(ctx context.Context, studentID string) (ReconcileReport, error) {
	w, err := s.GetMyWallet(ctx, studentID)
	if err != nil {
		return ReconcileReport{}, err
	}

	sums := make(map[models.TransactionKind]int64, 5)
	for _, kind := range []models.TransactionKind{models.TxLock, models.TxRelease, models.TxSpend, models.TxGrant, models.TxReset} {
		sum, err := s.store.SumTransactions(ctx, w.WalletID, kind)
		if err != nil {
			return ReconcileReport{}, fmt.Errorf("service: failed to sum %s transactions: %w", kind, err)
		}
		sums[kind] = sum
	}

	report := ReconcileReport{
		Wallet:        w,
		LedgerLocked:  sums[models.TxLock] - sums[models.TxRelease] - sums[models.TxSpend],
		LedgerBalance: sums[models.TxGrant] - sums[models.TxSpend] - sums[models.TxReset],
	}
	report.Balanced = !w.Corrupt && report.LedgerLocked == w.Locked && report.LedgerBalance == w.Balance
	if !report.Balanced {
		utils.Warn("wallet reconciliation mismatch", map[string]any{
			"wallet_id":     w.WalletID,
			"locked":        w.Locked,
			"ledger_locked": report.LedgerLocked,
			"corrupt":       w.Corrupt,
		})
	}
	return report, nil
}

// Rollover switches the active academic period, settling open auctions
// and resetting wallets of the outgoing period.
func (s *WalletService) Rollover(ctx context.Context, newPeriod string) (models.RolloverSummary, error) {
	if newPeriod == "" {
		return models.RolloverSummary{}, fmt.Errorf("service: %w - empty period", educoinerrors.ErrInvalidInput)
	}
	summary, err := s.store.RolloverPeriod(ctx, newPeriod)
	if err != nil {
		return models.RolloverSummary{}, fmt.Errorf("service: failed to roll over to period %s: %w", newPeriod, err)
	}
	utils.Info("period rolled over", map[string]any{
		"period":          summary.Period,
		"closed_auctions": summary.ClosedAuctions,
		"reset_wallets":   summary.ResetWallets,
	})
	return summary, nil
}
