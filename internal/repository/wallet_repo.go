package repository

import (
	"context"
	"fmt"

	"educoin-engine/internal/educoinerrors"
	model "educoin-engine/internal/models"
	"educoin-engine/utils"
)

func educoinErrWalletNotFound(studentID, period string) error {
	return fmt.Errorf("wallet for student %s in period %s: %w", studentID, period, educoinerrors.ErrWalletNotFound)
}

// getOrCreateWalletEntry returns the entry for (student, period),
// creating an empty wallet on first access.
func (r *MemoryRepo) getOrCreateWalletEntry(studentID, period string) *walletEntry {
	key := walletKey(studentID, period)

	r.mu.RLock()
	we, ok := r.wallets[key]
	r.mu.RUnlock()
	if ok {
		return we
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if we, ok = r.wallets[key]; ok {
		return we
	}
	we = &walletEntry{w: model.Wallet{
		WalletID:  utils.GenerateID(),
		StudentID: studentID,
		Period:    period,
		CreatedAt: r.now(),
	}}
	r.wallets[key] = we
	return we
}

// guardLocked verifies the wallet invariant before any mutation.
// A violated invariant marks the wallet corrupt and halts all writes
// to it until manual reconciliation.
func (r *MemoryRepo) guardLocked(we *walletEntry) error {
	if we.w.Corrupt {
		return fmt.Errorf("wallet %s: %w", we.w.WalletID, educoinerrors.ErrWalletCorrupt)
	}
	if we.w.Locked < 0 || we.w.Locked > we.w.Balance {
		we.w.Corrupt = true
		utils.Error("wallet invariant violated, halting writes", map[string]any{
			"wallet_id": we.w.WalletID,
			"balance":   we.w.Balance,
			"locked":    we.w.Locked,
		})
		return fmt.Errorf("wallet %s: %w", we.w.WalletID, educoinerrors.ErrWalletCorrupt)
	}
	return nil
}

// lockLocked escrows amount against an open bid. Caller holds we.mu.
func (r *MemoryRepo) lockLocked(we *walletEntry, amount int64, auctionID string) error {
	if err := r.guardLocked(we); err != nil {
		return err
	}
	if amount > we.w.Balance-we.w.Locked {
		return fmt.Errorf("need %d, available %d: %w", amount, we.w.Balance-we.w.Locked, educoinerrors.ErrInsufficientFunds)
	}
	we.w.Locked += amount
	r.appendTx(we.w.WalletID, model.TxLock, amount, auctionID, "")
	return nil
}

// releaseLocked gives escrowed coins back. Releasing more than is
// currently locked clamps to zero and logs a correction instead of
// failing. Caller holds we.mu.
func (r *MemoryRepo) releaseLocked(we *walletEntry, amount int64, auctionID string) error {
	if err := r.guardLocked(we); err != nil {
		return err
	}
	if amount > we.w.Locked {
		utils.Warn("release exceeds locked amount, clamping", map[string]any{
			"wallet_id": we.w.WalletID,
			"requested": amount,
			"locked":    we.w.Locked,
		})
		amount = we.w.Locked
	}
	if amount == 0 {
		return nil
	}
	we.w.Locked -= amount
	r.appendTx(we.w.WalletID, model.TxRelease, amount, auctionID, "")
	return nil
}

// spendLocked converts escrowed coins into a real debit, moving amount
// out of both balance and locked. Caller holds we.mu.
func (r *MemoryRepo) spendLocked(we *walletEntry, amount int64, auctionID string) error {
	if err := r.guardLocked(we); err != nil {
		return err
	}
	if amount > we.w.Locked {
		return fmt.Errorf("spend %d exceeds locked %d: %w", amount, we.w.Locked, educoinerrors.ErrInsufficientLocked)
	}
	we.w.Locked -= amount
	we.w.Balance -= amount
	r.appendTx(we.w.WalletID, model.TxSpend, amount, auctionID, "")
	return nil
}

// GetOrCreateWallet returns the student's wallet for the period,
// creating it with a zero balance on first access.
func (r *MemoryRepo) GetOrCreateWallet(ctx context.Context, studentID, period string) (model.Wallet, error) {
	we := r.getOrCreateWalletEntry(studentID, period)
	we.mu.Lock()
	defer we.mu.Unlock()
	return we.w, nil
}

// GrantCoins credits a teacher coin award to the wallet
func (r *MemoryRepo) GrantCoins(ctx context.Context, studentID, period string, amount int64, note string) (model.Wallet, error) {
	we := r.getOrCreateWalletEntry(studentID, period)
	we.mu.Lock()
	defer we.mu.Unlock()

	if err := r.guardLocked(we); err != nil {
		return model.Wallet{}, err
	}
	we.w.Balance += amount
	r.appendTx(we.w.WalletID, model.TxGrant, amount, "", note)
	return we.w, nil
}

// RolloverPeriod closes out the given period: every still-open auction
// in it is settled as expired, every wallet is reset to zero with a
// reset ledger entry, and the new period becomes active.
func (r *MemoryRepo) RolloverPeriod(ctx context.Context, newPeriod string) (model.RolloverSummary, error) {
	r.mu.Lock()
	oldPeriod := r.activePeriod
	if newPeriod == oldPeriod {
		r.mu.Unlock()
		return model.RolloverSummary{}, fmt.Errorf("period %s is already active: %w", newPeriod, educoinerrors.ErrInvalidInput)
	}
	var dueAuctions []*auctionEntry
	for _, ae := range r.auctions {
		dueAuctions = append(dueAuctions, ae)
	}
	var periodWallets []*walletEntry
	for _, we := range r.wallets {
		periodWallets = append(periodWallets, we)
	}
	r.activePeriod = newPeriod
	r.mu.Unlock()

	summary := model.RolloverSummary{Period: newPeriod}

	// Settle open auctions first so locked coins resolve into spends
	// and releases before the reset wipes the wallets.
	for _, ae := range dueAuctions {
		ae.mu.Lock()
		if ae.a.Period == oldPeriod && ae.a.State == model.AuctionOpen {
			r.settleLocked(ae, model.CloseReasonExpired)
			summary.ClosedAuctions++
		}
		ae.mu.Unlock()
	}

	for _, we := range periodWallets {
		we.mu.Lock()
		if we.w.Period == oldPeriod && (we.w.Balance != 0 || we.w.Locked != 0 || we.w.Corrupt) {
			r.appendTx(we.w.WalletID, model.TxReset, we.w.Balance, "", "period rollover to "+newPeriod)
			we.w.Balance = 0
			we.w.Locked = 0
			we.w.Corrupt = false
			summary.ResetWallets++
		}
		we.mu.Unlock()
	}
	return summary, nil
}
