package repository

import (
	"context"

	model "educoin-engine/internal/models"
	"educoin-engine/utils"
)

// memoryTxLog is the append-only transaction log. Appends happen while
// the owning wallet's mutex is held, so per-wallet ordering matches the
// order the ledger operations committed in.
type memoryTxLog struct {
	entries  []model.Transaction
	byWallet map[string][]int // walletID -> indexes into entries
}

func newMemoryTxLog() *memoryTxLog {
	return &memoryTxLog{byWallet: make(map[string][]int)}
}

func (l *memoryTxLog) append(tx model.Transaction) {
	l.entries = append(l.entries, tx)
	l.byWallet[tx.WalletID] = append(l.byWallet[tx.WalletID], len(l.entries)-1)
}

// historyFor returns a wallet's transactions, newest first
func (l *memoryTxLog) historyFor(walletID string) []model.Transaction {
	idx := l.byWallet[walletID]
	out := make([]model.Transaction, 0, len(idx))
	for i := len(idx) - 1; i >= 0; i-- {
		out = append(out, l.entries[idx[i]])
	}
	return out
}

func (l *memoryTxLog) sumFor(walletID string, kind model.TransactionKind) int64 {
	var sum int64
	for _, i := range l.byWallet[walletID] {
		if kind == "" || l.entries[i].Kind == kind {
			sum += l.entries[i].Amount
		}
	}
	return sum
}

// outstandingFor is the wallet's live lock against one auction:
// locks minus releases minus spends tagged with that auction. It is
// what settlement must release for a losing bidder, and zero once that
// release (or a raise's interim release) has already happened.
func (l *memoryTxLog) outstandingFor(walletID, auctionID string) int64 {
	var sum int64
	for _, i := range l.byWallet[walletID] {
		e := l.entries[i]
		if e.AuctionID != auctionID {
			continue
		}
		switch e.Kind {
		case model.TxLock:
			sum += e.Amount
		case model.TxRelease, model.TxSpend:
			sum -= e.Amount
		}
	}
	return sum
}

// hasSpend reports whether the winner's debit for this auction is
// already on the ledger. Settlement keys its idempotence off this.
func (l *memoryTxLog) hasSpend(walletID, auctionID string) bool {
	for _, i := range l.byWallet[walletID] {
		e := l.entries[i]
		if e.Kind == model.TxSpend && e.AuctionID == auctionID {
			return true
		}
	}
	return false
}

// appendTx writes one ledger row. Caller must hold the owning wallet's
// mutex; the registry mutex guards the log's own structures.
func (r *MemoryRepo) appendTx(walletID string, kind model.TransactionKind, amount int64, auctionID, note string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txlog.append(model.Transaction{
		TxID:      utils.GenerateID(),
		WalletID:  walletID,
		Kind:      kind,
		Amount:    amount,
		AuctionID: auctionID,
		Note:      note,
		CreatedAt: r.now(),
	})
}

// WalletHistory returns a wallet's transactions, newest first
func (r *MemoryRepo) WalletHistory(ctx context.Context, studentID, period string) ([]model.Transaction, error) {
	we, ok := r.getWalletEntry(studentID, period)
	if !ok {
		return nil, educoinErrWalletNotFound(studentID, period)
	}
	we.mu.Lock()
	walletID := we.w.WalletID
	we.mu.Unlock()

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.txlog.historyFor(walletID), nil
}

// SumTransactions sums ledger entries of one kind for a wallet; an
// empty kind sums everything.
func (r *MemoryRepo) SumTransactions(ctx context.Context, walletID string, kind model.TransactionKind) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.txlog.sumFor(walletID, kind), nil
}
