package repository

import (
	"context"
	"sync"
	"time"

	model "educoin-engine/internal/models"
)

// WalletStore exposes the wallet ledger. Every operation is a single
// atomic step against the wallet's (balance, locked) pair and appends
// its ledger entries in the same step.
type WalletStore interface {
	GetOrCreateWallet(ctx context.Context, studentID, period string) (model.Wallet, error)
	GrantCoins(ctx context.Context, studentID, period string, amount int64, note string) (model.Wallet, error)
	WalletHistory(ctx context.Context, studentID, period string) ([]model.Transaction, error)
	SumTransactions(ctx context.Context, walletID string, kind model.TransactionKind) (int64, error)
}

// AuctionStore exposes the bid register and the auction lifecycle.
// PlaceBid and CloseAuction are atomic with respect to each other for
// a single auction; different auctions never block each other.
type AuctionStore interface {
	CreateAuction(ctx context.Context, a model.Auction) (model.Auction, error)
	GetAuction(ctx context.Context, auctionID string) (model.Auction, []model.Bid, error)
	ListAuctions(ctx context.Context, period string) ([]model.Auction, error)
	PlaceBid(ctx context.Context, auctionID, studentID string, amount int64) (model.Bid, error)
	CloseAuction(ctx context.Context, auctionID string) (model.Settlement, error)
	ExpireDueAuctions(ctx context.Context) ([]model.Settlement, error)
}

// PeriodStore tracks the active academic period and its rollover
type PeriodStore interface {
	ActivePeriod(ctx context.Context) (string, error)
	RolloverPeriod(ctx context.Context, newPeriod string) (model.RolloverSummary, error)
}

// Store is the full storage contract of the engine
type Store interface {
	WalletStore
	AuctionStore
	PeriodStore
}

// walletEntry serializes all read-modify-write sequences on one wallet
type walletEntry struct {
	mu sync.Mutex
	w  model.Wallet
}

// auctionEntry serializes bid placement and the close transition for
// one auction. Lock ordering is auction before wallet, never the
// reverse.
type auctionEntry struct {
	mu   sync.Mutex
	a    model.Auction
	bids map[string]model.Bid // studentID -> live bid
}

// MemoryRepo is a concurrency-safe in-memory implementation of Store.
// The registry mutex only guards the maps; per-entity mutexes carry
// the actual serialization so unrelated wallets and auctions scale
// independently.
type MemoryRepo struct {
	mu           sync.RWMutex
	wallets      map[string]*walletEntry // key: studentID|period
	auctions     map[string]*auctionEntry
	txlog        *memoryTxLog
	activePeriod string
	minIncrement int64
	now          func() time.Time
}

var _ Store = (*MemoryRepo)(nil)

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo(activePeriod string, minIncrement int64) *MemoryRepo {
	if minIncrement < 1 {
		minIncrement = 1
	}
	return &MemoryRepo{
		wallets:      make(map[string]*walletEntry),
		auctions:     make(map[string]*auctionEntry),
		txlog:        newMemoryTxLog(),
		activePeriod: activePeriod,
		minIncrement: minIncrement,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the repository clock. Intended for tests only.
func (r *MemoryRepo) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

func (r *MemoryRepo) clock() func() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.now
}

func walletKey(studentID, period string) string {
	return studentID + "|" + period
}

func (r *MemoryRepo) getAuctionEntry(auctionID string) (*auctionEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ae, ok := r.auctions[auctionID]
	return ae, ok
}

func (r *MemoryRepo) getWalletEntry(studentID, period string) (*walletEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	we, ok := r.wallets[walletKey(studentID, period)]
	return we, ok
}

// ActivePeriod returns the academic period new wallets and auctions
// are scoped to.
func (r *MemoryRepo) ActivePeriod(ctx context.Context) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activePeriod, nil
}
