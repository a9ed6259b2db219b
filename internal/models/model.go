package models

import "time"

// AuctionState describes whether an auction still accepts bids
type AuctionState string

const (
	AuctionOpen   AuctionState = "open"
	AuctionClosed AuctionState = "closed"
)

// CloseReason records how a closed auction reached its terminal state
type CloseReason string

const (
	CloseReasonNone    CloseReason = ""
	CloseReasonManual  CloseReason = "manual"
	CloseReasonExpired CloseReason = "expired"
)

// TransactionKind is the type of a balance-affecting ledger entry
type TransactionKind string

const (
	TxLock    TransactionKind = "lock"
	TxRelease TransactionKind = "release"
	TxSpend   TransactionKind = "spend"
	TxGrant   TransactionKind = "grant"
	TxReset   TransactionKind = "reset"
)

// Wallet holds a student's coin balance for one academic period.
// Locked is the sum of this student's outstanding bid locks across
// all open auctions; Balance - Locked is what a new bid may draw on.
type Wallet struct {
	WalletID  string    `json:"wallet_id"`
	StudentID string    `json:"student_id"`
	Period    string    `json:"period"`
	Balance   int64     `json:"balance"`
	Locked    int64     `json:"locked"`
	Corrupt   bool      `json:"corrupt,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Available returns the spendable part of the balance
func (w Wallet) Available() int64 {
	return w.Balance - w.Locked
}

// Auction is a timed sale owned by a teacher, scoped to a group/period.
// Once State is closed the auction is terminal.
type Auction struct {
	AuctionID     string       `json:"auction_id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	CreatorID     string       `json:"creator_id"`
	GroupID       string       `json:"group_id"`
	Period        string       `json:"period"`
	StartingPrice int64        `json:"starting_price"`
	EndsAt        time.Time    `json:"ends_at"`
	State         AuctionState `json:"state"`
	CloseReason   CloseReason  `json:"close_reason,omitempty"`
	WinningBidID  string       `json:"winning_bid_id,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

// Bid is a student's live stake on an auction. There is at most one
// per (auction, student); a raise updates Amount in place.
type Bid struct {
	BidID     string    `json:"bid_id"`
	AuctionID string    `json:"auction_id"`
	StudentID string    `json:"student_id"`
	Amount    int64     `json:"amount"`
	PlacedAt  time.Time `json:"placed_at"`
}

// Transaction is an append-only ledger entry. AuctionID is set for
// lock/release/spend entries so settlement can be replayed safely.
type Transaction struct {
	TxID      string          `json:"tx_id"`
	WalletID  string          `json:"wallet_id"`
	Kind      TransactionKind `json:"kind"`
	Amount    int64           `json:"amount"`
	AuctionID string          `json:"auction_id,omitempty"`
	Note      string          `json:"note,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Settlement summarizes one close transition: the winning bid, if any,
// and how many losing locks were released.
type Settlement struct {
	AuctionID string      `json:"auction_id"`
	Reason    CloseReason `json:"reason"`
	Winner    *Bid        `json:"winner,omitempty"`
	Released  int         `json:"released"`
	ClosedAt  time.Time   `json:"closed_at"`
}

// RolloverSummary reports the effects of an academic period rollover
type RolloverSummary struct {
	Period         string `json:"period"`
	ClosedAuctions int    `json:"closed_auctions"`
	ResetWallets   int    `json:"reset_wallets"`
}
