package repository

import (
	"context"
	"fmt"
	"sort"

	"educoin-engine/internal/educoinerrors"
	model "educoin-engine/internal/models"
	"educoin-engine/utils"
)

// CreateAuction stores a new open auction and assigns its identity
func (r *MemoryRepo) CreateAuction(ctx context.Context, a model.Auction) (model.Auction, error) {
	a.AuctionID = utils.GenerateID()
	a.State = model.AuctionOpen
	a.CloseReason = model.CloseReasonNone
	a.CreatedAt = r.clock()()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.auctions[a.AuctionID] = &auctionEntry{a: a, bids: make(map[string]model.Bid)}
	return a, nil
}

// rankedBids orders live bids highest amount first; equal amounts are
// impossible through PlaceBid, but import/replay may produce them, so
// earliest placement wins the tie.
func rankedBids(bids map[string]model.Bid) []model.Bid {
	out := make([]model.Bid, 0, len(bids))
	for _, b := range bids {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		if !out[i].PlacedAt.Equal(out[j].PlacedAt) {
			return out[i].PlacedAt.Before(out[j].PlacedAt)
		}
		return out[i].BidID < out[j].BidID
	})
	return out
}

// maybeExpireLocked applies the time-driven close transition if it is
// due. Expiry is a derived fact checked on every read and write path,
// not a scheduler responsibility. Caller holds ae.mu.
func (r *MemoryRepo) maybeExpireLocked(ae *auctionEntry) {
	if ae.a.State == model.AuctionOpen && !ae.a.EndsAt.After(r.clock()()) {
		r.settleLocked(ae, model.CloseReasonExpired)
	}
}

// GetAuction returns the auction and its bids ordered highest-first
func (r *MemoryRepo) GetAuction(ctx context.Context, auctionID string) (model.Auction, []model.Bid, error) {
	ae, ok := r.getAuctionEntry(auctionID)
	if !ok {
		return model.Auction{}, nil, fmt.Errorf("auction %s: %w", auctionID, educoinerrors.ErrAuctionNotFound)
	}
	ae.mu.Lock()
	defer ae.mu.Unlock()
	r.maybeExpireLocked(ae)
	return ae.a, rankedBids(ae.bids), nil
}

// ListAuctions returns auctions, newest first, optionally filtered by
// period. The expiry check runs on each auction as part of the read.
func (r *MemoryRepo) ListAuctions(ctx context.Context, period string) ([]model.Auction, error) {
	r.mu.RLock()
	entries := make([]*auctionEntry, 0, len(r.auctions))
	for _, ae := range r.auctions {
		entries = append(entries, ae)
	}
	r.mu.RUnlock()

	out := make([]model.Auction, 0, len(entries))
	for _, ae := range entries {
		ae.mu.Lock()
		r.maybeExpireLocked(ae)
		if period == "" || ae.a.Period == period {
			out = append(out, ae.a)
		}
		ae.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// PlaceBid records or raises a student's live bid on an open auction.
// The legality check, the wallet lock delta and the bid upsert commit
// as one atomic step under the auction's and the wallet's mutexes.
func (r *MemoryRepo) PlaceBid(ctx context.Context, auctionID, studentID string, amount int64) (model.Bid, error) {
	if err := ctx.Err(); err != nil {
		return model.Bid{}, err
	}
	ae, ok := r.getAuctionEntry(auctionID)
	if !ok {
		return model.Bid{}, fmt.Errorf("auction %s: %w", auctionID, educoinerrors.ErrAuctionNotFound)
	}

	ae.mu.Lock()
	defer ae.mu.Unlock()

	r.maybeExpireLocked(ae)
	if ae.a.State != model.AuctionOpen {
		return model.Bid{}, fmt.Errorf("auction %s: %w", auctionID, educoinerrors.ErrAuctionClosed)
	}

	// The floor is the current highest live bid, or the starting price
	// when nobody has bid yet; a new bid must strictly raise it.
	floor := ae.a.StartingPrice
	for _, b := range ae.bids {
		if b.Amount > floor {
			floor = b.Amount
		}
	}
	if amount < floor+r.minIncrement {
		return model.Bid{}, fmt.Errorf("minimum bid is %d, got %d: %w", floor+r.minIncrement, amount, educoinerrors.ErrBidTooLow)
	}

	we := r.getOrCreateWalletEntry(studentID, ae.a.Period)
	we.mu.Lock()
	defer we.mu.Unlock()

	prev, hasPrev := ae.bids[studentID]
	if hasPrev {
		// Raising only needs the net delta: verify affordability first,
		// then release the old lock and take the new one, so the raise
		// either fully applies or leaves the prior bid intact.
		if err := r.guardLocked(we); err != nil {
			return model.Bid{}, err
		}
		if amount > we.w.Balance-we.w.Locked+prev.Amount {
			return model.Bid{}, fmt.Errorf("need %d more, available %d: %w",
				amount-prev.Amount, we.w.Balance-we.w.Locked, educoinerrors.ErrInsufficientFunds)
		}
		if err := r.releaseLocked(we, prev.Amount, auctionID); err != nil {
			return model.Bid{}, err
		}
		if err := r.lockLocked(we, amount, auctionID); err != nil {
			return model.Bid{}, err
		}
		prev.Amount = amount
		ae.bids[studentID] = prev
		return prev, nil
	}

	if err := r.lockLocked(we, amount, auctionID); err != nil {
		return model.Bid{}, err
	}
	bid := model.Bid{
		BidID:     utils.GenerateID(),
		AuctionID: auctionID,
		StudentID: studentID,
		Amount:    amount,
		PlacedAt:  r.clock()(),
	}
	ae.bids[studentID] = bid
	return bid, nil
}

// settleLocked performs the terminal close transition and settlement.
// The state change under ae.mu is the exactly-once guard; the wallet
// steps are additionally keyed off the transaction log so a replay
// skips work that already committed. Caller holds ae.mu and has
// verified the auction is open.
func (r *MemoryRepo) settleLocked(ae *auctionEntry, reason model.CloseReason) model.Settlement {
	ae.a.State = model.AuctionClosed
	ae.a.CloseReason = reason

	settlement := model.Settlement{
		AuctionID: ae.a.AuctionID,
		Reason:    reason,
		ClosedAt:  r.clock()(),
	}

	ranked := rankedBids(ae.bids)
	if len(ranked) == 0 {
		return settlement
	}

	winner := ranked[0]
	ae.a.WinningBidID = winner.BidID
	settlement.Winner = &winner

	we := r.getOrCreateWalletEntry(winner.StudentID, ae.a.Period)
	we.mu.Lock()
	r.mu.RLock()
	alreadySpent := r.txlog.hasSpend(we.w.WalletID, ae.a.AuctionID)
	r.mu.RUnlock()
	if !alreadySpent {
		if err := r.spendLocked(we, winner.Amount, ae.a.AuctionID); err != nil {
			utils.Error("settlement could not debit winner", map[string]any{
				"auction_id": ae.a.AuctionID,
				"wallet_id":  we.w.WalletID,
				"amount":     winner.Amount,
				"error":      err.Error(),
			})
		}
	}
	we.mu.Unlock()

	for _, b := range ranked[1:] {
		lwe := r.getOrCreateWalletEntry(b.StudentID, ae.a.Period)
		lwe.mu.Lock()
		r.mu.RLock()
		outstanding := r.txlog.outstandingFor(lwe.w.WalletID, ae.a.AuctionID)
		r.mu.RUnlock()
		if outstanding > 0 {
			if err := r.releaseLocked(lwe, outstanding, ae.a.AuctionID); err != nil {
				utils.Error("settlement could not release losing lock", map[string]any{
					"auction_id": ae.a.AuctionID,
					"wallet_id":  lwe.w.WalletID,
					"amount":     outstanding,
					"error":      err.Error(),
				})
			} else {
				settlement.Released++
			}
		}
		lwe.mu.Unlock()
	}
	return settlement
}

// CloseAuction applies the terminal transition. A close attempt after
// the deadline records the expired reason; a second close attempt
// observes the terminal state and fails with ErrAuctionClosed.
func (r *MemoryRepo) CloseAuction(ctx context.Context, auctionID string) (model.Settlement, error) {
	if err := ctx.Err(); err != nil {
		return model.Settlement{}, err
	}
	ae, ok := r.getAuctionEntry(auctionID)
	if !ok {
		return model.Settlement{}, fmt.Errorf("auction %s: %w", auctionID, educoinerrors.ErrAuctionNotFound)
	}

	ae.mu.Lock()
	defer ae.mu.Unlock()

	if ae.a.State != model.AuctionOpen {
		return model.Settlement{}, fmt.Errorf("auction %s: %w", auctionID, educoinerrors.ErrAuctionClosed)
	}
	reason := model.CloseReasonManual
	if !ae.a.EndsAt.After(r.clock()()) {
		reason = model.CloseReasonExpired
	}
	return r.settleLocked(ae, reason), nil
}

// ExpireDueAuctions force-closes every open auction whose deadline has
// passed, through the same transition as a manual close.
func (r *MemoryRepo) ExpireDueAuctions(ctx context.Context) ([]model.Settlement, error) {
	r.mu.RLock()
	entries := make([]*auctionEntry, 0, len(r.auctions))
	for _, ae := range r.auctions {
		entries = append(entries, ae)
	}
	r.mu.RUnlock()

	var settled []model.Settlement
	for _, ae := range entries {
		if err := ctx.Err(); err != nil {
			return settled, err
		}
		ae.mu.Lock()
		if ae.a.State == model.AuctionOpen && !ae.a.EndsAt.After(r.clock()()) {
			settled = append(settled, r.settleLocked(ae, model.CloseReasonExpired))
		}
		ae.mu.Unlock()
	}
	return settled, nil
}
