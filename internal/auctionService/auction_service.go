package auction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"educoin-engine/internal/educoinerrors"
	"educoin-engine/internal/metrics"
	"educoin-engine/internal/models"
	"educoin-engine/internal/repository"
	"educoin-engine/utils"
)

// maxConflictRetries bounds the internal retries after losing an
// atomic race before the conflict is surfaced to the caller.
const maxConflictRetries = 3

// AuctionService defines the business logic for auctions and bidding
type AuctionService struct {
	store repository.Store
}

// NewAuctionService creates a new AuctionService instance
func NewAuctionService(store repository.Store) *AuctionService {
	return &AuctionService{store: store}
}

// CreateAuctionInput carries a teacher's new-auction request
type CreateAuctionInput struct {
	Title         string
	Description   string
	CreatorID     string
	GroupID       string
	StartingPrice int64
	EndsAt        time.Time
}

// CreateAuction opens a new auction in the active academic period
func (s *AuctionService) CreateAuction(ctx context.Context, in CreateAuctionInput) (models.Auction, error) {
	if in.Title == "" || in.CreatorID == "" {
		return models.Auction{}, fmt.Errorf("service: %w - missing title or creator", educoinerrors.ErrInvalidInput)
	}
	if in.StartingPrice < 0 {
		return models.Auction{}, fmt.Errorf("service: %w - negative starting price", educoinerrors.ErrInvalidInput)
	}
	if !in.EndsAt.After(time.Now()) {
		return models.Auction{}, fmt.Errorf("service: %w - end date must be in the future", educoinerrors.ErrInvalidInput)
	}

	period, err := s.store.ActivePeriod(ctx)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to resolve active period: %w", err)
	}

	a, err := s.store.CreateAuction(ctx, models.Auction{
		Title:         in.Title,
		Description:   in.Description,
		CreatorID:     in.CreatorID,
		GroupID:       in.GroupID,
		Period:        period,
		StartingPrice: in.StartingPrice,
		EndsAt:        in.EndsAt.UTC(),
	})
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to create auction: %w", err)
	}

	utils.Info("auction created", map[string]any{
		"auction_id": a.AuctionID,
		"creator_id": a.CreatorID,
		"period":     a.Period,
		"ends_at":    a.EndsAt,
	})
	return a, nil
}

// GetAuction returns an auction with its bids ordered highest-first
func (s *AuctionService) GetAuction(ctx context.Context, auctionID string) (models.Auction, []models.Bid, error) {
	if auctionID == "" {
		return models.Auction{}, nil, fmt.Errorf("service: %w - empty auction ID", educoinerrors.ErrInvalidInput)
	}
	return s.store.GetAuction(ctx, auctionID)
}

// ListAuctions returns the auctions of the active period, newest first
func (s *AuctionService) ListAuctions(ctx context.Context) ([]models.Auction, error) {
	period, err := s.store.ActivePeriod(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to resolve active period: %w", err)
	}
	return s.store.ListAuctions(ctx, period)
}

// bidResult maps a place-bid outcome onto a metrics label
func bidResult(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.Is(err, educoinerrors.ErrBidTooLow):
		return "bid_too_low"
	case errors.Is(err, educoinerrors.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, educoinerrors.ErrAuctionClosed):
		return "auction_closed"
	default:
		return "error"
	}
}

// PlaceBid validates and records a student's bid, retrying a bounded
// number of times when the atomic step loses a race.
func (s *AuctionService) PlaceBid(ctx context.Context, auctionID, studentID string, amount int64) (models.Bid, error) {
	if auctionID == "" || studentID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - missing auctionID or studentID", educoinerrors.ErrInvalidInput)
	}
	if amount <= 0 {
		return models.Bid{}, fmt.Errorf("service: %w - non-positive bid amount", educoinerrors.ErrInvalidInput)
	}

	var bid models.Bid
	var err error
	for attempt := 0; ; attempt++ {
		bid, err = s.store.PlaceBid(ctx, auctionID, studentID, amount)
		if !errors.Is(err, educoinerrors.ErrConflict) || attempt >= maxConflictRetries {
			break
		}
		metrics.ConflictRetries.Inc()
	}
	metrics.BidsPlaced.WithLabelValues(bidResult(err)).Inc()
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to place bid on auction %s by student %s: %w", auctionID, studentID, err)
	}

	utils.Info("bid placed", map[string]any{
		"bid_id":     bid.BidID,
		"auction_id": bid.AuctionID,
		"student_id": bid.StudentID,
		"amount":     bid.Amount,
	})
	return bid, nil
}

// CloseAuction applies the terminal close transition and runs
// settlement exactly once.
func (s *AuctionService) CloseAuction(ctx context.Context, auctionID, closedBy string) (models.Settlement, error) {
	if auctionID == "" {
		return models.Settlement{}, fmt.Errorf("service: %w - empty auction ID", educoinerrors.ErrInvalidInput)
	}

	start := time.Now()
	var settlement models.Settlement
	var err error
	for attempt := 0; ; attempt++ {
		settlement, err = s.store.CloseAuction(ctx, auctionID)
		if !errors.Is(err, educoinerrors.ErrConflict) || attempt >= maxConflictRetries {
			break
		}
		metrics.ConflictRetries.Inc()
	}
	if err != nil {
		return models.Settlement{}, fmt.Errorf("service: failed to close auction %s: %w", auctionID, err)
	}
	metrics.SettlementDuration.Observe(time.Since(start).Seconds())
	metrics.AuctionsClosed.WithLabelValues(string(settlement.Reason)).Inc()

	fields := map[string]any{
		"auction_id": settlement.AuctionID,
		"reason":     settlement.Reason,
		"closed_by":  closedBy,
		"released":   settlement.Released,
	}
	if settlement.Winner != nil {
		fields["winner_id"] = settlement.Winner.StudentID
		fields["amount"] = settlement.Winner.Amount
	}
	utils.Info("auction closed", fields)
	return settlement, nil
}

// SweepExpired force-closes every auction past its deadline. The cron
// sweep calls this; correctness does not depend on it because expiry
// is also derived on every read and bid path.
func (s *AuctionService) SweepExpired(ctx context.Context) ([]models.Settlement, error) {
	settled, err := s.store.ExpireDueAuctions(ctx)
	for _, st := range settled {
		metrics.AuctionsClosed.WithLabelValues(string(st.Reason)).Inc()
	}
	if err != nil {
		return settled, fmt.Errorf("service: expiry sweep failed: %w", err)
	}
	if len(settled) > 0 {
		utils.Info("expiry sweep settled auctions", map[string]any{"count": len(settled)})
	}
	return settled, nil
}
