package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"educoin-engine/internal/educoinerrors"
	model "educoin-engine/internal/models"
	"educoin-engine/utils"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message.
// Business rule violations keep distinct statuses so the UI can show
// the specific reason rather than a generic failure.
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, educoinerrors.ErrInvalidInput):
		return http.StatusBadRequest, "invalid request details"
	case errors.Is(err, educoinerrors.ErrBidTooLow):
		return http.StatusBadRequest, "bid amount too low"
	case errors.Is(err, educoinerrors.ErrInsufficientFunds):
		return http.StatusPaymentRequired, "insufficient available balance"
	case errors.Is(err, educoinerrors.ErrAuctionClosed):
		return http.StatusConflict, "auction is closed"
	case errors.Is(err, educoinerrors.ErrConflict):
		return http.StatusConflict, "conflicting concurrent update, retry with fresh state"
	case errors.Is(err, educoinerrors.ErrAuctionNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, educoinerrors.ErrWalletNotFound):
		return http.StatusNotFound, "wallet not found"
	case errors.Is(err, educoinerrors.ErrWalletCorrupt):
		return http.StatusInternalServerError, "wallet requires manual reconciliation"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}

// NewBidResponse converts a bid into its wire representation
func NewBidResponse(b model.Bid) BidResponse {
	return BidResponse{
		BidID:     b.BidID,
		AuctionID: b.AuctionID,
		StudentID: b.StudentID,
		Amount:    b.Amount,
		PlacedAt:  b.PlacedAt.UTC().Format(time.RFC3339),
	}
}

// NewAuctionResponse converts an auction and its ranked bids into the
// wire representation; the winning bid is attached once closed.
func NewAuctionResponse(a model.Auction, bids []model.Bid) AuctionResponse {
	resp := AuctionResponse{
		AuctionID:     a.AuctionID,
		Title:         a.Title,
		Description:   a.Description,
		CreatorID:     a.CreatorID,
		GroupID:       a.GroupID,
		Period:        a.Period,
		StartingPrice: a.StartingPrice,
		EndsAt:        a.EndsAt.UTC().Format(time.RFC3339),
		State:         string(a.State),
		CloseReason:   string(a.CloseReason),
		CreatedAt:     a.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, b := range bids {
		resp.Bids = append(resp.Bids, NewBidResponse(b))
	}
	if a.State == model.AuctionClosed && a.WinningBidID != "" {
		for _, b := range bids {
			if b.BidID == a.WinningBidID {
				wb := NewBidResponse(b)
				resp.WinningBid = &wb
				break
			}
		}
	}
	return resp
}

// NewSettlementResponse converts a settlement into its wire representation
func NewSettlementResponse(s model.Settlement) SettlementResponse {
	resp := SettlementResponse{
		AuctionID: s.AuctionID,
		Reason:    string(s.Reason),
		Released:  s.Released,
		ClosedAt:  s.ClosedAt.UTC().Format(time.RFC3339),
	}
	if s.Winner != nil {
		resp.Winner = s.Winner.StudentID
		resp.Amount = s.Winner.Amount
	}
	return resp
}
