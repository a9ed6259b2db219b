package auction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"educoin-engine/internal/educoinerrors"
	"educoin-engine/internal/models"
	"educoin-engine/internal/repository"
)

func validInput() CreateAuctionInput {
	return CreateAuctionInput{
		Title:         "homework pass",
		Description:   "skip one assignment",
		CreatorID:     "teacher1",
		StartingPrice: 10,
		EndsAt:        time.Now().Add(time.Hour),
	}
}

// Test CreateAuction
func TestAuctionService_CreateAuction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := repository.NewMockStore(ctrl)
	service := NewAuctionService(mockStore)
	ctx := context.Background()

	tests := []struct {
		name      string
		mutate    func(in *CreateAuctionInput)
		mockSetup func()
		wantErr   error
	}{
		{
			name:   "success",
			mutate: func(in *CreateAuctionInput) {},
			mockSetup: func() {
				mockStore.EXPECT().ActivePeriod(gomock.Any()).Return("2025-1", nil)
				mockStore.EXPECT().CreateAuction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, a models.Auction) (models.Auction, error) {
						require.Equal(t, "2025-1", a.Period)
						require.Equal(t, "homework pass", a.Title)
						a.AuctionID = "auction1"
						a.State = models.AuctionOpen
						return a, nil
					})
			},
		},
		{
			name:      "missing_title",
			mutate:    func(in *CreateAuctionInput) { in.Title = "" },
			mockSetup: func() {},
			wantErr:   educoinerrors.ErrInvalidInput,
		},
		{
			name:      "missing_creator",
			mutate:    func(in *CreateAuctionInput) { in.CreatorID = "" },
			mockSetup: func() {},
			wantErr:   educoinerrors.ErrInvalidInput,
		},
		{
			name:      "negative_starting_price",
			mutate:    func(in *CreateAuctionInput) { in.StartingPrice = -5 },
			mockSetup: func() {},
			wantErr:   educoinerrors.ErrInvalidInput,
		},
		{
			name:      "end_date_in_past",
			mutate:    func(in *CreateAuctionInput) { in.EndsAt = time.Now().Add(-time.Hour) },
			mockSetup: func() {},
			wantErr:   educoinerrors.ErrInvalidInput,
		},
		{
			name:   "period_lookup_fails",
			mutate: func(in *CreateAuctionInput) {},
			mockSetup: func() {
				mockStore.EXPECT().ActivePeriod(gomock.Any()).Return("", errors.New("storage down"))
			},
			wantErr: errors.New("storage down"),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			tc.mockSetup()

			a, err := service.CreateAuction(ctx, in)
			if tc.wantErr != nil {
				require.Error(t, err)
				if errors.Is(tc.wantErr, educoinerrors.ErrInvalidInput) {
					require.ErrorIs(t, err, educoinerrors.ErrInvalidInput)
				}
				return
			}
			require.NoError(t, err)
			require.Equal(t, "auction1", a.AuctionID)
		})
	}
}

// Test PlaceBid validation and conflict retry behavior
func TestAuctionService_PlaceBid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := repository.NewMockStore(ctrl)
	service := NewAuctionService(mockStore)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mockStore.EXPECT().PlaceBid(gomock.Any(), "auction1", "student1", int64(50)).
			Return(models.Bid{BidID: "bid1", AuctionID: "auction1", StudentID: "student1", Amount: 50}, nil)

		bid, err := service.PlaceBid(ctx, "auction1", "student1", 50)
		require.NoError(t, err)
		require.Equal(t, "bid1", bid.BidID)
	})

	t.Run("empty_auction_id", func(t *testing.T) {
		_, err := service.PlaceBid(ctx, "", "student1", 50)
		require.ErrorIs(t, err, educoinerrors.ErrInvalidInput)
	})

	t.Run("empty_student_id", func(t *testing.T) {
		_, err := service.PlaceBid(ctx, "auction1", "", 50)
		require.ErrorIs(t, err, educoinerrors.ErrInvalidInput)
	})

	t.Run("non_positive_amount", func(t *testing.T) {
		_, err := service.PlaceBid(ctx, "auction1", "student1", 0)
		require.ErrorIs(t, err, educoinerrors.ErrInvalidInput)
		_, err = service.PlaceBid(ctx, "auction1", "student1", -10)
		require.ErrorIs(t, err, educoinerrors.ErrInvalidInput)
	})

	t.Run("retries_after_transient_conflict", func(t *testing.T) {
		gomock.InOrder(
			mockStore.EXPECT().PlaceBid(gomock.Any(), "auction1", "student1", int64(60)).
				Return(models.Bid{}, educoinerrors.ErrConflict),
			mockStore.EXPECT().PlaceBid(gomock.Any(), "auction1", "student1", int64(60)).
				Return(models.Bid{}, educoinerrors.ErrConflict),
			mockStore.EXPECT().PlaceBid(gomock.Any(), "auction1", "student1", int64(60)).
				Return(models.Bid{BidID: "bid2", Amount: 60}, nil),
		)

		bid, err := service.PlaceBid(ctx, "auction1", "student1", 60)
		require.NoError(t, err)
		require.Equal(t, "bid2", bid.BidID)
	})

	t.Run("conflict_surfaces_after_retry_budget", func(t *testing.T) {
		mockStore.EXPECT().PlaceBid(gomock.Any(), "auction1", "student1", int64(70)).
			Return(models.Bid{}, educoinerrors.ErrConflict).
			Times(4) // first attempt plus three retries

		_, err := service.PlaceBid(ctx, "auction1", "student1", 70)
		require.ErrorIs(t, err, educoinerrors.ErrConflict)
	})

	t.Run("business_rejection_is_not_retried", func(t *testing.T) {
		mockStore.EXPECT().PlaceBid(gomock.Any(), "auction1", "student1", int64(80)).
			Return(models.Bid{}, educoinerrors.ErrBidTooLow).
			Times(1)

		_, err := service.PlaceBid(ctx, "auction1", "student1", 80)
		require.ErrorIs(t, err, educoinerrors.ErrBidTooLow)
	})
}

// Test CloseAuction
func TestAuctionService_CloseAuction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := repository.NewMockStore(ctrl)
	service := NewAuctionService(mockStore)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		winner := models.Bid{BidID: "bid1", StudentID: "student1", Amount: 40}
		mockStore.EXPECT().CloseAuction(gomock.Any(), "auction1").
			Return(models.Settlement{
				AuctionID: "auction1",
				Reason:    models.CloseReasonManual,
				Winner:    &winner,
				Released:  2,
			}, nil)

		s, err := service.CloseAuction(ctx, "auction1", "teacher1")
		require.NoError(t, err)
		require.Equal(t, "auction1", s.AuctionID)
		require.Equal(t, "student1", s.Winner.StudentID)
	})

	t.Run("empty_auction_id", func(t *testing.T) {
		_, err := service.CloseAuction(ctx, "", "teacher1")
		require.ErrorIs(t, err, educoinerrors.ErrInvalidInput)
	})

	t.Run("already_closed", func(t *testing.T) {
		mockStore.EXPECT().CloseAuction(gomock.Any(), "auction1").
			Return(models.Settlement{}, educoinerrors.ErrAuctionClosed)

		_, err := service.CloseAuction(ctx, "auction1", "teacher1")
		require.ErrorIs(t, err, educoinerrors.ErrAuctionClosed)
	})

	t.Run("retries_after_transient_conflict", func(t *testing.T) {
		gomock.InOrder(
			mockStore.EXPECT().CloseAuction(gomock.Any(), "auction2").
				Return(models.Settlement{}, educoinerrors.ErrConflict),
			mockStore.EXPECT().CloseAuction(gomock.Any(), "auction2").
				Return(models.Settlement{AuctionID: "auction2", Reason: models.CloseReasonManual}, nil),
		)

		s, err := service.CloseAuction(ctx, "auction2", "teacher1")
		require.NoError(t, err)
		require.Equal(t, "auction2", s.AuctionID)
	})
}

// Test SweepExpired
func TestAuctionService_SweepExpired(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := repository.NewMockStore(ctrl)
	service := NewAuctionService(mockStore)
	ctx := context.Background()

	t.Run("settles_due_auctions", func(t *testing.T) {
		mockStore.EXPECT().ExpireDueAuctions(gomock.Any()).
			Return([]models.Settlement{
				{AuctionID: "auction1", Reason: models.CloseReasonExpired},
			}, nil)

		settled, err := service.SweepExpired(ctx)
		require.NoError(t, err)
		require.Len(t, settled, 1)
	})

	t.Run("partial_failure_keeps_settled", func(t *testing.T) {
		mockStore.EXPECT().ExpireDueAuctions(gomock.Any()).
			Return([]models.Settlement{{AuctionID: "auction1", Reason: models.CloseReasonExpired}}, errors.New("storage down"))

		settled, err := service.SweepExpired(ctx)
		require.Error(t, err)
		require.Len(t, settled, 1)
	})
}

// Test GetAuction and ListAuctions pass-through
func TestAuctionService_Reads(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := repository.NewMockStore(ctrl)
	service := NewAuctionService(mockStore)
	ctx := context.Background()

	t.Run("get_auction", func(t *testing.T) {
		mockStore.EXPECT().GetAuction(gomock.Any(), "auction1").
			Return(models.Auction{AuctionID: "auction1"}, []models.Bid{{BidID: "bid1"}}, nil)

		a, bids, err := service.GetAuction(ctx, "auction1")
		require.NoError(t, err)
		require.Equal(t, "auction1", a.AuctionID)
		require.Len(t, bids, 1)
	})

	t.Run("get_auction_empty_id", func(t *testing.T) {
		_, _, err := service.GetAuction(ctx, "")
		require.ErrorIs(t, err, educoinerrors.ErrInvalidInput)
	})

	t.Run("list_scoped_to_active_period", func(t *testing.T) {
		mockStore.EXPECT().ActivePeriod(gomock.Any()).Return("2025-1", nil)
		mockStore.EXPECT().ListAuctions(gomock.Any(), "2025-1").
			Return([]models.Auction{{AuctionID: "auction1"}}, nil)

		auctions, err := service.ListAuctions(ctx)
		require.NoError(t, err)
		require.Len(t, auctions, 1)
	})
}
