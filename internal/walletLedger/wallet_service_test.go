package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"educoin-engine/internal/educoinerrors"
	"educoin-engine/internal/models"
	"educoin-engine/internal/repository"
)

// Test GetMyWallet
func TestWalletService_GetMyWallet(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := repository.NewMockStore(ctrl)
	service := NewWalletService(mockStore)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mockStore.EXPECT().ActivePeriod(gomock.Any()).Return("2025-1", nil)
		mockStore.EXPECT().GetOrCreateWallet(gomock.Any(), "student1", "2025-1").
			Return(models.Wallet{WalletID: "wallet1", StudentID: "student1", Balance: 100, Locked: 40}, nil)

		w, err := service.GetMyWallet(ctx, "student1")
		require.NoError(t, err)
		require.Equal(t, "wallet1", w.WalletID)
		require.Equal(t, int64(60), w.Available())
	})

	t.Run("empty_student_id", func(t *testing.T) {
		_, err := service.GetMyWallet(ctx, "")
		require.ErrorIs(t, err, educoinerrors.ErrInvalidInput)
	})

	t.Run("period_lookup_fails", func(t *testing.T) {
		mockStore.EXPECT().ActivePeriod(gomock.Any()).Return("", errors.New("storage down"))

		_, err := service.GetMyWallet(ctx, "student1")
		require.Error(t, err)
	})
}

// Test GrantCoins
func TestWalletService_GrantCoins(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := repository.NewMockStore(ctrl)
	service := NewWalletService(mockStore)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mockStore.EXPECT().ActivePeriod(gomock.Any()).Return("2025-1", nil)
		mockStore.EXPECT().GrantCoins(gomock.Any(), "student1", "2025-1", int64(50), "quiz winner").
			Return(models.Wallet{WalletID: "wallet1", Balance: 50}, nil)

		w, err := service.GrantCoins(ctx, "student1", 50, "teacher1", "quiz winner")
		require.NoError(t, err)
		require.Equal(t, int64(50), w.Balance)
	})

	t.Run("empty_student_id", func(t *testing.T) {
		_, err := service.GrantCoins(ctx, "", 50, "teacher1", "")
		require.ErrorIs(t, err, educoinerrors.ErrInvalidInput)
	})

	t.Run("non_positive_amount", func(t *testing.T) {
		_, err := service.GrantCoins(ctx, "student1", 0, "teacher1", "")
		require.ErrorIs(t, err, educoinerrors.ErrInvalidInput)
		_, err = service.GrantCoins(ctx, "student1", -5, "teacher1", "")
		require.ErrorIs(t, err, educoinerrors.ErrInvalidInput)
	})

	t.Run("corrupt_wallet_rejected", func(t *testing.T) {
		mockStore.EXPECT().ActivePeriod(gomock.Any()).Return("2025-1", nil)
		mockStore.EXPECT().GrantCoins(gomock.Any(), "student1", "2025-1", int64(10), "").
			Return(models.Wallet{}, educoinerrors.ErrWalletCorrupt)

		_, err := service.GrantCoins(ctx, "student1", 10, "teacher1", "")
		require.ErrorIs(t, err, educoinerrors.ErrWalletCorrupt)
	})
}

// Test History
func TestWalletService_History(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := repository.NewMockStore(ctrl)
	service := NewWalletService(mockStore)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mockStore.EXPECT().ActivePeriod(gomock.Any()).Return("2025-1", nil)
		mockStore.EXPECT().WalletHistory(gomock.Any(), "student1", "2025-1").
			Return([]models.Transaction{
				{TxID: "tx2", Kind: models.TxLock, Amount: 30},
				{TxID: "tx1", Kind: models.TxGrant, Amount: 100},
			}, nil)

		txs, err := service.History(ctx, "student1")
		require.NoError(t, err)
		require.Len(t, txs, 2)
		require.Equal(t, "tx2", txs[0].TxID, "newest first")
	})

	t.Run("empty_student_id", func(t *testing.T) {
		_, err := service.History(ctx, "")
		require.ErrorIs(t, err, educoinerrors.ErrInvalidInput)
	})

	t.Run("unknown_wallet", func(t *testing.T) {
		mockStore.EXPECT().ActivePeriod(gomock.Any()).Return("2025-1", nil)
		mockStore.EXPECT().WalletHistory(gomock.Any(), "ghost", "2025-1").
			Return(nil, educoinerrors.ErrWalletNotFound)

		_, err := service.History(ctx, "ghost")
		require.ErrorIs(t, err, educoinerrors.ErrWalletNotFound)
	})
}

// Test Reconcile
func TestWalletService_Reconcile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := repository.NewMockStore(ctrl)
	service := NewWalletService(mockStore)
	ctx := context.Background()

	expectSums := func(walletID string, lock, release, spend, grant, reset int64) {
		mockStore.EXPECT().SumTransactions(gomock.Any(), walletID, models.TxLock).Return(lock, nil)
		mockStore.EXPECT().SumTransactions(gomock.Any(), walletID, models.TxRelease).Return(release, nil)
		mockStore.EXPECT().SumTransactions(gomock.Any(), walletID, models.TxSpend).Return(spend, nil)
		mockStore.EXPECT().SumTransactions(gomock.Any(), walletID, models.TxGrant).Return(grant, nil)
		mockStore.EXPECT().SumTransactions(gomock.Any(), walletID, models.TxReset).Return(reset, nil)
	}

	t.Run("balanced_wallet", func(t *testing.T) {
		mockStore.EXPECT().ActivePeriod(gomock.Any()).Return("2025-1", nil)
		mockStore.EXPECT().GetOrCreateWallet(gomock.Any(), "student1", "2025-1").
			Return(models.Wallet{WalletID: "wallet1", Balance: 90, Locked: 30}, nil)
		expectSums("wallet1", 50, 10, 10, 100, 0)

		report, err := service.Reconcile(ctx, "student1")
		require.NoError(t, err)
		require.Equal(t, int64(30), report.LedgerLocked)
		require.Equal(t, int64(90), report.LedgerBalance)
		require.True(t, report.Balanced)
	})

	t.Run("drifted_wallet_reported_not_fixed", func(t *testing.T) {
		mockStore.EXPECT().ActivePeriod(gomock.Any()).Return("2025-1", nil)
		mockStore.EXPECT().GetOrCreateWallet(gomock.Any(), "student1", "2025-1").
			Return(models.Wallet{WalletID: "wallet1", Balance: 90, Locked: 45}, nil)
		expectSums("wallet1", 50, 10, 10, 100, 0)

		report, err := service.Reconcile(ctx, "student1")
		require.NoError(t, err)
		require.False(t, report.Balanced)
		require.Equal(t, int64(45), report.Wallet.Locked, "counters are reported untouched")
		require.Equal(t, int64(30), report.LedgerLocked)
	})

	t.Run("corrupt_wallet_never_balanced", func(t *testing.T) {
		mockStore.EXPECT().ActivePeriod(gomock.Any()).Return("2025-1", nil)
		mockStore.EXPECT().GetOrCreateWallet(gomock.Any(), "student1", "2025-1").
			Return(models.Wallet{WalletID: "wallet1", Balance: 90, Locked: 30, Corrupt: true}, nil)
		expectSums("wallet1", 50, 10, 10, 100, 0)

		report, err := service.Reconcile(ctx, "student1")
		require.NoError(t, err)
		require.False(t, report.Balanced)
	})
}

// Test Rollover
func TestWalletService_Rollover(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := repository.NewMockStore(ctrl)
	service := NewWalletService(mockStore)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mockStore.EXPECT().RolloverPeriod(gomock.Any(), "2025-2").
			Return(models.RolloverSummary{Period: "2025-2", ClosedAuctions: 3, ResetWallets: 12}, nil)

		summary, err := service.Rollover(ctx, "2025-2")
		require.NoError(t, err)
		require.Equal(t, 3, summary.ClosedAuctions)
		require.Equal(t, 12, summary.ResetWallets)
	})

	t.Run("empty_period", func(t *testing.T) {
		_, err := service.Rollover(ctx, "")
		require.ErrorIs(t, err, educoinerrors.ErrInvalidInput)
	})

	t.Run("period_already_active", func(t *testing.T) {
		mockStore.EXPECT().RolloverPeriod(gomock.Any(), "2025-1").
			Return(models.RolloverSummary{}, educoinerrors.ErrInvalidInput)

		_, err := service.Rollover(ctx, "2025-1")
		require.ErrorIs(t, err, educoinerrors.ErrInvalidInput)
	})
}
