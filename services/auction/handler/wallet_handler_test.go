package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"educoin-engine/internal/educoinerrors"
	model "educoin-engine/internal/models"
	wallet "educoin-engine/internal/walletLedger"
	"educoin-engine/services/auction/helpers"
)

// Test MyWalletHandler
func TestMyWalletHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := NewMockWalletServiceInterface(ctrl)
	handler := NewWalletHandler(mockService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/coins/wallets/mine", identityFor("student1", "student"), handler.MyWalletHandler)

	t.Run("success", func(t *testing.T) {
		mockService.EXPECT().
			GetMyWallet(gomock.Any(), "student1").
			Return(model.Wallet{WalletID: "wallet1", StudentID: "student1", Balance: 100, Locked: 40}, nil)

		req := httptest.NewRequest(http.MethodGet, "/coins/wallets/mine", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp["data"].(map[string]any)
		require.Equal(t, float64(100), data["balance"])
		require.Equal(t, float64(40), data["locked"])
		require.Equal(t, float64(60), data["available"])
	})

	t.Run("corrupt_wallet", func(t *testing.T) {
		mockService.EXPECT().
			GetMyWallet(gomock.Any(), "student1").
			Return(model.Wallet{}, educoinerrors.ErrWalletCorrupt)

		req := httptest.NewRequest(http.MethodGet, "/coins/wallets/mine", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusInternalServerError, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Contains(t, resp["message"], "manual reconciliation")
	})
}

// Test GrantCoinsHandler
func TestGrantCoinsHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := NewMockWalletServiceInterface(ctrl)
	handler := NewWalletHandler(mockService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/coins/wallets/:student_id/grant", identityFor("teacher1", "teacher"), handler.GrantCoinsHandler)

	tests := []struct {
		name           string
		requestBody    any
		mockSetup      func()
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:        "success",
			requestBody: helpers.GrantCoinsRequest{Amount: 50, Note: "quiz winner"},
			mockSetup: func() {
				mockService.EXPECT().
					GrantCoins(gomock.Any(), "student1", int64(50), "teacher1", "quiz winner").
					Return(model.Wallet{WalletID: "wallet1", Balance: 50}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "coins granted successfully",
		},
		{
			name:           "invalid_json",
			requestBody:    `{invalid}`,
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:           "zero_amount",
			requestBody:    helpers.GrantCoinsRequest{Amount: 0},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:        "service_error",
			requestBody: helpers.GrantCoinsRequest{Amount: 50},
			mockSetup: func() {
				mockService.EXPECT().
					GrantCoins(gomock.Any(), "student1", int64(50), "teacher1", "").
					Return(model.Wallet{}, errors.New("storage down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "internal server error",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			var reqBody []byte
			var err error
			switch v := tc.requestBody.(type) {
			case string:
				reqBody = []byte(v)
			default:
				reqBody, err = json.Marshal(v)
				require.NoError(t, err)
			}

			tc.mockSetup()

			req := httptest.NewRequest(http.MethodPost, "/coins/wallets/student1/grant", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			require.Equal(t, tc.expectedStatus, w.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.Contains(t, resp["message"], tc.expectedMsg)
		})
	}
}

// Test HistoryHandler
func TestHistoryHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := NewMockWalletServiceInterface(ctrl)
	handler := NewWalletHandler(mockService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/coins/wallets/:student_id/transactions", identityFor("teacher1", "teacher"), handler.HistoryHandler)

	now := time.Now().UTC()

	t.Run("success", func(t *testing.T) {
		mockService.EXPECT().
			History(gomock.Any(), "student1").
			Return([]model.Transaction{
				{TxID: "tx2", Kind: model.TxLock, Amount: 30, CreatedAt: now},
				{TxID: "tx1", Kind: model.TxGrant, Amount: 100, CreatedAt: now.Add(-time.Minute)},
			}, nil)

		req := httptest.NewRequest(http.MethodGet, "/coins/wallets/student1/transactions", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp["data"].([]any)
		require.Len(t, data, 2)
		first := data[0].(map[string]any)
		require.Equal(t, "lock", first["kind"])
	})

	t.Run("nil_history_serializes_as_empty_list", func(t *testing.T) {
		mockService.EXPECT().
			History(gomock.Any(), "student1").
			Return(nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/coins/wallets/student1/transactions", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data, ok := resp["data"].([]any)
		require.True(t, ok)
		require.Len(t, data, 0)
	})

	t.Run("wallet_not_found", func(t *testing.T) {
		mockService.EXPECT().
			History(gomock.Any(), "ghost").
			Return(nil, educoinerrors.ErrWalletNotFound)

		req := httptest.NewRequest(http.MethodGet, "/coins/wallets/ghost/transactions", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

// Test ReconcileHandler
func TestReconcileHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := NewMockWalletServiceInterface(ctrl)
	handler := NewWalletHandler(mockService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/coins/wallets/:student_id/reconcile", identityFor("teacher1", "teacher"), handler.ReconcileHandler)

	t.Run("balanced", func(t *testing.T) {
		mockService.EXPECT().
			Reconcile(gomock.Any(), "student1").
			Return(wallet.ReconcileReport{
				Wallet:        model.Wallet{WalletID: "wallet1", Balance: 90, Locked: 30},
				LedgerLocked:  30,
				LedgerBalance: 90,
				Balanced:      true,
			}, nil)

		req := httptest.NewRequest(http.MethodGet, "/coins/wallets/student1/reconcile", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp["data"].(map[string]any)
		require.Equal(t, true, data["balanced"])
		require.Equal(t, float64(30), data["ledger_locked"])
	})

	t.Run("drifted", func(t *testing.T) {
		mockService.EXPECT().
			Reconcile(gomock.Any(), "student1").
			Return(wallet.ReconcileReport{
				Wallet:        model.Wallet{WalletID: "wallet1", Balance: 90, Locked: 45},
				LedgerLocked:  30,
				LedgerBalance: 90,
				Balanced:      false,
			}, nil)

		req := httptest.NewRequest(http.MethodGet, "/coins/wallets/student1/reconcile", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp["data"].(map[string]any)
		require.Equal(t, false, data["balanced"])
	})
}

// Test RolloverHandler
func TestRolloverHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := NewMockWalletServiceInterface(ctrl)
	handler := NewWalletHandler(mockService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/coins/periods/rollover", identityFor("teacher1", "teacher"), handler.RolloverHandler)

	tests := []struct {
		name           string
		requestBody    any
		mockSetup      func()
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:        "success",
			requestBody: helpers.RolloverRequest{Period: "2025-2"},
			mockSetup: func() {
				mockService.EXPECT().
					Rollover(gomock.Any(), "2025-2").
					Return(model.RolloverSummary{Period: "2025-2", ClosedAuctions: 2, ResetWallets: 10}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "period rolled over successfully",
		},
		{
			name:           "missing_period",
			requestBody:    helpers.RolloverRequest{},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:        "period_already_active",
			requestBody: helpers.RolloverRequest{Period: "2025-1"},
			mockSetup: func() {
				mockService.EXPECT().
					Rollover(gomock.Any(), "2025-1").
					Return(model.RolloverSummary{}, educoinerrors.ErrInvalidInput)
			},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request details",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			reqBody, err := json.Marshal(tc.requestBody)
			require.NoError(t, err)

			tc.mockSetup()

			req := httptest.NewRequest(http.MethodPost, "/coins/periods/rollover", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			require.Equal(t, tc.expectedStatus, w.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.Contains(t, resp["message"], tc.expectedMsg)
		})
	}
}
