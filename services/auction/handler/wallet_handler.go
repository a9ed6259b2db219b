package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	model "educoin-engine/internal/models"
	wallet "educoin-engine/internal/walletLedger"
	"educoin-engine/services/auction/helpers"
	"educoin-engine/utils"
)

type WalletServiceInterface interface {
	GetMyWallet(ctx context.Context, studentID string) (model.Wallet, error)
	GrantCoins(ctx context.Context, studentID string, amount int64, grantedBy, note string) (model.Wallet, error)
	History(ctx context.Context, studentID string) ([]model.Transaction, error)
	Reconcile(ctx context.Context, studentID string) (wallet.ReconcileReport, error)
	Rollover(ctx context.Context, newPeriod string) (model.RolloverSummary, error)
}

type WalletHandler struct {
	service WalletServiceInterface
}

func NewWalletHandler(service WalletServiceInterface) *WalletHandler {
	return &WalletHandler{service: service}
}

// MyWalletHandler handles GET /api/coins/wallets/mine
func (h *WalletHandler) MyWalletHandler(c *gin.Context) {
	studentID := c.GetString(CtxUserID)

	w, err := h.service.GetMyWallet(c.Request.Context(), studentID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("MyWalletHandler: error retrieving wallet", map[string]any{
			"student_id": studentID,
			"error":      err.Error(),
		})
		return
	}

	resp := helpers.WalletResponse{Balance: w.Balance, Locked: w.Locked, Available: w.Available()}
	utils.JSONResponse(c, http.StatusOK, resp, "wallet retrieved successfully")
}

// GrantCoinsHandler handles POST /api/coins/wallets/:student_id/grant
func (h *WalletHandler) GrantCoinsHandler(c *gin.Context) {
	var req helpers.GrantCoinsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "GrantCoinsHandler", err)
		return
	}

	studentID := c.Param("student_id")
	grantedBy := c.GetString(CtxUserID)

	w, err := h.service.GrantCoins(c.Request.Context(), studentID, req.Amount, grantedBy, req.Note)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GrantCoinsHandler: failed to grant coins", map[string]any{
			"student_id": studentID,
			"granted_by": grantedBy,
			"amount":     req.Amount,
			"error":      err.Error(),
		})
		return
	}

	resp := helpers.WalletResponse{Balance: w.Balance, Locked: w.Locked, Available: w.Available()}
	utils.JSONResponse(c, http.StatusOK, resp, "coins granted successfully")
	helpers.LogSuccess("GrantCoinsHandler", "coins granted successfully", map[string]any{
		"student_id": studentID,
		"granted_by": grantedBy,
		"amount":     req.Amount,
	})
}

// HistoryHandler handles GET /api/coins/wallets/:student_id/transactions
func (h *WalletHandler) HistoryHandler(c *gin.Context) {
	studentID := c.Param("student_id")

	txs, err := h.service.History(c.Request.Context(), studentID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("HistoryHandler: error retrieving history", map[string]any{
			"student_id": studentID,
			"error":      err.Error(),
		})
		return
	}

	if txs == nil {
		txs = []model.Transaction{}
	}
	utils.JSONResponse(c, http.StatusOK, txs, "transactions retrieved successfully")
}

// ReconcileHandler handles GET /api/coins/wallets/:student_id/reconcile
func (h *WalletHandler) ReconcileHandler(c *gin.Context) {
	studentID := c.Param("student_id")

	report, err := h.service.Reconcile(c.Request.Context(), studentID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("ReconcileHandler: reconciliation failed", map[string]any{
			"student_id": studentID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, report, "reconciliation completed")
}

// RolloverHandler handles POST /api/coins/periods/rollover
func (h *WalletHandler) RolloverHandler(c *gin.Context) {
	var req helpers.RolloverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RolloverHandler", err)
		return
	}

	summary, err := h.service.Rollover(c.Request.Context(), req.Period)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("RolloverHandler: rollover failed", map[string]any{
			"period": req.Period,
			"error":  err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, summary, "period rolled over successfully")
	helpers.LogSuccess("RolloverHandler", "period rolled over successfully", map[string]any{
		"period":          summary.Period,
		"closed_auctions": summary.ClosedAuctions,
		"reset_wallets":   summary.ResetWallets,
	})
}
