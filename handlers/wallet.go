package handlers

import (
	"net/http"
	"strconv"

	"meetmydesigners/middleware"
	"meetmydesigners/models"
	"meetmydesigners/services/payment"
	"meetmydesigners/services/wallet"

	"github.com/gin-gonic/gin"
)

// WalletHandler serves balances, the ledger, deposits and withdrawals.
type WalletHandler struct {
	Wallet   wallet.WalletService
	Payments payment.PaymentService
}

func NewWalletHandler(ws wallet.WalletService, ps payment.PaymentService) *WalletHandler {
	return &WalletHandler{Wallet: ws, Payments: ps}
}

func (h *WalletHandler) BalanceHandler(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	balance, err := h.Wallet.GetBalance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// TransactionsHandler handles GET /api/wallet/transactions?limit=50.
func (h *WalletHandler) TransactionsHandler(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	if err != nil || limit <= 0 || limit > 200 {
		limit = 50
	}
	txs, err := h.Wallet.ListTransactions(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}

// DepositHandler handles POST /api/wallet/deposit.
func (h *WalletHandler) DepositHandler(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	var req models.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	order, err := h.Payments.CreateDepositOrder(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// VerifyRazorpayHandler handles POST /api/wallet/deposit/razorpay/verify.
func (h *WalletHandler) VerifyRazorpayHandler(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	var req models.RazorpayVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	tx, err := h.Payments.VerifyRazorpayPayment(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

// WithdrawHandler handles POST /api/wallet/withdraw.
func (h *WalletHandler) WithdrawHandler(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	var req models.WithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	tx, err := h.Payments.ProcessWithdrawal(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}
