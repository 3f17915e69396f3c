package handlers

import (
	"net/http"

	"meetmydesigners/middleware"
	"meetmydesigners/models"
	"meetmydesigners/services/bank"

	"github.com/gin-gonic/gin"
)

type BankHandler struct {
	Banks bank.BankService
}

func NewBankHandler(bs bank.BankService) *BankHandler {
	return &BankHandler{Banks: bs}
}

// AddAccountHandler handles POST /api/bank-accounts and sends the OTP.
func (h *BankHandler) AddAccountHandler(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	var req models.BankAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	acct, err := h.Banks.AddBankAccount(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, acct)
}

func (h *BankHandler) ListAccountsHandler(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	accounts, err := h.Banks.ListBankAccounts(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bank_accounts": accounts})
}

// VerifyAccountHandler handles POST /api/bank-accounts/:id/verify.
func (h *BankHandler) VerifyAccountHandler(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	var req struct {
		OTP string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	acct, err := h.Banks.VerifyBankAccount(c.Request.Context(), userID, c.Param("id"), req.OTP)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, acct)
}

func (h *BankHandler) ResendOTPHandler(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	if err := h.Banks.ResendOTP(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Verification code sent"})
}

func (h *BankHandler) SetPrimaryHandler(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	if err := h.Banks.SetPrimary(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Primary account updated"})
}

func (h *BankHandler) DeleteAccountHandler(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	if err := h.Banks.DeleteBankAccount(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bank account removed"})
}
