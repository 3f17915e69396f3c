package handlers

import (
	"errors"
	"net/http"

	"meetmydesigners/database/repository"
	"meetmydesigners/services/availability"
	"meetmydesigners/services/bank"
	"meetmydesigners/services/booking"
	"meetmydesigners/services/complaint"
	"meetmydesigners/services/payment"
	"meetmydesigners/services/profile"
	"meetmydesigners/services/realtime"
	"meetmydesigners/services/session"
	"meetmydesigners/services/wallet"
	"meetmydesigners/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, profile.ErrUnauthorized),
		errors.Is(err, profile.ErrInvalidCredentials),
		errors.Is(err, payment.ErrInvalidSignature):
		return http.StatusUnauthorized

	case errors.Is(err, booking.ErrForbidden),
		errors.Is(err, session.ErrForbidden):
		return http.StatusForbidden

	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, profile.ErrProfileNotFound),
		errors.Is(err, profile.ErrDesignerNotFound),
		errors.Is(err, booking.ErrBookingNotFound),
		errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, session.ErrFileNotFound),
		errors.Is(err, bank.ErrAccountNotFound),
		errors.Is(err, payment.ErrBankAccountNotFound),
		errors.Is(err, payment.ErrDepositNotFound),
		errors.Is(err, payment.ErrNothingToRefund),
		errors.Is(err, complaint.ErrComplaintNotFound):
		return http.StatusNotFound

	case errors.Is(err, profile.ErrEmailTaken),
		errors.Is(err, booking.ErrDesignerUnavailable),
		errors.Is(err, booking.ErrInvalidTransition),
		errors.Is(err, session.ErrInvalidState),
		errors.Is(err, session.ErrAlreadyReviewed),
		errors.Is(err, bank.ErrAlreadyVerified),
		errors.Is(err, payment.ErrAlreadyRefunded):
		return http.StatusConflict

	case errors.Is(err, wallet.ErrInsufficientBalance),
		errors.Is(err, session.ErrPaymentIncomplete):
		return http.StatusPaymentRequired

	case errors.Is(err, bank.ErrOTPExpired):
		return http.StatusGone

	case errors.Is(err, bank.ErrTooManyAttempts):
		return http.StatusTooManyRequests

	case errors.Is(err, payment.ErrGatewayNotConfigured),
		errors.Is(err, session.ErrStorageDisabled):
		return http.StatusServiceUnavailable

	case errors.Is(err, payment.ErrVerificationFailed):
		return http.StatusBadGateway

	case errors.Is(err, profile.ErrInvalidProfile),
		errors.Is(err, availability.ErrInvalidSchedule),
		errors.Is(err, booking.ErrInvalidBooking),
		errors.Is(err, session.ErrInvalidSession),
		errors.Is(err, wallet.ErrInvalidAmount),
		errors.Is(err, bank.ErrInvalidIFSC),
		errors.Is(err, bank.ErrInvalidAccountNumber),
		errors.Is(err, bank.ErrNotVerified),
		errors.Is(err, bank.ErrOTPMismatch),
		errors.Is(err, payment.ErrInvalidPayment),
		errors.Is(err, payment.ErrUnsupportedGateway),
		errors.Is(err, payment.ErrBelowMinimumWithdrawal),
		errors.Is(err, payment.ErrBankAccountNotVerified),
		errors.Is(err, complaint.ErrInvalidComplaint),
		errors.Is(err, complaint.ErrInvalidStatus),
		errors.Is(err, realtime.ErrInvalidChannel),
		errors.Is(err, realtime.ErrEventNotAllowed):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError writes err with its mapped status. Internal errors are logged
// and hidden from the client.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	switch {
	case status == http.StatusInternalServerError:
		getLogger(c).Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		utils.JSONError(c, status, "Internal Server Error", "An unexpected error occurred. Please try again later.")
	case errors.Is(err, payment.ErrVerificationFailed):
		utils.JSONError(c, status, payment.VerificationFailedMessage, "")
	default:
		utils.JSONError(c, status, err.Error(), "")
	}
}

func badRequest(c *gin.Context, err error) {
	utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
}
