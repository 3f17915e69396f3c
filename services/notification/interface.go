package notification

import (
	"context"

	notificationRepo "meetmydesigners/database/repository/notification"
	profileRepo "meetmydesigners/database/repository/profile"
	"meetmydesigners/models"
	"meetmydesigners/services/realtime"
)

// Notification types raised by the marketplace.
const (
	TypeBookingRequest   = "booking_request"
	TypeBookingAccepted  = "booking_accepted"
	TypeBookingRejected  = "booking_rejected"
	TypeBookingCancelled = "booking_cancelled"
	TypeSessionPayment   = "session_payment"
	TypeSessionEarning   = "session_earning"
	TypeSessionRefund    = "session_refund"
	TypeDeposit          = "wallet_deposit"
	TypeWithdrawal       = "wallet_withdrawal"
	TypeBankOTP          = "bank_verification_otp"
	TypeComplaintUpdate  = "complaint_update"
)

// Notifier is what other services depend on to reach a user.
type Notifier interface {
	Dispatch(ctx context.Context, userID, kind, title, message string, data map[string]string) error
}

// NotificationService stores in-app notifications and fans them out to
// realtime subscribers and FCM.
type NotificationService interface {
	Notifier
	List(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	Repo      notificationRepo.NotificationRepository
	Profiles  profileRepo.ProfileRepository
	Publisher realtime.Publisher
	// Pusher is nil when Firebase is not configured.
	Pusher Pusher
}
