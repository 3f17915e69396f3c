package models

import "time"

type TransactionType string

const (
	TxDeposit    TransactionType = "deposit"
	TxWithdrawal TransactionType = "withdrawal"
	TxPayment    TransactionType = "payment"
	TxEarning    TransactionType = "earning"
	TxRefund     TransactionType = "refund"
)

// Credit reports whether the type adds to a balance.
func (t TransactionType) Credit() bool {
	return t == TxDeposit || t == TxEarning || t == TxRefund
}

type TransactionStatus string

const (
	TxPending   TransactionStatus = "pending"
	TxCompleted TransactionStatus = "completed"
	TxFailed    TransactionStatus = "failed"
)

// WalletTransaction is one ledger row. Amount is always positive; Type gives the sign.
type WalletTransaction struct {
	ID            string            `bson:"id" json:"id"`
	UserID        string            `bson:"user_id" json:"user_id"`
	Type          TransactionType   `bson:"type" json:"type"`
	Amount        float64           `bson:"amount" json:"amount"`
	Status        TransactionStatus `bson:"status" json:"status"`
	Description   string            `bson:"description,omitempty" json:"description,omitempty"`
	Reference     string            `bson:"reference,omitempty" json:"reference,omitempty"`
	TransactionID string            `bson:"transaction_id" json:"transaction_id"`
	RelatedUserID string            `bson:"related_user_id,omitempty" json:"related_user_id,omitempty"`
	SessionID     string            `bson:"session_id,omitempty" json:"session_id,omitempty"`
	Gateway       string            `bson:"gateway,omitempty" json:"gateway,omitempty"`
	Metadata      map[string]string `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt     time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time         `bson:"updated_at" json:"updated_at"`
}

// LedgerTotal is the summed amount of one (type, status) bucket for a user.
type LedgerTotal struct {
	Type   TransactionType   `bson:"type" json:"type"`
	Status TransactionStatus `bson:"status" json:"status"`
	Amount float64           `bson:"amount" json:"amount"`
}

// SessionPaymentRequest moves money from a client to a designer for a session.
type SessionPaymentRequest struct {
	ClientID    string  `json:"client_id"`
	DesignerID  string  `json:"designer_id"`
	Amount      float64 `json:"amount"`
	SessionID   string  `json:"session_id"`
	Description string  `json:"description"`
}

// SessionPaymentResult references both ledger rows written for a session payment.
type SessionPaymentResult struct {
	DebitTransactionID  string  `json:"debit_transaction_id"`
	CreditTransactionID string  `json:"credit_transaction_id"`
	Amount              float64 `json:"amount"`
	DesignerAmount      float64 `json:"designer_amount"`
	ClientBalance       float64 `json:"client_balance"`
}

// DepositRequest asks a gateway for a wallet top-up order.
type DepositRequest struct {
	Amount  float64 `json:"amount" binding:"required,gt=0"`
	Gateway string  `json:"gateway" binding:"required,oneof=razorpay phonepe stripe"`
}

// DepositOrder is what the client needs to complete a top-up with the gateway.
type DepositOrder struct {
	TransactionID string  `json:"transaction_id"`
	Gateway       string  `json:"gateway"`
	OrderID       string  `json:"order_id"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	KeyID         string  `json:"key_id,omitempty"`
	RedirectURL   string  `json:"redirect_url,omitempty"`
	ClientSecret  string  `json:"client_secret,omitempty"`
}

// RazorpayVerifyRequest is the checkout handler result posted back by the client.
type RazorpayVerifyRequest struct {
	OrderID   string `json:"razorpay_order_id" binding:"required"`
	PaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature string `json:"razorpay_signature" binding:"required"`
	// Amount is only needed when the pending deposit row is missing.
	Amount float64 `json:"amount"`
}

// WithdrawalRequest asks for a payout to a verified bank account.
type WithdrawalRequest struct {
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	BankAccountID string  `json:"bank_account_id" binding:"required"`
}
