package models

import "time"

type ComplaintStatus string

const (
	ComplaintOpen       ComplaintStatus = "open"
	ComplaintInProgress ComplaintStatus = "in_progress"
	ComplaintResolved   ComplaintStatus = "resolved"
)

// CustomerComplaint is a support ticket raised by a profile.
type CustomerComplaint struct {
	ID          string          `bson:"id" json:"id"`
	UserID      string          `bson:"user_id" json:"user_id"`
	SessionID   string          `bson:"session_id,omitempty" json:"session_id,omitempty"`
	Subject     string          `bson:"subject" json:"subject"`
	Description string          `bson:"description" json:"description"`
	Status      ComplaintStatus `bson:"status" json:"status"`
	CreatedAt   time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `bson:"updated_at" json:"updated_at"`
}

// ComplaintRequest is the payload for filing a complaint.
type ComplaintRequest struct {
	SessionID   string `json:"session_id"`
	Subject     string `json:"subject" binding:"required"`
	Description string `json:"description" binding:"required"`
}

// BankAccount is a payout destination for withdrawals.
type BankAccount struct {
	ID            string     `bson:"id" json:"id"`
	UserID        string     `bson:"user_id" json:"user_id"`
	AccountHolder string     `bson:"account_holder" json:"account_holder"`
	AccountNumber string     `bson:"account_number" json:"-"`
	MaskedNumber  string     `bson:"masked_number" json:"account_number"`
	IFSC          string     `bson:"ifsc" json:"ifsc"`
	BankName      string     `bson:"bank_name,omitempty" json:"bank_name,omitempty"`
	IsVerified    bool       `bson:"is_verified" json:"is_verified"`
	IsPrimary     bool       `bson:"is_primary" json:"is_primary"`
	CreatedAt     time.Time  `bson:"created_at" json:"created_at"`
	VerifiedAt    *time.Time `bson:"verified_at,omitempty" json:"verified_at,omitempty"`
}

// BankAccountRequest is the payload for registering a bank account.
type BankAccountRequest struct {
	AccountHolder string `json:"account_holder" binding:"required"`
	AccountNumber string `json:"account_number" binding:"required"`
	IFSC          string `json:"ifsc" binding:"required"`
	BankName      string `json:"bank_name"`
}
