package models

import "time"

type SessionStatus string

const (
	SessionWaiting SessionStatus = "waiting"
	SessionActive  SessionStatus = "active"
	SessionEnded   SessionStatus = "ended"
	SessionExpired SessionStatus = "expired"
)

// ActiveSession is a live, billed consultation between a client and a designer.
type ActiveSession struct {
	ID                   string        `bson:"id" json:"id"`
	BookingID            string        `bson:"booking_id,omitempty" json:"booking_id,omitempty"`
	ClientID             string        `bson:"client_id" json:"client_id"`
	DesignerID           string        `bson:"designer_id" json:"designer_id"`
	Status               SessionStatus `bson:"status" json:"status"`
	RatePerMinute        float64       `bson:"rate_per_minute" json:"rate_per_minute"`
	CreatedAt            time.Time     `bson:"created_at" json:"created_at"`
	StartedAt            *time.Time    `bson:"started_at,omitempty" json:"started_at,omitempty"`
	EndedAt              *time.Time    `bson:"ended_at,omitempty" json:"ended_at,omitempty"`
	DurationMinutes      int           `bson:"duration_minutes" json:"duration_minutes"`
	AmountCharged        float64       `bson:"amount_charged" json:"amount_charged"`
	PaymentTransactionID string        `bson:"payment_transaction_id,omitempty" json:"payment_transaction_id,omitempty"`
}

// StartSessionRequest starts a session, either from an accepted booking or instantly.
type StartSessionRequest struct {
	BookingID  string `json:"booking_id"`
	DesignerID string `json:"designer_id"`
}

// SessionReview is a client's rating of an ended session.
type SessionReview struct {
	ID         string    `bson:"id" json:"id"`
	SessionID  string    `bson:"session_id" json:"session_id"`
	ClientID   string    `bson:"client_id" json:"client_id"`
	DesignerID string    `bson:"designer_id" json:"designer_id"`
	Rating     int       `bson:"rating" json:"rating"`
	Comment    string    `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// ReviewRequest is the payload for rating a session.
type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// SessionFile is a file shared during a session.
type SessionFile struct {
	ID           string    `bson:"id" json:"id"`
	SessionID    string    `bson:"session_id" json:"session_id"`
	UploaderID   string    `bson:"uploader_id" json:"uploader_id"`
	FileName     string    `bson:"file_name" json:"file_name"`
	PublicID     string    `bson:"public_id" json:"public_id"`
	ResourceType string    `bson:"resource_type" json:"resource_type"`
	URL          string    `bson:"url" json:"url"`
	Size         int64     `bson:"size" json:"size"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}
