package models

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingAccepted  BookingStatus = "accepted"
	BookingRejected  BookingStatus = "rejected"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
	BookingExpired   BookingStatus = "expired"
)

// Booking is a client's request for a consultation at a scheduled time.
type Booking struct {
	ID              string        `bson:"id" json:"id"`
	ClientID        string        `bson:"client_id" json:"client_id"`
	DesignerID      string        `bson:"designer_id" json:"designer_id"`
	ScheduledDate   string        `bson:"scheduled_date" json:"scheduled_date"` // YYYY-MM-DD
	ScheduledTime   string        `bson:"scheduled_time" json:"scheduled_time"` // HH:MM
	DurationMinutes int           `bson:"duration_minutes" json:"duration_minutes"`
	Status          BookingStatus `bson:"status" json:"status"`
	Notes           string        `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt       time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `bson:"updated_at" json:"updated_at"`
}

// Open reports whether the booking can still turn into a session.
func (b Booking) Open() bool {
	return b.Status == BookingPending || b.Status == BookingAccepted
}

// CreateBookingRequest is the client payload for a new booking.
type CreateBookingRequest struct {
	DesignerID      string `json:"designer_id" binding:"required"`
	ScheduledDate   string `json:"scheduled_date" binding:"required"`
	ScheduledTime   string `json:"scheduled_time" binding:"required"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,min=1,max=480"`
	Notes           string `json:"notes"`
}
