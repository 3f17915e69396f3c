package models

import "time"

// Designer is the public, bookable side of a designer profile.
type Designer struct {
	ID            string    `bson:"id" json:"id"`
	UserID        string    `bson:"user_id" json:"user_id"`
	DisplayName   string    `bson:"display_name" json:"display_name"`
	Specialty     string    `bson:"specialty,omitempty" json:"specialty,omitempty"`
	Bio           string    `bson:"bio,omitempty" json:"bio,omitempty"`
	RatePerMinute float64   `bson:"rate_per_minute" json:"rate_per_minute"`
	IsOnline      bool      `bson:"is_online" json:"is_online"`
	Timezone      string    `bson:"timezone,omitempty" json:"timezone,omitempty"`
	Rating        float64   `bson:"rating" json:"rating"`
	ReviewCount   int       `bson:"review_count" json:"review_count"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at"`
}

// UpdateDesignerRequest carries optional designer profile changes.
type UpdateDesignerRequest struct {
	DisplayName   *string  `json:"display_name"`
	Specialty     *string  `json:"specialty"`
	Bio           *string  `json:"bio"`
	RatePerMinute *float64 `json:"rate_per_minute" binding:"omitempty,gte=0"`
	Timezone      *string  `json:"timezone"`
}
