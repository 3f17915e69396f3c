package models

import "time"

// Role is the kind of account behind a profile.
type Role string

const (
	RoleClient   Role = "client"
	RoleDesigner Role = "designer"
	RoleAdmin    Role = "admin"
)

// Profile is every account on the marketplace.
type Profile struct {
	ID           string    `bson:"id" json:"id"`
	Email        string    `bson:"email" json:"email"`
	FullName     string    `bson:"full_name" json:"full_name"`
	Phone        string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Role         Role      `bson:"role" json:"role"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	TokenHash    string    `bson:"token_hash,omitempty" json:"-"`
	FCMToken     string    `bson:"fcm_token,omitempty" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// SignUpRequest is the payload for account creation.
type SignUpRequest struct {
	Email         string  `json:"email" binding:"required,email"`
	Password      string  `json:"password" binding:"required,min=8"`
	FullName      string  `json:"full_name" binding:"required"`
	Phone         string  `json:"phone"`
	Role          Role    `json:"role" binding:"required,oneof=client designer"`
	Specialty     string  `json:"specialty"`
	RatePerMinute float64 `json:"rate_per_minute"`
}

// SignInRequest is the payload for login.
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned after a successful sign-up or sign-in.
type AuthResponse struct {
	Token   string   `json:"token"`
	Profile *Profile `json:"profile"`
}

// UpdateProfileRequest carries optional profile changes.
type UpdateProfileRequest struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
}
