package models

import "time"

// Notification is an in-app message delivered to a profile.
type Notification struct {
	ID        string            `bson:"id" json:"id"`
	UserID    string            `bson:"user_id" json:"user_id"`
	Type      string            `bson:"type" json:"type"`
	Title     string            `bson:"title" json:"title"`
	Message   string            `bson:"message" json:"message"`
	Data      map[string]string `bson:"data,omitempty" json:"data,omitempty"`
	IsRead    bool              `bson:"is_read" json:"is_read"`
	CreatedAt time.Time         `bson:"created_at" json:"created_at"`
}
