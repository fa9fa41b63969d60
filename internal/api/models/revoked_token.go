package models

import "time"

// RevokedToken records the id of a logged-out access token until it expires.
type RevokedToken struct {
	TokenID   string    `gorm:"primaryKey;size:36" json:"token_id"`
	UserID    int64     `gorm:"not null;index" json:"user_id"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (RevokedToken) TableName() string {
	return "revoked_tokens"
}
