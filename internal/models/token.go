package models

import "time"

// Token is a session credential as listed by the token registry
type Token struct {
	ID        int       `json:"id" example:"1"`
	Value     string    `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	AccountID int       `json:"account_id" example:"1"`
	OwnerName string    `json:"username" example:"John Doe"`
	ExpiresAt time.Time `json:"expiry"`
}
