package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the outcome of one transfer attempt
type TransactionStatus string

const (
	TransactionSuccess TransactionStatus = "Success"
	TransactionFailed  TransactionStatus = "Failed"
)

// Transaction is an immutable record of one attempted transfer.
// Party names are copied at creation time so later renames or deletes
// never rewrite history.
type Transaction struct {
	ID           int               `json:"id" db:"id" example:"1"`
	SenderID     int               `json:"sender_id" db:"sender_id" example:"1"`
	ReceiverID   int               `json:"receiver_id" db:"receiver_id" example:"2"`
	SenderName   string            `json:"sender_name" db:"sender_name" example:"John Doe"`
	ReceiverName string            `json:"receiver_name" db:"receiver_name" example:"Jane Smith"`
	Amount       decimal.Decimal   `json:"amount" db:"amount" swaggertype:"string" example:"5000"`
	Status       TransactionStatus `json:"status" db:"status" example:"Success"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
}

// Involves reports whether the account took part in the transaction on either side.
func (t Transaction) Involves(accountID int) bool {
	return t.SenderID == accountID || t.ReceiverID == accountID
}
