package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is the full record held by the account store.
type Account struct {
	ID         int             `json:"id" example:"1"`
	Name       string          `json:"name" example:"John Doe"`
	Email      string          `json:"email" example:"john@example.com"`
	Credential string          `json:"-"` // argon2id "salt$hash", never leaves the server
	Balance    decimal.Decimal `json:"balance" swaggertype:"string" example:"25000.00"`
	Phone      string          `json:"phone,omitempty" example:"9876543210"`
	Role       Role            `json:"role" example:"Customer"`
	CreatedAt  time.Time       `json:"created_at"`
}

// PublicAccount is the redacted projection handed to callers outside the store.
type PublicAccount struct {
	ID        int             `json:"id" example:"1"`
	Name      string          `json:"name" example:"John Doe"`
	Email     string          `json:"email" example:"john@example.com"`
	Balance   decimal.Decimal `json:"balance" swaggertype:"string" example:"25000.00"`
	Phone     string          `json:"phone" example:"9876543210"`
	Role      Role            `json:"role" example:"Customer"`
	CreatedAt time.Time       `json:"created_at"`
}

func (a Account) Public() PublicAccount {
	return PublicAccount{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Balance:   a.Balance,
		Phone:     a.Phone,
		Role:      a.Role,
		CreatedAt: a.CreatedAt,
	}
}
