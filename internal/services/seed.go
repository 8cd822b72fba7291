package services

import (
	"fmt"
	"log"
	"time"

	"github.com/kodbank/backend/internal/auth"
	"github.com/kodbank/backend/internal/bank"
	"github.com/kodbank/backend/internal/models"
	"github.com/shopspring/decimal"
)

type demoAccount struct {
	account  models.Account
	password string
}

func demoAccounts() []demoAccount {
	return []demoAccount{
		{models.Account{ID: 1, Name: "John Doe", Email: "john@example.com", Balance: decimal.RequireFromString("25000.00"), Phone: "9876543210", Role: models.RoleCustomer, CreatedAt: time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)}, "password123"},
		{models.Account{ID: 2, Name: "Jane Smith", Email: "jane@example.com", Balance: decimal.RequireFromString("18500.50"), Phone: "9876543211", Role: models.RoleCustomer, CreatedAt: time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)}, "password123"},
		{models.Account{ID: 3, Name: "Manager Singh", Email: "manager@kodbank.com", Balance: decimal.RequireFromString("50000.00"), Phone: "9876543212", Role: models.RoleManager, CreatedAt: time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)}, "manager123"},
		{models.Account{ID: 4, Name: "Admin Kumar", Email: "admin@kodbank.com", Balance: decimal.RequireFromString("100000.00"), Phone: "9876543213", Role: models.RoleAdmin, CreatedAt: time.Date(2024, 11, 1, 10, 0, 0, 0, time.UTC)}, "admin123"},
	}
}

func demoTransactions() []models.Transaction {
	return []models.Transaction{
		{ID: 1, SenderID: 1, ReceiverID: 2, SenderName: "John Doe", ReceiverName: "Jane Smith", Amount: decimal.NewFromInt(5000), Status: models.TransactionSuccess, CreatedAt: time.Date(2025, 2, 18, 14, 30, 0, 0, time.UTC)},
		{ID: 2, SenderID: 2, ReceiverID: 1, SenderName: "Jane Smith", ReceiverName: "John Doe", Amount: decimal.NewFromInt(2500), Status: models.TransactionSuccess, CreatedAt: time.Date(2025, 2, 17, 11, 0, 0, 0, time.UTC)},
		{ID: 3, SenderID: 1, ReceiverID: 2, SenderName: "John Doe", ReceiverName: "Jane Smith", Amount: decimal.NewFromInt(100000), Status: models.TransactionFailed, CreatedAt: time.Date(2025, 2, 16, 9, 15, 0, 0, time.UTC)},
		{ID: 4, SenderID: 2, ReceiverID: 1, SenderName: "Jane Smith", ReceiverName: "John Doe", Amount: decimal.NewFromInt(1200), Status: models.TransactionSuccess, CreatedAt: time.Date(2025, 2, 15, 16, 45, 0, 0, time.UTC)},
	}
}

// SeedDemo loads the demo bank: four accounts, four historical transactions
// and a live token for each of the first three accounts. Passwords are
// hashed with hasher at seed time. The demo transactions are skipped when the
// ledger already holds history, such as rows restored from the archive.
func SeedDemo(accounts *bank.AccountStore, ledger *bank.Ledger, tokens *auth.TokenRegistry, hasher *auth.Hasher) error {
	fixtures := demoAccounts()
	seeded := make([]models.Account, 0, len(fixtures))
	for _, f := range fixtures {
		hashed, err := hasher.Hash(f.password)
		if err != nil {
			return fmt.Errorf("hash demo credential for %s: %w", f.account.Email, err)
		}
		a := f.account
		a.Credential = hashed
		seeded = append(seeded, a)
	}
	accounts.Seed(seeded...)

	history := demoTransactions()
	if ledger.Len() > 0 {
		log.Printf("[SEED] Ledger already holds %d transactions, skipping demo history", ledger.Len())
		history = nil
	}
	if err := ledger.Seed(history...); err != nil {
		return fmt.Errorf("seed demo transactions: %w", err)
	}

	for _, a := range seeded[:3] {
		if _, err := tokens.Issue(a.ID, a.Name); err != nil {
			return fmt.Errorf("issue demo token for %d: %w", a.ID, err)
		}
	}

	log.Printf("[SEED] Loaded %d demo accounts and %d transactions", len(seeded), len(history))
	return nil
}
