package bank

import (
	"fmt"
	"testing"
	"time"

	"github.com/kodbank/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func sampleTransactions() []models.Transaction {
	// most recent first, as the ledger lists them
	return []models.Transaction{
		{ID: 4, SenderID: 2, ReceiverID: 1, SenderName: "Jane Smith", ReceiverName: "John Doe", Amount: dec("1200"), Status: models.TransactionSuccess},
		{ID: 3, SenderID: 1, ReceiverID: 2, SenderName: "John Doe", ReceiverName: "Jane Smith", Amount: dec("100000"), Status: models.TransactionFailed},
		{ID: 2, SenderID: 2, ReceiverID: 1, SenderName: "Jane Smith", ReceiverName: "John Doe", Amount: dec("2500"), Status: models.TransactionSuccess},
		{ID: 1, SenderID: 1, ReceiverID: 3, SenderName: "John Doe", ReceiverName: "Manager Singh", Amount: dec("5000"), Status: models.TransactionSuccess},
	}
}

func TestFilterHistory(t *testing.T) {
	txns := sampleTransactions()

	t.Run("search by name ignores case", func(t *testing.T) {
		page := FilterHistory(txns, HistoryQuery{Search: "singh"})
		assert.Equal(t, 1, page.Total)
		assert.Equal(t, 1, page.Transactions[0].ID)
	})

	t.Run("search by amount text", func(t *testing.T) {
		page := FilterHistory(txns, HistoryQuery{Search: "250"})
		assert.Equal(t, 1, page.Total)
		assert.Equal(t, 2, page.Transactions[0].ID)
	})

	t.Run("status filter", func(t *testing.T) {
		page := FilterHistory(txns, HistoryQuery{Status: models.TransactionFailed})
		assert.Equal(t, 1, page.Total)
		assert.Equal(t, 3, page.Transactions[0].ID)
	})

	t.Run("empty result still has one page", func(t *testing.T) {
		page := FilterHistory(txns, HistoryQuery{Search: "nobody"})
		assert.Equal(t, 0, page.Total)
		assert.Equal(t, 1, page.TotalPages)
		assert.Empty(t, page.Transactions)
	})
}

func TestFilterHistory_Paging(t *testing.T) {
	var txns []models.Transaction
	for i := 12; i >= 1; i-- {
		txns = append(txns, models.Transaction{ID: i, SenderName: fmt.Sprintf("S%d", i), Amount: dec("1")})
	}

	first := FilterHistory(txns, HistoryQuery{Page: 1})
	assert.Equal(t, 3, first.TotalPages)
	assert.Len(t, first.Transactions, HistoryPageSize)
	assert.Equal(t, 12, first.Transactions[0].ID)

	last := FilterHistory(txns, HistoryQuery{Page: 3})
	assert.Len(t, last.Transactions, 2)

	clamped := FilterHistory(txns, HistoryQuery{Page: 40})
	assert.Equal(t, 3, clamped.Page)

	zero := FilterHistory(txns, HistoryQuery{Page: 0})
	assert.Equal(t, 1, zero.Page)
}

func TestSearchAccounts(t *testing.T) {
	accounts := []models.PublicAccount{
		{ID: 1, Name: "John Doe", Email: "john@example.com"},
		{ID: 3, Name: "Manager Singh", Email: "manager@kodbank.com"},
	}

	assert.Len(t, SearchAccounts(accounts, ""), 2)
	assert.Len(t, SearchAccounts(accounts, "KODBANK"), 1)
	assert.Len(t, SearchAccounts(accounts, "doe"), 1)
	assert.Empty(t, SearchAccounts(accounts, "zzz"))
}

func TestComputeManagerStats(t *testing.T) {
	now := time.Date(2025, 2, 18, 18, 0, 0, 0, time.UTC)
	accounts := []models.PublicAccount{
		{ID: 1, Balance: dec("25000.00")},
		{ID: 2, Balance: dec("18500.50")},
	}
	txns := []models.Transaction{
		{ID: 3, Amount: dec("100"), Status: models.TransactionSuccess, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: 2, Amount: dec("50"), Status: models.TransactionFailed, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: 1, Amount: dec("75"), Status: models.TransactionSuccess, CreatedAt: now.AddDate(0, 0, -30)},
	}

	stats := ComputeManagerStats(accounts, txns, now)
	assert.Equal(t, 2, stats.TotalUsers)
	assert.Equal(t, 3, stats.TotalTransactions)
	assert.True(t, dec("43500.50").Equal(stats.TotalBalance))
	assert.Equal(t, 67, stats.SuccessRate)

	assert.Len(t, stats.Daily, 7)
	assert.Equal(t, "2025-02-12", stats.Daily[0].Day)
	assert.Equal(t, "2025-02-18", stats.Daily[6].Day)
	assert.Equal(t, 1, stats.Daily[6].Count)
	assert.True(t, dec("100").Equal(stats.Daily[6].Volume))
}

func TestComputeManagerStats_NoTransactions(t *testing.T) {
	stats := ComputeManagerStats(nil, nil, time.Now())
	assert.Equal(t, 0, stats.SuccessRate)
	assert.True(t, stats.TotalBalance.IsZero())
}

func TestComputeAdminStats(t *testing.T) {
	accounts := []models.PublicAccount{
		{ID: 1, Role: models.RoleCustomer, Balance: dec("1")},
		{ID: 2, Role: models.RoleCustomer, Balance: dec("2")},
		{ID: 3, Role: models.RoleManager, Balance: dec("3")},
		{ID: 4, Role: models.RoleAdmin, Balance: dec("4")},
	}

	stats := ComputeAdminStats(accounts, sampleTransactions(), 3)
	assert.Equal(t, 4, stats.TotalUsers)
	assert.Equal(t, 2, stats.Customers)
	assert.Equal(t, 1, stats.Managers)
	assert.Equal(t, 1, stats.Admins)
	assert.Equal(t, 3, stats.SuccessfulTransactions)
	assert.Equal(t, 1, stats.FailedTransactions)
	assert.Equal(t, 3, stats.ActiveTokens)
	assert.True(t, dec("10").Equal(stats.TotalBalance))
}
