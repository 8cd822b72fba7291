package bank

import (
	"math"
	"strings"
	"time"

	"github.com/kodbank/backend/internal/models"
	"github.com/shopspring/decimal"
)

// HistoryPageSize is the number of transactions per history page.
const HistoryPageSize = 5

// HistoryQuery narrows a transaction listing the way the history screen does.
type HistoryQuery struct {
	Search string                   // matched against either party name or the amount text
	Status models.TransactionStatus // empty means all
	Page   int                      // 1-based; out of range values are clamped
}

type HistoryPage struct {
	Transactions []models.Transaction `json:"transactions"`
	Page         int                  `json:"page"`
	TotalPages   int                  `json:"total_pages"`
	Total        int                  `json:"total"`
}

// FilterHistory applies search, status and paging to txns, keeping their order.
func FilterHistory(txns []models.Transaction, q HistoryQuery) HistoryPage {
	needle := strings.ToLower(q.Search)

	matched := make([]models.Transaction, 0, len(txns))
	for _, t := range txns {
		if q.Status != "" && t.Status != q.Status {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(t.SenderName), needle) &&
			!strings.Contains(strings.ToLower(t.ReceiverName), needle) &&
			!strings.Contains(t.Amount.String(), q.Search) {
			continue
		}
		matched = append(matched, t)
	}

	totalPages := int(math.Max(1, math.Ceil(float64(len(matched))/HistoryPageSize)))
	page := q.Page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * HistoryPageSize
	end := start + HistoryPageSize
	if end > len(matched) {
		end = len(matched)
	}

	return HistoryPage{
		Transactions: matched[start:end],
		Page:         page,
		TotalPages:   totalPages,
		Total:        len(matched),
	}
}

// SearchAccounts keeps accounts whose name or email contains q, ignoring case.
func SearchAccounts(accounts []models.PublicAccount, q string) []models.PublicAccount {
	if q == "" {
		return accounts
	}
	needle := strings.ToLower(q)

	out := make([]models.PublicAccount, 0, len(accounts))
	for _, a := range accounts {
		if strings.Contains(strings.ToLower(a.Name), needle) || strings.Contains(strings.ToLower(a.Email), needle) {
			out = append(out, a)
		}
	}
	return out
}

type DailyVolume struct {
	Day    string          `json:"day"` // YYYY-MM-DD
	Count  int             `json:"count"`
	Volume decimal.Decimal `json:"volume" swaggertype:"string"`
}

type ManagerStats struct {
	TotalUsers        int             `json:"total_users"`
	TotalTransactions int             `json:"total_transactions"`
	TotalBalance      decimal.Decimal `json:"total_balance" swaggertype:"string"`
	SuccessRate       int             `json:"success_rate"` // whole percent
	Daily             []DailyVolume   `json:"daily"`
}

// ComputeManagerStats summarises accounts and transactions. Daily covers the
// seven calendar days ending with now, counting successful transfers only.
func ComputeManagerStats(accounts []models.PublicAccount, txns []models.Transaction, now time.Time) ManagerStats {
	stats := ManagerStats{
		TotalUsers:        len(accounts),
		TotalTransactions: len(txns),
		TotalBalance:      totalBalance(accounts),
		Daily:             make([]DailyVolume, 7),
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	index := make(map[string]int, 7)
	for i := 0; i < 7; i++ {
		day := today.AddDate(0, 0, i-6).Format("2006-01-02")
		stats.Daily[i] = DailyVolume{Day: day, Volume: decimal.Zero}
		index[day] = i
	}

	succeeded := 0
	for _, t := range txns {
		if t.Status != models.TransactionSuccess {
			continue
		}
		succeeded++
		if i, ok := index[t.CreatedAt.In(now.Location()).Format("2006-01-02")]; ok {
			stats.Daily[i].Count++
			stats.Daily[i].Volume = stats.Daily[i].Volume.Add(t.Amount)
		}
	}

	if len(txns) > 0 {
		stats.SuccessRate = int(math.Round(float64(succeeded) / float64(len(txns)) * 100))
	}
	return stats
}

type AdminStats struct {
	TotalUsers             int             `json:"total_users"`
	Customers              int             `json:"customers"`
	Managers               int             `json:"managers"`
	Admins                 int             `json:"admins"`
	TotalTransactions      int             `json:"total_transactions"`
	SuccessfulTransactions int             `json:"successful_transactions"`
	FailedTransactions     int             `json:"failed_transactions"`
	ActiveTokens           int             `json:"active_tokens"`
	TotalBalance           decimal.Decimal `json:"total_balance" swaggertype:"string"`
}

func ComputeAdminStats(accounts []models.PublicAccount, txns []models.Transaction, activeTokens int) AdminStats {
	stats := AdminStats{
		TotalUsers:        len(accounts),
		TotalTransactions: len(txns),
		ActiveTokens:      activeTokens,
		TotalBalance:      totalBalance(accounts),
	}
	for _, a := range accounts {
		switch a.Role {
		case models.RoleCustomer:
			stats.Customers++
		case models.RoleManager:
			stats.Managers++
		case models.RoleAdmin:
			stats.Admins++
		}
	}
	for _, t := range txns {
		switch t.Status {
		case models.TransactionSuccess:
			stats.SuccessfulTransactions++
		case models.TransactionFailed:
			stats.FailedTransactions++
		}
	}
	return stats
}

func totalBalance(accounts []models.PublicAccount) decimal.Decimal {
	sum := decimal.Zero
	for _, a := range accounts {
		sum = sum.Add(a.Balance)
	}
	return sum
}
