package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kodbank/backend/internal/models"
)

const createLedgerTable = `
CREATE TABLE IF NOT EXISTS ledger_transactions (
	id            INTEGER PRIMARY KEY,
	sender_id     INTEGER NOT NULL,
	receiver_id   INTEGER NOT NULL,
	sender_name   TEXT NOT NULL,
	receiver_name TEXT NOT NULL,
	amount        NUMERIC(18,2) NOT NULL,
	status        TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
)`

// LedgerArchive writes every ledger entry to postgres as it is appended.
// The in-memory ledger stays the source of truth for reads.
type LedgerArchive struct {
	db *sql.DB
}

func NewLedgerArchive(db *sql.DB) *LedgerArchive {
	return &LedgerArchive{db: db}
}

// Migrate creates the archive table when missing.
func (a *LedgerArchive) Migrate(ctx context.Context) error {
	if _, err := a.db.ExecContext(ctx, createLedgerTable); err != nil {
		return fmt.Errorf("create ledger table: %w", err)
	}
	return nil
}

func (a *LedgerArchive) Record(ctx context.Context, tx models.Transaction) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO ledger_transactions (id, sender_id, receiver_id, sender_name, receiver_name, amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		tx.ID, tx.SenderID, tx.ReceiverID, tx.SenderName, tx.ReceiverName, tx.Amount.StringFixed(2), string(tx.Status), tx.CreatedAt)
	return err
}

// Load returns archived entries in append order, for seeding the ledger on startup.
func (a *LedgerArchive) Load(ctx context.Context) ([]models.Transaction, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, sender_id, receiver_id, sender_name, receiver_name, amount, status, created_at
		FROM ledger_transactions
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		var status string
		if err := rows.Scan(&tx.ID, &tx.SenderID, &tx.ReceiverID, &tx.SenderName, &tx.ReceiverName, &tx.Amount, &status, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		tx.Status = models.TransactionStatus(status)
		out = append(out, tx)
	}
	return out, rows.Err()
}
