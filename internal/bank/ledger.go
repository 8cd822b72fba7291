package bank

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kodbank/backend/internal/models"
)

// Archive persists ledger entries outside the process.
type Archive interface {
	Record(ctx context.Context, tx models.Transaction) error
}

// Ledger is the append-only log of transfer attempts.
type Ledger struct {
	mu      sync.RWMutex
	nextID  int
	entries []models.Transaction
	archive Archive
	now     func() time.Time
}

func NewLedger(archive Archive) *Ledger {
	return &Ledger{
		nextID:  1,
		archive: archive,
		now:     time.Now,
	}
}

// Append assigns the next transaction id and stores the record. With an
// archive attached the record is written there first; if that fails nothing
// is stored and the id is not consumed.
func (l *Ledger) Append(ctx context.Context, record models.Transaction) (models.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	record.ID = l.nextID
	if record.CreatedAt.IsZero() {
		record.CreatedAt = l.now().UTC()
	}

	if l.archive != nil {
		if err := l.archive.Record(ctx, record); err != nil {
			return models.Transaction{}, fmt.Errorf("%w: archive transaction %d: %v", ErrStorageUnavailable, record.ID, err)
		}
	}

	l.nextID++
	l.entries = append(l.entries, record)
	return record, nil
}

// ErrTransactionIDConflict is returned by Seed when a record would not sort
// after everything the ledger already holds.
var ErrTransactionIDConflict = errors.New("transaction id already taken")

// Seed loads historical records verbatim, in append order. Ids must be
// strictly increasing and above every id already held; otherwise nothing is
// loaded.
func (l *Ledger) Seed(records ...models.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.nextID
	for _, r := range records {
		if r.ID < next {
			return fmt.Errorf("%w: %d", ErrTransactionIDConflict, r.ID)
		}
		next = r.ID + 1
	}

	l.entries = append(l.entries, records...)
	l.nextID = next
	return nil
}

// Len reports how many entries the ledger holds.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// ListAll returns every entry, most recently appended first.
func (l *Ledger) ListAll() []models.Transaction {
	return l.filter(func(models.Transaction) bool { return true })
}

// ForAccount returns the entries where the account is sender or receiver,
// most recently appended first.
func (l *Ledger) ForAccount(accountID int) []models.Transaction {
	return l.filter(func(t models.Transaction) bool { return t.Involves(accountID) })
}

func (l *Ledger) filter(keep func(models.Transaction) bool) []models.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.Transaction, 0, len(l.entries))
	for i := len(l.entries) - 1; i >= 0; i-- {
		if keep(l.entries[i]) {
			out = append(out, l.entries[i])
		}
	}
	return out
}
