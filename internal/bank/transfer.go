package bank

import (
	"context"
	"log"

	"github.com/kodbank/backend/internal/audit"
	"github.com/kodbank/backend/internal/models"
	"github.com/shopspring/decimal"
)

// TransferProtocol moves money between two accounts and records every
// attempt that gets as far as the balance check.
type TransferProtocol struct {
	accounts *AccountStore
	ledger   *Ledger
	audit    *audit.AuditLogger
}

func NewTransferProtocol(accounts *AccountStore, ledger *Ledger, auditLogger *audit.AuditLogger) *TransferProtocol {
	if auditLogger == nil {
		auditLogger = audit.NewAuditLogger()
	}
	return &TransferProtocol{
		accounts: accounts,
		ledger:   ledger,
		audit:    auditLogger,
	}
}

// ValidAmount reports whether amount is strictly positive with at most two
// decimal places.
func ValidAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.Equal(amount.Round(2))
}

// Transfer sends amount from the session's account to the account registered
// under receiverEmail.
//
// Rejections for a missing party, a self transfer or a bad amount leave no
// trace. An insufficient balance appends a Failed record and returns
// ErrInsufficientBalance. On success the Success record is appended before
// balances move, so a failing archive leaves balances untouched.
func (p *TransferProtocol) Transfer(ctx context.Context, senderID int, receiverEmail string, amount decimal.Decimal) (models.Transaction, error) {
	if senderID <= 0 {
		return models.Transaction{}, ErrNotAuthenticated
	}
	if !ValidAmount(amount) {
		return models.Transaction{}, ErrInvalidAmount
	}

	sender, ok := p.accounts.FindByID(senderID)
	if !ok {
		return models.Transaction{}, ErrSenderNotFound
	}
	receiver, ok := p.accounts.FindByEmail(receiverEmail)
	if !ok {
		return models.Transaction{}, ErrReceiverNotFound
	}
	if sender.Email == receiverEmail {
		return models.Transaction{}, ErrSelfTransfer
	}

	unlock := p.accounts.LockPair(sender.ID, receiver.ID)
	defer unlock()

	// re-read under the pair lock; balances may have moved since the lookup
	if sender, ok = p.accounts.FindByID(sender.ID); !ok {
		return models.Transaction{}, ErrSenderNotFound
	}
	if receiver, ok = p.accounts.FindByID(receiver.ID); !ok {
		return models.Transaction{}, ErrReceiverNotFound
	}

	record := models.Transaction{
		SenderID:     sender.ID,
		ReceiverID:   receiver.ID,
		SenderName:   sender.Name,
		ReceiverName: receiver.Name,
		Amount:       amount,
	}

	if sender.Balance.LessThan(amount) {
		record.Status = models.TransactionFailed
		failed, err := p.ledger.Append(ctx, record)
		if err != nil {
			p.audit.LogError(0, sender.ID, err)
			return models.Transaction{}, err
		}
		log.Printf("[TRANSFER] Insufficient balance - txn %d, sender %d, amount %s", failed.ID, sender.ID, amount)
		p.audit.LogTransfer(failed.ID, sender.ID, receiver.ID, amount, string(failed.Status))
		return failed, ErrInsufficientBalance
	}

	record.Status = models.TransactionSuccess
	done, err := p.ledger.Append(ctx, record)
	if err != nil {
		p.audit.LogError(0, sender.ID, err)
		return models.Transaction{}, err
	}

	if err := p.accounts.Move(sender.ID, receiver.ID, amount); err != nil {
		// unreachable while the pair lock is held: Delete waits on it
		p.audit.LogError(done.ID, sender.ID, err)
		return models.Transaction{}, err
	}

	log.Printf("[TRANSFER] Transfer completed - txn %d, %d -> %d, amount %s", done.ID, sender.ID, receiver.ID, amount)
	p.audit.LogTransfer(done.ID, sender.ID, receiver.ID, amount, string(done.Status))
	return done, nil
}
