package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/kodbank/backend/internal/audit"
	"github.com/kodbank/backend/internal/auth"
	"github.com/kodbank/backend/internal/bank"
	"github.com/kodbank/backend/internal/models"
	"github.com/shopspring/decimal"
)

// BankingOptions carries the tunables of BankingService.
type BankingOptions struct {
	Policy auth.SessionPolicy
	// UnlockTTL is how long a passed password re-check keeps the balance visible.
	UnlockTTL time.Duration
}

// BankingService is the capability surface the HTTP layer talks to. It wires
// the account store, ledger, token registry and transfer protocol together
// and applies the policies that sit above them.
type BankingService struct {
	accounts  *bank.AccountStore
	ledger    *bank.Ledger
	tokens    *auth.TokenRegistry
	hasher    *auth.Hasher
	slots     auth.SlotStore
	transfers *bank.TransferProtocol
	audit     *audit.AuditLogger
	opts      BankingOptions
	now       func() time.Time
}

func NewBankingService(
	accounts *bank.AccountStore,
	ledger *bank.Ledger,
	tokens *auth.TokenRegistry,
	hasher *auth.Hasher,
	slots auth.SlotStore,
	auditLogger *audit.AuditLogger,
	opts BankingOptions,
) *BankingService {
	if auditLogger == nil {
		auditLogger = audit.NewAuditLogger()
	}
	if opts.UnlockTTL <= 0 {
		opts.UnlockTTL = 5 * time.Minute
	}
	return &BankingService{
		accounts:  accounts,
		ledger:    ledger,
		tokens:    tokens,
		hasher:    hasher,
		slots:     slots,
		transfers: bank.NewTransferProtocol(accounts, ledger, auditLogger),
		audit:     auditLogger,
		opts:      opts,
		now:       time.Now,
	}
}

// Session returns the session manager bound to device's slot, reloaded from
// whatever the slot holds.
func (s *BankingService) Session(ctx context.Context, device string) (*auth.SessionManager, error) {
	session := auth.NewSessionManager(s.accounts, s.tokens, s.hasher, s.slots.Slot(device), s.opts.Policy)
	if err := session.Restore(ctx); err != nil {
		return nil, err
	}
	return session, nil
}

// Authorize resolves a bearer token into the account behind it. The token must
// still be registered and must be the one the device's session holds. The
// account is re-read so role changes and deletions apply immediately.
func (s *BankingService) Authorize(session *auth.SessionManager, bearer string) (models.Account, error) {
	tok, err := s.tokens.Validate(bearer)
	if err != nil {
		return models.Account{}, bank.ErrNotAuthenticated
	}
	if session.Token() != bearer {
		return models.Account{}, bank.ErrNotAuthenticated
	}
	account, ok := s.accounts.FindByID(tok.AccountID)
	if !ok {
		return models.Account{}, bank.ErrNotAuthenticated
	}
	return account, nil
}

func (s *BankingService) Login(ctx context.Context, session *auth.SessionManager, email, credential string) (models.PublicAccount, string, error) {
	return session.Login(ctx, email, credential)
}

func (s *BankingService) Signup(ctx context.Context, session *auth.SessionManager, name, email, credential string, initialDeposit decimal.Decimal) (models.PublicAccount, string, error) {
	return session.Signup(ctx, name, email, credential, initialDeposit)
}

func (s *BankingService) Logout(ctx context.Context, session *auth.SessionManager) error {
	return session.Logout(ctx)
}

// VerifyCredential re-checks the password of the signed in account and, on a
// match, unlocks the balance for the configured window.
func (s *BankingService) VerifyCredential(ctx context.Context, session *auth.SessionManager, candidate string) (bool, error) {
	if !session.VerifyCredential(candidate) {
		return false, nil
	}
	if err := session.GrantBalanceUnlock(ctx, s.opts.UnlockTTL); err != nil {
		return false, err
	}
	return true, nil
}

// RefreshBalance returns the current balance once the password re-check has
// passed.
func (s *BankingService) RefreshBalance(ctx context.Context, session *auth.SessionManager) (decimal.Decimal, error) {
	if !session.Authenticated() {
		return decimal.Zero, bank.ErrNotAuthenticated
	}
	unlocked, err := session.BalanceUnlocked(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if !unlocked {
		return decimal.Zero, bank.ErrVerificationRequired
	}
	return session.RefreshBalance(ctx)
}

// Transfer sends money from the session's account and refreshes the cached
// balance. A Failed record is returned alongside ErrInsufficientBalance.
func (s *BankingService) Transfer(ctx context.Context, session *auth.SessionManager, receiverEmail string, amount decimal.Decimal) (models.Transaction, error) {
	user, ok := session.Current()
	if !ok {
		return models.Transaction{}, bank.ErrNotAuthenticated
	}

	tx, err := s.transfers.Transfer(ctx, user.ID, receiverEmail, amount)
	if err != nil && !errors.Is(err, bank.ErrInsufficientBalance) {
		return tx, err
	}

	if err == nil {
		if account, found := s.accounts.FindByID(user.ID); found {
			if uerr := session.UpdateBalance(ctx, account.Balance); uerr != nil {
				log.Printf("[TRANSFER] Failed to refresh cached balance for %d: %v", user.ID, uerr)
			}
		}
	}
	return tx, err
}

func (s *BankingService) ListAccounts() []models.PublicAccount {
	return s.accounts.ListAll()
}

func (s *BankingService) ListTransactions() []models.Transaction {
	return s.ledger.ListAll()
}

// History is the transaction list a viewer is allowed to see: their own
// entries for customers, every entry for managers and admins.
func (s *BankingService) History(viewer models.Account, q bank.HistoryQuery) bank.HistoryPage {
	var txns []models.Transaction
	if viewer.Role.Can(models.CapManagerPanel) {
		txns = s.ledger.ListAll()
	} else {
		txns = s.ledger.ForAccount(viewer.ID)
	}
	return bank.FilterHistory(txns, q)
}

func (s *BankingService) SearchAccounts(q string) []models.PublicAccount {
	return bank.SearchAccounts(s.accounts.ListAll(), q)
}

// DeleteAccount removes an account. Admins cannot delete themselves.
func (s *BankingService) DeleteAccount(actorID, id int) error {
	if actorID == id {
		return bank.ErrSelfDelete
	}
	if _, ok := s.accounts.FindByID(id); !ok {
		return bank.ErrAccountNotFound
	}

	s.accounts.Delete(id)
	s.audit.LogOperation(actorID, id, "DELETE_ACCOUNT", "account removed")
	log.Printf("[ADMIN] Account %d deleted by %d", id, actorID)
	return nil
}

// PromoteAccount overwrites the role of an account.
func (s *BankingService) PromoteAccount(actorID, id int, role models.Role) error {
	if !role.Valid() {
		return bank.ErrInvalidRole
	}
	if err := s.accounts.SetRole(id, role); err != nil {
		return err
	}

	s.audit.LogOperation(actorID, id, "SET_ROLE", string(role))
	log.Printf("[ADMIN] Account %d set to role %s by %d", id, role, actorID)
	return nil
}

func (s *BankingService) ListTokens() []models.Token {
	return s.tokens.List()
}

func (s *BankingService) RevokeToken(actorID, id int) {
	s.tokens.Revoke(id)
	s.audit.LogOperation(actorID, 0, "REVOKE_TOKEN", fmt.Sprintf("token %d", id))
	log.Printf("[ADMIN] Token %d revoked by %d", id, actorID)
}

func (s *BankingService) ManagerStats() bank.ManagerStats {
	return bank.ComputeManagerStats(s.accounts.ListAll(), s.ledger.ListAll(), s.now())
}

func (s *BankingService) AdminStats() bank.AdminStats {
	return bank.ComputeAdminStats(s.accounts.ListAll(), s.ledger.ListAll(), len(s.tokens.List()))
}
