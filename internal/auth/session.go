package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kodbank/backend/internal/bank"
	"github.com/kodbank/backend/internal/models"
	"github.com/shopspring/decimal"
)

// Slot keys. The user projection and the token are always written and
// cleared together.
const (
	UserKey   = "kodbank_user"
	TokenKey  = "kodbank_token"
	UnlockKey = "kodbank_unlock"
)

// SessionPolicy makes the coupling between logout and token revocation explicit.
type SessionPolicy struct {
	// RevokeOnLogout also removes the session's token from the registry.
	// Off by default: logout only forgets the token locally.
	RevokeOnLogout bool
}

// SessionManager owns the current user and token of one device.
// It is either Anonymous (no user, no token) or Authenticated (both set and
// mirrored to the slot).
type SessionManager struct {
	mu       sync.Mutex
	accounts *bank.AccountStore
	tokens   *TokenRegistry
	hasher   *Hasher
	slot     Slot
	policy   SessionPolicy

	user  *models.PublicAccount
	token string
}

func NewSessionManager(accounts *bank.AccountStore, tokens *TokenRegistry, hasher *Hasher, slot Slot, policy SessionPolicy) *SessionManager {
	return &SessionManager{
		accounts: accounts,
		tokens:   tokens,
		hasher:   hasher,
		slot:     slot,
		policy:   policy,
	}
}

// Login authenticates by email and credential. Unknown emails and wrong
// credentials fail the same way.
func (s *SessionManager) Login(ctx context.Context, email, credential string) (models.PublicAccount, string, error) {
	account, ok := s.accounts.FindByEmail(email)
	if !ok || !s.hasher.Verify(credential, account.Credential) {
		log.Printf("[SESSION] Login rejected for email: %s", email)
		return models.PublicAccount{}, "", bank.ErrInvalidCredentials
	}
	return s.establish(ctx, account)
}

// Signup creates a Customer account and logs it in.
func (s *SessionManager) Signup(ctx context.Context, name, email, credential string, initialDeposit decimal.Decimal) (models.PublicAccount, string, error) {
	if initialDeposit.IsNegative() || !initialDeposit.Equal(initialDeposit.Round(2)) {
		return models.PublicAccount{}, "", bank.ErrInvalidAmount
	}
	if _, exists := s.accounts.FindByEmail(email); exists {
		return models.PublicAccount{}, "", bank.ErrDuplicateEmail
	}

	hashed, err := s.hasher.Hash(credential)
	if err != nil {
		return models.PublicAccount{}, "", fmt.Errorf("hash credential: %w", err)
	}

	account, err := s.accounts.Create(name, email, hashed, initialDeposit)
	if err != nil {
		return models.PublicAccount{}, "", err
	}
	log.Printf("[SESSION] Account created - ID: %d, Email: %s", account.ID, account.Email)

	return s.establish(ctx, account)
}

func (s *SessionManager) establish(ctx context.Context, account models.Account) (models.PublicAccount, string, error) {
	tok, err := s.tokens.Issue(account.ID, account.Name)
	if err != nil {
		return models.PublicAccount{}, "", err
	}

	public := account.Public()
	if err := s.persist(ctx, public, tok.Value); err != nil {
		s.tokens.Revoke(tok.ID)
		return models.PublicAccount{}, "", err
	}

	s.mu.Lock()
	s.user = &public
	s.token = tok.Value
	s.mu.Unlock()

	log.Printf("[SESSION] Authenticated account %d with token %d", account.ID, tok.ID)
	return public, tok.Value, nil
}

func (s *SessionManager) persist(ctx context.Context, user models.PublicAccount, token string) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}
	return s.slot.SetAll(ctx, map[string]string{
		UserKey:  string(data),
		TokenKey: token,
	}, 0)
}

// Logout returns to Anonymous and clears the slot.
func (s *SessionManager) Logout(ctx context.Context) error {
	s.mu.Lock()
	token := s.token
	s.user = nil
	s.token = ""
	s.mu.Unlock()

	if s.policy.RevokeOnLogout && token != "" {
		if tok, err := s.tokens.Validate(token); err == nil {
			s.tokens.Revoke(tok.ID)
		}
	}

	return s.slot.Delete(ctx, UserKey, TokenKey, UnlockKey)
}

// Restore reloads the session from the slot. A half-written or unreadable
// slot leaves the manager Anonymous.
func (s *SessionManager) Restore(ctx context.Context) error {
	rawUser, okUser, err := s.slot.Get(ctx, UserKey)
	if err != nil {
		return err
	}
	token, okToken, err := s.slot.Get(ctx, TokenKey)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.user, s.token = nil, ""

	if !okUser || !okToken {
		return nil
	}

	var user models.PublicAccount
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		log.Printf("[SESSION] Discarding unreadable session user: %v", err)
		return nil
	}
	s.user = &user
	s.token = token
	return nil
}

// Current returns the cached user projection.
func (s *SessionManager) Current() (models.PublicAccount, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil || s.token == "" {
		return models.PublicAccount{}, false
	}
	return *s.user, true
}

func (s *SessionManager) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *SessionManager) Authenticated() bool {
	_, ok := s.Current()
	return ok
}

// VerifyCredential is the step-up check before revealing the balance. It
// never errors: anything other than a match is false.
func (s *SessionManager) VerifyCredential(candidate string) bool {
	user, ok := s.Current()
	if !ok {
		return false
	}
	account, ok := s.accounts.FindByID(user.ID)
	if !ok {
		return false
	}
	return s.hasher.Verify(candidate, account.Credential)
}

// RefreshBalance re-reads the balance from the account store and updates
// the cached projection.
func (s *SessionManager) RefreshBalance(ctx context.Context) (decimal.Decimal, error) {
	user, ok := s.Current()
	if !ok {
		return decimal.Zero, bank.ErrNotAuthenticated
	}
	account, ok := s.accounts.FindByID(user.ID)
	if !ok {
		return decimal.Zero, bank.ErrAccountNotFound
	}

	if err := s.replaceUser(ctx, account.Public()); err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

// UpdateBalance stores a balance already known to the caller, typically
// right after a transfer.
func (s *SessionManager) UpdateBalance(ctx context.Context, balance decimal.Decimal) error {
	user, ok := s.Current()
	if !ok {
		return bank.ErrNotAuthenticated
	}
	user.Balance = balance
	return s.replaceUser(ctx, user)
}

func (s *SessionManager) replaceUser(ctx context.Context, user models.PublicAccount) error {
	token := s.Token()
	if err := s.persist(ctx, user, token); err != nil {
		return err
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	return nil
}

// GrantBalanceUnlock records a passed step-up check for ttl.
func (s *SessionManager) GrantBalanceUnlock(ctx context.Context, ttl time.Duration) error {
	if !s.Authenticated() {
		return bank.ErrNotAuthenticated
	}
	return s.slot.SetAll(ctx, map[string]string{UnlockKey: "1"}, ttl)
}

// BalanceUnlocked reports whether a step-up check passed recently.
func (s *SessionManager) BalanceUnlocked(ctx context.Context) (bool, error) {
	if !s.Authenticated() {
		return false, nil
	}
	_, ok, err := s.slot.Get(ctx, UnlockKey)
	return ok, err
}
