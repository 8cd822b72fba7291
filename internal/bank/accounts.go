package bank

import (
	"sort"
	"sync"
	"time"

	"github.com/kodbank/backend/internal/models"
	"github.com/shopspring/decimal"
)

// AccountStore holds every account record in memory.
//
// Lookups return copies; the only pointers to live records stay inside the
// store. Balance mutation is limited to AdjustBalance and Move, which do no
// validation of their own: the transfer protocol owns overdraft checks.
type AccountStore struct {
	mu     sync.RWMutex
	nextID int
	byID   map[int]*models.Account
	locks  map[int]*sync.Mutex
	now    func() time.Time
}

func NewAccountStore() *AccountStore {
	return &AccountStore{
		nextID: 1,
		byID:   make(map[int]*models.Account),
		locks:  make(map[int]*sync.Mutex),
		now:    time.Now,
	}
}

// FindByEmail matches the email exactly, without case or whitespace folding.
func (s *AccountStore) FindByEmail(email string) (models.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.byID {
		if a.Email == email {
			return *a, true
		}
	}
	return models.Account{}, false
}

func (s *AccountStore) FindByID(id int) (models.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byID[id]
	if !ok {
		return models.Account{}, false
	}
	return *a, true
}

// Create registers a new Customer account under the next sequential id.
func (s *AccountStore) Create(name, email, credential string, initialBalance decimal.Decimal) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.byID {
		if a.Email == email {
			return models.Account{}, ErrDuplicateEmail
		}
	}

	a := &models.Account{
		ID:         s.nextID,
		Name:       name,
		Email:      email,
		Credential: credential,
		Balance:    initialBalance,
		Role:       models.RoleCustomer,
		CreatedAt:  s.now().UTC(),
	}
	s.nextID++
	s.byID[a.ID] = a
	s.locks[a.ID] = &sync.Mutex{}
	return *a, nil
}

// Seed inserts fully formed records, keeping their ids. The id counter moves
// past the highest seeded id so it never hands one out twice.
func (s *AccountStore) Seed(accounts ...models.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range accounts {
		a := accounts[i]
		s.byID[a.ID] = &a
		if _, ok := s.locks[a.ID]; !ok {
			s.locks[a.ID] = &sync.Mutex{}
		}
		if a.ID >= s.nextID {
			s.nextID = a.ID + 1
		}
	}
}

func (s *AccountStore) AdjustBalance(id int, delta decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[id]
	if !ok {
		return ErrAccountNotFound
	}
	a.Balance = a.Balance.Add(delta)
	return nil
}

// Move debits one account and credits another in a single critical section,
// so no reader observes half of it.
func (s *AccountStore) Move(fromID, toID int, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, ok := s.byID[fromID]
	if !ok {
		return ErrSenderNotFound
	}
	to, ok := s.byID[toID]
	if !ok {
		return ErrReceiverNotFound
	}
	from.Balance = from.Balance.Sub(amount)
	to.Balance = to.Balance.Add(amount)
	return nil
}

func (s *AccountStore) SetRole(id int, role models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[id]
	if !ok {
		return ErrAccountNotFound
	}
	a.Role = role
	return nil
}

// Delete removes the record. Tokens and ledger entries referring to it are
// left alone; the ledger carries its own copy of party names.
func (s *AccountStore) Delete(id int) {
	s.mu.RLock()
	l, ok := s.locks[id]
	s.mu.RUnlock()
	if !ok {
		return
	}

	// wait out any transfer holding this account
	l.Lock()
	defer l.Unlock()

	s.mu.Lock()
	delete(s.byID, id)
	s.mu.Unlock()
}

// ListAll returns redacted projections ordered by id, taken under one read lock.
func (s *AccountStore) ListAll() []models.PublicAccount {
	s.mu.RLock()
	out := make([]models.PublicAccount, 0, len(s.byID))
	for _, a := range s.byID {
		out = append(out, a.Public())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LockPair takes the per-account locks of both ids in ascending order and
// returns the matching unlock. Two transfers running in opposite directions
// between the same accounts therefore cannot deadlock.
func (s *AccountStore) LockPair(a, b int) (unlock func()) {
	first, second := a, b
	if first > second {
		first, second = second, first
	}

	s.mu.RLock()
	l1 := s.locks[first]
	l2 := s.locks[second]
	s.mu.RUnlock()

	if l1 != nil {
		l1.Lock()
	}
	if l2 != nil && second != first {
		l2.Lock()
	}

	return func() {
		if l2 != nil && second != first {
			l2.Unlock()
		}
		if l1 != nil {
			l1.Unlock()
		}
	}
}
