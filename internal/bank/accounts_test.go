package bank

import (
	"testing"
	"time"

	"github.com/kodbank/backend/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAccountStore_Create(t *testing.T) {
	s := NewAccountStore()

	t.Run("assigns sequential ids and defaults", func(t *testing.T) {
		a, err := s.Create("John Doe", "john@example.com", "hash", dec("500"))
		require.NoError(t, err)
		b, err := s.Create("Jane Smith", "jane@example.com", "hash", dec("750.25"))
		require.NoError(t, err)

		assert.Equal(t, 1, a.ID)
		assert.Equal(t, 2, b.ID)
		assert.Equal(t, models.RoleCustomer, a.Role)
		assert.True(t, dec("750.25").Equal(b.Balance))
		assert.False(t, a.CreatedAt.IsZero())
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := s.Create("Other John", "john@example.com", "hash", dec("1"))
		assert.ErrorIs(t, err, ErrDuplicateEmail)
		assert.Len(t, s.ListAll(), 2)
	})

	t.Run("email match is case sensitive", func(t *testing.T) {
		_, err := s.Create("Loud John", "JOHN@example.com", "hash", dec("1"))
		assert.NoError(t, err)

		_, ok := s.FindByEmail(" john@example.com")
		assert.False(t, ok)
	})
}

func TestAccountStore_IDsNeverReused(t *testing.T) {
	s := NewAccountStore()
	a, _ := s.Create("A", "a@x.io", "h", dec("1"))
	s.Delete(a.ID)

	b, err := s.Create("B", "b@x.io", "h", dec("1"))
	require.NoError(t, err)
	assert.Equal(t, a.ID+1, b.ID)
}

func TestAccountStore_Seed(t *testing.T) {
	s := NewAccountStore()
	s.Seed(models.Account{ID: 4, Name: "Admin", Email: "admin@kodbank.com", Balance: dec("10"), Role: models.RoleAdmin})

	a, err := s.Create("New", "new@x.io", "h", dec("1"))
	require.NoError(t, err)
	assert.Equal(t, 5, a.ID)
}

func TestAccountStore_AdjustBalanceHasNoOverdraftCheck(t *testing.T) {
	s := NewAccountStore()
	a, _ := s.Create("A", "a@x.io", "h", dec("10"))

	require.NoError(t, s.AdjustBalance(a.ID, dec("-25.50")))
	got, _ := s.FindByID(a.ID)
	assert.True(t, dec("-15.50").Equal(got.Balance))

	assert.ErrorIs(t, s.AdjustBalance(99, dec("1")), ErrAccountNotFound)
}

func TestAccountStore_SetRole(t *testing.T) {
	s := NewAccountStore()
	a, _ := s.Create("A", "a@x.io", "h", dec("10"))

	require.NoError(t, s.SetRole(a.ID, models.RoleAdmin))
	require.NoError(t, s.SetRole(a.ID, models.RoleCustomer))
	got, _ := s.FindByID(a.ID)
	assert.Equal(t, models.RoleCustomer, got.Role)

	assert.ErrorIs(t, s.SetRole(42, models.RoleAdmin), ErrAccountNotFound)
}

func TestAccountStore_DeleteHasNoSelfProtection(t *testing.T) {
	// the store knows nothing about sessions; self-delete policy lives above it
	s := NewAccountStore()
	a, _ := s.Create("Admin", "admin@x.io", "h", dec("10"))
	require.NoError(t, s.SetRole(a.ID, models.RoleAdmin))

	s.Delete(a.ID)
	_, ok := s.FindByID(a.ID)
	assert.False(t, ok)

	// deleting again is harmless
	s.Delete(a.ID)
}

func TestAccountStore_ListAllIsRedactedAndOrdered(t *testing.T) {
	s := NewAccountStore()
	s.Seed(
		models.Account{ID: 3, Name: "C", Email: "c@x.io", Credential: "secret"},
		models.Account{ID: 1, Name: "A", Email: "a@x.io", Credential: "secret"},
		models.Account{ID: 2, Name: "B", Email: "b@x.io", Credential: "secret"},
	)

	all := s.ListAll()
	require.Len(t, all, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{all[0].ID, all[1].ID, all[2].ID})
}

func TestAccountStore_FindReturnsCopies(t *testing.T) {
	s := NewAccountStore()
	a, _ := s.Create("A", "a@x.io", "h", dec("10"))

	a.Balance = dec("999999")
	a.Name = "Mallory"

	got, _ := s.FindByID(a.ID)
	assert.Equal(t, "A", got.Name)
	assert.True(t, dec("10").Equal(got.Balance))
}

func TestAccountStore_MoveIsAtomic(t *testing.T) {
	s := NewAccountStore()
	a, _ := s.Create("A", "a@x.io", "h", dec("100"))
	b, _ := s.Create("B", "b@x.io", "h", dec("0"))

	require.NoError(t, s.Move(a.ID, b.ID, dec("40")))

	assert.ErrorIs(t, s.Move(a.ID, 77, dec("1")), ErrReceiverNotFound)
	assert.ErrorIs(t, s.Move(77, b.ID, dec("1")), ErrSenderNotFound)

	gotA, _ := s.FindByID(a.ID)
	gotB, _ := s.FindByID(b.ID)
	assert.True(t, dec("60").Equal(gotA.Balance))
	assert.True(t, dec("40").Equal(gotB.Balance))
}

func TestAccountStore_DeleteWaitsForPairLock(t *testing.T) {
	s := NewAccountStore()
	a, _ := s.Create("A", "a@x.io", "h", dec("100"))
	b, _ := s.Create("B", "b@x.io", "h", dec("0"))

	unlock := s.LockPair(b.ID, a.ID)

	deleted := make(chan struct{})
	go func() {
		s.Delete(a.ID)
		close(deleted)
	}()

	select {
	case <-deleted:
		t.Fatal("delete finished while the account was locked")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	select {
	case <-deleted:
	case <-time.After(time.Second):
		t.Fatal("delete did not finish after unlock")
	}
	_, ok := s.FindByID(a.ID)
	assert.False(t, ok)
}
