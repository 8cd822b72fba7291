package bank

import (
	"context"
	"errors"
	"testing"

	"github.com/kodbank/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockArchive struct {
	mock.Mock
}

func (m *MockArchive) Record(ctx context.Context, tx models.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func TestLedger_AppendAssignsIncreasingIDs(t *testing.T) {
	l := NewLedger(nil)
	ctx := context.Background()

	first, err := l.Append(ctx, models.Transaction{SenderID: 1, ReceiverID: 2, Amount: dec("1"), Status: models.TransactionSuccess})
	require.NoError(t, err)
	second, err := l.Append(ctx, models.Transaction{SenderID: 2, ReceiverID: 1, Amount: dec("2"), Status: models.TransactionFailed})
	require.NoError(t, err)

	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 2, second.ID)
	assert.False(t, first.CreatedAt.IsZero())
}

func TestLedger_ListAllIsReverseAppendOrder(t *testing.T) {
	l := NewLedger(nil)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := l.Append(ctx, models.Transaction{SenderID: 1, ReceiverID: 2, Amount: dec("1")})
		require.NoError(t, err)
	}

	all := l.ListAll()
	require.Len(t, all, 3)
	assert.Equal(t, []int{3, 2, 1}, []int{all[0].ID, all[1].ID, all[2].ID})
}

func TestLedger_ForAccount(t *testing.T) {
	l := NewLedger(nil)
	ctx := context.Background()
	l.Append(ctx, models.Transaction{SenderID: 1, ReceiverID: 2, Amount: dec("1")})
	l.Append(ctx, models.Transaction{SenderID: 3, ReceiverID: 4, Amount: dec("1")})
	l.Append(ctx, models.Transaction{SenderID: 2, ReceiverID: 1, Amount: dec("1")})

	mine := l.ForAccount(1)
	require.Len(t, mine, 2)
	assert.Equal(t, 3, mine[0].ID)
	assert.Equal(t, 1, mine[1].ID)
}

func TestLedger_SeedContinuesCounter(t *testing.T) {
	l := NewLedger(nil)
	require.NoError(t, l.Seed(models.Transaction{ID: 1}, models.Transaction{ID: 4}))

	next, err := l.Append(context.Background(), models.Transaction{})
	require.NoError(t, err)
	assert.Equal(t, 5, next.ID)
}

func TestLedger_SeedRejectsTakenIDs(t *testing.T) {
	tests := []struct {
		name    string
		records []models.Transaction
	}{
		{"overlaps held ids", []models.Transaction{{ID: 2}, {ID: 5}}},
		{"repeats the last held id", []models.Transaction{{ID: 4}}},
		{"not increasing", []models.Transaction{{ID: 6}, {ID: 6}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLedger(nil)
			require.NoError(t, l.Seed(models.Transaction{ID: 1}, models.Transaction{ID: 4}))

			err := l.Seed(tt.records...)
			assert.ErrorIs(t, err, ErrTransactionIDConflict)
			assert.Equal(t, 2, l.Len())

			seen := make(map[int]bool)
			for _, tx := range l.ListAll() {
				assert.False(t, seen[tx.ID], "duplicate id %d", tx.ID)
				seen[tx.ID] = true
			}
		})
	}
}

func TestLedger_Archive(t *testing.T) {
	ctx := context.Background()

	t.Run("writes through", func(t *testing.T) {
		archive := &MockArchive{}
		archive.On("Record", ctx, mock.MatchedBy(func(tx models.Transaction) bool { return tx.ID == 1 })).Return(nil)

		l := NewLedger(archive)
		_, err := l.Append(ctx, models.Transaction{SenderID: 1, ReceiverID: 2, Amount: dec("5")})
		require.NoError(t, err)
		archive.AssertExpectations(t)
	})

	t.Run("archive failure stores nothing", func(t *testing.T) {
		archive := &MockArchive{}
		archive.On("Record", ctx, mock.Anything).Return(errors.New("connection refused")).Once()
		archive.On("Record", ctx, mock.Anything).Return(nil)

		l := NewLedger(archive)
		_, err := l.Append(ctx, models.Transaction{Amount: dec("5")})
		assert.ErrorIs(t, err, ErrStorageUnavailable)
		assert.Empty(t, l.ListAll())

		// the failed attempt did not burn an id
		tx, err := l.Append(ctx, models.Transaction{Amount: dec("5")})
		require.NoError(t, err)
		assert.Equal(t, 1, tx.ID)
	})
}
