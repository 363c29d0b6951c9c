package bank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAccount(t *testing.T) *Account {
	t.Helper()
	a, err := NewAccount(123456, "John Doe", "john@example.com", "+919812345678", 4321, DefaultStatementLimit)
	require.NoError(t, err)
	return a
}

func TestNewAccount(t *testing.T) {
	t.Run("valid pin", func(t *testing.T) {
		a := newTestAccount(t)
		assert.Equal(t, 123456, a.Number)
		assert.Equal(t, 0.0, a.Balance())
		assert.Empty(t, a.MiniStatement())
	})

	t.Run("pin out of range", func(t *testing.T) {
		for _, pin := range []int{0, 999, 10000, -4321} {
			_, err := NewAccount(123456, "John", "john@example.com", "+91", pin, DefaultStatementLimit)
			assert.ErrorIs(t, err, ErrInvalidPIN, "pin=%d", pin)
		}
	})
}

func TestAccount_ValidatePIN(t *testing.T) {
	a := newTestAccount(t)
	assert.True(t, a.ValidatePIN(4321))
	assert.False(t, a.ValidatePIN(1234))
}

func TestAccount_Deposit(t *testing.T) {
	a := newTestAccount(t)

	t.Run("valid amount", func(t *testing.T) {
		require.NoError(t, a.Deposit(250.50))
		assert.Equal(t, 250.50, a.Balance())

		stmt := a.MiniStatement()
		require.Len(t, stmt, 1)
		assert.Equal(t, KindDeposit, stmt[0].Kind)
		assert.Equal(t, 250.50, stmt[0].Amount)
		assert.False(t, stmt[0].Timestamp.IsZero())
	})

	t.Run("rejected amounts leave state untouched", func(t *testing.T) {
		for _, amt := range []float64{0, -5} {
			assert.ErrorIs(t, a.Deposit(amt), ErrInvalidAmount, "amount=%v", amt)
		}
		assert.Equal(t, 250.50, a.Balance())
		assert.Len(t, a.MiniStatement(), 1)
	})
}

func TestAccount_Withdraw(t *testing.T) {
	a := newTestAccount(t)
	require.NoError(t, a.Deposit(100))

	t.Run("insufficient balance", func(t *testing.T) {
		assert.ErrorIs(t, a.Withdraw(150), ErrInsufficientBalance)
		assert.Equal(t, 100.0, a.Balance())
		assert.Len(t, a.MiniStatement(), 1)
	})

	t.Run("invalid amount", func(t *testing.T) {
		assert.ErrorIs(t, a.Withdraw(0), ErrInvalidAmount)
		assert.ErrorIs(t, a.Withdraw(-1), ErrInvalidAmount)
		assert.Equal(t, 100.0, a.Balance())
	})

	t.Run("success", func(t *testing.T) {
		require.NoError(t, a.Withdraw(40))
		assert.Equal(t, 60.0, a.Balance())

		stmt := a.MiniStatement()
		require.Len(t, stmt, 2)
		assert.Equal(t, KindWithdraw, stmt[0].Kind)
		assert.Equal(t, 40.0, stmt[0].Amount)
	})

	t.Run("balance never goes negative", func(t *testing.T) {
		for i := 0; i < 10; i++ {
			_ = a.Withdraw(25)
		}
		assert.GreaterOrEqual(t, a.Balance(), 0.0)
	})
}

func TestAccount_ChangePIN(t *testing.T) {
	a := newTestAccount(t)

	t.Run("wrong old pin", func(t *testing.T) {
		assert.ErrorIs(t, a.ChangePIN(1111, 5678), ErrWrongPIN)
		assert.True(t, a.ValidatePIN(4321))
	})

	t.Run("malformed new pin", func(t *testing.T) {
		assert.ErrorIs(t, a.ChangePIN(4321, 99), ErrInvalidPIN)
		assert.True(t, a.ValidatePIN(4321))
	})

	t.Run("success", func(t *testing.T) {
		require.NoError(t, a.ChangePIN(4321, 5678))
		assert.True(t, a.ValidatePIN(5678))
		assert.False(t, a.ValidatePIN(4321))
	})
}

func TestAccount_ResetPIN(t *testing.T) {
	a := newTestAccount(t)

	t.Run("no old pin needed", func(t *testing.T) {
		require.NoError(t, a.ResetPIN(1234))
		assert.True(t, a.ValidatePIN(1234))
	})

	t.Run("malformed pin", func(t *testing.T) {
		assert.ErrorIs(t, a.ResetPIN(12345), ErrInvalidPIN)
		assert.True(t, a.ValidatePIN(1234))
	})
}

func TestTransactionLog_Bounded(t *testing.T) {
	a := newTestAccount(t)

	for i := 1; i <= 6; i++ {
		require.NoError(t, a.Deposit(float64(i*10)))
	}

	stmt := a.MiniStatement()
	require.Len(t, stmt, 5)

	// Most recent first; the very first deposit has been evicted.
	for i, tx := range stmt {
		assert.Equal(t, float64((6-i)*10), tx.Amount)
	}
}

func TestTransactionLog_CustomLimit(t *testing.T) {
	l := NewTransactionLog(2)
	l.Append(KindDeposit, 1)
	l.Append(KindDeposit, 2)
	l.Append(KindDeposit, 3)

	entries := l.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, 3.0, entries[0].Amount)
	assert.Equal(t, 2.0, entries[1].Amount)
}
