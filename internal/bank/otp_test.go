package bank

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIssueChallenge(t *testing.T) {
	clk := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}

	t.Run("code is six digits", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			c := IssueChallenge(CryptoRand(), clk, DefaultOTPTTL)
			assert.GreaterOrEqual(t, c.Code(), 100000)
			assert.LessOrEqual(t, c.Code(), 999999)
		}
	})

	t.Run("zero ttl falls back to default", func(t *testing.T) {
		c := IssueChallenge(CryptoRand(), clk, 0)
		assert.Equal(t, DefaultOTPTTL, c.TTL())
	})
}

func TestChallenge_Verify(t *testing.T) {
	clk := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	c := IssueChallenge(&seqRand{vals: []int{424242}}, clk, DefaultOTPTTL)

	t.Run("correct code just inside the window", func(t *testing.T) {
		clk.Advance(119 * time.Second)
		assert.NoError(t, c.Verify(c.Code(), clk))
	})

	t.Run("correct code after expiry", func(t *testing.T) {
		clk.Advance(2 * time.Second) // now 121s after issue
		assert.ErrorIs(t, c.Verify(c.Code(), clk), ErrOTPExpired)
	})

	t.Run("mismatch reported before expiry", func(t *testing.T) {
		// Still past the ttl: the wrong code must surface as a
		// mismatch, not as expiry.
		assert.ErrorIs(t, c.Verify(c.Code()+1, clk), ErrInvalidOTP)
	})

	t.Run("wrong code inside the window", func(t *testing.T) {
		fresh := IssueChallenge(CryptoRand(), clk, DefaultOTPTTL)
		assert.ErrorIs(t, fresh.Verify(fresh.Code()-1, clk), ErrInvalidOTP)
	})
}
