package bank

import "time"

// DefaultOTPTTL is how long an issued code stays valid.
const DefaultOTPTTL = 120 * time.Second

const (
	otpMin  = 100000
	otpSpan = 900000
)

// Challenge is a short-lived, single-use 6 digit code bound to its issue
// instant. Validity is computed on demand at verification time; it is
// never stored as a flag and there is no background expiry sweep.
type Challenge struct {
	code     int
	issuedAt time.Time
	ttl      time.Duration
}

// IssueChallenge draws a fresh code and records the issue instant.
func IssueChallenge(r Rand, clock Clock, ttl time.Duration) *Challenge {
	if ttl <= 0 {
		ttl = DefaultOTPTTL
	}
	return &Challenge{
		code:     otpMin + r.Intn(otpSpan),
		issuedAt: clock.Now(),
		ttl:      ttl,
	}
}

// Code exposes the issued code so it can be delivered to the account
// holder's notification channel.
func (c *Challenge) Code() int { return c.code }

// TTL reports the challenge lifetime.
func (c *Challenge) TTL() time.Duration { return c.ttl }

// Verify checks the submitted code. A mismatch is reported before expiry,
// even when the correct code arrives late.
func (c *Challenge) Verify(code int, clock Clock) error {
	if code != c.code {
		return ErrInvalidOTP
	}
	if clock.Now().Sub(c.issuedAt) > c.ttl {
		return ErrOTPExpired
	}
	return nil
}
