package bank

import (
	cryptorand "crypto/rand"
	"math/big"
	"time"
)

// Clock supplies the current instant. OTP validity is a pure function of
// elapsed time since issuance, so tests substitute a fixed clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by the wall clock.
func SystemClock() Clock { return systemClock{} }

// Rand draws uniform integers for account number allocation and OTP codes.
type Rand interface {
	Intn(n int) int
}

type cryptoRand struct{}

func (cryptoRand) Intn(n int) int {
	v, _ := cryptorand.Int(cryptorand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// CryptoRand returns a Rand backed by crypto/rand.
func CryptoRand() Rand { return cryptoRand{} }
