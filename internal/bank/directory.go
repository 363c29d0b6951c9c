package bank

import "sync"

const (
	accountNumberMin  = 100000
	accountNumberSpan = 900000
)

// Directory owns every account, keyed by account number. All access goes
// through the lock so concurrent sessions against different accounts stay
// safe.
type Directory struct {
	mu             sync.RWMutex
	rand           Rand
	statementLimit int
	accounts       map[int]*Account
}

func NewDirectory(r Rand, statementLimit int) *Directory {
	return &Directory{
		rand:           r,
		statementLimit: statementLimit,
		accounts:       make(map[int]*Account),
	}
}

// Create allocates a unique account number and stores the new account.
func (d *Directory) Create(name, email, mobile string, pin int) (*Account, error) {
	if !ValidPIN(pin) {
		return nil, ErrInvalidPIN
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	a, err := NewAccount(d.allocateNumber(), name, email, mobile, pin, d.statementLimit)
	if err != nil {
		return nil, err
	}
	d.accounts[a.Number] = a
	return a, nil
}

// allocateNumber redraws until the number is unused so a later account
// can never silently overwrite an earlier one.
func (d *Directory) allocateNumber() int {
	for {
		n := accountNumberMin + d.rand.Intn(accountNumberSpan)
		if _, taken := d.accounts[n]; !taken {
			return n
		}
	}
}

func (d *Directory) Lookup(number int) (*Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.accounts[number]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return a, nil
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.accounts)
}
