package bank

import "github.com/smartatm/backend/internal/security"

// ValidPIN reports whether pin is a well-formed 4 digit credential.
func ValidPIN(pin int) bool { return pin >= 1000 && pin <= 9999 }

// Account holds one customer's identity, credential, balance and bounded
// transaction history. The PIN is stored as an argon2id digest; the
// balance never goes negative.
type Account struct {
	Number int
	Name   string
	Email  string
	Mobile string

	pinHash string
	balance float64
	log     *TransactionLog
}

func NewAccount(number int, name, email, mobile string, pin, statementLimit int) (*Account, error) {
	if !ValidPIN(pin) {
		return nil, ErrInvalidPIN
	}
	hash, err := security.HashPIN(pin)
	if err != nil {
		return nil, err
	}
	return &Account{
		Number:  number,
		Name:    name,
		Email:   email,
		Mobile:  mobile,
		pinHash: hash,
		log:     NewTransactionLog(statementLimit),
	}, nil
}

// ValidatePIN reports whether the entered PIN matches the credential.
// There is no attempt counter: a single mismatch sends the caller down
// the OTP recovery path.
func (a *Account) ValidatePIN(pin int) bool {
	return security.VerifyPIN(pin, a.pinHash)
}

func (a *Account) Deposit(amount float64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	a.balance += amount
	a.log.Append(KindDeposit, amount)
	return nil
}

func (a *Account) Withdraw(amount float64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount > a.balance {
		return ErrInsufficientBalance
	}
	a.balance -= amount
	a.log.Append(KindWithdraw, amount)
	return nil
}

func (a *Account) ChangePIN(oldPIN, newPIN int) error {
	if !a.ValidatePIN(oldPIN) {
		return ErrWrongPIN
	}
	if !ValidPIN(newPIN) {
		return ErrInvalidPIN
	}
	hash, err := security.HashPIN(newPIN)
	if err != nil {
		return err
	}
	a.pinHash = hash
	return nil
}

// ResetPIN replaces the credential without an old-PIN check. It is only
// reachable through the OTP recovery path.
func (a *Account) ResetPIN(newPIN int) error {
	if !ValidPIN(newPIN) {
		return ErrInvalidPIN
	}
	hash, err := security.HashPIN(newPIN)
	if err != nil {
		return err
	}
	a.pinHash = hash
	return nil
}

func (a *Account) Balance() float64 { return a.balance }

// MiniStatement returns the bounded history, most recent first.
func (a *Account) MiniStatement() []Transaction { return a.log.Entries() }
