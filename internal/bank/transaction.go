package bank

import "time"

type TransactionKind string

const (
	KindDeposit  TransactionKind = "DEPOSIT"
	KindWithdraw TransactionKind = "WITHDRAW"
)

// Transaction is one monetary event on an account. It is created together
// with the balance mutation that produced it and never changes afterwards.
type Transaction struct {
	Kind      TransactionKind `json:"kind"`
	Amount    float64         `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
}

// DefaultStatementLimit caps how many transactions an account remembers.
const DefaultStatementLimit = 5

// TransactionLog is the bounded, most-recent-first record of monetary
// events for one account. The oldest entry is evicted on overflow.
type TransactionLog struct {
	limit   int
	entries []Transaction
}

func NewTransactionLog(limit int) *TransactionLog {
	if limit <= 0 {
		limit = DefaultStatementLimit
	}
	return &TransactionLog{limit: limit}
}

func (l *TransactionLog) Append(kind TransactionKind, amount float64) {
	l.entries = append([]Transaction{{Kind: kind, Amount: amount, Timestamp: time.Now()}}, l.entries...)
	if len(l.entries) > l.limit {
		l.entries = l.entries[:l.limit]
	}
}

// Entries returns a copy so callers cannot rewrite history.
func (l *TransactionLog) Entries() []Transaction {
	out := make([]Transaction, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *TransactionLog) Len() int { return len(l.entries) }
