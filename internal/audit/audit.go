// Package audit emits one structured JSON line per account operation.
package audit

import (
	"encoding/json"
	"log"
	"time"

	"github.com/smartatm/backend/internal/notify"
)

type Event struct {
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"event_type"`
	Account   string    `json:"account"`
	Amount    float64   `json:"amount,omitempty"`
	Status    string    `json:"status"`
	Details   any       `json:"details,omitempty"`
}

type Logger struct{}

func NewLogger() *Logger { return &Logger{} }

// LogOperation records a successful account operation. Account numbers
// are masked before they reach the log.
func (a *Logger) LogOperation(accountNumber int, operation string, amount float64) {
	a.log(Event{
		Timestamp: time.Now(),
		EventType: operation,
		Account:   notify.MaskAccountNumber(accountNumber),
		Amount:    amount,
		Status:    "SUCCESS",
	})
}

func (a *Logger) LogError(accountNumber int, operation string, err error) {
	a.log(Event{
		Timestamp: time.Now(),
		EventType: operation,
		Account:   notify.MaskAccountNumber(accountNumber),
		Status:    "FAILED",
		Details:   map[string]string{"error": err.Error()},
	})
}

func (a *Logger) log(event Event) {
	data, _ := json.Marshal(event)
	log.Printf("AUDIT: %s", string(data))
}
