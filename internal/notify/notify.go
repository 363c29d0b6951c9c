// Package notify delivers best-effort account notifications over email
// and SMS. Delivery failures are reported to the caller but the banking
// operation that triggered the message has already committed.
package notify

import "fmt"

type EmailSender interface {
	SendEmail(to, subject, body string) error
}

type SMSSender interface {
	SendSMS(to, body string) error
}

// Sink is the full notification surface consumed by the session
// controller.
type Sink interface {
	EmailSender
	SMSSender
}

// Service fans out to independent email and SMS deliverers.
type Service struct {
	email EmailSender
	sms   SMSSender
}

func NewService(email EmailSender, sms SMSSender) *Service {
	return &Service{email: email, sms: sms}
}

func (s *Service) SendEmail(to, subject, body string) error {
	return s.email.SendEmail(to, subject, body)
}

func (s *Service) SendSMS(to, body string) error {
	return s.sms.SendSMS(to, body)
}

// MaskAccountNumber renders the display form of an account number,
// showing only the last four digits.
func MaskAccountNumber(number int) string {
	s := fmt.Sprintf("%d", number)
	if len(s) <= 4 {
		return "XXXX-" + s
	}
	return "XXXX-" + s[len(s)-4:]
}
