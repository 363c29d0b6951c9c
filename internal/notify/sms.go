package notify

import "log"

// ConsoleSink writes messages to the process log. It stands in for a real
// SMS gateway and doubles as the email transport in local runs.
type ConsoleSink struct{}

func NewConsoleSink() *ConsoleSink { return &ConsoleSink{} }

func (ConsoleSink) SendEmail(to, subject, body string) error {
	log.Printf("[NOTIFY] email to=%s subject=%q", to, subject)
	return nil
}

func (ConsoleSink) SendSMS(to, body string) error {
	log.Printf("[NOTIFY] sms to=%s body=%q", to, body)
	return nil
}
