package notify

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/spf13/viper"
)

// SMTPSink sends mail through a plain SMTP relay. When the sender
// credentials are not configured it logs and drops the message so a local
// run never fails on delivery.
type SMTPSink struct{}

func NewSMTPSink() *SMTPSink { return &SMTPSink{} }

func (s *SMTPSink) SendEmail(to, subject, body string) error {
	from := viper.GetString("smtp.from")
	password := viper.GetString("smtp.password")
	if from == "" || password == "" {
		log.Printf("[NOTIFY] smtp credentials not configured, dropping email to %s", to)
		return nil
	}

	host := viper.GetString("smtp.host")
	addr := host + ":" + viper.GetString("smtp.port")
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", from, to, subject, body)

	auth := smtp.PlainAuth("", from, password, host)
	if err := smtp.SendMail(addr, auth, from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	log.Printf("[NOTIFY] email sent to %s", to)
	return nil
}
