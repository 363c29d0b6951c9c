package services

import "sync"

type sentMessage struct {
	To      string
	Subject string
	Body    string
}

// recorderSink captures outbound notifications for assertions.
type recorderSink struct {
	mu     sync.Mutex
	Emails []sentMessage
	SMS    []sentMessage
}

func (r *recorderSink) SendEmail(to, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Emails = append(r.Emails, sentMessage{To: to, Subject: subject, Body: body})
	return nil
}

func (r *recorderSink) SendSMS(to, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.SMS = append(r.SMS, sentMessage{To: to, Body: body})
	return nil
}

func (r *recorderSink) lastEmail() sentMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Emails) == 0 {
		return sentMessage{}
	}
	return r.Emails[len(r.Emails)-1]
}
