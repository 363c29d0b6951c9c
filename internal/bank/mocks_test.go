package bank

import (
	"errors"
	"time"
)

// fakeClock is a settable clock for expiry tests.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

// seqRand replays a fixed sequence of draws, then wraps around.
type seqRand struct {
	vals []int
	i    int
}

func (s *seqRand) Intn(n int) int {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v % n
}

type sentMessage struct {
	To      string
	Subject string
	Body    string
}

// recorderSink captures outbound notifications for assertions.
type recorderSink struct {
	Emails []sentMessage
	SMS    []sentMessage
}

func (r *recorderSink) SendEmail(to, subject, body string) error {
	r.Emails = append(r.Emails, sentMessage{To: to, Subject: subject, Body: body})
	return nil
}

func (r *recorderSink) SendSMS(to, body string) error {
	r.SMS = append(r.SMS, sentMessage{To: to, Body: body})
	return nil
}

// failingSink rejects every delivery.
type failingSink struct{}

func (failingSink) SendEmail(to, subject, body string) error {
	return errors.New("smtp relay unreachable")
}

func (failingSink) SendSMS(to, body string) error {
	return errors.New("sms gateway unreachable")
}
