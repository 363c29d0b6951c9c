package bank

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/smartatm/backend/internal/notify"
)

// State of a session controller.
type State int

const (
	StateLoggedOut State = iota
	StateAwaitingLoginOTP
	StateAwaitingPINReset
	StateAwaitingWithdrawOTP
	StateLoggedIn
)

func (s State) String() string {
	switch s {
	case StateLoggedOut:
		return "LOGGED_OUT"
	case StateAwaitingLoginOTP:
		return "AWAITING_LOGIN_OTP"
	case StateAwaitingPINReset:
		return "AWAITING_PIN_RESET"
	case StateAwaitingWithdrawOTP:
		return "AWAITING_WITHDRAW_OTP"
	case StateLoggedIn:
		return "LOGGED_IN"
	}
	return "UNKNOWN"
}

// Controller drives one terminal session against the account directory.
// Each operation is a discrete request/response step; OTP dialogs keep
// their pending state on the controller between calls. A challenge is
// scoped to the dialog that issued it and discarded after one verify,
// whatever the outcome.
type Controller struct {
	mu     sync.Mutex
	dir    *Directory
	clock  Clock
	rand   Rand
	sink   notify.Sink
	otpTTL time.Duration

	state             State
	account           *Account // bound while logged in
	candidate         *Account // target of a login-recovery dialog
	challenge         *Challenge
	pendingWithdrawal float64
}

func NewController(dir *Directory, clock Clock, r Rand, sink notify.Sink, otpTTL time.Duration) *Controller {
	if otpTTL <= 0 {
		otpTTL = DefaultOTPTTL
	}
	return &Controller{
		dir:    dir,
		clock:  clock,
		rand:   r,
		sink:   sink,
		otpTTL: otpTTL,
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Account returns the logged-in account, or nil.
func (c *Controller) Account() *Account {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.account
}

// Register creates a new account and emails the holder their account
// number. The registration email is the only outbound message carrying
// the full number; every later message uses the masked form.
func (c *Controller) Register(name, email, mobile string, pin int) (*Account, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateLoggedOut {
		return nil, ErrSessionActive
	}
	a, err := c.dir.Create(name, email, mobile, pin)
	if err != nil {
		return nil, err
	}
	c.sendEmail(a, "SmartATM Account Created", fmt.Sprintf(
		"Hello %s\nYour account has been created successfully.\nAccount Number: %d\n\nThank you for using SmartATM!",
		a.Name, a.Number))
	return a, nil
}

// Login verifies the PIN directly. A correct PIN establishes the session
// without any OTP; a single mismatch issues an OTP challenge to the
// account's email and parks the dialog in the recovery state. The
// returned bool reports whether an OTP round is now pending.
func (c *Controller) Login(number, pin int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateLoggedOut {
		return false, ErrSessionActive
	}
	a, err := c.dir.Lookup(number)
	if err != nil {
		return false, err
	}
	if a.ValidatePIN(pin) {
		c.account = a
		c.state = StateLoggedIn
		return false, nil
	}

	c.candidate = a
	c.challenge = IssueChallenge(c.rand, c.clock, c.otpTTL)
	c.state = StateAwaitingLoginOTP
	c.sendEmail(a, "SmartATM Login OTP", fmt.Sprintf(
		"Your OTP for PIN recovery is: %d\nValid for %s.",
		c.challenge.Code(), c.otpTTL))
	return true, nil
}

// SubmitOTP answers the pending challenge. In the login-recovery dialog a
// failure abandons the attempt back to logged out; success unlocks the
// PIN reset step. In the withdrawal dialog a failure aborts only the
// withdrawal and the session stays active; success executes the held
// amount against the account.
func (c *Controller) SubmitOTP(code int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateAwaitingLoginOTP:
		err := c.challenge.Verify(code, c.clock)
		c.challenge = nil
		if err != nil {
			c.candidate = nil
			c.state = StateLoggedOut
			return err
		}
		c.state = StateAwaitingPINReset
		return nil

	case StateAwaitingWithdrawOTP:
		err := c.challenge.Verify(code, c.clock)
		c.challenge = nil
		amount := c.pendingWithdrawal
		c.pendingWithdrawal = 0
		c.state = StateLoggedIn
		if err != nil {
			return err
		}
		if err := c.account.Withdraw(amount); err != nil {
			return err
		}
		masked := notify.MaskAccountNumber(c.account.Number)
		c.sendEmail(c.account, "Withdrawal Successful", fmt.Sprintf(
			"%.2f withdrawn successfully from %s account\nCurrent Balance: %.2f",
			amount, masked, c.account.balance))
		c.sendSMS(c.account, fmt.Sprintf(
			"%.2f withdrawn from %s account. Balance: %.2f",
			amount, masked, c.account.balance))
		return nil

	default:
		return ErrNoChallenge
	}
}

// ResetPIN completes the recovery dialog and logs the caller in. Any
// failure abandons the dialog; the caller has to start over from Login.
func (c *Controller) ResetPIN(newPIN, confirmPIN int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateAwaitingPINReset {
		return ErrNoChallenge
	}
	a := c.candidate
	c.candidate = nil
	if !ValidPIN(newPIN) {
		c.state = StateLoggedOut
		return ErrInvalidPIN
	}
	if newPIN != confirmPIN {
		c.state = StateLoggedOut
		return ErrPINMismatch
	}
	if err := a.ResetPIN(newPIN); err != nil {
		c.state = StateLoggedOut
		return err
	}
	c.account = a
	c.state = StateLoggedIn
	c.sendEmail(a, "PIN Reset Successful", "Your ATM PIN has been reset successfully.")
	return nil
}

// Cancel abandons the in-flight dialog: a recovery login drops back to
// logged out, a pending withdrawal returns to the active session with no
// mutation.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateAwaitingLoginOTP, StateAwaitingPINReset:
		c.candidate = nil
		c.challenge = nil
		c.state = StateLoggedOut
		return nil
	case StateAwaitingWithdrawOTP:
		c.challenge = nil
		c.pendingWithdrawal = 0
		c.state = StateLoggedIn
		return nil
	default:
		return ErrNoChallenge
	}
}

func (c *Controller) Deposit(amount float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateLoggedIn {
		return ErrNoSession
	}
	if err := c.account.Deposit(amount); err != nil {
		return err
	}
	masked := notify.MaskAccountNumber(c.account.Number)
	c.sendEmail(c.account, "Deposit Successful", fmt.Sprintf(
		"%.2f deposited successfully into %s account\nCurrent Balance: %.2f",
		amount, masked, c.account.balance))
	c.sendSMS(c.account, fmt.Sprintf(
		"%.2f deposited into %s account. Balance: %.2f",
		amount, masked, c.account.balance))
	return nil
}

// Withdraw starts the step-up OTP round for the given amount. Nothing is
// validated or mutated until the challenge is answered; the amount is
// held on the dialog.
func (c *Controller) Withdraw(amount float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateLoggedIn {
		return ErrNoSession
	}
	c.pendingWithdrawal = amount
	c.challenge = IssueChallenge(c.rand, c.clock, c.otpTTL)
	c.state = StateAwaitingWithdrawOTP
	c.sendEmail(c.account, "SmartATM Transaction OTP", fmt.Sprintf(
		"Your OTP for withdrawal is: %d\nValid for %s.",
		c.challenge.Code(), c.otpTTL))
	return nil
}

func (c *Controller) ChangePIN(oldPIN, newPIN int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateLoggedIn {
		return ErrNoSession
	}
	if err := c.account.ChangePIN(oldPIN, newPIN); err != nil {
		return err
	}
	c.sendEmail(c.account, "PIN Changed Successfully",
		"Your ATM PIN has been changed successfully.\nIf this wasn't you, contact support immediately.")
	return nil
}

func (c *Controller) Balance() (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateLoggedIn {
		return 0, ErrNoSession
	}
	return c.account.balance, nil
}

func (c *Controller) MiniStatement() ([]Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateLoggedIn {
		return nil, ErrNoSession
	}
	return c.account.MiniStatement(), nil
}

// Logout clears the session and any pending dialog unconditionally.
func (c *Controller) Logout() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateLoggedOut {
		return ErrNoSession
	}
	c.account = nil
	c.candidate = nil
	c.challenge = nil
	c.pendingWithdrawal = 0
	c.state = StateLoggedOut
	return nil
}

// Notification delivery is fire and forget: a failed send is logged and
// never rolls back the operation that triggered it.
func (c *Controller) sendEmail(a *Account, subject, body string) {
	if err := c.sink.SendEmail(a.Email, subject, body); err != nil {
		log.Printf("[SESSION] email to %s failed: %v", a.Email, err)
	}
}

func (c *Controller) sendSMS(a *Account, body string) {
	if err := c.sink.SendSMS(a.Mobile, body); err != nil {
		log.Printf("[SESSION] sms to %s failed: %v", a.Mobile, err)
	}
}
