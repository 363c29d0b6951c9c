package bank

import "errors"

// Domain errors returned by accounts, the directory and the session
// controller. The HTTP layer maps these onto status codes; nothing in
// this package formats anything for display.
var (
	ErrInvalidPIN          = errors.New("pin must be a 4 digit number")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrWrongPIN            = errors.New("old pin is incorrect")
	ErrAccountNotFound     = errors.New("account not found")
	ErrInvalidOTP          = errors.New("invalid otp")
	ErrOTPExpired          = errors.New("otp expired")
	ErrPINMismatch         = errors.New("pin confirmation does not match")

	// State machine errors for operations invoked out of turn.
	ErrNoSession     = errors.New("no active session")
	ErrSessionActive = errors.New("a session is already active")
	ErrNoChallenge   = errors.New("no pending otp challenge")
)
