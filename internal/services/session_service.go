package services

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/smartatm/backend/internal/audit"
	"github.com/smartatm/backend/internal/bank"
	"github.com/smartatm/backend/internal/notify"
)

// SessionService exposes the session controller operations over HTTP.
// Pre-login recovery dialogs are keyed by a challenge id returned to the
// caller; established sessions are keyed by a session id carried in the
// JWT.
type SessionService struct {
	dir       *bank.Directory
	redis     *redis.Client
	validator *validator.Validate
	clock     bank.Clock
	rand      bank.Rand
	sink      notify.Sink
	audit     *audit.Logger
	otpTTL    time.Duration

	mu       sync.Mutex
	dialogs  map[string]*bank.Controller // recovery dialogs awaiting OTP / reset
	sessions map[string]*bank.Controller // logged-in controllers
}

func NewSessionService(dir *bank.Directory, redisClient *redis.Client, clock bank.Clock, r bank.Rand, sink notify.Sink) *SessionService {
	ttl := viper.GetDuration("otp.ttl")
	if ttl <= 0 {
		ttl = bank.DefaultOTPTTL
	}
	return &SessionService{
		dir:       dir,
		redis:     redisClient,
		validator: validator.New(),
		clock:     clock,
		rand:      r,
		sink:      sink,
		audit:     audit.NewLogger(),
		otpTTL:    ttl,
		dialogs:   make(map[string]*bank.Controller),
		sessions:  make(map[string]*bank.Controller),
	}
}

func (s *SessionService) newController() *bank.Controller {
	return bank.NewController(s.dir, s.clock, s.rand, s.sink, s.otpTTL)
}

// RegisterRequest represents the account creation payload
type RegisterRequest struct {
	Name   string `json:"name" validate:"required,min=2" example:"John Doe"`
	Email  string `json:"email" validate:"required,email" example:"user@example.com"`
	Mobile string `json:"mobile" validate:"required" example:"+919812345678"`
	PIN    int    `json:"pin" example:"4321"`
}

// LoginRequest represents the login payload
type LoginRequest struct {
	AccountNumber int `json:"accountNumber" validate:"required" example:"123456"`
	PIN           int `json:"pin" example:"4321"`
}

// AccountInfo is the public view of an account
type AccountInfo struct {
	AccountNumber int    `json:"accountNumber"`
	Name          string `json:"name"`
	Email         string `json:"email"`
}

// AuthResponse is returned once a session is established
type AuthResponse struct {
	Token   string      `json:"token"`
	Account AccountInfo `json:"account"`
}

func (s *SessionService) decodeRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return false
	}
	if err := s.validator.Struct(v); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Register creates a new account.
func (s *SessionService) Register(w http.ResponseWriter, r *http.Request) {
	log.Printf("[SESSION] Registration attempt from IP: %s", r.RemoteAddr)

	var req RegisterRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	acct, err := s.newController().Register(req.Name, req.Email, req.Mobile, req.PIN)
	if err != nil {
		log.Printf("[SESSION] Registration failed for %s: %v", req.Email, err)
		sendDomainError(w, err)
		return
	}

	s.audit.LogOperation(acct.Number, "REGISTER", 0)
	log.Printf("[SESSION] Account %d created for %s", acct.Number, req.Email)
	writeJSON(w, http.StatusCreated, AccountInfo{
		AccountNumber: acct.Number,
		Name:          acct.Name,
		Email:         acct.Email,
	})
}

// Login authenticates by account number and PIN. A correct PIN returns a
// session token immediately; a wrong PIN opens an OTP recovery dialog and
// returns its challenge id.
func (s *SessionService) Login(w http.ResponseWriter, r *http.Request) {
	log.Printf("[SESSION] Login attempt from IP: %s", r.RemoteAddr)

	var req LoginRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	ctrl := s.newController()
	otpRequired, err := ctrl.Login(req.AccountNumber, req.PIN)
	if err != nil {
		log.Printf("[SESSION] Login failed for account %d: %v", req.AccountNumber, err)
		sendDomainError(w, err)
		return
	}

	if otpRequired {
		challengeID := uuid.NewString()
		s.mu.Lock()
		s.dialogs[challengeID] = ctrl
		s.mu.Unlock()

		log.Printf("[SESSION] OTP challenge %s opened for account %d", challengeID, req.AccountNumber)
		writeJSON(w, http.StatusAccepted, map[string]any{
			"status":      "otp_required",
			"challengeId": challengeID,
			"expiresIn":   int(s.otpTTL.Seconds()),
		})
		return
	}

	s.establishSession(w, ctrl)
}

// establishSession registers the logged-in controller and returns its
// signed token.
func (s *SessionService) establishSession(w http.ResponseWriter, ctrl *bank.Controller) {
	acct := ctrl.Account()
	sessionID := uuid.NewString()

	token, err := generateSessionToken(sessionID, acct.Number)
	if err != nil {
		log.Printf("[SESSION] Token generation failed for account %d: %v", acct.Number, err)
		SendErrorResponse(w, "Failed to generate token", http.StatusInternalServerError, nil)
		return
	}

	s.mu.Lock()
	s.sessions[sessionID] = ctrl
	s.mu.Unlock()

	log.Printf("[SESSION] Login successful for account %d", acct.Number)
	writeJSON(w, http.StatusOK, AuthResponse{
		Token: token,
		Account: AccountInfo{
			AccountNumber: acct.Number,
			Name:          acct.Name,
			Email:         acct.Email,
		},
	})
}

// SubmitOTP answers the OTP challenge of a login-recovery dialog.
func (s *SessionService) SubmitOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChallengeID string `json:"challengeId" validate:"required,uuid"`
		OTP         int    `json:"otp" validate:"required"`
	}
	if !s.decodeRequest(w, r, &req) {
		return
	}

	ctrl, ok := s.dialog(req.ChallengeID)
	if !ok {
		sendDomainError(w, bank.ErrNoChallenge)
		return
	}

	if err := ctrl.SubmitOTP(req.OTP); err != nil {
		// One verify per challenge: the dialog is gone either way.
		s.dropDialog(req.ChallengeID)
		log.Printf("[SESSION] OTP rejected for challenge %s: %v", req.ChallengeID, err)
		sendDomainError(w, err)
		return
	}

	log.Printf("[SESSION] OTP verified for challenge %s", req.ChallengeID)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "otp_verified",
		"message": "Reset your PIN or cancel the login",
	})
}

// ResetPIN completes a recovery dialog with a new PIN and logs in.
func (s *SessionService) ResetPIN(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChallengeID string `json:"challengeId" validate:"required,uuid"`
		NewPIN      int    `json:"newPin"`
		ConfirmPIN  int    `json:"confirmPin"`
	}
	if !s.decodeRequest(w, r, &req) {
		return
	}

	ctrl, ok := s.dialog(req.ChallengeID)
	if !ok {
		sendDomainError(w, bank.ErrNoChallenge)
		return
	}
	s.dropDialog(req.ChallengeID)

	if err := ctrl.ResetPIN(req.NewPIN, req.ConfirmPIN); err != nil {
		log.Printf("[SESSION] PIN reset failed for challenge %s: %v", req.ChallengeID, err)
		sendDomainError(w, err)
		return
	}

	s.audit.LogOperation(ctrl.Account().Number, "PIN_RESET", 0)
	s.establishSession(w, ctrl)
}

// CancelRecovery abandons a recovery dialog.
func (s *SessionService) CancelRecovery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChallengeID string `json:"challengeId" validate:"required,uuid"`
	}
	if !s.decodeRequest(w, r, &req) {
		return
	}

	ctrl, ok := s.dialog(req.ChallengeID)
	if !ok {
		sendDomainError(w, bank.ErrNoChallenge)
		return
	}
	s.dropDialog(req.ChallengeID)

	if err := ctrl.Cancel(); err != nil {
		sendDomainError(w, err)
		return
	}

	log.Printf("[SESSION] Recovery dialog %s cancelled", req.ChallengeID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// Balance returns the current balance.
func (s *SessionService) Balance(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.sessionController(w, r)
	if !ok {
		return
	}

	balance, err := ctrl.Balance()
	if err != nil {
		sendDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"balance": balance})
}

// Deposit credits the logged-in account.
func (s *SessionService) Deposit(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.sessionController(w, r)
	if !ok {
		return
	}

	var req struct {
		Amount float64 `json:"amount"`
	}
	if !s.decodeRequest(w, r, &req) {
		return
	}

	acct := ctrl.Account()
	if err := ctrl.Deposit(req.Amount); err != nil {
		if acct != nil {
			s.audit.LogError(acct.Number, "DEPOSIT", err)
		}
		sendDomainError(w, err)
		return
	}

	s.audit.LogOperation(acct.Number, "DEPOSIT", req.Amount)
	balance, _ := ctrl.Balance()
	writeJSON(w, http.StatusOK, map[string]float64{"balance": balance})
}

// Withdraw opens the step-up OTP round for a withdrawal.
func (s *SessionService) Withdraw(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.sessionController(w, r)
	if !ok {
		return
	}

	var req struct {
		Amount float64 `json:"amount"`
	}
	if !s.decodeRequest(w, r, &req) {
		return
	}

	if err := ctrl.Withdraw(req.Amount); err != nil {
		sendDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":    "otp_required",
		"expiresIn": int(s.otpTTL.Seconds()),
	})
}

// ConfirmWithdraw answers the step-up challenge and, on success, executes
// the held withdrawal.
func (s *SessionService) ConfirmWithdraw(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.sessionController(w, r)
	if !ok {
		return
	}

	var req struct {
		OTP int `json:"otp" validate:"required"`
	}
	if !s.decodeRequest(w, r, &req) {
		return
	}

	acct := ctrl.Account()
	if err := ctrl.SubmitOTP(req.OTP); err != nil {
		if acct != nil {
			s.audit.LogError(acct.Number, "WITHDRAW", err)
		}
		sendDomainError(w, err)
		return
	}

	balance, _ := ctrl.Balance()
	s.audit.LogOperation(acct.Number, "WITHDRAW", 0)
	writeJSON(w, http.StatusOK, map[string]float64{"balance": balance})
}

// CancelWithdraw abandons a pending withdrawal; the session stays active.
func (s *SessionService) CancelWithdraw(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.sessionController(w, r)
	if !ok {
		return
	}

	if err := ctrl.Cancel(); err != nil {
		sendDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// ChangePIN rotates the PIN for the logged-in account.
func (s *SessionService) ChangePIN(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.sessionController(w, r)
	if !ok {
		return
	}

	var req struct {
		OldPIN int `json:"oldPin"`
		NewPIN int `json:"newPin"`
	}
	if !s.decodeRequest(w, r, &req) {
		return
	}

	acct := ctrl.Account()
	if err := ctrl.ChangePIN(req.OldPIN, req.NewPIN); err != nil {
		if acct != nil {
			s.audit.LogError(acct.Number, "PIN_CHANGE", err)
		}
		sendDomainError(w, err)
		return
	}

	s.audit.LogOperation(acct.Number, "PIN_CHANGE", 0)
	writeJSON(w, http.StatusOK, map[string]string{"status": "pin_changed"})
}

// MiniStatement returns the bounded history, most recent first.
func (s *SessionService) MiniStatement(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.sessionController(w, r)
	if !ok {
		return
	}

	txs, err := ctrl.MiniStatement()
	if err != nil {
		sendDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": txs})
}

// Logout tears the session down and blacklists its token.
func (s *SessionService) Logout(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.sessionController(w, r)
	if !ok {
		return
	}

	_ = ctrl.Logout()

	sessionID, _ := r.Context().Value("sessionID").(string)
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	token := r.Header.Get("Authorization")
	if len(token) > 7 {
		token = token[7:] // Remove "Bearer " prefix
		if s.redis != nil {
			key := fmt.Sprintf("blacklist:%s", token)
			expiry := time.Duration(viper.GetInt("jwt.expiry_hours")) * time.Hour
			if err := s.redis.Set(r.Context(), key, "1", expiry).Err(); err != nil {
				log.Printf("[SESSION] Failed to blacklist token: %v", err)
			}
		}
	}

	log.Printf("[SESSION] Session %s logged out", sessionID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

// sessionController resolves the controller behind the authenticated
// request, or replies 401.
func (s *SessionService) sessionController(w http.ResponseWriter, r *http.Request) (*bank.Controller, bool) {
	sessionID, ok := r.Context().Value("sessionID").(string)
	if !ok || sessionID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return nil, false
	}

	s.mu.Lock()
	ctrl, found := s.sessions[sessionID]
	s.mu.Unlock()
	if !found {
		SendErrorResponse(w, "Session expired", http.StatusUnauthorized, nil)
		return nil, false
	}
	return ctrl, true
}

// TODO: evict abandoned recovery dialogs once their challenge has expired.
func (s *SessionService) dialog(challengeID string) (*bank.Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctrl, ok := s.dialogs[challengeID]
	return ctrl, ok
}

func (s *SessionService) dropDialog(challengeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.dialogs, challengeID)
}
