package service

import (
	"context"
	"time"

	"chirp/internal/auth"
	"chirp/internal/mailer"
	"chirp/internal/middleware"
	"chirp/internal/models"
	"chirp/internal/repository"
	"chirp/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// Token lifetimes and limits for the account flows.
const (
	ResetTokenTTL       = 1 * time.Hour
	VerificationKeyTTL  = 24 * time.Hour
	MaxResendPerHour    = 3
	resendRollingWindow = 1 * time.Hour
)

// ResetRequestedMessage is returned for every reset request, whether or
// not the email exists. It must not leak account existence.
const ResetRequestedMessage = "If the email exists, a reset link has been sent"

// ResetFailedMessage is the uniform failure message for confirm attempts.
// One message for every failure mode so callers cannot probe token state.
const ResetFailedMessage = "Invalid or expired reset link"

// AccountService implements registration, login and the token-based
// password-reset and email-verification flows.
type AccountService struct {
	users     repository.UserRepository
	mail      mailer.Mailer
	jwtSecret string
	baseURL   string
}

func NewAccountService(users repository.UserRepository, mail mailer.Mailer, jwtSecret, baseURL string) *AccountService {
	return &AccountService{users: users, mail: mail, jwtSecret: jwtSecret, baseURL: baseURL}
}

// RegisterInput carries the fields for a new account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// AuthResult bundles the authenticated user with fresh tokens.
type AuthResult struct {
	User         *models.User `json:"user"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
}

// Register validates the input, creates the user with a bcrypt-hashed
// password, issues tokens and kicks off the verification email.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if existing, err := s.users.GetByUsername(ctx, in.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("username already taken")
	}
	if existing, err := s.users.GetByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user := &models.User{Username: in.Username, Email: in.Email, Password: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.issueVerificationKey(ctx, user); err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to issue verification key",
			"user_id", user.ID, "error", err)
	}

	return s.issueTokens(user)
}

// Login checks credentials and issues tokens. Wrong email and wrong
// password produce the same error.
func (s *AccountService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("invalid credentials")
	}
	return s.issueTokens(user)
}

// Refresh issues a new token pair for an already-authenticated user.
func (s *AccountService) Refresh(ctx context.Context, userID uint) (*AuthResult, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("invalid credentials")
	}
	return s.issueTokens(user)
}

func (s *AccountService) issueTokens(user *models.User) (*AuthResult, error) {
	token, err := auth.GenerateToken(user.ID, s.jwtSecret)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	refresh, err := auth.GenerateRefreshToken(user.ID, s.jwtSecret)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{User: user, Token: token, RefreshToken: refresh}, nil
}

// RequestPasswordReset stores a hashed one-hour reset token and emails the
// plaintext. Unknown emails are a silent no-op so the endpoint's response
// is identical either way.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil || user.Profile == nil {
		return nil
	}

	plaintext, err := auth.NewOpaqueToken()
	if err != nil {
		return models.NewInternalError(err)
	}
	expires := time.Now().Add(ResetTokenTTL)
	user.Profile.ResetToken = auth.HashToken(plaintext)
	user.Profile.ResetTokenExpires = &expires
	if err := s.users.SaveProfile(ctx, user.Profile); err != nil {
		return err
	}

	go s.sendMail(user.Email, "Reset your password", mailer.PasswordResetBody(s.baseURL, plaintext))
	return nil
}

// ConfirmPasswordReset validates the token against the stored hash and,
// on success, sets the new password and clears the token. Every failure
// path returns the same error.
func (s *AccountService) ConfirmPasswordReset(ctx context.Context, email, token, newPassword string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil || user.Profile == nil {
		return models.NewValidationError(ResetFailedMessage)
	}
	profile := user.Profile
	if profile.ResetTokenExpires == nil || time.Now().After(*profile.ResetTokenExpires) {
		return models.NewValidationError(ResetFailedMessage)
	}
	if !auth.VerifyToken(token, profile.ResetToken) {
		return models.NewValidationError(ResetFailedMessage)
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return models.NewValidationError(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.Password = string(hash)
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	profile.ResetToken = ""
	profile.ResetTokenExpires = nil
	return s.users.SaveProfile(ctx, profile)
}

// VerifyEmail confirms the account's email address with the emailed key.
func (s *AccountService) VerifyEmail(ctx context.Context, email, key string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil || user.Profile == nil {
		return models.NewValidationError("invalid or expired verification link")
	}
	profile := user.Profile
	if profile.IsVerified {
		return nil
	}
	if profile.EmailVerificationKeyExpires == nil || time.Now().After(*profile.EmailVerificationKeyExpires) {
		return models.NewValidationError("invalid or expired verification link")
	}
	if !auth.VerifyToken(key, profile.EmailVerificationKey) {
		return models.NewValidationError("invalid or expired verification link")
	}

	now := time.Now()
	profile.IsVerified = true
	profile.EmailVerifiedAt = &now
	profile.EmailVerificationKey = ""
	profile.EmailVerificationKeyExpires = nil
	return s.users.SaveProfile(ctx, profile)
}

// ResendVerification reissues the verification email, at most three times
// per rolling hour.
func (s *AccountService) ResendVerification(ctx context.Context, userID uint) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil || user.Profile == nil {
		return models.NewNotFoundError("user", userID)
	}
	profile := user.Profile
	if profile.IsVerified {
		return models.NewValidationError("email is already verified")
	}

	now := time.Now()
	if profile.LastVerificationAttemptAt != nil && now.Sub(*profile.LastVerificationAttemptAt) < resendRollingWindow {
		if profile.VerificationAttempts >= MaxResendPerHour {
			return models.NewRateLimitedError("too many verification emails requested, try again later")
		}
		profile.VerificationAttempts++
	} else {
		profile.VerificationAttempts = 1
	}
	profile.LastVerificationAttemptAt = &now

	return s.issueVerificationKey(ctx, user)
}

func (s *AccountService) issueVerificationKey(ctx context.Context, user *models.User) error {
	plaintext, err := auth.NewOpaqueToken()
	if err != nil {
		return models.NewInternalError(err)
	}
	expires := time.Now().Add(VerificationKeyTTL)
	user.Profile.EmailVerificationKey = auth.HashToken(plaintext)
	user.Profile.EmailVerificationKeyExpires = &expires
	if err := s.users.SaveProfile(ctx, user.Profile); err != nil {
		return err
	}
	go s.sendMail(user.Email, "Verify your email", mailer.VerificationBody(s.baseURL, plaintext))
	return nil
}

// sendMail runs in its own goroutine. Delivery failures are logged, never
// surfaced to the request that triggered them.
func (s *AccountService) sendMail(to, subject, body string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.mail.Send(ctx, to, subject, body); err != nil {
		middleware.Logger.Error("email delivery failed", "to", to, "subject", subject, "error", err)
	}
}
