// Package auth implements sign-in, registration, password changes and
// password reset requests for storefront accounts.
package auth

import (
	"context"
	"log/slog"

	"github.com/ahmad5farah/AmaKart/internal/domain"
	"github.com/ahmad5farah/AmaKart/internal/gateway"
	apperrors "github.com/ahmad5farah/AmaKart/pkg/errors"
	"github.com/ahmad5farah/AmaKart/pkg/logger"
)

// ResetSentMessage is returned for every accepted reset request so callers
// cannot learn which emails have accounts.
const ResetSentMessage = "If an account with this email exists, you will receive a reset link."

// ResetMailer delivers password reset links.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, email string) error
}

// RegisterInput holds the registration form.
type RegisterInput struct {
	Email           string `json:"email" validate:"required,max=254"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
	FirstName       string `json:"first_name" validate:"notblank,max=100"`
	LastName        string `json:"last_name" validate:"notblank,max=100"`
	Phone           string `json:"phone" validate:"max=30"`
}

// Service coordinates the account gateway with lockout, rate limiting and
// session tokens.
type Service struct {
	accounts gateway.Accounts
	tokens   *TokenManager
	lockout  *Lockout
	resets   *ResetLimiter
	mailer   ResetMailer
	metrics  *Metrics
	logger   *slog.Logger
}

// NewService creates an auth service. metrics may be nil.
func NewService(
	accounts gateway.Accounts,
	tokens *TokenManager,
	lockout *Lockout,
	resets *ResetLimiter,
	mailer ResetMailer,
	metrics *Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		accounts: accounts,
		tokens:   tokens,
		lockout:  lockout,
		resets:   resets,
		mailer:   mailer,
		metrics:  metrics,
		logger:   logger,
	}
}

// SignIn authenticates and issues a session. A locked account fails with
// reason "locked" whatever the credentials; bad credentials count towards
// the lock.
func (s *Service) SignIn(ctx context.Context, email, password string) (domain.Session, error) {
	email = domain.Sanitize(email)
	key := NormalizeEmail(email)
	l := logger.WithContext(ctx, s.logger)

	if err := s.lockout.Check(key); err != nil {
		s.metrics.signIn("locked")
		return domain.Session{}, err
	}

	if !ValidEmail(email) || password == "" {
		return domain.Session{}, s.failSignIn(ctx, l, key,
			apperrors.AuthError(apperrors.ReasonInvalidCredentials, "Invalid email or password"))
	}

	acct, err := s.accounts.SignIn(ctx, email, password)
	if err != nil {
		if apperrors.AuthReason(err) == apperrors.ReasonInvalidCredentials {
			return domain.Session{}, s.failSignIn(ctx, l, key, err)
		}
		s.metrics.signIn("error")
		return domain.Session{}, err
	}

	s.lockout.Reset(key)
	s.metrics.signIn("success")
	l.InfoContext(ctx, "user signed in", slog.String("user_id", acct.ID))
	return s.session(acct)
}

func (s *Service) failSignIn(ctx context.Context, l *slog.Logger, key string, cause error) error {
	if lockErr := s.lockout.Fail(key); lockErr != nil {
		s.metrics.locked()
		s.metrics.signIn("locked")
		l.WarnContext(ctx, "account locked after failed sign-ins")
		return lockErr
	}
	s.metrics.signIn("invalid_credentials")
	return cause
}

// Register validates the form, creates the account and issues a session.
func (s *Service) Register(ctx context.Context, in RegisterInput) (domain.Session, error) {
	email := domain.Sanitize(in.Email)
	if !ValidEmail(email) {
		return domain.Session{}, apperrors.AuthError(apperrors.ReasonInvalidEmail, "Please enter a valid email address")
	}
	if in.Password != in.ConfirmPassword {
		return domain.Session{}, apperrors.InvalidInput("Passwords do not match")
	}
	if strength := CheckPassword(in.Password); !strength.Valid {
		return domain.Session{}, apperrors.AuthError(apperrors.ReasonWeakPassword,
			"Password must contain: "+strength.Missing())
	}

	profile := domain.Profile{FirstName: in.FirstName, LastName: in.LastName, Phone: in.Phone}.Sanitized()
	acct, err := s.accounts.Register(ctx, email, in.Password, profile)
	if err != nil {
		return domain.Session{}, err
	}

	logger.WithContext(ctx, s.logger).InfoContext(ctx, "account registered", slog.String("user_id", acct.ID))
	return s.session(acct)
}

// ChangePassword replaces the password of a signed-in user.
func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	if userID == "" {
		return apperrors.Unauthorized("User not authenticated")
	}
	if strength := CheckPassword(next); !strength.Valid {
		return apperrors.AuthError(apperrors.ReasonWeakPassword,
			"New password must contain: "+strength.Missing())
	}
	if err := s.accounts.ChangePassword(ctx, userID, current, next); err != nil {
		return err
	}
	logger.WithContext(ctx, s.logger).InfoContext(ctx, "password changed")
	return nil
}

// RequestPasswordReset sends a reset link, at most three times per window
// per visitor. The returned message does not reveal whether the account
// exists.
func (s *Service) RequestPasswordReset(ctx context.Context, visitorID, email string) (string, error) {
	email = domain.Sanitize(email)
	if !ValidEmail(email) {
		return "", apperrors.AuthError(apperrors.ReasonInvalidEmail, "Please enter a valid email address")
	}
	if err := s.resets.Allow(visitorID); err != nil {
		s.metrics.resetRequest("rate_limited")
		return "", err
	}
	if err := s.mailer.SendPasswordReset(ctx, NormalizeEmail(email)); err != nil {
		s.metrics.resetRequest("error")
		return "", err
	}
	s.metrics.resetRequest("sent")
	return ResetSentMessage, nil
}

func (s *Service) session(acct gateway.Account) (domain.Session, error) {
	token, err := s.tokens.Generate(acct.ID, acct.Email)
	if err != nil {
		return domain.Session{}, apperrors.Internal(err)
	}
	return domain.Session{
		UserID:      acct.ID,
		Email:       acct.Email,
		DisplayName: acct.Profile.DisplayName(),
		Token:       token,
	}, nil
}
