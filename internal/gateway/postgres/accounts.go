package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/ahmad5farah/AmaKart/internal/domain"
	"github.com/ahmad5farah/AmaKart/internal/gateway"
	"github.com/ahmad5farah/AmaKart/pkg/database"
	apperrors "github.com/ahmad5farah/AmaKart/pkg/errors"
	"github.com/ahmad5farah/AmaKart/pkg/tracing"
)

const invalidCredentials = "Invalid email or password"

// AccountStore implements gateway.Accounts over the users table with bcrypt
// password hashes.
type AccountStore struct {
	db         database.DBTX
	bcryptCost int
	now        func() time.Time
}

var _ gateway.Accounts = (*AccountStore)(nil)

// NewAccountStore creates an account store. A zero bcryptCost uses
// bcrypt.DefaultCost.
func NewAccountStore(db database.DBTX, bcryptCost int) *AccountStore {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AccountStore{db: db, bcryptCost: bcryptCost, now: time.Now}
}

// SignIn verifies the credentials. Unknown emails and wrong passwords fail
// the same way.
func (s *AccountStore) SignIn(ctx context.Context, email, password string) (acct gateway.Account, err error) {
	ctx, span := tracing.Start(ctx, "gateway.SignIn")
	defer func() { tracing.End(span, err) }()

	var hash string
	err = s.db.QueryRow(ctx, `
		SELECT id, email, password_hash, first_name, last_name, phone
		FROM users
		WHERE email = $1`, normalizeEmail(email),
	).Scan(&acct.ID, &acct.Email, &hash, &acct.Profile.FirstName, &acct.Profile.LastName, &acct.Profile.Phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return gateway.Account{}, apperrors.AuthError(apperrors.ReasonInvalidCredentials, invalidCredentials)
	}
	if err != nil {
		return gateway.Account{}, apperrors.NetworkError("sign in failed", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return gateway.Account{}, apperrors.AuthError(apperrors.ReasonInvalidCredentials, invalidCredentials)
	}
	return acct, nil
}

// Register creates an account.
func (s *AccountStore) Register(ctx context.Context, email, password string, profile domain.Profile) (acct gateway.Account, err error) {
	ctx, span := tracing.Start(ctx, "gateway.Register")
	defer func() { tracing.End(span, err) }()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return gateway.Account{}, fmt.Errorf("hash password: %w", err)
	}

	acct = gateway.Account{ID: uuid.NewString(), Email: normalizeEmail(email), Profile: profile}
	now := s.now().UTC()
	_, err = s.db.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		acct.ID, acct.Email, string(hash),
		profile.FirstName, profile.LastName, profile.Phone,
		now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return gateway.Account{}, apperrors.AuthError(apperrors.ReasonEmailInUse, "An account with this email already exists")
		}
		return gateway.Account{}, apperrors.NetworkError("registration failed", err)
	}
	return acct, nil
}

// ChangePassword replaces the password after re-checking the current one.
func (s *AccountStore) ChangePassword(ctx context.Context, userID, current, next string) (err error) {
	ctx, span := tracing.Start(ctx, "gateway.ChangePassword")
	defer func() { tracing.End(span, err) }()

	var hash string
	err = s.db.QueryRow(ctx, `SELECT password_hash FROM users WHERE id = $1`, userID).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NotFound("user", userID)
	}
	if err != nil {
		return apperrors.NetworkError("password change failed", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(current)) != nil {
		return apperrors.AuthError(apperrors.ReasonInvalidCredentials, "Current password is incorrect")
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(next), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	ct, err := s.db.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`,
		string(newHash), s.now().UTC(), userID,
	)
	if err != nil {
		return apperrors.NetworkError("password change failed", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", userID)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
