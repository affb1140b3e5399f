package auth

import (
	"context"
	"errors"
	"time"

	coreaccount "github.com/frahmantamala/user-management/internal/core/account"
	"github.com/frahmantamala/user-management/internal/session"
	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer mints and checks bearer tokens whose subject is the account email.
type TokenIssuer interface {
	Issue(subject string, ttl time.Duration) (token string, expiresAt time.Time, err error)
	Verify(token string) (subject string, err error)
}

// CredentialHasher hides the password hashing scheme.
type CredentialHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// RepositoryAPI is the read side of accounts needed for authentication.
type RepositoryAPI interface {
	FindByEmail(ctx context.Context, email string) (*coreaccount.Account, error)
}

// SessionLedger records logins and logouts.
type SessionLedger interface {
	RecordLogin(ctx context.Context, email, token string, loggedInAt time.Time) (*session.Entry, error)
	RecordLogout(ctx context.Context, email string) (*session.Entry, error)
}

type ServiceAPI interface {
	Login(ctx context.Context, dto LoginDTO) (AuthTokens, error)
	Logout(ctx context.Context, acc *coreaccount.Account) error
	Resolve(ctx context.Context, token string) (*coreaccount.Account, error)
}

type AuthTokens struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

const TokenTypeBearer = "bearer"

// Claims represents JWT token claims
type Claims struct {
	jwt.RegisteredClaims
}

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
