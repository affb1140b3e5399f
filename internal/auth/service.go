package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/frahmantamala/user-management/internal"
	coreaccount "github.com/frahmantamala/user-management/internal/core/account"
)

// Service authenticates credentials, issues bearer tokens and resolves them
// back to accounts.
type Service struct {
	repo     RepositoryAPI
	tokens   TokenIssuer
	hasher   CredentialHasher
	ledger   SessionLedger
	tokenTTL time.Duration
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, tokens TokenIssuer, hasher CredentialHasher, ledger SessionLedger, tokenTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		tokens:   tokens,
		hasher:   hasher,
		ledger:   ledger,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// Login checks the credentials of an active account, issues an access token
// and opens a session entry. Unknown, inactive and wrong-password attempts
// are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}
	email := strings.TrimSpace(dto.Email)

	acc, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		s.logger.Error("login: failed to look up account", "error", err, "email", email)
		return AuthTokens{}, apperrors.NewInternalError("failed to look up account", err)
	}
	if acc == nil || !acc.IsActive {
		s.logger.Warn("login rejected", "email", email, "reason", "unknown or inactive account")
		return AuthTokens{}, apperrors.ErrInvalidCredentials
	}
	if !s.hasher.Verify(dto.Password, acc.PasswordHash) {
		s.logger.Warn("login rejected", "email", email, "reason", "password mismatch")
		return AuthTokens{}, apperrors.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(acc.Email, s.tokenTTL)
	if err != nil {
		s.logger.Error("login: failed to issue token", "error", err, "email", email)
		return AuthTokens{}, apperrors.NewInternalError("failed to issue token", err)
	}

	// the entry opens at the token's issue instant so reconciliation closes it
	// exactly when the token stops verifying
	issuedAt := expiresAt.Add(-s.tokenTTL)
	if _, err := s.ledger.RecordLogin(ctx, acc.Email, token, issuedAt); err != nil {
		return AuthTokens{}, apperrors.NewInternalError("failed to record login", err)
	}

	s.logger.Info("login succeeded", "email", acc.Email, "role", acc.Role().String())
	return AuthTokens{
		AccessToken: token,
		TokenType:   TokenTypeBearer,
		ExpiresAt:   expiresAt,
	}, nil
}

// Logout closes the caller's latest session entry. The token itself stays
// valid until it expires.
func (s *Service) Logout(ctx context.Context, acc *coreaccount.Account) error {
	if acc == nil {
		return apperrors.ErrMissingToken
	}
	if _, err := s.ledger.RecordLogout(ctx, acc.Email); err != nil {
		return apperrors.NewInternalError("failed to record logout", err)
	}
	s.logger.Info("logout", "email", acc.Email)
	return nil
}

// Resolve maps a bearer token to the active account it was issued for.
func (s *Service) Resolve(ctx context.Context, token string) (*coreaccount.Account, error) {
	if token == "" {
		return nil, apperrors.ErrMissingToken
	}

	email, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	acc, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to look up account", err)
	}
	if acc == nil {
		// purged or renamed since the token was issued
		return nil, apperrors.ErrInvalidToken
	}
	if !acc.IsActive {
		return nil, apperrors.ErrAccountInactive
	}
	return acc, nil
}
