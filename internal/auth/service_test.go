package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	apperrors "github.com/frahmantamala/user-management/internal"
	coreaccount "github.com/frahmantamala/user-management/internal/core/account"
	"github.com/frahmantamala/user-management/internal/session"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

// Mock RepositoryAPI keyed by email
type mockAccountRepository struct {
	accounts      map[string]*coreaccount.Account
	errorToReturn error
}

func (m *mockAccountRepository) FindByEmail(ctx context.Context, email string) (*coreaccount.Account, error) {
	if m.errorToReturn != nil {
		return nil, m.errorToReturn
	}
	acc, ok := m.accounts[email]
	if !ok {
		return nil, nil
	}
	cp := *acc
	return &cp, nil
}

type mockLedger struct {
	logins     []string
	loginTimes []time.Time
	logouts    []string
	err        error
}

func (m *mockLedger) RecordLogin(ctx context.Context, email, token string, loggedInAt time.Time) (*session.Entry, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.logins = append(m.logins, email)
	m.loginTimes = append(m.loginTimes, loggedInAt)
	return &session.Entry{ID: int64(len(m.logins)), AccountEmail: email, LoggedInAt: loggedInAt, Token: token}, nil
}

func (m *mockLedger) RecordLogout(ctx context.Context, email string) (*session.Entry, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.logouts = append(m.logouts, email)
	return nil, nil
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		service  *Service
		repo     *mockAccountRepository
		ledger   *mockLedger
		tokenGen *JWTTokenGenerator
		now      time.Time
		ttl      = 10 * time.Minute
		secret   = "test-secret-that-is-at-least-32-bytes"
	)

	ginkgo.BeforeEach(func() {
		hasher := NewBcryptHasher(bcrypt.MinCost)
		hash, err := hasher.Hash("correct_password")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		repo = &mockAccountRepository{
			accounts: map[string]*coreaccount.Account{
				"hr@example.com":       {ID: 1, Email: "hr@example.com", PasswordHash: hash, IsActive: true, IsSuperUser: true},
				"employee@example.com": {ID: 2, Email: "employee@example.com", PasswordHash: hash, IsActive: true},
				"gone@example.com":     {ID: 3, Email: "gone@example.com", PasswordHash: hash, IsActive: false},
			},
		}
		ledger = &mockLedger{}
		now = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
		tokenGen = NewJWTTokenGenerator(secret, ttl).WithClock(func() time.Time { return now })
		service = NewService(repo, tokenGen, hasher, ledger, ttl, slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	ginkgo.Describe("Login", func() {
		ginkgo.Context("when credentials are valid", func() {
			ginkgo.It("should return a bearer token and open a session entry", func() {
				// When
				tokens, err := service.Login(context.Background(), LoginDTO{Email: "hr@example.com", Password: "correct_password"})

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(tokens.AccessToken).ToNot(gomega.BeEmpty())
				gomega.Expect(tokens.TokenType).To(gomega.Equal(TokenTypeBearer))
				gomega.Expect(tokens.ExpiresAt).To(gomega.Equal(now.Add(ttl)))
				gomega.Expect(ledger.logins).To(gomega.Equal([]string{"hr@example.com"}))
				gomega.Expect(ledger.loginTimes).To(gomega.Equal([]time.Time{now}))
			})

			ginkgo.It("should open the session at the second aligned issue instant", func() {
				now = time.Date(2024, 1, 1, 9, 0, 0, 700_000_000, time.UTC)
				issuedAt := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

				tokens, err := service.Login(context.Background(), LoginDTO{Email: "hr@example.com", Password: "correct_password"})

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(tokens.ExpiresAt).To(gomega.Equal(issuedAt.Add(ttl)))
				gomega.Expect(ledger.loginTimes).To(gomega.Equal([]time.Time{issuedAt}))
			})

			ginkgo.It("should issue a token whose subject is the email", func() {
				tokens, err := service.Login(context.Background(), LoginDTO{Email: "employee@example.com", Password: "correct_password"})
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				subject, err := tokenGen.Verify(tokens.AccessToken)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(subject).To(gomega.Equal("employee@example.com"))
			})
		})

		ginkgo.Context("when credentials are invalid", func() {
			ginkgo.DescribeTable("should not reveal which part was wrong",
				func(email, password string) {
					tokens, err := service.Login(context.Background(), LoginDTO{Email: email, Password: password})

					gomega.Expect(err).To(gomega.MatchError(apperrors.ErrInvalidCredentials))
					gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
					gomega.Expect(ledger.logins).To(gomega.BeEmpty())
				},
				ginkgo.Entry("unknown email", "nobody@example.com", "correct_password"),
				ginkgo.Entry("wrong password", "hr@example.com", "wrong_password"),
				ginkgo.Entry("inactive account", "gone@example.com", "correct_password"),
			)
		})

		ginkgo.Context("when input validation fails", func() {
			ginkgo.It("should return a validation error for a missing email", func() {
				_, err := service.Login(context.Background(), LoginDTO{Password: "x"})

				gomega.Expect(apperrors.IsType(err, apperrors.ErrorTypeValidation)).To(gomega.BeTrue())
				gomega.Expect(err.Error()).To(gomega.ContainSubstring("email is required"))
			})

			ginkgo.It("should return a validation error for a missing password", func() {
				_, err := service.Login(context.Background(), LoginDTO{Email: "hr@example.com"})

				gomega.Expect(err.Error()).To(gomega.ContainSubstring("password is required"))
			})
		})

		ginkgo.It("should surface ledger failures as internal errors", func() {
			ledger.err = errors.New("db down")

			_, err := service.Login(context.Background(), LoginDTO{Email: "hr@example.com", Password: "correct_password"})

			gomega.Expect(apperrors.IsType(err, apperrors.ErrorTypeInternal)).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("Resolve", func() {
		var token string

		ginkgo.BeforeEach(func() {
			tokens, err := service.Login(context.Background(), LoginDTO{Email: "employee@example.com", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			token = tokens.AccessToken
		})

		ginkgo.It("should return the active account", func() {
			acc, err := service.Resolve(context.Background(), token)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(acc.Email).To(gomega.Equal("employee@example.com"))
			gomega.Expect(acc.Role()).To(gomega.Equal(coreaccount.RoleEmployee))
		})

		ginkgo.It("should reject the token once it has expired", func() {
			now = now.Add(ttl + time.Second)

			_, err := service.Resolve(context.Background(), token)

			gomega.Expect(err).To(gomega.MatchError(apperrors.ErrTokenExpired))
		})

		ginkgo.It("should reject a tampered token", func() {
			_, err := service.Resolve(context.Background(), token+"x")

			gomega.Expect(err).To(gomega.MatchError(apperrors.ErrInvalidToken))
		})

		ginkgo.It("should reject a token for a purged account", func() {
			delete(repo.accounts, "employee@example.com")

			_, err := service.Resolve(context.Background(), token)

			gomega.Expect(err).To(gomega.MatchError(apperrors.ErrInvalidToken))
		})

		ginkgo.It("should forbid a deactivated account", func() {
			repo.accounts["employee@example.com"].IsActive = false

			_, err := service.Resolve(context.Background(), token)

			gomega.Expect(err).To(gomega.MatchError(apperrors.ErrAccountInactive))
		})
	})

	ginkgo.Describe("Logout", func() {
		ginkgo.It("should close the caller's session", func() {
			err := service.Logout(context.Background(), &coreaccount.Account{Email: "hr@example.com"})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(ledger.logouts).To(gomega.Equal([]string{"hr@example.com"}))
		})

		ginkgo.It("should require a caller", func() {
			err := service.Logout(context.Background(), nil)

			gomega.Expect(err).To(gomega.MatchError(apperrors.ErrMissingToken))
		})
	})
})
