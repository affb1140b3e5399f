package auth

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	apperrors "github.com/frahmantamala/user-management/internal"
	coreaccount "github.com/frahmantamala/user-management/internal/core/account"
	"github.com/frahmantamala/user-management/internal/transport"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

type stubService struct {
	lastLogin  LoginDTO
	loggedOut  []string
	resolved   *coreaccount.Account
	resolveErr error
	loginErr   error
}

func (s *stubService) Login(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	s.lastLogin = dto
	if s.loginErr != nil {
		return AuthTokens{}, s.loginErr
	}
	return AuthTokens{AccessToken: "tok", TokenType: TokenTypeBearer, ExpiresAt: time.Date(2024, 1, 1, 0, 10, 0, 0, time.UTC)}, nil
}

func (s *stubService) Logout(ctx context.Context, acc *coreaccount.Account) error {
	s.loggedOut = append(s.loggedOut, acc.Email)
	return nil
}

func (s *stubService) Resolve(ctx context.Context, token string) (*coreaccount.Account, error) {
	if s.resolveErr != nil {
		return nil, s.resolveErr
	}
	return s.resolved, nil
}

var _ = ginkgo.Describe("AuthHandler", func() {
	var (
		svc     *stubService
		handler *Handler
	)

	ginkgo.BeforeEach(func() {
		svc = &stubService{resolved: &coreaccount.Account{Email: "e@x.com", IsActive: true}}
		handler = NewHandler(transport.NewBaseHandler(slog.New(slog.NewTextHandler(io.Discard, nil))), svc)
	})

	ginkgo.Describe("Login", func() {
		ginkgo.It("should read the credentials from headers", func() {
			req := httptest.NewRequest(http.MethodPost, "/user/login", nil)
			req.Header.Set("email", "e@x.com")
			req.Header.Set("password", "secret1")
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(svc.lastLogin).To(gomega.Equal(LoginDTO{Email: "e@x.com", Password: "secret1"}))

			var body map[string]interface{}
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(gomega.Succeed())
			gomega.Expect(body).To(gomega.HaveKeyWithValue("accessToken", "tok"))
			gomega.Expect(body).To(gomega.HaveKeyWithValue("tokenType", "bearer"))
			gomega.Expect(body).To(gomega.HaveKey("expiresAt"))
		})

		ginkgo.It("should answer 401 with a bearer challenge on bad credentials", func() {
			svc.loginErr = apperrors.ErrInvalidCredentials
			rec := httptest.NewRecorder()

			handler.Login(rec, httptest.NewRequest(http.MethodPost, "/user/login", nil))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(rec.Header().Get("WWW-Authenticate")).To(gomega.Equal("Bearer"))
		})
	})

	ginkgo.Describe("Logout", func() {
		ginkgo.It("should confirm the logout by email", func() {
			req := httptest.NewRequest(http.MethodPost, "/user/logout", nil)
			req = req.WithContext(apperrors.ContextWithAccount(req.Context(), &coreaccount.Account{Email: "e@x.com"}))
			rec := httptest.NewRecorder()

			handler.Logout(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("e@x.com logged out successfully"))
			gomega.Expect(svc.loggedOut).To(gomega.Equal([]string{"e@x.com"}))
		})
	})

	ginkgo.Describe("AuthMiddleware", func() {
		var (
			reached *coreaccount.Account
			next    http.Handler
		)

		ginkgo.BeforeEach(func() {
			reached = nil
			next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reached, _ = apperrors.AccountFromContext(r.Context())
				w.WriteHeader(http.StatusNoContent)
			})
		})

		ginkgo.It("should put the resolved account into the context", func() {
			req := httptest.NewRequest(http.MethodGet, "/user/employee/details", nil)
			req.Header.Set("Authorization", "bearer tok")
			rec := httptest.NewRecorder()

			handler.AuthMiddleware(next).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNoContent))
			gomega.Expect(reached).ToNot(gomega.BeNil())
			gomega.Expect(reached.Email).To(gomega.Equal("e@x.com"))
		})

		ginkgo.It("should reject a request without a token", func() {
			rec := httptest.NewRecorder()

			handler.AuthMiddleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user/employee/details", nil))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring(string(apperrors.ErrCodeMissingToken)))
			gomega.Expect(reached).To(gomega.BeNil())
		})

		ginkgo.It("should map resolve failures to their status", func() {
			svc.resolveErr = apperrors.ErrAccountInactive
			req := httptest.NewRequest(http.MethodGet, "/user/employee/details", nil)
			req.Header.Set("Authorization", "Bearer tok")
			rec := httptest.NewRecorder()

			handler.AuthMiddleware(next).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(reached).To(gomega.BeNil())
		})
	})
})
