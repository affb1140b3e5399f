package main_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/frahmantamala/user-management/cmd"
	"github.com/frahmantamala/user-management/internal"
	accountDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/account"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestUserManagement(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "UserManagement Suite")
}

var _ = Describe("User management over HTTP", func() {
	const grace = 3 * time.Hour

	var (
		db     *gorm.DB
		app    *cmd.App
		router http.Handler
		clock  time.Time
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&accountDatamodel.Account{}, &accountDatamodel.SessionEntry{})).To(Succeed())

		cfg := &internal.Config{
			Server: internal.ServerConfig{AllowedOrigins: "*"},
			Security: internal.SecurityConfig{
				JWTSecret:           "an-end-to-end-secret-of-32-bytes!",
				AccessTokenDuration: 10 * time.Minute,
				BCryptCost:          4,
			},
			Lifecycle: internal.LifecycleConfig{DeletionGracePeriod: grace},
		}
		cfg.ApplyDefaults()

		app = cmd.NewApp(cfg, db, slog.New(slog.NewTextHandler(io.Discard, nil)))
		clock = time.Now().UTC().Truncate(time.Second)
		app.Accounts.WithClock(func() time.Time { return clock })

		router, err = app.Router(context.Background(), sqlDB)
		Expect(err).NotTo(HaveOccurred())

		DeferCleanup(func() {
			app.Close()
			_ = sqlDB.Close()
		})
	})

	do := func(method, target, body, token string, headers ...string) *httptest.ResponseRecorder {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, target, reader)
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		for i := 0; i+1 < len(headers); i += 2 {
			req.Header.Set(headers[i], headers[i+1])
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	decode := func(rec *httptest.ResponseRecorder) map[string]interface{} {
		var out map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &out)).To(Succeed(), rec.Body.String())
		return out
	}

	login := func(email, password string) string {
		rec := do(http.MethodPost, "/user/login", "", "", "email", email, "password", password)
		Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
		out := decode(rec)
		Expect(out).To(HaveKeyWithValue("tokenType", "bearer"))
		return out["accessToken"].(string)
	}

	registerAdmin := func() string {
		body := `{"userFirstName":"Hana","userLastName":"Rahma","designation":"HR","password":"secret1","email":"hr@x.com","phoneNumber":"0812345678"}`
		rec := do(http.MethodPost, "/user/admin/registration", body, "")
		Expect(rec.Code).To(Equal(http.StatusCreated), rec.Body.String())
		return login("hr@x.com", "secret1")
	}

	createEmployee := func(adminToken string) {
		body := `{"userFirstName":"Eka","userLastName":"Putra","designation":"Engineer","password":"secret2","email":"e@x.com","phoneNumber":"0898765432"}`
		rec := do(http.MethodPost, "/user/employee/creation", body, adminToken)
		Expect(rec.Code).To(Equal(http.StatusCreated), rec.Body.String())
		Expect(decode(rec)).To(HaveKeyWithValue("message", "Employee created successfully"))
	}

	countSessions := func(email string) int64 {
		var n int64
		Expect(db.Model(&accountDatamodel.SessionEntry{}).Where("account_email = ?", email).Count(&n).Error).To(Succeed())
		return n
	}

	It("serves the ops endpoints and the API document", func() {
		Expect(do(http.MethodGet, "/ping", "", "").Code).To(Equal(http.StatusOK))
		Expect(do(http.MethodGet, "/health", "", "").Code).To(Equal(http.StatusOK))

		rec := do(http.MethodGet, "/openapi.json", "", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(decode(rec)).To(HaveKey("paths"))
	})

	It("walks an employee from creation to purge", func() {
		adminToken := registerAdmin()
		createEmployee(adminToken)

		employeeToken := login("e@x.com", "secret2")

		By("gating the details endpoints on role")
		rec := do(http.MethodGet, "/user/employee/details", "", employeeToken)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(decode(rec)).To(HaveKeyWithValue("email", "e@x.com"))
		Expect(do(http.MethodGet, "/user/admin/details", "", employeeToken).Code).To(Equal(http.StatusForbidden))
		Expect(do(http.MethodGet, "/user/employee/details", "", adminToken).Code).To(Equal(http.StatusForbidden))

		By("listing the employee to the admin")
		rec = do(http.MethodGet, "/user/admin/views/employee/details", "", adminToken)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(decode(rec)["accounts"]).To(HaveLen(1))

		By("deactivating the employee")
		rec = do(http.MethodDelete, "/user/admin/employee/deletion?adminOrEmployeeEmail=e@x.com", "", adminToken)
		Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
		Expect(decode(rec)).To(HaveKeyWithValue("email", "e@x.com"))

		rec = do(http.MethodGet, "/user/employee/details", "", employeeToken)
		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(decode(rec)["error"]).To(HaveKeyWithValue("code", string(internal.ErrCodeAccountInactive)))

		rec = do(http.MethodGet, "/user/admin/views/all/not/active/admin/employee/details", "", adminToken)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(decode(rec)["accounts"]).To(HaveLen(1))

		Expect(countSessions("e@x.com")).To(BeNumerically(">=", 1))

		By("keeping the account inside the grace period")
		clock = clock.Add(grace - time.Second)
		purged, err := app.Accounts.PurgeExpired(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(purged).To(BeZero())

		By("purging once the grace period has elapsed")
		clock = clock.Add(2 * time.Second)
		purged, err = app.Accounts.PurgeExpired(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(purged).To(Equal(1))

		Expect(countSessions("e@x.com")).To(BeZero())
		Expect(do(http.MethodGet, "/user/employee/details", "", employeeToken).Code).To(Equal(http.StatusUnauthorized))

		rec = do(http.MethodPost, "/user/login", "", "", "email", "e@x.com", "password", "secret2")
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))

		By("leaving the admin untouched")
		rec = do(http.MethodGet, "/user/admin/details", "", adminToken)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(decode(rec)).To(HaveKeyWithValue("isActive", true))
		Expect(countSessions("hr@x.com")).To(BeNumerically(">=", 1))
	})

	It("applies a partial profile update", func() {
		adminToken := registerAdmin()
		createEmployee(adminToken)

		rec := do(http.MethodPatch, "/user/employee/profile/update?employeeEmail=e@x.com", `{"phoneNumber":"12345678"}`, adminToken)
		Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
		out := decode(rec)
		Expect(out).To(HaveKeyWithValue("phoneNumber", "12345678"))
		Expect(out).To(HaveKeyWithValue("userFirstName", "Eka"))
		Expect(out).To(HaveKeyWithValue("designation", "Engineer"))

		login("e@x.com", "secret2")
	})

	It("closes the session on logout", func() {
		adminToken := registerAdmin()

		rec := do(http.MethodPost, "/user/logout", "", adminToken)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(decode(rec)).To(HaveKeyWithValue("message", "hr@x.com logged out successfully"))

		history, err := app.Sessions.History(context.Background(), "hr@x.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(history).To(HaveLen(1))
		Expect(history[0].IsOpen()).To(BeFalse())
	})

	It("rejects requests without a bearer token", func() {
		rec := do(http.MethodGet, "/user/admin/details", "", "")
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(decode(rec)["error"]).To(HaveKeyWithValue("code", string(internal.ErrCodeMissingToken)))
	})
})
