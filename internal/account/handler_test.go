package account_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	apperrors "github.com/frahmantamala/user-management/internal"
	"github.com/frahmantamala/user-management/internal/account"
	accountPostgres "github.com/frahmantamala/user-management/internal/account/postgres"
	coreaccount "github.com/frahmantamala/user-management/internal/core/account"
	"github.com/frahmantamala/user-management/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Account Handler", func() {
	var (
		handler *account.Handler
		service *account.Service
		admin   *coreaccount.Account
		now     time.Time
	)

	BeforeEach(func() {
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		now = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
		service = account.NewService(accountPostgres.NewAccountRepository(openTestDB()), fakeHasher{}, nil, time.Hour, lg).
			WithClock(func() time.Time { return now })
		handler = account.NewHandler(transport.NewBaseHandler(lg), service)

		var err error
		admin, err = service.RegisterAdmin(context.Background(), registration("hr@x.com", "HR"))
		Expect(err).NotTo(HaveOccurred())
	})

	serve := func(h http.HandlerFunc, method, target, body string, actor *coreaccount.Account) *httptest.ResponseRecorder {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, target, reader)
		if actor != nil {
			req = req.WithContext(apperrors.ContextWithAccount(req.Context(), actor))
		}
		rec := httptest.NewRecorder()
		h(rec, req)
		return rec
	}

	decode := func(rec *httptest.ResponseRecorder) map[string]interface{} {
		var out map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &out)).To(Succeed())
		return out
	}

	Describe("RegisterAdmin", func() {
		It("returns 201 with the account view", func() {
			body := `{"userFirstName":"A","userLastName":"B","designation":"HR","password":"secret1","email":"hr2@x.com","phoneNumber":"0812345678"}`
			rec := serve(handler.RegisterAdmin, http.MethodPost, "/user/admin/registration", body, nil)

			Expect(rec.Code).To(Equal(http.StatusCreated))
			out := decode(rec)
			Expect(out["email"]).To(Equal("hr2@x.com"))
			Expect(out["isSuperUser"]).To(BeTrue())
			Expect(out).NotTo(HaveKey("passwordHash"))
		})

		It("rejects unknown fields", func() {
			body := `{"userFirstName":"A","userLastName":"B","designation":"HR","password":"secret1","email":"hr2@x.com","phoneNumber":"0812345678","role":"root"}`
			rec := serve(handler.RegisterAdmin, http.MethodPost, "/user/admin/registration", body, nil)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(decode(rec)["error"]).To(HaveKeyWithValue("code", string(apperrors.ErrCodeInvalidField)))
		})

		It("returns 409 for a registered email", func() {
			body := `{"userFirstName":"A","userLastName":"B","designation":"HR","password":"secret1","email":"hr@x.com","phoneNumber":"0812345678"}`
			rec := serve(handler.RegisterAdmin, http.MethodPost, "/user/admin/registration", body, nil)
			Expect(rec.Code).To(Equal(http.StatusConflict))
		})

		It("returns 403 for non HR designations", func() {
			body := `{"userFirstName":"A","userLastName":"B","designation":"Sales","password":"secret1","email":"s@x.com","phoneNumber":"0812345678"}`
			rec := serve(handler.RegisterAdmin, http.MethodPost, "/user/admin/registration", body, nil)
			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})

		It("requires a body", func() {
			rec := serve(handler.RegisterAdmin, http.MethodPost, "/user/admin/registration", "", nil)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("CreateEmployee", func() {
		It("wraps the created employee in a message", func() {
			body := `{"userFirstName":"E","userLastName":"M","designation":"Engineer","password":"secret1","email":"e@x.com","phoneNumber":"0812345678"}`
			rec := serve(handler.CreateEmployee, http.MethodPost, "/user/employee/creation", body, admin)

			Expect(rec.Code).To(Equal(http.StatusCreated))
			out := decode(rec)
			Expect(out["message"]).To(Equal("Employee created successfully"))
			Expect(out["employee"]).To(HaveKeyWithValue("email", "e@x.com"))
		})

		It("returns 401 without a caller", func() {
			rec := serve(handler.CreateEmployee, http.MethodPost, "/user/employee/creation", `{}`, nil)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(rec.Header().Get("WWW-Authenticate")).To(Equal("Bearer"))
		})
	})

	Describe("ListInactive", func() {
		It("rejects a malformed admin flag", func() {
			rec := serve(handler.ListInactive, http.MethodGet, "/user/admin/views/all/not/active/admin/employee/details?admin=maybe", "", admin)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 404 when nothing matches", func() {
			rec := serve(handler.ListInactive, http.MethodGet, "/user/admin/views/all/not/active/admin/employee/details?admin=true", "", admin)
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("Deactivate", func() {
		It("reports the scheduled deletion", func() {
			emp, err := service.CreateEmployee(context.Background(), registration("e@x.com", "Engineer"), admin)
			Expect(err).NotTo(HaveOccurred())

			rec := serve(handler.Deactivate, http.MethodDelete, "/user/admin/employee/deletion?adminOrEmployeeEmail="+emp.Email, "", admin)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var out account.DeactivatedResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &out)).To(Succeed())
			Expect(out.Email).To(Equal("e@x.com"))
			Expect(out.ScheduledDeletion.Equal(now.Add(time.Hour))).To(BeTrue())
		})

		It("returns 400 without a target", func() {
			rec := serve(handler.Deactivate, http.MethodDelete, "/user/admin/employee/deletion", "", admin)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("UpdateAdminProfile", func() {
		It("clears the address on an explicit null and leaves it on an absent key", func() {
			rec := serve(handler.UpdateAdminProfile, http.MethodPatch, "/user/admin/profile/update", `{"address":"Jl. Merdeka 1"}`, admin)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(decode(rec)).To(HaveKeyWithValue("address", "Jl. Merdeka 1"))

			rec = serve(handler.UpdateAdminProfile, http.MethodPatch, "/user/admin/profile/update", `{"userFirstName":"Hana"}`, admin)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(decode(rec)).To(HaveKeyWithValue("address", "Jl. Merdeka 1"))

			rec = serve(handler.UpdateAdminProfile, http.MethodPatch, "/user/admin/profile/update", `{"address":null}`, admin)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(decode(rec)).To(HaveKeyWithValue("address", BeNil()))
		})

		It("returns 400 for an empty object", func() {
			rec := serve(handler.UpdateAdminProfile, http.MethodPatch, "/user/admin/profile/update", `{}`, admin)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(decode(rec)["error"]).To(HaveKeyWithValue("code", string(apperrors.ErrCodeValidationFailed)))
		})
	})

	Describe("ListAdmins", func() {
		It("lists admins for admins", func() {
			rec := serve(handler.ListAdmins, http.MethodGet, "/user/all/admin/details/views", "", admin)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var out account.ListResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &out)).To(Succeed())
			Expect(out.Accounts).To(HaveLen(1))
			Expect(out.Accounts[0].Email).To(Equal("hr@x.com"))
		})
	})
})
