package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/user-management/internal/account"
	"github.com/frahmantamala/user-management/internal/auth"
	coreaccount "github.com/frahmantamala/user-management/internal/core/account"
	"github.com/frahmantamala/user-management/internal/transport/middleware"
	"github.com/frahmantamala/user-management/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

type RouterConfig struct {
	AllowedOrigins []string
	// OpenAPI is served at /openapi.json and drives the Swagger UI. Optional.
	OpenAPI http.Handler
}

func RegisterAllRoutes(router *chi.Mux, db Pinger, authHandler *auth.Handler, accountHandler *account.Handler, cfg RouterConfig, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/health", healthHandler.Health)
	router.Get("/ping", healthHandler.Ping)

	if cfg.OpenAPI != nil {
		router.Method(http.MethodGet, swagger.SpecPath, cfg.OpenAPI)
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/user", func(r chi.Router) {
		r.Post("/admin/registration", accountHandler.RegisterAdmin)
		r.Post("/login", authHandler.Login)

		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)
			pr.Use(middleware.AccountContext)

			pr.Post("/logout", authHandler.Logout)
			pr.Patch("/employee/profile/update", accountHandler.UpdateEmployeeProfile)

			pr.With(middleware.RequireRole(logger, coreaccount.RoleEmployee)).
				Get("/employee/details", accountHandler.EmployeeDetails)

			pr.Group(func(ar chi.Router) {
				ar.Use(middleware.RequireRole(logger, coreaccount.RoleAdmin))

				ar.Post("/employee/creation", accountHandler.CreateEmployee)
				ar.Get("/admin/details", accountHandler.AdminDetails)
				ar.Get("/all/admin/details/views", accountHandler.ListAdmins)
				ar.Get("/admin/views/employee/details", accountHandler.ListEmployees)
				ar.Get("/admin/views/all/not/active/admin/employee/details", accountHandler.ListInactive)
				ar.Patch("/admin/profile/update", accountHandler.UpdateAdminProfile)
				ar.Delete("/admin/employee/deletion", accountHandler.Deactivate)
			})
		})
	})
}
