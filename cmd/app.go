package cmd

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/user-management/api"
	"github.com/frahmantamala/user-management/internal"
	"github.com/frahmantamala/user-management/internal/account"
	accountPostgres "github.com/frahmantamala/user-management/internal/account/postgres"
	"github.com/frahmantamala/user-management/internal/auth"
	authPostgres "github.com/frahmantamala/user-management/internal/auth/postgres"
	"github.com/frahmantamala/user-management/internal/core/events"
	"github.com/frahmantamala/user-management/internal/scheduler"
	"github.com/frahmantamala/user-management/internal/session"
	sessionPostgres "github.com/frahmantamala/user-management/internal/session/postgres"
	"github.com/frahmantamala/user-management/internal/transport"
	"github.com/frahmantamala/user-management/internal/transport/rest"
	"github.com/frahmantamala/user-management/internal/transport/swagger"
	"github.com/go-chi/chi"
	"gorm.io/gorm"
)

const (
	JobSessionReconciliation = "session-reconciliation"
	JobAccountPurge          = "account-purge"
)

// App holds the services shared by the server, the worker and the seeder.
type App struct {
	Config   *internal.Config
	Logger   *slog.Logger
	Bus      *events.EventBus
	Sessions *session.Service
	Auth     *auth.Service
	Accounts *account.Service
}

// NewApp wires repositories and services over an open gorm handle.
func NewApp(cfg *internal.Config, db *gorm.DB, lg *slog.Logger) *App {
	bus := events.NewEventBus(lg)
	bus.Subscribe(events.Wildcard, events.AuditLogger(lg))

	ttl := cfg.Security.AccessTokenDuration
	hasher := auth.NewBcryptHasher(cfg.Security.BCryptCost)
	tokens := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, ttl)

	sessions := session.NewService(sessionPostgres.NewSessionRepository(db), ttl, bus, lg)
	authService := auth.NewService(authPostgres.NewRepository(db), tokens, hasher, sessions, ttl, lg)
	accounts := account.NewService(accountPostgres.NewAccountRepository(db), hasher, bus, cfg.Lifecycle.DeletionGracePeriod, lg)

	return &App{
		Config:   cfg,
		Logger:   lg,
		Bus:      bus,
		Sessions: sessions,
		Auth:     authService,
		Accounts: accounts,
	}
}

// Router builds the HTTP surface. db answers the readiness probe.
func (a *App) Router(ctx context.Context, db rest.Pinger) (*chi.Mux, error) {
	doc, err := swagger.Load(ctx, api.OpenAPISpec)
	if err != nil {
		return nil, err
	}

	base := transport.NewBaseHandler(a.Logger)
	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db,
		auth.NewHandler(base, a.Auth),
		account.NewHandler(base, a.Accounts),
		rest.RouterConfig{
			AllowedOrigins: a.Config.Server.AllowedOriginList(),
			OpenAPI:        http.Handler(doc),
		},
		a.Logger,
	)
	return router, nil
}

// Scheduler returns the sweeps on the configured intervals.
func (a *App) Scheduler() *scheduler.Scheduler {
	return a.SchedulerWithIntervals(a.Config.Lifecycle)
}

func (a *App) SchedulerWithIntervals(lc internal.LifecycleConfig) *scheduler.Scheduler {
	return scheduler.New(a.Logger,
		scheduler.Job{
			Name:     JobSessionReconciliation,
			Interval: lc.SessionSweepInterval,
			Run:      a.reconcileSessions,
		},
		scheduler.Job{
			Name:     JobAccountPurge,
			Interval: lc.PurgeSweepInterval,
			Run:      a.purgeAccounts,
		},
	)
}

func (a *App) reconcileSessions(ctx context.Context) error {
	_, err := a.Sessions.ReconcileExpired(ctx)
	return err
}

func (a *App) purgeAccounts(ctx context.Context) error {
	_, err := a.Accounts.PurgeExpired(ctx)
	return err
}

// Close waits for in-flight event handlers.
func (a *App) Close() {
	a.Bus.Drain()
}
