package router

import (
	"context"
	"errors"
	"net/http"

	"givehub-backend/internal/application/account"
	"givehub-backend/internal/application/guard"
	"givehub-backend/internal/application/notify"
	orgsvc "givehub-backend/internal/application/org"
	paysvc "givehub-backend/internal/application/payments"
	"givehub-backend/internal/application/recurrence"
	"givehub-backend/internal/application/tokens"
	"givehub-backend/internal/config"
	"givehub-backend/internal/infrastructure/database"
	adminhandler "givehub-backend/internal/interfaces/handlers/admin"
	authhandler "givehub-backend/internal/interfaces/handlers/auth"
	donationhandler "givehub-backend/internal/interfaces/handlers/donations"
	healthhandler "givehub-backend/internal/interfaces/handlers/health"
	orghandler "givehub-backend/internal/interfaces/handlers/organizations"
	payhandler "givehub-backend/internal/interfaces/handlers/payments"
	"givehub-backend/internal/middleware"
	"givehub-backend/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// App is the wired service: the Fiber app plus the background workers it depends on.
type App struct {
	Fiber         *fiber.App
	DB            *gorm.DB
	Rdb           *redis.Client
	Notifications *notify.Dispatcher
	Sweeper       *recurrence.Sweeper
}

// Start launches the notification worker and, when configured, the recurrence sweeper.
// The sweeper stops when ctx is cancelled.
func (a *App) Start(ctx context.Context) {
	a.Notifications.Start()
	go a.Sweeper.Run(ctx)
}

// Close drains queued notifications and releases the Redis and database connections.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.Notifications.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := a.Rdb.Close(); err != nil {
		errs = append(errs, err)
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// newSender picks Brevo, then Mailgun, then log-only. Tests swap it.
var newSender = func(cfg *config.Config) notify.Sender {
	switch {
	case cfg.SendinblueAPIKey != "":
		return &notify.BrevoClient{APIKey: cfg.SendinblueAPIKey, MailFrom: cfg.MailFrom}
	case cfg.MailgunDomain != "" && cfg.MailgunAPIKey != "":
		return notify.NewMailgunClient(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailFrom, "")
	}
	log.Warn().Msg("no mail provider configured, notifications are only logged")
	return notify.LogSender{}
}

func CreateApp(cfg *config.Config) (*App, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)

	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler(rdb),
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	dispatcher := notify.NewDispatcher(newSender(cfg), rdb, cfg.NotifyQueueSize)
	roles := &guard.Guard{DB: db}
	donations := &recurrence.Service{DB: db}
	payments := &paysvc.Service{
		DB:        db,
		Donations: donations,
		Intents:   &paysvc.StripeCreator{SecretKey: cfg.StripeSecretKey},
		Currency:  cfg.PaymentCurrency,
	}

	// Stripe needs the raw body, so the webhook is mounted before the session.
	ph := &payhandler.Handlers{Service: payments, WebhookSecret: cfg.StripeWebhookSecret}
	app.Post("/api/v1/stripe/webhook", ph.Webhook)

	app.Use(middleware.Session(rdb))
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	hh := &healthhandler.Handlers{Rdb: rdb, DB: sqlDB, HealthAdminKey: cfg.HealthAdminKey}
	app.Get("/", hh.Dashboard)
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	sessionCfg := middleware.SessionConfig{
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}
	accounts := &account.Service{
		DB:              db,
		Guard:           roles,
		Notifier:        dispatcher,
		Tokens:          &tokens.RedisStore{Rdb: rdb},
		ResetBaseURL:    cfg.ResetBaseURL,
		ResetTokenTTL:   cfg.ResetTokenTTL,
		RegistrarRole:   cfg.AdminRegistrarRole,
		SuperadminEmail: cfg.SuperadminNotifyEmail,
	}

	ah := &authhandler.Handlers{Accounts: accounts, Rdb: rdb, Config: sessionCfg}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/register", ah.Register)
	authGroup.Post("/login", ah.Login)
	authGroup.Post("/organizations/login", ah.OrganizationLogin)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", ah.Logout)
	authGroup.Post("/forgot-password", ah.ForgotPassword)
	authGroup.Put("/reset-password/:token", ah.ResetPassword)

	oh := &orghandler.Handlers{Service: &orgsvc.Service{
		DB:           db,
		Guard:        roles,
		Notifier:     dispatcher,
		AdminEmail:   cfg.AdminNotifyEmail,
		ApproverRole: cfg.ApproverRole,
	}}
	app.Post("/api/v1/organizations/register", oh.Submit)

	adh := &adminhandler.Handlers{Accounts: accounts}
	admin := app.Group("/api/v1/admin", middleware.RequireAuth())
	admin.Post("/admins", middleware.AuthorizePermission(constants.ManageAdmins), adh.RegisterAdmin)
	review := admin.Group("/organizations", middleware.AuthorizePermission(constants.ReviewOrganizations))
	review.Get("/", oh.ListPending)
	review.Get("/:id", oh.Get)
	review.Post("/:id/approve", oh.Approve)
	review.Post("/:id/reject", oh.Reject)

	sweeper := &recurrence.Sweeper{Service: donations, Interval: cfg.RecurrenceSweepInterval}
	dh := &donationhandler.Handlers{Service: donations, Sweeper: sweeper, Guard: roles}
	dg := app.Group("/api/v1/donations", middleware.RequireAuth())
	dg.Post("/", middleware.AuthorizePermission(constants.Donate), dh.Create)
	dg.Get("/", middleware.AuthorizePermission(constants.ViewDonations), dh.List)
	dg.Post("/checkout", middleware.AuthorizePermission(constants.Donate), ph.Checkout)
	dg.Post("/sweep", middleware.AuthorizePermission(constants.RunRecurrence), dh.Sweep)
	dg.Get("/:id", middleware.AuthorizePermission(constants.ViewDonations), dh.Get)
	dg.Post("/:id/advance", middleware.AuthorizePermission(constants.RunRecurrence), dh.Advance)

	return &App{
		Fiber:         app,
		DB:            db,
		Rdb:           rdb,
		Notifications: dispatcher,
		Sweeper:       sweeper,
	}, nil
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
