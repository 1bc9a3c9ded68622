package config

import (
	"os"
	"strings"
	"time"

	"givehub-backend/internal/pkg/constants"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	SessionSecret       string
	DatabaseURL         string // postgres DSN, or sqlite:<path> for local runs
	RedisURL            string
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	HealthAdminKey      string

	SendinblueAPIKey string // Brevo transactional email; takes precedence over Mailgun
	MailFrom         string
	MailgunDomain    string
	MailgunAPIKey    string
	NotifyQueueSize  int

	AdminNotifyEmail      string // receives new organization requests
	SuperadminNotifyEmail string // receives admin registration notices
	ApproverRole          string // role required to approve/reject organizations
	AdminRegistrarRole    string // role required to register admins

	ResetBaseURL  string
	ResetTokenTTL time.Duration

	RecurrenceSweepInterval time.Duration // 0 disables the in-process sweeper

	StripeSecretKey     string
	StripeWebhookSecret string
	PaymentCurrency     string
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("NOTIFY_QUEUE_SIZE", 256)
	viper.SetDefault("ADMIN_NOTIFY_EMAIL", "admin@givehub.org")
	viper.SetDefault("SUPERADMIN_NOTIFY_EMAIL", "superadmin@givehub.org")
	viper.SetDefault("APPROVER_ROLE", constants.Admin)
	viper.SetDefault("ADMIN_REGISTRAR_ROLE", constants.Superadmin)
	viper.SetDefault("RESET_BASE_URL", "http://127.0.0.1:8080/reset-password")
	viper.SetDefault("RESET_TOKEN_TTL", "1h")
	viper.SetDefault("RECURRENCE_SWEEP_INTERVAL", "0s")
	viper.SetDefault("PAYMENT_CURRENCY", "usd")

	dbURL := viper.GetString("DATABASE_URL")
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL_DEV")
	}

	return &Config{
		Env:                     viper.GetString("APP_ENV"),
		Port:                    viper.GetString("PORT"),
		SessionSecret:           viper.GetString("SESSION_SECRET"),
		DatabaseURL:             dbURL,
		RedisURL:                viper.GetString("REDIS_URL"),
		FrontendURLEndsWith:     viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:             viper.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:       strings.EqualFold(viper.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		HealthAdminKey:          viper.GetString("HEALTH_ADMIN_KEY"),
		SendinblueAPIKey:        viper.GetString("SENDINBLUE_API_KEY"),
		MailFrom:                viper.GetString("MAIL_FROM"),
		MailgunDomain:           viper.GetString("MAILGUN_DOMAIN"),
		MailgunAPIKey:           viper.GetString("MAILGUN_API_KEY"),
		NotifyQueueSize:         viper.GetInt("NOTIFY_QUEUE_SIZE"),
		AdminNotifyEmail:        viper.GetString("ADMIN_NOTIFY_EMAIL"),
		SuperadminNotifyEmail:   viper.GetString("SUPERADMIN_NOTIFY_EMAIL"),
		ApproverRole:            viper.GetString("APPROVER_ROLE"),
		AdminRegistrarRole:      viper.GetString("ADMIN_REGISTRAR_ROLE"),
		ResetBaseURL:            strings.TrimRight(strings.TrimSpace(viper.GetString("RESET_BASE_URL")), "/"),
		ResetTokenTTL:           viper.GetDuration("RESET_TOKEN_TTL"),
		RecurrenceSweepInterval: viper.GetDuration("RECURRENCE_SWEEP_INTERVAL"),
		StripeSecretKey:         viper.GetString("STRIPE_SECRET_KEY"),
		StripeWebhookSecret:     viper.GetString("STRIPE_WEBHOOK_SECRET"),
		PaymentCurrency:         strings.ToLower(viper.GetString("PAYMENT_CURRENCY")),
	}, nil
}
