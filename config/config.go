package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// MaxBatchSize is the most overrides a single marking write may touch.
const MaxBatchSize = 500

// Config holds every runtime setting of the backend.
type Config struct {
	Port   string
	AppEnv string
	DBURL  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Billing BillingConfig
	Twilio  TwilioConfig

	BillLinkSecret   string
	BillLinkTTL      time.Duration
	PublicBaseURL    string
	CORSAllowOrigins []string

	LogLevel  string
	LogFormat string
}

// BillingConfig controls period resolution, batching and the periodic run.
type BillingConfig struct {
	Timezone     string
	LookbackDays int
	BatchSize    int
	Cron         string
	LockTTL      time.Duration
}

type TwilioConfig struct {
	AccountSID     string
	AuthToken      string
	PhoneNumber    string
	WhatsAppNumber string
}

// Enabled reports whether enough credentials are present to send messages.
func (t TwilioConfig) Enabled() bool {
	return t.AccountSID != "" && t.AuthToken != ""
}

// IsProduction reports whether the app runs with production defaults.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Location returns the billing timezone, falling back to UTC when unknown.
func (b BillingConfig) Location() *time.Location {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("BILLING_TIMEZONE", "Asia/Kolkata")
	v.SetDefault("BILLING_LOOKBACK_DAYS", 30)
	v.SetDefault("BILLING_BATCH_SIZE", 500)
	v.SetDefault("BILLING_LOCK_TTL", "2m")
	v.SetDefault("BILL_LINK_TTL_HOURS", 720)
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:3000")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "")
}

// LoadEnvFile loads a .env file into the process environment if present.
func LoadEnvFile(paths ...string) error {
	return godotenv.Load(paths...)
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	lockTTL, err := time.ParseDuration(v.GetString("BILLING_LOCK_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid BILLING_LOCK_TTL: %w", err)
	}

	cfg := &Config{
		Port:          v.GetString("PORT"),
		AppEnv:        v.GetString("APP_ENV"),
		DBURL:         v.GetString("DB_URL"),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		Billing: BillingConfig{
			Timezone:     v.GetString("BILLING_TIMEZONE"),
			LookbackDays: v.GetInt("BILLING_LOOKBACK_DAYS"),
			BatchSize:    v.GetInt("BILLING_BATCH_SIZE"),
			Cron:         v.GetString("BILLING_CRON"),
			LockTTL:      lockTTL,
		},
		Twilio: TwilioConfig{
			AccountSID:     v.GetString("TWILIO_ACCOUNT_SID"),
			AuthToken:      v.GetString("TWILIO_AUTH_TOKEN"),
			PhoneNumber:    v.GetString("TWILIO_PHONE_NUMBER"),
			WhatsAppNumber: v.GetString("TWILIO_WHATSAPP_NUMBER"),
		},
		BillLinkSecret:   v.GetString("BILL_LINK_SECRET"),
		BillLinkTTL:      time.Duration(v.GetInt("BILL_LINK_TTL_HOURS")) * time.Hour,
		PublicBaseURL:    strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
		CORSAllowOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		LogLevel:         v.GetString("LOG_LEVEL"),
		LogFormat:        v.GetString("LOG_FORMAT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail much later.
func (c *Config) Validate() error {
	if c.Billing.LookbackDays <= 0 {
		return fmt.Errorf("BILLING_LOOKBACK_DAYS must be positive, got %d", c.Billing.LookbackDays)
	}
	if c.Billing.BatchSize <= 0 || c.Billing.BatchSize > MaxBatchSize {
		return fmt.Errorf("BILLING_BATCH_SIZE must be between 1 and %d, got %d", MaxBatchSize, c.Billing.BatchSize)
	}
	if _, err := time.LoadLocation(c.Billing.Timezone); err != nil {
		return fmt.Errorf("invalid BILLING_TIMEZONE %q: %w", c.Billing.Timezone, err)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
