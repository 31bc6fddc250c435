package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BILLING_TIMEZONE", "Asia/Kolkata")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30, cfg.Billing.LookbackDays)
	assert.Equal(t, 500, cfg.Billing.BatchSize)
	assert.Equal(t, 2*time.Minute, cfg.Billing.LockTTL)
	assert.Equal(t, 720*time.Hour, cfg.BillLinkTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowOrigins)
	assert.False(t, cfg.Twilio.Enabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BILLING_BATCH_SIZE", "100")
	t.Setenv("BILLING_CRON", "0 6 1 * *")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("PUBLIC_BASE_URL", "https://dash.example/")
	t.Setenv("TWILIO_ACCOUNT_SID", "AC123")
	t.Setenv("TWILIO_AUTH_TOKEN", "token")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 100, cfg.Billing.BatchSize)
	assert.Equal(t, "0 6 1 * *", cfg.Billing.Cron)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigins)
	assert.Equal(t, "https://dash.example", cfg.PublicBaseURL)
	assert.True(t, cfg.Twilio.Enabled())
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad lock ttl", "BILLING_LOCK_TTL", "soon"},
		{"zero batch size", "BILLING_BATCH_SIZE", "0"},
		{"batch size above limit", "BILLING_BATCH_SIZE", "501"},
		{"negative lookback", "BILLING_LOOKBACK_DAYS", "-1"},
		{"unknown timezone", "BILLING_TIMEZONE", "Mars/Olympus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestBillingConfig_Location(t *testing.T) {
	assert.Equal(t, time.UTC, BillingConfig{Timezone: "nowhere"}.Location())
	assert.Equal(t, "Asia/Kolkata", BillingConfig{Timezone: "Asia/Kolkata"}.Location().String())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "debug", parseLevel("DEBUG").String())
	assert.Equal(t, "warn", parseLevel("warning").String())
	assert.Equal(t, "error", parseLevel("error").String())
	assert.Equal(t, "info", parseLevel("").String())
}
