package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://x")
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("OWNER_CHAT_ID", "555")
	t.Setenv("TIMEZONE", "Europe/Riga")
	t.Setenv("INTERNAL_SCHEDULER", "true")
	t.Setenv("HISTORY_WINDOW", "30")
	t.Setenv("CRON_TOKEN_TTL", "2h")
	t.Setenv("S3_BUCKET", "exports")

	c := &Config{}
	c.LoadDefaults()
	parseEnv(c)

	assert.Equal(t, ":9000", c.HTTPAddr)
	assert.Equal(t, "postgres://x", c.DatabaseDSN)
	assert.Equal(t, "123:abc", c.TelegramToken)
	assert.Equal(t, int64(555), c.OwnerChatID)
	assert.Equal(t, "Europe/Riga", c.Timezone)
	assert.True(t, c.InternalScheduler)
	assert.Equal(t, 30, c.HistoryWindow)
	assert.Equal(t, 2*time.Hour, c.CronTokenTTL)
	assert.Equal(t, "exports", c.S3Bucket)
	assert.Equal(t, "https://api.telegram.org", c.TelegramAPIURL, "unset keys keep defaults")
}

func TestParseEnv_MalformedPanics(t *testing.T) {
	t.Setenv("OWNER_CHAT_ID", "me")
	c := &Config{}
	require.Panics(t, func() { parseEnv(c) })
}
