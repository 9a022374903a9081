package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv loads an optional .env file into the process environment and then
// overlays every variable that is set. Malformed numbers panic, like a
// malformed JSON file does.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		if v[0] != ':' {
			v = ":" + v
		}
		config.HTTPAddr = v
	}
	str("GRPC_ADDR", &config.GRPCAddr)
	str("DATABASE_URL", &config.DatabaseDSN)
	str("BOT_TOKEN", &config.TelegramToken)
	str("TELEGRAM_API_URL", &config.TelegramAPIURL)
	str("WEBHOOK_SECRET", &config.WebhookSecret)
	str("TIMEZONE", &config.Timezone)
	str("CRON_SECRET", &config.CronSecret)
	str("LOG_LEVEL", &config.LogLevel)
	str("S3_ACCESS_KEY", &config.S3AccessKey)
	str("S3_SECRET_KEY", &config.S3SecretKey)
	str("S3_BUCKET", &config.S3Bucket)
	str("S3_REGION", &config.S3Region)
	str("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)

	if v := os.Getenv("OWNER_CHAT_ID"); v != "" {
		config.OwnerChatID = mustInt64("OWNER_CHAT_ID", v)
	}
	if v := os.Getenv("HISTORY_WINDOW"); v != "" {
		config.HistoryWindow = int(mustInt64("HISTORY_WINDOW", v))
	}
	if v := os.Getenv("INTERNAL_SCHEDULER"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(fmt.Errorf("INTERNAL_SCHEDULER: %w", err))
		}
		config.InternalScheduler = b
	}
	if v := os.Getenv("CRON_TOKEN_TTL"); v != "" {
		config.CronTokenTTL = mustDuration("CRON_TOKEN_TTL", v)
	}
	if v := os.Getenv("EXPORT_LINK_TTL"); v != "" {
		config.ExportLinkTTL = mustDuration("EXPORT_LINK_TTL", v)
	}
}

func mustInt64(key, v string) int64 {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	return n
}

func mustDuration(key, v string) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	return d
}
