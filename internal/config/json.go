package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/cyclekeeper/internal/flagx"
	"github.com/dmitrijs2005/cyclekeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON config file. Zero
// values leave the corresponding Config field untouched, so a file only
// needs the keys it wants to change.
type JsonConfig struct {
	HTTPAddr          string         `json:"http_addr"`
	GRPCAddr          string         `json:"grpc_addr"`
	DatabaseDSN       string         `json:"database_dsn"`
	TelegramToken     string         `json:"telegram_token"`
	TelegramAPIURL    string         `json:"telegram_api_url"`
	WebhookSecret     string         `json:"webhook_secret"`
	OwnerChatID       int64          `json:"owner_chat_id"`
	Timezone          string         `json:"timezone"`
	CronSecret        string         `json:"cron_secret"`
	CronTokenTTL      timex.Duration `json:"cron_token_ttl"`
	InternalScheduler *bool          `json:"internal_scheduler"`
	HistoryWindow     int            `json:"history_window"`
	LogLevel          string         `json:"log_level"`
	S3AccessKey       string         `json:"s3_access_key"`
	S3SecretKey       string         `json:"s3_secret_key"`
	S3Bucket          string         `json:"s3_bucket"`
	S3Region          string         `json:"s3_region"`
	S3BaseEndpoint    string         `json:"s3_base_endpoint"`
	ExportLinkTTL     timex.Duration `json:"export_link_ttl"`
}

// parseJson loads the file named by -c/-config in args, if any, and copies
// its non-zero values into config. An unreadable or invalid file panics.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigFile(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setStr := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	setStr(&config.HTTPAddr, c.HTTPAddr)
	setStr(&config.GRPCAddr, c.GRPCAddr)
	setStr(&config.DatabaseDSN, c.DatabaseDSN)
	setStr(&config.TelegramToken, c.TelegramToken)
	setStr(&config.TelegramAPIURL, c.TelegramAPIURL)
	setStr(&config.WebhookSecret, c.WebhookSecret)
	setStr(&config.Timezone, c.Timezone)
	setStr(&config.CronSecret, c.CronSecret)
	setStr(&config.LogLevel, c.LogLevel)
	setStr(&config.S3AccessKey, c.S3AccessKey)
	setStr(&config.S3SecretKey, c.S3SecretKey)
	setStr(&config.S3Bucket, c.S3Bucket)
	setStr(&config.S3Region, c.S3Region)
	setStr(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.OwnerChatID != 0 {
		config.OwnerChatID = c.OwnerChatID
	}
	if c.HistoryWindow != 0 {
		config.HistoryWindow = c.HistoryWindow
	}
	if c.InternalScheduler != nil {
		config.InternalScheduler = *c.InternalScheduler
	}
	if c.CronTokenTTL.Duration != 0 {
		config.CronTokenTTL = c.CronTokenTTL.Duration
	}
	if c.ExportLinkTTL.Duration != 0 {
		config.ExportLinkTTL = c.ExportLinkTTL.Duration
	}
}
