package config

import (
	"flag"

	"github.com/dmitrijs2005/cyclekeeper/internal/flagx"
)

var knownFlags = []string{"-a", "-g", "-d", "-t", "-o", "-z", "-s", "-l", "-w", "-b", "-e", "-r", "-u", "-p"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-g string   gRPC health bind address
//	-d string   PostgreSQL DSN
//	-t string   Telegram bot token
//	-o int      owner chat id
//	-z string   timezone (IANA name)
//	-s string   HS256 secret for trigger tokens
//	-l string   log level
//	-w int      default history window
//	-b string   S3 bucket
//	-e string   S3 base endpoint
//	-r string   S3 region
//	-u string   S3 access key
//	-p string   S3 secret key
//
// Arguments are filtered through flagx.FilterArgs first, so subcommands and
// flags owned by other parsers are ignored.
func parseFlags(config *Config, args []string) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run the HTTP server")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "address and port of the gRPC health endpoint")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.TelegramToken, "t", config.TelegramToken, "telegram bot token")
	fs.Int64Var(&config.OwnerChatID, "o", config.OwnerChatID, "owner chat id")
	fs.StringVar(&config.Timezone, "z", config.Timezone, "timezone")
	fs.StringVar(&config.CronSecret, "s", config.CronSecret, "trigger token secret")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.IntVar(&config.HistoryWindow, "w", config.HistoryWindow, "history window (entries)")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3Region, "r", config.S3Region, "S3 region")
	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		panic(err)
	}
}
