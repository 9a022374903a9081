// Package httpserver exposes the bot over HTTP: the Telegram webhook, the
// minute trigger, webhook registration and a liveness probe.
package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/cyclekeeper/internal/logging"
	"github.com/dmitrijs2005/cyclekeeper/internal/services"
	"github.com/julienschmidt/httprouter"
)

// UpdateHandler consumes decoded webhook updates.
type UpdateHandler interface {
	HandleMessage(ctx context.Context, chatID int64, text string) error
	HandleCallback(ctx context.Context, callbackID string, chatID, messageID int64, data string) error
}

// Ticker runs one dispatcher pass.
type Ticker interface {
	Tick(ctx context.Context, now time.Time) (services.TickReport, error)
}

// WebhookSetter registers the public webhook URL with Telegram.
type WebhookSetter interface {
	SetWebhook(ctx context.Context, url, secret string) (string, error)
}

type Options struct {
	WebhookSecret string
	CronSecret    string
	Now           func() time.Time
}

type handlers struct {
	updates UpdateHandler
	ticker  Ticker
	setter  WebhookSetter
	opts    Options
	log     logging.Logger
}

func New(u UpdateHandler, t Ticker, s WebhookSetter, opts Options, log logging.Logger) http.Handler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	h := &handlers{updates: u, ticker: t, setter: s, opts: opts, log: log.With("module", "http")}

	r := httprouter.New()

	r.GET("/", h.health)

	// Telegram webhook, checked by secret header instead of a token.
	r.POST("/webhook", h.webhook)

	protected := func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
			Auth(opts.CronSecret, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next(w, r, p)
			})).ServeHTTP(w, r)
		}
	}

	r.GET("/cron", protected(h.cron))
	r.POST("/cron", protected(h.cron))
	r.GET("/setup", protected(h.setup))

	return r
}
