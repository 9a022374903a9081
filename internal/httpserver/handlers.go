package httpserver

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/cyclekeeper/internal/services"
	"github.com/dmitrijs2005/cyclekeeper/internal/telegram"
	"github.com/julienschmidt/httprouter"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "running"})
}

// webhook acknowledges every well-formed update with 200 so Telegram does
// not redeliver it; handling failures are logged instead.
func (h *handlers) webhook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()

	if h.opts.WebhookSecret != "" {
		got := r.Header.Get(telegram.SecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.opts.WebhookSecret)) != 1 {
			h.log.Warn(ctx, "webhook secret mismatch", "remote", r.RemoteAddr)
			writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false})
			return
		}
	}

	var update telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.log.Debug(ctx, "bad update body", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false})
		return
	}

	switch {
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		cq := update.CallbackQuery
		if err := h.updates.HandleCallback(ctx, cq.ID, cq.Message.Chat.ID, cq.Message.MessageID, cq.Data); err != nil {
			h.log.Error(ctx, "callback failed", "update_id", update.UpdateID, "chat_id", cq.Message.Chat.ID, "error", err)
		}
	case update.Message != nil && strings.TrimSpace(update.Message.Text) != "":
		m := update.Message
		if err := h.updates.HandleMessage(ctx, m.Chat.ID, m.Text); err != nil {
			h.log.Error(ctx, "message failed", "update_id", update.UpdateID, "chat_id", m.Chat.ID, "error", err)
		}
	default:
		h.log.Debug(ctx, "update ignored", "update_id", update.UpdateID)
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type cronResponse struct {
	OK bool `json:"ok"`
	services.TickReport
	Error string `json:"error,omitempty"`
}

func (h *handlers) cron(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	report, err := h.ticker.Tick(r.Context(), h.opts.Now())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, cronResponse{OK: false, TickReport: report, Error: "tick failed"})
		return
	}
	writeJSON(w, http.StatusOK, cronResponse{OK: true, TickReport: report})
}

func (h *handlers) setup(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	base := strings.TrimRight(r.URL.Query().Get("url"), "/")
	if base == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "missing url parameter"})
		return
	}

	desc, err := h.setter.SetWebhook(r.Context(), base+"/webhook", h.opts.WebhookSecret)
	if err != nil {
		h.log.Error(r.Context(), "setWebhook failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]any{"ok": false, "error": "setWebhook failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "webhook": base + "/webhook", "description": desc})
}
