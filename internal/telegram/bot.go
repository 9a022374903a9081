// Package telegram is a minimal Bot API client covering the calls the bot
// makes, plus the webhook update types it receives.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/cyclekeeper/internal/common"
	"github.com/dmitrijs2005/cyclekeeper/internal/models"
)

type Bot struct {
	token   string
	baseURL string
	client  *http.Client
}

// NewBot returns a client for token. baseURL is normally
// https://api.telegram.org.
func NewBot(token, baseURL string) *Bot {
	return &Bot{
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (b *Bot) apiURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", b.baseURL, b.token, method)
}

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type inlineKeyboard struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

// apiResponse is the envelope of every Bot API reply.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

// scrub drops the request URL from transport errors, since it carries the
// bot token.
func scrub(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}

func (b *Bot) do(req *http.Request, method string) (*apiResponse, error) {
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrorDelivery, method, scrub(err))
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s: %s: %s", common.ErrorDelivery, method, resp.Status, strings.TrimSpace(string(body)))
	}

	out := &apiResponse{}
	if err := json.Unmarshal(body, out); err != nil {
		return nil, fmt.Errorf("%w: %s: bad response: %v", common.ErrorDelivery, method, err)
	}
	if !out.OK {
		return nil, fmt.Errorf("%w: %s: %s", common.ErrorDelivery, method, out.Description)
	}
	return out, nil
}

func (b *Bot) postJSON(ctx context.Context, method string, payload any) (*apiResponse, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.apiURL(method), bytes.NewReader(buf))
	if err != nil {
		return nil, scrub(err)
	}
	req.Header.Set("Content-Type", "application/json")
	return b.do(req, method)
}

// SendText sends a plain message. Each button gets its own keyboard row.
func (b *Bot) SendText(ctx context.Context, chatID int64, text string, buttons ...models.Button) error {
	body := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	if len(buttons) > 0 {
		kb := inlineKeyboard{}
		for _, btn := range buttons {
			kb.InlineKeyboard = append(kb.InlineKeyboard, []inlineButton{{Text: btn.Text, CallbackData: btn.Data}})
		}
		body["reply_markup"] = kb
	}
	_, err := b.postJSON(ctx, "sendMessage", body)
	return err
}

// SendImage uploads a PNG with sendPhoto.
func (b *Bot) SendImage(ctx context.Context, chatID int64, png []byte, caption string) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("chat_id", fmt.Sprint(chatID)); err != nil {
		return err
	}
	if caption != "" {
		if err := w.WriteField("caption", caption); err != nil {
			return err
		}
	}
	part, err := w.CreateFormFile("photo", "chart.png")
	if err != nil {
		return err
	}
	if _, err := part.Write(png); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.apiURL("sendPhoto"), &buf)
	if err != nil {
		return scrub(err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	_, err = b.do(req, "sendPhoto")
	return err
}

func (b *Bot) EditText(ctx context.Context, chatID, messageID int64, text string) error {
	_, err := b.postJSON(ctx, "editMessageText", map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
	})
	return err
}

func (b *Bot) AnswerCallback(ctx context.Context, callbackID string) error {
	_, err := b.postJSON(ctx, "answerCallbackQuery", map[string]any{
		"callback_query_id": callbackID,
	})
	return err
}

// SetWebhook registers hookURL as the webhook. A non-empty secret is echoed
// back by Telegram in the X-Telegram-Bot-Api-Secret-Token header.
func (b *Bot) SetWebhook(ctx context.Context, hookURL, secret string) (string, error) {
	body := map[string]any{"url": hookURL}
	if secret != "" {
		body["secret_token"] = secret
	}
	resp, err := b.postJSON(ctx, "setWebhook", body)
	if err != nil {
		return "", err
	}
	if resp.Description == "" {
		return "webhook set", nil
	}
	return resp.Description, nil
}
