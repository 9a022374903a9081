// Package services contains the bot's business logic: BotService answers
// inbound messages and button presses, Dispatcher runs the minute tick and
// ExportService ships a subject's history to object storage.
package services

import (
	"context"

	"github.com/dmitrijs2005/cyclekeeper/internal/logging"
	"github.com/dmitrijs2005/cyclekeeper/internal/models"
)

// Transport delivers outbound messages. Implementations report failures
// but the services never retry them.
type Transport interface {
	SendText(ctx context.Context, chatID int64, text string, buttons ...models.Button) error
	SendImage(ctx context.Context, chatID int64, png []byte, caption string) error
	EditText(ctx context.Context, chatID, messageID int64, text string) error
	AnswerCallback(ctx context.Context, callbackID string) error
}

type outbound struct {
	chatID    int64
	messageID int64
	text      string
	buttons   []models.Button
	image     []byte
}

// outbox collects messages produced inside a transaction so that they are
// only sent once the state they describe has been committed.
type outbox struct {
	msgs []outbound
}

func (o *outbox) text(chatID int64, text string, buttons ...models.Button) {
	o.msgs = append(o.msgs, outbound{chatID: chatID, text: text, buttons: buttons})
}

func (o *outbox) edit(chatID, messageID int64, text string) {
	o.msgs = append(o.msgs, outbound{chatID: chatID, messageID: messageID, text: text})
}

func (o *outbox) image(chatID int64, png []byte, caption string) {
	o.msgs = append(o.msgs, outbound{chatID: chatID, text: caption, image: png})
}

func (o *outbox) reset() {
	o.msgs = nil
}

// deliver sends everything in order and returns how many messages went out.
// A failed message is logged and skipped.
func deliver(ctx context.Context, t Transport, log logging.Logger, o *outbox) int {
	sent := 0
	for _, m := range o.msgs {
		var err error
		switch {
		case m.image != nil:
			err = t.SendImage(ctx, m.chatID, m.image, m.text)
		case m.messageID != 0:
			err = t.EditText(ctx, m.chatID, m.messageID, m.text)
		default:
			err = t.SendText(ctx, m.chatID, m.text, m.buttons...)
		}
		if err != nil {
			log.Warn(ctx, "delivery failed", "chat_id", m.chatID, "error", err)
			continue
		}
		sent++
	}
	return sent
}
