package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cyclekeeper/internal/common"
	"github.com/dmitrijs2005/cyclekeeper/internal/config"
	"github.com/dmitrijs2005/cyclekeeper/internal/conversation"
	"github.com/dmitrijs2005/cyclekeeper/internal/cycle"
	"github.com/dmitrijs2005/cyclekeeper/internal/dbx"
	"github.com/dmitrijs2005/cyclekeeper/internal/logging"
	"github.com/dmitrijs2005/cyclekeeper/internal/models"
	"github.com/dmitrijs2005/cyclekeeper/internal/recurrence"
	"github.com/dmitrijs2005/cyclekeeper/internal/repositories/repomanager"
	"github.com/dmitrijs2005/cyclekeeper/internal/timex"
	"github.com/google/uuid"
)

// AutoLogTime is the end-of-day instant at which an unanswered day is closed
// out without data.
const AutoLogTime = "23:55"

// NudgeDelay is how long after the evening prompt the nudge goes out.
const NudgeDelay = 60

// Cycle events reported by Tick.
const (
	EventMorning = "morning"
	EventEvening = "evening"
	EventNudge   = "nudge"
	EventAutoLog = "autolog"
)

// TickReport summarises one dispatcher pass.
type TickReport struct {
	Time   string   `json:"time"`
	Sent   int      `json:"sent"`
	Events []string `json:"events"`
}

// Dispatcher fires due reminders and the owner's daily cycle events. It
// keeps no memory between ticks: whether an event still has to fire is
// decided from the stored log and the exact minute alone.
type Dispatcher struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	transport   Transport
	ownerChatID int64
	loc         *time.Location
	log         logging.Logger
}

func NewDispatcher(db *sql.DB, m repomanager.RepositoryManager, t Transport, cfg *config.Config, log logging.Logger) *Dispatcher {
	return &Dispatcher{
		db:          db,
		repomanager: m,
		transport:   t,
		ownerChatID: cfg.OwnerChatID,
		loc:         location(cfg),
		log:         log.With("module", "dispatcher"),
	}
}

// Tick runs one pass for the minute containing now. A store failure for the
// reminder pass or for the cycle pass is logged and returned, but does not
// stop the other pass.
func (d *Dispatcher) Tick(ctx context.Context, now time.Time) (TickReport, error) {
	log := d.log.With("tick_id", uuid.NewString())

	local := now.In(d.loc)
	clock := timex.Clock(local)
	report := TickReport{Time: clock, Events: []string{}}

	var errs []error

	sent, err := d.fireReminders(ctx, log, clock, timex.Weekday(local))
	report.Sent += sent
	if err != nil {
		log.Error(ctx, "reminder pass failed", "error", err)
		errs = append(errs, err)
	}

	if d.ownerChatID != 0 {
		out := outbox{}
		events, err := d.cycleEvents(ctx, d.ownerChatID, local, &out)
		if err != nil {
			log.Error(ctx, "cycle pass failed", "chat_id", d.ownerChatID, "error", err)
			errs = append(errs, err)
		} else {
			report.Events = append(report.Events, events...)
			report.Sent += deliver(ctx, d.transport, log, &out)
		}
	}

	log.Info(ctx, "tick", "time", clock, "sent", report.Sent, "events", report.Events)
	return report, errors.Join(errs...)
}

func (d *Dispatcher) fireReminders(ctx context.Context, log logging.Logger, clock string, weekday int) (int, error) {
	rules, err := d.repomanager.Reminders(d.db).ListAll(ctx)
	if err != nil {
		return 0, err
	}

	out := outbox{}
	for _, r := range rules {
		if r.Time != clock || !recurrence.Match(r.Days, weekday) {
			continue
		}
		log.Debug(ctx, "reminder due", "chat_id", r.ChatID, "reminder_id", r.ID)
		out.text(r.ChatID, ReminderPrefix+r.Message)
	}
	return deliver(ctx, d.transport, log, &out), nil
}

// cycleEvents evaluates every daily event independently against the current
// minute, under the subject lock.
func (d *Dispatcher) cycleEvents(ctx context.Context, chatID int64, local time.Time, out *outbox) ([]string, error) {
	clock := timex.Clock(local)
	today := timex.DateOf(local)
	var events []string

	err := dbx.WithSubject(ctx, d.db, chatID, func(ctx context.Context, tx dbx.DBTX) error {
		cfg, err := d.repomanager.Cycles(tx).Get(ctx, chatID)
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if cfg.Paused {
			return nil
		}

		logs := d.repomanager.Logs(tx)
		convs := d.repomanager.Conversations(tx)

		entry, err := logs.Get(ctx, chatID, today)
		if errors.Is(err, common.ErrorNotFound) {
			entry = nil
		} else if err != nil {
			return err
		}

		info := cycle.Calculate(cfg.CycleStart, today)

		if clock == cfg.MorningTime {
			out.text(chatID, morningText(cfg, info))
			events = append(events, EventMorning)
		}

		if clock == cfg.EveningTime && !entry.HasData() {
			o := conversation.AwaitCheckin(chatID, eveningText(cfg, info, conversation.PromptCheckin))
			if err := convs.Put(ctx, o.Next); err != nil {
				return err
			}
			out.text(chatID, o.Reply)
			events = append(events, EventEvening)
		}

		if nudge, ok := timex.AddMinutes(cfg.EveningTime, NudgeDelay); ok && clock == nudge && !entry.HasData() {
			o := conversation.AwaitCheckin(chatID, nudgeText(conversation.PromptCheckin))
			if err := convs.Put(ctx, o.Next); err != nil {
				return err
			}
			out.text(chatID, o.Reply)
			events = append(events, EventNudge)
		}

		// Only a missing row triggers the close-out, so the sentinel row it
		// writes keeps later ticks from repeating it.
		if clock == AutoLogTime && entry == nil {
			note := AutoLogNote
			if err := logs.Put(ctx, &models.LogEntry{ChatID: chatID, Date: today, Phase: info.Phase, Note: &note}); err != nil {
				return err
			}
			if err := convs.Put(ctx, models.ConversationState{ChatID: chatID}); err != nil {
				return err
			}
			out.text(chatID, autoLogText())
			events = append(events, EventAutoLog)
		}

		return nil
	})
	if err != nil {
		out.reset()
		return nil, fmt.Errorf("cycle events for chat %d: %w", chatID, err)
	}
	return events, nil
}
