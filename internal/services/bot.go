package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/cyclekeeper/internal/chart"
	"github.com/dmitrijs2005/cyclekeeper/internal/checkin"
	"github.com/dmitrijs2005/cyclekeeper/internal/command"
	"github.com/dmitrijs2005/cyclekeeper/internal/common"
	"github.com/dmitrijs2005/cyclekeeper/internal/config"
	"github.com/dmitrijs2005/cyclekeeper/internal/conversation"
	"github.com/dmitrijs2005/cyclekeeper/internal/cycle"
	"github.com/dmitrijs2005/cyclekeeper/internal/dbx"
	"github.com/dmitrijs2005/cyclekeeper/internal/logging"
	"github.com/dmitrijs2005/cyclekeeper/internal/models"
	"github.com/dmitrijs2005/cyclekeeper/internal/repositories/repomanager"
	"github.com/dmitrijs2005/cyclekeeper/internal/timex"
	"github.com/dmitrijs2005/cyclekeeper/internal/tolerance"
)

// Defaults applied by /begin when the subject has no configuration yet.
const (
	DefaultMorningTime    = "08:00"
	DefaultEveningTime    = "21:00"
	DefaultCoffeeTarget   = 2
	DefaultNicotineTarget = 4
)

const (
	// warningWindow is how many recent entries are scanned for the
	// over-target warning; it comfortably covers three days of one phase.
	warningWindow = 21
	maxHistory    = 90
)

// BotService handles inbound chat messages and inline button presses.
// Every update runs in one transaction holding the subject lock; replies
// are sent after commit.
type BotService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	transport     Transport
	exporter      Exporter
	ownerChatID   int64
	historyWindow int
	loc           *time.Location
	now           func() time.Time
	log           logging.Logger
}

// NewBotService constructs a BotService from config. exporter may be nil.
func NewBotService(db *sql.DB, m repomanager.RepositoryManager, t Transport, exporter Exporter,
	cfg *config.Config, log logging.Logger) *BotService {
	return &BotService{
		db:            db,
		repomanager:   m,
		transport:     t,
		exporter:      exporter,
		ownerChatID:   cfg.OwnerChatID,
		historyWindow: cfg.HistoryWindow,
		loc:           location(cfg),
		now:           time.Now,
		log:           log.With("module", "bot"),
	}
}

func location(cfg *config.Config) *time.Location {
	loc, err := cfg.Location()
	if err != nil {
		return time.UTC
	}
	return loc
}

// Allowed reports whether chatID may talk to the bot.
func (s *BotService) Allowed(chatID int64) bool {
	return s.ownerChatID == 0 || chatID == s.ownerChatID
}

// update is the per-request state shared by the handlers.
type update struct {
	chatID int64
	now    time.Time
	today  time.Time
	tx     dbx.DBTX
	cfg    *models.CycleConfig
	out    outbox
	export []*models.LogEntry
}

// HandleMessage processes one text message from chatID. Store failures are
// logged, answered with a generic apology and returned.
func (s *BotService) HandleMessage(ctx context.Context, chatID int64, text string) error {
	if !s.Allowed(chatID) {
		s.log.Info(ctx, "message from chat outside allow-list", "chat_id", chatID)
		o := outbox{}
		o.text(chatID, ReplyNotAllowed)
		deliver(ctx, s.transport, s.log, &o)
		return nil
	}

	now := s.now().In(s.loc)
	u := &update{chatID: chatID, now: now, today: timex.DateOf(now)}

	err := dbx.WithSubject(ctx, s.db, chatID, func(ctx context.Context, tx dbx.DBTX) error {
		u.tx = tx
		return s.handleMessage(ctx, u, command.Parse(text))
	})
	if err != nil {
		s.log.Error(ctx, "message handling failed", "chat_id", chatID, "error", err)
		u.out.reset()
		u.export = nil
		u.out.text(chatID, ReplyStoreError)
	}

	if u.export != nil {
		s.runExport(ctx, u)
	}
	deliver(ctx, s.transport, s.log, &u.out)
	return err
}

func (s *BotService) loadConfig(ctx context.Context, u *update) error {
	cfg, err := s.repomanager.Cycles(u.tx).Get(ctx, u.chatID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			u.cfg = nil
			return nil
		}
		return err
	}
	u.cfg = cfg
	return nil
}

func (s *BotService) handleMessage(ctx context.Context, u *update, cmd command.Command) error {
	if err := s.loadConfig(ctx, u); err != nil {
		return err
	}

	if u.cfg != nil && u.cfg.Paused && cmd.Kind != command.Resume {
		u.out.text(u.chatID, ReplyPaused)
		return nil
	}

	switch cmd.Kind {
	case command.Start:
		if err := s.putState(ctx, u, models.ConversationState{ChatID: u.chatID}); err != nil {
			return err
		}
		u.out.text(u.chatID, ReplyWelcome)
		return nil
	case command.Help, command.Unknown:
		u.out.text(u.chatID, ReplyHelp)
		return nil
	case command.Cancel:
		return s.apply(ctx, u, conversation.Cancel(u.chatID))
	case command.Add:
		return s.apply(ctx, u, conversation.StartAddReminder(u.chatID))
	case command.List:
		return s.list(ctx, u)
	case command.Delete:
		return s.deleteKeyboard(ctx, u)
	case command.Begin:
		return s.begin(ctx, u)
	case command.Text:
		return s.text(ctx, u, cmd.Args)
	}

	// everything below needs a cycle
	if u.cfg == nil {
		u.out.text(u.chatID, ReplyNoCycle)
		return nil
	}

	switch cmd.Kind {
	case command.Status:
		return s.status(ctx, u)
	case command.Log:
		if cmd.Args == "" {
			return s.apply(ctx, u, conversation.AwaitCheckin(u.chatID, conversation.PromptCheckin))
		}
		awaiting := models.ConversationState{ChatID: u.chatID, State: models.StateAwaitingCheckin}
		return s.apply(ctx, u, conversation.Advance(awaiting, cmd.Args))
	case command.Skip:
		info := cycle.Calculate(u.cfg.CycleStart, u.today)
		u.cfg.CycleStart = cycle.SkipStart(info.Phase, u.today)
		return s.saveConfigAndStatus(ctx, u)
	case command.Reset:
		info := cycle.Calculate(u.cfg.CycleStart, u.today)
		u.cfg.CycleStart = cycle.ResetStart(info.Phase, u.today)
		return s.saveConfigAndStatus(ctx, u)
	case command.SetTime:
		return s.apply(ctx, u, conversation.StartSetTime(u.chatID))
	case command.SetDose:
		return s.apply(ctx, u, conversation.StartSetDose(u.chatID))
	case command.Pause:
		u.cfg.Paused = true
		if err := s.repomanager.Cycles(u.tx).Put(ctx, u.cfg); err != nil {
			return err
		}
		u.out.text(u.chatID, ReplyPausedNow)
		return nil
	case command.Resume:
		if !u.cfg.Paused {
			u.out.text(u.chatID, ReplyNotPaused)
			return nil
		}
		u.cfg.Paused = false
		if err := s.repomanager.Cycles(u.tx).Put(ctx, u.cfg); err != nil {
			return err
		}
		u.out.text(u.chatID, ReplyResumed)
		return nil
	case command.History:
		return s.history(ctx, u, cmd.Args)
	case command.Chart:
		return s.chart(ctx, u)
	case command.Export:
		return s.collectExport(ctx, u)
	}

	return fmt.Errorf("unhandled command kind %d", cmd.Kind)
}

func (s *BotService) putState(ctx context.Context, u *update, st models.ConversationState) error {
	return s.repomanager.Conversations(u.tx).Put(ctx, st)
}

func (s *BotService) text(ctx context.Context, u *update, text string) error {
	st, err := s.repomanager.Conversations(u.tx).Get(ctx, u.chatID)
	if err != nil {
		return err
	}
	if !st.State.Known() {
		s.log.Warn(ctx, "unknown conversation state reset", "chat_id", u.chatID, "state", string(st.State))
		if err := s.putState(ctx, u, models.ConversationState{ChatID: u.chatID}); err != nil {
			return err
		}
		u.out.text(u.chatID, conversation.ReplyLostConversation)
		return nil
	}
	st.ChatID = u.chatID
	return s.apply(ctx, u, conversation.Advance(st, text))
}

// apply persists the outcome of a transition: the effect first, then the
// full next state.
func (s *BotService) apply(ctx context.Context, u *update, o conversation.Outcome) error {
	if o.Effect != nil {
		reply, err := s.applyEffect(ctx, u, o.Effect)
		if err != nil {
			return err
		}
		if err := s.putState(ctx, u, o.Next); err != nil {
			return err
		}
		u.out.text(u.chatID, reply)
		return nil
	}

	if err := s.putState(ctx, u, o.Next); err != nil {
		return err
	}
	if o.Reply != "" {
		u.out.text(u.chatID, o.Reply)
	}
	return nil
}

func (s *BotService) applyEffect(ctx context.Context, u *update, e conversation.Effect) (string, error) {
	switch e := e.(type) {
	case conversation.SaveReminder:
		rule := &models.ReminderRule{ChatID: u.chatID, Time: e.Time, Message: e.Message, Days: e.Days}
		if _, err := s.repomanager.Reminders(u.tx).Create(ctx, rule); err != nil {
			return "", err
		}
		return reminderSetText(e.Time, e.Message, e.Days), nil

	case conversation.SaveCheckin:
		if u.cfg == nil {
			return ReplyNoCycle, nil
		}
		return s.saveCheckin(ctx, u, e.Result)

	case conversation.SaveTimes:
		if u.cfg == nil {
			return ReplyNoCycle, nil
		}
		u.cfg.MorningTime, u.cfg.EveningTime = e.Morning, e.Evening
		if err := s.repomanager.Cycles(u.tx).Put(ctx, u.cfg); err != nil {
			return "", err
		}
		return fmt.Sprintf("Times updated: morning %s, evening %s.", e.Morning, e.Evening), nil

	case conversation.SaveDoses:
		if u.cfg == nil {
			return ReplyNoCycle, nil
		}
		u.cfg.CoffeeTarget, u.cfg.NicotineTarget = e.Coffee, e.Nicotine
		if err := s.repomanager.Cycles(u.tx).Put(ctx, u.cfg); err != nil {
			return "", err
		}
		return fmt.Sprintf("Targets updated: coffee %d, nicotine %d per day.", e.Coffee, e.Nicotine), nil
	}
	return "", fmt.Errorf("unhandled effect %T", e)
}

func (s *BotService) saveCheckin(ctx context.Context, u *update, res checkin.Result) (string, error) {
	info := cycle.Calculate(u.cfg.CycleStart, u.today)
	units := res.Units
	loggedAt := u.now
	entry := &models.LogEntry{
		ChatID:   u.chatID,
		Date:     u.today,
		Phase:    info.Phase,
		Units:    &units,
		Note:     res.Note,
		LoggedAt: &loggedAt,
	}

	logs := s.repomanager.Logs(u.tx)
	if err := logs.Put(ctx, entry); err != nil {
		return "", err
	}

	recent, err := logs.ListRecent(ctx, u.chatID, warningWindow)
	if err != nil {
		return "", err
	}
	warn := tolerance.Warning(recent, info.Phase, u.cfg)
	if warn {
		s.log.Info(ctx, "tolerance warning", "chat_id", u.chatID, "phase", string(info.Phase))
	}
	return loggedText(u.cfg, info.Phase, units, warn), nil
}

func (s *BotService) list(ctx context.Context, u *update) error {
	rules, err := s.repomanager.Reminders(u.tx).ListByChat(ctx, u.chatID)
	if err != nil {
		return err
	}
	if len(rules) == 0 {
		u.out.text(u.chatID, ReplyNoReminders)
		return nil
	}
	u.out.text(u.chatID, reminderListText(rules))
	return nil
}

func (s *BotService) deleteKeyboard(ctx context.Context, u *update) error {
	rules, err := s.repomanager.Reminders(u.tx).ListByChat(ctx, u.chatID)
	if err != nil {
		return err
	}
	if len(rules) == 0 {
		u.out.text(u.chatID, ReplyNoDeletable)
		return nil
	}

	buttons := make([]models.Button, 0, len(rules)+1)
	for _, r := range rules {
		buttons = append(buttons, models.Button{Text: deleteButtonText(r), Data: command.DeleteData(r.ID)})
	}
	buttons = append(buttons, models.Button{Text: "Cancel", Data: command.DeleteCancelData()})

	u.out.text(u.chatID, ReplyAskDelete, buttons...)
	return nil
}

func (s *BotService) begin(ctx context.Context, u *update) error {
	if u.cfg == nil {
		u.cfg = &models.CycleConfig{
			ChatID:         u.chatID,
			MorningTime:    DefaultMorningTime,
			EveningTime:    DefaultEveningTime,
			CoffeeTarget:   DefaultCoffeeTarget,
			NicotineTarget: DefaultNicotineTarget,
		}
	}
	u.cfg.CycleStart = u.today
	u.cfg.Paused = false
	return s.saveConfigAndStatus(ctx, u)
}

func (s *BotService) saveConfigAndStatus(ctx context.Context, u *update) error {
	if err := s.repomanager.Cycles(u.tx).Put(ctx, u.cfg); err != nil {
		return err
	}
	return s.status(ctx, u)
}

func (s *BotService) status(ctx context.Context, u *update) error {
	entry, err := s.repomanager.Logs(u.tx).Get(ctx, u.chatID, u.today)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return err
	}
	info := cycle.Calculate(u.cfg.CycleStart, u.today)
	u.out.text(u.chatID, statusText(u.cfg, info, entry))
	return nil
}

// HistorySize resolves the /history argument: the default window when args
// is empty or not a number, otherwise clamped to 1..90.
func HistorySize(args string, def int) int {
	n, err := strconv.Atoi(args)
	if err != nil {
		n = def
	}
	return min(max(n, 1), maxHistory)
}

func (s *BotService) history(ctx context.Context, u *update, args string) error {
	n := HistorySize(args, s.historyWindow)
	entries, err := s.repomanager.Logs(u.tx).ListRecent(ctx, u.chatID, n)
	if err != nil {
		return err
	}
	st := tolerance.Analyze(entries, u.cfg)
	if st.Coffee.Count+st.Nicotine.Count == 0 {
		u.out.text(u.chatID, ReplyNoData)
		return nil
	}
	u.out.text(u.chatID, historyText(n, st))
	return nil
}

func (s *BotService) chart(ctx context.Context, u *update) error {
	entries, err := s.repomanager.Logs(u.tx).ListAll(ctx, u.chatID)
	if err != nil {
		return err
	}
	png, err := chart.Render(tolerance.Series(entries), u.cfg)
	if errors.Is(err, chart.ErrNoData) {
		u.out.text(u.chatID, ReplyNoData)
		return nil
	}
	if err != nil {
		return err
	}
	u.out.image(u.chatID, png, plural(len(entries), "day", "days")+" logged")
	return nil
}

func (s *BotService) collectExport(ctx context.Context, u *update) error {
	if s.exporter == nil {
		u.out.text(u.chatID, ReplyExportOff)
		return nil
	}
	entries, err := s.repomanager.Logs(u.tx).ListAll(ctx, u.chatID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		u.out.text(u.chatID, ReplyNoData)
		return nil
	}
	u.export = entries
	return nil
}

// runExport runs after commit since it talks to object storage.
func (s *BotService) runExport(ctx context.Context, u *update) {
	url, err := s.exporter.Export(ctx, u.chatID, u.export)
	switch {
	case errors.Is(err, common.ErrorNotConfigured):
		u.out.text(u.chatID, ReplyExportOff)
	case err != nil:
		s.log.Error(ctx, "export failed", "chat_id", u.chatID, "error", err)
		u.out.text(u.chatID, ReplyExportFailed)
	default:
		u.out.text(u.chatID, "Your export is ready:\n"+url)
	}
}

// HandleCallback processes an inline button press. The callback is always
// acknowledged first.
func (s *BotService) HandleCallback(ctx context.Context, callbackID string, chatID, messageID int64, data string) error {
	if err := s.transport.AnswerCallback(ctx, callbackID); err != nil {
		s.log.Warn(ctx, "callback acknowledge failed", "chat_id", chatID, "error", err)
	}
	if !s.Allowed(chatID) {
		return nil
	}

	cb := command.ParseCallback(data)
	if cb.Kind == command.CallbackUnknown {
		s.log.Debug(ctx, "unknown callback payload", "chat_id", chatID, "data", data)
		return nil
	}

	now := s.now().In(s.loc)
	u := &update{chatID: chatID, now: now, today: timex.DateOf(now)}

	err := dbx.WithSubject(ctx, s.db, chatID, func(ctx context.Context, tx dbx.DBTX) error {
		u.tx = tx
		if err := s.loadConfig(ctx, u); err != nil {
			return err
		}
		if u.cfg != nil && u.cfg.Paused {
			u.out.edit(chatID, messageID, ReplyPaused)
			return nil
		}

		switch cb.Kind {
		case command.CallbackDeleteCancel:
			u.out.edit(chatID, messageID, conversation.ReplyCancelled)
		case command.CallbackDelete:
			err := s.repomanager.Reminders(tx).Delete(ctx, cb.ReminderID, chatID)
			switch {
			case errors.Is(err, common.ErrorNotFound):
				u.out.edit(chatID, messageID, fmt.Sprintf("Reminder #%d not found.", cb.ReminderID))
			case err != nil:
				return err
			default:
				u.out.edit(chatID, messageID, fmt.Sprintf("Reminder #%d deleted.", cb.ReminderID))
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error(ctx, "callback handling failed", "chat_id", chatID, "error", err)
		u.out.reset()
		u.out.edit(chatID, messageID, ReplyStoreError)
	}

	deliver(ctx, s.transport, s.log, &u.out)
	return err
}
