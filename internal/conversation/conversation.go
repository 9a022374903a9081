// Package conversation implements the per-subject dialog state machine.
//
// Every function is pure: it takes the current persisted state and the
// user's text and returns the complete next state, the reply to send and at
// most one effect the caller must persist. Callers write Next as a whole.
package conversation

import (
	"strconv"
	"strings"

	"github.com/dmitrijs2005/cyclekeeper/internal/checkin"
	"github.com/dmitrijs2005/cyclekeeper/internal/models"
	"github.com/dmitrijs2005/cyclekeeper/internal/recurrence"
	"github.com/dmitrijs2005/cyclekeeper/internal/timex"
)

// Dose bounds accepted by the set-dose flow.
const (
	MinDose         = 1
	MaxCoffeeDose   = 10
	MaxNicotineDose = 20
)

const (
	PromptTime            = "Let's add a reminder!\n\nWhat time? (24h format, e.g. 09:30)"
	PromptMessage         = "Got it! What should I remind you about?"
	PromptRepeat          = "How often?\n\n• daily\n• weekdays\n• weekends\n• or specific days like: mon, wed, fri"
	PromptCheckin         = "How many units today? Reply with a number and an optional note, e.g. 2 felt good"
	PromptMorningTime     = "What time should the morning summary arrive? (HH:MM)"
	PromptEveningTime     = "What time should I ask for the evening check-in? (HH:MM)"
	PromptCoffeeDose      = "Daily coffee target? (a whole number from 1 to 10)"
	PromptNicotineDose    = "Daily nicotine target? (a whole number from 1 to 20)"
	RetryTime             = "Please use HH:MM format, e.g. 14:30"
	RetryMessage          = "The reminder text can't be empty. What should I remind you about?"
	RetryRepeat           = "Try: daily, weekdays, weekends, or days like mon,wed,fri"
	RetryCheckin          = "Please start with a number, e.g. 2 or 2 felt good"
	RetryCoffeeDose       = "Please send a whole number from 1 to 10"
	RetryNicotineDose     = "Please send a whole number from 1 to 20"
	ReplyIdle             = "Use /add to set a reminder, /list to view, /delete to remove. /help lists everything."
	ReplyCancelled        = "Cancelled."
	ReplyLostConversation = "Sorry, I lost track of that conversation. Please start again."
)

// Effect is a persistence request produced by a completed flow.
type Effect interface {
	effect()
}

// SaveReminder asks the caller to store a new reminder rule.
type SaveReminder struct {
	Time    string
	Message string
	Days    string
}

// SaveCheckin asks the caller to log today's units.
type SaveCheckin struct {
	checkin.Result
}

// SaveTimes asks the caller to store both notification times.
type SaveTimes struct {
	Morning string
	Evening string
}

// SaveDoses asks the caller to store both daily targets.
type SaveDoses struct {
	Coffee   int
	Nicotine int
}

func (SaveReminder) effect() {}
func (SaveCheckin) effect()  {}
func (SaveTimes) effect()    {}
func (SaveDoses) effect()    {}

// Outcome is the result of a transition. When Effect is set, Reply is empty
// and the caller composes the confirmation after persisting the effect.
type Outcome struct {
	Next   models.ConversationState
	Reply  string
	Effect Effect
}

func to(chatID int64, s models.State, reply string) Outcome {
	return Outcome{Next: models.ConversationState{ChatID: chatID, State: s}, Reply: reply}
}

func stay(cur models.ConversationState, reply string) Outcome {
	return Outcome{Next: cur, Reply: reply}
}

func done(chatID int64, e Effect) Outcome {
	return Outcome{Next: models.ConversationState{ChatID: chatID}, Effect: e}
}

// StartAddReminder begins the add-reminder flow.
func StartAddReminder(chatID int64) Outcome {
	return to(chatID, models.StateAskingTime, PromptTime)
}

// StartSetTime begins the set-time flow.
func StartSetTime(chatID int64) Outcome {
	return to(chatID, models.StateAskingMorningTime, PromptMorningTime)
}

// StartSetDose begins the set-dose flow.
func StartSetDose(chatID int64) Outcome {
	return to(chatID, models.StateAskingCoffeeDose, PromptCoffeeDose)
}

// AwaitCheckin puts the subject into the check-in state with the given prompt.
func AwaitCheckin(chatID int64, prompt string) Outcome {
	return to(chatID, models.StateAwaitingCheckin, prompt)
}

// Cancel clears whatever the subject was doing.
func Cancel(chatID int64) Outcome {
	return to(chatID, models.StateNone, ReplyCancelled)
}

// Advance feeds free text into the current state.
func Advance(cur models.ConversationState, text string) Outcome {
	chatID := cur.ChatID
	text = strings.TrimSpace(text)

	switch cur.State {
	case models.StateNone:
		return stay(cur, ReplyIdle)

	case models.StateAskingTime:
		clock, err := timex.ParseClock(text)
		if err != nil {
			return stay(cur, RetryTime)
		}
		return Outcome{
			Next:  models.ConversationState{ChatID: chatID, State: models.StateAskingMessage, TempTime: clock},
			Reply: PromptMessage,
		}

	case models.StateAskingMessage:
		if cur.TempTime == "" {
			return to(chatID, models.StateNone, ReplyLostConversation)
		}
		if text == "" {
			return stay(cur, RetryMessage)
		}
		return Outcome{
			Next: models.ConversationState{
				ChatID: chatID, State: models.StateAskingRepeat, TempTime: cur.TempTime, TempMessage: text,
			},
			Reply: PromptRepeat,
		}

	case models.StateAskingRepeat:
		if cur.TempTime == "" || cur.TempMessage == "" {
			return to(chatID, models.StateNone, ReplyLostConversation)
		}
		_, canonical, err := recurrence.Parse(text)
		if err != nil {
			return stay(cur, RetryRepeat)
		}
		return done(chatID, SaveReminder{Time: cur.TempTime, Message: cur.TempMessage, Days: canonical})

	case models.StateAwaitingCheckin:
		res, err := checkin.Parse(text)
		if err != nil {
			return stay(cur, RetryCheckin)
		}
		return done(chatID, SaveCheckin{Result: res})

	case models.StateAskingMorningTime:
		clock, err := timex.ParseClock(text)
		if err != nil {
			return stay(cur, RetryTime)
		}
		return Outcome{
			Next:  models.ConversationState{ChatID: chatID, State: models.StateAskingEveningTime, TempTime: clock},
			Reply: PromptEveningTime,
		}

	case models.StateAskingEveningTime:
		if cur.TempTime == "" {
			return to(chatID, models.StateNone, ReplyLostConversation)
		}
		clock, err := timex.ParseClock(text)
		if err != nil {
			return stay(cur, RetryTime)
		}
		return done(chatID, SaveTimes{Morning: cur.TempTime, Evening: clock})

	case models.StateAskingCoffeeDose:
		dose, ok := parseDose(text, MaxCoffeeDose)
		if !ok {
			return stay(cur, RetryCoffeeDose)
		}
		return Outcome{
			Next: models.ConversationState{
				ChatID: chatID, State: models.StateAskingNicotineDose, TempMessage: strconv.Itoa(dose),
			},
			Reply: PromptNicotineDose,
		}

	case models.StateAskingNicotineDose:
		coffee, ok := parseDose(cur.TempMessage, MaxCoffeeDose)
		if !ok {
			return to(chatID, models.StateNone, ReplyLostConversation)
		}
		nicotine, ok := parseDose(text, MaxNicotineDose)
		if !ok {
			return stay(cur, RetryNicotineDose)
		}
		return done(chatID, SaveDoses{Coffee: coffee, Nicotine: nicotine})
	}

	return to(chatID, models.StateNone, ReplyLostConversation)
}

func parseDose(text string, limit int) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || v < MinDose || v > limit {
		return 0, false
	}
	return v, true
}
