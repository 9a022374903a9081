package models

// State is the tag of a subject's in-progress dialog.
type State string

const (
	StateNone               State = ""
	StateAskingTime         State = "ASKING_TIME"
	StateAskingMessage      State = "ASKING_MESSAGE"
	StateAskingRepeat       State = "ASKING_REPEAT"
	StateAwaitingCheckin    State = "AWAITING_CHECKIN"
	StateAskingMorningTime  State = "ASKING_MORNING_TIME"
	StateAskingEveningTime  State = "ASKING_EVENING_TIME"
	StateAskingCoffeeDose   State = "ASKING_COFFEE_DOSE"
	StateAskingNicotineDose State = "ASKING_NICOTINE_DOSE"
)

// Known reports whether s belongs to the closed set of states.
func (s State) Known() bool {
	switch s {
	case StateNone, StateAskingTime, StateAskingMessage, StateAskingRepeat,
		StateAwaitingCheckin, StateAskingMorningTime, StateAskingEveningTime,
		StateAskingCoffeeDose, StateAskingNicotineDose:
		return true
	}
	return false
}

// ConversationState is the full per-subject dialog record. It is always
// written as a whole.
type ConversationState struct {
	ChatID      int64
	State       State
	TempTime    string
	TempMessage string
}
