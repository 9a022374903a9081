package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/cyclekeeper/internal/models"
)

const chat int64 = 7

func state(s models.State, tempTime, tempMessage string) models.ConversationState {
	return models.ConversationState{ChatID: chat, State: s, TempTime: tempTime, TempMessage: tempMessage}
}

func TestAddReminderFlow(t *testing.T) {
	out := StartAddReminder(chat)
	assert.Equal(t, models.StateAskingTime, out.Next.State)
	assert.Equal(t, PromptTime, out.Reply)

	out = Advance(out.Next, "9:5")
	assert.Equal(t, state(models.StateAskingMessage, "09:05", ""), out.Next)
	assert.Nil(t, out.Effect)

	out = Advance(out.Next, "  stretch  ")
	assert.Equal(t, state(models.StateAskingRepeat, "09:05", "stretch"), out.Next)

	out = Advance(out.Next, "Fri mon")
	assert.Equal(t, state(models.StateNone, "", ""), out.Next)
	assert.Equal(t, SaveReminder{Time: "09:05", Message: "stretch", Days: "mon,fri"}, out.Effect)
	assert.Empty(t, out.Reply)
}

func TestAskingTime_RejectsOutOfRange(t *testing.T) {
	cur := state(models.StateAskingTime, "", "")
	for _, in := range []string{"25:00", "12:60", "noon", ""} {
		out := Advance(cur, in)
		assert.Equal(t, cur, out.Next, in)
		assert.Equal(t, RetryTime, out.Reply)
		assert.Nil(t, out.Effect)
	}
}

func TestAskingMessage_EmptyRePrompts(t *testing.T) {
	cur := state(models.StateAskingMessage, "10:00", "")
	out := Advance(cur, "   ")
	assert.Equal(t, cur, out.Next)
	assert.Equal(t, RetryMessage, out.Reply)
}

func TestAskingRepeat_InvalidRePrompts(t *testing.T) {
	cur := state(models.StateAskingRepeat, "10:00", "water")
	out := Advance(cur, "mon,someday")
	assert.Equal(t, cur, out.Next)
	assert.Equal(t, RetryRepeat, out.Reply)
}

func TestMissingScratchClearsState(t *testing.T) {
	for _, cur := range []models.ConversationState{
		state(models.StateAskingMessage, "", ""),
		state(models.StateAskingRepeat, "10:00", ""),
		state(models.StateAskingEveningTime, "", ""),
		state(models.StateAskingNicotineDose, "", "abc"),
	} {
		out := Advance(cur, "10:00")
		assert.Equal(t, models.StateNone, out.Next.State, cur.State)
		assert.Equal(t, ReplyLostConversation, out.Reply)
		assert.Nil(t, out.Effect)
	}
}

func TestUnknownStateClears(t *testing.T) {
	out := Advance(state("SOMETHING_OLD", "x", "y"), "hello")
	assert.Equal(t, state(models.StateNone, "", ""), out.Next)
	assert.Equal(t, ReplyLostConversation, out.Reply)
}

func TestIdleText(t *testing.T) {
	cur := state(models.StateNone, "", "")
	out := Advance(cur, "hello")
	assert.Equal(t, cur, out.Next)
	assert.Equal(t, ReplyIdle, out.Reply)
}

func TestCheckin(t *testing.T) {
	cur := AwaitCheckin(chat, PromptCheckin).Next
	require.Equal(t, models.StateAwaitingCheckin, cur.State)

	out := Advance(cur, "no idea")
	assert.Equal(t, cur, out.Next)
	assert.Equal(t, RetryCheckin, out.Reply)

	out = Advance(cur, "3000000000")
	assert.Equal(t, cur, out.Next)
	assert.Equal(t, RetryCheckin, out.Reply)
	assert.Nil(t, out.Effect)

	out = Advance(cur, "3 tired")
	assert.Equal(t, models.StateNone, out.Next.State)
	eff, ok := out.Effect.(SaveCheckin)
	require.True(t, ok)
	assert.Equal(t, 3, eff.Units)
	require.NotNil(t, eff.Note)
	assert.Equal(t, "tired", *eff.Note)
}

func TestSetTimeFlow(t *testing.T) {
	out := StartSetTime(chat)
	out = Advance(out.Next, "7:30")
	assert.Equal(t, state(models.StateAskingEveningTime, "07:30", ""), out.Next)

	again := Advance(out.Next, "24:00")
	assert.Equal(t, out.Next, again.Next)

	out = Advance(out.Next, "21:15")
	assert.Equal(t, SaveTimes{Morning: "07:30", Evening: "21:15"}, out.Effect)
	assert.Equal(t, models.StateNone, out.Next.State)
}

func TestSetDoseFlow(t *testing.T) {
	out := StartSetDose(chat)
	assert.Equal(t, models.StateAskingCoffeeDose, out.Next.State)

	for _, bad := range []string{"0", "11", "two", "-3"} {
		r := Advance(out.Next, bad)
		assert.Equal(t, out.Next, r.Next, bad)
		assert.Equal(t, RetryCoffeeDose, r.Reply)
	}

	out = Advance(out.Next, "10")
	assert.Equal(t, state(models.StateAskingNicotineDose, "", "10"), out.Next)

	r := Advance(out.Next, "21")
	assert.Equal(t, out.Next, r.Next)
	assert.Equal(t, RetryNicotineDose, r.Reply)

	out = Advance(out.Next, "20")
	assert.Equal(t, SaveDoses{Coffee: 10, Nicotine: 20}, out.Effect)
}

func TestCancel(t *testing.T) {
	out := Cancel(chat)
	assert.Equal(t, state(models.StateNone, "", ""), out.Next)
	assert.Equal(t, ReplyCancelled, out.Reply)
}
