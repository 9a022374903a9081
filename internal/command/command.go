// Package command turns inbound chat text and callback payloads into a
// closed set of typed commands.
package command

import (
	"strconv"
	"strings"
	"unicode"
)

// Kind enumerates the commands the bot understands.
type Kind int

const (
	// Text is free text that is not a command; it feeds the conversation.
	Text Kind = iota
	Start
	Help
	Add
	List
	Delete
	Cancel
	Begin
	Status
	Log
	Skip
	Reset
	SetTime
	SetDose
	Pause
	Resume
	History
	Chart
	Export
	// Unknown is a slash command that is not recognised.
	Unknown
)

var names = map[string]Kind{
	"start":   Start,
	"help":    Help,
	"add":     Add,
	"list":    List,
	"delete":  Delete,
	"cancel":  Cancel,
	"begin":   Begin,
	"status":  Status,
	"log":     Log,
	"skip":    Skip,
	"reset":   Reset,
	"settime": SetTime,
	"setdose": SetDose,
	"pause":   Pause,
	"resume":  Resume,
	"history": History,
	"chart":   Chart,
	"export":  Export,
}

// Command is a parsed inbound message. Args holds the trimmed text after the
// command word; for Text it is the whole message.
type Command struct {
	Kind Kind
	Args string
}

// Parse classifies text. Commands may carry a bot mention ("/list@mybot").
func Parse(text string) Command {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") {
		return Command{Kind: Text, Args: text}
	}

	word, args := trimmed[1:], ""
	if i := strings.IndexFunc(word, unicode.IsSpace); i >= 0 {
		word, args = word[:i], word[i:]
	}
	word, _, _ = strings.Cut(word, "@")
	kind, ok := names[strings.ToLower(word)]
	if !ok {
		return Command{Kind: Unknown, Args: strings.TrimSpace(args)}
	}
	return Command{Kind: kind, Args: strings.TrimSpace(args)}
}

// Callback payloads sent by the delete keyboard.
const (
	deletePrefix = "del_"
	deleteCancel = "del_cancel"
)

// CallbackKind enumerates inline keyboard actions.
type CallbackKind int

const (
	CallbackUnknown CallbackKind = iota
	CallbackDelete
	CallbackDeleteCancel
)

// Callback is a parsed callback payload.
type Callback struct {
	Kind       CallbackKind
	ReminderID int64
}

// DeleteData builds the payload of a delete button.
func DeleteData(id int64) string {
	return deletePrefix + strconv.FormatInt(id, 10)
}

// DeleteCancelData is the payload of the cancel button.
func DeleteCancelData() string {
	return deleteCancel
}

// ParseCallback decodes a callback payload.
func ParseCallback(data string) Callback {
	if data == deleteCancel {
		return Callback{Kind: CallbackDeleteCancel}
	}
	if rest, ok := strings.CutPrefix(data, deletePrefix); ok {
		id, err := strconv.ParseInt(rest, 10, 64)
		if err == nil {
			return Callback{Kind: CallbackDelete, ReminderID: id}
		}
	}
	return Callback{Kind: CallbackUnknown}
}
