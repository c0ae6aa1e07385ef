package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Event is one update reduced to the chat it came from and what it asks for.
// Err is set instead of Action when the update could not be understood.
type Event struct {
	ChatID     int64
	CallbackID string
	Action     Action
	Err        error
}

// ParseUpdate reports false for updates that carry nothing to act on.
func ParseUpdate(update tgbotapi.Update) (Event, bool) {
	if cq := update.CallbackQuery; cq != nil {
		var chatID int64
		switch {
		case cq.Message != nil && cq.Message.Chat != nil:
			chatID = cq.Message.Chat.ID
		case cq.From != nil:
			chatID = cq.From.ID
		default:
			return Event{}, false
		}

		action, err := ParseCallback(cq.Data)
		return Event{ChatID: chatID, CallbackID: cq.ID, Action: action, Err: err}, true
	}

	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return Event{}, false
	}

	if msg.IsCommand() {
		firstName := ""
		if msg.From != nil {
			firstName = msg.From.FirstName
		}

		action, err := ParseCommand(msg.Command(), msg.CommandArguments(), firstName)
		return Event{ChatID: msg.Chat.ID, Action: action, Err: err}, true
	}

	if msg.Text == "" {
		return Event{}, false
	}

	return Event{ChatID: msg.Chat.ID, Action: ParseText(msg.Text)}, true
}
