package telegram

import "gopkg.in/telebot.v3"

// Client defines an interface for sending messages via a Telegram bot.
// The reminder engine and admin flows depend on this contract rather than on
// the bot library, so tests can substitute a fake and a delivery failure for
// one recipient stays an ordinary error for the caller.
type Client interface {
	SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error
}
