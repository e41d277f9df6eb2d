package apps

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type ContextUser string
type ContextChatID string

const (
	UserContextKey ContextUser   = "user"
	ChatContextKey ContextChatID = "chat"
)

// Accepter is implemented by every bot sub-application; the main app
// walks its accepters until one claims the command, button or callback.
type Accepter interface {
	AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error)
	AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error)
	AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error)
}
