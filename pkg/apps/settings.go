package apps

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"f1recordsbot/pkg/delayed"
	"f1recordsbot/pkg/menus"
	"f1recordsbot/pkg/settings"
)

const (
	inlineKeyboardBestLap    = settings.BestLap
	inlineKeyboardTopSpeed   = settings.TopSpeed
	inlineKeyboardBestSector = settings.BestSector

	subcommandNotifications = "notifications"
	subcommandDelay         = "delay"
)

// SettingsApp lets a user toggle record notifications and pick the feed
// delay their record board defaults to.
type SettingsApp struct {
	bot            *tgbotapi.BotAPI
	appMenu        menus.ApplicationMenu
	sm             *settings.Manager
	rebroadcasters []*delayed.Rebroadcaster
}

func NewSettingsApp(bot *tgbotapi.BotAPI, appMenu menus.ApplicationMenu, sm *settings.Manager, rebroadcasters []*delayed.Rebroadcaster) *SettingsApp {
	return &SettingsApp{
		bot:            bot,
		sm:             sm,
		appMenu:        appMenu,
		rebroadcasters: rebroadcasters,
	}
}

func (sa *SettingsApp) AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error) {
	return false, nil
}

func (sa *SettingsApp) AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error) {
	if button == buttonSettings {
		return true, sa.renderSettings(nil)
	}
	return false, nil
}

func (sa *SettingsApp) AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error) {
	data := strings.Split(query.Data, ":")
	switch data[0] {
	case subcommandNotifications:
		return true, func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
			userID := data[1]
			kind := data[2]

			chatID, err := chatIDFromContext(ctx, query, sa.bot, sa.appMenu)
			if err != nil || chatID == "" {
				return err
			}
			if err := sa.sm.ToggleNotificationForRecord(userID, chatID, kind); err != nil {
				log.Println(err)
				msg := tgbotapi.NewMessage(query.Message.Chat.ID, "No se pudo cambiar el estado de la notificación")
				msg.ReplyMarkup = sa.appMenu.PrevMenu
				_, err := sa.bot.Send(msg)
				return err
			}
			return sa.renderSettings(&query.Message.MessageID)(ctx, query.Message.Chat.ID)
		}
	case subcommandDelay:
		return true, func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
			userID := data[1]
			delay := data[2]

			chatID, err := chatIDFromContext(ctx, query, sa.bot, sa.appMenu)
			if err != nil || chatID == "" {
				return err
			}
			if err := sa.sm.SetPreferredDelay(userID, chatID, delay); err != nil {
				log.Println(err)
				msg := tgbotapi.NewMessage(query.Message.Chat.ID, "No se pudo cambiar el retardo preferido")
				msg.ReplyMarkup = sa.appMenu.PrevMenu
				_, err := sa.bot.Send(msg)
				return err
			}
			return sa.renderSettings(&query.Message.MessageID)(ctx, query.Message.Chat.ID)
		}
	}
	return false, nil
}

func chatIDFromContext(ctx context.Context, query *tgbotapi.CallbackQuery, bot *tgbotapi.BotAPI, appMenu menus.ApplicationMenu) (string, error) {
	chatCtxValue := ctx.Value(ChatContextKey)
	if chatCtxValue == nil {
		msg := tgbotapi.NewMessage(query.Message.Chat.ID, "No se pudo leer información del chat")
		msg.ReplyMarkup = appMenu.PrevMenu
		_, err := bot.Send(msg)
		return "", err
	}
	chat := chatCtxValue.(*tgbotapi.Chat)
	return fmt.Sprintf("%d", chat.ID), nil
}

func (sa *SettingsApp) renderSettings(messageID *int) func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		userCtxValue := ctx.Value(UserContextKey)
		if userCtxValue == nil {
			msg := tgbotapi.NewMessage(chatId, "No se pudo leer el usuario")
			msg.ReplyMarkup = sa.appMenu.PrevMenu
			_, err := sa.bot.Send(msg)
			return err
		}
		user := userCtxValue.(*tgbotapi.User)
		userID := fmt.Sprintf("%d", user.ID)

		notificationStatus, err := sa.sm.ListNotifications(userID)
		if err != nil {
			log.Println(err)
			msg := tgbotapi.NewMessage(chatId, "No se pudieron leer los ajustes del usuario")
			msg.ReplyMarkup = sa.appMenu.PrevMenu
			_, err := sa.bot.Send(msg)
			return err
		}
		preferredDelay, err := sa.sm.GetPreferredDelay(userID)
		if err != nil {
			log.Println(err)
			preferredDelay = settings.DefaultDelay
		}

		keyboard := sa.settingsInlineKeyboard(userID, notificationStatus, preferredDelay)
		text := "Notificaciones de récords y retardo del feed"
		var cfg tgbotapi.Chattable
		if messageID == nil {
			msg := tgbotapi.NewMessage(chatId, text)
			msg.ReplyMarkup = keyboard
			cfg = msg
		} else {
			msg := tgbotapi.NewEditMessageText(chatId, *messageID, text)
			msg.ReplyMarkup = &keyboard
			cfg = msg
		}
		_, err = sa.bot.Send(cfg)
		return err
	}
}

func (sa *SettingsApp) settingsInlineKeyboard(userID string, n settings.Notifications, preferredDelay string) tgbotapi.InlineKeyboardMarkup {
	delayButtons := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData(delayLabel("En directo", settings.DefaultDelay == preferredDelay),
			fmt.Sprintf("%s:%s:%s", subcommandDelay, userID, settings.DefaultDelay)),
	}
	for _, rb := range sa.rebroadcasters {
		delay := rb.Delay().String()
		delayButtons = append(delayButtons, tgbotapi.NewInlineKeyboardButtonData(delayLabel(delay, delay == preferredDelay),
			fmt.Sprintf("%s:%s:%s", subcommandDelay, userID, delay)))
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(inlineKeyboardBestLap+" "+n.BestLapSymbol(),
				fmt.Sprintf("%s:%s:%s", subcommandNotifications, userID, inlineKeyboardBestLap)),
			tgbotapi.NewInlineKeyboardButtonData(inlineKeyboardTopSpeed+" "+n.TopSpeedSymbol(),
				fmt.Sprintf("%s:%s:%s", subcommandNotifications, userID, inlineKeyboardTopSpeed)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(inlineKeyboardBestSector+" "+n.BestSectorSymbol(),
				fmt.Sprintf("%s:%s:%s", subcommandNotifications, userID, inlineKeyboardBestSector)),
		),
		tgbotapi.NewInlineKeyboardRow(delayButtons...),
	)
}

func delayLabel(label string, selected bool) string {
	if selected {
		return "✅ " + label
	}
	return label
}
