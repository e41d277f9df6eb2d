package apps

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"f1recordsbot/pkg/delayed"
	"f1recordsbot/pkg/menus"
	"f1recordsbot/pkg/session"
	"f1recordsbot/pkg/settings"
)

const (
	menuStart      = "/start"
	menuMenu       = "/menu"
	buttonRecords  = "Récords"
	buttonLaps     = "Vueltas"
	buttonSettings = "Ajustes"
	appName        = "menu"
)

var (
	menuKeyboard = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonRecords),
			tgbotapi.NewKeyboardButton(buttonLaps),
			tgbotapi.NewKeyboardButton(buttonSettings),
		),
	)
)

type MainApp struct {
	bot       *tgbotapi.BotAPI
	accepters []Accepter
}

func NewMainApp(ctx context.Context, bot *tgbotapi.BotAPI, sess *session.Session, rebroadcasters []*delayed.Rebroadcaster, sm *settings.Manager) *MainApp {
	recordsAppMenu := menus.NewApplicationMenu(buttonRecords, appName, menuKeyboard)
	recordsApp := NewRecordsApp(bot, recordsAppMenu, sess, rebroadcasters)

	lapsAppMenu := menus.NewApplicationMenu(buttonLaps, appName, menuKeyboard)
	lapsApp := NewLapsApp(bot, lapsAppMenu, sess)

	settingsAppMenu := menus.NewApplicationMenu(buttonSettings, appName, menuKeyboard)
	settingsApp := NewSettingsApp(bot, settingsAppMenu, sm, rebroadcasters)

	accepters := []Accepter{recordsApp, lapsApp, settingsApp}

	return &MainApp{
		bot:       bot,
		accepters: accepters,
	}
}

func (m *MainApp) AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error) {
	if command == menuStart {
		return true, m.renderStart()
	} else if command == menuMenu {
		return true, m.renderMenu()
	}
	for _, accepter := range m.accepters {
		accept, handler := accepter.AcceptCommand(command)
		if accept {
			return true, handler
		}
	}

	return false, nil
}

func (m *MainApp) AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error) {
	for _, accepter := range m.accepters {
		accept, handler := accepter.AcceptCallback(query)
		if accept {
			return true, handler
		}
	}

	return false, nil
}

func (m *MainApp) AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error) {
	for _, accepter := range m.accepters {
		accept, handler := accepter.AcceptButton(button)
		if accept {
			return true, handler
		}
	}
	return false, nil
}

func (m *MainApp) renderStart() func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		message := "Hola, soy el bot de récords de sesión: vuelta rápida, velocidad punta y mejores sectores en directo o con retardo.\n\n"
		message += "Puedes usar el siguiente comando:\n\n"
		message += fmt.Sprintf("%s - Muestra el menú del bot\n", menuMenu)
		msg := tgbotapi.NewMessage(chatId, message)
		msg.ReplyMarkup = menuKeyboard
		_, err := m.bot.Send(msg)
		return err
	}
}

func (m *MainApp) renderMenu() func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		message := "Menú del bot.\n\n"
		msg := tgbotapi.NewMessage(chatId, message)
		msg.ReplyMarkup = menuKeyboard
		_, err := m.bot.Send(msg)
		return err
	}
}
