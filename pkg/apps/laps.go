package apps

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jedib0t/go-pretty/v6/table"

	"f1recordsbot/pkg/helper"
	"f1recordsbot/pkg/menus"
	"f1recordsbot/pkg/session"
)

const (
	subcommandLaps = "laps"

	tableLap = "LAP"
)

// LapsApp lists the drivers seen this session and renders the lap ledger
// of the chosen one.
type LapsApp struct {
	bot     *tgbotapi.BotAPI
	appMenu menus.ApplicationMenu
	sess    *session.Session
}

func NewLapsApp(bot *tgbotapi.BotAPI, appMenu menus.ApplicationMenu, sess *session.Session) *LapsApp {
	return &LapsApp{
		bot:     bot,
		appMenu: appMenu,
		sess:    sess,
	}
}

func (la *LapsApp) AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error) {
	return false, nil
}

func (la *LapsApp) AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error) {
	if button == buttonLaps {
		return true, la.renderDrivers()
	}
	return false, nil
}

func (la *LapsApp) AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error) {
	data := strings.Split(query.Data, ":")
	if data[0] == subcommandLaps {
		return true, func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
			return la.renderDriverLaps(data[1])(ctx, query.Message.Chat.ID)
		}
	}
	return false, nil
}

func (la *LapsApp) renderDrivers() func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		names := la.sess.GetDriverNames()
		if len(names) == 0 {
			msg := tgbotapi.NewMessage(chatId, "Todavía no hay vueltas registradas")
			msg.ReplyMarkup = la.appMenu.PrevMenu
			_, err := la.bot.Send(msg)
			return err
		}

		buttons := [][]tgbotapi.InlineKeyboardButton{}
		for idx, name := range names {
			if idx%2 == 0 {
				buttons = append(buttons, []tgbotapi.InlineKeyboardButton{})
			}
			buttons[len(buttons)-1] = append(buttons[len(buttons)-1],
				tgbotapi.NewInlineKeyboardButtonData(name, fmt.Sprintf("%s:%s", subcommandLaps, name)))
		}

		msg := tgbotapi.NewMessage(chatId, "Elige un piloto:")
		msg.ReplyMarkup = tgbotapi.InlineKeyboardMarkup{InlineKeyboard: buttons}
		_, err := la.bot.Send(msg)
		return err
	}
}

func (la *LapsApp) renderDriverLaps(driver string) func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		ledger, found := la.sess.GetLaps(driver)
		if !found || len(ledger) == 0 {
			msg := tgbotapi.NewMessage(chatId, fmt.Sprintf("No hay vueltas para %s", driver))
			msg.ReplyMarkup = la.appMenu.PrevMenu
			_, err := la.bot.Send(msg)
			return err
		}

		var b bytes.Buffer
		t := table.NewWriter()
		t.SetOutputMirror(&b)
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{tableLap, "Tiempo"})
		for _, lap := range ledger {
			number := "-"
			if lap.Number > 0 {
				number = fmt.Sprintf("%d", lap.Number)
			}
			t.AppendRow([]interface{}{
				number,
				helper.SecondsToMinutes(lap.Time),
			})
		}
		t.Render()

		text := fmt.Sprintf("Vueltas de %s\n```\n%s```", driver, b.String())
		msg := tgbotapi.NewMessage(chatId, text)
		msg.ParseMode = tgbotapi.ModeMarkdown
		_, err := la.bot.Send(msg)
		return err
	}
}
