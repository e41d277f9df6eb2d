package apps

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jedib0t/go-pretty/v6/table"

	"f1recordsbot/pkg/caster"
	"f1recordsbot/pkg/delayed"
	"f1recordsbot/pkg/events"
	"f1recordsbot/pkg/helper"
	"f1recordsbot/pkg/menus"
	"f1recordsbot/pkg/session"
)

const (
	subcommandRecords = "records"
	feedLive          = "live"

	tableRecord = "RÉCORD"
	tableDriver = "PIL"
	tableValue  = "VALOR"
	tableDiff   = "DIF"
)

// RecordsApp renders the session record board, either live from the
// session state or from a delayed rebroadcaster's snapshot cache.
type RecordsApp struct {
	bot            *tgbotapi.BotAPI
	appMenu        menus.ApplicationMenu
	sess           *session.Session
	rebroadcasters []*delayed.Rebroadcaster

	mu     sync.Mutex
	latest map[string]events.RecordData // overall record per event type
}

func NewRecordsApp(bot *tgbotapi.BotAPI, appMenu menus.ApplicationMenu, sess *session.Session, rebroadcasters []*delayed.Rebroadcaster) *RecordsApp {
	ra := &RecordsApp{
		bot:            bot,
		appMenu:        appMenu,
		sess:           sess,
		rebroadcasters: rebroadcasters,
		latest:         map[string]events.RecordData{},
	}

	for _, eventType := range events.Types {
		go ra.updater(eventType)
	}

	return ra
}

func (ra *RecordsApp) updater(eventType string) {
	ch := ra.sess.Bus().Subscribe(events.Topic(events.ScopeOverall, eventType))
	for ev := range ch {
		data, err := caster.Recast[events.RecordData](ev.Payload)
		if err != nil {
			log.Printf("Error recasting record payload: %s\n", err.Error())
			continue
		}
		ra.mu.Lock()
		ra.latest[eventType] = data
		ra.mu.Unlock()
	}
}

func (ra *RecordsApp) AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error) {
	return false, nil
}

func (ra *RecordsApp) AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error) {
	if button == buttonRecords {
		return true, ra.renderRecords(feedLive, nil)
	}
	return false, nil
}

func (ra *RecordsApp) AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error) {
	data := strings.Split(query.Data, ":")
	if data[0] == subcommandRecords {
		return true, func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
			return ra.renderRecords(data[1], &query.Message.MessageID)(ctx, query.Message.Chat.ID)
		}
	}
	return false, nil
}

func (ra *RecordsApp) renderRecords(feed string, messageID *int) func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		var text string
		if feed == feedLive {
			text = ra.liveTable()
		} else {
			d, err := time.ParseDuration(feed)
			if err != nil {
				return err
			}
			text = ra.delayedTable(d)
		}

		keyboard := ra.feedInlineKeyboard()
		var cfg tgbotapi.Chattable
		if messageID == nil {
			msg := tgbotapi.NewMessage(chatId, text)
			msg.ReplyMarkup = keyboard
			msg.ParseMode = tgbotapi.ModeMarkdown
			cfg = msg
		} else {
			msg := tgbotapi.NewEditMessageText(chatId, *messageID, text)
			msg.ReplyMarkup = &keyboard
			msg.ParseMode = tgbotapi.ModeMarkdown
			cfg = msg
		}
		_, err := ra.bot.Send(cfg)
		return err
	}
}

func (ra *RecordsApp) liveTable() string {
	best := ra.sess.GetBestStats()
	info := ra.sess.GetInfo()

	ra.mu.Lock()
	lap := ra.latest[events.TypeBestLap]
	speed := ra.latest[events.TypeTopSpeed]
	ra.mu.Unlock()

	var b bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&b)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{tableRecord, tableDriver, tableValue, tableDiff})
	t.AppendRow([]interface{}{
		"Vuelta",
		helper.GetDriverCodeName(lap.Driver),
		helper.SecondsToMinutes(best.FastestLap),
		helper.SignedDiff(lap.Delta, "s"),
	})
	t.AppendRow([]interface{}{
		"V.máx",
		helper.GetDriverCodeName(speed.Driver),
		helper.ToSpeed(best.TopSpeed),
		helper.SignedDiff(speed.Delta, ""),
	})
	for sector := 1; sector <= 3; sector++ {
		t.AppendRow([]interface{}{
			fmt.Sprintf("Sector %d", sector),
			"",
			helper.ToSectorTime(best.FastestSectors[sector]),
			"",
		})
	}
	t.Render()

	header := "En directo"
	if info.TrackName != "" {
		header = fmt.Sprintf("%s — %s (%s)", header, info.TrackName, info.Session)
	}
	return fmt.Sprintf("%s\n```\n%s```", header, b.String())
}

func (ra *RecordsApp) delayedTable(delay time.Duration) string {
	var rb *delayed.Rebroadcaster
	for _, r := range ra.rebroadcasters {
		if r.Delay() == delay {
			rb = r
		}
	}
	if rb == nil {
		return "Ese retardo no está configurado"
	}

	var b bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&b)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{tableRecord, tableDriver, tableValue, tableDiff})
	for _, eventType := range events.Types {
		ev, found := rb.FetchLatest(events.ScopeOverall, eventType)
		if !found {
			t.AppendRow([]interface{}{recordLabel(eventType, 0), "", "-", "-"})
			continue
		}
		data, err := caster.Recast[events.RecordData](ev.Payload)
		if err != nil {
			log.Printf("Error recasting record payload: %s\n", err.Error())
			continue
		}
		value := helper.SecondsToMinutes(data.Time)
		diffUnit := "s"
		if eventType == events.TypeTopSpeed {
			value = helper.ToSpeed(data.Speed)
			diffUnit = ""
		} else if eventType == events.TypeBestSector {
			value = helper.ToSectorTime(data.Time)
		}
		t.AppendRow([]interface{}{
			recordLabel(eventType, data.Sector),
			helper.GetDriverCodeName(data.Driver),
			value,
			helper.SignedDiff(data.Delta, diffUnit),
		})
	}
	t.Render()

	return fmt.Sprintf("Con retardo de %s\n```\n%s```", delay, b.String())
}

func recordLabel(eventType string, sector int) string {
	switch eventType {
	case events.TypeBestLap:
		return "Vuelta"
	case events.TypeTopSpeed:
		return "V.máx"
	case events.TypeBestSector:
		if sector > 0 {
			return fmt.Sprintf("Sector %d", sector)
		}
		return "Sector"
	}
	return eventType
}

func (ra *RecordsApp) feedInlineKeyboard() tgbotapi.InlineKeyboardMarkup {
	buttons := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("En directo", fmt.Sprintf("%s:%s", subcommandRecords, feedLive)),
	}
	for _, rb := range ra.rebroadcasters {
		label := fmt.Sprintf("⏳ %s", rb.Delay())
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("%s:%s", subcommandRecords, rb.Delay())))
	}
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(buttons...))
}
