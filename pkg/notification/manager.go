package notification

import (
	"context"
	"fmt"
	"log"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/nikoksr/notify"

	"f1recordsbot/pkg/caster"
	"f1recordsbot/pkg/events"
	"f1recordsbot/pkg/helper"
	"f1recordsbot/pkg/pubsub"
	"f1recordsbot/pkg/settings"
)

// Lister yields the users who opted into notifications for one record
// kind.
type Lister interface {
	ListUsersForRecord(kind string) ([]settings.TelegramUser, error)
}

// Manager listens on the overall record topics and pushes a Telegram
// message to every opted-in user. Personal records are not notified.
type Manager struct {
	ctx    context.Context
	lister Lister
	bot    *tgbotapi.BotAPI
	bus    *pubsub.Bus
}

func NewManager(ctx context.Context, bot *tgbotapi.BotAPI, bus *pubsub.Bus, lister Lister) *Manager {
	return &Manager{
		ctx:    ctx,
		bot:    bot,
		bus:    bus,
		lister: lister,
	}
}

func (m *Manager) Start(exitChan <-chan bool) {
	bestLapChan := m.bus.Subscribe(events.Topic(events.ScopeOverall, events.TypeBestLap))
	topSpeedChan := m.bus.Subscribe(events.Topic(events.ScopeOverall, events.TypeTopSpeed))
	bestSectorChan := m.bus.Subscribe(events.Topic(events.ScopeOverall, events.TypeBestSector))
	for {
		select {
		case <-exitChan:
			return
		case ev := <-bestLapChan:
			m.handleRecord(ev, settings.BestLap)
		case ev := <-topSpeedChan:
			m.handleRecord(ev, settings.TopSpeed)
		case ev := <-bestSectorChan:
			m.handleRecord(ev, settings.BestSector)
		}
	}
}

func (m *Manager) handleRecord(ev events.Event, kind string) {
	recipients, err := m.lister.ListUsersForRecord(kind)
	if err != nil {
		log.Printf("Error listing users for record %s: %s", kind, err.Error())
		return
	}
	if len(recipients) == 0 {
		return
	}
	log.Printf("Sending %s notification to %d telegram users\n", kind, len(recipients))
	if err := m.sendNotification(recipients, ev); err != nil {
		log.Printf("Error notifying users: %s", err.Error())
	}
}

func (m *Manager) sendNotification(tusers []settings.TelegramUser, ev events.Event) error {
	data, err := caster.Recast[events.RecordData](ev.Payload)
	if err != nil {
		return err
	}

	tg := &Telegram{}
	tg.SetClient(m.bot)

	for _, tuser := range tusers {
		chatID, _ := strconv.ParseInt(tuser.ChatID, 0, 64)
		tg.AddReceivers(chatID)
	}

	n := notify.NewWithServices(tg)
	return n.Send(m.ctx, "¡Nuevo récord de la sesión!", recordText(ev, data))
}

func recordText(ev events.Event, data events.RecordData) string {
	switch ev.Type {
	case events.TypeBestLap:
		return fmt.Sprintf("  ▸ Vuelta rápida: %s\n  ▸ Piloto: %s\n  ▸ Diferencia: %s",
			helper.SecondsToMinutes(data.Time), data.Driver, helper.SignedDiff(data.Delta, "s"))
	case events.TypeTopSpeed:
		return fmt.Sprintf("  ▸ Velocidad punta: %s\n  ▸ Piloto: %s\n  ▸ Diferencia: %s",
			helper.ToSpeed(data.Speed), data.Driver, helper.SignedDiff(data.Delta, " km/h"))
	case events.TypeBestSector:
		return fmt.Sprintf("  ▸ Mejor sector %d: %s\n  ▸ Piloto: %s\n  ▸ Diferencia: %s",
			data.Sector, helper.ToSectorTime(data.Time), data.Driver, helper.SignedDiff(data.Delta, "s"))
	}
	return fmt.Sprintf("  ▸ %s: %s", ev.Type, data.Driver)
}
