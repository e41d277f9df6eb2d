package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"f1recordsbot/pkg/apps"
	"f1recordsbot/pkg/delayed"
	"f1recordsbot/pkg/notification"
	"f1recordsbot/pkg/pubsub"
	"f1recordsbot/pkg/session"
	"f1recordsbot/pkg/settings"
	"f1recordsbot/pkg/webserver"
)

const (
	defaultTelemetryURL = "http://localhost:9000"
	defaultFeedDelays   = "30s,60s"
)

var bot *tgbotapi.BotAPI

func main() {
	var err error
	// get token from env
	token := os.Getenv("TELEGRAM_TOKEN")
	bot, err = tgbotapi.NewBotAPI(token)
	if err != nil {
		// Abort if something is wrong
		log.Panic(err)
	}

	// Set this to true to log all interactions with telegram servers
	bot.Debug = false

	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)

	if os.Getenv("MOCK_FEED") != "" {
		CreateMockFeed(":9000")
	}

	telemetryURL := os.Getenv("TELEMETRY_URL")
	if telemetryURL == "" {
		telemetryURL = defaultTelemetryURL
	}

	tick := delayed.DefaultTick
	if v := os.Getenv("RELEASE_TICK"); v != "" {
		tick, err = time.ParseDuration(v)
		if err != nil {
			log.Panicf("invalid RELEASE_TICK %q: %s", v, err.Error())
		}
	}

	feedDelays := os.Getenv("FEED_DELAYS")
	if feedDelays == "" {
		feedDelays = defaultFeedDelays
	}

	bus := pubsub.NewBus()
	exitChan := make(chan bool)
	tickers := []*time.Ticker{}
	rebroadcasters := []*delayed.Rebroadcaster{}
	for _, ds := range strings.Split(feedDelays, ",") {
		d, err := time.ParseDuration(strings.TrimSpace(ds))
		if err != nil {
			log.Panicf("invalid FEED_DELAYS entry %q: %s", ds, err.Error())
		}
		rb := delayed.NewRebroadcaster(bus, d)
		bus.AddForwarder(rb)
		ticker := time.NewTicker(tick)
		rb.Start(ticker, exitChan)
		tickers = append(tickers, ticker)
		rebroadcasters = append(rebroadcasters, rb)
	}

	sm, err := settings.NewManager(os.Getenv("RECORDS_DB"))
	if err != nil {
		log.Panic(err)
	}
	defer sm.Close()

	sess := session.NewSession(bus, "live", telemetryURL)
	go sess.Run(ctx)

	notificationMgr := notification.NewManager(ctx, bot, bus, sm)
	go notificationMgr.Start(exitChan)

	webserverMgr := webserver.NewManager(sess, bus, rebroadcasters)
	webserverMgr.Serve()

	app := apps.NewMainApp(ctx, bot, sess, rebroadcasters, sm)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)
	go receiveUpdates(ctx, updates, app)

	log.Println("Start listening for updates. Press Ctrl-C to stop it")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	// lock the main thread until we receive a signal
	<-sigs

	for _, ticker := range tickers {
		ticker.Stop()
	}
	close(exitChan)
	webserverMgr.Shutdown()
	cancel()
}

func receiveUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel, app *apps.MainApp) {
	for {
		select {
		case <-ctx.Done():
			return
		case update := <-updates:
			handleUpdate(ctx, update, app)
		}
	}
}

func handleUpdate(ctx context.Context, update tgbotapi.Update, app *apps.MainApp) {
	switch {
	// Handle messages
	case update.Message != nil:
		ctx = context.WithValue(ctx, apps.UserContextKey, update.Message.From)
		ctx = context.WithValue(ctx, apps.ChatContextKey, update.Message.Chat)
		handleMessage(ctx, update.Message, app)
	// Handle button clicks
	case update.CallbackQuery != nil:
		ctx = context.WithValue(ctx, apps.UserContextKey, update.CallbackQuery.From)
		ctx = context.WithValue(ctx, apps.ChatContextKey, update.CallbackQuery.Message.Chat)
		handleCallbackQuery(ctx, update.CallbackQuery, app)
	}
}

func handleMessage(ctx context.Context, message *tgbotapi.Message, app *apps.MainApp) {
	if message.Text == "" {
		return
	}
	if strings.HasPrefix(message.Text, "/") {
		if accept, handler := app.AcceptCommand(message.Text); accept {
			if err := handler(ctx, message.Chat.ID); err != nil {
				log.Printf("An error occured: %s", err.Error())
			}
			return
		}
	}
	if accept, handler := app.AcceptButton(message.Text); accept {
		if err := handler(ctx, message.Chat.ID); err != nil {
			log.Printf("An error occured: %s", err.Error())
		}
	}
}

func handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery, app *apps.MainApp) {
	if accept, handler := app.AcceptCallback(query); accept {
		callback := tgbotapi.NewCallback(query.ID, "")
		if _, err := bot.Request(callback); err != nil {
			log.Printf("An error occured: %s", err.Error())
		}
		if err := handler(ctx, query); err != nil {
			log.Printf("An error occured: %s", err.Error())
		}
	}
}
