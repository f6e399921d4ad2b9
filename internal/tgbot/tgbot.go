package tgbot

import (
	"log/slog"

	"github.com/KotFed0t/gold_tracker/config"
	"github.com/KotFed0t/gold_tracker/internal/model/tg/tgCallback"
	"github.com/KotFed0t/gold_tracker/internal/transport/telegram"
	customMW "github.com/KotFed0t/gold_tracker/internal/transport/telegram/middleware"
	tele "gopkg.in/telebot.v4"
	"gopkg.in/telebot.v4/middleware"
)

type TGBot struct {
	bot         *tele.Bot
	ctrl        *telegram.Controller
	ownerChatID int64
}

func New(cfg *config.Config, ctrl *telegram.Controller) *TGBot {
	settings := tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &tele.LongPoller{Timeout: cfg.Telegram.UpdTimeout},
	}

	b, err := tele.NewBot(settings)
	if err != nil {
		slog.Error("error while tele.NewBot", slog.String("err", err.Error()))
		panic(err)
	}

	return &TGBot{bot: b, ctrl: ctrl, ownerChatID: cfg.Telegram.OwnerChatID}
}

func (b *TGBot) Start() {
	b.bot.Use(middleware.Recover(), customMW.Logger())

	// the ledger is private, other chats are ignored
	if b.ownerChatID != 0 {
		b.bot.Use(middleware.Whitelist(b.ownerChatID))
	} else {
		slog.Warn("TELEGRAM_OWNER_CHAT_ID is not set, bot answers any chat")
	}

	b.setupRoutes()

	go b.bot.Start()
	slog.Info("tgbot started!")
}

func (b *TGBot) Stop() {
	slog.Info("start stopping tgbot")
	b.bot.Stop()
	slog.Info("tgbot stopped")
}

func (b *TGBot) setupRoutes() {
	b.bot.Handle("/start", b.ctrl.Start)
	b.bot.Handle("/price", b.ctrl.SpotPrice)
	b.bot.Handle("/summary", b.ctrl.Summary)
	b.bot.Handle("/recent", b.ctrl.RecentTransactions)
	b.bot.Handle("/lots", b.ctrl.AvailableLots)

	b.bot.Handle(&tele.Btn{Unique: tgCallback.RefreshPrice}, b.ctrl.RefreshSpotPrice)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.RefreshSummary}, b.ctrl.Summary)
}
