package bot

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ricksxxx/valorant-store-bot/internal/dialog"
	"github.com/ricksxxx/valorant-store-bot/internal/domain/accounts"
	"github.com/ricksxxx/valorant-store-bot/internal/domain/orders"
	"github.com/ricksxxx/valorant-store-bot/internal/domain/users"
	"github.com/ricksxxx/valorant-store-bot/internal/workflow"
)

type Bot struct {
	api      *tgbotapi.BotAPI
	log      *slog.Logger
	users    *users.Repo
	states   *dialog.Repo
	accounts *accounts.Repo
	orders   *orders.Repo
	svc      *workflow.Service

	adminIDs       []int64
	managerContact string
	usdRate        float64
}

func New(api *tgbotapi.BotAPI, log *slog.Logger,
	usersRepo *users.Repo, statesRepo *dialog.Repo,
	accountsRepo *accounts.Repo, ordersRepo *orders.Repo,
	svc *workflow.Service, adminIDs []int64, managerContact string, usdRate float64) *Bot {

	return &Bot{
		api: api, log: log, users: usersRepo, states: statesRepo,
		accounts: accountsRepo, orders: ordersRepo, svc: svc,
		adminIDs: adminIDs, managerContact: managerContact, usdRate: usdRate,
	}
}

func (b *Bot) Run(ctx context.Context, timeoutSec int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSec
	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd := <-updates:
			if upd.Message != nil {
				b.onMessage(ctx, upd.Message)
			} else if upd.CallbackQuery != nil {
				b.handleCallback(ctx, upd.CallbackQuery)
			}
		}
	}
}

func (b *Bot) onMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	b.handleStateMessage(ctx, msg)
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send failed", "err", err)
	}
}

func (b *Bot) isAdmin(tgID int64) bool {
	for _, id := range b.adminIDs {
		if id == tgID {
			return true
		}
	}
	return false
}

// notifyAdmins дублирует сообщение всем админам из списка.
func (b *Bot) notifyAdmins(text string, kb *tgbotapi.InlineKeyboardMarkup) {
	for _, id := range b.adminIDs {
		m := tgbotapi.NewMessage(id, text)
		if kb != nil {
			m.ReplyMarkup = *kb
		}
		b.send(m)
	}
}
