package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ricksxxx/valorant-store-bot/internal/domain/accounts"
	"github.com/ricksxxx/valorant-store-bot/internal/domain/orders"
)

// Telegram отправляет покупателю данные купленного аккаунта в личку.
type Telegram struct {
	api            *tgbotapi.BotAPI
	log            *slog.Logger
	managerContact string
}

func NewTelegram(api *tgbotapi.BotAPI, log *slog.Logger, managerContact string) *Telegram {
	return &Telegram{api: api, log: log, managerContact: managerContact}
}

func (t *Telegram) DeliverCredentials(_ context.Context, chatID int64, o *orders.Order, a *accounts.Account) error {
	var sb strings.Builder
	sb.WriteString("✅ *Оплата подтверждена!*\n\n")
	fmt.Fprintf(&sb, "Заказ: `%s`\n", o.Ref)
	fmt.Fprintf(&sb, "Аккаунт: *%s*\n\n", escapeMarkdown(a.Title))
	sb.WriteString("*Данные для входа:*\n")
	fmt.Fprintf(&sb, "Логин: `%s`\n", a.Login)
	fmt.Fprintf(&sb, "Пароль: `%s`\n", a.Password)
	if a.Email != "" {
		fmt.Fprintf(&sb, "Email: `%s`\n", a.Email)
	}
	if a.EmailPassword != "" {
		fmt.Fprintf(&sb, "Пароль от email: `%s`\n", a.EmailPassword)
	}
	if a.AdditionalInfo != "" {
		fmt.Fprintf(&sb, "\nДоп. информация: %s\n", escapeMarkdown(a.AdditionalInfo))
	}
	sb.WriteString("\n⚠️ Сразу смените пароль и привяжите свою почту.\n")
	fmt.Fprintf(&sb, "Вопросы: %s", t.managerContact)

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("send credentials: %w", err)
	}
	t.log.Info("credentials delivered", "chat_id", chatID, "order_ref", o.Ref)
	return nil
}

// escapeMarkdown экранирует разметку в пользовательском тексте,
// чтобы название аккаунта не ломало сообщение.
func escapeMarkdown(s string) string {
	repl := strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")
	return repl.Replace(s)
}
