package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ricksxxx/valorant-store-bot/internal/domain/orders"
	"github.com/ricksxxx/valorant-store-bot/internal/workflow"
)

func (b *Bot) showOrdersByStatus(ctx context.Context, chatID int64, msgID int, st orders.Status) {
	list, err := b.orders.ListByStatus(ctx, st, 20)
	if err != nil {
		b.log.Error("list orders failed", "err", err)
		b.editTextAndClear(chatID, msgID, "Ошибка загрузки заказов")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 Заказы в статусе «%s»:\n", statusRU(string(st)))

	rows := [][]tgbotapi.InlineKeyboardButton{}
	for _, o := range list {
		subject := o.AccountTitle
		if o.Type == orders.TypeBoost {
			subject = fmt.Sprintf("Буст %s → %s", o.Boost.FromRank, o.Boost.ToRank)
		}
		fmt.Fprintf(&sb, "\n• %s — %s\n  %s, покупатель %d, %s",
			o.Ref, subject, b.formatPrice(o.AmountRUB), o.UserID, o.CreatedAt.Format("02.01 15:04"))

		if !o.Status.Terminal() {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(
					fmt.Sprintf("✅ %s", o.Ref), fmt.Sprintf("adm:confirm:%d", o.ID)),
				tgbotapi.NewInlineKeyboardButtonData(
					fmt.Sprintf("❌ %s", o.Ref), fmt.Sprintf("adm:cancel:%d", o.ID)),
			))
		}
	}
	if len(list) == 0 {
		sb.WriteString("\nПусто.")
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "adm:menu"),
	))

	b.editTextWithKeyboard(chatID, msgID, sb.String(), tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) handleConfirmOrder(ctx context.Context, cb *tgbotapi.CallbackQuery, orderID int64) {
	chatID := cb.Message.Chat.ID

	o, err := b.svc.ConfirmPayment(ctx, cb.From.ID, orderID)
	var dErr *workflow.DeliveryError
	switch {
	case errors.As(err, &dErr):
		// заказ выполнен, но покупатель не получил данные
		_ = b.answerCallback(cb, "Подтверждено, но доставка не удалась", true)
		b.send(tgbotapi.NewMessage(chatID, fmt.Sprintf(
			"⚠️ Заказ %s подтверждён, но отправить данные покупателю %d не удалось: %v\nПередайте данные вручную.",
			o.Ref, o.UserID, dErr.Unwrap())))
		return
	case errors.Is(err, orders.ErrNotFound):
		_ = b.answerCallback(cb, "Заказ не найден", true)
		return
	case errors.Is(err, orders.ErrInvalidState):
		_ = b.answerCallback(cb, "Заказ уже обработан", true)
		return
	case errors.Is(err, workflow.ErrUnauthorized):
		_ = b.answerCallback(cb, "Доступ запрещён", true)
		return
	case err != nil:
		b.log.Error("confirm order failed", "err", err)
		_ = b.answerCallback(cb, "Ошибка, попробуйте позже", true)
		return
	}

	_ = b.answerCallback(cb, "Подтверждено", false)
	b.send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Заказ %s подтверждён и выполнен.", o.Ref)))

	// для буста данные не выдаются, просто сообщаем покупателю
	if o.Type == orders.TypeBoost {
		b.send(tgbotapi.NewMessage(o.UserID, fmt.Sprintf(
			"✅ Оплата по заказу %s подтверждена!\nБустер свяжется с вами в ближайшее время: %s",
			o.Ref, b.managerContact)))
	}
}

func (b *Bot) handleCancelOrder(ctx context.Context, cb *tgbotapi.CallbackQuery, orderID int64) {
	chatID := cb.Message.Chat.ID

	o, err := b.svc.CancelOrder(ctx, cb.From.ID, orderID)
	switch {
	case errors.Is(err, orders.ErrNotFound):
		_ = b.answerCallback(cb, "Заказ не найден", true)
		return
	case errors.Is(err, orders.ErrInvalidState):
		_ = b.answerCallback(cb, "Заказ уже обработан", true)
		return
	case errors.Is(err, workflow.ErrUnauthorized):
		_ = b.answerCallback(cb, "Доступ запрещён", true)
		return
	case err != nil:
		b.log.Error("cancel order failed", "err", err)
		_ = b.answerCallback(cb, "Ошибка, попробуйте позже", true)
		return
	}

	_ = b.answerCallback(cb, "Отменено", false)
	b.send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Заказ %s отменён, аккаунт возвращён в продажу.", o.Ref)))
	b.send(tgbotapi.NewMessage(o.UserID, fmt.Sprintf(
		"❌ Заказ %s отменён. Если вы уже перевели деньги, напишите менеджеру %s.",
		o.Ref, b.managerContact)))
}
