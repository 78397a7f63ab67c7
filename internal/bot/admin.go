package bot

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xuri/excelize/v2"

	"github.com/ricksxxx/valorant-store-bot/internal/domain/orders"
)

func (b *Bot) handleAdminCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, parts []string) {
	chatID := cb.Message.Chat.ID
	msgID := cb.Message.MessageID

	if len(parts) < 2 {
		_ = b.answerCallback(cb, "", false)
		return
	}

	switch parts[1] {
	case "menu":
		b.editTextWithKeyboard(chatID, msgID, "Админ-панель:", adminMenuKeyboard())
		_ = b.answerCallback(cb, "", false)

	case "acc":
		b.handleAdminAccounts(ctx, cb, parts)

	case "ord":
		if len(parts) == 3 {
			b.showOrdersByStatus(ctx, chatID, msgID, orders.Status(parts[2]))
		}
		_ = b.answerCallback(cb, "", false)

	case "confirm":
		if len(parts) == 3 {
			id, _ := strconv.ParseInt(parts[2], 10, 64)
			b.handleConfirmOrder(ctx, cb, id)
		}

	case "cancel":
		if len(parts) == 3 {
			id, _ := strconv.ParseInt(parts[2], 10, 64)
			b.handleCancelOrder(ctx, cb, id)
		}

	case "stats":
		b.showStats(ctx, chatID, msgID)
		_ = b.answerCallback(cb, "", false)

	case "users":
		b.showUsers(ctx, chatID, msgID)
		_ = b.answerCallback(cb, "", false)

	case "export":
		if err := b.sendSalesReport(ctx, chatID); err != nil {
			b.log.Error("sales report failed", "err", err)
			_ = b.answerCallback(cb, "Ошибка формирования отчёта", true)
			return
		}
		_ = b.answerCallback(cb, "Отчёт отправлен", false)

	case "reset":
		if len(parts) == 3 && parts[2] == "yes" {
			b.handleReset(ctx, cb)
			return
		}
		kb := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("⚠️ Да, удалить всё", "adm:reset:yes"),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✖️ Отмена", "adm:menu"),
			),
		)
		b.editTextWithKeyboard(chatID, msgID,
			"Удалить ВСЕ заказы и ВСЕ аккаунты? Действие необратимо.", kb)
		_ = b.answerCallback(cb, "", false)

	default:
		_ = b.answerCallback(cb, "", false)
	}
}

func (b *Bot) showStats(ctx context.Context, chatID int64, msgID int) {
	totalUsers, err := b.users.Count(ctx)
	if err != nil {
		b.editTextAndClear(chatID, msgID, "Ошибка загрузки статистики")
		return
	}
	totalAccounts, _ := b.accounts.Count(ctx)
	soldAccounts, _ := b.accounts.CountSold(ctx)
	revenue, _ := b.accounts.Revenue(ctx)
	totalOrders, _ := b.orders.Count(ctx)
	pending, _ := b.orders.CountByStatus(ctx, orders.StatusPending)
	paid, _ := b.orders.CountByStatus(ctx, orders.StatusPaid)
	completed, _ := b.orders.CountByStatus(ctx, orders.StatusCompleted)
	cancelled, _ := b.orders.CountByStatus(ctx, orders.StatusCancelled)

	text := fmt.Sprintf(
		"📊 Статистика\n\n"+
			"Пользователи: %d\n"+
			"Аккаунты: %d (продано %d)\n"+
			"Выручка: %s\n\n"+
			"Заказы: %d\n"+
			"— ожидают оплаты: %d\n"+
			"— заявлена оплата: %d\n"+
			"— выполнены: %d\n"+
			"— отменены: %d",
		totalUsers, totalAccounts, soldAccounts, b.formatPrice(revenue),
		totalOrders, pending, paid, completed, cancelled)

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "adm:menu"),
		),
	)
	b.editTextWithKeyboard(chatID, msgID, text, kb)
}

func (b *Bot) showUsers(ctx context.Context, chatID int64, msgID int) {
	list, err := b.users.List(ctx, 30)
	if err != nil {
		b.editTextAndClear(chatID, msgID, "Ошибка загрузки пользователей")
		return
	}

	var sb strings.Builder
	sb.WriteString("👥 Последние пользователи:\n\n")
	for _, u := range list {
		name := u.FirstName
		if u.Username != "" {
			name = fmt.Sprintf("%s (@%s)", name, u.Username)
		}
		fmt.Fprintf(&sb, "• %s — id %d, %s, с %s\n",
			name, u.TelegramID, u.Role, u.CreatedAt.Format("02.01.2006"))
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "adm:menu"),
		),
	)
	b.editTextWithKeyboard(chatID, msgID, sb.String(), kb)
}

// sendSalesReport выгружает выполненные заказы в Excel и отправляет файл в чат.
func (b *Bot) sendSalesReport(ctx context.Context, chatID int64) error {
	list, err := b.orders.ListByStatus(ctx, orders.StatusCompleted, 1000)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		b.send(tgbotapi.NewMessage(chatID, "Выполненных заказов пока нет."))
		return nil
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	header := []any{"Заказ", "Тип", "Что продано", "Сумма (руб)", "Покупатель", "Дата"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, o := range list {
		subject := o.AccountTitle
		kind := "аккаунт"
		if o.Type == orders.TypeBoost {
			kind = "буст"
			subject = fmt.Sprintf("%s → %s (%s)", o.Boost.FromRank, o.Boost.ToRank, o.Boost.Region)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{o.Ref, kind, subject, o.AmountRUB, o.UserID, o.CreatedAt.Format("02.01.2006 15:04")}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return err
	}

	doc := tgbotapi.FileBytes{
		Name:  fmt.Sprintf("sales_%s.xlsx", time.Now().Format("20060102")),
		Bytes: buf.Bytes(),
	}
	msg := tgbotapi.NewDocument(chatID, doc)
	msg.Caption = "Отчёт по продажам"
	b.send(msg)
	return nil
}

func (b *Bot) handleReset(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID

	nOrders, err := b.orders.DeleteAll(ctx)
	if err != nil {
		b.log.Error("reset orders failed", "err", err)
		_ = b.answerCallback(cb, "Ошибка удаления заказов", true)
		return
	}
	nAccounts, err := b.accounts.DeleteAll(ctx)
	if err != nil {
		b.log.Error("reset accounts failed", "err", err)
		_ = b.answerCallback(cb, "Ошибка удаления аккаунтов", true)
		return
	}

	_ = b.answerCallback(cb, "Готово", false)
	b.editTextAndClear(chatID, cb.Message.MessageID,
		fmt.Sprintf("Сброс выполнен: удалено заказов %d, аккаунтов %d.", nOrders, nAccounts))
	b.log.Warn("store data reset", "admin_id", cb.From.ID, "orders", nOrders, "accounts", nAccounts)
}
