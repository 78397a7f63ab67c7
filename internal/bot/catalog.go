package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ricksxxx/valorant-store-bot/internal/dialog"
	"github.com/ricksxxx/valorant-store-bot/internal/domain/accounts"
	"github.com/ricksxxx/valorant-store-bot/internal/domain/orders"
	"github.com/ricksxxx/valorant-store-bot/internal/domain/users"
)

const catalogLimit = 50

func (b *Bot) showWelcome(ctx context.Context, chatID int64, u *users.User) {
	if !u.WelcomeSeen {
		text := fmt.Sprintf(
			"Привет, %s! 👋\n\n"+
				"Это магазин аккаунтов Valorant и буста рангов.\n"+
				"— Готовые аккаунты с рангом, скинами и полным доступом\n"+
				"— Буст до нужного ранга руками опытных игроков\n\n"+
				"Оплата переводом, выдача после подтверждения менеджером %s.",
			u.FirstName, b.managerContact)
		m := tgbotapi.NewMessage(chatID, text)
		m.ReplyMarkup = mainMenuKeyboard(u.Role == users.RoleAdmin)
		b.send(m)
		if err := b.users.MarkWelcomeSeen(ctx, u.TelegramID); err != nil {
			b.log.Error("mark welcome seen failed", "err", err)
		}
		return
	}
	b.showMainMenu(chatID, nil, u.Role == users.RoleAdmin)
}

func (b *Bot) showMainMenu(chatID int64, editMsgID *int, admin bool) {
	text := "Главное меню — выберите раздел:"
	kb := mainMenuKeyboard(admin)
	if editMsgID != nil {
		b.editTextWithKeyboard(chatID, *editMsgID, text, kb)
		return
	}
	m := tgbotapi.NewMessage(chatID, text)
	m.ReplyMarkup = kb
	b.send(m)
}

func (b *Bot) showCatalog(ctx context.Context, chatID int64, editMsgID *int) {
	list, err := b.accounts.ListAvailable(ctx, catalogLimit)
	if err != nil {
		b.log.Error("list accounts failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Ошибка загрузки каталога, попробуйте позже."))
		return
	}
	if len(list) == 0 {
		text := fmt.Sprintf("Сейчас в каталоге пусто. Напишите менеджеру %s — подберём под запрос.", b.managerContact)
		if editMsgID != nil {
			b.editTextWithKeyboard(chatID, *editMsgID, text, navKeyboard())
		} else {
			m := tgbotapi.NewMessage(chatID, text)
			m.ReplyMarkup = navKeyboard()
			b.send(m)
		}
		return
	}

	rows := [][]tgbotapi.InlineKeyboardButton{}
	for _, a := range list {
		label := fmt.Sprintf("%s [%s] — %s", a.Title, a.Region, b.formatPrice(a.PriceRUB))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("cat:acc:%d", a.ID)),
		))
	}
	rows = append(rows, navKeyboard().InlineKeyboard[0])
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)

	text := "Доступные аккаунты:"
	if editMsgID != nil {
		b.editTextWithKeyboard(chatID, *editMsgID, text, kb)
	} else {
		m := tgbotapi.NewMessage(chatID, text)
		m.ReplyMarkup = kb
		b.send(m)
	}
}

func (b *Bot) showAccountDetails(ctx context.Context, chatID int64, msgID int, id int64) {
	a, err := b.accounts.GetAvailable(ctx, id)
	if errors.Is(err, accounts.ErrNotFound) {
		b.editTextWithKeyboard(chatID, msgID, "Этот аккаунт уже продан или снят с продажи.", navKeyboard())
		return
	}
	if err != nil {
		b.log.Error("get account failed", "err", err)
		b.editTextAndClear(chatID, msgID, "Ошибка загрузки аккаунта.")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🎮 %s\n\n", a.Title)
	fmt.Fprintf(&sb, "Ранг: %s\n", a.Rank)
	fmt.Fprintf(&sb, "Регион: %s\n", a.Region)
	fmt.Fprintf(&sb, "Цена: %s\n", b.formatPrice(a.PriceRUB))
	if a.Description != "" {
		fmt.Fprintf(&sb, "\n%s\n", a.Description)
	}
	if a.ImageURL != "" {
		fmt.Fprintf(&sb, "\nСкриншоты: %s\n", a.ImageURL)
	}

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💳 Купить", fmt.Sprintf("buy:%d", a.ID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ К каталогу", "menu:catalog"),
			tgbotapi.NewInlineKeyboardButtonData("🏠 В меню", "nav:menu"),
		),
	)
	b.editTextWithKeyboard(chatID, msgID, sb.String(), kb)
}

func (b *Bot) handleBuyAccount(ctx context.Context, cb *tgbotapi.CallbackQuery, accountID int64) {
	chatID := cb.Message.Chat.ID
	msgID := cb.Message.MessageID

	o, err := b.svc.PlaceAccountOrder(ctx, cb.From.ID, accountID)
	switch {
	case errors.Is(err, accounts.ErrSold):
		_ = b.answerCallback(cb, "Аккаунт только что купили", true)
		b.showCatalog(ctx, chatID, &msgID)
		return
	case errors.Is(err, accounts.ErrNotFound):
		_ = b.answerCallback(cb, "Аккаунт не найден", true)
		b.showCatalog(ctx, chatID, &msgID)
		return
	case err != nil:
		b.log.Error("place account order failed", "err", err)
		_ = b.answerCallback(cb, "Ошибка, попробуйте позже", true)
		return
	}

	_ = b.answerCallback(cb, "Заказ создан", false)
	b.sendPaymentInstructions(chatID, msgID, o)
	b.notifyAdmins(fmt.Sprintf("🆕 Новый заказ на аккаунт\nЗаказ: %s\n%s\nСумма: %s\nПокупатель: %d",
		o.Ref, o.AccountTitle, b.formatPrice(o.AmountRUB), o.UserID), nil)
}

// sendPaymentInstructions показывает реквизиты и срок оплаты.
func (b *Bot) sendPaymentInstructions(chatID int64, msgID int, o *orders.Order) {
	text := fmt.Sprintf(
		"✅ Заказ создан!\n\n"+
			"Номер заказа: %s\n"+
			"Сумма: %s\n\n"+
			"Для оплаты напишите менеджеру %s и укажите номер заказа.\n"+
			"После перевода нажмите «Я оплатил» — менеджер проверит и подтвердит.\n\n"+
			"⏳ Заказ резервируется на 15 минут, без оплаты он отменится автоматически.",
		o.Ref, b.formatPrice(o.AmountRUB), b.managerContact)

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Я оплатил", fmt.Sprintf("paid:%d", o.ID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏠 В меню", "nav:menu"),
		),
	)
	b.editTextWithKeyboard(chatID, msgID, text, kb)
}

func (b *Bot) handleClaimPaid(ctx context.Context, cb *tgbotapi.CallbackQuery, orderID int64) {
	chatID := cb.Message.Chat.ID

	o, err := b.svc.ClaimPaid(ctx, cb.From.ID, orderID)
	switch {
	case errors.Is(err, orders.ErrNotFound):
		_ = b.answerCallback(cb, "Заказ не найден", true)
		return
	case errors.Is(err, orders.ErrInvalidState):
		_ = b.answerCallback(cb, "Заказ уже обработан", true)
		return
	case err != nil:
		b.log.Error("claim paid failed", "err", err)
		_ = b.answerCallback(cb, "Ошибка, попробуйте позже", true)
		return
	}

	_ = b.answerCallback(cb, "Передано менеджеру", false)
	b.editTextAndClear(chatID, cb.Message.MessageID,
		fmt.Sprintf("Заявка об оплате по заказу %s отправлена менеджеру. Ожидайте подтверждения.", o.Ref))

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Подтвердить", fmt.Sprintf("adm:confirm:%d", o.ID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отклонить", fmt.Sprintf("adm:cancel:%d", o.ID)),
		),
	)
	subject := o.AccountTitle
	if o.Type == orders.TypeBoost {
		subject = fmt.Sprintf("Буст %s → %s", o.Boost.FromRank, o.Boost.ToRank)
	}
	b.notifyAdmins(fmt.Sprintf("💰 Покупатель заявил оплату\nЗаказ: %s\n%s\nСумма: %s\nПокупатель: %d",
		o.Ref, subject, b.formatPrice(o.AmountRUB), o.UserID), &kb)
}

/*** БУСТ ***/

func (b *Bot) startBoostFlow(ctx context.Context, chatID int64, editMsgID *int) {
	_ = b.states.Reset(ctx, chatID)
	text := "🚀 Буст рангов\n\nВыберите текущий ранг:"
	kb := ranksKeyboard("boost:from:", -1)
	if editMsgID != nil {
		b.editTextWithKeyboard(chatID, *editMsgID, text, kb)
		return
	}
	m := tgbotapi.NewMessage(chatID, text)
	m.ReplyMarkup = kb
	b.send(m)
}

func (b *Bot) handleBoostCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, parts []string) {
	chatID := cb.Message.Chat.ID
	msgID := cb.Message.MessageID

	if len(parts) < 3 {
		_ = b.answerCallback(cb, "", false)
		return
	}

	switch parts[1] {
	case "from":
		// boost:from:<i> — дальше выбор целевого ранга строго выше текущего
		i, err := strconv.Atoi(parts[2])
		if err != nil || i < 0 || i >= len(ranks)-1 {
			_ = b.answerCallback(cb, "Выше этого ранга буст невозможен", true)
			return
		}
		b.editTextWithKeyboard(chatID, msgID,
			fmt.Sprintf("Текущий ранг: %s\nВыберите желаемый ранг:", ranks[i]),
			ranksKeyboard(fmt.Sprintf("boost:to:%d:", i), i))
		_ = b.answerCallback(cb, "", false)

	case "to":
		// boost:to:<from>:<to>
		if len(parts) != 4 {
			_ = b.answerCallback(cb, "", false)
			return
		}
		i, err1 := strconv.Atoi(parts[2])
		j, err2 := strconv.Atoi(parts[3])
		if err1 != nil || err2 != nil || i < 0 || j <= i || j >= len(ranks) {
			_ = b.answerCallback(cb, "Некорректный выбор рангов", true)
			return
		}
		step := dialog.BoostRegionStep{FromRank: ranks[i], ToRank: ranks[j]}
		if err := b.states.Set(ctx, chatID, step); err != nil {
			b.log.Error("save dialog state failed", "err", err)
			_ = b.answerCallback(cb, "Ошибка, попробуйте позже", true)
			return
		}
		b.editTextWithKeyboard(chatID, msgID,
			fmt.Sprintf("Буст %s → %s\nВыберите регион:", ranks[i], ranks[j]),
			regionsKeyboard("boost:region:"))
		_ = b.answerCallback(cb, "", false)

	case "region":
		step, err := b.states.Get(ctx, chatID)
		if err != nil {
			b.log.Error("load dialog state failed", "err", err)
			return
		}
		rs, ok := step.(dialog.BoostRegionStep)
		if !ok {
			_ = b.answerCallback(cb, "Начните заново: Буст рангов", true)
			return
		}
		next := dialog.BoostWishesStep{BoostRegionStep: rs, Region: parts[2]}
		if err := b.states.Set(ctx, chatID, next); err != nil {
			b.log.Error("save dialog state failed", "err", err)
			_ = b.answerCallback(cb, "Ошибка, попробуйте позже", true)
			return
		}
		b.editTextWithKeyboard(chatID, msgID,
			"Пожелания к заказу (удобное время, стримить нельзя и т.п.)?\nОтправьте текст или «-», если пожеланий нет.",
			cancelKeyboard())
		_ = b.answerCallback(cb, "", false)
	}
}

func (b *Bot) finishBoostOrder(ctx context.Context, chatID, tgID int64, s dialog.BoostWishesStep, wishes string) {
	if wishes == "-" {
		wishes = ""
	}
	o, err := b.svc.PlaceBoostOrder(ctx, tgID, orders.BoostDetails{
		FromRank: s.FromRank, ToRank: s.ToRank, Region: s.Region, Wishes: wishes,
	})
	if err != nil {
		b.log.Error("place boost order failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Ошибка создания заказа, попробуйте позже."))
		return
	}
	_ = b.states.Reset(ctx, chatID)

	m := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"✅ Заявка на буст создана!\n\n"+
			"Номер заказа: %s\n"+
			"Буст: %s → %s (%s)\n"+
			"Сумма: %s\n\n"+
			"Для оплаты напишите менеджеру %s и укажите номер заказа, затем нажмите «Я оплатил».",
		o.Ref, o.Boost.FromRank, o.Boost.ToRank, o.Boost.Region,
		b.formatPrice(o.AmountRUB), b.managerContact))
	m.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Я оплатил", fmt.Sprintf("paid:%d", o.ID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏠 В меню", "nav:menu"),
		),
	)
	b.send(m)

	b.notifyAdmins(fmt.Sprintf("🆕 Новая заявка на буст\nЗаказ: %s\n%s → %s (%s)\nСумма: %s\nПокупатель: %d",
		o.Ref, o.Boost.FromRank, o.Boost.ToRank, o.Boost.Region, b.formatPrice(o.AmountRUB), o.UserID), nil)
}

/*** МОИ ЗАКАЗЫ / ПРОФИЛЬ ***/

func (b *Bot) showMyOrders(ctx context.Context, chatID int64, msgID int, tgID int64) {
	list, err := b.orders.ListFinishedByUser(ctx, tgID, 20)
	if err != nil {
		b.log.Error("list user orders failed", "err", err)
		b.editTextAndClear(chatID, msgID, "Ошибка загрузки заказов.")
		return
	}
	if len(list) == 0 {
		b.editTextWithKeyboard(chatID, msgID, "У вас пока нет оплаченных заказов.", navKeyboard())
		return
	}

	var sb strings.Builder
	sb.WriteString("📦 Ваши заказы:\n\n")
	for _, o := range list {
		subject := o.AccountTitle
		if o.Type == orders.TypeBoost {
			subject = fmt.Sprintf("Буст %s → %s", o.Boost.FromRank, o.Boost.ToRank)
		}
		fmt.Fprintf(&sb, "• %s — %s\n  %s, %s\n",
			o.Ref, subject, b.formatPrice(o.AmountRUB), statusRU(string(o.Status)))
	}
	b.editTextWithKeyboard(chatID, msgID, sb.String(), navKeyboard())
}

func (b *Bot) showProfile(ctx context.Context, chatID int64, msgID int, tgID int64) {
	u, err := b.users.GetByTelegramID(ctx, tgID)
	if err != nil || u == nil {
		b.editTextWithKeyboard(chatID, msgID, "Профиль не найден, наберите /start.", navKeyboard())
		return
	}
	n, err := b.orders.CountFinishedByUser(ctx, tgID)
	if err != nil {
		b.log.Error("count user orders failed", "err", err)
	}

	text := fmt.Sprintf("👤 Профиль\n\nИмя: %s\nID: %d\nПокупок: %d\nС нами с: %s",
		u.FirstName, u.TelegramID, n, u.CreatedAt.Format("02.01.2006"))
	b.editTextWithKeyboard(chatID, msgID, text, navKeyboard())
}
