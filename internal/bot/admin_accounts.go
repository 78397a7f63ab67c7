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
)

const accountsPageSize = 5

/*** МАСТЕР ДОБАВЛЕНИЯ АККАУНТА ***/

func (b *Bot) handleWizardText(ctx context.Context, chatID int64, step dialog.Step, text string) {
	if text == "" {
		b.send(tgbotapi.NewMessage(chatID, "Пустой ввод. Попробуйте ещё раз."))
		return
	}
	opt := func(s string) string {
		if s == "-" {
			return ""
		}
		return s
	}

	switch s := step.(type) {
	case dialog.AccTitleStep:
		b.advanceWizard(ctx, chatID, dialog.AccRankStep{Title: text},
			"Введите ранг аккаунта (например: Immortal 2):")

	case dialog.AccRankStep:
		b.advanceWizard(ctx, chatID, dialog.AccPriceStep{AccRankStep: s, Rank: text},
			"Введите цену в рублях (целое число):")

	case dialog.AccPriceStep:
		price, err := strconv.ParseInt(text, 10, 64)
		if err != nil || price <= 0 {
			b.send(tgbotapi.NewMessage(chatID, "Некорректная цена. Введите целое положительное число."))
			return
		}
		next := dialog.AccRegionStep{AccPriceStep: s, PriceRUB: price}
		if err := b.states.Set(ctx, chatID, next); err != nil {
			b.wizardStateError(chatID, err)
			return
		}
		m := tgbotapi.NewMessage(chatID, "Выберите регион аккаунта:")
		m.ReplyMarkup = regionsKeyboard("acc:region:")
		b.send(m)

	case dialog.AccRegionStep:
		b.send(tgbotapi.NewMessage(chatID, "Выберите регион кнопкой под сообщением."))

	case dialog.AccDescStep:
		b.advanceWizard(ctx, chatID, dialog.AccImageStep{AccDescStep: s, Description: opt(text)},
			"Ссылка на скриншоты (или «-», если нет):")

	case dialog.AccImageStep:
		b.advanceWizard(ctx, chatID, dialog.AccLoginStep{AccImageStep: s, ImageURL: opt(text)},
			"Логин от аккаунта:")

	case dialog.AccLoginStep:
		b.advanceWizard(ctx, chatID, dialog.AccPassStep{AccLoginStep: s, Login: text},
			"Пароль от аккаунта:")

	case dialog.AccPassStep:
		b.advanceWizard(ctx, chatID, dialog.AccEmailStep{AccPassStep: s, Password: text},
			"Email, привязанный к аккаунту (или «-»):")

	case dialog.AccEmailStep:
		b.advanceWizard(ctx, chatID, dialog.AccEmPassStep{AccEmailStep: s, Email: opt(text)},
			"Пароль от email (или «-»):")

	case dialog.AccEmPassStep:
		b.advanceWizard(ctx, chatID, dialog.AccInfoStep{AccEmPassStep: s, EmailPassword: opt(text)},
			"Доп. информация: коды восстановления и т.п. (или «-»):")

	case dialog.AccInfoStep:
		next := dialog.AccConfirmStep{AccInfoStep: s, AdditionalInfo: opt(text)}
		if err := b.states.Set(ctx, chatID, next); err != nil {
			b.wizardStateError(chatID, err)
			return
		}
		b.showWizardSummary(chatID, next)

	case dialog.AccConfirmStep:
		b.send(tgbotapi.NewMessage(chatID, "Подтвердите или отмените кнопками под сообщением."))
	}
}

func (b *Bot) advanceWizard(ctx context.Context, chatID int64, next dialog.Step, prompt string) {
	if err := b.states.Set(ctx, chatID, next); err != nil {
		b.wizardStateError(chatID, err)
		return
	}
	m := tgbotapi.NewMessage(chatID, prompt)
	m.ReplyMarkup = cancelKeyboard()
	b.send(m)
}

func (b *Bot) wizardStateError(chatID int64, err error) {
	b.log.Error("save dialog state failed", "err", err)
	b.send(tgbotapi.NewMessage(chatID, "Ошибка сохранения, попробуйте ещё раз."))
}

func (b *Bot) showWizardSummary(chatID int64, s dialog.AccConfirmStep) {
	var sb strings.Builder
	sb.WriteString("Проверьте данные нового аккаунта:\n\n")
	fmt.Fprintf(&sb, "Название: %s\n", s.Title)
	fmt.Fprintf(&sb, "Ранг: %s\n", s.Rank)
	fmt.Fprintf(&sb, "Цена: %s\n", b.formatPrice(s.PriceRUB))
	fmt.Fprintf(&sb, "Регион: %s\n", s.Region)
	fmt.Fprintf(&sb, "Описание: %s\n", orDash(s.Description))
	fmt.Fprintf(&sb, "Скриншоты: %s\n", orDash(s.ImageURL))
	fmt.Fprintf(&sb, "Логин: %s\n", s.Login)
	fmt.Fprintf(&sb, "Email: %s\n", orDash(s.Email))
	fmt.Fprintf(&sb, "Доп. информация: %s\n", orDash(s.AdditionalInfo))

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💾 Сохранить", "acc:save"),
			tgbotapi.NewInlineKeyboardButtonData("✖️ Отмена", "nav:cancel"),
		),
	)
	m := tgbotapi.NewMessage(chatID, sb.String())
	m.ReplyMarkup = kb
	b.send(m)
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

// handleWizardCallback обрабатывает кнопки мастера: выбор региона и сохранение.
func (b *Bot) handleWizardCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, parts []string) {
	chatID := cb.Message.Chat.ID
	msgID := cb.Message.MessageID

	if !b.isAdmin(cb.From.ID) {
		_ = b.answerCallback(cb, "Доступ запрещён", true)
		return
	}
	step, err := b.states.Get(ctx, chatID)
	if err != nil {
		b.log.Error("load dialog state failed", "err", err)
		return
	}

	switch {
	case len(parts) == 3 && parts[1] == "region":
		rs, ok := step.(dialog.AccRegionStep)
		if !ok {
			_ = b.answerCallback(cb, "Шаг уже пройден", true)
			return
		}
		region, ok := accounts.ParseRegion(parts[2])
		if !ok {
			_ = b.answerCallback(cb, "Неизвестный регион", true)
			return
		}
		next := dialog.AccDescStep{AccRegionStep: rs, Region: region}
		if err := b.states.Set(ctx, chatID, next); err != nil {
			b.wizardStateError(chatID, err)
			return
		}
		b.editTextWithKeyboard(chatID, msgID,
			fmt.Sprintf("Регион: %s\nВведите описание аккаунта (или «-»):", region), cancelKeyboard())
		_ = b.answerCallback(cb, "", false)

	case len(parts) == 2 && parts[1] == "save":
		cs, ok := step.(dialog.AccConfirmStep)
		if !ok {
			_ = b.answerCallback(cb, "Нечего сохранять", true)
			return
		}
		a, err := b.accounts.Create(ctx, cs.Draft(cb.From.ID))
		if errors.Is(err, accounts.ErrDuplicateLogin) {
			_ = b.answerCallback(cb, "Аккаунт с таким логином уже есть", true)
			return
		}
		if err != nil {
			b.log.Error("create account failed", "err", err)
			_ = b.answerCallback(cb, "Ошибка сохранения", true)
			return
		}
		_ = b.states.Reset(ctx, chatID)
		_ = b.answerCallback(cb, "Сохранено", false)
		b.editTextAndClear(chatID, msgID,
			fmt.Sprintf("Аккаунт «%s» добавлен в каталог (id %d, %s).", a.Title, a.ID, b.formatPrice(a.PriceRUB)))

	default:
		_ = b.answerCallback(cb, "", false)
	}
}

/*** СПИСОК / УДАЛЕНИЕ ***/

func (b *Bot) handleAdminAccounts(ctx context.Context, cb *tgbotapi.CallbackQuery, parts []string) {
	chatID := cb.Message.Chat.ID
	msgID := cb.Message.MessageID

	if len(parts) < 3 {
		_ = b.answerCallback(cb, "", false)
		return
	}

	switch parts[2] {
	case "add":
		if err := b.states.Set(ctx, chatID, dialog.AccTitleStep{}); err != nil {
			b.wizardStateError(chatID, err)
			return
		}
		b.editTextWithKeyboard(chatID, msgID, "Введите название аккаунта:", cancelKeyboard())
		_ = b.answerCallback(cb, "", false)

	case "list":
		// adm:acc:list:<filter>:<page>
		if len(parts) != 5 {
			_ = b.answerCallback(cb, "", false)
			return
		}
		page, _ := strconv.Atoi(parts[4])
		b.showAccountsPage(ctx, chatID, msgID, accounts.Filter(parts[3]), page)
		_ = b.answerCallback(cb, "", false)

	case "del":
		// adm:acc:del:<id>:<filter>:<page>
		if len(parts) != 6 {
			_ = b.answerCallback(cb, "", false)
			return
		}
		id, _ := strconv.ParseInt(parts[3], 10, 64)
		err := b.accounts.Delete(ctx, id)
		switch {
		case errors.Is(err, accounts.ErrNotFound):
			_ = b.answerCallback(cb, "Аккаунт уже удалён", true)
		case err != nil:
			b.log.Error("delete account failed", "err", err)
			_ = b.answerCallback(cb, "Ошибка удаления", true)
			return
		default:
			_ = b.answerCallback(cb, "Удалено", false)
		}
		page, _ := strconv.Atoi(parts[5])
		b.showAccountsPage(ctx, chatID, msgID, accounts.Filter(parts[4]), page)

	default:
		_ = b.answerCallback(cb, "", false)
	}
}

func (b *Bot) showAccountsPage(ctx context.Context, chatID int64, msgID int, f accounts.Filter, page int) {
	if page < 0 {
		page = 0
	}
	list, total, err := b.accounts.List(ctx, f, accountsPageSize, page*accountsPageSize)
	if err != nil {
		b.log.Error("list accounts failed", "err", err)
		b.editTextAndClear(chatID, msgID, "Ошибка загрузки аккаунтов")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📦 Аккаунты (%s), всего %d:\n", filterRU(f), total)

	rows := [][]tgbotapi.InlineKeyboardButton{}
	for _, a := range list {
		mark := "🟢"
		if a.IsSold {
			mark = "💰"
		}
		fmt.Fprintf(&sb, "\n%s %s [%s] — %s", mark, a.Title, a.Region, b.formatPrice(a.PriceRUB))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("🗑 %s", a.Title),
				fmt.Sprintf("adm:acc:del:%d:%s:%d", a.ID, f, page)),
		))
	}
	if len(list) == 0 {
		sb.WriteString("\nПусто.")
	}

	// фильтры
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Все", "adm:acc:list:all:0"),
		tgbotapi.NewInlineKeyboardButtonData("В продаже", "adm:acc:list:available:0"),
		tgbotapi.NewInlineKeyboardButtonData("Проданные", "adm:acc:list:sold:0"),
	))

	// пагинация
	nav := []tgbotapi.InlineKeyboardButton{}
	if page > 0 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("⬅️",
			fmt.Sprintf("adm:acc:list:%s:%d", f, page-1)))
	}
	if int64((page+1)*accountsPageSize) < total {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("➡️",
			fmt.Sprintf("adm:acc:list:%s:%d", f, page+1)))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "adm:menu"),
	))

	b.editTextWithKeyboard(chatID, msgID, sb.String(), tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func filterRU(f accounts.Filter) string {
	switch f {
	case accounts.FilterAvailable:
		return "в продаже"
	case accounts.FilterSold:
		return "проданные"
	}
	return "все"
}
