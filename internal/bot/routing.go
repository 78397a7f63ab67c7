package bot

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ricksxxx/valorant-store-bot/internal/dialog"
	"github.com/ricksxxx/valorant-store-bot/internal/domain/users"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start":
		role := users.RoleClient
		if b.isAdmin(msg.From.ID) {
			role = users.RoleAdmin
		}
		u, err := b.users.UpsertFromTelegram(ctx, users.Telegram{
			ID: msg.From.ID, Username: msg.From.UserName, FirstName: msg.From.FirstName,
		}, role)
		if err != nil {
			b.log.Error("upsert user failed", "err", err)
			b.send(tgbotapi.NewMessage(chatID, "Ошибка: не удалось сохранить профиль"))
			return
		}
		_ = b.states.Reset(ctx, chatID)
		b.showWelcome(ctx, chatID, u)

	case "help":
		b.send(tgbotapi.NewMessage(chatID,
			"Команды:\n/start — главное меню\n/help — помощь\n\nВся навигация через кнопки под сообщениями."))

	case "admin":
		if !b.isAdmin(msg.From.ID) {
			b.send(tgbotapi.NewMessage(chatID, "Доступ запрещён"))
			return
		}
		m := tgbotapi.NewMessage(chatID, "Админ-панель:")
		m.ReplyMarkup = adminMenuKeyboard()
		b.send(m)

	default:
		b.send(tgbotapi.NewMessage(chatID, "Не знаю такую команду. Наберите /help"))
	}
}

// handleStateMessage обрабатывает текстовый ввод в рамках активного шага.
func (b *Bot) handleStateMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	step, err := b.states.Get(ctx, chatID)
	if err != nil {
		b.log.Error("load dialog state failed", "err", err)
		return
	}
	if step == nil {
		b.showMainMenu(chatID, nil, b.isAdmin(msg.From.ID))
		return
	}

	text := strings.TrimSpace(msg.Text)
	switch s := step.(type) {
	case dialog.AccTitleStep, dialog.AccRankStep, dialog.AccPriceStep, dialog.AccRegionStep,
		dialog.AccDescStep, dialog.AccImageStep, dialog.AccLoginStep, dialog.AccPassStep,
		dialog.AccEmailStep, dialog.AccEmPassStep, dialog.AccInfoStep, dialog.AccConfirmStep:
		if !b.isAdmin(msg.From.ID) {
			_ = b.states.Reset(ctx, chatID)
			return
		}
		b.handleWizardText(ctx, chatID, step, text)

	case dialog.BoostWishesStep:
		b.finishBoostOrder(ctx, chatID, msg.From.ID, s, text)

	case dialog.BoostRegionStep:
		b.send(tgbotapi.NewMessage(chatID, "Выберите регион кнопкой под сообщением."))

	default:
		b.showMainMenu(chatID, nil, b.isAdmin(msg.From.ID))
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	data := cb.Data
	chatID := cb.Message.Chat.ID
	msgID := cb.Message.MessageID

	switch {
	case data == "nav:cancel":
		_ = b.states.Reset(ctx, chatID)
		b.editTextAndClear(chatID, msgID, "Операция отменена.")
		_ = b.answerCallback(cb, "Отменено", false)
		return
	case data == "nav:menu":
		_ = b.states.Reset(ctx, chatID)
		b.showMainMenu(chatID, &msgID, b.isAdmin(cb.From.ID))
		_ = b.answerCallback(cb, "", false)
		return
	}

	parts := strings.Split(data, ":")
	switch parts[0] {
	case "menu":
		b.handleMenuCallback(ctx, cb, parts[1])
	case "cat":
		// cat:acc:<id>
		if len(parts) == 3 && parts[1] == "acc" {
			id, _ := strconv.ParseInt(parts[2], 10, 64)
			b.showAccountDetails(ctx, chatID, msgID, id)
		}
		_ = b.answerCallback(cb, "", false)
	case "buy":
		if len(parts) == 2 {
			id, _ := strconv.ParseInt(parts[1], 10, 64)
			b.handleBuyAccount(ctx, cb, id)
		}
	case "paid":
		if len(parts) == 2 {
			id, _ := strconv.ParseInt(parts[1], 10, 64)
			b.handleClaimPaid(ctx, cb, id)
		}
	case "boost":
		b.handleBoostCallback(ctx, cb, parts)
	case "acc":
		b.handleWizardCallback(ctx, cb, parts)
	case "adm":
		if !b.isAdmin(cb.From.ID) {
			_ = b.answerCallback(cb, "Доступ запрещён", true)
			return
		}
		b.handleAdminCallback(ctx, cb, parts)
	default:
		_ = b.answerCallback(cb, "", false)
	}
}

func (b *Bot) handleMenuCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, item string) {
	chatID := cb.Message.Chat.ID
	msgID := cb.Message.MessageID

	switch item {
	case "catalog":
		b.showCatalog(ctx, chatID, &msgID)
	case "boost":
		b.startBoostFlow(ctx, chatID, &msgID)
	case "orders":
		b.showMyOrders(ctx, chatID, msgID, cb.From.ID)
	case "profile":
		b.showProfile(ctx, chatID, msgID, cb.From.ID)
	}
	_ = b.answerCallback(cb, "", false)
}
